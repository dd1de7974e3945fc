package task

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaDocument string

const schemaURL = "https://github.com/nibzard/tasks-go/tasks.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // Readable path to the error location, e.g. "[2].title"
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every problem found in one document.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, e.Error())
	}
	return "invalid tasks file: " + strings.Join(parts, "; ")
}

// Schema returns the embedded JSON Schema document.
func Schema() string {
	return schemaDocument
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaDocument)); err != nil {
			schemaErr = fmt.Errorf("load tasks schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile tasks schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks a raw task file against the schema and for duplicate ids.
// It returns nil, a ValidationErrors value, or an error if the document is
// not JSON at all.
func Validate(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse tasks file: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var errs ValidationErrors
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		errs = collectSchemaErrors(errs, ve)
	}

	// Uniqueness is outside what the schema can express.
	if items, ok := doc.([]interface{}); ok {
		seen := make(map[string]int, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			id, ok := obj["id"].(string)
			if !ok || id == "" {
				continue
			}
			if first, dup := seen[id]; dup {
				errs = append(errs, &ValidationError{
					Path: fmt.Sprintf("[%d].id", i),
					Err:  fmt.Errorf("duplicate id %q (first seen at [%d])", id, first),
				})
				continue
			}
			seen[id] = i
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func collectSchemaErrors(errs ValidationErrors, err *jsonschema.ValidationError) ValidationErrors {
	if err == nil {
		return errs
	}

	if len(err.Causes) == 0 {
		return append(errs, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
	}

	for _, cause := range err.Causes {
		errs = collectSchemaErrors(errs, cause)
	}
	return errs
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var path string
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
