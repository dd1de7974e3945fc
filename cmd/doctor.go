package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/tasks-go/internal/client"
	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/store"
)

// doctorCommand checks the tasks file, static dir, log dir and config.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasks doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	example := fs.Bool("example", false, "Print an example config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *example {
		fmt.Print(config.ExampleConfig())
		return nil
	}

	cfg := cws.Config

	fmt.Println("Tasks Doctor")
	fmt.Println("============")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ⚠️  No config file found (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ %s\n", f)
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		fmt.Printf("  ❌ log_level: %s (expected debug|info|warn|error)\n", cfg.LogLevel)
		allOK = false
	}
	if !logging.ValidFormat(cfg.LogFormat) {
		fmt.Printf("  ❌ log_format: %s (expected text|json|logfmt)\n", cfg.LogFormat)
		allOK = false
	}
	if *verbose {
		for _, key := range sortedKeys(cws.Sources) {
			fmt.Printf("    %-26s %s\n", key, cws.Sources[key])
		}
	}
	fmt.Println()

	// Tasks file
	fmt.Printf("Tasks file: %s\n", cfg.TasksFile)
	info, err := os.Stat(cfg.TasksFile)
	switch {
	case os.IsNotExist(err):
		fmt.Println("  ⚠️  Not found (will be created on first write)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		st := store.New(cfg.TasksFile)
		if err := st.Check(); err != nil {
			fmt.Printf("  ❌ %v\n", err)
			allOK = false
			break
		}
		tasks, err := st.All(ctx)
		if err != nil {
			fmt.Printf("  ❌ %v\n", err)
			allOK = false
			break
		}
		fmt.Printf("  ✅ Valid (%d tasks)\n", len(tasks))
	}
	fmt.Println()

	// Static dir
	fmt.Printf("Static dir: %s\n", cfg.StaticDir)
	if info, err := os.Stat(cfg.StaticDir); err != nil || !info.IsDir() {
		fmt.Println("  ⚠️  Not found (embedded frontend will be served)")
	} else if _, err := os.Stat(filepath.Join(cfg.StaticDir, "index.html")); err != nil {
		fmt.Println("  ⚠️  No index.html")
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Log dir
	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if _, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created by tui)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Server
	if *verbose {
		fmt.Printf("Server: %s\n", cfg.ServerURL)
		c, err := client.New(cfg.ServerURL)
		if err == nil {
			err = c.Ping(ctx)
		}
		if err != nil {
			fmt.Printf("  ⚠️  Not reachable: %v\n", err)
		} else {
			fmt.Println("  ✅ OK")
		}
		fmt.Println()
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}
