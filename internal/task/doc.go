// Package task defines the task model and the on-disk codec for task files.
//
// A task file is a JSON array of tasks:
//
//	[
//	  {
//	    "id": "01920c4e-7f3a-7c4e-9a55-3b1f0d0c2a11",
//	    "title": "Buy milk",
//	    "completed": false,
//	    "createdAt": "2024-01-01T10:00:00Z",
//	    "updatedAt": "2024-01-02T08:30:00Z"
//	  }
//	]
//
// # Fields
//
//   - id: assigned at creation, never changes. IDs are UUIDv7 values, so they
//     carry the creation instant and sort in creation order.
//   - title: non-empty after trimming.
//   - completed: defaults to false.
//   - createdAt: set once.
//   - updatedAt: absent until the first update.
//
// # Validation
//
// Validate checks a raw document against the embedded JSON Schema
// (draft 2020-12). Errors are reported with a readable path such as
// "[3].title".
//
// # File Format
//
// When writing task files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - "[]" for an empty collection (never "null")
package task
