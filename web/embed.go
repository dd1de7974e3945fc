// Package web holds the browser frontend built into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed public
var embedded embed.FS

// Assets returns the frontend files rooted at the public directory.
func Assets() fs.FS {
	sub, err := fs.Sub(embedded, "public")
	if err != nil {
		// fs.Sub only fails for an invalid path name.
		panic(err)
	}
	return sub
}
