package api

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// handleStatic serves the web frontend for GET and HEAD requests that match
// no API route. Anything else, including a missing file, is a 404 envelope.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.opts.Static == nil || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		writeFailure(w, http.StatusNotFound, msgRouteNotFound)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "."
	}
	info, err := fs.Stat(s.opts.Static, name)
	if err != nil {
		writeFailure(w, http.StatusNotFound, msgRouteNotFound)
		return
	}
	if info.IsDir() {
		if _, err := fs.Stat(s.opts.Static, path.Join(name, "index.html")); err != nil {
			writeFailure(w, http.StatusNotFound, msgRouteNotFound)
			return
		}
	}

	http.FileServerFS(s.opts.Static).ServeHTTP(w, r)
}
