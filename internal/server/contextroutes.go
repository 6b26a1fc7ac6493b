package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ziadkadry99/ollamachat/internal/contextbuilder"
)

// builderFor creates a context builder for the request, honoring an
// optional project-root override.
func (s *Server) builderFor(root string) (*contextbuilder.Builder, error) {
	return contextbuilder.New(root)
}

// handleContextTree serves GET /api/context/tree?root=&depth=.
func (s *Server) handleContextTree(w http.ResponseWriter, r *http.Request) {
	builder, err := s.builderFor(r.URL.Query().Get("root"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	depth := s.cfg.TreeDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			depth = n
		}
	}

	ignore := s.cfg.Ignore
	if len(ignore) == 0 {
		ignore = contextbuilder.DefaultIgnores
	}

	writeJSON(w, map[string]string{
		"root": builder.Root(),
		"tree": builder.Tree(depth, ignore),
	})
}

// handleContextReadme serves GET /api/context/readme?root=&render=html.
// With render=html the markdown is converted with goldmark.
func (s *Server) handleContextReadme(w http.ResponseWriter, r *http.Request) {
	builder, err := s.builderFor(r.URL.Query().Get("root"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	readme, found := builder.Readme()

	if r.URL.Query().Get("render") == "html" {
		var rendered string
		if found {
			rendered, err = renderMarkdown(readme)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, map[string]any{"found": found, "html": rendered})
		return
	}

	writeJSON(w, map[string]any{"found": found, "readme": readme})
}

type contextFilesRequest struct {
	Root            string   `json:"root,omitempty"`
	Files           []string `json:"files"`
	IncludeReadme   bool     `json:"include_readme,omitempty"`
	IncludeTree     bool     `json:"include_tree,omitempty"`
	IncludeAllFiles bool     `json:"include_all_files,omitempty"`
	MaxFileSize     int64    `json:"max_file_size,omitempty"`
}

// handleContextFiles serves POST /api/context/files: builds the context
// string for the requested file list.
func (s *Server) handleContextFiles(w http.ResponseWriter, r *http.Request) {
	var req contextFilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	builder, err := s.builderFor(req.Root)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	maxSize := req.MaxFileSize
	if maxSize <= 0 {
		maxSize = s.cfg.MaxFileSize
	}

	snapshot := builder.BuildContext(contextbuilder.ContextOptions{
		SelectedFiles:   req.Files,
		IncludeReadme:   req.IncludeReadme,
		IncludeTree:     req.IncludeTree,
		IncludeAllFiles: req.IncludeAllFiles,
		MaxFileSize:     maxSize,
		ScanDepth:       s.cfg.ScanDepth,
	})

	writeJSON(w, map[string]string{
		"root":    builder.Root(),
		"context": snapshot,
	})
}
