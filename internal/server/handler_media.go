package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// placeholderThumbnail is served when a video has no generated thumbnail.
const placeholderThumbnail = `<svg xmlns="http://www.w3.org/2000/svg" width="160" height="90" viewBox="0 0 160 90">
<rect width="160" height="90" fill="#d1d5db"/>
<polygon points="65,25 65,65 100,45" fill="#6b7280"/>
</svg>
`

// mediaName returns the {name} path parameter when it is a plain file name.
func mediaName(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	name, ok := mediaName(r)
	if ok && s.config.ThumbDir != "" {
		path := filepath.Join(s.config.ThumbDir, name)
		if fileExists(path) {
			http.ServeFile(w, r, path)
			return
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(placeholderThumbnail))
}

// handleVideo serves a transcoded .mp4 sibling when present, else the
// original upload.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	name, ok := mediaName(r)
	if !ok || s.config.VideoDir == "" {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}

	mp4 := strings.TrimSuffix(name, filepath.Ext(name)) + ".mp4"
	for _, candidate := range []string{mp4, name} {
		path := filepath.Join(s.config.VideoDir, candidate)
		if fileExists(path) {
			http.ServeFile(w, r, path)
			return
		}
	}

	s.logger.Warn("video not found", "name", name, "request_id", RequestIDFromContext(r.Context()))
	http.Error(w, "Video not found: "+name, http.StatusNotFound)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
