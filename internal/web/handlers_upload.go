package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/recordviewer/internal/core"
)

// UploadResponse describes an accepted upload.
type UploadResponse struct {
	Source  string `json:"source"`
	Records int    `json:"records"`
	Folders int    `json:"folders"`
	Saved   bool   `json:"saved"`
	Warning string `json:"warning,omitempty"`
}

// handleUpload replaces the collection with an uploaded CSV export.
// The multipart field is "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Upload(ctx, header.Filename, file, header.Size)
	if res == nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := UploadResponse{
		Source:  res.Source,
		Records: len(res.Records),
		Folders: len(core.ExtractFolders(res.Records)),
		Saved:   err == nil,
	}
	if err != nil {
		// The collection is live; only persisting the export failed.
		slog.Warn("upload not persisted", "file", header.Filename, "error", err)
		resp.Warning = core.MapError(err).Message
	}

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleUploadStatus returns the current state of the upload limiter.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}
