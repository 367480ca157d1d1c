package httpserver

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"docketdesk/internal/platform/objectstore"
)

type artifactErrorEnvelope struct {
	Status    string            `json:"status"`
	Error     artifactErrorBody `json:"error"`
	Timestamp string            `json:"timestamp"`
}

type artifactErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeArtifactError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, artifactErrorEnvelope{
		Status:    "error",
		Error:     artifactErrorBody{Code: code, Message: message},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleArtifactDownload serves an object named by a signed token. The token
// is the only credential; no tenant headers are read.
func (s *Server) handleArtifactDownload(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil || s.artifacts == nil {
		writeArtifactError(w, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE", "artifact downloads are not configured")
		return
	}
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeArtifactError(w, http.StatusUnauthorized, "TOKEN_REQUIRED", "token query parameter is required")
		return
	}
	objectPath, err := s.signer.Verify(token)
	if err != nil {
		writeArtifactError(w, http.StatusForbidden, "INVALID_TOKEN", "download link is invalid or expired")
		return
	}

	data, err := s.artifacts.Get(r.Context(), objectPath)
	switch {
	case errors.Is(err, objectstore.ErrObjectNotFound):
		writeArtifactError(w, http.StatusNotFound, "NOT_FOUND", "artifact no longer exists")
		return
	case err != nil:
		s.logger.Error("artifact read failed",
			"event", "http_artifact_read_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"artifact_path", objectPath,
			"error", err.Error(),
		)
		writeArtifactError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store temporarily unavailable")
		return
	}

	name := path.Base(objectPath)
	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".zip":
		return "application/zip"
	}
	if detected := mime.TypeByExtension(path.Ext(name)); detected != "" {
		return detected
	}
	return "application/octet-stream"
}
