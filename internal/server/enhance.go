package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/glimmerlabs/glimmer/internal/audit"
	"github.com/glimmerlabs/glimmer/internal/media"
	"github.com/glimmerlabs/glimmer/internal/rewrite"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Response headers summarizing the document pass.
const (
	headerTargets  = "X-Glimmer-Targets"
	headerEnhanced = "X-Glimmer-Enhanced"
	headerFailed   = "X-Glimmer-Failed"
	headerAudit    = "X-Glimmer-Audit"
)

// handleEnhance runs the enhancement pipelines over the request body and
// responds with the rewritten document. The optional ?profile= query
// parameter restricts the pass to a single configured profile.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	rewriter, err := rewrite.New(rewrite.Options{
		Config:  s.cfg,
		Profile: r.URL.Query().Get("profile"),
		Loader:  s.loader,
		Log:     s.log,
	})
	if err != nil {
		var verr *glimmererrors.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error(err, "build rewriter")
		s.writeError(w, http.StatusInternalServerError, "failed to prepare enhancement")
		return
	}

	var out bytes.Buffer
	report, err := rewriter.Enhance(r.Context(), r.Body, &out)
	if err != nil {
		var perr *glimmererrors.ParseError
		if errors.As(err, &perr) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error(err, "enhance document")
		s.writeError(w, http.StatusInternalServerError, "failed to enhance document")
		return
	}

	verdict := "clean"
	cloud := media.Cloud{BaseURL: s.cfg.Cloud.BaseURL, Space: s.cfg.Cloud.Space}
	if _, auditErr := audit.Run(bytes.NewReader(out.Bytes()), cloud); auditErr != nil {
		verdict = "failed"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(headerTargets, strconv.Itoa(report.Targets))
	w.Header().Set(headerEnhanced, strconv.Itoa(report.Enhanced))
	w.Header().Set(headerFailed, strconv.Itoa(report.Failed))
	w.Header().Set(headerAudit, verdict)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Bytes()); err != nil {
		s.log.Error(err, "write enhanced document")
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(err, "encode response")
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
