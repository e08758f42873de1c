package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/ixbrlcheck/internal/pipeline"
	"github.com/ppiankov/ixbrlcheck/internal/rules"
	"github.com/ppiankov/ixbrlcheck/internal/store"
	"github.com/ppiankov/ixbrlcheck/internal/validate"
)

// ruleInfo describes a catalog rule for listings
type ruleInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Enabled     *bool  `json:"enabled,omitempty"` // Set when a profile is given
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"default":  s.pipeline.Engine().DefaultProfile(),
		"profiles": s.pipeline.Engine().Profiles().Profiles(),
	})
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	var profile *rules.Profile
	if name := r.URL.Query().Get("profile"); name != "" {
		p, ok := s.pipeline.Engine().Profiles().Lookup(name)
		if !ok {
			s.writeError(w, http.StatusNotFound, "UNKNOWN_PROFILE", "unknown profile: "+name)
			return
		}
		profile = p
	}

	defs := s.pipeline.Engine().Catalog().Definitions()
	out := make([]ruleInfo, 0, len(defs))
	for _, def := range defs {
		info := ruleInfo{
			ID:          def.ID,
			Description: def.Description,
			Severity:    def.Severity.String(),
		}
		if profile != nil {
			enabled := profile.Enables(def.ID)
			info.Enabled = &enabled
			if sev, ok := profile.SeverityFor(def.ID); ok {
				info.Severity = sev.String()
			}
		}
		out = append(out, info)
	}

	s.writeJSON(w, http.StatusOK, out)
}

// validate runs the pipeline on the raw request body
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	q := r.URL.Query()
	req := validate.Request{
		Profile: q.Get("profile"),
		Parser:  q.Get("parser"),
		Source:  q.Get("source"),
	}
	if req.Parser == "" && strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "text/html") {
		req.Parser = "html"
	}
	if req.Parser != "" {
		if _, ok := s.pipeline.Engine().Providers().Get(req.Parser); !ok {
			s.writeError(w, http.StatusBadRequest, "UNKNOWN_PARSER", "unknown parser: "+req.Parser)
			return
		}
	}

	report, err := s.pipeline.ValidateReader(r.Context(), r.Body, req)
	switch {
	case errors.Is(err, pipeline.ErrInputTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, "INPUT_TOO_LARGE", err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, "CANCELLED", err.Error())
		return
	case err != nil:
		s.log.Warn("validate: %v", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	data, err := s.pipeline.Renderer().JSON(report)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	runs, err := s.history.List(r.Context(), parseLimit(r, 20, 500))
	if err != nil {
		s.log.Warn("history: %v", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	run, err := s.history.Latest(r.Context(), documentID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "NOT_FOUND", "no run for document "+documentID)
		return
	}
	if err != nil {
		s.log.Warn("history: %v", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}
