package web

import (
	"net/http"
	"strings"

	"github.com/movinv/movinv/internal/domain"
)

const maxSessionNameLen = 200

type sessionJSON struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	SafetyFactor float64 `json:"safetyFactor"`
	TotalItems   int     `json:"totalItems"`
	TotalVolume  float64 `json:"totalVolume"`
	TotalWeight  float64 `json:"totalWeight"`
	TotalsStale  bool    `json:"totalsStale"`
}

func toSessionJSON(s *domain.Session) sessionJSON {
	return sessionJSON{
		ID:           s.ID,
		Name:         s.Name,
		SafetyFactor: s.SafetyFactor,
		TotalItems:   s.TotalItems,
		TotalVolume:  s.TotalVolume,
		TotalWeight:  s.TotalWeight,
		TotalsStale:  s.TotalsStale,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		http.Error(w, "session name required", http.StatusBadRequest)
		return
	}
	if len(body.Name) > maxSessionNameLen {
		http.Error(w, "session name too long", http.StatusBadRequest)
		return
	}

	session, err := s.service.CreateSession(r.Context(), body.Name)
	if err != nil {
		s.serviceError(w, err, "create session")
		return
	}
	writeJSON(w, http.StatusCreated, toSessionJSON(session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.serviceError(w, err, "list sessions")
		return
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionJSON(session))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), id)
	if err != nil {
		s.serviceError(w, err, "get session")
		return
	}
	if session == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteSession(r.Context(), id); err != nil {
		s.serviceError(w, err, "delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSafetyFactor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	var body struct {
		SafetyFactor float64 `json:"safetyFactor"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := s.service.UpdateSafetyFactor(r.Context(), id, body.SafetyFactor); err != nil {
		s.serviceError(w, err, "update safety factor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTotals(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	totals, stale, err := s.service.Totals(r.Context(), id)
	if err != nil {
		s.serviceError(w, err, "get totals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalItems":  totals.TotalItems,
		"totalVolume": totals.TotalVolume,
		"totalWeight": totals.TotalWeight,
		"stale":       stale,
	})
}

func (s *Server) handleRecomputeTotals(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	totals, err := s.service.RecomputeTotals(r.Context(), id)
	if err != nil {
		s.serviceError(w, err, "recompute totals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalItems":  totals.TotalItems,
		"totalVolume": totals.TotalVolume,
		"totalWeight": totals.TotalWeight,
		"stale":       false,
	})
}
