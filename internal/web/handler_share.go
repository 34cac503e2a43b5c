package web

import (
	"net/http"

	"github.com/movinv/movinv/internal/domain"
)

type shareJSON struct {
	Token          string `json:"token"`
	AccessLevel    string `json:"accessLevel"`
	RecipientName  string `json:"recipientName,omitempty"`
	RecipientEmail string `json:"recipientEmail,omitempty"`
	AccessCount    int    `json:"accessCount"`
	Active         bool   `json:"active"`
}

func toShareJSON(t *domain.ShareToken) shareJSON {
	return shareJSON{
		Token:          t.Token,
		AccessLevel:    string(t.AccessLevel),
		RecipientName:  t.RecipientName,
		RecipientEmail: t.RecipientEmail,
		AccessCount:    t.AccessCount,
		Active:         t.Active,
	}
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	var body struct {
		AccessLevel    string `json:"accessLevel"`
		RecipientName  string `json:"recipientName"`
		RecipientEmail string `json:"recipientEmail"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	level := domain.AccessLevel(body.AccessLevel)
	if level != domain.AccessView && level != domain.AccessEdit {
		http.Error(w, "accessLevel must be view or edit", http.StatusBadRequest)
		return
	}

	token, err := s.service.CreateShare(r.Context(), sessionID, level, body.RecipientName, body.RecipientEmail)
	if err != nil {
		s.serviceError(w, err, "create share")
		return
	}
	writeJSON(w, http.StatusCreated, toShareJSON(token))
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	tokens, err := s.service.ListShares(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err, "list shares")
		return
	}
	out := make([]shareJSON, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, toShareJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		http.Error(w, "token required", http.StatusBadRequest)
		return
	}
	if err := s.service.RevokeShare(r.Context(), token); err != nil {
		s.serviceError(w, err, "revoke share")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveShare validates the {token} path value and, when edit is true,
// rejects view-only tokens. Returns nil after writing the error response.
func (s *Server) resolveShare(w http.ResponseWriter, r *http.Request, edit bool) *domain.ShareToken {
	token, err := s.service.ResolveShare(r.Context(), r.PathValue("token"))
	if err != nil {
		s.serviceError(w, err, "resolve share")
		return nil
	}
	if edit && token.AccessLevel != domain.AccessEdit {
		http.Error(w, "share link is view-only", http.StatusForbidden)
		return nil
	}
	return token
}

// handleSharedGet serves the shared view of a session: the session summary plus
// its full item list, keyed by token rather than session id.
func (s *Server) handleSharedGet(w http.ResponseWriter, r *http.Request) {
	token := s.resolveShare(w, r, false)
	if token == nil {
		return
	}

	session, err := s.service.GetSession(r.Context(), token.SessionID)
	if err != nil {
		s.serviceError(w, err, "get shared session")
		return
	}
	if session == nil {
		http.NotFound(w, r)
		return
	}
	items, err := s.service.ListItems(r.Context(), token.SessionID)
	if err != nil {
		s.serviceError(w, err, "list shared items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":     toSessionJSON(session),
		"items":       toItemListJSON(items),
		"accessLevel": string(token.AccessLevel),
	})
}

func (s *Server) handleSharedAddItem(w http.ResponseWriter, r *http.Request) {
	token := s.resolveShare(w, r, true)
	if token == nil {
		return
	}
	var body itemRequest
	if !readJSON(w, r, &body) {
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	item, err := s.service.AddItem(r.Context(), token.SessionID, body.Name, body.Quantity, body.Volume, body.Weight, body.Room)
	if err != nil {
		s.serviceError(w, err, "add shared item")
		return
	}
	writeJSON(w, http.StatusCreated, toItemJSON(item))
}

func (s *Server) handleSharedUpdateItem(w http.ResponseWriter, r *http.Request) {
	token := s.resolveShare(w, r, true)
	if token == nil {
		return
	}
	itemID, err := parseItemID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var body itemRequest
	if !readJSON(w, r, &body) {
		return
	}
	if msg := body.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	item, err := s.service.UpdateItem(r.Context(), token.SessionID, itemID, body.Name, body.Quantity, body.Volume, body.Weight, body.Room)
	if err != nil {
		s.serviceError(w, err, "update shared item")
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleSharedSetItemGoing(w http.ResponseWriter, r *http.Request) {
	token := s.resolveShare(w, r, true)
	if token == nil {
		return
	}
	itemID, err := parseItemID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	var body struct {
		IsGoing bool `json:"isGoing"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := s.service.SetItemGoing(r.Context(), token.SessionID, itemID, body.IsGoing); err != nil {
		s.serviceError(w, err, "set shared item going")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharedDeleteItem(w http.ResponseWriter, r *http.Request) {
	token := s.resolveShare(w, r, true)
	if token == nil {
		return
	}
	itemID, err := parseItemID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteItem(r.Context(), token.SessionID, itemID); err != nil {
		s.serviceError(w, err, "delete shared item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
