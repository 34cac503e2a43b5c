package web

import (
	"net/http"
	"strings"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/service"
)

type itemJSON struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Volume       float64 `json:"volume"`
	Weight       float64 `json:"weight"`
	Room         string  `json:"room"`
	FoundInImage int     `json:"foundInImage,omitempty"`
	IsGoing      bool    `json:"isGoing"`
	AIGenerated  bool    `json:"aiGenerated"`
	Estimated    bool    `json:"estimated"`
}

func toItemJSON(item *domain.Item) itemJSON {
	return itemJSON{
		ID:           item.ID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		Volume:       item.Volume,
		Weight:       item.Weight,
		Room:         item.Room,
		FoundInImage: item.FoundInImage,
		IsGoing:      item.IsGoing,
		AIGenerated:  item.AIGenerated,
		Estimated:    item.Estimated,
	}
}

func toItemListJSON(items []*domain.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, item := range items {
		out = append(out, toItemJSON(item))
	}
	return out
}

type itemRequest struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Volume   float64 `json:"volume"`
	Weight   float64 `json:"weight"`
	Room     string  `json:"room"`
}

func (r *itemRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "item name required"
	}
	if r.Volume < 0 || r.Weight < 0 {
		return "volume and weight must be non-negative"
	}
	return ""
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	items, err := s.service.ListItems(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err, "list items")
		return
	}
	writeJSON(w, http.StatusOK, toItemListJSON(items))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
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

	item, err := s.service.AddItem(r.Context(), sessionID, body.Name, body.Quantity, body.Volume, body.Weight, body.Room)
	if err != nil {
		s.serviceError(w, err, "add item")
		return
	}
	writeJSON(w, http.StatusCreated, toItemJSON(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
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

	item, err := s.service.UpdateItem(r.Context(), sessionID, itemID, body.Name, body.Quantity, body.Volume, body.Weight, body.Room)
	if err != nil {
		s.serviceError(w, err, "update item")
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleSetItemGoing(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
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
	if err := s.service.SetItemGoing(r.Context(), sessionID, itemID, body.IsGoing); err != nil {
		s.serviceError(w, err, "set item going")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	itemID, err := parseItemID(r)
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteItem(r.Context(), sessionID, itemID); err != nil {
		s.serviceError(w, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStageDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	var draft service.ItemDraft
	if !readJSON(w, r, &draft) {
		return
	}
	if draft.ItemID == 0 {
		http.Error(w, "itemId required", http.StatusBadRequest)
		return
	}
	s.service.StageItemEdit(sessionID, draft)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.service.ListDrafts(sessionID))
}

func (s *Server) handleCommitDrafts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	applied, err := s.service.CommitDrafts(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err, "commit drafts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"applied": applied})
}

func (s *Server) handleDiscardDrafts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	s.service.DiscardDrafts(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
