package web

import (
	"fmt"
	"net/http"

	"github.com/movinv/movinv/internal/domain"
	"github.com/movinv/movinv/internal/report"
)

func (s *Server) reportData(w http.ResponseWriter, r *http.Request) *report.Data {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return nil
	}
	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err, "get session")
		return nil
	}
	if session == nil {
		http.NotFound(w, r)
		return nil
	}
	items, err := s.service.ListItems(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err, "list items")
		return nil
	}
	return report.Build(session, items)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	data := s.reportData(w, r)
	if data == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderHTML(w, data); err != nil {
		s.logger.Error("failed to render report", "session_id", data.Session.ID, "error", err)
	}
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	data := s.reportData(w, r)
	if data == nil {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsxFilename(data.Session)))
	if err := report.WriteXLSX(w, data); err != nil {
		s.logger.Error("failed to write spreadsheet", "session_id", data.Session.ID, "error", err)
	}
}

func xlsxFilename(session *domain.Session) string {
	return fmt.Sprintf("inventory-%d.xlsx", session.ID)
}
