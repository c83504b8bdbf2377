package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/cv-architect/internal/analysis"
	"github.com/jonathan/cv-architect/internal/rendering"
	"github.com/jonathan/cv-architect/internal/types"
)

// HistoryResponse lists history items, newest first.
type HistoryResponse struct {
	Items []types.HistoryItem `json:"items"`
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, HistoryResponse{Items: s.history.LoadAll(r.Context())})
}

// lookupItem resolves the {id} path value, writing the error response on failure.
func (s *Server) lookupItem(w http.ResponseWriter, r *http.Request) (types.HistoryItem, bool) {
	item, err := s.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return types.HistoryItem{}, false
	}
	return item, true
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, item)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.DeleteHistory(r.Context(), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectHistory shows a stored analysis in the shared state without contacting the model.
func (s *Server) handleSelectHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := s.controller.SelectHistory(r.Context(), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.controller.Snapshot())
}

// handleReport serves the printable HTML report. ?print=false omits the print script.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}
	autoPrint := r.URL.Query().Get("print") != "false"
	html, err := rendering.ReportForItem(item, autoPrint)
	if err != nil {
		s.errorResponse(w, analysis.Classify(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Warn("failed to write report", "id", item.ID, "error", err)
	}
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}
	if s.pdf == nil {
		s.errorResponse(w, analysis.NewFailure(analysis.KindPresentationBlocked, nil))
		return
	}
	doc, err := s.pdf.ReportPDF(r.Context(), item)
	if err != nil {
		s.errorResponse(w, analysis.Classify(err))
		return
	}
	s.writeDocument(w, doc)
}

func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookupItem(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(item.Result.CoverLetter) == "" {
		s.jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "This analysis has no cover letter."})
		return
	}
	s.writeDocument(w, rendering.CoverLetter(item.Result.CoverLetter))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	doc, err := rendering.CVTemplate(r.PathValue("kind"))
	if err != nil {
		s.jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	s.writeDocument(w, doc)
}
