package server

import (
	"net/http"

	"github.com/omercanyy/investrack/internal/models"
)

// handleLabels handles GET /api/labels — all ticker labels.
func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	labels, err := s.app.LotService.ListTickerLabels(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, labels)
}

// handleLabelByTicker handles PUT /api/labels/{ticker}.
func (s *Server) handleLabelByTicker(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}
	ticker := PathParam(r, "/api/labels/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	var req struct {
		Strategy string `json:"strategy"`
		Industry string `json:"industry"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	label := &models.TickerLabel{Ticker: ticker, Strategy: req.Strategy, Industry: req.Industry}
	if err := s.app.LotService.SetTickerLabel(r.Context(), label); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, label)
}

// handleLabelDefinitions handles GET and PUT on /api/labels/definitions —
// the user's strategy and industry name lists.
func (s *Server) handleLabelDefinitions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		defs, err := s.app.LotService.GetLabelDefinitions(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, defs)

	case http.MethodPut:
		var defs models.LabelDefinitions
		if !DecodeJSON(w, r, &defs) {
			return
		}
		if err := s.app.LotService.SaveLabelDefinitions(r.Context(), &defs); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, defs)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}
