package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/omercanyy/investrack/internal/models"
)

// lotRequest is the wire format for creating or updating an open lot.
type lotRequest struct {
	Ticker    string  `json:"ticker"`
	Amount    float64 `json:"amount"`
	FillPrice float64 `json:"fill_price"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Account   string  `json:"account"`
}

// closeRequest is the wire format for closing (all or part of) a lot.
type closeRequest struct {
	Amount    float64 `json:"amount"`
	ExitPrice float64 `json:"exit_price"`
	ExitDate  string  `json:"exit_date"` // YYYY-MM-DD
}

// closedLotRequest is the wire format for editing a closed lot.
type closedLotRequest struct {
	Ticker    string  `json:"ticker"`
	Amount    float64 `json:"amount"`
	FillPrice float64 `json:"fill_price"`
	Date      string  `json:"date"`
	ExitPrice float64 `json:"exit_price"`
	ExitDate  string  `json:"exit_date"`
	Account   string  `json:"account"`
}

func parseDate(w http.ResponseWriter, field, value string) (time.Time, bool) {
	d, err := time.Parse(models.DateFormat, value)
	if err != nil {
		WriteError(w, http.StatusBadRequest, field+" must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// handleLots handles GET (list) and POST (create) on /api/lots.
func (s *Server) handleLots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lots, err := s.app.LotService.ListLots(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, lots)

	case http.MethodPost:
		var req lotRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		date, ok := parseDate(w, "date", req.Date)
		if !ok {
			return
		}
		lot, err := s.app.LotService.AddLot(r.Context(), req.Ticker, req.Amount, req.FillPrice, date, req.Account)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, lot)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleLotByID handles PUT and DELETE on /api/lots/{id}.
func (s *Server) handleLotByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/lots/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "lot id is required in path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req lotRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		date, ok := parseDate(w, "date", req.Date)
		if !ok {
			return
		}
		lot := &models.Lot{
			ID:        id,
			Ticker:    req.Ticker,
			Amount:    req.Amount,
			FillPrice: req.FillPrice,
			Date:      date,
			Account:   req.Account,
		}
		if err := s.app.LotService.UpdateLot(r.Context(), lot); err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, lot)

	case http.MethodDelete:
		if err := s.app.LotService.DeleteLot(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleLotClose handles POST /api/lots/{id}/close.
func (s *Server) handleLotClose(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	id := PathParam(r, "/api/lots/", "/close")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "lot id is required in path")
		return
	}

	var req closeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	exitDate, ok := parseDate(w, "exit_date", req.ExitDate)
	if !ok {
		return
	}

	closed, err := s.app.LotService.CloseLot(r.Context(), id, req.Amount, req.ExitPrice, exitDate)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, closed)
}

// handleClosedLots handles GET /api/closed-lots.
func (s *Server) handleClosedLots(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	closed, err := s.app.LotService.ListClosedLots(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, closed)
}

// handleClosedLotByID handles PUT and DELETE on /api/closed-lots/{id}.
func (s *Server) handleClosedLotByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/closed-lots/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "closed lot id is required in path")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req closedLotRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		date, ok := parseDate(w, "date", req.Date)
		if !ok {
			return
		}
		exitDate, ok := parseDate(w, "exit_date", req.ExitDate)
		if !ok {
			return
		}
		lot := &models.ClosedLot{
			ID:        id,
			Ticker:    req.Ticker,
			Amount:    req.Amount,
			FillPrice: req.FillPrice,
			Date:      date,
			ExitPrice: req.ExitPrice,
			ExitDate:  exitDate,
			Account:   req.Account,
		}
		if err := s.app.LotService.UpdateClosedLot(r.Context(), lot); err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, lot)

	case http.MethodDelete:
		if err := s.app.LotService.DeleteClosedLot(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
