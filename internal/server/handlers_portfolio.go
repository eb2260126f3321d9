package server

import (
	"net/http"
	"strings"

	"github.com/omercanyy/investrack/internal/analytics"
	"github.com/omercanyy/investrack/internal/models"
)

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*models.PortfolioSnapshot, bool) {
	snap, err := s.app.AnalyticsService.ComputeSnapshot(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return snap, true
}

// handlePortfolio handles GET /api/portfolio — the full derived snapshot.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// handlePortfolioPositions handles GET /api/portfolio/positions.
func (s *Server) handlePortfolioPositions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, snap.Positions)
}

// handlePortfolioStats handles GET /api/portfolio/stats.
func (s *Server) handlePortfolioStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statistics":     snap.Statistics,
		"realized_gain":  snap.RealizedGain,
		"available_cash": snap.AvailableCash,
	})
}

// handlePortfolioBeta handles GET /api/portfolio/beta.
func (s *Server) handlePortfolioBeta(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"weighted_beta": snap.WeightedBeta,
		"distribution":  snap.BetaDistribution,
	})
}

// handlePortfolioXIRR handles GET /api/portfolio/xirr.
func (s *Server) handlePortfolioXIRR(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, snap.XIRR)
}

// handlePortfolioAlpha handles GET /api/portfolio/alpha.
func (s *Server) handlePortfolioAlpha(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, snap.Alpha)
}

// handlePortfolioChart handles GET /api/portfolio/chart — a PNG bar chart of
// position values.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	png, err := analytics.RenderPositionsChart(snap.Positions)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh — forces a
// market-data re-fetch outside the scheduler cadence.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.app.AnalyticsService.RefreshMarketData(r.Context()); err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// handleAllocations handles GET /api/allocations/{account|strategy|industry}.
func (s *Server) handleAllocations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	dimension := strings.TrimPrefix(r.URL.Path, "/api/allocations/")
	allocations, err := s.app.AnalyticsService.ComputeAllocations(r.Context(), dimension)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "unknown allocation dimension") {
			status = http.StatusBadRequest
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, allocations)
}
