package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/omercanyy/investrack/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Lots
	mux.HandleFunc("/api/lots/", s.routeLots) // handles {id} and {id}/close
	mux.HandleFunc("/api/lots", s.handleLots)
	mux.HandleFunc("/api/closed-lots/", s.handleClosedLotByID)
	mux.HandleFunc("/api/closed-lots", s.handleClosedLots)

	// Portfolio analytics
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/positions", s.handlePortfolioPositions)
	mux.HandleFunc("/api/portfolio/stats", s.handlePortfolioStats)
	mux.HandleFunc("/api/portfolio/beta", s.handlePortfolioBeta)
	mux.HandleFunc("/api/portfolio/xirr", s.handlePortfolioXIRR)
	mux.HandleFunc("/api/portfolio/alpha", s.handlePortfolioAlpha)
	mux.HandleFunc("/api/portfolio/chart", s.handlePortfolioChart)
	mux.HandleFunc("/api/portfolio/refresh", s.handlePortfolioRefresh)

	// Allocations
	mux.HandleFunc("/api/allocations/", s.handleAllocations)

	// Labels
	mux.HandleFunc("/api/labels/definitions", s.handleLabelDefinitions)
	mux.HandleFunc("/api/labels/", s.handleLabelByTicker)
	mux.HandleFunc("/api/labels", s.handleLabels)
}

// routeLots dispatches /api/lots/{id} and /api/lots/{id}/close.
func (s *Server) routeLots(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/lots/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "lot id is required in path")
		return
	}
	if strings.HasSuffix(path, "/close") {
		s.handleLotClose(w, r)
		return
	}
	s.handleLotByID(w, r)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.app.StartupTime).String(),
		"version": common.GetVersion(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
