package server

import (
	"net/http"

	"github.com/folioapp/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Market data
	mux.HandleFunc("/api/quote/", s.handleQuote)
	mux.HandleFunc("/api/indicators/", s.handleIndicators)

	// Portfolio
	mux.HandleFunc("/api/portfolio/report", s.handlePortfolioReport)
	mux.HandleFunc("/api/portfolio/chart.png", s.handlePortfolioChart)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
