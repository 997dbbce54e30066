package server

import (
	"net/http"
)

// handleQuote handles GET /api/quote/{symbol}.
// The response always carries a resolution: an unknown symbol comes back
// with known=false rather than an error status.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/quote/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	resolved := s.app.PriceService.ResolveSymbol(r.Context(), symbol)
	WriteJSON(w, http.StatusOK, resolved)
}

// handleIndicators handles GET /api/indicators/{symbol}?range=1y.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/indicators/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	ind, err := s.app.IndicatorService.ComputeIndicators(r.Context(), symbol, r.URL.Query().Get("range"))
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Indicator computation failed")
		WriteError(w, http.StatusBadGateway, "Failed to compute indicators: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, ind)
}

// handlePortfolioReport handles GET /api/portfolio/report.
func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.AnalyticsService.Report(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Portfolio report failed")
		WriteError(w, http.StatusInternalServerError, "Failed to build report: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handlePortfolioChart handles GET /api/portfolio/chart.png.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.AnalyticsService.RenderChart(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Failed to render chart: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
