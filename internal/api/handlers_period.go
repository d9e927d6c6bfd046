package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// handleGetPeriods resolves daily, monthly, and annual figures for
// ?date=YYYY-MM-DD (defaulting to today). Periods with no data in any
// source come back null, which the caller must not render as zero.
func (s *Server) handleGetPeriods(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		respondCategorized(w, err)
		return
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	report, err := s.periods.Report(r.Context(), date)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// IngestPeriodRequest is the request body for storing an authoritative
// period figure.
type IngestPeriodRequest struct {
	Date       string                     `json:"date"`
	Total      *decimal.Decimal           `json:"total,omitempty"`
	ByCategory map[string]decimal.Decimal `json:"byCategory,omitempty"`
}

// handleIngestPeriod stores a figure as the fresh source for one period.
// The period granularity comes from the path, the covered date from the
// body.
func (s *Server) handleIngestPeriod(w http.ResponseWriter, r *http.Request) {
	period := types.Period(mux.Vars(r)["period"])

	var req IngestPeriodRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error(), nil)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondCategorized(w, apperrors.NewValidationError("date", "must be formatted YYYY-MM-DD"))
		return
	}

	datum := &models.PeriodDatum{Total: req.Total, ByCategory: req.ByCategory}
	if err := s.periods.Ingest(r.Context(), period, date, datum); err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period": period,
		"date":   date.Format(dateLayout),
		"datum":  datum,
	})
}

// handleGetDashboard returns the dashboard summary, cached or freshly
// built.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summary(r.Context())
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// handleRefreshDashboard rebuilds the dashboard summary from the
// provider's live balances.
func (s *Server) handleRefreshDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Refresh(r.Context())
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
