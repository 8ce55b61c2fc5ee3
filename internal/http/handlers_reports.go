package http

import (
	"net/http"

	"ledger/internal/services"
	"ledger/internal/validate"
)

// GET /api/v1/reports/income-expense?period&startDate&endDate
func (s *Server) handleIncomeExpense(w http.ResponseWriter, r *http.Request) {
	v, err := decodeQuery(r, validate.IncomeExpenseReport)
	if err != nil {
		writeError(w, r, err, "Unable to fetch report")
		return
	}

	rep, err := s.reports.IncomeExpense(r.Context(), services.ReportQuery{
		Period:    v.String("period"),
		StartDate: v.Date("startDate"),
		EndDate:   v.Date("endDate"),
	})
	if err != nil {
		writeError(w, r, err, "Unable to fetch report")
		return
	}
	NewResponse().Data(rep).Write(w)
}

// GET /api/v1/meta/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context())
	if err != nil {
		writeError(w, r, err, "Unable to fetch summary")
		return
	}
	NewResponse().Data(summary).Write(w)
}
