package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/validate"
)

// GET /api/v1/transactions?page&pageSize&startDate&endDate
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	v, err := decodeQuery(r, validate.ListTransactions)
	if err != nil {
		writeError(w, r, err, "Unable to fetch transactions")
		return
	}

	page, err := s.ledger.ListTransactions(r.Context(), services.ListQuery{
		Page:     int(min(v.Int("page"), int64(1<<31-1))),
		PageSize: int(min(v.Int("pageSize"), services.MaxPageSize)),
		Range:    core.DateRange{From: v.Date("startDate"), To: v.Date("endDate")},
	})
	if err != nil {
		writeError(w, r, err, "Unable to fetch transactions")
		return
	}
	NewResponse().
		Data(page.Items).
		Meta(PageMeta{Page: page.Page, PageSize: page.PageSize, Total: page.Total}).
		Write(w)
}

// POST /api/v1/transactions
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := decodeBody(w, r, validate.CreateTransaction)
	if err != nil {
		writeError(w, r, err, "Unable to create transaction")
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), services.NewTransaction{
		Date:        v.Date("date"),
		AmountCents: v.Int("amountCents"),
		Type:        core.TransactionType(v.String("type")),
		AccountID:   v.String("accountId"),
		CategoryID:  v.OptionalString("categoryId"),
		MemberID:    v.OptionalString("memberId"),
		Description: v.OptionalString("description"),
		Reference:   v.OptionalString("reference"),
	})
	if err != nil {
		writeError(w, r, err, "Unable to create transaction")
		return
	}
	NewResponse().Status(http.StatusCreated).Data(tx).Write(w)
}

// PATCH /api/v1/transactions with {id, ...changed fields}
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := decodeBody(w, r, validate.UpdateTransaction)
	if err != nil {
		writeError(w, r, err, "Unable to update transaction")
		return
	}

	patch := services.TransactionPatch{
		ID:          v.String("id"),
		CategoryID:  v.StringUpdate("categoryId"),
		MemberID:    v.StringUpdate("memberId"),
		Description: v.StringUpdate("description"),
		Reference:   v.StringUpdate("reference"),
	}
	if v.Has("date") {
		d := v.Date("date")
		patch.Date = &d
	}
	if v.Has("amountCents") {
		n := v.Int("amountCents")
		patch.AmountCents = &n
	}
	if v.Has("type") {
		t := core.TransactionType(v.String("type"))
		patch.Type = &t
	}
	if v.Has("accountId") {
		id := v.String("accountId")
		patch.AccountID = &id
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), patch)
	if err != nil {
		writeError(w, r, err, "Unable to update transaction")
		return
	}
	NewResponse().Data(tx).Write(w)
}

// DELETE /api/v1/transactions?id=
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := decodeQuery(r, validate.DeleteTransaction)
	if err != nil {
		writeError(w, r, err, "Unable to delete transaction")
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), v.String("id")); err != nil {
		writeError(w, r, err, "Unable to delete transaction")
		return
	}
	NewResponse().Write(w)
}
