package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/validate"
)

// GET /api/v1/accounts
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err, "Unable to fetch accounts")
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	NewResponse().Data(accounts).Write(w)
}

// POST /api/v1/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	v, err := decodeBody(w, r, validate.CreateAccount)
	if err != nil {
		writeError(w, r, err, "Unable to create account")
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), services.NewAccount{
		Name:         v.String("name"),
		Type:         core.AccountType(v.String("type")),
		Number:       v.OptionalString("number"),
		OpeningCents: v.Int("opening"),
	})
	if err != nil {
		writeError(w, r, err, "Unable to create account")
		return
	}
	NewResponse().Status(http.StatusCreated).Data(account).Write(w)
}
