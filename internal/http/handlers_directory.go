package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/validate"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, "Unable to fetch categories")
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	NewResponse().Data(categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	v, err := decodeBody(w, r, validate.CreateNamed)
	if err != nil {
		writeError(w, r, err, "Unable to create category")
		return
	}
	category, err := s.ledger.CreateCategory(r.Context(), v.String("name"))
	if err != nil {
		writeError(w, r, err, "Unable to create category")
		return
	}
	NewResponse().Status(http.StatusCreated).Data(category).Write(w)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.ledger.ListMembers(r.Context())
	if err != nil {
		writeError(w, r, err, "Unable to fetch members")
		return
	}
	if members == nil {
		members = []core.Member{}
	}
	NewResponse().Data(members).Write(w)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	v, err := decodeBody(w, r, validate.CreateNamed)
	if err != nil {
		writeError(w, r, err, "Unable to create member")
		return
	}
	member, err := s.ledger.CreateMember(r.Context(), v.String("name"))
	if err != nil {
		writeError(w, r, err, "Unable to create member")
		return
	}
	NewResponse().Status(http.StatusCreated).Data(member).Write(w)
}
