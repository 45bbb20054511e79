package http

import (
	"net/http"

	"saldo/internal/core"
)

type balanceDTO struct {
	Cents  int64  `json:"cents"`
	Amount string `json:"amount,omitempty"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.StartingBalance(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceDTO{
		Cents:  balance.Cents,
		Amount: core.FormatCents(balance.Cents),
	})
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var dto balanceDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Starting balances may legitimately be negative.
	if err := s.ledger.SetStartingBalance(r.Context(), core.Money{Cents: dto.Cents}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	writeJSON(w, http.StatusOK, balanceDTO{
		Cents:  dto.Cents,
		Amount: core.FormatCents(dto.Cents),
	})
}
