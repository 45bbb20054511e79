package http

import (
	"net/http"

	"saldo/internal/core"
)

type transactionDTO struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount,omitempty"`
	Note        string `json:"note,omitempty"`
	Provenance  string `json:"provenance,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
}

func transactionToDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          tx.ID,
		Date:        tx.Date.ISO(),
		Kind:        string(tx.Kind),
		AmountCents: tx.Amount.Cents,
		Amount:      core.FormatCents(tx.Amount.Cents),
		Note:        tx.Note,
		Provenance:  string(tx.Provenance),
		RuleID:      tx.RuleID,
	}
}

func (d transactionDTO) toTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:     d.ID,
		Date:   date,
		Kind:   core.TxKind(d.Kind),
		Amount: core.Money{Cents: d.AmountCents},
		Note:   sanitizeInput(d.Note),
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	txs, err := s.ledger.ListTransactions(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionToDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := dto.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	id, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()

	created, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := dto.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}
	tx.ID = r.PathValue("id")

	if err := s.ledger.UpdateTransaction(r.Context(), tx); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()

	updated, err := s.ledger.GetTransaction(r.Context(), tx.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	w.WriteHeader(http.StatusNoContent)
}
