package http

import (
	"net/http"

	"saldo/internal/core"
)

type ruleDTO struct {
	ID          string `json:"id,omitempty"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount,omitempty"`
	Note        string `json:"note,omitempty"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Weekday     int    `json:"weekday"`
	DayOfMonth  int    `json:"day_of_month"`
	Active      bool   `json:"active"`
}

func ruleToDTO(rule core.RecurringRule) ruleDTO {
	dto := ruleDTO{
		ID:          rule.ID,
		Kind:        string(rule.Kind),
		AmountCents: rule.Amount.Cents,
		Amount:      core.FormatCents(rule.Amount.Cents),
		Note:        rule.Note,
		Frequency:   string(rule.Frequency),
		StartDate:   rule.StartDate.ISO(),
		Weekday:     rule.Weekday,
		DayOfMonth:  rule.DayOfMonth,
		Active:      rule.Active,
	}
	if !rule.EndDate.IsZero() {
		dto.EndDate = rule.EndDate.ISO()
	}
	return dto
}

func (d ruleDTO) toRule() (core.RecurringRule, error) {
	start, err := core.ParseDate(d.StartDate)
	if err != nil {
		return core.RecurringRule{}, err
	}
	rule := core.RecurringRule{
		ID:         d.ID,
		Kind:       core.TxKind(d.Kind),
		Amount:     core.Money{Cents: d.AmountCents},
		Note:       sanitizeInput(d.Note),
		Frequency:  core.Frequency(d.Frequency),
		StartDate:  start,
		Weekday:    d.Weekday,
		DayOfMonth: d.DayOfMonth,
		Active:     d.Active,
	}
	if d.EndDate != "" {
		end, err := core.ParseDate(d.EndDate)
		if err != nil {
			return core.RecurringRule{}, err
		}
		rule.EndDate = end
	}
	return rule, nil
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.ledger.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleToDTO(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var dto ruleDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := dto.toRule()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	id, err := s.ledger.CreateRule(r.Context(), rule)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()

	rule.ID = id
	writeJSON(w, http.StatusCreated, ruleToDTO(rule))
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var dto ruleDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := dto.toRule()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}
	rule.ID = r.PathValue("id")

	if err := s.ledger.UpdateRule(r.Context(), rule); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	writeJSON(w, http.StatusOK, ruleToDTO(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteRule(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateProjections()
	w.WriteHeader(http.StatusNoContent)
}
