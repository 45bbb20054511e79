package http

import (
	"log/slog"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/services"
)

type snapshotDTO struct {
	Date                string `json:"date"`
	DailyDeltaCents     int64  `json:"daily_delta_cents"`
	DailyDelta          string `json:"daily_delta"`
	RunningBalanceCents int64  `json:"running_balance_cents"`
	RunningBalance      string `json:"running_balance"`
}

type cashflowResponse struct {
	Year                 int              `json:"year"`
	Month                int              `json:"month"`
	StartingBalanceCents int64            `json:"starting_balance_cents"`
	Days                 []snapshotDTO    `json:"days"`
	Occurrences          []transactionDTO `json:"occurrences"`
}

func cashflowFromProjection(proj services.MonthProjection) cashflowResponse {
	resp := cashflowResponse{
		Year:                 proj.Year,
		Month:                proj.Month,
		StartingBalanceCents: proj.StartingBalance.Cents,
		Days:                 make([]snapshotDTO, 0, len(proj.Snapshots)),
		Occurrences:          make([]transactionDTO, 0, len(proj.Occurrences)),
	}
	for _, snap := range proj.Snapshots {
		resp.Days = append(resp.Days, snapshotDTO{
			Date:                snap.Date.ISO(),
			DailyDeltaCents:     snap.DailyDelta.Cents,
			DailyDelta:          core.FormatCents(snap.DailyDelta.Cents),
			RunningBalanceCents: snap.RunningBalance.Cents,
			RunningBalance:      core.FormatCents(snap.RunningBalance.Cents),
		})
	}
	for _, occ := range proj.Occurrences {
		resp.Occurrences = append(resp.Occurrences, transactionToDTO(occ))
	}
	return resp
}

// handleGetCashflow serves the month projection.
func (s *Server) handleGetCashflow(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	proj, err := s.getProjection(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cashflowFromProjection(proj))
}

// handleExportCashflow pushes the month projection to the configured
// spreadsheet.
func (s *Server) handleExportCashflow(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "sheet export not configured")
		return
	}

	year, month := parseYearMonth(r)

	proj, err := s.getProjection(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := s.exporter.ExportMonth(r.Context(), proj); err != nil {
		slog.ErrorContext(r.Context(), "Sheet export failed", "error", err, "year", year, "month", month)
		writeError(w, http.StatusBadGateway, "sheet export failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"exported": len(proj.Snapshots),
		"year":     year,
		"month":    month,
	})
}
