package http

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"saldo/internal/core"
)

var csvHeader = []string{"id", "date", "kind", "amount", "note", "provenance"}

// handleExportTransactionsCSV streams the month's stored transactions
// as CSV. Recurring occurrences are derived data and not included.
func (s *Server) handleExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	txs, err := s.ledger.ListTransactions(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transactions-%04d-%02d.csv"`, year, month))

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
		return
	}
	for _, tx := range txs {
		record := []string{
			tx.ID,
			tx.Date.ISO(),
			string(tx.Kind),
			core.FormatCents(tx.Amount.Cents),
			tx.Note,
			string(tx.Provenance),
		}
		if err := cw.Write(record); err != nil {
			slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV flush failed", "error", err)
	}
}

// handleImportTransactionsCSV ingests transactions from an uploaded
// CSV with columns date,kind,amount,note. Rows are stored with
// imported provenance. The file is
// processed row by row; the first bad row aborts the import with its
// line number.
func (s *Server) handleImportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	reader := csv.NewReader(r.Body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read CSV header")
		return
	}
	if len(header) < 3 {
		writeError(w, http.StatusBadRequest, "CSV header must contain date, kind and amount columns")
		return
	}

	var imported []string
	// Rows before a failing line stay stored, so any partial progress
	// still invalidates cached projections.
	defer func() {
		if len(imported) > 0 {
			s.invalidateProjections()
		}
	}()

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("line %d: malformed CSV", line))
			return
		}
		if len(record) < 3 {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("line %d: expected at least 3 columns", line))
			return
		}

		date, err := core.ParseDate(record[0])
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("line %d: invalid date %q", line, record[0]))
			return
		}
		cents, err := core.ParseDecimalToCents(record[2])
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("line %d: invalid amount %q", line, record[2]))
			return
		}

		tx := core.Transaction{
			Date:   date,
			Kind:   core.TxKind(record[1]),
			Amount: core.Money{Cents: cents},
		}
		if len(record) > 3 {
			tx.Note = sanitizeInput(record[3])
		}

		id, err := s.ledger.ImportTransaction(r.Context(), tx)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("line %d: %s", line, err.Error()))
			return
		}
		imported = append(imported, id)
	}

	slog.InfoContext(r.Context(), "CSV import completed", "rows", len(imported))
	writeJSON(w, http.StatusCreated, map[string]any{
		"imported": len(imported),
		"ids":      imported,
	})
}
