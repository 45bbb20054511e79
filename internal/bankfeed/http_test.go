package bankfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func TestHTTPFetcher_FetchTransactions(t *testing.T) {
	var gotSince, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"transactions": [
				{"ref": "stmt-2", "date": "2024-03-06", "kind": "income", "amount_cents": 150000, "note": "salary"},
				{"ref": "stmt-1", "date": "2024-03-05", "kind": "expense", "amount_cents": 2350, "note": "coffee"},
				{"ref": "", "date": "2024-03-07", "kind": "expense", "amount_cents": 100},
				{"ref": "stmt-3", "date": "bogus", "kind": "expense", "amount_cents": 100},
				{"ref": "stmt-4", "date": "2024-03-08", "kind": "transfer", "amount_cents": 100}
			]
		}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(FeedConfig{
		Name:   "testbank",
		URL:    server.URL,
		APIKey: "secret",
	}, "", 5*time.Second)

	records, err := fetcher.FetchTransactions(context.Background(), core.Date{Year: 2024, Month: 3, Day: 1})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", gotSince)
	assert.Equal(t, "Bearer secret", gotAuth)

	// Malformed rows are skipped; the rest come back date-ascending.
	require.Len(t, records, 2)
	assert.Equal(t, "stmt-1", records[0].Ref)
	assert.Equal(t, core.Expense, records[0].Kind)
	assert.Equal(t, int64(2350), records[0].AmountCents)
	assert.Equal(t, "stmt-2", records[1].Ref)
	assert.Equal(t, int64(150000), records[1].AmountCents)
}

func TestHTTPFetcher_FetchTransactions_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(FeedConfig{Name: "testbank", URL: server.URL}, "", 5*time.Second)

	_, err := fetcher.FetchTransactions(context.Background(), core.Date{Year: 2024, Month: 3, Day: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestHTTPFetcher_FetchTransactions_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(FeedConfig{Name: "testbank", URL: server.URL}, "", 5*time.Second)

	_, err := fetcher.FetchTransactions(context.Background(), core.Date{Year: 2024, Month: 3, Day: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
