package bankfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"saldo/internal/core"
)

// HTTPFetcher implements Fetcher against a JSON transactions endpoint.
type HTTPFetcher struct {
	Client  *http.Client
	name    string
	baseURL string
	apiKey  string
}

// NewHTTPFetcher creates a fetcher for one configured feed.
func NewHTTPFetcher(feed FeedConfig, proxyURL string, timeout time.Duration) *HTTPFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		name:    feed.Name,
		baseURL: feed.URL,
		apiKey:  feed.APIKey,
	}
}

func (f *HTTPFetcher) Name() string { return f.name }

// feedResponse is the wire format feeds respond with.
type feedResponse struct {
	Transactions []struct {
		Ref         string `json:"ref"`
		Date        string `json:"date"`
		Kind        string `json:"kind"`
		AmountCents int64  `json:"amount_cents"`
		Note        string `json:"note"`
	} `json:"transactions"`
	Error string `json:"error"`
}

// FetchTransactions pulls transactions dated on or after since.
// Records the feed reports malformed are skipped, not fatal; a broken
// row in a statement should not stall the rest of the import.
func (f *HTTPFetcher) FetchTransactions(ctx context.Context, since core.Date) ([]Record, error) {
	u := fmt.Sprintf("%s?since=%s", f.baseURL, url.QueryEscape(since.ISO()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed %s fetch: %w", f.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed %s read body: %w", f.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s: status %d, body: %s", f.name, resp.StatusCode, string(body))
	}

	var parsed feedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("feed %s decode: %w", f.name, err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("feed %s api error: %s", f.name, parsed.Error)
	}

	records := make([]Record, 0, len(parsed.Transactions))
	for _, tx := range parsed.Transactions {
		if tx.Ref == "" {
			continue
		}
		date, err := core.ParseDate(tx.Date)
		if err != nil {
			continue
		}
		kind := core.TxKind(tx.Kind)
		if kind.Validate() != nil || tx.AmountCents < 0 {
			continue
		}
		records = append(records, Record{
			Ref:         tx.Ref,
			Date:        date,
			Kind:        kind,
			AmountCents: tx.AmountCents,
			Note:        tx.Note,
		})
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
