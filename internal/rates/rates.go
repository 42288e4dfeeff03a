// Package rates provides USD exchange-rate snapshots for ledger conversion.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is a ticker endpoint returning [{"symbol": ..., "price_usd": ...}]
const DefaultURL = "https://api.coinmarketcap.com/v1/ticker/?limit=0"

// Table maps a currency symbol to its USD price
type Table map[string]float64

// Lookup returns the USD price of symbol. A missing symbol is reported, never assumed 1.
func (t Table) Lookup(symbol string) (float64, bool) {
	rate, ok := t[strings.ToUpper(strings.TrimSpace(symbol))]
	return rate, ok
}

// Source yields a rate snapshot
type Source interface {
	Rates(ctx context.Context) (Table, error)
}

// Static is a fixed snapshot, typically from config
type Static Table

// Rates returns a copy of the static table
func (s Static) Rates(ctx context.Context) (Table, error) {
	t := make(Table, len(s)+1)
	t["USD"] = 1
	for sym, rate := range s {
		t[strings.ToUpper(sym)] = rate
	}
	return t, nil
}

// HTTPSource fetches a ticker list once per call. There is no retry and no caching.
type HTTPSource struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewHTTPSource creates a source for the given ticker URL
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		URL:     url,
		Timeout: timeout,
		Client:  &http.Client{},
	}
}

type ticker struct {
	Symbol   string `json:"symbol"`
	PriceUSD string `json:"price_usd"`
}

// Rates fetches the ticker list and builds a table
func (s *HTTPSource) Rates(ctx context.Context) (Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(body))
	}

	var tickers []ticker
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("decoding ticker list: %w", err)
	}

	table := make(Table, len(tickers)+1)
	table["USD"] = 1
	for _, tk := range tickers {
		price, err := strconv.ParseFloat(tk.PriceUSD, 64)
		if err != nil || price <= 0 {
			continue
		}
		sym := strings.ToUpper(tk.Symbol)
		// first listing wins on duplicate symbols
		if _, seen := table[sym]; seen {
			continue
		}
		table[sym] = price
	}

	return table, nil
}
