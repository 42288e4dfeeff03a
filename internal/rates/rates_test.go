package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"symbol": "BTC", "price_usd": "6500.5"},
			{"symbol": "eth", "price_usd": "300"},
			{"symbol": "BTC", "price_usd": "1"},
			{"symbol": "DEAD", "price_usd": null},
			{"symbol": "ZERO", "price_usd": "0"}
		]`))
	}))
	defer srv.Close()

	table, err := NewHTTPSource(srv.URL, time.Second).Rates(context.Background())
	require.NoError(t, err)

	btc, ok := table.Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, 6500.5, btc)

	eth, ok := table.Lookup("ETH")
	require.True(t, ok)
	assert.Equal(t, 300.0, eth)

	usd, ok := table.Lookup("USD")
	require.True(t, ok)
	assert.Equal(t, 1.0, usd)

	_, ok = table.Lookup("DEAD")
	assert.False(t, ok)
	_, ok = table.Lookup("ZERO")
	assert.False(t, ok)
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL, time.Second).Rates(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not": "a list"}`))
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL, time.Second).Rates(context.Background())
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL, 50*time.Millisecond).Rates(context.Background())
		assert.Error(t, err)
	})
}

func TestStatic(t *testing.T) {
	table, err := Static{"btc": 10}.Rates(context.Background())
	require.NoError(t, err)

	rate, ok := table.Lookup("BTC")
	assert.True(t, ok)
	assert.Equal(t, 10.0, rate)

	_, ok = table.Lookup("LTC")
	assert.False(t, ok)
}
