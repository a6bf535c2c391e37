package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("demo-key")
	require.NoError(t, err)
	client.SetBaseURL(server.URL)
	return client
}

func TestNewClient_EmptyKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestGetQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
		assert.Equal(t, "demo-key", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{"Global Quote":{
			"01. symbol":"IBM",
			"05. price":"187.4200",
			"06. volume":"3870239",
			"07. latest trading day":"2026-08-28",
			"09. change":"1.2300",
			"10. change percent":"0.6606%"}}`)
	})

	quote, err := client.GetQuote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, "IBM", quote.Symbol)
	assert.InDelta(t, 187.42, quote.Price, 0.0001)
	assert.InDelta(t, 1.23, quote.Change, 0.0001)
	assert.Equal(t, int64(3870239), quote.Volume)
	assert.Equal(t, "0.6606%", quote.ChangePercent)
}

func TestGetQuote_EmptyPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Global Quote":{}}`)
	})
	_, err := client.GetQuote(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestGetQuote_ErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Error Message":"Invalid API call."}`)
	})
	_, err := client.GetQuote(context.Background(), "BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API call")
}

func TestGetQuote_RateLimitNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	})
	_, err := client.GetQuote(context.Background(), "IBM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestGetDailySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TIME_SERIES_DAILY", r.URL.Query().Get("function"))
		fmt.Fprint(w, `{"Time Series (Daily)":{
			"2026-08-27":{"1. open":"185.0","2. high":"186.5","3. low":"184.2","4. close":"186.1","5. volume":"4000000"},
			"2026-08-28":{"1. open":"186.2","2. high":"188.0","3. low":"185.9","4. close":"187.4","5. volume":"3870239"},
			"2026-08-26":{"1. open":"184.0","2. high":"185.2","3. low":"183.1","4. close":"185.0","5. volume":"3500000"}}}`)
	})

	bars, err := client.GetDailySeries(context.Background(), "IBM", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	// newest first
	assert.Equal(t, "2026-08-28", bars[0].Date)
	assert.Equal(t, "2026-08-27", bars[1].Date)
	assert.InDelta(t, 187.4, bars[0].Close, 0.0001)
	assert.Equal(t, int64(3870239), bars[0].Volume)
}

func TestGetDailySeries_EmptySymbol(t *testing.T) {
	client, err := NewClient("demo-key")
	require.NoError(t, err)
	_, err = client.GetDailySeries(context.Background(), "", 10)
	assert.Error(t, err)
}
