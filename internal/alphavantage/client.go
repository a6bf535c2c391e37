// Package alphavantage implements a client for the Alpha Vantage stock
// market API, used by the stock analysis agent examples.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Client queries the Alpha Vantage API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates an Alpha Vantage client.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("alpha vantage API key cannot be empty")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}, nil
}

// SetBaseURL overrides the API endpoint for tests.
func (c *Client) SetBaseURL(baseURL string) { c.baseURL = baseURL }

// Quote is a real-time global quote for one symbol.
type Quote struct {
	Symbol        string
	Price         float64
	Change        float64
	ChangePercent string
	Volume        int64
	LatestDay     string
}

// DailyBar is one day of OHLCV data.
type DailyBar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// GetQuote fetches the latest quote for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	var payload struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.GlobalQuote) == 0 {
		return nil, fmt.Errorf("no quote data for symbol %s", symbol)
	}

	quote := &Quote{
		Symbol:        payload.GlobalQuote["01. symbol"],
		ChangePercent: payload.GlobalQuote["10. change percent"],
		LatestDay:     payload.GlobalQuote["07. latest trading day"],
	}
	quote.Price, _ = strconv.ParseFloat(payload.GlobalQuote["05. price"], 64)
	quote.Change, _ = strconv.ParseFloat(payload.GlobalQuote["09. change"], 64)
	quote.Volume, _ = strconv.ParseInt(payload.GlobalQuote["06. volume"], 10, 64)
	return quote, nil
}

// GetDailySeries fetches up to limit recent daily bars, newest first.
func (c *Client) GetDailySeries(ctx context.Context, symbol string, limit int) ([]DailyBar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if limit <= 0 {
		limit = 30
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)

	var payload struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("no daily series for symbol %s", symbol)
	}

	dates := make([]string, 0, len(payload.Series))
	for date := range payload.Series {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > limit {
		dates = dates[:limit]
	}

	bars := make([]DailyBar, 0, len(dates))
	for _, date := range dates {
		day := payload.Series[date]
		bar := DailyBar{Date: date}
		bar.Open, _ = strconv.ParseFloat(day["1. open"], 64)
		bar.High, _ = strconv.ParseFloat(day["2. high"], 64)
		bar.Low, _ = strconv.ParseFloat(day["3. low"], 64)
		bar.Close, _ = strconv.ParseFloat(day["4. close"], 64)
		bar.Volume, _ = strconv.ParseInt(day["5. volume"], 10, 64)
		bars = append(bars, bar)
	}
	return bars, nil
}

// get issues the request and surfaces Alpha Vantage's in-band errors. The
// API returns HTTP 200 with an "Error Message" or "Note" field instead of a
// non-2xx status.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	endpoint := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("alpha vantage request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	var apiErr struct {
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Information  string `json:"Information"`
	}
	if err := json.Unmarshal(data, &apiErr); err == nil {
		if apiErr.ErrorMessage != "" {
			return fmt.Errorf("alpha vantage error: %s", apiErr.ErrorMessage)
		}
		if apiErr.Note != "" {
			return fmt.Errorf("alpha vantage rate limit: %s", apiErr.Note)
		}
		if apiErr.Information != "" {
			return fmt.Errorf("alpha vantage: %s", apiErr.Information)
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse alpha vantage response: %w", err)
	}
	return nil
}
