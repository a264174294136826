// Package marketdata wraps the bar provider's HTTP API. It is a thin
// collaborator with no algorithmic content: it fetches OHLCV series,
// maps provider failures onto the core error taxonomy, and checks
// data freshness against the expected last trading day.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/mwt/signals/internal/calendar"
	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/config"
	"github.com/mwt/signals/pkg/httputil"
	"github.com/mwt/signals/pkg/logger"
)

const dateLayout = "2006-01-02"

// Client implements contracts.BarProvider against the provider's
// JSON API. Requests are rate limited to the provider's budget.
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

func NewClient(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	client := httputil.New(log, cfg.RequestTimeout)
	if cfg.RatePerSecond > 0 {
		client = client.WithRateLimit(cfg.RatePerSecond)
	}
	return &Client{
		http:    client,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log,
	}
}

type barPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type barsResponse struct {
	Symbol string       `json:"symbol"`
	Bars   []barPayload `json:"bars"`
}

// Bars returns up to count daily bars ending at the latest close.
func (c *Client) Bars(ctx context.Context, symbol string, count int) ([]contracts.PriceBar, error) {
	return c.fetch(ctx, symbol, count, time.Time{})
}

// BarsEndingAt returns up to count daily bars ending at or before end.
func (c *Client) BarsEndingAt(ctx context.Context, symbol string, count int, end time.Time) ([]contracts.PriceBar, error) {
	return c.fetch(ctx, symbol, count, end)
}

func (c *Client) fetch(ctx context.Context, symbol string, count int, end time.Time) ([]contracts.PriceBar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("count", strconv.Itoa(count))
	if !end.IsZero() {
		params.Set("end", end.Format(dateLayout))
	}
	endpoint := fmt.Sprintf("%s/v1/bars?%s", c.baseURL, params.Encode())

	var resp barsResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", contracts.ErrNotFound, symbol)
		}
		return nil, fmt.Errorf("%w: bars for %s: %v", contracts.ErrDataFetch, symbol, err)
	}

	bars := make([]contracts.PriceBar, 0, len(resp.Bars))
	for _, b := range resp.Bars {
		date, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q for %s", contracts.ErrDataFetch, b.Date, symbol)
		}
		bars = append(bars, contracts.PriceBar{
			Date:   date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// Fresh checks whether the provider's latest bar for the reference
// symbol matches the expected last trading day. Stale data downgrades
// the run to a warning, it does not abort it.
func (c *Client) Fresh(ctx context.Context, referenceSymbol string, asOf time.Time) (bool, time.Time, error) {
	bars, err := c.Bars(ctx, referenceSymbol, 2)
	if err != nil {
		return false, time.Time{}, err
	}
	if len(bars) == 0 {
		return false, time.Time{}, fmt.Errorf("%w: no bars for %s", contracts.ErrDataFetch, referenceSymbol)
	}
	last := contracts.Last(bars).Date
	expected := calendar.ExpectedLastTradingDay(asOf)
	return calendar.SameDay(last, expected), last, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"X-API-Key": c.apiKey}
}
