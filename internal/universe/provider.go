// Package universe resolves named indexes and watchlists to symbol
// lists. The primary path is the provider's JSON API; when a universe
// is only published as an HTML constituents page, the provider falls
// back to scraping the symbol column.
package universe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/config"
	"github.com/mwt/signals/pkg/httputil"
	"github.com/mwt/signals/pkg/logger"
)

// Provider implements contracts.UniverseProvider.
type Provider struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

func NewProvider(cfg config.MarketDataConfig, log *logger.Logger) *Provider {
	return &Provider{
		http:    httputil.New(log, cfg.RequestTimeout),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log,
	}
}

type universeResponse struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

// Symbols lists the tradable symbols of a named universe, sorted and
// de-duplicated.
func (p *Provider) Symbols(ctx context.Context, universe string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/v1/universe/%s", p.baseURL, url.PathEscape(universe))

	var resp universeResponse
	err := p.http.GetJSON(ctx, endpoint, p.headers(), &resp)
	if err == nil {
		return normalize(resp.Symbols), nil
	}

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		p.logger.WithField("universe", universe).Debug("Universe not on JSON API, scraping constituents page")
		return p.scrape(ctx, universe)
	}
	return nil, fmt.Errorf("%w: universe %s: %v", contracts.ErrDataFetch, universe, err)
}

// scrape pulls the symbol column out of the universe's HTML
// constituents table.
func (p *Provider) scrape(ctx context.Context, universe string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/universe/%s", p.baseURL, url.PathEscape(universe))

	resp, err := p.http.Get(ctx, endpoint, p.headers())
	if err != nil {
		return nil, fmt.Errorf("%w: universe page %s: %v", contracts.ErrDataFetch, universe, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: universe page %s: status %d", contracts.ErrDataFetch, universe, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse universe page %s: %v", contracts.ErrDataFetch, universe, err)
	}

	var symbols []string
	doc.Find("table.constituents tbody tr").Each(func(_ int, row *goquery.Selection) {
		symbol := strings.TrimSpace(row.Find("td").First().Text())
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	})
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: universe %s: empty constituents table", contracts.ErrNotFound, universe)
	}
	return normalize(symbols), nil
}

func (p *Provider) headers() map[string]string {
	if p.apiKey == "" {
		return nil
	}
	return map[string]string{"X-API-Key": p.apiKey}
}

func normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
