// Package broker reads the trading account snapshot: equity, buying
// power, and open positions with their strategy attribution. The
// snapshot is the single source of truth for reconciliation; the core
// never submits orders through this client.
package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/config"
	"github.com/mwt/signals/pkg/httputil"
	"github.com/mwt/signals/pkg/logger"
)

// Client implements contracts.AccountClient against the account API.
type Client struct {
	http      *httputil.Client
	baseURL   string
	apiKey    string
	accountID string
	user      string
	logger    *logger.Logger
}

func NewClient(cfg config.BrokerConfig, log *logger.Logger) *Client {
	return &Client{
		http:      httputil.New(log, 30*time.Second),
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		accountID: cfg.AccountID,
		user:      cfg.User,
		logger:    log,
	}
}

type summaryResponse struct {
	AccountID      string  `json:"account_id"`
	AccountType    string  `json:"account_type"`
	Equity         float64 `json:"equity"`
	BuyingPower    float64 `json:"buying_power"`
	CashBalance    float64 `json:"cash_balance"`
	MarketValue    float64 `json:"market_value"`
	RequiredMargin float64 `json:"required_margin"`
}

// AccountSummary fetches the account's capital figures. Failure here
// is fatal to the run: without buying power nothing can be sized.
func (c *Client) AccountSummary(ctx context.Context) (contracts.AccountSummary, error) {
	endpoint := fmt.Sprintf("%s/api/accounts/%s/summary", c.baseURL, c.accountID)

	var resp summaryResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return contracts.AccountSummary{}, fmt.Errorf("account summary: %w", err)
	}
	return contracts.AccountSummary{
		AccountID:      resp.AccountID,
		AccountType:    resp.AccountType,
		Equity:         resp.Equity,
		BuyingPower:    resp.BuyingPower,
		CashBalance:    resp.CashBalance,
		MarketValue:    resp.MarketValue,
		RequiredMargin: resp.RequiredMargin,
	}, nil
}

type positionPayload struct {
	Symbol     string  `json:"symbol"`
	Strategy   string  `json:"strategy"`
	User       string  `json:"user"`
	Quantity   int     `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	EntryDate  string  `json:"entry_date"`
}

type positionsResponse struct {
	Positions []positionPayload `json:"positions"`
}

// OpenPositions fetches the account's open positions, filtered to the
// configured user and to rows with a nonzero quantity. Direction is
// derived from the quantity sign.
func (c *Client) OpenPositions(ctx context.Context) ([]contracts.Position, error) {
	endpoint := fmt.Sprintf("%s/api/accounts/%s/positions", c.baseURL, c.accountID)

	var resp positionsResponse
	if err := c.http.GetJSON(ctx, endpoint, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("open positions: %w", err)
	}

	positions := make([]contracts.Position, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		if p.Quantity == 0 {
			continue
		}
		if c.user != "" && !strings.EqualFold(p.User, c.user) {
			continue
		}
		dir := contracts.DirectionLong
		if p.Quantity < 0 {
			dir = contracts.DirectionShort
		}
		entryDate, err := time.Parse("2006-01-02", p.EntryDate)
		if err != nil {
			c.logger.WithField("symbol", p.Symbol).Warnf("Unparseable entry date %q", p.EntryDate)
		}
		positions = append(positions, contracts.Position{
			Symbol:     strings.ToUpper(p.Symbol),
			Strategy:   p.Strategy,
			Direction:  dir,
			Quantity:   p.Quantity,
			EntryPrice: p.EntryPrice,
			EntryDate:  entryDate,
		})
	}
	return positions, nil
}

// OpenPositionCost sums the cost basis of a position snapshot; the
// capital allocator counts deployed capital toward its base.
func OpenPositionCost(positions []contracts.Position) float64 {
	var total float64
	for _, p := range positions {
		total += p.CostBasis()
	}
	return total
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["Authorization"] = "Bearer " + c.apiKey
	}
	return h
}
