package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/mwt/signals/internal/contracts"
	"github.com/mwt/signals/pkg/database"
	"github.com/mwt/signals/pkg/logger"
)

// Store persists order history and position snapshots to Postgres for
// audit. The core never reads this state back into a run; it exists
// for the status API and operator review.
type Store struct {
	db     *database.DB
	logger *logger.Logger
}

func NewStore(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// EnsureSchema creates the audit tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS order_history (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			run_date DATE NOT NULL,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			order_type TEXT NOT NULL,
			limit_price NUMERIC(14,4),
			time_in_force TEXT NOT NULL,
			good_till_date TEXT,
			attach_moc BOOLEAN NOT NULL DEFAULT FALSE,
			security_type TEXT NOT NULL,
			strategy TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_history_run_date ON order_history (run_date)`,
		`CREATE TABLE IF NOT EXISTS position_snapshots (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			run_date DATE NOT NULL,
			symbol TEXT NOT NULL,
			strategy TEXT NOT NULL,
			direction TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			entry_price NUMERIC(14,4),
			entry_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_snapshots_run_date ON position_snapshots (run_date)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Emit inserts the run's orders.
func (s *Store) Emit(ctx context.Context, runID string, date time.Time, orders []contracts.Order) error {
	const insert = `
		INSERT INTO order_history (
			run_id, run_date, symbol, action, quantity, order_type,
			limit_price, time_in_force, good_till_date, attach_moc,
			security_type, strategy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, o := range orders {
		var limit *float64
		if o.OrderType == contracts.OrderTypeLimit {
			limit = &o.LimitPrice
		}
		_, err := s.db.Pool.Exec(ctx, insert,
			runID, date, o.Symbol, string(o.Action), o.Quantity,
			string(o.OrderType), limit, string(o.TimeInForce),
			o.GoodTillDate, o.AttachMOC, o.SecurityType, o.Strategy,
		)
		if err != nil {
			return fmt.Errorf("insert order %s %s: %w", o.Action, o.Symbol, err)
		}
	}
	s.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"orders": len(orders),
	}).Info("Order history saved")
	return nil
}

// SnapshotPositions records the position snapshot the run reconciled
// against.
func (s *Store) SnapshotPositions(ctx context.Context, runID string, date time.Time, positions []contracts.Position) error {
	const insert = `
		INSERT INTO position_snapshots (
			run_id, run_date, symbol, strategy, direction, quantity,
			entry_price, entry_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, p := range positions {
		var entryDate *time.Time
		if !p.EntryDate.IsZero() {
			entryDate = &p.EntryDate
		}
		_, err := s.db.Pool.Exec(ctx, insert,
			runID, date, p.Symbol, p.Strategy, string(p.Direction),
			p.Quantity, p.EntryPrice, entryDate,
		)
		if err != nil {
			return fmt.Errorf("insert position snapshot %s: %w", p.Symbol, err)
		}
	}
	return nil
}

// StoredOrder is one order history row.
type StoredOrder struct {
	RunID     string          `json:"run_id"`
	RunDate   time.Time       `json:"run_date"`
	Order     contracts.Order `json:"order"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListOrdersByDate returns the orders recorded for one run date,
// newest run first.
func (s *Store) ListOrdersByDate(ctx context.Context, date time.Time) ([]StoredOrder, error) {
	const query = `
		SELECT run_id, run_date, symbol, action, quantity, order_type,
		       COALESCE(limit_price, 0), time_in_force,
		       COALESCE(good_till_date, ''), attach_moc, security_type,
		       strategy, created_at
		FROM order_history
		WHERE run_date = $1
		ORDER BY created_at DESC, id`

	rows, err := s.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []StoredOrder
	for rows.Next() {
		var so StoredOrder
		var action, orderType, tif string
		err := rows.Scan(
			&so.RunID, &so.RunDate, &so.Order.Symbol, &action,
			&so.Order.Quantity, &orderType, &so.Order.LimitPrice, &tif,
			&so.Order.GoodTillDate, &so.Order.AttachMOC,
			&so.Order.SecurityType, &so.Order.Strategy, &so.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		so.Order.Action = contracts.Action(action)
		so.Order.OrderType = contracts.OrderType(orderType)
		so.Order.TimeInForce = contracts.TimeInForce(tif)
		out = append(out, so)
	}
	return out, rows.Err()
}

// LatestRunDate returns the most recent recorded run date, or a zero
// time when no runs have been stored.
func (s *Store) LatestRunDate(ctx context.Context) (time.Time, error) {
	const query = `SELECT COALESCE(MAX(run_date), '0001-01-01'::date) FROM order_history`

	var date time.Time
	if err := s.db.Pool.QueryRow(ctx, query).Scan(&date); err != nil {
		return time.Time{}, fmt.Errorf("latest run date: %w", err)
	}
	if date.Year() <= 1 {
		return time.Time{}, nil
	}
	return date, nil
}
