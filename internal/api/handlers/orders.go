package handlers

import (
	"net/http"
	"time"

	"github.com/mwt/signals/internal/sink"
	"github.com/mwt/signals/pkg/logger"
)

// OrderHandler serves recorded order history.
type OrderHandler struct {
	store  *sink.Store
	logger *logger.Logger
}

// NewOrderHandler builds the handler. store may be nil when the
// history database is disabled.
func NewOrderHandler(store *sink.Store, log *logger.Logger) *OrderHandler {
	return &OrderHandler{store: store, logger: log}
}

// List returns the orders recorded for one run date.
// GET /api/v1/orders?date=2026-08-28 (default: today)
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "order history store is disabled")
		return
	}

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	orders, err := h.store.ListOrdersByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		respondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"count":  len(orders),
		"orders": orders,
	})
}

// LatestRun returns the most recent recorded run and its orders.
// GET /api/v1/runs/latest
func (h *OrderHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "order history store is disabled")
		return
	}

	date, err := h.store.LatestRunDate(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest run date")
		respondError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}
	if date.IsZero() {
		respondError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	orders, err := h.store.ListOrdersByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders for latest run")
		respondError(w, http.StatusInternalServerError, "failed to load latest run")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date.Format("2006-01-02"),
		"count":  len(orders),
		"orders": orders,
	})
}
