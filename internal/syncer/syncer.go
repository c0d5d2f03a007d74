// Package syncer runs one incremental order sync: fetch, snapshot,
// new-order selection, watermark advance.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/misdekor/pohoda-bridge/internal/config"
	"github.com/misdekor/pohoda-bridge/internal/eshop"
	"github.com/misdekor/pohoda-bridge/internal/state"
)

// OrderFetcher fetches the full current order list.
type OrderFetcher interface {
	FetchOrders(ctx context.Context) ([]eshop.Order, error)
}

// Syncer owns one run of the Order Sync step.
type Syncer struct {
	fetcher OrderFetcher
	store   *state.Store
	out     config.OutputConfig
	logger  *slog.Logger
}

// Summary describes the outcome of a run for the final log line.
type Summary struct {
	RunID     string
	Fetched   int
	New       int
	Watermark int
	Replay    bool
}

// New creates a Syncer.
func New(fetcher OrderFetcher, store *state.Store, out config.OutputConfig, logger *slog.Logger) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		store:   store,
		out:     out,
		logger:  logger,
	}
}

// Run fetches orders, rewrites both artifacts and advances the watermark.
//
// In replay mode every fetched order counts as new and the persisted
// state is left untouched, so a one-off backfill cannot change what a
// later live run considers new.
func (s *Syncer) Run(ctx context.Context, replay bool) (Summary, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	orders, err := s.fetcher.FetchOrders(ctx)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("fetched orders", "count", len(orders))

	if err := os.MkdirAll(s.out.Dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	// Snapshot is rewritten unconditionally, replay or not.
	if err := writeJSON(s.out.OrdersPath(), orders); err != nil {
		return Summary{}, err
	}

	st := s.store.Load()

	if replay {
		if err := writeJSON(s.out.NewOrdersPath(), orders); err != nil {
			return Summary{}, err
		}
		logger.Info("replay mode: all fetched orders treated as new", "count", len(orders))
		logger.Info("state not updated")
		return Summary{RunID: runID, Fetched: len(orders), New: len(orders), Watermark: st.LastIDOrder, Replay: true}, nil
	}

	newOrders := selectNew(orders, st.LastIDOrder)
	if err := writeJSON(s.out.NewOrdersPath(), newOrders); err != nil {
		return Summary{}, err
	}
	logger.Info("selected new orders", "since_id", st.LastIDOrder, "count", len(newOrders))

	// The watermark follows the max id across all fetched orders, not
	// just the new ones, so a skipped id can never be re-emitted later.
	switch max := maxOrderID(orders); {
	case len(orders) == 0:
		logger.Info("no orders fetched, watermark unchanged", "last_id_order", st.LastIDOrder)
	case max > st.LastIDOrder:
		st.LastIDOrder = max
		if err := s.store.Save(st); err != nil {
			return Summary{}, err
		}
		logger.Info("watermark advanced", "last_id_order", max)
	default:
		logger.Info("watermark unchanged", "last_id_order", st.LastIDOrder)
	}

	return Summary{RunID: runID, Fetched: len(orders), New: len(newOrders), Watermark: st.LastIDOrder}, nil
}

// selectNew returns orders with id strictly above the watermark, in
// ascending id order.
func selectNew(orders []eshop.Order, watermark int) []eshop.Order {
	selected := make([]eshop.Order, 0)
	for _, o := range orders {
		if o.ID() > watermark {
			selected = append(selected, o)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].ID() < selected[j].ID()
	})
	return selected
}

func maxOrderID(orders []eshop.Order) int {
	max := 0
	for _, o := range orders {
		if id := o.ID(); id > max {
			max = id
		}
	}
	return max
}

// writeJSON replaces the file with the whole marshaled value.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
