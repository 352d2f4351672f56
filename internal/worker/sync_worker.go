package worker

import (
	"context"
	"log/slog"
	"time"

	"frontofhouse/internal/service"
)

// Refresher is satisfied by *service.FloorService.
type Refresher interface {
	Refresh(ctx context.Context) (*service.Snapshot, error)
}

// Invalidator is satisfied by *service.CatalogService.
type Invalidator interface {
	Invalidate()
}

// SyncWorker refetches the floor and drops the cached catalog on a fixed
// interval so writes made outside this process show up in the kitchen and
// service lists, in product flags and in the menu.
type SyncWorker struct {
	floor    Refresher
	catalog  Invalidator
	interval time.Duration
}

func NewSyncWorker(floor Refresher, catalog Invalidator, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		floor:    floor,
		catalog:  catalog,
		interval: interval,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	slog.Info("starting floor sync worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sync(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("floor sync worker stopped")
			return
		case <-ticker.C:
			w.catalog.Invalidate()
			w.sync(ctx)
		}
	}
}

func (w *SyncWorker) sync(ctx context.Context) {
	snap, err := w.floor.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("floor sync failed", "error", err)
		}
		return
	}
	slog.Debug("floor synced", "tables", len(snap.Tables), "orders", len(snap.Orders))
}
