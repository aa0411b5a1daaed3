package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
	"github.com/calvinwijaya/lucky-money-be/internal/store"
)

// Composer writes a wish and never fails; see wish.Fallback.
type Composer interface {
	Compose(ctx context.Context, amount int, label string) string
}

// WishDispatcher fetches wishes in the background and attaches them to
// the table they were requested for.
type WishDispatcher struct {
	base     context.Context
	store    store.Store
	composer Composer
	hub      Broadcaster
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewWishDispatcher creates a dispatcher. In-flight requests are
// cancelled when ctx is done.
func NewWishDispatcher(ctx context.Context, s store.Store, composer Composer, hub Broadcaster, timeout time.Duration, logger *zap.Logger) *WishDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WishDispatcher{
		base:     ctx,
		store:    s,
		composer: composer,
		hub:      hub,
		timeout:  timeout,
		logger:   logger,
	}
}

// WishEvent is pushed once a wish has been attached.
type WishEvent struct {
	Message string `json:"message"`
	Version uint64 `json:"version"`
}

// Dispatch requests a wish for a flip without blocking the caller.
func (d *WishDispatcher) Dispatch(tableID string, f game.Flip) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.resolve(tableID, f)
	}()
}

func (d *WishDispatcher) resolve(tableID string, f game.Flip) {
	ctx, cancel := context.WithTimeout(d.base, d.timeout)
	text := d.composer.Compose(ctx, f.Card.Amount, f.Card.Label)
	cancel()

	applied := false
	_, err := d.store.UpdateTable(tableID, func(t *game.Table) error {
		applied = t.ApplyWish(f.Version, text)
		if applied && d.hub != nil {
			d.hub.BroadcastToTable(tableID, Message{
				Type:    EventWish,
				TableID: tableID,
				Data:    WishEvent{Message: text, Version: f.Version},
			})
		}
		return nil
	})
	if errors.Is(err, store.ErrTableNotFound) {
		d.logger.Debug("table gone before wish arrived", zap.String("table_id", tableID))
		return
	}
	if err != nil {
		d.logger.Error("failed to attach wish", zap.String("table_id", tableID), zap.Error(err))
		return
	}
	if !applied {
		d.logger.Debug("discarding stale wish",
			zap.String("table_id", tableID),
			zap.Uint64("version", f.Version),
		)
	}
}

// Wait blocks until every dispatched wish has been resolved
func (d *WishDispatcher) Wait() {
	d.wg.Wait()
}
