package store

import (
	"context"
	"time"
)

// RunSweeper evicts tables idle for longer than ttl every interval until
// ctx is done. onEvict, if set, receives the ids removed by each pass.
func RunSweeper(ctx context.Context, s Store, ttl, interval time.Duration, onEvict func(ids []string)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed := s.Sweep(now.Add(-ttl))
			if len(removed) > 0 && onEvict != nil {
				onEvict(removed)
			}
		}
	}
}
