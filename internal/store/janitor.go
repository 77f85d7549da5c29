package store

import (
	"context"
	"time"
)

// StartJanitor purges expired trash on a ticker until ctx is cancelled.
// One cleanup runs immediately so a long-stopped instance catches up on
// startup.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	go func() {
		s.runCleanup()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Store) runCleanup() {
	count, err := s.CleanupTrash()
	if err != nil {
		s.log.Error().Err(err).Msg("trash cleanup failed")
		return
	}
	if count > 0 {
		s.log.Info().Int64("purged", count).Msg("trash cleanup removed expired notes")
	}
}
