package upload

import (
	"context"
	"log"
	"time"
)

// Cleaner sweeps expired unconsumed upload sessions and their orphaned
// objects. Cadence does not matter for correctness, confirm ignores expired
// rows on its own; this just keeps the table and the bucket from growing.
type Cleaner struct {
	repo     UploadRepository
	store    ObjectStore
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewCleaner(repo UploadRepository, store ObjectStore, interval time.Duration) *Cleaner {
	return &Cleaner{
		repo:     repo,
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (c *Cleaner) Start() {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

func (c *Cleaner) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Cleaner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sessions, err := c.repo.ExpiredUnconsumed(ctx, time.Now(), 100)
	if err != nil {
		log.Printf("upload cleanup sweep failed: %v", err)
		return
	}

	for _, session := range sessions {
		// The object may exist if bytes were written but never confirmed.
		if err := c.store.Delete(ctx, session.ObjectKey); err != nil {
			log.Printf("failed to delete orphaned object %s: %v", session.ObjectKey, err)
			continue
		}
		if err := c.repo.Delete(ctx, session.SessionID); err != nil {
			log.Printf("failed to delete expired session %s: %v", session.SessionID, err)
		}
	}

	if len(sessions) > 0 {
		log.Printf("upload cleanup removed %d expired sessions", len(sessions))
	}
}
