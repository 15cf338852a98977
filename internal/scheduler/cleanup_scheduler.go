package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lumeatelie/lume-backend/internal/app/repository"
	"github.com/lumeatelie/lume-backend/internal/storage"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

const (
	// Carts idle this long are dropped from the in-memory fallback store.
	// Redis carts expire on their own TTL.
	cartMaxIdle = 30 * 24 * time.Hour

	// Pending personalization uploads older than this never got attached
	// to an order and are deleted.
	pendingUploadMaxAge = 72 * time.Hour
)

// CleanupScheduler sweeps idle in-memory carts and stale pending uploads.
type CleanupScheduler struct {
	cron       *cron.Cron
	memoryCart *repository.MemoryCartRepository
	s3         *storage.S3Storage
}

// NewCleanupScheduler builds the scheduler. memoryCart and s3 are optional;
// a nil collaborator skips its sweep.
func NewCleanupScheduler(memoryCart *repository.MemoryCartRepository, s3 *storage.S3Storage) *CleanupScheduler {
	return &CleanupScheduler{
		cron:       cron.New(),
		memoryCart: memoryCart,
		s3:         s3,
	}
}

func (s *CleanupScheduler) Start() error {
	// Hourly in-memory cart sweep
	if s.memoryCart != nil {
		if _, err := s.cron.AddFunc("0 * * * *", s.sweepCarts); err != nil {
			logger.Error("Failed to add cron job for cart cleanup", err)
			return err
		}
	}

	// Daily pending upload sweep at 04:00
	if s.s3 != nil {
		if _, err := s.cron.AddFunc("0 4 * * *", s.sweepPendingUploads); err != nil {
			logger.Error("Failed to add cron job for upload cleanup", err)
			return err
		}
	}

	s.cron.Start()
	logger.Info("Cleanup scheduler started", map[string]interface{}{
		"cart_sweep":   s.memoryCart != nil,
		"upload_sweep": s.s3 != nil,
	})
	return nil
}

func (s *CleanupScheduler) Stop() {
	logger.Info("Stopping cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cleanup scheduler stopped", nil)
}

func (s *CleanupScheduler) sweepCarts() {
	removed := s.memoryCart.PruneIdle(cartMaxIdle)
	if removed > 0 {
		logger.Info("Pruned idle carts", map[string]interface{}{
			"removed": removed,
		})
	}
}

func (s *CleanupScheduler) sweepPendingUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-pendingUploadMaxAge)
	stale, err := s.s3.ListStalePendingUploads(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to list stale pending uploads", err)
		return
	}

	deleted := 0
	for _, key := range stale {
		if err := s.s3.DeleteObject(ctx, key); err != nil {
			logger.Error("Failed to delete stale pending upload", err, map[string]interface{}{
				"key": key,
			})
			continue
		}
		deleted++
	}

	if deleted > 0 {
		logger.Info("Deleted stale pending uploads", map[string]interface{}{
			"deleted": deleted,
		})
	}
}
