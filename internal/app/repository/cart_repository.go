package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumeatelie/lume-backend/internal/app/model"
	"github.com/lumeatelie/lume-backend/pkg/logger"
)

// CartTTL is how long an idle cart survives before it is dropped.
const CartTTL = 30 * 24 * time.Hour

const cartKeyPrefix = "cart:"

// CartRepository persists the full cart document per session token.
// Save always replaces the whole line list.
type CartRepository interface {
	Load(ctx context.Context, sessionToken string) ([]model.CartLine, error)
	Save(ctx context.Context, sessionToken string, lines []model.CartLine) error
	Delete(ctx context.Context, sessionToken string) error
	Touch(ctx context.Context, sessionToken string) error
}

// ==================== redis-backed ====================

type redisCartRepository struct {
	client *goredis.Client
}

func NewRedisCartRepository(client *goredis.Client) CartRepository {
	return &redisCartRepository{client: client}
}

func (r *redisCartRepository) Load(ctx context.Context, sessionToken string) ([]model.CartLine, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+sessionToken).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []model.CartLine{}, nil
		}
		logger.Error("Failed to load cart from Redis", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		return nil, err
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		// A corrupt document is unrecoverable; start over with an empty cart.
		logger.Warn("Discarding corrupt cart document", map[string]interface{}{
			"cart_session": sessionToken,
			"error":        err.Error(),
		})
		return []model.CartLine{}, nil
	}
	return lines, nil
}

func (r *redisCartRepository) Save(ctx context.Context, sessionToken string, lines []model.CartLine) error {
	if lines == nil {
		lines = []model.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, cartKeyPrefix+sessionToken, data, CartTTL).Err(); err != nil {
		logger.Error("Failed to save cart to Redis", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		return err
	}

	logger.Debug("Cart saved to Redis", map[string]interface{}{
		"cart_session": sessionToken,
		"line_count":   len(lines),
	})
	return nil
}

func (r *redisCartRepository) Delete(ctx context.Context, sessionToken string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+sessionToken).Err(); err != nil {
		logger.Error("Failed to delete cart from Redis", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		return err
	}
	return nil
}

// Touch extends the TTL of an existing cart without rewriting it.
func (r *redisCartRepository) Touch(ctx context.Context, sessionToken string) error {
	if err := r.client.Expire(ctx, cartKeyPrefix+sessionToken, CartTTL).Err(); err != nil {
		logger.Error("Failed to refresh cart TTL in Redis", err, map[string]interface{}{
			"cart_session": sessionToken,
		})
		return err
	}
	return nil
}

// ==================== in-memory fallback ====================

type memoryCartEntry struct {
	lines     []model.CartLine
	updatedAt time.Time
}

// MemoryCartRepository keeps carts in process memory. Used when Redis is
// disabled; carts do not survive a restart.
type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]memoryCartEntry
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[string]memoryCartEntry),
	}
}

func (r *MemoryCartRepository) Load(_ context.Context, sessionToken string) ([]model.CartLine, error) {
	r.mu.RLock()
	entry, ok := r.carts[sessionToken]
	r.mu.RUnlock()
	if !ok {
		return []model.CartLine{}, nil
	}

	// Copy so the caller cannot mutate the stored document.
	lines := make([]model.CartLine, len(entry.lines))
	copy(lines, entry.lines)
	return lines, nil
}

func (r *MemoryCartRepository) Save(_ context.Context, sessionToken string, lines []model.CartLine) error {
	stored := make([]model.CartLine, len(lines))
	copy(stored, lines)

	r.mu.Lock()
	r.carts[sessionToken] = memoryCartEntry{lines: stored, updatedAt: time.Now()}
	r.mu.Unlock()

	logger.Debug("Cart saved to memory", map[string]interface{}{
		"cart_session": sessionToken,
		"line_count":   len(lines),
	})
	return nil
}

func (r *MemoryCartRepository) Delete(_ context.Context, sessionToken string) error {
	r.mu.Lock()
	delete(r.carts, sessionToken)
	r.mu.Unlock()
	return nil
}

func (r *MemoryCartRepository) Touch(_ context.Context, sessionToken string) error {
	r.mu.Lock()
	if entry, ok := r.carts[sessionToken]; ok {
		entry.updatedAt = time.Now()
		r.carts[sessionToken] = entry
	}
	r.mu.Unlock()
	return nil
}

// PruneIdle drops carts untouched for longer than maxIdle and returns how
// many were removed. Called by the cleanup scheduler.
func (r *MemoryCartRepository) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, entry := range r.carts {
		if entry.updatedAt.Before(cutoff) {
			delete(r.carts, token)
			removed++
		}
	}
	return removed
}
