package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/split-ledger/internal/circuitbreaker"
	"github.com/split-ledger/internal/logging"
	"github.com/split-ledger/internal/types"
)

// UploadResult is the two-outcome result of an upload attempt. Exactly one
// of ContentID (on success) or Error (on failure) is populated. Callers in
// the split-creation flow do not branch behavior on which outcome occurred,
// only on which message to display.
type UploadResult struct {
	Success   bool   `json:"success"`
	ContentID string `json:"contentId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gateway uploads split and group state to a content-addressed store and
// records returned content identifiers against (account, splitId). Upload
// failure never propagates as a hard error: the caller falls back to
// local-only state and the user-visible flow proceeds either way.
type Gateway struct {
	store   ContentStore
	breaker *circuitbreaker.CircuitBreaker
	redis   *RedisCache // Optional; nil degrades to the in-memory records map
	logger  *logging.Logger

	mu      sync.Mutex
	records map[string]string // (account, splitId) -> contentId, fallback when Redis is down
}

// NewGateway creates a persistence gateway. Pass a nil redis cache to keep
// content-id records in memory only.
func NewGateway(store ContentStore, redis *RedisCache, logger *logging.Logger) *Gateway {
	return &Gateway{
		store:   store,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("content-store")),
		redis:   redis,
		logger:  logger,
		records: make(map[string]string),
	}
}

// Upload pins a split to the content store. The returned result is never
// accompanied by a Go error; failures are carried in the result itself so
// split creation can fall open to local state.
func (g *Gateway) Upload(ctx context.Context, split *types.SplitData) *UploadResult {
	logger := g.logger.WithFields(map[string]interface{}{
		"splitId":     split.ID,
		"totalAmount": split.TotalAmount,
		"members":     len(split.Members),
	})
	logger.Info("Uploading split data to content store")

	var contentID string
	err := g.breaker.Execute(func() error {
		pinned, pinErr := g.store.PinJSON(ctx, split.ID, split)
		if pinErr != nil {
			return pinErr
		}
		contentID = pinned
		return nil
	})
	if err != nil {
		if err == circuitbreaker.ErrCircuitOpen {
			logger.Warn("Content store circuit open, skipping upload")
		} else {
			logger.WithError(err).Warn("Split upload failed")
		}
		return &UploadResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	logger.WithField("contentId", contentID).Info("Split data pinned")
	return &UploadResult{
		Success:   true,
		ContentID: contentID,
	}
}

// UploadSnapshot pins an arbitrary state snapshot (used by auto-save)
func (g *Gateway) UploadSnapshot(ctx context.Context, name string, snapshot interface{}) *UploadResult {
	var contentID string
	err := g.breaker.Execute(func() error {
		pinned, pinErr := g.store.PinJSON(ctx, name, snapshot)
		if pinErr != nil {
			return pinErr
		}
		contentID = pinned
		return nil
	})
	if err != nil {
		g.logger.WithError(err).Warn("Snapshot upload failed")
		return &UploadResult{Success: false, Error: err.Error()}
	}
	return &UploadResult{Success: true, ContentID: contentID}
}

// Fetch retrieves previously uploaded bytes by content identifier
func (g *Gateway) Fetch(ctx context.Context, contentID string) ([]byte, error) {
	return g.store.Fetch(ctx, contentID)
}

// RecordContentID records a content identifier against (account, splitId).
// Recording the same pair twice is an idempotent overwrite. Redis failures
// degrade silently to the in-memory map.
func (g *Gateway) RecordContentID(ctx context.Context, account, splitID, contentID string) {
	if g.redis != nil {
		if err := g.redis.HSet(ctx, recordKey(account), splitID, contentID); err == nil {
			return
		} else {
			g.logger.WithError(err).Warn("Failed to record content id in Redis, keeping in memory")
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.records[memoryRecordKey(account, splitID)] = contentID
}

// ContentID looks up the recorded content identifier for (account, splitId)
func (g *Gateway) ContentID(ctx context.Context, account, splitID string) (string, bool) {
	if g.redis != nil {
		if contentID, err := g.redis.HGet(ctx, recordKey(account), splitID); err == nil && contentID != "" {
			return contentID, true
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	contentID, ok := g.records[memoryRecordKey(account, splitID)]
	return contentID, ok
}

// recordKey generates the Redis hash key for an account's content-id records.
// Format: splits:<account>
func recordKey(account string) string {
	return fmt.Sprintf("splits:%s", account)
}

func memoryRecordKey(account, splitID string) string {
	return account + ":" + splitID
}
