package store

import (
	"context"

	"team-journal/internal/errors"
	"team-journal/internal/models"
	"team-journal/pkg/utils"
)

// RetryingStore retries transient read failures of an underlying DataStore.
// Writes pass straight through: a write that timed out may still have
// committed, and the caller decides whether to try again.
type RetryingStore struct {
	inner DataStore
	cfg   utils.RetryConfig
}

// NewRetryingStore wraps inner. Only reads failing with a transient error are retried.
func NewRetryingStore(inner DataStore, attempts int) *RetryingStore {
	cfg := utils.DefaultRetryConfig()
	if attempts > 0 {
		cfg.MaxAttempts = attempts
	}
	cfg.ShouldRetry = errors.IsTransient
	return &RetryingStore{inner: inner, cfg: cfg}
}

func (r *RetryingStore) ListTradesByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() ([]models.Trade, error) {
		return r.inner.ListTradesByUser(ctx, userID)
	})
}

func (r *RetryingStore) ListAllTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() ([]models.Trade, error) {
		return r.inner.ListAllTrades(ctx, limit)
	})
}

func (r *RetryingStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() ([]models.Trade, error) {
		return r.inner.ListTrades(ctx, filter)
	})
}

func (r *RetryingStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() (*models.Trade, error) {
		return r.inner.GetTrade(ctx, id)
	})
}

func (r *RetryingStore) InsertTrade(ctx context.Context, trade *models.Trade) error {
	return r.inner.InsertTrade(ctx, trade)
}

func (r *RetryingStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	return r.inner.UpdateTrade(ctx, trade)
}

func (r *RetryingStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() ([]models.Profile, error) {
		return r.inner.ListProfiles(ctx)
	})
}

func (r *RetryingStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return utils.RetryWithResult(ctx, r.cfg, func() (*models.Profile, error) {
		return r.inner.GetProfile(ctx, id)
	})
}

func (r *RetryingStore) InsertProfile(ctx context.Context, profile *models.Profile) error {
	return r.inner.InsertProfile(ctx, profile)
}

func (r *RetryingStore) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.inner.UpdateProfile(ctx, profile)
}

// Close closes the underlying store.
func (r *RetryingStore) Close() error {
	return r.inner.Close()
}

var _ DataStore = (*RetryingStore)(nil)
var _ DataStore = (*SQLiteStore)(nil)
