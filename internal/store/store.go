// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"team-journal/internal/models"
)

// DataStore defines the interface for trade and profile persistence.
//
// Implementations return *errors.NotFoundError for missing rows and
// *errors.TransientIOError for failures a caller may retry. Writes are last-write-wins.
type DataStore interface {
	// Trades
	ListTradesByUser(ctx context.Context, userID string) ([]models.Trade, error)
	ListAllTrades(ctx context.Context, limit int) ([]models.Trade, error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	InsertTrade(ctx context.Context, trade *models.Trade) error
	UpdateTrade(ctx context.Context, trade *models.Trade) error

	// Profiles
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	InsertProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	UserID      string
	Reviewed    *bool
	Status      models.ReviewStatus
	Session     models.Session
	Pair        string
	StartDate   models.Date
	EndDate     models.Date
	Limit       int
	OldestFirst bool
}
