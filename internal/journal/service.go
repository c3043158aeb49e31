// Package journal orchestrates the trade store, the review workflow and the
// statistics engine behind every user-facing operation.
//
// Each operation takes the calling models.Actor explicitly. The daily risk lock
// is enforced here, before any trade insert, so every surface (HTTP, CLI)
// shares one gate.
package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"team-journal/internal/errors"
	"team-journal/internal/ids"
	"team-journal/internal/logging"
	"team-journal/internal/models"
	"team-journal/internal/risk"
	"team-journal/internal/security"
	"team-journal/internal/store"
	"team-journal/pkg/utils"
)

// DefaultQueryTimeout bounds a store call when none is configured.
const DefaultQueryTimeout = 5 * time.Second

// Options configures a Service. Zero values select defaults.
type Options struct {
	Clock            utils.Clock
	Location         *time.Location
	QueryTimeout     time.Duration
	Auditor          security.Auditor
	Logger           *zerolog.Logger
	StrictValidation bool
}

// Service implements the journal operations.
type Service struct {
	store        store.DataStore
	clock        utils.Clock
	day          utils.TradingDay
	risk         *risk.Evaluator
	ids          *ids.Generator
	validator    *security.InputValidator
	audit        security.Auditor
	logger       zerolog.Logger
	queryTimeout time.Duration
}

// NewService creates a journal service over st.
func NewService(st store.DataStore, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = utils.NewYorkLocation
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.Auditor == nil {
		opts.Auditor = security.NopAuditor{}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Service{
		store:        st,
		clock:        opts.Clock,
		day:          utils.NewTradingDay(opts.Clock, opts.Location),
		risk:         risk.NewEvaluatorIn(opts.Clock, opts.Location),
		ids:          ids.NewGenerator(),
		validator:    security.NewInputValidator(opts.StrictValidation),
		audit:        opts.Auditor,
		logger:       logging.WithOperation(logger, "journal"),
		queryTimeout: opts.QueryTimeout,
	}
}

// Today returns the current trading date.
func (s *Service) Today() models.Date {
	return s.day.Today()
}

// now returns the clock time in UTC; stored timestamps are UTC.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

// bounded derives a context limited by the configured query timeout.
func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// log returns the request-scoped logger when one is attached, else the service logger.
func (s *Service) log(ctx context.Context) zerolog.Logger {
	if l := logging.FromContext(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// record writes an audit event. Audit failures are logged, never returned.
func (s *Service) record(ctx context.Context, event security.AuditEvent) {
	if err := s.audit.Log(ctx, event); err != nil {
		logger := s.log(ctx)
		logger.Error().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to write audit event")
	}
}

// deny records an authorization failure and returns err unchanged.
func (s *Service) deny(ctx context.Context, actor models.Actor, action string, err error) error {
	s.record(ctx, security.AccessDeniedEvent(actor.UserID, action, err.Error()))
	return err
}

func (s *Service) requireActive(ctx context.Context, actor models.Actor, action string) error {
	if actor.UserID == "" {
		return errors.ErrNotAuthenticated
	}
	if !actor.Active {
		return s.deny(ctx, actor, action, errors.NewAuthorizationError(action, actor.UserID, errors.ErrInactiveProfile))
	}
	return nil
}

func (s *Service) requireMentor(ctx context.Context, actor models.Actor, action string) error {
	if actor.UserID == "" {
		return errors.ErrNotAuthenticated
	}
	if !actor.IsMentor() {
		return s.deny(ctx, actor, action, errors.NewAuthorizationError(action, actor.UserID, nil))
	}
	return nil
}

// ============================================================================
// Store access, each call bounded by the query timeout
// ============================================================================

func (s *Service) getTrade(ctx context.Context, id string) (*models.Trade, error) {
	// Malformed ids never reach the store.
	if _, err := ids.TradeTime(id); err != nil {
		return nil, errors.NewNotFoundError("trade", id)
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.GetTrade(ctx, id)
}

func (s *Service) listTrades(ctx context.Context, filter store.TradeFilter) ([]models.Trade, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.ListTrades(ctx, filter)
}

func (s *Service) listProfiles(ctx context.Context) ([]models.Profile, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.ListProfiles(ctx)
}

func (s *Service) getProfile(ctx context.Context, id string) (*models.Profile, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.GetProfile(ctx, id)
}

func (s *Service) insertTrade(ctx context.Context, t *models.Trade) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.InsertTrade(ctx, t)
}

func (s *Service) updateTrade(ctx context.Context, t *models.Trade) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.UpdateTrade(ctx, t)
}

func (s *Service) updateProfile(ctx context.Context, p *models.Profile) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.UpdateProfile(ctx, p)
}

func (s *Service) insertProfile(ctx context.Context, p *models.Profile) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.InsertProfile(ctx, p)
}
