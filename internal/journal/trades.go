package journal

import (
	"context"
	"fmt"
	"time"

	"team-journal/internal/errors"
	"team-journal/internal/logging"
	"team-journal/internal/models"
	"team-journal/internal/review"
	"team-journal/internal/risk"
	"team-journal/internal/security"
	"team-journal/internal/store"
)

// ListOptions narrows a trade listing.
type ListOptions struct {
	UserID    string
	Reviewed  *bool
	Session   models.Session
	Pair      string
	StartDate models.Date
	EndDate   models.Date
	Limit     int
}

// prepareDraft sanitizes, sign-normalizes and validates a draft against today.
func (s *Service) prepareDraft(ctx context.Context, actor models.Actor, draft models.TradeDraft) (models.TradeDraft, error) {
	draft = security.SanitizeDraft(draft)
	draft.Result = models.NormalizeResult(draft.Outcome, draft.Result)
	if err := s.validator.ValidateTradeDraft(draft, s.Today()); err != nil {
		var verr *errors.ValidationError
		if errors.As(err, &verr) {
			s.record(ctx, security.InputValidationEvent(actor.UserID, verr.Field, fmt.Sprint(verr.Value), verr.Message))
		}
		return models.TradeDraft{}, err
	}
	return draft, nil
}

// SubmitTrade journals a new trade for the caller.
//
// The caller's trades for today are summed first; a locked user gets a RiskError
// and nothing is written. The new trade starts Submitted and unreviewed.
func (s *Service) SubmitTrade(ctx context.Context, actor models.Actor, draft models.TradeDraft) (*models.Trade, error) {
	if err := s.requireActive(ctx, actor, "submit_trade"); err != nil {
		return nil, err
	}

	draft, err := s.prepareDraft(ctx, actor, draft)
	if err != nil {
		return nil, err
	}

	daily, err := s.dailyRisk(ctx, actor.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating daily risk")
	}
	if daily.IsLocked {
		logger := s.log(ctx)
		logging.LogRiskLock(logger, actor.UserID, daily.TotalR, risk.LockThresholdR)
		s.record(ctx, security.RiskLockEvent(actor.UserID, daily.TotalR))
		return nil, errors.NewRiskError("daily_loss", daily.TotalR, risk.LockThresholdR,
			"daily loss limit reached, submissions reopen at New York midnight")
	}

	now := s.now()
	id, err := s.ids.NewTradeID(now)
	if err != nil {
		return nil, errors.Wrap(err, "generating trade id")
	}

	trade := &models.Trade{
		ID:        id,
		UserID:    actor.UserID,
		Status:    models.StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	draft.Apply(trade)

	if err := s.insertTrade(ctx, trade); err != nil {
		return nil, errors.Wrap(err, "saving trade")
	}

	logging.LogTradeSubmitted(s.log(ctx), trade.ID, actor.UserID, trade.Pair, trade.Result)
	s.record(ctx, security.TradeSubmittedEvent(actor.UserID, trade.ID, trade.Result))
	return trade, nil
}

// EditTrade applies the owner's edit. A trade awaiting revision goes back to
// Submitted; a reviewed trade cannot change.
func (s *Service) EditTrade(ctx context.Context, actor models.Actor, tradeID string, draft models.TradeDraft) (*models.Trade, error) {
	if err := s.requireActive(ctx, actor, review.ActionEdit); err != nil {
		return nil, err
	}

	current, err := s.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if current.UserID != actor.UserID {
		return nil, s.deny(ctx, actor, review.ActionEdit, errors.NewAuthorizationError(review.ActionEdit, actor.UserID, nil))
	}

	draft, err = s.prepareDraft(ctx, actor, draft)
	if err != nil {
		return nil, err
	}

	wasRevision := current.Status == models.StatusRevisionRequested
	updated, err := review.Resubmit(*current, actor, draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.updateTrade(ctx, &updated); err != nil {
		return nil, errors.Wrap(err, "saving trade")
	}

	eventType := security.AuditTradeEdited
	if wasRevision {
		eventType = security.AuditTradeResubmitted
	}
	s.record(ctx, security.AuditEvent{
		EventType: eventType,
		UserID:    actor.UserID,
		TradeID:   updated.ID,
		Success:   true,
		Details:   map[string]interface{}{"result": updated.Result},
	})
	logger := logging.WithTradeID(s.log(ctx), updated.ID)
	logger.Info().Str("user_id", actor.UserID).Bool("resubmitted", wasRevision).Msg("Trade edited")
	return &updated, nil
}

// GetTrade returns one trade. Owners see their own; mentors see every trade.
func (s *Service) GetTrade(ctx context.Context, actor models.Actor, tradeID string) (*models.Trade, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	trade, err := s.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.UserID != actor.UserID && !actor.IsMentor() {
		return nil, s.deny(ctx, actor, "view_trade", errors.NewAuthorizationError("view_trade", actor.UserID, nil))
	}
	return trade, nil
}

// ListTrades lists trades newest first. An empty UserID means the caller;
// listing another user's trades requires the mentor role.
func (s *Service) ListTrades(ctx context.Context, actor models.Actor, opts ListOptions) ([]models.Trade, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	if opts.UserID == "" {
		opts.UserID = actor.UserID
	}
	if opts.UserID != actor.UserID && !actor.IsMentor() {
		return nil, s.deny(ctx, actor, "list_trades", errors.NewAuthorizationError("list_trades", actor.UserID, nil))
	}

	return s.listTrades(ctx, store.TradeFilter{
		UserID:    opts.UserID,
		Reviewed:  opts.Reviewed,
		Session:   opts.Session,
		Pair:      security.SanitizePair(opts.Pair),
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
		Limit:     opts.Limit,
	})
}

// DailyRisk evaluates the caller's current trading day.
func (s *Service) DailyRisk(ctx context.Context, actor models.Actor) (risk.DailyRisk, error) {
	if actor.UserID == "" {
		return risk.DailyRisk{}, errors.ErrNotAuthenticated
	}
	return s.dailyRisk(ctx, actor.UserID)
}

// DailyRiskFor evaluates another user's trading day. Mentor only, unless userID is the caller.
func (s *Service) DailyRiskFor(ctx context.Context, actor models.Actor, userID string) (risk.DailyRisk, error) {
	if actor.UserID == "" {
		return risk.DailyRisk{}, errors.ErrNotAuthenticated
	}
	if userID != actor.UserID {
		if err := s.requireMentor(ctx, actor, "view_risk"); err != nil {
			return risk.DailyRisk{}, err
		}
	}
	return s.dailyRisk(ctx, userID)
}

// dailyRisk loads only today's rows; the evaluation itself still filters by date.
func (s *Service) dailyRisk(ctx context.Context, userID string) (risk.DailyRisk, error) {
	today := s.Today()
	trades, err := s.listTrades(ctx, store.TradeFilter{
		UserID:    userID,
		StartDate: today,
		EndDate:   today,
	})
	if err != nil {
		return risk.DailyRisk{}, err
	}
	return risk.EvaluateDailyRisk(trades, today), nil
}

// NextReset returns when the current risk window closes.
func (s *Service) NextReset() time.Time {
	return s.risk.NextReset()
}
