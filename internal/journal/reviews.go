package journal

import (
	"context"

	"team-journal/internal/errors"
	"team-journal/internal/logging"
	"team-journal/internal/models"
	"team-journal/internal/review"
	"team-journal/internal/security"
	"team-journal/internal/stats"
	"team-journal/internal/store"
)

// ReviewTrade approves a submitted trade with a score.
func (s *Service) ReviewTrade(ctx context.Context, actor models.Actor, tradeID string, in review.Input) (*models.Trade, error) {
	if err := s.requireMentor(ctx, actor, review.ActionReview); err != nil {
		return nil, err
	}
	in.Notes = security.SanitizeText(in.Notes)
	if err := s.validator.ValidateNotes("notes", in.Notes, security.MaxMentorNotesLength); err != nil {
		return nil, err
	}

	current, err := s.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	updated, err := review.SubmitReview(*current, actor, in, s.now())
	if err != nil {
		return nil, s.auditDecisionFailure(ctx, actor, review.ActionReview, err)
	}
	if err := s.updateTrade(ctx, &updated); err != nil {
		return nil, errors.Wrap(err, "saving review")
	}

	logging.LogReview(s.log(ctx), updated.ID, actor.UserID, "approved")
	s.record(ctx, security.ReviewEvent(security.AuditReviewApproved, actor.UserID, updated.ID, updated.UserID,
		map[string]interface{}{"score": *updated.MentorScore}))
	return &updated, nil
}

// RequestRevision sends a submitted trade back to its owner with notes.
func (s *Service) RequestRevision(ctx context.Context, actor models.Actor, tradeID, notes string) (*models.Trade, error) {
	if err := s.requireMentor(ctx, actor, review.ActionRevision); err != nil {
		return nil, err
	}
	notes = security.SanitizeText(notes)
	if err := s.validator.ValidateNotes("notes", notes, security.MaxMentorNotesLength); err != nil {
		return nil, err
	}

	current, err := s.getTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	updated, err := review.RequestRevision(*current, actor, notes, s.now())
	if err != nil {
		return nil, s.auditDecisionFailure(ctx, actor, review.ActionRevision, err)
	}
	if err := s.updateTrade(ctx, &updated); err != nil {
		return nil, errors.Wrap(err, "saving revision request")
	}

	logging.LogReview(s.log(ctx), updated.ID, actor.UserID, "revision_requested")
	s.record(ctx, security.ReviewEvent(security.AuditRevisionRequested, actor.UserID, updated.ID, updated.UserID,
		map[string]interface{}{"notes": updated.MentorNotes}))
	return &updated, nil
}

// ReviewQueue lists unreviewed trades awaiting a mentor, oldest first.
// The caller's own trades are left out.
func (s *Service) ReviewQueue(ctx context.Context, actor models.Actor) ([]models.Trade, error) {
	if err := s.requireMentor(ctx, actor, "review_queue"); err != nil {
		return nil, err
	}
	pending := false
	trades, err := s.listTrades(ctx, store.TradeFilter{Reviewed: &pending, OldestFirst: true})
	if err != nil {
		return nil, err
	}
	return stats.ReviewQueue(trades, actor.UserID), nil
}

// auditDecisionFailure records denied review decisions; other failures pass through.
func (s *Service) auditDecisionFailure(ctx context.Context, actor models.Actor, action string, err error) error {
	if errors.Is(err, errors.ErrNotAuthorized) {
		return s.deny(ctx, actor, action, err)
	}
	return err
}
