// Package review implements the mentor moderation workflow for trades.
//
// A trade is in exactly one State. Mentors move a Submitted trade to Reviewed
// (terminal) or RevisionRequested; the owner moves a RevisionRequested trade back
// to Submitted by editing it. Transitions return a new Trade and never mutate
// their input.
package review

import (
	"strings"
	"time"

	"team-journal/internal/errors"
	"team-journal/internal/models"
)

// DefaultRevisionNote is stored when a mentor requests a revision without notes.
const DefaultRevisionNote = "Revision requested"

// Score bounds for an approval.
const (
	MinScore = 1
	MaxScore = 5
)

// Action names used in transition and authorization errors.
const (
	ActionReview   = "review"
	ActionRevision = "request_revision"
	ActionEdit     = "edit"
)

// State is the moderation state of a trade. The set of implementations is closed.
type State interface {
	Name() string
	state()
}

// Submitted is awaiting mentor review.
type Submitted struct{}

// Reviewed is approved and scored. No further transitions are allowed.
type Reviewed struct {
	Score      *int
	Notes      string
	ReviewerID string
	ReviewedAt time.Time
}

// RevisionRequested is waiting on the owner to edit and resubmit.
type RevisionRequested struct {
	Notes       string
	ReviewerID  string
	RequestedAt time.Time
}

func (Submitted) Name() string         { return "submitted" }
func (Reviewed) Name() string          { return "reviewed" }
func (RevisionRequested) Name() string { return "revision_requested" }

func (Submitted) state()         {}
func (Reviewed) state()          {}
func (RevisionRequested) state() {}

// StateOf derives the moderation state from a trade's stored fields.
func StateOf(t models.Trade) State {
	if t.IsReviewed {
		r := Reviewed{Notes: t.MentorNotes, ReviewerID: t.ReviewedBy}
		if t.MentorScore != nil {
			score := *t.MentorScore
			r.Score = &score
		}
		if t.ReviewedAt != nil {
			r.ReviewedAt = *t.ReviewedAt
		}
		return r
	}
	if t.Status == models.StatusRevisionRequested {
		r := RevisionRequested{Notes: t.MentorNotes, ReviewerID: t.ReviewedBy}
		if t.ReviewedAt != nil {
			r.RequestedAt = *t.ReviewedAt
		}
		return r
	}
	return Submitted{}
}

// Input is a mentor's approval.
type Input struct {
	Score *int   `json:"score"`
	Notes string `json:"notes"`
}

// SubmitReview approves a Submitted trade with a score.
func SubmitReview(trade models.Trade, actor models.Actor, in Input, now time.Time) (models.Trade, error) {
	if err := authorizeMentor(trade, actor, ActionReview); err != nil {
		return models.Trade{}, err
	}
	if err := requireSubmitted(trade, ActionReview); err != nil {
		return models.Trade{}, err
	}
	if in.Score == nil {
		return models.Trade{}, &errors.ValidationError{
			Field:   "score",
			Message: "score required",
			Err:     errors.ErrScoreRequired,
		}
	}
	if *in.Score < MinScore || *in.Score > MaxScore {
		return models.Trade{}, errors.NewValidationError("score", *in.Score, "score must be between 1 and 5")
	}

	out := trade.Clone()
	score := *in.Score
	at := now
	out.IsReviewed = true
	out.Status = models.StatusSubmitted
	out.MentorScore = &score
	out.MentorNotes = strings.TrimSpace(in.Notes)
	out.ReviewedBy = actor.UserID
	out.ReviewedAt = &at
	out.UpdatedAt = now
	return out, nil
}

// RequestRevision sends a Submitted trade back to its owner.
func RequestRevision(trade models.Trade, actor models.Actor, notes string, now time.Time) (models.Trade, error) {
	if err := authorizeMentor(trade, actor, ActionRevision); err != nil {
		return models.Trade{}, err
	}
	if err := requireSubmitted(trade, ActionRevision); err != nil {
		return models.Trade{}, err
	}

	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = DefaultRevisionNote
	}

	out := trade.Clone()
	at := now
	out.IsReviewed = false
	out.Status = models.StatusRevisionRequested
	out.MentorScore = nil
	out.MentorNotes = notes
	out.ReviewedBy = actor.UserID
	out.ReviewedAt = &at
	out.UpdatedAt = now
	return out, nil
}

// Resubmit applies the owner's edit. From RevisionRequested the trade returns to
// Submitted; from Submitted it is an in-place correction. Mentor notes are kept.
func Resubmit(trade models.Trade, actor models.Actor, draft models.TradeDraft, now time.Time) (models.Trade, error) {
	if actor.UserID == "" || actor.UserID != trade.UserID {
		return models.Trade{}, errors.NewAuthorizationError(ActionEdit, actor.UserID, nil)
	}

	if current, ok := StateOf(trade).(Reviewed); ok {
		return models.Trade{}, errors.NewInvalidTransitionError(trade.ID, current.Name(), ActionEdit)
	}

	out := trade.Clone()
	draft.Apply(&out)
	out.Status = models.StatusSubmitted
	out.UpdatedAt = now
	return out, nil
}

func authorizeMentor(trade models.Trade, actor models.Actor, action string) error {
	if !actor.IsMentor() {
		return errors.NewAuthorizationError(action, actor.UserID, nil)
	}
	if actor.UserID == trade.UserID {
		return errors.NewAuthorizationError(action, actor.UserID, errors.ErrSelfReview)
	}
	return nil
}

func requireSubmitted(trade models.Trade, action string) error {
	current := StateOf(trade)
	if _, ok := current.(Submitted); !ok {
		return errors.NewInvalidTransitionError(trade.ID, current.Name(), action)
	}
	return nil
}
