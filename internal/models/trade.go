package models

import (
	"math"
	"time"
)

// Trade represents a journaled trade and its moderation fields.
type Trade struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TradeDate  Date       `json:"trade_date"`
	Session    Session    `json:"session"`
	Pair       string     `json:"pair"`
	Bias       Bias       `json:"bias"`
	DailyBias  Bias       `json:"daily_bias"`
	Framework  Framework  `json:"framework"`
	Profiling  Profiling  `json:"profiling"`
	EntryModel EntryModel `json:"entry_model"`
	Outcome    Outcome    `json:"outcome"`
	Result     float64    `json:"result"` // realized R, signed
	Mood       Mood       `json:"mood"`
	ChartURL   string     `json:"chart_url"`
	Note       string     `json:"note,omitempty"`
	Tags       []string   `json:"tags,omitempty"`

	Status      ReviewStatus `json:"status"`
	IsReviewed  bool         `json:"is_reviewed"`
	MentorScore *int         `json:"mentor_score,omitempty"` // 1-5
	MentorNotes string       `json:"mentor_notes,omitempty"`
	ReviewedBy  string       `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsApproved reports whether the trade counts toward performance statistics.
func (t Trade) IsApproved() bool {
	return t.IsReviewed
}

// IsWin reports whether the trade closed as a win.
func (t Trade) IsWin() bool {
	return t.Outcome == OutcomeWin
}

// Clone returns a deep copy so transitions never alias the caller's trade.
func (t Trade) Clone() Trade {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.MentorScore != nil {
		score := *t.MentorScore
		c.MentorScore = &score
	}
	if t.ReviewedAt != nil {
		at := *t.ReviewedAt
		c.ReviewedAt = &at
	}
	return c
}

// TradeDraft holds the owner-editable content fields of a trade.
type TradeDraft struct {
	TradeDate  Date       `json:"trade_date"`
	Session    Session    `json:"session"`
	Pair       string     `json:"pair"`
	Bias       Bias       `json:"bias"`
	DailyBias  Bias       `json:"daily_bias"`
	Framework  Framework  `json:"framework"`
	Profiling  Profiling  `json:"profiling"`
	EntryModel EntryModel `json:"entry_model"`
	Outcome    Outcome    `json:"outcome"`
	Result     float64    `json:"result"`
	Mood       Mood       `json:"mood"`
	ChartURL   string     `json:"chart_url"`
	Note       string     `json:"note,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// Apply copies the draft's content fields onto the trade. Moderation fields are left untouched.
func (d TradeDraft) Apply(t *Trade) {
	t.TradeDate = d.TradeDate
	t.Session = d.Session
	t.Pair = d.Pair
	t.Bias = d.Bias
	t.DailyBias = d.DailyBias
	t.Framework = d.Framework
	t.Profiling = d.Profiling
	t.EntryModel = d.EntryModel
	t.Outcome = d.Outcome
	t.Result = d.Result
	t.Mood = d.Mood
	t.ChartURL = d.ChartURL
	t.Note = d.Note
	if d.Tags != nil {
		t.Tags = append([]string(nil), d.Tags...)
	} else {
		t.Tags = nil
	}
}

// Draft extracts the content fields of a trade.
func (t Trade) Draft() TradeDraft {
	d := TradeDraft{
		TradeDate:  t.TradeDate,
		Session:    t.Session,
		Pair:       t.Pair,
		Bias:       t.Bias,
		DailyBias:  t.DailyBias,
		Framework:  t.Framework,
		Profiling:  t.Profiling,
		EntryModel: t.EntryModel,
		Outcome:    t.Outcome,
		Result:     t.Result,
		Mood:       t.Mood,
		ChartURL:   t.ChartURL,
		Note:       t.Note,
	}
	if t.Tags != nil {
		d.Tags = append([]string(nil), t.Tags...)
	}
	return d
}

// NormalizeResult returns result with its sign matched to outcome.
// Win is forced non-negative, Lose non-positive, BreakEven is kept as entered.
func NormalizeResult(outcome Outcome, result float64) float64 {
	switch outcome {
	case OutcomeWin:
		return math.Abs(result)
	case OutcomeLose:
		return -math.Abs(result)
	default:
		return result
	}
}
