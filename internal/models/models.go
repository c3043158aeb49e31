// Package models provides domain models for the team journal.
package models

import (
	"fmt"
	"time"
)

// Role represents a profile's permission level.
type Role string

const (
	RoleMember Role = "member"
	RoleMentor Role = "mentor"
)

// Session represents the market session a trade was taken in.
type Session string

const (
	SessionAsia      Session = "Asia"
	SessionLondon    Session = "London"
	SessionNewYorkAM Session = "NewYorkAM"
	SessionNewYorkPM Session = "NewYorkPM"
)

// Bias represents a directional bias. Used for both intraday and daily bias.
type Bias string

const (
	BiasBullish Bias = "Bullish"
	BiasBearish Bias = "Bearish"
	BiasNeutral Bias = "Neutral"
)

// Framework represents the analysis framework behind a setup.
type Framework string

const (
	FrameworkMarketStructure Framework = "MarketStructure"
	FrameworkLiquiditySweep  Framework = "LiquiditySweep"
	FrameworkSupplyDemand    Framework = "SupplyDemand"
)

// Profiling represents the setup profiling category.
type Profiling string

const (
	ProfilingConsolidation Profiling = "Consolidation"
	ProfilingExpansion     Profiling = "Expansion"
	ProfilingRetracement   Profiling = "Retracement"
	ProfilingReversal      Profiling = "Reversal"
)

// EntryModel represents the entry trigger used.
type EntryModel string

const (
	EntryRangeBreakout     EntryModel = "RangeBreakout"
	EntryLiquidityGrab     EntryModel = "LiquidityGrab"
	EntryFairValueGap      EntryModel = "FairValueGap"
	EntryBreakOfStructure  EntryModel = "BreakOfStructure"
	EntryOrderBlock        EntryModel = "OrderBlock"
	EntryOptimalTradeEntry EntryModel = "OptimalTradeEntry"
	EntryBreakerBlock      EntryModel = "BreakerBlock"
)

// Outcome represents how a trade closed.
type Outcome string

const (
	OutcomeWin       Outcome = "Win"
	OutcomeLose      Outcome = "Lose"
	OutcomeBreakEven Outcome = "BreakEven"
)

// Mood represents the trader's psychological state.
type Mood string

const (
	MoodCalm       Mood = "Calm"
	MoodConfident  Mood = "Confident"
	MoodAnxious    Mood = "Anxious"
	MoodFrustrated Mood = "Frustrated"
	MoodImpulsive  Mood = "Impulsive"
)

// ReviewStatus is the persisted moderation status of a trade.
type ReviewStatus string

const (
	StatusSubmitted         ReviewStatus = "submitted"
	StatusRevisionRequested ReviewStatus = "revision_requested"
)

// Ordered value lists. Breakdowns iterate these so output order is stable.
var (
	Roles      = []Role{RoleMember, RoleMentor}
	Sessions   = []Session{SessionAsia, SessionLondon, SessionNewYorkAM, SessionNewYorkPM}
	Biases     = []Bias{BiasBullish, BiasBearish, BiasNeutral}
	Frameworks = []Framework{FrameworkMarketStructure, FrameworkLiquiditySweep, FrameworkSupplyDemand}
	Profilings = []Profiling{ProfilingConsolidation, ProfilingExpansion, ProfilingRetracement, ProfilingReversal}
	Outcomes   = []Outcome{OutcomeWin, OutcomeLose, OutcomeBreakEven}
	Moods      = []Mood{MoodCalm, MoodConfident, MoodAnxious, MoodFrustrated, MoodImpulsive}
)

// entryModelsByProfiling is the allowed entry model subset for each profiling category.
var entryModelsByProfiling = map[Profiling][]EntryModel{
	ProfilingConsolidation: {EntryRangeBreakout, EntryLiquidityGrab},
	ProfilingExpansion:     {EntryFairValueGap, EntryBreakOfStructure},
	ProfilingRetracement:   {EntryOrderBlock, EntryOptimalTradeEntry, EntryFairValueGap},
	ProfilingReversal:      {EntryLiquidityGrab, EntryBreakerBlock, EntryBreakOfStructure},
}

// EntryModelsFor returns the entry models selectable for a profiling category.
func EntryModelsFor(p Profiling) []EntryModel {
	models := entryModelsByProfiling[p]
	out := make([]EntryModel, len(models))
	copy(out, models)
	return out
}

// AllowsEntryModel reports whether the entry model is valid for the profiling category.
func (p Profiling) AllowsEntryModel(m EntryModel) bool {
	for _, allowed := range entryModelsByProfiling[p] {
		if allowed == m {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool       { return contains(Roles, r) }
func (s Session) Valid() bool    { return contains(Sessions, s) }
func (b Bias) Valid() bool       { return contains(Biases, b) }
func (f Framework) Valid() bool  { return contains(Frameworks, f) }
func (p Profiling) Valid() bool  { return contains(Profilings, p) }
func (o Outcome) Valid() bool    { return contains(Outcomes, o) }
func (m Mood) Valid() bool       { return contains(Moods, m) }
func (s ReviewStatus) Valid() bool {
	return s == StatusSubmitted || s == StatusRevisionRequested
}

// Valid reports whether the entry model belongs to any profiling category.
func (m EntryModel) Valid() bool {
	for _, p := range Profilings {
		if p.AllowsEntryModel(m) {
			return true
		}
	}
	return false
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an operation.
// It is built from the caller's profile and passed explicitly; there is no ambient current user.
type Actor struct {
	UserID string
	Role   Role
	Active bool
}

// IsMentor returns true if the actor holds the mentor role.
func (a Actor) IsMentor() bool {
	return a.Role == RoleMentor
}

// Profile represents a team member or mentor.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Actor returns the actor identity for this profile.
func (p Profile) Actor() Actor {
	return Actor{UserID: p.ID, Role: p.Role, Active: p.IsActive}
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return fmt.Sprintf("%s (%s)", p.DisplayName, p.Role)
}
