package journal

import (
	"context"
	"time"

	"team-journal/internal/errors"
	"team-journal/internal/models"
	"team-journal/internal/risk"
	"team-journal/internal/stats"
)

// UserOverview is everything the analytics page shows for one user.
type UserOverview struct {
	Profile    models.Profile         `json:"profile"`
	Stats      stats.UserStats        `json:"stats"`
	Sessions   []stats.SessionStats   `json:"sessions"`
	Profilings []stats.ProfilingStats `json:"profilings"`
	Monthly    []stats.MonthlyStats   `json:"monthly"`
	Risk       risk.DailyRisk         `json:"risk"`
	NextReset  time.Time              `json:"next_reset"`
}

// TeamOverview is the mentor dashboard: team totals plus one row per member.
type TeamOverview struct {
	Team    stats.TeamStats   `json:"team"`
	Members []stats.MemberRow `json:"members"`
}

// UserOverview computes stats and breakdowns for userID. An empty userID
// means the caller; other users require the mentor role.
func (s *Service) UserOverview(ctx context.Context, actor models.Actor, userID string) (*UserOverview, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID {
		if err := s.requireMentor(ctx, actor, "view_stats"); err != nil {
			return nil, err
		}
	}

	profile, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	trades, err := s.tradesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOverview{
		Profile:    *profile,
		Stats:      stats.ComputeUserStats(trades),
		Sessions:   stats.SessionBreakdown(trades),
		Profilings: stats.ProfilingBreakdown(trades),
		Monthly:    stats.MonthlyBreakdown(trades),
		Risk:       risk.EvaluateDailyRisk(trades, s.Today()),
		NextReset:  s.NextReset(),
	}, nil
}

// Leaderboard ranks every member by approved total R. Any authenticated user may view it.
func (s *Service) Leaderboard(ctx context.Context, actor models.Actor) ([]stats.LeaderboardEntry, error) {
	if actor.UserID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	profiles, trades, err := s.teamSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Leaderboard(profiles, trades), nil
}

// TeamOverview returns today's team totals and the member table. Mentor only.
func (s *Service) TeamOverview(ctx context.Context, actor models.Actor) (*TeamOverview, error) {
	if err := s.requireMentor(ctx, actor, "view_team"); err != nil {
		return nil, err
	}
	profiles, trades, err := s.teamSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	return &TeamOverview{
		Team:    stats.ComputeTeamStats(profiles, trades, today),
		Members: stats.MemberOverview(profiles, trades, today),
	}, nil
}

// MemberOverview returns only the member table. Mentor only.
func (s *Service) MemberOverview(ctx context.Context, actor models.Actor) ([]stats.MemberRow, error) {
	if err := s.requireMentor(ctx, actor, "view_members"); err != nil {
		return nil, err
	}
	profiles, trades, err := s.teamSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stats.MemberOverview(profiles, trades, s.Today()), nil
}

func (s *Service) tradesByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.store.ListTradesByUser(ctx, userID)
}

// teamSnapshot loads every profile and every trade.
func (s *Service) teamSnapshot(ctx context.Context) ([]models.Profile, []models.Trade, error) {
	profiles, err := s.listProfiles(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading profiles")
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	trades, err := s.store.ListAllTrades(ctx, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading trades")
	}
	return profiles, trades, nil
}
