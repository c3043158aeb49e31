// Package stats derives member and team statistics from trade rows.
//
// Every function is pure and total: nil or empty input produces zero values, and
// results are summed exactly as stored even when a trade's sign disagrees with its
// outcome. Performance metrics count approved (reviewed) trades only, with the
// single exception of MonthlyBreakdown, which counts every trade.
package stats

import (
	"sort"

	"team-journal/internal/models"
	"team-journal/internal/risk"
)

// UserStats summarizes one user's approved trades.
type UserStats struct {
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	BreakEvens   int     `json:"break_evens"`
	TotalR       float64 `json:"total_r"`
	WinRate      float64 `json:"win_rate"`
	AvgScore     float64 `json:"avg_score"`
	ScoredTrades int     `json:"scored_trades"`
	PendingCount int     `json:"pending_count"`
}

// SessionStats is the approved-trade breakdown for one session.
type SessionStats struct {
	Session    models.Session `json:"session"`
	TradeCount int            `json:"trade_count"`
	Wins       int            `json:"wins"`
	WinRate    float64        `json:"win_rate"`
	TotalR     float64        `json:"total_r"`
}

// ProfilingStats is the approved-trade breakdown for one profiling category.
type ProfilingStats struct {
	Profiling models.Profiling `json:"profiling"`
	Count     int              `json:"count"`
	Wins      int              `json:"wins"`
	WinRate   float64          `json:"win_rate"`
	TotalR    float64          `json:"total_r"`
}

// MonthlyStats is the all-trades breakdown for one calendar month.
type MonthlyStats struct {
	Month      string  `json:"month"` // YYYY-MM
	TradeCount int     `json:"trade_count"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
	TotalR     float64 `json:"total_r"`
}

// LeaderboardEntry is one ranked member.
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"win_rate"`
	TotalR      float64 `json:"total_r"`
}

// TeamStats is the mentor's team overview for one trading day.
type TeamStats struct {
	Date           models.Date `json:"date"`
	TotalMembers   int         `json:"total_members"`
	TeamTotalR     float64     `json:"team_total_r"`
	TeamWinRate    float64     `json:"team_win_rate"`
	TodayTrades    int         `json:"today_trades"`
	LockedMembers  int         `json:"locked_members"`
	PendingReviews int         `json:"pending_reviews"`
}

// MemberRow is one line of the mentor's member overview table.
type MemberRow struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	IsActive    bool      `json:"is_active"`
	Stats       UserStats `json:"stats"`
	TodayR      float64   `json:"today_r"`
	IsLocked    bool      `json:"is_locked"`
}

// tally accumulates counts for one group.
type tally struct {
	count  int
	wins   int
	totalR float64
}

func (t *tally) add(trade models.Trade) {
	t.count++
	t.totalR += trade.Result
	if trade.IsWin() {
		t.wins++
	}
}

func (t tally) winRate() float64 {
	return winRate(t.wins, t.count)
}

func winRate(wins, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(wins) / float64(count) * 100
}

// ComputeUserStats computes approved-only performance metrics and counts pending trades separately.
func ComputeUserStats(trades []models.Trade) UserStats {
	var out UserStats
	var scoreSum int
	for _, t := range trades {
		if !t.IsApproved() {
			out.PendingCount++
			continue
		}
		out.TotalTrades++
		out.TotalR += t.Result
		switch t.Outcome {
		case models.OutcomeWin:
			out.Wins++
		case models.OutcomeLose:
			out.Losses++
		case models.OutcomeBreakEven:
			out.BreakEvens++
		}
		if t.MentorScore != nil {
			scoreSum += *t.MentorScore
			out.ScoredTrades++
		}
	}
	out.WinRate = winRate(out.Wins, out.TotalTrades)
	if out.ScoredTrades > 0 {
		out.AvgScore = float64(scoreSum) / float64(out.ScoredTrades)
	}
	return out
}

// SessionBreakdown groups approved trades by session, one row per session.
func SessionBreakdown(trades []models.Trade) []SessionStats {
	groups := make(map[models.Session]*tally, len(models.Sessions))
	for _, s := range models.Sessions {
		groups[s] = &tally{}
	}
	for _, t := range trades {
		if !t.IsApproved() {
			continue
		}
		if g, ok := groups[t.Session]; ok {
			g.add(t)
		}
	}

	out := make([]SessionStats, 0, len(models.Sessions))
	for _, s := range models.Sessions {
		g := groups[s]
		out = append(out, SessionStats{
			Session:    s,
			TradeCount: g.count,
			Wins:       g.wins,
			WinRate:    g.winRate(),
			TotalR:     g.totalR,
		})
	}
	return out
}

// ProfilingBreakdown groups approved trades by profiling category, one row per category.
func ProfilingBreakdown(trades []models.Trade) []ProfilingStats {
	groups := make(map[models.Profiling]*tally, len(models.Profilings))
	for _, p := range models.Profilings {
		groups[p] = &tally{}
	}
	for _, t := range trades {
		if !t.IsApproved() {
			continue
		}
		if g, ok := groups[t.Profiling]; ok {
			g.add(t)
		}
	}

	out := make([]ProfilingStats, 0, len(models.Profilings))
	for _, p := range models.Profilings {
		g := groups[p]
		out = append(out, ProfilingStats{
			Profiling: p,
			Count:     g.count,
			Wins:      g.wins,
			WinRate:   g.winRate(),
			TotalR:    g.totalR,
		})
	}
	return out
}

// MonthlyBreakdown groups every trade, reviewed or not, by year-month, newest month first.
func MonthlyBreakdown(trades []models.Trade) []MonthlyStats {
	groups := make(map[string]*tally)
	for _, t := range trades {
		month := t.TradeDate.YearMonth()
		g, ok := groups[month]
		if !ok {
			g = &tally{}
			groups[month] = g
		}
		g.add(t)
	}

	out := make([]MonthlyStats, 0, len(groups))
	for month, g := range groups {
		out = append(out, MonthlyStats{
			Month:      month,
			TradeCount: g.count,
			Wins:       g.wins,
			WinRate:    g.winRate(),
			TotalR:     g.totalR,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month > out[j].Month
	})
	return out
}

// Leaderboard ranks every member-role profile by approved TotalR, descending.
// The active flag is not consulted. Ties keep profile order.
func Leaderboard(profiles []models.Profile, trades []models.Trade) []LeaderboardEntry {
	byUser := make(map[string]*tally)
	for _, t := range trades {
		if !t.IsApproved() {
			continue
		}
		g, ok := byUser[t.UserID]
		if !ok {
			g = &tally{}
			byUser[t.UserID] = g
		}
		g.add(t)
	}

	out := make([]LeaderboardEntry, 0, len(profiles))
	for _, p := range profiles {
		if p.Role != models.RoleMember {
			continue
		}
		entry := LeaderboardEntry{UserID: p.ID, DisplayName: p.DisplayName}
		if g, ok := byUser[p.ID]; ok {
			entry.TotalTrades = g.count
			entry.Wins = g.wins
			entry.WinRate = g.winRate()
			entry.TotalR = g.totalR
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalR > out[j].TotalR
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ComputeTeamStats summarizes today's activity across all members.
func ComputeTeamStats(profiles []models.Profile, trades []models.Trade, today models.Date) TeamStats {
	out := TeamStats{Date: today}

	members := make(map[string]bool)
	for _, p := range profiles {
		if p.Role == models.RoleMember {
			members[p.ID] = true
			out.TotalMembers++
		}
	}

	byUser := make(map[string][]models.Trade)
	var todayTally tally
	for _, t := range trades {
		if !t.IsReviewed {
			out.PendingReviews++
		}
		if !members[t.UserID] {
			continue
		}
		byUser[t.UserID] = append(byUser[t.UserID], t)
		if t.TradeDate == today {
			todayTally.add(t)
		}
	}

	out.TeamTotalR = todayTally.totalR
	out.TodayTrades = todayTally.count
	out.TeamWinRate = todayTally.winRate()

	for _, p := range profiles {
		if !members[p.ID] {
			continue
		}
		if risk.EvaluateDailyRisk(byUser[p.ID], today).IsLocked {
			out.LockedMembers++
		}
	}
	return out
}

// MemberOverview returns one row per member-role profile, in profile order.
func MemberOverview(profiles []models.Profile, trades []models.Trade, today models.Date) []MemberRow {
	byUser := make(map[string][]models.Trade)
	for _, t := range trades {
		byUser[t.UserID] = append(byUser[t.UserID], t)
	}

	out := make([]MemberRow, 0, len(profiles))
	for _, p := range profiles {
		if p.Role != models.RoleMember {
			continue
		}
		own := byUser[p.ID]
		daily := risk.EvaluateDailyRisk(own, today)
		out = append(out, MemberRow{
			UserID:      p.ID,
			DisplayName: p.DisplayName,
			IsActive:    p.IsActive,
			Stats:       ComputeUserStats(own),
			TodayR:      daily.TotalR,
			IsLocked:    daily.IsLocked,
		})
	}
	return out
}

// ReviewQueue returns unreviewed trades not owned by excludeUserID, oldest first.
// An empty excludeUserID excludes nobody.
func ReviewQueue(trades []models.Trade, excludeUserID string) []models.Trade {
	out := make([]models.Trade, 0)
	for _, t := range trades {
		if t.IsReviewed {
			continue
		}
		if excludeUserID != "" && t.UserID == excludeUserID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
