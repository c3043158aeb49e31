package stats

import (
	"math"
	"testing"
	"time"

	"team-journal/internal/models"
)

func score(n int) *int { return &n }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeUserStatsScenario(t *testing.T) {
	trades := []models.Trade{
		{ID: "A", Outcome: models.OutcomeWin, Result: 2.0, IsReviewed: true, MentorScore: score(4)},
		{ID: "B", Outcome: models.OutcomeLose, Result: -1.0, IsReviewed: true, MentorScore: score(2)},
		{ID: "C", Outcome: models.OutcomeWin, Result: 3.0},
	}

	got := ComputeUserStats(trades)
	if got.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", got.TotalTrades)
	}
	if !approx(got.TotalR, 1.0) {
		t.Errorf("TotalR = %v, want 1.0", got.TotalR)
	}
	if got.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", got.WinRate)
	}
	if got.AvgScore != 3.0 {
		t.Errorf("AvgScore = %v, want 3.0", got.AvgScore)
	}
	if got.PendingCount != 1 {
		t.Errorf("PendingCount = %d, want 1", got.PendingCount)
	}
}

func TestComputeUserStatsIgnoresNullScores(t *testing.T) {
	trades := []models.Trade{
		{Outcome: models.OutcomeWin, Result: 1, IsReviewed: true, MentorScore: score(5)},
		{Outcome: models.OutcomeWin, Result: 1, IsReviewed: true},
	}
	got := ComputeUserStats(trades)
	if got.AvgScore != 5 || got.ScoredTrades != 1 {
		t.Errorf("expected avg 5 over 1 scored trade, got %v over %d", got.AvgScore, got.ScoredTrades)
	}
}

func TestComputeUserStatsToleratesSignMismatch(t *testing.T) {
	trades := []models.Trade{
		{Outcome: models.OutcomeWin, Result: -1.5, IsReviewed: true},
		{Outcome: models.OutcomeLose, Result: 0.5, IsReviewed: true},
	}
	got := ComputeUserStats(trades)
	if !approx(got.TotalR, -1.0) {
		t.Errorf("expected raw sum -1.0, got %v", got.TotalR)
	}
	if got.Wins != 1 || got.Losses != 1 {
		t.Errorf("expected outcome-based wins/losses 1/1, got %d/%d", got.Wins, got.Losses)
	}
}

func TestComputeUserStatsEmpty(t *testing.T) {
	if got := ComputeUserStats(nil); got != (UserStats{}) {
		t.Errorf("expected zero stats, got %+v", got)
	}
}

func TestSessionBreakdownApprovedOnly(t *testing.T) {
	trades := []models.Trade{
		{Session: models.SessionLondon, Outcome: models.OutcomeWin, Result: 2, IsReviewed: true},
		{Session: models.SessionLondon, Outcome: models.OutcomeLose, Result: -1, IsReviewed: true},
		{Session: models.SessionLondon, Outcome: models.OutcomeWin, Result: 5},
		{Session: models.SessionAsia, Outcome: models.OutcomeWin, Result: 1, IsReviewed: true},
	}

	got := SessionBreakdown(trades)
	if len(got) != len(models.Sessions) {
		t.Fatalf("expected %d rows, got %d", len(models.Sessions), len(got))
	}
	bySession := map[models.Session]SessionStats{}
	for _, row := range got {
		bySession[row.Session] = row
	}
	london := bySession[models.SessionLondon]
	if london.TradeCount != 2 || london.WinRate != 50 || !approx(london.TotalR, 1) {
		t.Errorf("unexpected London row %+v", london)
	}
	if asia := bySession[models.SessionAsia]; asia.TradeCount != 1 || asia.WinRate != 100 {
		t.Errorf("unexpected Asia row %+v", asia)
	}
	if ny := bySession[models.SessionNewYorkPM]; ny.TradeCount != 0 || ny.WinRate != 0 {
		t.Errorf("expected empty NewYorkPM row, got %+v", ny)
	}
}

func TestProfilingBreakdown(t *testing.T) {
	trades := []models.Trade{
		{Profiling: models.ProfilingReversal, Outcome: models.OutcomeWin, Result: 3, IsReviewed: true},
		{Profiling: models.ProfilingReversal, Outcome: models.OutcomeBreakEven, Result: 0, IsReviewed: true},
		{Profiling: models.ProfilingExpansion, Outcome: models.OutcomeLose, Result: -1},
	}
	got := ProfilingBreakdown(trades)
	for _, row := range got {
		switch row.Profiling {
		case models.ProfilingReversal:
			if row.Count != 2 || row.WinRate != 50 || !approx(row.TotalR, 3) {
				t.Errorf("unexpected Reversal row %+v", row)
			}
		case models.ProfilingExpansion:
			if row.Count != 0 {
				t.Errorf("pending trade leaked into Expansion row %+v", row)
			}
		}
	}
}

func TestMonthlyBreakdownIncludesUnreviewed(t *testing.T) {
	trades := []models.Trade{
		{TradeDate: models.NewDate(2024, 1, 5), Outcome: models.OutcomeWin, Result: 1, IsReviewed: true},
		{TradeDate: models.NewDate(2024, 1, 20), Outcome: models.OutcomeLose, Result: -0.5},
	}
	got := MonthlyBreakdown(trades)
	if len(got) != 1 {
		t.Fatalf("expected a single month bucket, got %d", len(got))
	}
	if got[0].Month != "2024-01" || got[0].TradeCount != 2 || !approx(got[0].TotalR, 0.5) {
		t.Errorf("unexpected bucket %+v", got[0])
	}
}

func TestMonthlyBreakdownNewestFirst(t *testing.T) {
	trades := []models.Trade{
		{TradeDate: models.NewDate(2023, 12, 31)},
		{TradeDate: models.NewDate(2024, 2, 1)},
		{TradeDate: models.NewDate(2024, 1, 15)},
	}
	got := MonthlyBreakdown(trades)
	want := []string{"2024-02", "2024-01", "2023-12"}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i, m := range want {
		if got[i].Month != m {
			t.Errorf("month[%d] = %s, want %s", i, got[i].Month, m)
		}
	}
}

func TestLeaderboardRanksMembersOnly(t *testing.T) {
	profiles := []models.Profile{
		{ID: "mentor", DisplayName: "Mentor", Role: models.RoleMentor, IsActive: true},
		{ID: "a", DisplayName: "Alex", Role: models.RoleMember, IsActive: true},
		{ID: "b", DisplayName: "Blair", Role: models.RoleMember, IsActive: false},
		{ID: "c", DisplayName: "Casey", Role: models.RoleMember, IsActive: true},
	}
	trades := []models.Trade{
		{UserID: "a", Outcome: models.OutcomeWin, Result: 1, IsReviewed: true},
		{UserID: "b", Outcome: models.OutcomeWin, Result: 4, IsReviewed: true},
		{UserID: "b", Outcome: models.OutcomeWin, Result: 10},
		{UserID: "mentor", Outcome: models.OutcomeWin, Result: 20, IsReviewed: true},
	}

	got := Leaderboard(profiles, trades)
	if len(got) != 3 {
		t.Fatalf("expected 3 members, got %d", len(got))
	}
	if got[0].UserID != "b" || got[0].Rank != 1 || !approx(got[0].TotalR, 4) {
		t.Errorf("expected inactive member b first with 4R, got %+v", got[0])
	}
	if got[1].UserID != "a" || got[2].UserID != "c" {
		t.Errorf("unexpected order %s, %s", got[1].UserID, got[2].UserID)
	}
	if got[2].TotalTrades != 0 || got[2].TotalR != 0 || got[2].WinRate != 0 {
		t.Errorf("expected zeroed entry for c, got %+v", got[2])
	}
}

func TestLeaderboardTiesKeepProfileOrder(t *testing.T) {
	profiles := []models.Profile{
		{ID: "x", Role: models.RoleMember},
		{ID: "y", Role: models.RoleMember},
		{ID: "z", Role: models.RoleMember},
	}
	got := Leaderboard(profiles, nil)
	for i, id := range []string{"x", "y", "z"} {
		if got[i].UserID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].UserID, id)
		}
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	got := Leaderboard(nil, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil leaderboard, got %#v", got)
	}
}

func TestComputeTeamStats(t *testing.T) {
	today := models.NewDate(2024, 5, 14)
	profiles := []models.Profile{
		{ID: "m", Role: models.RoleMentor},
		{ID: "a", Role: models.RoleMember},
		{ID: "b", Role: models.RoleMember},
	}
	trades := []models.Trade{
		{UserID: "a", TradeDate: today, Outcome: models.OutcomeLose, Result: -1.2},
		{UserID: "a", TradeDate: today, Outcome: models.OutcomeLose, Result: -1.0, IsReviewed: true},
		{UserID: "b", TradeDate: today, Outcome: models.OutcomeWin, Result: 2.0, IsReviewed: true},
		{UserID: "b", TradeDate: today.AddDays(-1), Outcome: models.OutcomeLose, Result: -3.0},
		{UserID: "m", TradeDate: today, Outcome: models.OutcomeLose, Result: -5.0},
	}

	got := ComputeTeamStats(profiles, trades, today)
	if got.TotalMembers != 2 {
		t.Errorf("TotalMembers = %d, want 2", got.TotalMembers)
	}
	if !approx(got.TeamTotalR, -0.2) {
		t.Errorf("TeamTotalR = %v, want -0.2", got.TeamTotalR)
	}
	if got.TodayTrades != 3 {
		t.Errorf("TodayTrades = %d, want 3", got.TodayTrades)
	}
	if !approx(got.TeamWinRate, 100.0/3) {
		t.Errorf("TeamWinRate = %v, want 33.3", got.TeamWinRate)
	}
	if got.LockedMembers != 1 {
		t.Errorf("LockedMembers = %d, want 1", got.LockedMembers)
	}
	if got.PendingReviews != 3 {
		t.Errorf("PendingReviews = %d, want 3 (global)", got.PendingReviews)
	}
}

func TestComputeTeamStatsEmpty(t *testing.T) {
	got := ComputeTeamStats(nil, nil, models.NewDate(2024, 1, 1))
	if got.TotalMembers != 0 || got.LockedMembers != 0 || got.TeamWinRate != 0 {
		t.Errorf("expected zero team stats, got %+v", got)
	}
}

func TestMemberOverview(t *testing.T) {
	today := models.NewDate(2024, 5, 14)
	profiles := []models.Profile{
		{ID: "a", DisplayName: "Alex", Role: models.RoleMember, IsActive: true},
		{ID: "m", DisplayName: "Mentor", Role: models.RoleMentor, IsActive: true},
	}
	trades := []models.Trade{
		{UserID: "a", TradeDate: today, Result: -2.5},
	}
	got := MemberOverview(profiles, trades, today)
	if len(got) != 1 || !got[0].IsLocked || got[0].Stats.PendingCount != 1 {
		t.Errorf("unexpected overview %+v", got)
	}
}

func TestReviewQueueOldestFirstExcludingOwn(t *testing.T) {
	base := time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{ID: "3", UserID: "a", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "1", UserID: "a", CreatedAt: base},
		{ID: "mine", UserID: "mentor", CreatedAt: base.Add(-time.Hour)},
		{ID: "done", UserID: "b", CreatedAt: base.Add(-2 * time.Hour), IsReviewed: true},
		{ID: "2", UserID: "b", CreatedAt: base.Add(time.Hour), Status: models.StatusRevisionRequested},
	}

	got := ReviewQueue(trades, "mentor")
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d queued trades, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("queue[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestReviewQueueEmpty(t *testing.T) {
	if got := ReviewQueue(nil, "x"); len(got) != 0 {
		t.Errorf("expected empty queue, got %d", len(got))
	}
}
