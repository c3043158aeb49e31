package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"team-journal/internal/models"
)

func genTrade(users int) gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, users-1),
		gen.OneConstOf(models.OutcomeWin, models.OutcomeLose, models.OutcomeBreakEven),
		gen.Float64Range(-3, 3),
		gen.Bool(),
	).Map(func(vals []interface{}) models.Trade {
		return models.Trade{
			UserID:     fmt.Sprintf("u%d", vals[0].(int)),
			Outcome:    vals[1].(models.Outcome),
			Result:     vals[2].(float64),
			IsReviewed: vals[3].(bool),
		}
	})
}

func memberProfiles(n int) []models.Profile {
	profiles := make([]models.Profile, n)
	for i := range profiles {
		profiles[i] = models.Profile{ID: fmt.Sprintf("u%d", i), Role: models.RoleMember}
	}
	return profiles
}

func TestProperty_Leaderboard(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Leaderboard has one entry per member, ranked descending", prop.ForAll(
		func(members int, trades []models.Trade) bool {
			board := Leaderboard(memberProfiles(members), trades)
			if len(board) != members {
				t.Logf("expected %d entries, got %d", members, len(board))
				return false
			}
			for i := range board {
				if board[i].Rank != i+1 {
					return false
				}
				if i > 0 && board[i-1].TotalR < board[i].TotalR {
					t.Logf("entry %d (%v) ranked above %d (%v)", i-1, board[i-1].TotalR, i, board[i].TotalR)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 8),
		gen.SliceOf(genTrade(8)),
	))

	properties.TestingRun(t)
}

func TestProperty_PendingOnlyStats(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Unreviewed trades never affect performance metrics", prop.ForAll(
		func(trades []models.Trade) bool {
			for i := range trades {
				trades[i].IsReviewed = false
			}
			got := ComputeUserStats(trades)
			return got.TotalTrades == 0 &&
				got.TotalR == 0 &&
				got.WinRate == 0 &&
				got.AvgScore == 0 &&
				got.PendingCount == len(trades)
		},
		gen.SliceOf(genTrade(3)),
	))

	properties.Property("Approved plus pending covers every trade", prop.ForAll(
		func(trades []models.Trade) bool {
			got := ComputeUserStats(trades)
			return got.TotalTrades+got.PendingCount == len(trades) &&
				got.Wins+got.Losses+got.BreakEvens == got.TotalTrades
		},
		gen.SliceOf(genTrade(3)),
	))

	properties.Property("Win rate stays within 0-100", prop.ForAll(
		func(trades []models.Trade) bool {
			got := ComputeUserStats(trades)
			return got.WinRate >= 0 && got.WinRate <= 100
		},
		gen.SliceOf(genTrade(3)),
	))

	properties.TestingRun(t)
}
