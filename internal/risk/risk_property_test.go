package risk

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"team-journal/internal/models"
	"team-journal/pkg/utils"
)

var testDay = models.NewDate(2024, 5, 14)

func tradesOn(date models.Date, results ...float64) []models.Trade {
	trades := make([]models.Trade, len(results))
	for i, r := range results {
		trades[i] = models.Trade{
			ID:        "T" + string(rune('A'+i)),
			UserID:    "u1",
			TradeDate: date,
			Result:    r,
		}
	}
	return trades
}

// Property: for any trades on one day, TotalR is the exact sum of results and the
// lock engages iff TotalR <= -2.0.
func TestProperty_DailyRiskSumAndLock(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("TotalR equals the sum and lock follows the threshold", prop.ForAll(
		func(results []float64) bool {
			trades := tradesOn(testDay, results...)
			got := EvaluateDailyRisk(trades, testDay)

			var want float64
			for _, r := range results {
				want += r
			}
			if got.TotalR != want {
				t.Logf("TotalR = %v, want %v", got.TotalR, want)
				return false
			}
			if got.IsLocked != (want <= -2.0) {
				t.Logf("IsLocked = %v for TotalR %v", got.IsLocked, want)
				return false
			}
			return got.TradeCount == len(results)
		},
		gen.SliceOf(gen.Float64Range(-3, 3)),
	))

	properties.Property("Evaluation is idempotent", prop.ForAll(
		func(results []float64) bool {
			trades := tradesOn(testDay, results...)
			return EvaluateDailyRisk(trades, testDay) == EvaluateDailyRisk(trades, testDay)
		},
		gen.SliceOf(gen.Float64Range(-3, 3)),
	))

	properties.Property("Trades on other days never count", prop.ForAll(
		func(results []float64, offset int) bool {
			other := testDay.AddDays(offset)
			got := EvaluateDailyRisk(tradesOn(other, results...), testDay)
			return got.TotalR == 0 && !got.IsLocked && got.TradeCount == 0
		},
		gen.SliceOf(gen.Float64Range(-5, 5)),
		gen.IntRange(1, 400).Map(func(n int) int {
			if n%2 == 0 {
				return -n
			}
			return n
		}),
	))

	properties.Property("Break-even trades alone never lock", prop.ForAll(
		func(n int) bool {
			results := make([]float64, n)
			return !EvaluateDailyRisk(tradesOn(testDay, results...), testDay).IsLocked
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

func TestEvaluateDailyRiskScenario(t *testing.T) {
	trades := tradesOn(testDay, 1.5, -1.0, -1.2)

	got := EvaluateDailyRisk(trades, testDay)
	if math.Abs(got.TotalR-(-0.7)) > 1e-9 {
		t.Errorf("TotalR = %v, want -0.7", got.TotalR)
	}
	if got.IsLocked {
		t.Error("expected unlocked at -0.7R")
	}
	if got.DisplayR() != -0.7 {
		t.Errorf("DisplayR = %v, want -0.7", got.DisplayR())
	}

	trades = append(trades, tradesOn(testDay, -1.5)...)
	got = EvaluateDailyRisk(trades, testDay)
	if math.Abs(got.TotalR-(-2.2)) > 1e-9 {
		t.Errorf("TotalR = %v, want -2.2", got.TotalR)
	}
	if !got.IsLocked {
		t.Error("expected locked at -2.2R")
	}
	if got.RemainingR() != 0 {
		t.Errorf("RemainingR = %v, want 0 when locked", got.RemainingR())
	}
}

func TestEvaluateDailyRiskExactThresholdLocks(t *testing.T) {
	got := EvaluateDailyRisk(tradesOn(testDay, -1.0, -1.0), testDay)
	if !got.IsLocked {
		t.Errorf("expected -2.0R to lock, got %+v", got)
	}
}

func TestEvaluateDailyRiskEmpty(t *testing.T) {
	got := EvaluateDailyRisk(nil, testDay)
	if got.TotalR != 0 || got.IsLocked || got.TradeCount != 0 {
		t.Errorf("expected zero result, got %+v", got)
	}
	if got.RemainingR() != 2.0 {
		t.Errorf("RemainingR = %v, want 2.0", got.RemainingR())
	}
}

func TestEvaluatorResetsAtNewYorkMidnight(t *testing.T) {
	trades := tradesOn(testDay, -2.5)

	// 23:59 New York on the trading day: locked.
	before := time.Date(2024, 5, 14, 23, 59, 0, 0, utils.NewYorkLocation)
	if got := NewEvaluator(utils.FixedClock{At: before}).Evaluate(trades); !got.IsLocked {
		t.Error("expected lock before New York midnight")
	}

	// 00:01 New York the next day: the window moved, no unlock step needed.
	after := time.Date(2024, 5, 15, 0, 1, 0, 0, utils.NewYorkLocation)
	if got := NewEvaluator(utils.FixedClock{At: after}).Evaluate(trades); got.IsLocked {
		t.Error("expected lock to clear after New York midnight")
	}
}
