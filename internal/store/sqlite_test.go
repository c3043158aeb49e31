package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-journal/internal/errors"
	"team-journal/internal/models"
)

var base = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedProfile(t *testing.T, s *SQLiteStore, id string, role models.Role) models.Profile {
	t.Helper()
	p := models.Profile{ID: id, DisplayName: "Trader " + id, Role: role, IsActive: true, CreatedAt: base}
	require.NoError(t, s.InsertProfile(context.Background(), &p))
	return p
}

func sampleTrade(id, userID string, created time.Time) models.Trade {
	return models.Trade{
		ID:         id,
		UserID:     userID,
		TradeDate:  models.DateOf(created),
		Session:    models.SessionLondon,
		Pair:       "EURUSD",
		Bias:       models.BiasBullish,
		DailyBias:  models.BiasBullish,
		Framework:  models.FrameworkMarketStructure,
		Profiling:  models.ProfilingRetracement,
		EntryModel: models.EntryOrderBlock,
		Outcome:    models.OutcomeWin,
		Result:     1.5,
		Mood:       models.MoodCalm,
		ChartURL:   "https://charts.example.com/eurusd.png",
		Status:     models.StatusSubmitted,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestTradeInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", models.RoleMember)

	trade := sampleTrade("T1", "u1", base)
	trade.Note = "waited for the sweep"
	trade.Tags = []string{"a+", "patience"}
	require.NoError(t, s.InsertTrade(ctx, &trade))

	got, err := s.GetTrade(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, trade.TradeDate, got.TradeDate)
	assert.Equal(t, trade.Tags, got.Tags)
	assert.Equal(t, trade.Note, got.Note)
	assert.Equal(t, models.EntryOrderBlock, got.EntryModel)
	assert.Nil(t, got.MentorScore)
	assert.Nil(t, got.ReviewedAt)
	assert.False(t, got.IsReviewed)
	assert.True(t, got.CreatedAt.Equal(base))
}

func TestGetTradeNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTrade(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "trade", nf.Kind)
}

func TestUpdateTradePersistsReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", models.RoleMember)

	trade := sampleTrade("T1", "u1", base)
	require.NoError(t, s.InsertTrade(ctx, &trade))

	score := 4
	reviewedAt := base.Add(time.Hour)
	trade.IsReviewed = true
	trade.MentorScore = &score
	trade.MentorNotes = "good patience"
	trade.ReviewedBy = "mentor"
	trade.ReviewedAt = &reviewedAt
	trade.UpdatedAt = reviewedAt
	require.NoError(t, s.UpdateTrade(ctx, &trade))

	got, err := s.GetTrade(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, got.IsReviewed)
	require.NotNil(t, got.MentorScore)
	assert.Equal(t, 4, *got.MentorScore)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(reviewedAt))
	assert.Equal(t, "mentor", got.ReviewedBy)
}

func TestUpdateMissingTrade(t *testing.T) {
	s := newTestStore(t)
	trade := sampleTrade("nope", "u1", base)
	err := s.UpdateTrade(context.Background(), &trade)
	assert.True(t, errors.IsNotFound(err))
}

func TestInsertTradeRequiresKnownProfile(t *testing.T) {
	s := newTestStore(t)
	trade := sampleTrade("T1", "ghost", base)
	err := s.InsertTrade(context.Background(), &trade)
	assert.ErrorIs(t, err, errors.ErrInputValidation)
}

func TestInsertTradeDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", models.RoleMember)

	trade := sampleTrade("T1", "u1", base)
	require.NoError(t, s.InsertTrade(ctx, &trade))
	assert.ErrorIs(t, s.InsertTrade(ctx, &trade), errors.ErrInputValidation)
}

func TestListTradesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "u1", models.RoleMember)
	seedProfile(t, s, "u2", models.RoleMember)

	reviewed := true
	t1 := sampleTrade("T1", "u1", base)
	t2 := sampleTrade("T2", "u1", base.Add(24*time.Hour))
	t3 := sampleTrade("T3", "u2", base.Add(2*time.Hour))
	t3.IsReviewed = reviewed
	for _, tr := range []*models.Trade{&t1, &t2, &t3} {
		require.NoError(t, s.InsertTrade(ctx, tr))
	}

	own, err := s.ListTradesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "T2", own[0].ID, "newest trade date first")

	all, err := s.ListAllTrades(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.ListAllTrades(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	notReviewed := false
	pending, err := s.ListTrades(ctx, TradeFilter{Reviewed: &notReviewed, OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "T1", pending[0].ID)
	assert.Equal(t, "T2", pending[1].ID)

	day, err := s.ListTrades(ctx, TradeFilter{StartDate: models.DateOf(base), EndDate: models.DateOf(base)})
	require.NoError(t, err)
	assert.Len(t, day, 2)

	none, err := s.ListTradesByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestProfilesCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedProfile(t, s, "m1", models.RoleMentor)
	p := seedProfile(t, s, "u1", models.RoleMember)

	p.IsActive = false
	p.DisplayName = "Renamed"
	require.NoError(t, s.UpdateProfile(ctx, &p))

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Renamed", got.DisplayName)
	assert.Equal(t, models.RoleMember, got.Role)

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetProfile(ctx, "ghost")
	assert.True(t, errors.IsNotFound(err))
}

func TestClassifyTransient(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.True(t, errors.IsTransient(classify("query", busy)))

	locked := sqlite3.Error{Code: sqlite3.ErrLocked}
	assert.True(t, errors.IsTransient(classify("query", locked)))

	assert.True(t, errors.IsTransient(classify("query", context.DeadlineExceeded)))

	other := classify("query", fmt.Errorf("disk I/O"))
	assert.False(t, errors.IsTransient(other))
	assert.ErrorIs(t, other, errors.ErrDatabaseError)

	assert.NoError(t, classify("query", nil))
}

// Property: for any valid trade, inserting then reading it back yields the same content fields.
func TestProperty_TradeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "u1", models.RoleMember)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	counter := 0
	properties.Property("Trade round-trip: insert then get produces equivalent data", prop.ForAll(
		func(result float64, dayOffset int, session models.Session, outcome models.Outcome, tagCount int) bool {
			ctx := context.Background()
			counter++
			created := base.Add(time.Duration(counter) * time.Minute)

			trade := sampleTrade(fmt.Sprintf("P%06d", counter), "u1", created)
			trade.TradeDate = models.DateOf(base).AddDays(dayOffset)
			trade.Session = session
			trade.Outcome = outcome
			trade.Result = result
			for i := 0; i < tagCount; i++ {
				trade.Tags = append(trade.Tags, fmt.Sprintf("tag%d", i))
			}

			if err := s.InsertTrade(ctx, &trade); err != nil {
				t.Logf("insert failed: %v", err)
				return false
			}
			got, err := s.GetTrade(ctx, trade.ID)
			if err != nil {
				t.Logf("get failed: %v", err)
				return false
			}

			if got.Result != trade.Result || got.TradeDate != trade.TradeDate ||
				got.Session != trade.Session || got.Outcome != trade.Outcome {
				t.Logf("mismatch: got %+v want %+v", got, trade)
				return false
			}
			if len(got.Tags) != len(trade.Tags) {
				return false
			}
			for i := range trade.Tags {
				if got.Tags[i] != trade.Tags[i] {
					return false
				}
			}
			return got.CreatedAt.Equal(trade.CreatedAt)
		},
		gen.Float64Range(-10, 10),
		gen.IntRange(-400, 400),
		gen.OneConstOf(models.SessionAsia, models.SessionLondon, models.SessionNewYorkAM, models.SessionNewYorkPM),
		gen.OneConstOf(models.OutcomeWin, models.OutcomeLose, models.OutcomeBreakEven),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
