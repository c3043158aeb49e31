package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateInUsesObserverZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on the 15th is still the 14th in New York.
	at := time.Date(2024, 5, 15, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2024, 5, 14), DateIn(at, ny))
	assert.Equal(t, NewDate(2024, 5, 15), DateOf(at))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 2, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2024-02", d.YearMonth())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
}

func TestDateJSON(t *testing.T) {
	var holder struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-05-14"}`), &holder))
	assert.Equal(t, NewDate(2024, 5, 14), holder.D)

	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &holder))
	assert.True(t, holder.D.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"14/05/2024"}`), &holder))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-05-14"))
	assert.Equal(t, NewDate(2024, 5, 14), d)

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, NewDate(2023, 12, 31), d)

	assert.Error(t, d.Scan(42))
}

func TestEntryModelValidity(t *testing.T) {
	for _, p := range Profilings {
		allowed := EntryModelsFor(p)
		require.NotEmpty(t, allowed, "profiling %s", p)
		for _, m := range allowed {
			assert.True(t, p.AllowsEntryModel(m))
		}
	}
}

// NormalizeResult keeps magnitude and matches the sign to the outcome.
func TestPropertyNormalizeResult(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("win non-negative, lose non-positive, break-even untouched", prop.ForAll(
		func(result float64) bool {
			win := NormalizeResult(OutcomeWin, result)
			lose := NormalizeResult(OutcomeLose, result)
			be := NormalizeResult(OutcomeBreakEven, result)
			return win >= 0 && lose <= 0 && win == -lose && be == result
		},
		gen.Float64Range(-20, 20),
	))

	properties.TestingRun(t)
}
