package ids

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeIDsAreMonotonic(t *testing.T) {
	g := NewGenerator()
	at := time.Date(2024, 5, 14, 15, 0, 0, 0, time.UTC)

	var got []string
	for i := 0; i < 50; i++ {
		id, err := g.NewTradeID(at)
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.True(t, sort.StringsAreSorted(got), "ids within one millisecond must increase")

	later, err := g.NewTradeID(at.Add(time.Second))
	require.NoError(t, err)
	assert.Greater(t, later, got[len(got)-1])
}

func TestTradeTimeRoundTrip(t *testing.T) {
	g := NewGenerator()
	at := time.Date(2024, 5, 14, 15, 30, 12, 345_000_000, time.UTC)

	id, err := g.NewTradeID(at)
	require.NoError(t, err)

	decoded, err := TradeTime(id)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(at), "decoded %v, want %v", decoded, at)

	_, err = TradeTime("not-a-ulid")
	assert.Error(t, err)
}

func TestProfileIDs(t *testing.T) {
	a, b := NewProfileID(), NewProfileID()
	assert.NotEqual(t, a, b)
	assert.True(t, IsProfileID(a))
	assert.False(t, IsProfileID("mentor"))
}
