package churn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderWithoutRepository(t *testing.T) {
	p := NewProvider(t.TempDir())
	assert.False(t, p.Available())
	assert.Empty(t, p.Head())

	churn, err := p.Churn([]string{"/p/a.ts"}, "90d")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"/p/a.ts": 0}, churn)
}

func TestParsePeriod(t *testing.T) {
	now := time.Now()

	cutoff, ok := parsePeriod("90d")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(0, 0, -90), cutoff, time.Minute)

	cutoff, ok = parsePeriod("6m")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(0, -6, 0), cutoff, time.Minute)

	cutoff, ok = parsePeriod("1y")
	require.True(t, ok)
	assert.WithinDuration(t, now.AddDate(-1, 0, 0), cutoff, time.Minute)

	_, ok = parsePeriod("all")
	assert.False(t, ok)

	_, ok = parsePeriod("")
	assert.False(t, ok)

	_, ok = parsePeriod("soon")
	assert.False(t, ok)
}
