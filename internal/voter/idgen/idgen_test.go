package idgen

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
)

type fakeChecker struct {
	taken func(candidate string) bool
	calls []string
	err   error
}

func (f *fakeChecker) ExistsVoterID(_ context.Context, voterID id.VoterID) (bool, error) {
	f.calls = append(f.calls, string(voterID))
	if f.err != nil {
		return false, f.err
	}
	return f.taken(string(voterID)), nil
}

func seeded(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)).IntN)
}

func TestGenerate_ShapeProperty(t *testing.T) {
	checker := &fakeChecker{taken: func(string) bool { return false }}
	seen := make(map[id.VoterID]bool)
	for seed := uint64(0); seed < 500; seed++ {
		g := New(checker, seeded(seed))
		got, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.True(t, id.ValidVoterID(string(got)), "invalid voter id %q", got)
		seen[got] = true
	}
	assert.Greater(t, len(seen), 490)
}

func TestGenerate_RetriesWithDeterministicSuffix(t *testing.T) {
	var first string
	checker := &fakeChecker{}
	checker.taken = func(c string) bool {
		if first == "" {
			first = c
		}
		return len(checker.calls) <= 3
	}

	got, err := New(checker, seeded(7)).Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, checker.calls, 4)
	assert.Equal(t, first[:6]+"01", checker.calls[1])
	assert.Equal(t, first[:6]+"02", checker.calls[2])
	assert.Equal(t, id.VoterID(first[:6]+"03"), got)
	assert.True(t, id.ValidVoterID(string(got)))
}

func TestGenerate_FallsBackToClockDerivedID(t *testing.T) {
	checker := &fakeChecker{}
	checker.taken = func(string) bool { return len(checker.calls) <= MaxAttempts }
	clock := func() time.Time { return time.UnixMilli(1_760_000_000_000) }

	got, err := New(checker, seeded(3), WithClock(clock)).Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, checker.calls, MaxAttempts+1)
	assert.True(t, strings.HasPrefix(string(got), "T"))
	assert.True(t, id.ValidVoterID(string(got)), "fallback id %q", got)
}

func TestGenerate_RandomIDsNeverUseFallbackPrefix(t *testing.T) {
	checker := &fakeChecker{}
	checker.taken = func(string) bool { return len(checker.calls) < MaxAttempts }
	for seed := uint64(0); seed < 300; seed++ {
		checker.calls = nil
		_, err := New(checker, seeded(seed)).Generate(context.Background())
		require.NoError(t, err)
		for _, c := range checker.calls {
			assert.NotEqual(t, byte(fallbackPrefix), c[0], "retry candidate %q", c)
		}
	}
}

func TestGenerate_ExhaustedIsBounded(t *testing.T) {
	checker := &fakeChecker{taken: func(string) bool { return true }}

	_, err := New(checker, seeded(1)).Generate(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasReason(err, dErrors.ReasonGenerationExhausted))
	assert.Len(t, checker.calls, MaxAttempts+FallbackAttempts)
}

func TestGenerate_StoreFailure(t *testing.T) {
	checker := &fakeChecker{err: errors.New("db down")}
	_, err := New(checker).Generate(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.False(t, dErrors.HasReason(err, dErrors.ReasonGenerationExhausted))
}
