package score

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestPMFZeroMatches(t *testing.T) {
	pmf, err := PMF(0, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0, 0, 0, 0}, pmf)
}

func TestPMFPerfectMatch(t *testing.T) {
	pmf, err := PMF(10, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{1e-300, 0, 0, 0, 0, 1}, pmf)

	pmf, err = PMF(3, 3, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{1}, pmf)
}

func TestPMFSumsToOne(t *testing.T) {
	for _, tc := range []struct{ m, n, t int }{
		{1, 10, 5}, {5, 10, 5}, {9, 10, 5}, {50, 400, 200}, {399, 400, 200}, {1, 2, 1},
	} {
		pmf, err := PMF(tc.m, tc.n, tc.t)
		require.NoError(t, err)
		require.Len(t, pmf, tc.t+1)
		require.InDelta(t, 1.0, sum(pmf), 1e-9, "m=%d n=%d t=%d", tc.m, tc.n, tc.t)
		for _, v := range pmf {
			require.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestPMFShiftsWithMatchCount(t *testing.T) {
	// Higher match counts put more mass on large draws.
	lo, err := PMF(2, 20, 10)
	require.NoError(t, err)
	hi, err := PMF(18, 20, 10)
	require.NoError(t, err)
	require.Greater(t, hi[10], lo[10])
	require.Greater(t, lo[0], hi[0])
}

func TestPMFRejectsBadInput(t *testing.T) {
	var ie *InvariantError
	_, err := PMF(1, 4, 5)
	require.True(t, errors.As(err, &ie))
	_, err = PMF(5, 4, 2)
	require.True(t, errors.As(err, &ie))
	_, err = PMF(1, 4, -1)
	require.True(t, errors.As(err, &ie))
}

func TestConfidenceSumsToOne(t *testing.T) {
	scores, err := Confidence([]uint32{3, 2, 1, 0, 3}, 10, 5)
	require.NoError(t, err)
	require.Len(t, scores, 5)
	require.InDelta(t, 1.0, sum(scores), 1e-9)
	for _, s := range scores {
		require.Greater(t, s, 0.0)
		require.Less(t, s, 1.0)
	}
	require.Equal(t, scores[0], scores[4])
	require.Greater(t, scores[0], scores[1])
	require.Greater(t, scores[1], scores[2])
	require.Greater(t, scores[2], scores[3])
}

func TestConfidencePerfectMatchDominates(t *testing.T) {
	scores, err := Confidence([]uint32{4, 0}, 4, 2)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sum(scores), 1e-9)
	require.Greater(t, scores[0], 0.5)
	require.Greater(t, scores[1], 0.0)
}

func TestConfidenceFloorsUnderflowedScores(t *testing.T) {
	// Two perfect matches drive the joint maximum at 0 to underflow.
	scores, err := Confidence([]uint32{4, 4, 0}, 4, 2)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sum(scores), 1e-9)
	require.InDelta(t, 0.5, scores[0], 1e-12)
	require.Equal(t, scores[0], scores[1])
	require.Greater(t, scores[2], 0.0)
}

func TestConfidenceSingleReference(t *testing.T) {
	scores, err := Confidence([]uint32{7}, 10, 5)
	require.NoError(t, err)
	require.Equal(t, []float64{1}, scores)
}

func TestConfidenceEmptyQueryIsUniform(t *testing.T) {
	scores, err := Confidence([]uint32{0, 0, 0, 0}, 0, 0)
	require.NoError(t, err)
	for _, s := range scores {
		require.InDelta(t, 0.25, s, 1e-12)
	}
}

func TestConfidenceRejectsCountAboveN(t *testing.T) {
	_, err := Confidence([]uint32{5, 1}, 4, 2)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, 5, ie.M)
	require.Contains(t, ie.Error(), "match count exceeds")
}

func TestConfidenceLargeQueryStaysFinite(t *testing.T) {
	counts := make([]uint32, 200)
	for i := range counts {
		counts[i] = uint32(i * 2)
	}
	scores, err := Confidence(counts, 400, 200)
	require.NoError(t, err)
	require.InDelta(t, 1.0, sum(scores), 1e-9)
	for _, s := range scores {
		require.False(t, math.IsNaN(s))
		require.Greater(t, s, 0.0)
	}
}

func TestThreshold(t *testing.T) {
	require.Equal(t, 5, Threshold(10, 0.5))
	require.Equal(t, 5, Threshold(11, 0))
	require.Equal(t, 0, Threshold(0, 0.5))
	require.Equal(t, 3, Threshold(3, 2))
}
