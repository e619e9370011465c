package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"kmertax/internal/kmer"
)

func TestBuildOccurrenceSum(t *testing.T) {
	cases := []struct {
		seq     string
		k       int
		invalid int
	}{
		{"ACGTACGTACGT", 4, 0},
		{"ACGTNACGTA", 4, 4},
		{"acgtRRacgtacgt", 4, 5},
		{"ACGTACGTACGTTTGACCA", 8, 0},
	}
	for _, c := range cases {
		ix, err := Build("x", []byte(c.seq), c.k)
		require.NoError(t, err)
		want := len(c.seq) - c.k + 1 - c.invalid
		sum := 0
		for i := 0; i < kmer.Count(c.k); i++ {
			sum += ix.Occurrences(uint32(i))
		}
		require.Equal(t, want, sum, c.seq)
		require.Equal(t, want, ix.Len())
		require.NoError(t, ix.Validate())
	}
}

func TestBuildBucketsSortedAndCorrect(t *testing.T) {
	seq := []byte("ACGTACGTACGT")
	ix, err := Build("X", seq, 4)
	require.NoError(t, err)
	acgt, _ := kmer.Index([]byte("ACGT"))
	require.Equal(t, []uint32{0, 4, 8}, ix.Bucket(acgt))
	cgta, _ := kmer.Index([]byte("CGTA"))
	require.Equal(t, []uint32{1, 5}, ix.Bucket(cgta))
	aaaa, _ := kmer.Index([]byte("AAAA"))
	require.Empty(t, ix.Bucket(aaaa))
	require.Equal(t, "X", ix.Lineage)
	require.Equal(t, len(seq), ix.SeqLen)
}

func TestBuildShortSequenceIsEmpty(t *testing.T) {
	ix, err := Build("short", []byte("ACG"), 4)
	require.NoError(t, err)
	require.Zero(t, ix.Len())
	require.Len(t, ix.Offsets, kmer.Count(4)+1)
	require.NoError(t, ix.Validate())
}

func TestBuildRejectsBadK(t *testing.T) {
	_, err := Build("x", []byte("ACGT"), 0)
	require.Error(t, err)
}

func TestValidateDetectsCorruption(t *testing.T) {
	ix, err := Build("x", []byte("ACGTACGTACGT"), 4)
	require.NoError(t, err)
	acgt, _ := kmer.Index([]byte("ACGT"))
	lo := ix.Offsets[acgt]
	ix.Positions[lo], ix.Positions[lo+1] = ix.Positions[lo+1], ix.Positions[lo]
	err = ix.Validate()
	require.True(t, errors.Is(err, ErrInvalid), "got %v", err)

	ix2, _ := Build("x", []byte("ACGT"), 4)
	ix2.Offsets = ix2.Offsets[:10]
	require.ErrorIs(t, ix2.Validate(), ErrInvalid)
}

func TestOccurrenceAddAndNet(t *testing.T) {
	occ := NewOccurrence(4)
	a, _ := Build("a", []byte("AAAAAA"), 4) // AAAA x3
	b, _ := Build("b", []byte("AAAACC"), 4) // AAAA, AAAC, AACC
	require.NoError(t, occ.Add(a))
	require.NoError(t, occ.Add(b))

	aaaa, _ := kmer.Index([]byte("AAAA"))
	require.Equal(t, uint32(4), occ.Counts[aaaa])

	tttt, _ := kmer.Index([]byte("TTTT"))
	require.Equal(t, int64(4), occ.Net([]uint32{aaaa}))
	require.Equal(t, int64(-4), occ.Net([]uint32{tttt}))

	wrongK, _ := Build("c", []byte("AAAAAAAA"), 5)
	require.Error(t, occ.Add(wrongK))
}
