package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"kmertax/internal/index"
)

func buildFile(t *testing.T, path string, codec Codec, refs map[string]string, order []string) {
	t.Helper()
	ctx := context.Background()
	w, err := Create(ctx, path, 4, codec)
	require.NoError(t, err)
	occ := index.NewOccurrence(4)
	for _, lin := range order {
		ix, err := index.Build(lin, []byte(refs[lin]), 4)
		require.NoError(t, err)
		require.NoError(t, occ.Add(ix))
		_, err = w.Put(ctx, ix)
		require.NoError(t, err)
	}
	require.NoError(t, w.PutOccurrence(ctx, occ))
	size, err := w.Commit(ctx)
	require.NoError(t, err)
	require.Positive(t, size)
}

func TestRoundTrip(t *testing.T) {
	refs := map[string]string{"X": "ACGTACGTACGT", "Y": "TTTTCCCCGGGG"}
	for _, codec := range []Codec{CodecNone, CodecXZ} {
		t.Run(string(codec), func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "refs_data.db")
			buildFile(t, path, codec, refs, []string{"X", "Y"})

			ok, err := Exists(path)
			require.NoError(t, err)
			require.True(t, ok)

			r, err := Open(ctx, path, 2)
			require.NoError(t, err)
			defer r.Close()

			m := r.Meta()
			require.Equal(t, 4, m.K)
			require.Equal(t, 2, m.References)
			require.Equal(t, codec, m.Codec)

			lins, err := r.Lineages(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"X", "Y"}, lins)

			for id, lin := range []string{"X", "Y"} {
				want, _ := index.Build(lin, []byte(refs[lin]), 4)
				got, err := r.Reference(ctx, id)
				require.NoError(t, err)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("reference %d mismatch (-want +got):\n%s", id, diff)
				}
			}

			occ, err := r.Occurrence(ctx)
			require.NoError(t, err)
			var total uint32
			for _, c := range occ.Counts {
				total += c
			}
			require.Equal(t, uint32(9+9), total)

			_, err = r.Reference(ctx, 7)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestAbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.db")
	w, err := Create(context.Background(), path, 4, CodecNone)
	require.NoError(t, err)
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
	ok, err := Exists(path)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommitReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.db")
	buildFile(t, path, CodecNone, map[string]string{"A": "ACGTACGT"}, []string{"A"})
	buildFile(t, path, CodecNone, map[string]string{"B": "GGGGCCCC", "C": "ACGT"}, []string{"B", "C"})

	r, err := Open(context.Background(), path, 1)
	require.NoError(t, err)
	defer r.Close()
	lins, err := r.Lineages(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"B", "C"}, lins)
}

func TestChecksumMismatchIsCorrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "x.db")
	buildFile(t, path, CodecNone, map[string]string{"A": "ACGTACGTAC"}, []string{"A"})

	db, err := sql.Open(driverName, path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE reference SET lineage = 'tampered' WHERE id = 0`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	r, err := Open(ctx, path, 1)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Reference(ctx, 0)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.db"), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("")
	require.NoError(t, err)
	require.Equal(t, CodecNone, c)
	c, err = ParseCodec("xz")
	require.NoError(t, err)
	require.Equal(t, CodecXZ, c)
	_, err = ParseCodec("zstd")
	require.Error(t, err)
}
