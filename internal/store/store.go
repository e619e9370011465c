// Package store persists reference indexes in a single SQLite file.
//
// One row per reference holds its lineage and the two CSR arrays; a
// separate row holds the global k-mer occurrence counts. Files are built
// under a temporary name and renamed into place, so a reader sees either
// the previous artifact or the complete new one.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"kmertax/internal/index"
	"kmertax/internal/kmer"
)

// FormatVersion is bumped whenever the schema or blob layout changes.
const FormatVersion = 1

const driverName = "sqlite"

var (
	ErrNotFound = errors.New("index entry not found")
	ErrCorrupt  = errors.New("corrupt index artifact")
)

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE reference (
	id          INTEGER PRIMARY KEY,
	lineage     TEXT NOT NULL,
	seq_len     INTEGER NOT NULL,
	n_positions INTEGER NOT NULL,
	offsets     BLOB,
	positions   BLOB,
	checksum    TEXT NOT NULL
);
CREATE TABLE occurrence (
	id       INTEGER PRIMARY KEY CHECK (id = 0),
	counts   BLOB,
	checksum TEXT NOT NULL
);`

// Meta describes an index file.
type Meta struct {
	Version    int
	K          int
	References int
	Codec      Codec
	BuiltAt    time.Time
}

// Exists reports whether an index artifact is present at path.
func Exists(path string) (bool, error) {
	st, err := os.Stat(path)
	switch {
	case err == nil:
		if st.IsDir() {
			return false, fmt.Errorf("index path %s is a directory", path)
		}
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Writer builds a new index file. Nothing is visible at the destination
// until Commit succeeds.
type Writer struct {
	dest  string
	tmp   string
	k     int
	codec Codec
	n     int

	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
}

// Create starts a new index for dest in the same directory.
func Create(ctx context.Context, dest string, k int, codec Codec) (*Writer, error) {
	if err := kmer.ValidateK(k); err != nil {
		return nil, err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp index: %w", err)
	}
	tmp := f.Name()
	_ = f.Close()

	w := &Writer{dest: dest, tmp: tmp, k: k, codec: codec}
	if err := w.open(ctx); err != nil {
		_ = w.Abort()
		return nil, err
	}
	return w, nil
}

func (w *Writer) open(ctx context.Context) error {
	db, err := sql.Open(driverName, w.tmp+"?_pragma=journal_mode(off)&_pragma=synchronous(off)")
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	w.db = db
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if w.tx, err = db.BeginTx(ctx, nil); err != nil {
		return err
	}
	w.stmt, err = w.tx.PrepareContext(ctx,
		`INSERT INTO reference (id, lineage, seq_len, n_positions, offsets, positions, checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return err
}

// Put appends the next reference; ids are assigned in call order from 0.
func (w *Writer) Put(ctx context.Context, ix *index.ReferenceIndex) (int, error) {
	if ix.K != w.k {
		return 0, fmt.Errorf("reference k=%d, index k=%d", ix.K, w.k)
	}
	rawOff := packUint32s(ix.Offsets)
	rawPos := packUint32s(ix.Positions)
	sum := checksum([]byte(ix.Lineage), rawOff, rawPos)
	off, err := w.codec.encode(rawOff)
	if err != nil {
		return 0, err
	}
	pos, err := w.codec.encode(rawPos)
	if err != nil {
		return 0, err
	}
	id := w.n
	if _, err := w.stmt.ExecContext(ctx, id, ix.Lineage, ix.SeqLen, len(ix.Positions), off, pos, sum); err != nil {
		return 0, fmt.Errorf("insert reference %d: %w", id, err)
	}
	w.n++
	return id, nil
}

// Len returns the number of references written so far.
func (w *Writer) Len() int { return w.n }

// PutOccurrence stores the global k-mer occurrence table.
func (w *Writer) PutOccurrence(ctx context.Context, occ *index.Occurrence) error {
	if occ.K != w.k {
		return fmt.Errorf("occurrence k=%d, index k=%d", occ.K, w.k)
	}
	raw := packUint32s(occ.Counts)
	blob, err := w.codec.encode(raw)
	if err != nil {
		return err
	}
	_, err = w.tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO occurrence (id, counts, checksum) VALUES (0, ?, ?)`,
		blob, checksum(raw))
	return err
}

// Commit finalizes the file and atomically replaces dest. It returns the
// size of the written artifact.
func (w *Writer) Commit(ctx context.Context) (int64, error) {
	meta := map[string]string{
		"version":    strconv.Itoa(FormatVersion),
		"k":          strconv.Itoa(w.k),
		"references": strconv.Itoa(w.n),
		"codec":      string(w.codec),
		"built_at":   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := w.tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			_ = w.Abort()
			return 0, err
		}
	}
	_ = w.stmt.Close()
	w.stmt = nil
	if err := w.tx.Commit(); err != nil {
		_ = w.Abort()
		return 0, fmt.Errorf("commit index: %w", err)
	}
	w.tx = nil
	if err := w.db.Close(); err != nil {
		w.db = nil
		_ = w.Abort()
		return 0, err
	}
	w.db = nil

	f, err := os.OpenFile(w.tmp, os.O_RDWR, 0)
	if err != nil {
		_ = w.Abort()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = w.Abort()
		return 0, err
	}
	st, _ := f.Stat()
	_ = f.Close()
	if err := os.Rename(w.tmp, w.dest); err != nil {
		_ = w.Abort()
		return 0, fmt.Errorf("replace index: %w", err)
	}
	if st == nil {
		return 0, nil
	}
	return st.Size(), nil
}

// Abort discards the temporary file. Safe to call more than once.
func (w *Writer) Abort() error {
	if w.stmt != nil {
		_ = w.stmt.Close()
		w.stmt = nil
	}
	if w.tx != nil {
		_ = w.tx.Rollback()
		w.tx = nil
	}
	if w.db != nil {
		_ = w.db.Close()
		w.db = nil
	}
	if err := os.Remove(w.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
