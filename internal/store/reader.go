package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kmertax/internal/index"
	"kmertax/internal/kmer"
)

// Reader gives random access to one reference at a time. It is safe for
// concurrent use; every query takes its own pooled connection.
type Reader struct {
	path string
	db   *sql.DB
	meta Meta
}

// Open opens an existing index read-only. conns bounds the number of
// concurrent read handles (<=0 means 1).
func Open(ctx context.Context, path string, conns int) (*Reader, error) {
	ok, err := Exists(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if conns <= 0 {
		conns = 1
	}
	db, err := sql.Open(driverName, path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)

	r := &Reader{path: path, db: db}
	if err := r.loadMeta(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) loadMeta(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, r.path, err)
	}
	defer rows.Close()
	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var m Meta
	if m.Version, err = strconv.Atoi(kv["version"]); err != nil || m.Version != FormatVersion {
		return fmt.Errorf("%w: %s: unsupported format version %q", ErrCorrupt, r.path, kv["version"])
	}
	if m.K, err = strconv.Atoi(kv["k"]); err != nil || kmer.ValidateK(m.K) != nil {
		return fmt.Errorf("%w: %s: bad k %q", ErrCorrupt, r.path, kv["k"])
	}
	if m.References, err = strconv.Atoi(kv["references"]); err != nil || m.References < 0 {
		return fmt.Errorf("%w: %s: bad reference count %q", ErrCorrupt, r.path, kv["references"])
	}
	if m.Codec, err = ParseCodec(kv["codec"]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, r.path, err)
	}
	m.BuiltAt, _ = time.Parse(time.RFC3339, kv["built_at"])
	r.meta = m
	return nil
}

// Meta returns the file metadata.
func (r *Reader) Meta() Meta { return r.meta }

// Path returns the file the reader was opened on.
func (r *Reader) Path() string { return r.path }

// Lineages returns every reference lineage indexed by reference id.
func (r *Reader) Lineages(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, lineage FROM reference ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0, r.meta.References)
	for rows.Next() {
		var (
			id      int
			lineage string
		)
		if err := rows.Scan(&id, &lineage); err != nil {
			return nil, err
		}
		if id != len(out) {
			return nil, fmt.Errorf("%w: reference ids not contiguous at %d", ErrCorrupt, id)
		}
		out = append(out, lineage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != r.meta.References {
		return nil, fmt.Errorf("%w: %d references, meta says %d", ErrCorrupt, len(out), r.meta.References)
	}
	return out, nil
}

// Reference loads and verifies one reference index.
func (r *Reader) Reference(ctx context.Context, id int) (*index.ReferenceIndex, error) {
	var (
		lineage    string
		seqLen     int
		nPositions int
		offBlob    []byte
		posBlob    []byte
		sum        string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT lineage, seq_len, n_positions, offsets, positions, checksum FROM reference WHERE id = ?`, id,
	).Scan(&lineage, &seqLen, &nPositions, &offBlob, &posBlob, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: reference %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read reference %d: %w", id, err)
	}

	rawOff, err := r.meta.Codec.decode(offBlob)
	if err != nil {
		return nil, fmt.Errorf("reference %d offsets: %w", id, err)
	}
	rawPos, err := r.meta.Codec.decode(posBlob)
	if err != nil {
		return nil, fmt.Errorf("reference %d positions: %w", id, err)
	}
	if got := checksum([]byte(lineage), rawOff, rawPos); got != sum {
		return nil, fmt.Errorf("%w: reference %d checksum mismatch", ErrCorrupt, id)
	}
	offsets, err := unpackUint32s(rawOff)
	if err != nil {
		return nil, err
	}
	positions, err := unpackUint32s(rawPos)
	if err != nil {
		return nil, err
	}
	if len(positions) != nPositions {
		return nil, fmt.Errorf("%w: reference %d has %d positions, want %d", ErrCorrupt, id, len(positions), nPositions)
	}
	ix := &index.ReferenceIndex{
		Lineage:   lineage,
		K:         r.meta.K,
		SeqLen:    seqLen,
		Offsets:   offsets,
		Positions: positions,
	}
	if err := ix.Validate(); err != nil {
		return nil, fmt.Errorf("%w: reference %d: %v", ErrCorrupt, id, err)
	}
	return ix, nil
}

// Occurrence loads the global k-mer occurrence table.
func (r *Reader) Occurrence(ctx context.Context) (*index.Occurrence, error) {
	var (
		blob []byte
		sum  string
	)
	err := r.db.QueryRowContext(ctx, `SELECT counts, checksum FROM occurrence WHERE id = 0`).Scan(&blob, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: occurrence table", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read occurrence table: %w", err)
	}
	raw, err := r.meta.Codec.decode(blob)
	if err != nil {
		return nil, err
	}
	if checksum(raw) != sum {
		return nil, fmt.Errorf("%w: occurrence checksum mismatch", ErrCorrupt)
	}
	counts, err := unpackUint32s(raw)
	if err != nil {
		return nil, err
	}
	if len(counts) != kmer.Count(r.meta.K) {
		return nil, fmt.Errorf("%w: occurrence table has %d entries", ErrCorrupt, len(counts))
	}
	return &index.Occurrence{K: r.meta.K, Counts: counts}, nil
}

// Close releases all read handles.
func (r *Reader) Close() error { return r.db.Close() }
