// internal/pipeline/build.go
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"kmertax/internal/fasta"
	"kmertax/internal/index"
	"kmertax/internal/store"
)

// IndexExt is the file extension of index artifacts.
const IndexExt = ".sqlite"

// BuildConfig controls BuildIndex.
type BuildConfig struct {
	K      int
	Codec  store.Codec
	Redo   bool // rebuild even if the artifact exists
	Logger *zap.Logger
}

// BuildReport describes what BuildIndex did.
type BuildReport struct {
	Path       string
	Skipped    bool
	References int
	Size       int64
	Elapsed    time.Duration
}

// DefaultIndexPath places the index beside the reference file as
// <stem>_data.sqlite.
func DefaultIndexPath(refPath string) string {
	dir, base := filepath.Split(refPath)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"_data"+IndexExt)
}

// BuildIndex indexes every record of refPath into dest. When dest already
// exists and Redo is false nothing is read or written and the report says
// Skipped.
func BuildIndex(ctx context.Context, refPath, dest string, cfg BuildConfig) (BuildReport, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rep := BuildReport{Path: dest}
	start := time.Now()

	if !cfg.Redo {
		ok, err := store.Exists(dest)
		if err != nil {
			return rep, fmt.Errorf("index: %w", err)
		}
		if ok {
			rep.Skipped = true
			log.Info("index exists, skipping build", zap.String("path", dest))
			return rep, nil
		}
	}
	if cfg.Codec == "" {
		cfg.Codec = store.CodecNone
	}

	w, err := store.Create(ctx, dest, cfg.K, cfg.Codec)
	if err != nil {
		return rep, fmt.Errorf("index: %w", err)
	}
	occ := index.NewOccurrence(cfg.K)
	err = fasta.ScanPath(ctx, refPath, func(r fasta.Record) error {
		ix, err := index.Build(fasta.Lineage(r.ID), r.Seq, cfg.K)
		if err != nil {
			return err
		}
		if err := occ.Add(ix); err != nil {
			return err
		}
		_, err = w.Put(ctx, ix)
		return err
	})
	if err == nil {
		err = w.PutOccurrence(ctx, occ)
	}
	if err != nil {
		_ = w.Abort()
		return rep, fmt.Errorf("index: %w", err)
	}
	size, err := w.Commit(ctx)
	if err != nil {
		return rep, fmt.Errorf("index: %w", err)
	}

	rep.References = w.Len()
	rep.Size = size
	rep.Elapsed = time.Since(start)
	log.Info("index built",
		zap.String("path", dest),
		zap.Int("references", rep.References),
		zap.String("size", humanize.Bytes(uint64(size))),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}
