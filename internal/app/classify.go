package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kmertax/internal/engine"
	"kmertax/internal/pipeline"
	"kmertax/internal/query"
	"kmertax/internal/result"
	"kmertax/internal/timing"
	"kmertax/internal/writers"
)

// Files written under --out-dir.
const (
	resultsFile      = "results.out"
	metadataFile     = "metadata.out"
	metadataJSONFile = "metadata.json"
	configFile       = "config.yaml"
	matrixFile       = "matrix.tsv"
	orientedFile     = "oriented_queries.fasta"
)

func resultsName(format string) string {
	if format == writers.FormatText {
		return resultsFile
	}
	return "results." + format
}

func newClassifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify --ref refs.fasta [flags] queries.fasta...",
		Short: "Classify query sequences against the reference index",
		Long: `classify builds the reference index if needed (see 'kmertax index'),
computes for every query and reference the best window k-mer intersection,
and ranks reference lineages by confidence score.

Results go to stdout unless --out-dir is given, in which case the directory
receives results.out (or results.<format>), metadata.out (plus metadata.json
for json and jsonl output), the effective config.yaml, and optionally
matrix.tsv and oriented_queries.fasta.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.classify(cmd, args)
		},
	}
	registerIndexFlags(cmd)
	registerClassifyFlags(cmd)
	return cmd
}

func (e *env) classify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := e.cfg
	if cfg.Output.Matrix && cfg.Output.Dir == "" {
		return usagef("--matrix needs --out-dir")
	}
	mode, err := engine.ParseMode(cfg.Engine.Mode)
	if err != nil {
		return usageError{err}
	}
	ref, _ := cmd.Flags().GetString(flagRef)

	md := timing.Metadata{
		RunID:   uuid.NewString(),
		K:       cfg.Index.K,
		Threads: cfg.Run.Threads,
	}
	log := e.log.With(zap.String("run_id", md.RunID))

	rep, err := e.ensureIndex(ctx, ref)
	if err != nil {
		return err
	}
	md.IndexSkipped = rep.Skipped
	md.ReferenceParse = rep.Elapsed

	rd, err := e.openIndex(ctx, rep.Path, max(cfg.Run.Threads, 1))
	if err != nil {
		return err
	}
	defer rd.Close()
	md.ReferenceCount = rd.Meta().References

	st := timing.Start()
	qs, err := e.readQueries(ctx, args)
	if err != nil {
		return err
	}
	md.QueryParse = st.Stop()
	md.QueryCount = len(qs)

	if cfg.Query.Orient {
		st = timing.Start()
		if err := e.orient(ctx, rd, qs); err != nil {
			return err
		}
		md.OrientQueries = st.Stop()
	}

	var progress io.Writer
	if cfg.Run.Progress {
		progress = e.stderr
	}
	m, ist, err := pipeline.Intersect(ctx, rd, engine.New(engine.Config{Mode: mode}), qs, pipeline.Config{
		Threads:  cfg.Run.Threads,
		Progress: progress,
		Logger:   log,
	})
	if err != nil {
		return failed(err)
	}
	md.Intersections = ist.Elapsed
	md.AvgReference = ist.Avg

	cls, sst, err := pipeline.Classify(ctx, m, qs, pipeline.ScoreConfig{
		Threads: cfg.Run.Threads,
		TRatio:  cfg.Scoring.TRatio,
		Result:  result.Options{Precision: cfg.Scoring.Precision, MinScore: cfg.Scoring.MinScore},
		Logger:  log,
	})
	if err != nil {
		return failed(err)
	}
	md.AvgScoring = sst.Avg

	if cfg.Output.Dir == "" {
		return failed(writeResults(cmd.OutOrStdout(), cfg.Output.Format, cls))
	}
	if err := e.writeOutDir(md, m, cls, qs); err != nil {
		return failed(err)
	}
	log.Info("classification written",
		zap.String("dir", cfg.Output.Dir),
		zap.Int("queries", len(qs)),
		zap.Int("references", md.ReferenceCount),
		zap.Duration("intersections", md.Intersections),
	)
	return nil
}

func writeResults(w io.Writer, format string, cls []result.Classification) error {
	bw := bufio.NewWriter(w)
	if err := writers.WriteAll(bw, format, cls); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := bw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (e *env) writeOutDir(md timing.Metadata, m *pipeline.Matrix, cls []result.Classification, qs []query.Record) error {
	out := e.cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	err := createFile(filepath.Join(out.Dir, resultsName(out.Format)), func(w io.Writer) error {
		return writers.WriteAll(w, out.Format, cls)
	})
	if err != nil {
		return err
	}
	err = createFile(filepath.Join(out.Dir, metadataFile), func(w io.Writer) error {
		return writers.WriteMetadata(w, md)
	})
	if err != nil {
		return err
	}
	if out.Format == writers.FormatJSON || out.Format == writers.FormatJSONL {
		err = createFile(filepath.Join(out.Dir, metadataJSONFile), func(w io.Writer) error {
			return writers.WriteMetadataJSON(w, md)
		})
		if err != nil {
			return err
		}
	}
	if err := e.cfg.Save(filepath.Join(out.Dir, configFile)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if out.Matrix {
		names := make([]string, len(qs))
		for i := range qs {
			names[i] = qs[i].Name
		}
		err = createFile(filepath.Join(out.Dir, matrixFile), func(w io.Writer) error {
			return writers.WriteMatrix(w, names, m.Lineages, m.Matches)
		})
		if err != nil {
			return err
		}
	}
	if e.cfg.Query.Orient {
		return createFile(filepath.Join(out.Dir, orientedFile), func(w io.Writer) error {
			return writeFASTA(w, qs)
		})
	}
	return nil
}

// createFile writes one output file through fn.
func createFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("write: %w", cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return bw.Flush()
}
