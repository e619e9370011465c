package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kmertax/internal/cliutil"
	"kmertax/internal/fasta"
	"kmertax/internal/query"
	"kmertax/internal/store"
)

// readQueries loads and parses every query file in order.
func (e *env) readQueries(ctx context.Context, args []string) ([]query.Record, error) {
	paths, err := cliutil.ExpandPositionals(args)
	if err != nil {
		return nil, usageError{err}
	}
	var recs []fasta.Record
	for _, p := range paths {
		rs, err := fasta.ReadAll(ctx, p)
		if err != nil {
			return nil, failed(fmt.Errorf("query: %w", err))
		}
		recs = append(recs, rs...)
	}
	qs, err := query.Parse(recs, e.cfg.Index.K)
	if err != nil {
		return nil, failed(fmt.Errorf("query: %w", err))
	}
	return qs, nil
}

// orient complements queries leaning to the reference complement strand.
func (e *env) orient(ctx context.Context, rd *store.Reader, qs []query.Record) error {
	occ, err := rd.Occurrence(ctx)
	if err != nil {
		return failed(fmt.Errorf("orient: %w", err))
	}
	n := query.Orient(qs, occ)
	e.log.Info("queries oriented", zap.String("index", rd.Path()), zap.Int("flipped", n), zap.Int("queries", len(qs)))
	return nil
}

func writeFASTAFile(path string, qs []query.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeFASTA(f, qs)
}

func writeFASTA(w io.Writer, qs []query.Record) error {
	return fasta.Write(w, query.Records(qs))
}

func newOrientCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orient --ref refs.fasta [flags] queries.fasta...",
		Short: "Write queries re-oriented against the reference corpus as FASTA",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ref, _ := cmd.Flags().GetString(flagRef)
			out, _ := cmd.Flags().GetString("out")

			rep, err := e.ensureIndex(ctx, ref)
			if err != nil {
				return err
			}
			rd, err := e.openIndex(ctx, rep.Path, 1)
			if err != nil {
				return err
			}
			defer rd.Close()

			qs, err := e.readQueries(ctx, args)
			if err != nil {
				return err
			}
			if err := e.orient(ctx, rd, qs); err != nil {
				return err
			}
			if out == "" {
				return failed(writeFASTA(cmd.OutOrStdout(), qs))
			}
			return failed(writeFASTAFile(out, qs))
		},
	}
	registerIndexFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "output FASTA (default stdout)")
	return cmd
}
