package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kmertax/internal/pipeline"
	"kmertax/internal/store"
)

func (e *env) indexPath(ref string) string {
	if e.cfg.Index.Path != "" {
		return e.cfg.Index.Path
	}
	return pipeline.DefaultIndexPath(ref)
}

// ensureIndex runs the build-or-skip step for ref.
func (e *env) ensureIndex(ctx context.Context, ref string) (pipeline.BuildReport, error) {
	codec, err := store.ParseCodec(e.cfg.Index.Compression)
	if err != nil {
		return pipeline.BuildReport{}, usageError{err}
	}
	rep, err := pipeline.BuildIndex(ctx, ref, e.indexPath(ref), pipeline.BuildConfig{
		K:      e.cfg.Index.K,
		Codec:  codec,
		Redo:   e.cfg.Index.Redo,
		Logger: e.log,
	})
	return rep, failed(err)
}

// openIndex opens the index and checks it matches the configured k.
func (e *env) openIndex(ctx context.Context, path string, conns int) (*store.Reader, error) {
	rd, err := store.Open(ctx, path, conns)
	if err != nil {
		return nil, failed(fmt.Errorf("index: %w", err))
	}
	if k := rd.Meta().K; k != e.cfg.Index.K {
		_ = rd.Close()
		return nil, failed(fmt.Errorf("index: %s was built with k=%d, want k=%d (use --redo to rebuild)", path, k, e.cfg.Index.K))
	}
	return rd, nil
}

func newIndexCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index --ref refs.fasta",
		Short: "Build the k-mer index for a reference FASTA (skipped if it exists)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, _ := cmd.Flags().GetString(flagRef)
			rep, err := e.ensureIndex(cmd.Context(), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rep.Skipped {
				_, err = fmt.Fprintf(out, "%s\texists (use --redo to rebuild)\n", rep.Path)
			} else {
				_, err = fmt.Fprintf(out, "%s\t%d references\t%s\n", rep.Path, rep.References, humanize.Bytes(uint64(rep.Size)))
			}
			return failed(err)
		},
	}
	registerIndexFlags(cmd)
	return cmd
}
