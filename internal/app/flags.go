package app

import (
	"github.com/spf13/cobra"

	"kmertax/internal/config"
)

// Flag names shared between registration and applyFlags.
const (
	flagRef         = "ref"
	flagIndex       = "index"
	flagK           = "kmer"
	flagRedo        = "redo"
	flagCompression = "compression"
	flagOrient      = "orient"
	flagMode        = "mode"
	flagThreads     = "threads"
	flagProgress    = "progress"
	flagFormat      = "format"
	flagOutDir      = "out-dir"
	flagMatrix      = "matrix"
	flagMinScore    = "min-score"
	flagPrecision   = "precision"
	flagTRatio      = "t-ratio"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
)

// Defaults shown in help come from config.Default; the values only take
// effect when a flag is set explicitly.
func registerIndexFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String(flagRef, "", "reference FASTA (headers: name;tax=lineage)")
	f.String(flagIndex, "", "index file (default <ref stem>_data.sqlite beside --ref)")
	f.IntP(flagK, "k", d.Index.K, "k-mer length (1-15)")
	f.Bool(flagRedo, false, "rebuild the index even if it exists")
	f.String(flagCompression, d.Index.Compression, "index blob compression: none|xz")
	_ = cmd.MarkFlagRequired(flagRef)
}

func registerClassifyFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.Bool(flagOrient, false, "complement queries that match the reference complement strand better")
	f.String(flagMode, d.Engine.Mode, "intersection statistic: window|global")
	f.IntP(flagThreads, "t", d.Run.Threads, "worker goroutines (0 = serial)")
	f.Bool(flagProgress, false, "show a progress bar on stderr")
	f.StringP(flagFormat, "f", d.Output.Format, "result format: text|tsv|json|jsonl")
	f.StringP(flagOutDir, "o", "", "write results, metadata, and extras into this directory instead of stdout")
	f.Bool(flagMatrix, false, "also write the intersection matrix (needs --out-dir)")
	f.Float64(flagMinScore, d.Scoring.MinScore, "drop ranked labels scoring below this after rounding")
	f.Int(flagPrecision, d.Scoring.Precision, "decimals scores are rounded to")
	f.Float64(flagTRatio, d.Scoring.TRatio, "t as a fraction of the query k-mer count")
}

func applyFlags(cmd *cobra.Command, c *config.Config) error {
	fs := cmd.Flags()
	var err error
	set := func(name string, fn func() error) {
		if err == nil && fs.Changed(name) {
			err = fn()
		}
	}
	set(flagIndex, func() (e error) { c.Index.Path, e = fs.GetString(flagIndex); return })
	set(flagK, func() (e error) { c.Index.K, e = fs.GetInt(flagK); return })
	set(flagRedo, func() (e error) { c.Index.Redo, e = fs.GetBool(flagRedo); return })
	set(flagCompression, func() (e error) { c.Index.Compression, e = fs.GetString(flagCompression); return })
	set(flagOrient, func() (e error) { c.Query.Orient, e = fs.GetBool(flagOrient); return })
	set(flagMode, func() (e error) { c.Engine.Mode, e = fs.GetString(flagMode); return })
	set(flagThreads, func() (e error) { c.Run.Threads, e = fs.GetInt(flagThreads); return })
	set(flagProgress, func() (e error) { c.Run.Progress, e = fs.GetBool(flagProgress); return })
	set(flagFormat, func() (e error) { c.Output.Format, e = fs.GetString(flagFormat); return })
	set(flagOutDir, func() (e error) { c.Output.Dir, e = fs.GetString(flagOutDir); return })
	set(flagMatrix, func() (e error) { c.Output.Matrix, e = fs.GetBool(flagMatrix); return })
	set(flagMinScore, func() (e error) { c.Scoring.MinScore, e = fs.GetFloat64(flagMinScore); return })
	set(flagPrecision, func() (e error) { c.Scoring.Precision, e = fs.GetInt(flagPrecision); return })
	set(flagTRatio, func() (e error) { c.Scoring.TRatio, e = fs.GetFloat64(flagTRatio); return })
	set(flagLogLevel, func() (e error) { c.Logging.Level, e = fs.GetString(flagLogLevel); return })
	set(flagLogFormat, func() (e error) { c.Logging.Format, e = fs.GetString(flagLogFormat); return })
	return err
}
