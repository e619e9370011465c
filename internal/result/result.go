// Package result folds per-reference scores into a ranked, filtered list of
// labels for one query.
package result

import (
	"math"
	"sort"
)

// ClassificationThreshold is the score a top label must exceed to be taken
// as the query's classification by downstream evaluation.
const ClassificationThreshold = 0.5

const (
	// DefaultPrecision is the number of decimals scores are rounded to.
	DefaultPrecision = 2
	// DefaultMinScore is the smallest rounded score kept in a ranking.
	DefaultMinScore = 0.005
)

type LabelScore struct {
	Label string
	Score float64
}

// Classification is the final ranking for one query.
type Classification struct {
	Query     string
	KmerCount int
	Flipped   bool
	Ranking   []LabelScore
}

// Top returns the best entry, or the zero value for an empty ranking.
func (c Classification) Top() LabelScore {
	if len(c.Ranking) == 0 {
		return LabelScore{}
	}
	return c.Ranking[0]
}

// Classified reports whether the top score exceeds ClassificationThreshold.
func (c Classification) Classified() bool {
	return len(c.Ranking) > 0 && c.Ranking[0].Score > ClassificationThreshold
}

// Options control rounding and filtering. Zero values select the defaults.
type Options struct {
	Precision int
	MinScore  float64
}

func (o Options) withDefaults() Options {
	if o.Precision <= 0 {
		o.Precision = DefaultPrecision
	}
	if o.MinScore <= 0 {
		o.MinScore = DefaultMinScore
	}
	return o
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// Aggregate sums scores per label, sorts them descending (ties by label),
// rounds, and drops entries below the minimum. If every entry would be
// dropped, the single top entry is kept.
func Aggregate(labels []string, scores []float64, opt Options) []LabelScore {
	opt = opt.withDefaults()
	if len(labels) == 0 {
		return nil
	}
	sums := make(map[string]float64, len(labels))
	for i, l := range labels {
		sums[l] += scores[i]
	}
	all := make([]LabelScore, 0, len(sums))
	for l, s := range sums {
		all = append(all, LabelScore{Label: l, Score: s})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].Label < all[j].Label
	})

	out := make([]LabelScore, 0, len(all))
	for _, ls := range all {
		ls.Score = round(ls.Score, opt.Precision)
		if ls.Score >= opt.MinScore {
			out = append(out, ls)
		}
	}
	if len(out) == 0 {
		top := all[0]
		top.Score = round(top.Score, opt.Precision)
		out = append(out, top)
	}
	return out
}
