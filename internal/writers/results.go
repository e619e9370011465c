package writers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"kmertax/internal/result"
	"kmertax/pkg/api"
)

// TSVHeader is the header row of the tsv format.
const TSVHeader = "query\ttop_label\ttop_score\tn_kmers\tranking"

// ToAPI converts a classification to its v1 wire form.
func ToAPI(c result.Classification) api.ClassificationV1 {
	top := c.Top()
	out := api.ClassificationV1{
		Query:      c.Query,
		KmerCount:  c.KmerCount,
		TopLabel:   top.Label,
		TopScore:   top.Score,
		Classified: c.Classified(),
		Ranking:    make([]api.LabelScoreV1, len(c.Ranking)),
		Flipped:    c.Flipped,
	}
	for i, ls := range c.Ranking {
		out.Ranking[i] = api.LabelScoreV1{Label: ls.Label, Score: ls.Score}
	}
	return out
}

// FormatScore prints a rounded score the way results.out always has:
// shortest form, with at least one decimal.
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// writeText emits the results.out layout: the query name, then one
// "label: score" line per ranked label.
func writeText(w io.Writer, in <-chan result.Classification) error {
	bw := bufio.NewWriter(w)
	for c := range in {
		if _, err := fmt.Fprintln(bw, c.Query); err != nil {
			return err
		}
		for _, ls := range c.Ranking {
			if _, err := fmt.Fprintf(bw, "%s: %s\n", ls.Label, FormatScore(ls.Score)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeTSV(w io.Writer, in <-chan result.Classification) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, TSVHeader); err != nil {
		return err
	}
	for c := range in {
		top := c.Top()
		parts := make([]string, len(c.Ranking))
		for i, ls := range c.Ranking {
			parts[i] = ls.Label + "=" + FormatScore(ls.Score)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%d\t%s\n",
			c.Query, top.Label, FormatScore(top.Score), c.KmerCount, strings.Join(parts, ";"),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeJSON(w io.Writer, in <-chan result.Classification) error {
	list := []api.ClassificationV1{}
	for c := range in {
		list = append(list, ToAPI(c))
	}
	return encodeIndented(w, list)
}

// encodeIndented writes v as one two-space indented JSON document.
func encodeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	RegisterResult(FormatText, writeText)
	RegisterResult(FormatTSV, writeTSV)
	RegisterResult(FormatJSON, writeJSON)
}
