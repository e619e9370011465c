// Package score turns per-reference match counts for one query into
// normalized confidence scores.
//
// The model treats each reference's match count m as drawn from a
// negative-hypergeometric-like distribution over [0, t] and scores each
// reference by the probability that it attains the maximum draw.
package score

import (
	"fmt"
	"math"
	"sort"
)

// minMass stands in for the zero-probability first entry of a perfect match
// row, so that its prefix sums stay positive. It is also the floor for a
// reference score that underflows.
const minMass = 1e-300

// InvariantError reports inputs or intermediate values the model cannot
// accept. It is never clamped away.
type InvariantError struct {
	Reason string
	M, N, T int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("score invariant violated: %s (m=%d n=%d t=%d)", e.Reason, e.M, e.N, e.T)
}

// Threshold returns the conventional t for a query set of size n.
func Threshold(n int, ratio float64) int {
	if ratio <= 0 {
		ratio = 0.5
	}
	t := int(float64(n) * ratio)
	if t > n {
		t = n
	}
	return t
}

// logChoose returns log C(a, b) for a ≥ b ≥ 0.
func logChoose(a, b int) float64 {
	la, _ := math.Lgamma(float64(a) + 1)
	lb, _ := math.Lgamma(float64(b) + 1)
	lab, _ := math.Lgamma(float64(a-b) + 1)
	return la - lb - lab
}

// PMF returns the probability mass over [0, t] for a reference that matched
// m of the query's n k-mers.
func PMF(m, n, t int) ([]float64, error) {
	if t < 0 || t > n {
		return nil, &InvariantError{Reason: "t outside [0, n]", M: m, N: n, T: t}
	}
	if m < 0 || m > n {
		return nil, &InvariantError{Reason: "match count outside [0, n]", M: m, N: n, T: t}
	}
	pmf := make([]float64, t+1)
	switch {
	case m == 0:
		pmf[0] = 1
		return pmf, nil
	case m == n:
		pmf[0] = minMass
		pmf[t] = 1
		return pmf, nil
	}

	logs := make([]float64, t+1)
	hi := math.Inf(-1)
	for i := 0; i <= t; i++ {
		// The C(n+t-1, t) denominator is shared by every i and drops out
		// under normalization.
		logs[i] = logChoose(m+i-1, i) + logChoose(n-m+t-i-1, t-i)
		if logs[i] > hi {
			hi = logs[i]
		}
	}
	var sum float64
	for i, l := range logs {
		pmf[i] = math.Exp(l - hi)
		sum += pmf[i]
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, &InvariantError{Reason: "pmf row does not sum to a positive finite value", M: m, N: n, T: t}
	}
	for i := range pmf {
		pmf[i] /= sum
	}
	return pmf, nil
}

func prefixSums(pmf []float64) []float64 {
	out := make([]float64, len(pmf))
	var acc float64
	for i, v := range pmf {
		acc += v
		out[i] = acc
	}
	return out
}

// Confidence returns one score per entry of counts, summing to 1.
// n is the query's distinct k-mer count and t the draw bound.
func Confidence(counts []uint32, n, t int) ([]float64, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	if t < 0 || t > n {
		return nil, &InvariantError{Reason: "t outside [0, n]", N: n, T: t}
	}

	weight := make(map[int]int)
	for _, c := range counts {
		m := int(c)
		if m > n {
			return nil, &InvariantError{Reason: "match count exceeds query set size", M: m, N: n, T: t}
		}
		weight[m]++
	}
	distinct := make([]int, 0, len(weight))
	for m := range weight {
		distinct = append(distinct, m)
	}
	sort.Ints(distinct)

	pmfs := make(map[int][]float64, len(distinct))
	prefix := make(map[int][]float64, len(distinct))
	logC := make([]float64, t+1)
	for _, m := range distinct {
		pmf, err := PMF(m, n, t)
		if err != nil {
			return nil, err
		}
		pmfs[m] = pmf
		ps := prefixSums(pmf)
		prefix[m] = ps
		w := float64(weight[m])
		for i, v := range ps {
			logC[i] += w * math.Log(v)
		}
	}
	c := make([]float64, t+1)
	for i, l := range logC {
		c[i] = math.Exp(l)
	}

	p := make(map[int]float64, len(distinct))
	for _, m := range distinct {
		pmf, ps := pmfs[m], prefix[m]
		var acc float64
		for i := range pmf {
			if ps[i] == 0 {
				continue
			}
			acc += pmf[i] * c[i] / ps[i]
		}
		p[m] = acc
	}

	scores := make([]float64, len(counts))
	var total float64
	for r, cnt := range counts {
		scores[r] = p[int(cnt)]
		total += scores[r]
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, &InvariantError{Reason: "scores do not sum to a positive finite value", N: n, T: t}
	}
	// Underflowed entries are floored so every reference keeps a positive score.
	total = 0
	for r := range scores {
		scores[r] = math.Max(scores[r], minMass)
		total += scores[r]
	}
	for r := range scores {
		scores[r] /= total
	}
	return scores, nil
}
