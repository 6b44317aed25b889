package enumerate

import (
	"sort"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

// ContourStrategy implements spec §4.6 Mode A: grow the minimum-weight
// sort named by the last UNSAT core, alternating between a FIFO-ish
// weight (current size) and an estimated post-growth instance count,
// then close distinct-sort constraints to a fixpoint.
type ContourStrategy struct {
	ss             *sig.SortedSignature
	cur            SizeVector
	sizeWeightRatio int
	step           int

	candidates map[sig.DistinctSort]bool
	complete   bool
}

// NewContourStrategy creates a ContourStrategy. sizeWeightRatio is the
// alternator ratio between FIFO weighting and estimated-weight
// picking (spec §6 sizeWeightRatio); a ratio of 0 always uses the
// estimated weight.
func NewContourStrategy(sizeWeightRatio int) *ContourStrategy {
	return &ContourStrategy{sizeWeightRatio: sizeWeightRatio, complete: true}
}

func (c *ContourStrategy) Init(ss *sig.SortedSignature, start SizeVector) {
	c.ss = ss
	c.cur = start.Clone()
	c.candidates = map[sig.DistinctSort]bool{}
}

func (c *ContourStrategy) LearnNogood(report encode.FailureReport) {
	for d := range report.Sorts {
		c.candidates[d] = true
	}
}

func (c *ContourStrategy) IncreaseSizes() (SizeVector, bool) {
	growable := c.growableCandidates()
	if len(growable) == 0 {
		// No sort named by the core can grow further: either nothing
		// was learned yet (shouldn't drive enumeration) or every
		// implicated sort is pinned at its max. Either way there is
		// no next candidate.
		c.complete = c.allSortsAtMax()
		return nil, false
	}

	useEstimate := c.sizeWeightRatio == 0 || c.step%(c.sizeWeightRatio+1) == c.sizeWeightRatio
	best := growable[0]
	bestWeight := c.weight(best, useEstimate)
	for _, d := range growable[1:] {
		w := c.weight(d, useEstimate)
		if w < bestWeight {
			best, bestWeight = d, w
		}
	}
	c.step++

	c.cur[best]++
	c.ss.CloseConstraints(c.cur)
	c.candidates = map[sig.DistinctSort]bool{}
	return c.cur.Clone(), true
}

func (c *ContourStrategy) IsComplete() bool { return c.complete }

func (c *ContourStrategy) growableCandidates() []sig.DistinctSort {
	var out []sig.DistinctSort
	for d := range c.candidates {
		info := c.ss.Distinct[d]
		if info.Max == sig.NoBound || c.cur[d] < info.Max {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *ContourStrategy) allSortsAtMax() bool {
	for _, d := range c.ss.DistinctSorts {
		info := c.ss.Distinct[d]
		if info.Max == sig.NoBound || c.cur[d] < info.Max {
			return false
		}
	}
	return true
}

// weight returns either the sort's current size (FIFO-ish ordering)
// or an estimate of how many new groundings a +1 increment of d would
// add across every function and predicate that mentions it.
func (c *ContourStrategy) weight(d sig.DistinctSort, estimate bool) int {
	if !estimate {
		return c.cur[d]
	}

	total := 0
	for f, sorts := range c.ss.FunctionSignatures {
		if !c.mentions(sorts, d) {
			continue
		}
		total += c.marginalCost(sorts, d, c.ss.Sig.Func(f).Arity)
	}
	for p, sorts := range c.ss.PredicateSignatures {
		if !c.mentions(sorts, d) {
			continue
		}
		total += c.marginalCost(sorts, d, c.ss.Sig.Pred(p).Arity)
	}
	return total
}

func (c *ContourStrategy) mentions(sorts []sig.SourceSort, d sig.DistinctSort) bool {
	for _, s := range sorts {
		if c.ss.Parent[s] == d {
			return true
		}
	}
	return false
}

// marginalCost estimates the number of new groundings adding one
// element to d contributes to a symbol whose signature is sorts
// (length slots, the last of which is the result sort for functions
// and has no separate arity slot for predicates — slots already
// reflects that via len(sorts)).
func (c *ContourStrategy) marginalCost(sorts []sig.SourceSort, d sig.DistinctSort, arity int) int {
	_ = arity
	cost := 1
	grew := false
	for _, s := range sorts {
		size := c.cur[c.ss.Parent[s]]
		if size < 1 {
			size = 1
		}
		if c.ss.Parent[s] == d {
			grew = true
			continue // the grown slot contributes its delta, handled below
		}
		cost *= size
	}
	if !grew {
		return 0
	}
	return cost
}
