package enumerate

import (
	"sort"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

// Tag classifies how a no-good constrains one sort's size (spec glossary).
type Tag int

const (
	TagStar Tag = iota
	TagEq
	TagLeq
	TagGeq
)

type taggedBound struct {
	Tag   Tag
	Value int
}

// NoGood is a per-sort constraint vector proving unsatisfiability of
// any size vector matching it (spec glossary, spec §4.6 Mode B).
type NoGood map[sig.DistinctSort]taggedBound

// Matches reports whether v satisfies every tagged entry of n, i.e.
// whether v is excluded by this no-good.
func (n NoGood) Matches(v SizeVector) bool {
	for d, b := range n {
		switch b.Tag {
		case TagEq:
			if v[d] != b.Value {
				return false
			}
		case TagGeq:
			if v[d] < b.Value {
				return false
			}
		case TagLeq:
			if v[d] > b.Value {
				return false
			}
		}
	}
	return true
}

type generator struct {
	vector SizeVector
	weight int
}

// SbmeamStrategy implements spec §4.6 Mode B: a heap of size-vector
// generators ordered by weight, pruned against a growing set of
// retained no-goods.
type SbmeamStrategy struct {
	ss             *sig.SortedSignature
	queue          []*generator
	nogoods        []NoGood
	keepGenerators bool
	complete       bool
}

// NewSbmeamStrategy creates an SbmeamStrategy. keepGenerators mirrors
// spec §6's keepSbeamGenerators: when true, a popped generator is
// pushed back after producing its successors instead of being
// discarded.
func NewSbmeamStrategy(keepGenerators bool) *SbmeamStrategy {
	return &SbmeamStrategy{keepGenerators: keepGenerators, complete: true}
}

func (s *SbmeamStrategy) Init(ss *sig.SortedSignature, start SizeVector) {
	s.ss = ss
	s.queue = []*generator{{vector: start.Clone(), weight: weightOf(start)}}
}

func (s *SbmeamStrategy) LearnNogood(report encode.FailureReport) {
	ng := buildNoGood(s.ss, report)
	if len(ng) > 0 {
		s.nogoods = append(s.nogoods, ng)
	}
}

func (s *SbmeamStrategy) IncreaseSizes() (SizeVector, bool) {
	if len(s.queue) == 0 {
		s.complete = true
		return nil, false
	}

	popped := s.popBest()
	if s.keepGenerators {
		s.queue = append(s.queue, popped)
	}

	distinct := make([]sig.DistinctSort, len(s.ss.DistinctSorts))
	copy(distinct, s.ss.DistinctSorts)
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	for _, d := range distinct {
		info := s.ss.Distinct[d]
		if info.Max != sig.NoBound && popped.vector[d] >= info.Max {
			continue
		}
		cand := popped.vector.Clone()
		cand[d]++
		s.ss.CloseConstraints(cand)

		if s.rejected(cand) {
			continue
		}
		s.queue = append(s.queue, &generator{vector: cand, weight: weightOf(cand)})
	}

	if len(s.queue) == 0 {
		s.complete = true
		return nil, false
	}
	next := s.queue[s.bestIndex()]
	return next.vector.Clone(), true
}

func (s *SbmeamStrategy) IsComplete() bool { return s.complete }

func (s *SbmeamStrategy) rejected(v SizeVector) bool {
	for _, ng := range s.nogoods {
		if ng.Matches(v) {
			return true
		}
	}
	return false
}

func (s *SbmeamStrategy) bestIndex() int {
	best := 0
	for i, g := range s.queue {
		if g.weight < s.queue[best].weight {
			best = i
		}
	}
	return best
}

func (s *SbmeamStrategy) popBest() *generator {
	i := s.bestIndex()
	g := s.queue[i]
	s.queue = append(s.queue[:i], s.queue[i+1:]...)
	return g
}

func weightOf(v SizeVector) int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}
