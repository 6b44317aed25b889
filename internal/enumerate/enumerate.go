// Package enumerate implements the domain-size enumerator of spec
// §4.6: the CONTOUR no-good-driven search (Mode A), the SBMEAM
// constraint-generator heap (Mode B), and an optional SMT-guided
// variant (Mode B′). All three are hidden behind the Strategy
// capability interface spec §9 calls out, so the driver stays
// agnostic to which one is in play.
package enumerate

import (
	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

// SizeVector maps every distinct sort to a candidate domain size.
type SizeVector map[sig.DistinctSort]int

// Clone returns a copy of v safe to mutate independently.
func (v SizeVector) Clone() SizeVector {
	out := make(SizeVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Strategy is the enumerator capability interface of spec §9: init,
// learnNogood, increaseSizes, isComplete.
type Strategy interface {
	// Init seeds the strategy with the sorted signature and the
	// initial size vector (spec §6 startSize).
	Init(ss *sig.SortedSignature, start SizeVector)

	// LearnNogood records the failure report from the last UNSAT
	// result so the next IncreaseSizes call can avoid repeating it.
	LearnNogood(report encode.FailureReport)

	// IncreaseSizes proposes the next candidate size vector. It
	// returns (nil, false) when no candidate remains.
	IncreaseSizes() (SizeVector, bool)

	// IsComplete reports whether an exhausted strategy proves no
	// finite model exists (true) or merely gave up (false), per spec
	// §4.6's closing sentence on each mode.
	IsComplete() bool
}
