// Package satsolver adapts github.com/go-air/gini to the narrow
// interface the core consumes from a SAT solver (spec §6): variable
// count reservation, bulk clause addition, solving under assumptions,
// reading back failed assumptions and the model, and (for search
// diversity) randomizing the next solve.
package satsolver

import (
	"math/rand"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-fmb/fmb/internal/encode"
)

// Result is the three-way outcome of SolveUnderAssumptions.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

// Solver wraps a *gini.Gini and the SatLit-level bookkeeping the
// encoder's offset tables assume.
type Solver struct {
	g *gini.Gini
	// shuffleSeed, when non-nil, causes the next AddClausesIter to
	// permute clause submission order — our stand-in for gini having
	// no direct "randomize polarity" hook (spec §5's optional
	// shuffle step is implemented here instead of at solve time).
	shuffleSeed *int64
}

// New creates a Solver with a fresh underlying gini instance.
func New() *Solver {
	return &Solver{g: gini.New()}
}

// EnsureVarCount guarantees that variables 1..n exist in the
// underlying solver even if none of them appear in a clause yet, by
// adding a tautological clause (v, ~v) that registers but never
// constrains the variable.
func (s *Solver) EnsureVarCount(n encode.SatVar) {
	if int(s.g.MaxVar()) >= int(n) {
		return
	}
	lit := litOf(encode.Pos(n))
	s.g.Add(lit)
	s.g.Add(lit.Not())
	s.g.Add(z.LitNull)
}

// AddClausesIter consumes clauses from next until it returns
// (nil, false), adding each to the solver. If a shuffle seed was set
// by RandomizeForNextAssignment, the clauses are buffered and
// submitted in a permuted order instead of streamed directly.
func (s *Solver) AddClausesIter(next func() ([]encode.SatLit, bool)) {
	if s.shuffleSeed == nil {
		for {
			clause, ok := next()
			if !ok {
				return
			}
			s.addClause(clause)
		}
	}

	var buffered [][]encode.SatLit
	for {
		clause, ok := next()
		if !ok {
			break
		}
		buffered = append(buffered, clause)
	}
	r := rand.New(rand.NewSource(*s.shuffleSeed))
	r.Shuffle(len(buffered), func(i, j int) { buffered[i], buffered[j] = buffered[j], buffered[i] })
	s.shuffleSeed = nil
	for _, clause := range buffered {
		s.addClause(clause)
	}
}

func (s *Solver) addClause(clause []encode.SatLit) {
	for _, lit := range clause {
		s.g.Add(litOf(lit))
	}
	s.g.Add(z.LitNull)
}

// SolveUnderAssumptions solves the accumulated clause set under the
// given assumptions.
func (s *Solver) SolveUnderAssumptions(assumptions []encode.SatLit) Result {
	lits := make([]z.Lit, len(assumptions))
	for i, a := range assumptions {
		lits[i] = litOf(a)
	}
	s.g.Assume(lits...)
	switch s.g.Solve() {
	case 1:
		return Sat
	case -1:
		return Unsat
	default:
		return Unknown
	}
}

// FailedAssumptions returns the failed assumptions gini reports for
// the last UNSAT result; the set is not minimised.
func (s *Solver) FailedAssumptions() []encode.SatLit {
	why := s.g.Why(nil)
	out := make([]encode.SatLit, len(why))
	for i, w := range why {
		out[i] = litFrom(w)
	}
	return out
}

// TrueInAssignment reports whether lit is true in the most recent
// satisfying assignment.
func (s *Solver) TrueInAssignment(lit encode.SatLit) bool {
	return s.g.Value(litOf(lit))
}

// RandomizeForNextAssignment arranges for the next AddClausesIter call
// to submit clauses in an order permuted by seed, for search diversity
// (spec §5, spec §6 randomizeForNextAssignment).
func (s *Solver) RandomizeForNextAssignment(seed int64) {
	s.shuffleSeed = &seed
}

func litOf(l encode.SatLit) z.Lit {
	if l >= 0 {
		return z.Var(int(l)).Pos()
	}
	return z.Var(int(-l)).Pos().Not()
}

func litFrom(l z.Lit) encode.SatLit {
	v := int(l.Var())
	if l.IsPos() {
		return encode.SatLit(v)
	}
	return encode.SatLit(-v)
}
