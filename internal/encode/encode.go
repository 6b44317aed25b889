package encode

import (
	"github.com/go-fmb/fmb/internal/problem"
	"github.com/go-fmb/fmb/internal/sig"
)

// SatLit is a signed SAT literal: a positive value names a variable
// asserted true, a negative value the same variable asserted false.
type SatLit int

// Pos returns the positive literal for v.
func Pos(v SatVar) SatLit { return SatLit(v) }

// Neg returns the negative literal for v.
func Neg(v SatVar) SatLit { return SatLit(-v) }

// Of returns the literal for v with the given polarity.
func Of(v SatVar, positive bool) SatLit {
	if positive {
		return Pos(v)
	}
	return Neg(v)
}

// MarkerAppender lets the marker-assumption manager (markers.go)
// contribute extra literals to every instance clause emitted for a
// grounding that mentions a given set of source sorts, without the
// encoder needing to know which Mode is active (spec §4.5).
type MarkerAppender interface {
	// AppendInstanceMarkers appends, to clause, the marker literals
	// that make this instance active only for sufficiently large
	// sizes of every non-monotonic sort in touched.
	AppendInstanceMarkers(clause []SatLit, touched map[sig.SourceSort]int) []SatLit
}

// Sink receives one emitted SAT clause at a time. Clauses are ephemeral
// (spec §3 "Ownership"): a Sink must copy a clause if it needs to keep
// it past the call.
type Sink func(clause []SatLit)

// EncodeClauses walks every clause of p and emits one SAT clause per
// non-skipped grounding, per spec §4.2. markers may be nil, in which
// case no marker literals are appended (useful for tests that only
// want the ground CNF).
func EncodeClauses(p *problem.Problem, o *Offsets, markers MarkerAppender, sink Sink) {
	for i := range p.Clauses {
		encodeClause(&p.Clauses[i], o, markers, sink)
	}
}

func encodeClause(c *problem.Clause, o *Offsets, markers MarkerAppender, sink Sink) {
	if c.TriviallySatisfiable() {
		return
	}

	bounds := make([]int, c.MaxVar)
	for v := 0; v < c.MaxVar; v++ {
		if s, ok := c.VarSort[problem.Var(v)]; ok {
			bounds[v] = o.Sig.BoundOf(s)
		} else {
			// A variable with no recorded sort is unconstrained by
			// this clause (e.g. it appears only on the free side of
			// a var-eq special sort); fall back to 1 so it does not
			// multiply out groundings that do not exist.
			bounds[v] = 1
		}
	}

	od := NewOdometer(bounds)
	for !od.Done() {
		emitGrounding(c, od.Values(), o, markers, sink)
		od.Next()
	}
}

func emitGrounding(c *problem.Clause, g []int, o *Offsets, markers MarkerAppender, sink Sink) {
	var clause []SatLit
	touched := map[sig.SourceSort]int{}

	for _, lit := range c.Literals {
		switch lit.Kind {
		case problem.KindVarEq:
			gx, gy := g[lit.X], g[lit.Y]
			if lit.Positive {
				if gx == gy {
					return // literal true: clause satisfied, skip grounding
				}
				// literal false: omit from clause
			} else {
				if gx != gy {
					return // literal true: clause satisfied, skip grounding
				}
				// literal false: omit from clause
			}

		case problem.KindFuncEq:
			args := make([]int, len(lit.Args))
			for i, a := range lit.Args {
				args[i] = g[a]
			}
			r := g[lit.Result]
			v := o.VarIdFunc(lit.Func, args, r)
			clause = append(clause, Of(v, lit.Positive))
			for i, sort := range o.Sig.FunctionSignatures[lit.Func] {
				var val int
				if i < len(args) {
					val = args[i]
				} else {
					val = r
				}
				trackTouched(touched, sort, val)
			}

		case problem.KindPred:
			args := make([]int, len(lit.Args))
			for i, a := range lit.Args {
				args[i] = g[a]
			}
			v := o.VarIdPred(lit.Pred, args)
			clause = append(clause, Of(v, lit.Positive))
			for i, sort := range o.Sig.PredicateSignatures[lit.Pred] {
				trackTouched(touched, sort, args[i])
			}
		}
	}

	if markers != nil {
		clause = markers.AppendInstanceMarkers(clause, touched)
	}

	sink(clause)
}

// trackTouched records, per source sort, the maximum grounded value
// used for that sort within one instance — the marker manager needs
// this maximum to decide which staircase marker makes the instance
// size-dependent (spec §4.5).
func trackTouched(touched map[sig.SourceSort]int, s sig.SourceSort, val int) {
	if cur, ok := touched[s]; !ok || val > cur {
		touched[s] = val
	}
}
