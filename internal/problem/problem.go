// Package problem holds the flattened, variable-normalised clause sets
// the core consumes from preprocessing (spec §3 "Clauses", §6 "Problem").
// Nothing in this package performs clausification, Skolemisation, or
// sort inference — those stay out of scope per spec §1.
package problem

import (
	"fmt"

	"github.com/go-fmb/fmb/internal/sig"
)

// Var identifies a clause-local variable. Variables are 0-based and
// renumbered per clause by whatever produced the Problem.
type Var int

// LiteralKind distinguishes the three flat literal shapes spec §3
// allows.
type LiteralKind int

const (
	// KindVarEq is x = y, a two-variable equality.
	KindVarEq LiteralKind = iota
	// KindFuncEq is f(x1..xn) = y, or its negation.
	KindFuncEq
	// KindPred is p(x1..xn), or its negation.
	KindPred
)

// Literal is one flat literal of a clause. Exactly one interpretation
// of its fields is meaningful, selected by Kind.
type Literal struct {
	Kind     LiteralKind
	Positive bool

	// KindVarEq: X, Y are the two variables.
	X, Y Var

	// KindFuncEq: Func(Args) = Result.
	Func   sig.FuncID
	Args   []Var
	Result Var

	// KindPred: Pred(Args).
	Pred sig.PredID
}

func (l Literal) String() string {
	pol := ""
	if !l.Positive {
		pol = "~"
	}
	switch l.Kind {
	case KindVarEq:
		return fmt.Sprintf("%sX%d=X%d", pol, l.X, l.Y)
	case KindFuncEq:
		return fmt.Sprintf("%sf%d(%v)=X%d", pol, l.Func, l.Args, l.Result)
	default:
		return fmt.Sprintf("%sp%d(%v)", pol, l.Pred, l.Args)
	}
}

// Clause is a disjunction of flat Literals, together with the sort
// inferred for every variable it mentions (spec §3 "variable-sort map").
type Clause struct {
	Literals []Literal
	VarSort  map[Var]sig.SourceSort

	// MaxVar is the highest variable id + 1 referenced by the
	// clause; grounding enumerates Var(0)..Var(MaxVar-1).
	MaxVar int
}

// Vars returns the clause's variables in ascending order.
func (c *Clause) Vars() []Var {
	vs := make([]Var, c.MaxVar)
	for i := range vs {
		vs[i] = Var(i)
	}
	return vs
}

// TriviallySatisfiable reports whether c consists entirely of variable
// equalities whose variable-sort map is empty — spec §4.2's instruction
// to skip such clauses, relying on preprocessing to guarantee at least
// one positive variable equality in them.
func (c *Clause) TriviallySatisfiable() bool {
	if len(c.VarSort) != 0 {
		return false
	}
	for _, lit := range c.Literals {
		if lit.Kind != KindVarEq {
			return false
		}
	}
	return len(c.Literals) > 0
}

// Problem is the full, read-only input to the core: a flattened clause
// set plus the flags that let the driver fail fast on inputs the core
// was never meant to attempt (spec §7).
type Problem struct {
	Clauses []Clause

	HadIncompleteTransformation bool
	KnownInfiniteDomain          bool
	HasInterpretedOperations     bool
}

// Inappropriate reports whether the driver should refuse this problem
// outright, per spec §7's "Inappropriate-input" error kind.
func (p *Problem) Inappropriate() bool {
	return p.HadIncompleteTransformation || p.KnownInfiniteDomain || p.HasInterpretedOperations
}
