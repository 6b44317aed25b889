//go:build cgo

package enumerate

import (
	"sort"
	"strconv"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
	"github.com/vhavlena/z3-go/z3"
)

// SmtStrategy implements spec §4.6 Mode B': instead of a generator
// heap, every learned no-good becomes a permanent assertion over one
// integer variable per distinct sort, and the next candidate is found
// by asking Z3 for a model minimizing the total size (a linear search
// over an upper bound, mirroring the teacher's dict.go linearSearch
// pattern rather than a native optimizing solver).
type SmtStrategy struct {
	ss *sig.SortedSignature

	cfg    *z3.Config
	ctx    *z3.Context
	solver *z3.Solver
	vars   map[sig.DistinctSort]z3.AST

	order    []sig.DistinctSort
	complete bool
}

// NewSmtStrategy creates an SmtStrategy. It is only compiled in when
// cgo is enabled, per spec §6's optional SMT-guided enumeration mode.
func NewSmtStrategy() *SmtStrategy {
	return &SmtStrategy{complete: true}
}

func (s *SmtStrategy) Init(ss *sig.SortedSignature, start SizeVector) {
	s.ss = ss
	s.cfg = z3.NewConfig()
	s.ctx = z3.NewContext(s.cfg)
	s.solver = s.ctx.NewSolver()
	s.vars = map[sig.DistinctSort]z3.AST{}

	s.order = make([]sig.DistinctSort, len(ss.DistinctSorts))
	copy(s.order, ss.DistinctSorts)
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })

	intSort := s.ctx.IntSort()
	for _, d := range s.order {
		v := s.ctx.Const("size_"+strconv.Itoa(int(d)), intSort)
		s.vars[d] = v
		info := ss.Distinct[d]

		lower := 1
		if n, ok := start[d]; ok && n > lower {
			lower = n
		}
		s.solver.Assert(z3.Ge(v, s.ctx.IntVal(int64(lower))))
		if info.Max != sig.NoBound {
			s.solver.Assert(z3.Le(v, s.ctx.IntVal(int64(info.Max))))
		}
	}

	s.assertConstraintFamily(ss.NonStrict)
	s.assertConstraintFamily(ss.Strict)
}

func (s *SmtStrategy) assertConstraintFamily(cs []sig.DistinctConstraint) {
	for _, c := range cs {
		lhs, ok1 := s.vars[c.Less]
		rhs, ok2 := s.vars[c.Greater]
		if !ok1 || !ok2 {
			continue
		}
		if c.Strict {
			s.solver.Assert(z3.Lt(lhs, rhs))
		} else {
			s.solver.Assert(z3.Le(lhs, rhs))
		}
	}
}

func (s *SmtStrategy) LearnNogood(report encode.FailureReport) {
	ng := buildNoGood(s.ss, report)
	if len(ng) == 0 {
		return
	}

	var disjuncts []z3.AST
	for d, b := range ng {
		v, ok := s.vars[d]
		if !ok {
			continue
		}
		val := s.ctx.IntVal(int64(b.Value))
		switch b.Tag {
		case TagEq:
			disjuncts = append(disjuncts, z3.Eq(v, val).Not())
		case TagGeq:
			disjuncts = append(disjuncts, z3.Lt(v, val))
		case TagLeq:
			disjuncts = append(disjuncts, z3.Gt(v, val))
		}
	}
	if len(disjuncts) > 0 {
		s.solver.Assert(z3.Or(disjuncts...))
	}
}

// IncreaseSizes asks Z3 for a satisfying assignment of the recorded
// bounds and no-goods, then linearly searches downward on the total
// size to find a minimal candidate, pinning it with a temporary
// assertion scope (push/pop) so later calls are unaffected.
func (s *SmtStrategy) IncreaseSizes() (SizeVector, bool) {
	res, err := s.solver.Check()
	if err != nil || res != z3.Sat {
		s.complete = res == z3.Unsat
		return nil, false
	}

	best := s.modelVector()
	for {
		total := weightOf(best)
		if total <= 0 {
			break
		}
		s.solver.Push()
		s.solver.Assert(s.lessThanTotal(total))
		res, err := s.solver.Check()
		if err != nil || res != z3.Sat {
			s.solver.Pop(1)
			break
		}
		cand := s.modelVector()
		s.solver.Pop(1)
		if weightOf(cand) >= total {
			break
		}
		best = cand
	}

	return best, true
}

func (s *SmtStrategy) lessThanTotal(total int) z3.AST {
	sum := s.vars[s.order[0]]
	for _, d := range s.order[1:] {
		sum = z3.Add(sum, s.vars[d])
	}
	return z3.Lt(sum, s.ctx.IntVal(int64(total)))
}

func (s *SmtStrategy) modelVector() SizeVector {
	m := s.solver.Model()
	defer m.Close()

	out := SizeVector{}
	for _, d := range s.order {
		v := m.Eval(s.vars[d], true)
		n, err := strconv.Atoi(v.NumeralString())
		if err != nil {
			n = 1
		}
		out[d] = n
	}
	return out
}

func (s *SmtStrategy) IsComplete() bool { return s.complete }
