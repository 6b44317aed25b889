package encode

import (
	"sort"

	"github.com/go-fmb/fmb/internal/sig"
)

// MarkerManager is the capability interface spec §4.5 describes: it
// wires assumption literals that make clause sets size-parametric. The
// driver builds a fresh SAT solver for every candidate size vector, so
// the markers select which guarded clauses apply within one solve; no
// solver is carried from one size vector to the next. It is
// implemented by ContourMarkers (Mode A) and SbmeamMarkers (Mode B).
type MarkerManager interface {
	MarkerAppender

	// Build lays out the marker region on top of o (which must
	// already have its function/predicate regions allocated) and
	// emits the mode's structural axioms (staircase for Mode A;
	// nothing extra for Mode B).
	Build(o *Offsets, sink Sink) error

	// EmitTotality emits the totality clause(s) for function f's
	// result sort, guarded so that they only constrain the SAT
	// problem at the size(s) the active assumption set selects.
	EmitTotality(o *Offsets, f sig.FuncID, sink Sink)

	// Assumptions returns the literals the driver must pass to
	// solveUnderAssumptions for the current size vector.
	Assumptions() []SatLit

	// Interpret decodes a failed-assumption set (as returned by the
	// SAT solver after an UNSAT result) into the sort-indexed report
	// the domain-size enumerator needs (spec §4.6).
	Interpret(failed []SatLit) FailureReport
}

// FailureReport decodes which sorts the last UNSAT result's failed
// assumptions implicate. TotFailed/InstFailed are populated only by
// SbmeamMarkers; ContourMarkers populates only Sorts.
type FailureReport struct {
	Sorts      map[sig.DistinctSort]bool
	TotFailed  map[sig.DistinctSort]bool
	InstFailed map[sig.DistinctSort]bool
}

// --- Mode A: CONTOUR -------------------------------------------------

// ContourMarkers implements the per-sort staircase scheme of spec
// §4.5 Mode A.
type ContourMarkers struct {
	ss      *sig.SortedSignature
	marker  map[sig.DistinctSort][]SatVar // marker[s][0..size[s]-1]
}

// NewContourMarkers creates a ContourMarkers bound to ss. Build must be
// called after Reset allocates the function/predicate regions.
func NewContourMarkers(ss *sig.SortedSignature) *ContourMarkers {
	return &ContourMarkers{ss: ss, marker: map[sig.DistinctSort][]SatVar{}}
}

func (c *ContourMarkers) Build(o *Offsets, sink Sink) error {
	for _, s := range sortedDistinct(c.ss) {
		size := c.ss.Distinct[s].Current
		if size < 1 {
			size = 1
		}
		first, err := o.GrowMarkers(size)
		if err != nil {
			return err
		}
		block := make([]SatVar, size)
		for i := 0; i < size; i++ {
			block[i] = first + SatVar(i)
		}
		c.marker[s] = block

		for j := 0; j < size-1; j++ {
			sink([]SatLit{Neg(block[j+1]), Pos(block[j])})
		}
	}
	return nil
}

func (c *ContourMarkers) markerAt(s sig.DistinctSort, idx int) (SatVar, bool) {
	block, ok := c.marker[s]
	if !ok || idx < 0 || idx >= len(block) {
		return 0, false
	}
	return block[idx], true
}

func (c *ContourMarkers) AppendInstanceMarkers(clause []SatLit, touched map[sig.SourceSort]int) []SatLit {
	for src, maxVal := range touched {
		d := c.ss.Parent[src]
		if c.ss.Distinct[d].Monotonic {
			continue
		}
		idx := maxVal - 2
		if idx < 0 {
			continue
		}
		if m, ok := c.markerAt(d, idx); ok {
			clause = append(clause, Neg(m))
		}
	}
	return clause
}

func (c *ContourMarkers) EmitTotality(o *Offsets, f sig.FuncID, sink Sink) {
	slots := o.FuncSlotSizes(f)
	if len(slots) == 0 {
		return
	}
	argSlots := slots[:len(slots)-1]
	sorts := o.Sig.FunctionSignatures[f]
	resultSort := sorts[len(sorts)-1]
	d := c.ss.Parent[resultSort]
	size := c.ss.Distinct[d].Current
	maxRet := size // no sort can have more candidate results than its current size

	ForEach(argSlots, func(args []int) {
		for i := 1; i <= maxRet; i++ {
			clause := make([]SatLit, 0, i+1)
			for v := 1; v <= i; v++ {
				clause = append(clause, Pos(o.VarIdFunc(f, args, v)))
			}
			m := i - 1
			if m > size-1 {
				m = size - 1
			}
			if marker, ok := c.markerAt(d, m); ok {
				clause = append(clause, Pos(marker))
			}
			sink(clause)
		}
	})
}

// RetractedSize reports the domain size a satisfying assignment
// actually requires for sort d: the staircase's totality clauses only
// become mandatory once their escape marker is forced false, so the
// smallest index isTrue reports false for (plus one) is the smallest
// size totality was actually enforced at (spec §4.7's "retract
// size[s] first" step). If every marker stayed true, the assignment
// never needed less than the sort's nominal candidate size.
func (c *ContourMarkers) RetractedSize(d sig.DistinctSort, isTrue func(SatVar) bool) int {
	block, ok := c.marker[d]
	if !ok {
		return c.ss.Distinct[d].Current
	}
	for j, m := range block {
		if !isTrue(m) {
			return j + 1
		}
	}
	return len(block)
}

func (c *ContourMarkers) Interpret(failed []SatLit) FailureReport {
	report := FailureReport{Sorts: map[sig.DistinctSort]bool{}}
	for _, lit := range failed {
		for d, block := range c.marker {
			for _, m := range block {
				if Neg(m) == lit {
					report.Sorts[d] = true
				}
			}
		}
	}
	return report
}

func (c *ContourMarkers) Assumptions() []SatLit {
	var a []SatLit
	for _, s := range sortedDistinct(c.ss) {
		size := c.ss.Distinct[s].Current
		if m, ok := c.markerAt(s, size-1); ok {
			a = append(a, Neg(m))
		}
	}
	return a
}

// --- Mode B: SBMEAM ---------------------------------------------------

// SbmeamMarkers implements the totality/instance flag scheme of spec
// §4.5 Mode B.
type SbmeamMarkers struct {
	ss   *sig.SortedSignature
	tot  map[sig.DistinctSort]SatVar
	inst map[sig.DistinctSort]SatVar
}

// NewSbmeamMarkers creates an SbmeamMarkers bound to ss.
func NewSbmeamMarkers(ss *sig.SortedSignature) *SbmeamMarkers {
	return &SbmeamMarkers{ss: ss, tot: map[sig.DistinctSort]SatVar{}, inst: map[sig.DistinctSort]SatVar{}}
}

func (s *SbmeamMarkers) Build(o *Offsets, sink Sink) error {
	distinct := sortedDistinct(s.ss)
	first, err := o.GrowMarkers(2 * len(distinct))
	if err != nil {
		return err
	}
	for i, d := range distinct {
		s.tot[d] = first + SatVar(2*i)
		s.inst[d] = first + SatVar(2*i+1)
	}
	return nil
}

func (s *SbmeamMarkers) AppendInstanceMarkers(clause []SatLit, touched map[sig.SourceSort]int) []SatLit {
	for src := range touched {
		d := s.ss.Parent[src]
		if s.ss.Distinct[d].Monotonic {
			continue
		}
		clause = append(clause, Neg(s.inst[d]))
	}
	return clause
}

func (s *SbmeamMarkers) EmitTotality(o *Offsets, f sig.FuncID, sink Sink) {
	slots := o.FuncSlotSizes(f)
	if len(slots) == 0 {
		return
	}
	argSlots := slots[:len(slots)-1]
	resultSize := slots[len(slots)-1]
	sorts := o.Sig.FunctionSignatures[f]
	d := s.ss.Parent[sorts[len(sorts)-1]]

	ForEach(argSlots, func(args []int) {
		clause := make([]SatLit, 0, resultSize+1)
		for v := 1; v <= resultSize; v++ {
			clause = append(clause, Pos(o.VarIdFunc(f, args, v)))
		}
		clause = append(clause, Neg(s.tot[d]))
		sink(clause)
	})
}

func (s *SbmeamMarkers) Interpret(failed []SatLit) FailureReport {
	report := FailureReport{
		Sorts:      map[sig.DistinctSort]bool{},
		TotFailed:  map[sig.DistinctSort]bool{},
		InstFailed: map[sig.DistinctSort]bool{},
	}
	for _, lit := range failed {
		for d, m := range s.tot {
			if Pos(m) == lit {
				report.TotFailed[d] = true
				report.Sorts[d] = true
			}
		}
		for d, m := range s.inst {
			if Pos(m) == lit {
				report.InstFailed[d] = true
				report.Sorts[d] = true
			}
		}
	}
	return report
}

func (s *SbmeamMarkers) Assumptions() []SatLit {
	distinct := sortedDistinct(s.ss)
	a := make([]SatLit, 0, 2*len(distinct))
	for _, d := range distinct {
		a = append(a, Pos(s.tot[d]), Pos(s.inst[d]))
	}
	return a
}

func sortedDistinct(ss *sig.SortedSignature) []sig.DistinctSort {
	out := make([]sig.DistinctSort, len(ss.DistinctSorts))
	copy(out, ss.DistinctSorts)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
