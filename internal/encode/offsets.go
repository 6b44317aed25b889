// Package encode implements the flattening-and-grounding encoder: the
// variable layout (spec §4.1), the clause encoder (§4.2), the
// functional-definition and symmetry axioms (§4.3, §4.4), and the
// marker-assumption manager (§4.5). It owns the offset tables; they are
// discarded and rebuilt on every Reset (spec §3 "Ownership").
package encode

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-fmb/fmb/internal/sig"
)

// VarMax bounds the SAT variable id space; exceeding it is the
// "cannot encode" error of spec §3/§7.
const VarMax = math.MaxInt32 / 2

// ErrCannotEncode is returned by Reset when any region's variable count
// would overflow VarMax.
var ErrCannotEncode = errors.New("cannot encode: SAT variable id space exhausted")

// SatVar is a 1-based SAT variable id in the single contiguous region
// described by spec §3.
type SatVar int

// Offsets is the variable layout built by Reset: a map from
// (symbol, grounding) to SatVar, represented compactly as base offsets
// plus the mixed-radix arithmetic of spec §3's varId formula, rather
// than as a literal table (which would itself risk overflow).
type Offsets struct {
	Sig *sig.SortedSignature

	FuncOffset map[sig.FuncID]SatVar
	PredOffset map[sig.PredID]SatVar

	// funcSlotSizes[f] holds, for each of f's Arity+1 positions, the
	// size of that position's sort (argument sorts, then result).
	funcSlotSizes map[sig.FuncID][]int
	predSlotSizes map[sig.PredID][]int

	// MarkerBase is where the marker region described by spec §4.5
	// begins; its internal layout depends on the active Mode and is
	// populated by that mode, not by Reset itself.
	MarkerBase SatVar

	MaxVar SatVar
}

// Reset rebuilds the variable layout for the current per-distinct-sort
// sizes recorded in ss.Distinct[*].Current. It must be called whenever
// any sort size changes (spec §4.1).
func Reset(ss *sig.SortedSignature, order sig.SymbolOrder, log logrus.FieldLogger) (*Offsets, error) {
	o := &Offsets{
		Sig:           ss,
		FuncOffset:    make(map[sig.FuncID]SatVar),
		PredOffset:    make(map[sig.PredID]SatVar),
		funcSlotSizes: make(map[sig.FuncID][]int),
		predSlotSizes: make(map[sig.PredID][]int),
	}

	cur := SatVar(1)

	for _, f := range ss.Sig.NonDeletedFunctions(order) {
		slots := make([]int, 0, len(ss.FunctionSignatures[f]))
		for _, s := range ss.FunctionSignatures[f] {
			slots = append(slots, ss.SizeOfSource(s))
		}
		o.funcSlotSizes[f] = slots

		add, ok := product(slots)
		if !ok {
			return nil, errors.Wrapf(ErrCannotEncode, "function %v block size overflow", f)
		}
		next, ok := addOverflowSafe(cur, add)
		if !ok {
			return nil, errors.Wrapf(ErrCannotEncode, "function %v offset overflow", f)
		}
		o.FuncOffset[f] = cur
		cur = next
	}

	for _, p := range ss.Sig.NonDeletedPredicates(order) {
		slots := make([]int, 0, len(ss.PredicateSignatures[p]))
		for _, s := range ss.PredicateSignatures[p] {
			slots = append(slots, ss.SizeOfSource(s))
		}
		o.predSlotSizes[p] = slots

		add, ok := product(slots)
		if !ok {
			return nil, errors.Wrapf(ErrCannotEncode, "predicate %v block size overflow", p)
		}
		next, ok := addOverflowSafe(cur, add)
		if !ok {
			return nil, errors.Wrapf(ErrCannotEncode, "predicate %v offset overflow", p)
		}
		o.PredOffset[p] = cur
		cur = next
	}

	o.MarkerBase = cur
	o.MaxVar = cur - 1 // markers append themselves and advance MaxVar further.

	if log != nil {
		log.WithFields(logrus.Fields{
			"functions":  len(o.FuncOffset),
			"predicates": len(o.PredOffset),
			"markerBase": o.MarkerBase,
		}).Debug("variable layout reset")
	}

	return o, nil
}

// product multiplies slots, returning (result, false) on overflow
// past VarMax (spec §3's multiplicative overflow check).
func product(slots []int) (int, bool) {
	n := 1
	for _, s := range slots {
		if s <= 0 {
			return 0, false
		}
		nAdd := n * s
		if nAdd/s != n || nAdd > VarMax {
			return 0, false
		}
		n = nAdd
	}
	return n, true
}

func addOverflowSafe(base SatVar, add int) (SatVar, bool) {
	if add < 0 || VarMax-int(base) < add {
		return 0, false
	}
	return base + SatVar(add), true
}

// VarIdFunc computes the SAT variable for function f applied to args
// with result r, per spec §3's mixed-radix formula.
func (o *Offsets) VarIdFunc(f sig.FuncID, args []int, r int) SatVar {
	slots := o.funcSlotSizes[f]
	idx := 0
	mult := 1
	for i, a := range args {
		idx += (a - 1) * mult
		mult *= slots[i]
	}
	idx += (r - 1) * mult
	return o.FuncOffset[f] + SatVar(idx)
}

// VarIdPred computes the SAT variable for predicate p applied to args.
func (o *Offsets) VarIdPred(p sig.PredID, args []int) SatVar {
	slots := o.predSlotSizes[p]
	idx := 0
	mult := 1
	for i, a := range args {
		idx += (a - 1) * mult
		mult *= slots[i]
	}
	return o.PredOffset[p] + SatVar(idx)
}

// FuncSlotSizes exposes the per-position sort sizes used to ground f;
// axiom emitters need this to drive the odometer independently of the
// encoder.
func (o *Offsets) FuncSlotSizes(f sig.FuncID) []int { return o.funcSlotSizes[f] }

// PredSlotSizes exposes the per-position sort sizes used to ground p.
func (o *Offsets) PredSlotSizes(p sig.PredID) []int { return o.predSlotSizes[p] }

// GrowMarkers advances MaxVar by n and returns the SatVar of the first
// newly-allocated variable; the marker manager (markers.go) uses this
// to lay out its own region on top of the function/predicate blocks.
func (o *Offsets) GrowMarkers(n int) (SatVar, error) {
	next, ok := addOverflowSafe(o.MaxVar, n)
	if !ok {
		return 0, errors.Wrap(ErrCannotEncode, "marker region overflow")
	}
	first := o.MaxVar + 1
	o.MaxVar = next
	return first, nil
}
