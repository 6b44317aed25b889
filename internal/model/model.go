// Package model implements the extractor of spec §4.7: turning a
// satisfying SAT assignment back into a finite interpretation over
// the original signature, including the deleted and trivial symbols
// the encoder never gave a SAT variable to.
package model

import (
	"fmt"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/satsolver"
	"github.com/go-fmb/fmb/internal/sig"
)

// Model is a finite interpretation: a domain size per distinct sort,
// plus the value every non-deleted function/predicate takes on every
// grounding, recovered from the SAT assignment or, for deleted and
// trivial symbols, from their stored Definition.
type Model struct {
	SortSize map[sig.DistinctSort]int

	// Functions maps a function id and an argument tuple (formatted
	// by argsKey) to the domain value the function returns there.
	Functions map[sig.FuncID]map[string]int

	// Predicates maps a predicate id and an argument tuple to its
	// truth value.
	Predicates map[sig.PredID]map[string]bool

	// Partial lists (symbol, args) pairs, for deleted functions and
	// for deleted or trivial predicates, whose stored Definition
	// could not be evaluated on this model, left
	// undefined per spec §7's model-extraction-partial note.
	Partial []string
}

// Extract reads the SAT assignment held by solv (after a Sat result)
// and builds the finite interpretation it encodes for ss at the
// offsets laid out in o. markers is the mode's MarkerManager; under
// CONTOUR (Mode A) it is consulted to retract each sort's reported
// size down to the smallest the staircase markers actually forced
// totality at, rather than the nominal candidate size (spec §4.7).
// markers may be nil, e.g. for modes with no such retraction step.
func Extract(ss *sig.SortedSignature, o *encode.Offsets, solv *satsolver.Solver, markers encode.MarkerManager) *Model {
	m := &Model{
		SortSize:   map[sig.DistinctSort]int{},
		Functions:  map[sig.FuncID]map[string]int{},
		Predicates: map[sig.PredID]map[string]bool{},
	}

	cm, isContour := markers.(*encode.ContourMarkers)
	for d, info := range ss.Distinct {
		if isContour {
			m.SortSize[d] = cm.RetractedSize(d, func(v encode.SatVar) bool {
				return solv.TrueInAssignment(encode.Pos(v))
			})
			continue
		}
		m.SortSize[d] = info.Current
	}

	for _, f := range ss.Sig.NonDeletedFunctions(sig.OrderOccurrence) {
		m.Functions[f] = extractFunction(ss, o, solv, f)
	}
	for _, p := range ss.Sig.NonDeletedPredicates(sig.OrderOccurrence) {
		m.Predicates[p] = extractPredicate(ss, o, solv, p)
	}

	for i := range ss.Sig.Functions {
		fn := ss.Sig.Func(sig.FuncID(i))
		if !fn.Deleted || fn.Definition == nil {
			continue
		}
		m.recoverDeletedFunction(ss, sig.FuncID(i), fn)
	}
	for i := range ss.Sig.Predicates {
		pr := ss.Sig.Pred(sig.PredID(i))
		if (!pr.Deleted && !pr.Trivial) || pr.Definition == nil {
			continue
		}
		m.recoverDeletedPredicate(ss, sig.PredID(i), pr)
	}

	return m
}

func extractFunction(ss *sig.SortedSignature, o *encode.Offsets, solv *satsolver.Solver, f sig.FuncID) map[string]int {
	out := map[string]int{}
	slots := o.FuncSlotSizes(f)
	if len(slots) == 0 {
		return out
	}
	argSlots := slots[:len(slots)-1]
	resultSize := slots[len(slots)-1]

	encode.ForEach(argSlots, func(args []int) {
		for r := 1; r <= resultSize; r++ {
			v := o.VarIdFunc(f, args, r)
			if solv.TrueInAssignment(encode.Pos(v)) {
				out[argsKey(args)] = r
				return
			}
		}
	})
	return out
}

func extractPredicate(ss *sig.SortedSignature, o *encode.Offsets, solv *satsolver.Solver, p sig.PredID) map[string]bool {
	out := map[string]bool{}
	slots := o.PredSlotSizes(p)
	encode.ForEach(slots, func(args []int) {
		v := o.VarIdPred(p, args)
		out[argsKey(args)] = solv.TrueInAssignment(encode.Pos(v))
	})
	return out
}

// recoverDeletedFunction fills in a deleted function's table by
// evaluating its stored Definition over the same argument space its
// surviving signature would have ranged over, skipping (and recording
// as Partial) any tuple the definition cannot evaluate.
func (m *Model) recoverDeletedFunction(ss *sig.SortedSignature, id sig.FuncID, fn *sig.FunctionSymbol) {
	sizes := make([]int, fn.Arity)
	for i, s := range fn.ArgSorts {
		sizes[i] = ss.SizeOfSource(s)
	}
	out := map[string]int{}
	encode.ForEach(sizes, func(args []int) {
		defer func() {
			if recover() != nil {
				m.Partial = append(m.Partial, fmt.Sprintf("f%d%v", id, args))
			}
		}()
		out[argsKey(args)] = fn.Definition.Body.Eval(args)
	})
	m.Functions[id] = out
}

func (m *Model) recoverDeletedPredicate(ss *sig.SortedSignature, id sig.PredID, pr *sig.PredicateSymbol) {
	sizes := make([]int, pr.Arity)
	for i, s := range pr.ArgSorts {
		sizes[i] = ss.SizeOfSource(s)
	}
	out := map[string]bool{}
	encode.ForEach(sizes, func(args []int) {
		defer func() {
			if recover() != nil {
				m.Partial = append(m.Partial, fmt.Sprintf("p%d%v", id, args))
			}
		}()
		out[argsKey(args)] = pr.Definition.Body.Eval(args) != 0
	})
	m.Predicates[id] = out
}

func argsKey(args []int) string {
	return fmt.Sprint(args)
}
