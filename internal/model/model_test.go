package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/satsolver"
	"github.com/go-fmb/fmb/internal/sig"
)

// constBody always returns v, to exercise the
// successfully-evaluated path of a deleted symbol's recovery.
type constBody struct{ v int }

func (c constBody) Eval(args []int) int { return c.v }

// panicBody exercises the Partial-recording path: a stored definition
// that cannot be evaluated over some argument tuple.
type panicBody struct{}

func (panicBody) Eval(args []int) int { panic("no defining literal for this tuple") }

func oneSortSignature(size int) *sig.SortedSignature {
	ss := sig.NewSortedSignature(&sig.Signature{})
	ss.Sorts = []sig.SourceSort{0}
	ss.DistinctSorts = []sig.DistinctSort{0}
	ss.Parent[0] = 0
	ss.Distinct[0] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound, Current: size}
	return ss
}

func TestExtractRecoversUnaryFunction(t *testing.T) {
	ss := oneSortSignature(2)
	ss.Sig.Functions = []sig.FunctionSymbol{
		{Name: "f0", Arity: 1, ArgSorts: []sig.SourceSort{0}, ResultSort: 0},
	}
	ss.FunctionSignatures[0] = []sig.SourceSort{0, 0}

	o, err := encode.Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	solv := satsolver.New()
	solv.EnsureVarCount(o.MaxVar)
	// Pin every result variable explicitly so the model is fully
	// determined: f0(1) = 2, f0(2) = 1.
	solv.AddClausesIter(unitClauses(
		encode.Neg(o.VarIdFunc(0, []int{1}, 1)),
		encode.Pos(o.VarIdFunc(0, []int{1}, 2)),
		encode.Pos(o.VarIdFunc(0, []int{2}, 1)),
		encode.Neg(o.VarIdFunc(0, []int{2}, 2)),
	))
	res := solv.SolveUnderAssumptions(nil)
	require.Equal(t, satsolver.Sat, res)

	m := Extract(ss, o, solv, nil)
	assert.Equal(t, 2, m.SortSize[0])
	assert.Equal(t, 2, m.Functions[0]["[1]"])
	assert.Equal(t, 1, m.Functions[0]["[2]"])
}

func TestExtractRecoversDeletedFunctionFromDefinition(t *testing.T) {
	ss := oneSortSignature(2)
	ss.Sig.Functions = []sig.FunctionSymbol{
		{
			Name: "f0", Arity: 1, ArgSorts: []sig.SourceSort{0}, ResultSort: 0,
			Deleted:    true,
			Definition: &sig.Definition{Body: constBody{v: 1}},
		},
	}

	o, err := encode.Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)
	solv := satsolver.New()
	solv.EnsureVarCount(o.MaxVar)
	require.Equal(t, satsolver.Sat, solv.SolveUnderAssumptions(nil))

	m := Extract(ss, o, solv, nil)
	require.Contains(t, m.Functions, sig.FuncID(0))
	assert.Equal(t, 1, m.Functions[0]["[1]"])
	assert.Equal(t, 1, m.Functions[0]["[2]"])
	assert.Empty(t, m.Partial)
}

func TestExtractRecordsPartialOnEvaluationPanic(t *testing.T) {
	ss := oneSortSignature(2)
	ss.Sig.Functions = []sig.FunctionSymbol{
		{
			Name: "f0", Arity: 1, ArgSorts: []sig.SourceSort{0}, ResultSort: 0,
			Deleted:    true,
			Definition: &sig.Definition{Body: panicBody{}},
		},
	}

	o, err := encode.Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)
	solv := satsolver.New()
	solv.EnsureVarCount(o.MaxVar)
	require.Equal(t, satsolver.Sat, solv.SolveUnderAssumptions(nil))

	m := Extract(ss, o, solv, nil)
	assert.Empty(t, m.Functions[0])
	assert.Len(t, m.Partial, 2, "both argument tuples (1 and 2) fail to evaluate")
}

func TestExtractRecoversDeletedPredicate(t *testing.T) {
	ss := oneSortSignature(2)
	ss.Sig.Predicates = []sig.PredicateSymbol{
		{
			Name: "p0", Arity: 1, ArgSorts: []sig.SourceSort{0},
			Deleted:    true,
			Definition: &sig.Definition{Body: constBody{v: 1}},
		},
	}

	o, err := encode.Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)
	solv := satsolver.New()
	solv.EnsureVarCount(o.MaxVar)
	require.Equal(t, satsolver.Sat, solv.SolveUnderAssumptions(nil))

	m := Extract(ss, o, solv, nil)
	assert.True(t, m.Predicates[0]["[1]"])
	assert.True(t, m.Predicates[0]["[2]"])
}

func unitClauses(lits ...encode.SatLit) func() ([]encode.SatLit, bool) {
	i := 0
	return func() ([]encode.SatLit, bool) {
		if i >= len(lits) {
			return nil, false
		}
		l := lits[i]
		i++
		return []encode.SatLit{l}, true
	}
}
