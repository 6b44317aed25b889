package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/sig"
)

func twoSortSignature(sizeA, sizeB int) *sig.SortedSignature {
	s := &sig.Signature{
		Functions: []sig.FunctionSymbol{
			{Name: "f", Arity: 1, ArgSorts: []sig.SourceSort{0}, ResultSort: 0},
		},
		Predicates: []sig.PredicateSymbol{
			{Name: "p", Arity: 2, ArgSorts: []sig.SourceSort{0, 1}},
		},
	}
	ss := sig.NewSortedSignature(s)
	ss.Sorts = []sig.SourceSort{0, 1}
	ss.DistinctSorts = []sig.DistinctSort{0, 1}
	ss.Parent[0] = 0
	ss.Parent[1] = 1
	ss.Distinct[0] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound, Current: sizeA}
	ss.Distinct[1] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound, Current: sizeB}
	ss.FunctionSignatures[0] = []sig.SourceSort{0, 0}
	ss.PredicateSignatures[0] = []sig.SourceSort{0, 1}
	return ss
}

func TestVarIdBijection(t *testing.T) {
	ss := twoSortSignature(3, 2)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	seen := map[SatVar]string{}
	for x := 1; x <= 3; x++ {
		for r := 1; r <= 3; r++ {
			v := o.VarIdFunc(0, []int{x}, r)
			key := seen[v]
			assert.Empty(t, key, "collision between f(%d)=%d and %s", x, r, key)
			seen[v] = "f(" + string(rune('0'+x)) + ")=" + string(rune('0'+r))
		}
	}
	for x := 1; x <= 3; x++ {
		for y := 1; y <= 2; y++ {
			v := o.VarIdPred(0, []int{x, y})
			key := seen[v]
			assert.Empty(t, key, "collision with predicate var for (%d,%d)", x, y)
			seen[v] = "p"
		}
	}

	for v := SatVar(1); v <= o.MaxVar; v++ {
		_, ok := seen[v]
		assert.True(t, ok, "varId %d is not onto [1,maxVar]", v)
	}
}

func TestResetDetectsOverflow(t *testing.T) {
	ss := twoSortSignature(1, 1)
	ss.Distinct[0].Current = VarMax
	ss.Distinct[1].Current = VarMax

	_, err := Reset(ss, sig.OrderOccurrence, nil)
	assert.ErrorIs(t, err, ErrCannotEncode)
}

func TestGrowMarkersAdvancesMaxVar(t *testing.T) {
	ss := twoSortSignature(2, 2)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	before := o.MaxVar
	first, err := o.GrowMarkers(3)
	require.NoError(t, err)
	assert.Equal(t, before+1, first)
	assert.Equal(t, before+3, o.MaxVar)
}
