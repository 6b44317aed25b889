package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/sig"
)

func unaryFuncSignature(size int) *sig.SortedSignature {
	s := &sig.Signature{
		Functions: []sig.FunctionSymbol{{Name: "f", Arity: 1, ArgSorts: []sig.SourceSort{0}, ResultSort: 0}},
	}
	ss := sig.NewSortedSignature(s)
	ss.Sorts = []sig.SourceSort{0}
	ss.DistinctSorts = []sig.DistinctSort{0}
	ss.Parent[0] = 0
	ss.Distinct[0] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound, Current: size}
	ss.FunctionSignatures[0] = []sig.SourceSort{0, 0}
	return ss
}

func TestFunctionalDefinitionsForbidTwoResults(t *testing.T) {
	ss := unaryFuncSignature(3)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	var clauses [][]SatLit
	EmitFunctionalDefinitions(o, []sig.FuncID{0}, nil, func(c []SatLit) {
		clauses = append(clauses, append([]SatLit{}, c...))
	})

	// one clause per (x, y<z) pair, x in {1,2,3}, (y,z) in C(3,2)=3
	assert.Len(t, clauses, 3*3)
	for _, c := range clauses {
		require.Len(t, c, 2)
		assert.Less(t, c[0], SatLit(0))
		assert.Less(t, c[1], SatLit(0))
	}
}

func TestFunctionalDefinitionsSkipSingleResultFunction(t *testing.T) {
	ss := unaryFuncSignature(1)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	var n int
	EmitFunctionalDefinitions(o, []sig.FuncID{0}, nil, func(c []SatLit) { n++ })
	assert.Zero(t, n)
}
