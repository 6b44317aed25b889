package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/sig"
)

func nonMonotonicSortedSignature(size int) *sig.SortedSignature {
	s := &sig.Signature{}
	ss := sig.NewSortedSignature(s)
	ss.Sorts = []sig.SourceSort{0}
	ss.DistinctSorts = []sig.DistinctSort{0}
	ss.Parent[0] = 0
	ss.Distinct[0] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound, Current: size}
	return ss
}

func TestContourMarkersStaircase(t *testing.T) {
	ss := nonMonotonicSortedSignature(3)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewContourMarkers(ss)
	var clauses [][]SatLit
	require.NoError(t, m.Build(o, func(c []SatLit) { clauses = append(clauses, append([]SatLit{}, c...)) }))

	// staircase: marker[j+1] -> marker[j], one clause per adjacent pair
	assert.Len(t, clauses, 2)

	assumptions := m.Assumptions()
	require.Len(t, assumptions, 1)
	assert.Less(t, assumptions[0], SatLit(0))
}

func TestContourMarkersAppendInstanceMarkersSkipsMonotonic(t *testing.T) {
	ss := nonMonotonicSortedSignature(3)
	ss.Distinct[0].Monotonic = true
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewContourMarkers(ss)
	require.NoError(t, m.Build(o, func([]SatLit) {}))

	clause := m.AppendInstanceMarkers(nil, map[sig.SourceSort]int{0: 2})
	assert.Empty(t, clause, "a monotonic sort never gets an instance marker")
}

func TestContourMarkersInterpretMatchesFailedAssumption(t *testing.T) {
	ss := nonMonotonicSortedSignature(2)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewContourMarkers(ss)
	require.NoError(t, m.Build(o, func([]SatLit) {}))

	failed := m.Assumptions() // pretend the assumption itself failed
	report := m.Interpret(failed)
	assert.True(t, report.Sorts[0])
}

func TestContourMarkersEmitTotalityEscapeLiteralIsPositive(t *testing.T) {
	ss := nonMonotonicSortedSignature(2)
	s := &sig.Signature{
		Functions: []sig.FunctionSymbol{{Name: "f0", Arity: 0, ResultSort: 0}},
	}
	ss.Sig = s
	ss.FunctionSignatures[0] = []sig.SourceSort{0}

	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewContourMarkers(ss)
	require.NoError(t, m.Build(o, func([]SatLit) {}))

	var clauses [][]SatLit
	m.EmitTotality(o, 0, func(c []SatLit) { clauses = append(clauses, append([]SatLit{}, c...)) })
	require.Len(t, clauses, 2, "one totality clause per candidate result value 1..size")

	for _, c := range clauses {
		marker := c[len(c)-1]
		assert.Greater(t, marker, SatLit(0), "the escape marker literal must be positive, or every totality clause is trivially satisfied")
	}
}

func TestSbmeamMarkersAssumptionsArePositive(t *testing.T) {
	ss := nonMonotonicSortedSignature(2)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewSbmeamMarkers(ss)
	require.NoError(t, m.Build(o, func([]SatLit) {}))

	for _, a := range m.Assumptions() {
		assert.Greater(t, a, SatLit(0))
	}
}

func TestSbmeamMarkersInterpretDistinguishesTotAndInst(t *testing.T) {
	ss := nonMonotonicSortedSignature(2)
	o, err := Reset(ss, sig.OrderOccurrence, nil)
	require.NoError(t, err)

	m := NewSbmeamMarkers(ss)
	require.NoError(t, m.Build(o, func([]SatLit) {}))

	totLit := Pos(m.tot[0])
	report := m.Interpret([]SatLit{totLit})
	assert.True(t, report.TotFailed[0])
	assert.False(t, report.InstFailed[0])
}
