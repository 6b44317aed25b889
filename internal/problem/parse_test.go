package problem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/sig"
)

const unaryConstantIdentity = `
sort 0
distinct 0 0
func 0 0 0
func 1 0 0
clause ~f0()=X0 ~f1()=X1 X0=X1
`

func TestParseUnaryConstantIdentity(t *testing.T) {
	p, ss, err := Parse(strings.NewReader(unaryConstantIdentity))
	require.NoError(t, err)

	assert.Len(t, p.Clauses, 1)
	assert.Equal(t, []sig.DistinctSort{0}, ss.DistinctSorts)
	assert.Equal(t, sig.DistinctSort(0), ss.Parent[0])

	c := p.Clauses[0]
	assert.Len(t, c.Literals, 3)
	assert.Equal(t, KindFuncEq, c.Literals[0].Kind)
	assert.False(t, c.Literals[0].Positive)
	assert.Equal(t, KindVarEq, c.Literals[2].Kind)
	assert.True(t, c.Literals[2].Positive)
}

func TestParseDirectives(t *testing.T) {
	const src = `
sort 0
distinct 0 0
min 0 2
max 0 5
monotonic 0
bound 0 3
pred 0 1 0
clause p0(X0) ~p0(X1)
`
	p, ss, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	info := ss.Distinct[0]
	require.NotNil(t, info)
	assert.Equal(t, 2, info.Min)
	assert.Equal(t, 5, info.Max)
	assert.True(t, info.Monotonic)
	assert.Equal(t, 3, ss.SortBounds[0])
	assert.Len(t, p.Clauses, 1)
}

func TestParseRejectsUnknownDirective(t *testing.T) {
	_, _, err := Parse(strings.NewReader("bogus 1 2\n"))
	assert.Error(t, err)
}

func TestParseRejectsMalformedLiteral(t *testing.T) {
	const src = `
sort 0
distinct 0 0
clause X0 X1
`
	_, _, err := Parse(strings.NewReader(src))
	assert.Error(t, err)
}
