package encode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOdometerEnumeratesInOrder(t *testing.T) {
	var got [][]int
	ForEach([]int{2, 3}, func(vals []int) {
		got = append(got, append([]int{}, vals...))
	})

	want := [][]int{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 2}, {2, 3},
	}
	assert.Equal(t, want, got)
}

func TestOdometerEmptyBoundsYieldsOneGrounding(t *testing.T) {
	calls := 0
	ForEach(nil, func(vals []int) { calls++ })
	assert.Equal(t, 1, calls)
}

func TestOdometerZeroBoundYieldsNoGroundings(t *testing.T) {
	calls := 0
	ForEach([]int{2, 0}, func(vals []int) { calls++ })
	assert.Equal(t, 0, calls)
}
