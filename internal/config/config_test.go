package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

func TestNewDefaults(t *testing.T) {
	o, err := New()
	require.NoError(t, err)

	assert.Equal(t, StrategySbmeam, o.EnumerationStrategy)
	assert.Equal(t, 1, o.StartSize)
	assert.Equal(t, 1.0, o.SymmetryRatio)
	assert.Equal(t, 1, o.SizeWeightRatio)
	assert.Equal(t, encode.OrderDiagonal, o.WidgetOrder)
	assert.Equal(t, sig.OrderOccurrence, o.SymbolOrder)
	assert.False(t, o.DetectSortBounds)
	assert.Equal(t, AdjustOff, o.AdjustSorts)
	assert.False(t, o.KeepSbeamGenerators)
	assert.False(t, o.RandomTraversals)
	assert.Equal(t, int64(1), o.RandomSeed)
	assert.NotNil(t, o.Log)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	o, err := New(
		WithEnumerationStrategy(StrategyContour),
		WithStartSize(3),
		WithSymmetryRatio(0.5),
		WithSizeWeightRatio(2),
		WithWidgetOrder(encode.OrderArgumentFirst),
		WithSymbolOrder(sig.OrderUsage),
		WithDetectSortBounds(true),
		WithAdjustSorts(AdjustFunction),
		WithKeepSbeamGenerators(true),
		WithRandomTraversals(true),
		WithRandomSeed(42),
	)
	require.NoError(t, err)

	assert.Equal(t, StrategyContour, o.EnumerationStrategy)
	assert.Equal(t, 3, o.StartSize)
	assert.Equal(t, 0.5, o.SymmetryRatio)
	assert.Equal(t, 2, o.SizeWeightRatio)
	assert.Equal(t, encode.OrderArgumentFirst, o.WidgetOrder)
	assert.Equal(t, sig.OrderUsage, o.SymbolOrder)
	assert.True(t, o.DetectSortBounds)
	assert.Equal(t, AdjustFunction, o.AdjustSorts)
	assert.True(t, o.KeepSbeamGenerators)
	assert.True(t, o.RandomTraversals)
	assert.Equal(t, int64(42), o.RandomSeed)
}

func TestWithLoggerOverridesStandardLogger(t *testing.T) {
	custom := logrus.New()
	o, err := New(WithLogger(custom))
	require.NoError(t, err)
	assert.Same(t, custom, o.Log)
}

func TestOptionErrorPropagates(t *testing.T) {
	boom := assertErr{}
	_, err := New(func(o *Options) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
