// Package config collects the driver's tunable knobs (spec §6) behind
// a functional-options constructor, the way the teacher wires its
// solver options.
package config

import (
	"github.com/sirupsen/logrus"

	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

// EnumerationStrategy selects which domain-size search drives the
// driver's Enumerate phase.
type EnumerationStrategy int

const (
	StrategySbmeam EnumerationStrategy = iota
	StrategyContour
	StrategySmt
)

// AdjustSorts selects whether monotonicity helper axioms are injected
// before sort inference runs (spec §6 adjustSorts).
type AdjustSorts int

const (
	AdjustOff AdjustSorts = iota
	AdjustPredicate
	AdjustFunction
)

// Options holds every value spec §6's configuration table names.
type Options struct {
	Log logrus.FieldLogger

	EnumerationStrategy EnumerationStrategy
	StartSize           int
	SymmetryRatio       float64
	SizeWeightRatio     int
	WidgetOrder         encode.WidgetOrder
	SymbolOrder         sig.SymbolOrder
	DetectSortBounds    bool
	AdjustSorts         AdjustSorts
	KeepSbeamGenerators bool
	RandomTraversals    bool
	RandomSeed          int64
}

// Option mutates an Options value under construction.
type Option func(*Options) error

// New builds an Options from defaults overridden by opts, in the
// teacher's functional-options style.
func New(opts ...Option) (*Options, error) {
	o := Options{
		Log:             logrus.StandardLogger(),
		StartSize:       1,
		SymmetryRatio:   1.0,
		SizeWeightRatio: 1,
		WidgetOrder:     encode.OrderDiagonal,
		SymbolOrder:     sig.OrderOccurrence,
		RandomSeed:      1,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Options) error {
		o.Log = log
		return nil
	}
}

func WithEnumerationStrategy(s EnumerationStrategy) Option {
	return func(o *Options) error {
		o.EnumerationStrategy = s
		return nil
	}
}

func WithStartSize(n int) Option {
	return func(o *Options) error {
		o.StartSize = n
		return nil
	}
}

func WithSymmetryRatio(r float64) Option {
	return func(o *Options) error {
		o.SymmetryRatio = r
		return nil
	}
}

func WithSizeWeightRatio(r int) Option {
	return func(o *Options) error {
		o.SizeWeightRatio = r
		return nil
	}
}

func WithWidgetOrder(w encode.WidgetOrder) Option {
	return func(o *Options) error {
		o.WidgetOrder = w
		return nil
	}
}

func WithSymbolOrder(s sig.SymbolOrder) Option {
	return func(o *Options) error {
		o.SymbolOrder = s
		return nil
	}
}

func WithDetectSortBounds(b bool) Option {
	return func(o *Options) error {
		o.DetectSortBounds = b
		return nil
	}
}

func WithAdjustSorts(a AdjustSorts) Option {
	return func(o *Options) error {
		o.AdjustSorts = a
		return nil
	}
}

func WithKeepSbeamGenerators(b bool) Option {
	return func(o *Options) error {
		o.KeepSbeamGenerators = b
		return nil
	}
}

func WithRandomTraversals(b bool) Option {
	return func(o *Options) error {
		o.RandomTraversals = b
		return nil
	}
}

func WithRandomSeed(seed int64) Option {
	return func(o *Options) error {
		o.RandomSeed = seed
		return nil
	}
}
