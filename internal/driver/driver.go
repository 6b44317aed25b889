// Package driver implements the main loop of spec §2 and §6: the
// state machine that ties the encoder, marker manager, SAT solver,
// and domain-size enumerator together into one MainLoopResult, and
// the deadline/error-kind policy of spec §5 and §7.
package driver

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-fmb/fmb/internal/config"
	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/enumerate"
	"github.com/go-fmb/fmb/internal/model"
	"github.com/go-fmb/fmb/internal/problem"
	"github.com/go-fmb/fmb/internal/satsolver"
	"github.com/go-fmb/fmb/internal/sig"
)

// Status is the final outcome the driver reports, per spec §6
// "Produced".
type Status int

const (
	Satisfiable Status = iota
	Refutation
	Inappropriate
	TimeLimit
	RefutationNotFound
	GaveUp
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "SATISFIABLE"
	case Refutation:
		return "REFUTATION"
	case Inappropriate:
		return "INAPPROPRIATE"
	case TimeLimit:
		return "TIME_LIMIT"
	case RefutationNotFound:
		return "REFUTATION_NOT_FOUND"
	default:
		return "GAVE_UP"
	}
}

// Result is the MainLoopResult of spec §6.
type Result struct {
	Status Status
	Model  *model.Model
	Err    error
}

// Driver runs the Initial -> EncodeAndSolve -> ... state machine of
// spec §2 over one Problem/SortedSignature pair.
type Driver struct {
	log logrus.FieldLogger
	opt *config.Options

	p  *problem.Problem
	ss *sig.SortedSignature

	markers     encode.MarkerManager
	strategy    enumerate.Strategy
	solv        *satsolver.Solver
	lastOffsets *encode.Offsets

	deadline    time.Time
	hasDeadline bool
}

// New constructs a Driver. p and ss are consumed read-only; opt
// selects which marker mode and enumeration strategy drive the loop.
func New(p *problem.Problem, ss *sig.SortedSignature, opt *config.Options) *Driver {
	d := &Driver{
		log: opt.Log,
		opt: opt,
		p:   p,
		ss:  ss,
	}

	switch opt.EnumerationStrategy {
	case config.StrategyContour:
		d.markers = encode.NewContourMarkers(ss)
		d.strategy = enumerate.NewContourStrategy(opt.SizeWeightRatio)
	case config.StrategySmt:
		d.markers = encode.NewSbmeamMarkers(ss)
		d.strategy = newSmtStrategyOrFallback(opt.Log)
	default:
		d.markers = encode.NewSbmeamMarkers(ss)
		d.strategy = enumerate.NewSbmeamStrategy(opt.KeepSbeamGenerators)
	}

	return d
}

// WithDeadline sets the monotonic deadline checked between phases
// (spec §5).
func (d *Driver) WithDeadline(t time.Time) *Driver {
	d.deadline = t
	d.hasDeadline = true
	return d
}

// Run drives the state machine to completion.
func (d *Driver) Run() Result {
	if d.p.Inappropriate() {
		return Result{Status: Inappropriate}
	}

	start := initialSizeVector(d.ss, d.opt.StartSize)
	d.strategy.Init(d.ss, start)
	applySizeVector(d.ss, start)

	for {
		if d.deadlineExpired() {
			return Result{Status: TimeLimit}
		}

		res, err := d.encodeAndSolve()
		switch {
		case err != nil && errors.Is(err, encode.ErrCannotEncode):
			return d.onCannotEncode()
		case err != nil:
			return Result{Status: GaveUp, Err: err}
		case res == satsolver.Sat:
			return Result{Status: Satisfiable, Model: model.Extract(d.ss, d.lastOffsets, d.solv, d.markers)}
		}

		// UNSAT: learn and try to grow.
		report := d.markers.Interpret(d.solv.FailedAssumptions())
		d.strategy.LearnNogood(report)

		next, ok := d.strategy.IncreaseSizes()
		if !ok {
			if d.strategy.IsComplete() {
				return Result{Status: Refutation}
			}
			return Result{Status: RefutationNotFound}
		}
		applySizeVector(d.ss, next)
	}
}

func (d *Driver) onCannotEncode() Result {
	// spec §7 Cannot-encode: the run ends at the first size vector
	// whose layout overflows the SAT variable space; no other size
	// vector is tried. A complete strategy reports RefutationNotFound
	// (satisfiability was never disproved at this or any other size);
	// an incomplete one reports GaveUp carrying ErrCannotEncode.
	if d.strategy.IsComplete() {
		return Result{Status: RefutationNotFound}
	}
	return Result{Status: GaveUp, Err: encode.ErrCannotEncode}
}

func (d *Driver) deadlineExpired() bool {
	return d.hasDeadline && !time.Now().Before(d.deadline)
}

// encodeAndSolve performs one reset/encode/solve epoch (spec §4.1,
// §4.2, §5's "every reset returns ... to a pristine state").
func (d *Driver) encodeAndSolve() (satsolver.Result, error) {
	o, err := encode.Reset(d.ss, d.opt.SymbolOrder, d.log)
	if err != nil {
		return satsolver.Unknown, err
	}

	d.solv = satsolver.New()
	d.lastOffsets = o

	var clauses [][]encode.SatLit
	sink := func(c []encode.SatLit) { clauses = append(clauses, append([]encode.SatLit{}, c...)) }

	if err := d.markers.Build(o, sink); err != nil {
		return satsolver.Unknown, err
	}

	encode.EncodeClauses(d.p, o, d.markers, sink)
	encode.EmitFunctionalDefinitions(o, d.ss.Sig.NonDeletedFunctions(d.opt.SymbolOrder), d.markers, sink)
	for _, f := range d.ss.Sig.NonDeletedFunctions(d.opt.SymbolOrder) {
		d.markers.EmitTotality(o, f, sink)
	}
	d.emitSymmetry(o, sink)

	if d.opt.RandomTraversals {
		d.solv.RandomizeForNextAssignment(d.opt.RandomSeed)
	}

	d.solv.EnsureVarCount(o.MaxVar)
	i := 0
	d.solv.AddClausesIter(func() ([]encode.SatLit, bool) {
		if i >= len(clauses) {
			return nil, false
		}
		c := clauses[i]
		i++
		return c, true
	})

	res := d.solv.SolveUnderAssumptions(d.markers.Assumptions())
	return res, nil
}

func (d *Driver) emitSymmetry(o *encode.Offsets, sink encode.Sink) {
	for _, s := range d.ss.Sorts {
		info := d.ss.Distinct[d.ss.Parent[s]]
		n := info.Current
		ordering := encode.BuildOrdering(d.ss, s, d.opt.WidgetOrder, n)
		if len(ordering.Terms) == 0 {
			continue
		}
		for m := 1; m <= n; m++ {
			if clause := encode.RestrictedTotality(o, ordering, m); clause != nil {
				sink(clause)
			}
		}
		for _, c := range encode.CanonicityClauses(o, ordering, n, d.opt.SymmetryRatio, n) {
			sink(c)
		}
	}
}

func initialSizeVector(ss *sig.SortedSignature, startSize int) enumerate.SizeVector {
	v := enumerate.SizeVector{}
	for d, info := range ss.Distinct {
		n := startSize
		if n < info.Min {
			n = info.Min
		}
		if n < 1 {
			n = 1
		}
		v[d] = n
	}
	ss.CloseConstraints(v)
	return v
}

func applySizeVector(ss *sig.SortedSignature, v enumerate.SizeVector) {
	for d, n := range v {
		ss.Distinct[d].Current = n
	}
}

func newSmtStrategyOrFallback(log logrus.FieldLogger) enumerate.Strategy {
	s := newSmtStrategy()
	if s != nil {
		return s
	}
	if log != nil {
		log.Warn("SMT enumeration strategy requested but this binary was built without cgo; falling back to SBMEAM")
	}
	return enumerate.NewSbmeamStrategy(false)
}
