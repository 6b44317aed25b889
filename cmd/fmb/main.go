package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/go-fmb/fmb/internal/config"
	"github.com/go-fmb/fmb/internal/driver"
	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/model"
	"github.com/go-fmb/fmb/internal/problem"
	"github.com/go-fmb/fmb/internal/sig"
)

const defaultTimeout = 0 // 0 disables the deadline

// flags defined globally so that they appear on the test binary too
var (
	inputPath = pflag.StringP("input", "i", "", "path to the flattened problem file (- for stdin)")

	strategy = pflag.String(
		"enumeration-strategy", "sbmeam", "domain-size enumeration strategy: sbmeam, contour, or smt")

	startSize = pflag.Int(
		"start-size", 1, "initial candidate size per sort")

	symmetryRatio = pflag.Float64(
		"symmetry-ratio", 1.0, "multiplier for canonicity width")

	sizeWeightRatio = pflag.Int(
		"size-weight-ratio", 1, "alternator ratio between FIFO and estimated-weight picking (contour)")

	widgetOrder = pflag.String(
		"widget-order", "diagonal", "symmetry ordering: function-first, argument-first, or diagonal")

	symbolOrder = pflag.String(
		"symbol-order", "occurrence", "symbol ordering: occurrence, usage, or preprocessed-usage")

	keepSbeamGenerators = pflag.Bool(
		"keep-sbeam-generators", false, "retain old generators in the heap after use")

	randomTraversals = pflag.Bool(
		"random-traversals", false, "shuffle clauses before each SAT call")

	randomSeed = pflag.Int64(
		"random-seed", 1, "seed for the random-traversals clause shuffle")

	timeoutSeconds = pflag.Int(
		"timeout", defaultTimeout, "wall-clock budget in seconds, 0 disables the deadline")

	debug = pflag.Bool("debug", false, "use debug log level")
)

func main() {
	pflag.Parse()

	log := logrus.New()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	opt, err := buildOptions(log)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	p, ss, err := readProblem(*inputPath)
	if err != nil {
		log.WithError(err).Fatal("failed to read problem")
	}

	d := driver.New(p, ss, opt)
	if *timeoutSeconds > 0 {
		d = d.WithDeadline(time.Now().Add(time.Duration(*timeoutSeconds) * time.Second))
	}

	result := d.Run()
	log.WithField("status", result.Status).Info("main loop finished")

	switch result.Status {
	case driver.Satisfiable:
		printModel(log, result.Model)
	case driver.GaveUp:
		log.WithError(result.Err).Error("gave up")
		os.Exit(1)
	}

	os.Exit(exitCode(result.Status))
}

func readProblem(path string) (*problem.Problem, *sig.SortedSignature, error) {
	if path == "" || path == "-" {
		return problem.Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return problem.Parse(f)
}

func buildOptions(log logrus.FieldLogger) (*config.Options, error) {
	var strat config.EnumerationStrategy
	switch *strategy {
	case "contour":
		strat = config.StrategyContour
	case "smt":
		strat = config.StrategySmt
	default:
		strat = config.StrategySbmeam
	}

	var order encode.WidgetOrder
	switch *widgetOrder {
	case "function-first":
		order = encode.OrderFunctionFirst
	case "argument-first":
		order = encode.OrderArgumentFirst
	default:
		order = encode.OrderDiagonal
	}

	var symOrder sig.SymbolOrder
	switch *symbolOrder {
	case "usage":
		symOrder = sig.OrderUsage
	case "preprocessed-usage":
		symOrder = sig.OrderPreprocessedUsage
	default:
		symOrder = sig.OrderOccurrence
	}

	return config.New(
		config.WithLogger(log),
		config.WithEnumerationStrategy(strat),
		config.WithStartSize(*startSize),
		config.WithSymmetryRatio(*symmetryRatio),
		config.WithSizeWeightRatio(*sizeWeightRatio),
		config.WithWidgetOrder(order),
		config.WithSymbolOrder(symOrder),
		config.WithKeepSbeamGenerators(*keepSbeamGenerators),
		config.WithRandomTraversals(*randomTraversals),
		config.WithRandomSeed(*randomSeed),
	)
}

func printModel(log logrus.FieldLogger, m *model.Model) {
	if m == nil {
		return
	}
	for d, n := range m.SortSize {
		log.WithFields(logrus.Fields{"sort": d, "size": n}).Info("domain")
	}
	if len(m.Partial) > 0 {
		log.WithField("count", len(m.Partial)).Warn("some deleted-symbol definitions could not be evaluated")
	}
}

func exitCode(s driver.Status) int {
	switch s {
	case driver.Satisfiable:
		return 0
	case driver.Refutation:
		return 1
	default:
		return 2
	}
}
