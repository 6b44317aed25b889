package problem

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-fmb/fmb/internal/sig"
)

// Parse reads a minimal textual format describing an already-flattened,
// already-sorted clause set and returns the Problem plus the Signature
// and SortedSignature it declares. This is an input adapter, not a
// clausifier: it performs no sort inference and accepts only the flat
// literal forms spec §3 defines.
//
// Grammar (one directive or clause per line, blank lines and lines
// starting with '#' ignored):
//
//	sort <sourceSort>
//	distinct <sourceSort> <distinctSort>
//	bound <sourceSort> <n>            (n = -1 for no bound)
//	min <distinctSort> <n>
//	max <distinctSort> <n>            (n = -1 for no bound)
//	monotonic <distinctSort>
//	func <funcID> <arity> <argSort...> <resultSort>
//	pred <predID> <arity> <argSort...>
//	clause <lit> <lit> ...
//
// where <lit> is one of:
//
//	X<i>=X<j>            ~X<i>=X<j>
//	f<id>(X<i>,...)=X<j> ~f<id>(X<i>,...)=X<j>
//	p<id>(X<i>,...)      ~p<id>(X<i>,...)
func Parse(r io.Reader) (*Problem, *sig.SortedSignature, error) {
	s := &sig.Signature{}
	ss := sig.NewSortedSignature(s)
	p := &Problem{}

	funcArity := map[sig.FuncID]int{}
	predArity := map[sig.PredID]int{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if err := parseDirective(fields, s, ss, p, funcArity, predArity); err != nil {
			return nil, nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "reading problem")
	}
	return p, ss, nil
}

func parseDirective(fields []string, s *sig.Signature, ss *sig.SortedSignature, p *Problem,
	funcArity map[sig.FuncID]int, predArity map[sig.PredID]int) error {
	switch fields[0] {
	case "sort":
		src, err := atoSort(fields[1])
		if err != nil {
			return err
		}
		if _, ok := ss.SortBounds[src]; !ok {
			ss.SortBounds[src] = sig.NoBound
		}
		ss.Sorts = append(ss.Sorts, src)
	case "distinct":
		src, err := atoSort(fields[1])
		if err != nil {
			return err
		}
		dst, err := atoDistinct(fields[2])
		if err != nil {
			return err
		}
		ss.Parent[src] = dst
		ss.VampireToDistinctParent[src] = dst
		if _, ok := ss.Distinct[dst]; !ok {
			ss.Distinct[dst] = &sig.DistinctSortInfo{Min: 1, Max: sig.NoBound}
			ss.DistinctSorts = append(ss.DistinctSorts, dst)
		}
	case "bound":
		src, err := atoSort(fields[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrap(err, "bound")
		}
		ss.SortBounds[src] = n
	case "min":
		d, err := atoDistinct(fields[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrap(err, "min")
		}
		ss.Distinct[d].Min = n
		if ss.Distinct[d].Current < n {
			ss.Distinct[d].Current = n
		}
	case "max":
		d, err := atoDistinct(fields[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrap(err, "max")
		}
		ss.Distinct[d].Max = n
	case "monotonic":
		d, err := atoDistinct(fields[1])
		if err != nil {
			return err
		}
		ss.Distinct[d].Monotonic = true
	case "func":
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(err, "func id")
		}
		fid := sig.FuncID(id)
		arity, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrap(err, "func arity")
		}
		if len(fields) != 4+arity {
			return errors.Errorf("func %d: expected %d sorts, got %d", id, arity+1, len(fields)-3)
		}
		sorts, err := atoSorts(fields[3 : 3+arity+1])
		if err != nil {
			return err
		}
		for int(fid) >= len(s.Functions) {
			s.Functions = append(s.Functions, sig.FunctionSymbol{})
		}
		s.Functions[fid] = sig.FunctionSymbol{
			Name:       "f" + fields[1],
			Arity:      arity,
			ArgSorts:   sorts[:arity],
			ResultSort: sorts[arity],
		}
		funcArity[fid] = arity
		ss.FunctionSignatures[fid] = sorts
	case "pred":
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrap(err, "pred id")
		}
		pid := sig.PredID(id)
		arity, err := strconv.Atoi(fields[2])
		if err != nil {
			return errors.Wrap(err, "pred arity")
		}
		if len(fields) != 3+arity {
			return errors.Errorf("pred %d: expected %d sorts, got %d", id, arity, len(fields)-3)
		}
		sorts, err := atoSorts(fields[3 : 3+arity])
		if err != nil {
			return err
		}
		for int(pid) >= len(s.Predicates) {
			s.Predicates = append(s.Predicates, sig.PredicateSymbol{})
		}
		s.Predicates[pid] = sig.PredicateSymbol{
			Name:     "p" + fields[1],
			Arity:    arity,
			ArgSorts: sorts,
		}
		predArity[pid] = arity
		ss.PredicateSignatures[pid] = sorts
	case "clause":
		c, err := parseClause(fields[1:], s, ss)
		if err != nil {
			return err
		}
		p.Clauses = append(p.Clauses, c)
	default:
		return errors.Errorf("unknown directive %q", fields[0])
	}
	return nil
}

func atoSort(f string) (sig.SourceSort, error) {
	n, err := strconv.Atoi(f)
	if err != nil {
		return 0, errors.Wrapf(err, "sort id %q", f)
	}
	return sig.SourceSort(n), nil
}

func atoDistinct(f string) (sig.DistinctSort, error) {
	n, err := strconv.Atoi(f)
	if err != nil {
		return 0, errors.Wrapf(err, "distinct sort id %q", f)
	}
	return sig.DistinctSort(n), nil
}

func atoSorts(fs []string) ([]sig.SourceSort, error) {
	out := make([]sig.SourceSort, len(fs))
	for i, f := range fs {
		s, err := atoSort(f)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func parseClause(litFields []string, s *sig.Signature, ss *sig.SortedSignature) (Clause, error) {
	c := Clause{VarSort: map[Var]sig.SourceSort{}}
	for _, field := range litFields {
		lit, err := parseLiteral(field)
		if err != nil {
			return Clause{}, err
		}
		c.Literals = append(c.Literals, lit)
		track := func(v Var) {
			if int(v)+1 > c.MaxVar {
				c.MaxVar = int(v) + 1
			}
		}
		switch lit.Kind {
		case KindVarEq:
			track(lit.X)
			track(lit.Y)
		case KindFuncEq:
			for i, a := range lit.Args {
				track(a)
				c.VarSort[a] = ss.FunctionSignatures[lit.Func][i]
			}
			track(lit.Result)
			c.VarSort[lit.Result] = ss.FunctionSignatures[lit.Func][len(lit.Args)]
		case KindPred:
			for i, a := range lit.Args {
				track(a)
				c.VarSort[a] = ss.PredicateSignatures[lit.Pred][i]
			}
		}
	}
	return c, nil
}

func parseLiteral(field string) (Literal, error) {
	positive := true
	if strings.HasPrefix(field, "~") {
		positive = false
		field = field[1:]
	}
	switch {
	case strings.HasPrefix(field, "X"):
		parts := strings.SplitN(field, "=", 2)
		if len(parts) != 2 {
			return Literal{}, errors.Errorf("malformed var-eq literal %q", field)
		}
		x, err := parseVar(parts[0])
		if err != nil {
			return Literal{}, err
		}
		y, err := parseVar(parts[1])
		if err != nil {
			return Literal{}, err
		}
		return Literal{Kind: KindVarEq, Positive: positive, X: x, Y: y}, nil
	case strings.HasPrefix(field, "f"):
		name, argStr, result, err := splitApplication(field, "=")
		if err != nil {
			return Literal{}, err
		}
		id, err := strconv.Atoi(name[1:])
		if err != nil {
			return Literal{}, errors.Wrap(err, "func id")
		}
		args, err := parseVars(argStr)
		if err != nil {
			return Literal{}, err
		}
		res, err := parseVar(result)
		if err != nil {
			return Literal{}, err
		}
		return Literal{Kind: KindFuncEq, Positive: positive, Func: sig.FuncID(id), Args: args, Result: res}, nil
	case strings.HasPrefix(field, "p"):
		name, argStr, _, err := splitApplication(field, "")
		if err != nil {
			return Literal{}, err
		}
		id, err := strconv.Atoi(name[1:])
		if err != nil {
			return Literal{}, errors.Wrap(err, "pred id")
		}
		args, err := parseVars(argStr)
		if err != nil {
			return Literal{}, err
		}
		return Literal{Kind: KindPred, Positive: positive, Pred: sig.PredID(id), Args: args}, nil
	}
	return Literal{}, errors.Errorf("unrecognised literal %q", field)
}

// splitApplication splits "name(a,b,c)[sep result]" into name, "a,b,c",
// and result (empty if sep == "").
func splitApplication(field, sep string) (name, args, result string, err error) {
	open := strings.IndexByte(field, '(')
	close := strings.IndexByte(field, ')')
	if open < 0 || close < open {
		return "", "", "", errors.Errorf("malformed application %q", field)
	}
	name = field[:open]
	args = field[open+1 : close]
	rest := field[close+1:]
	if sep == "" {
		return name, args, "", nil
	}
	if !strings.HasPrefix(rest, sep) {
		return "", "", "", errors.Errorf("malformed application %q", field)
	}
	return name, args, rest[len(sep):], nil
}

func parseVar(f string) (Var, error) {
	f = strings.TrimSpace(f)
	if !strings.HasPrefix(f, "X") {
		return 0, errors.Errorf("expected variable, got %q", f)
	}
	n, err := strconv.Atoi(f[1:])
	if err != nil {
		return 0, errors.Wrapf(err, "variable %q", f)
	}
	return Var(n), nil
}

func parseVars(f string) ([]Var, error) {
	if strings.TrimSpace(f) == "" {
		return nil, nil
	}
	parts := strings.Split(f, ",")
	out := make([]Var, len(parts))
	for i, part := range parts {
		v, err := parseVar(part)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
