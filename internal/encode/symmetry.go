package encode

import "github.com/go-fmb/fmb/internal/sig"

// WidgetOrder selects how a sort's symmetry ordering enumerates
// GroundedTerms beyond its constants (spec §4.4, spec §6 widgetOrders).
// Every order takes the sort's candidate functions in turn, one term
// each; the orders differ only in the argument values they choose. In
// the formulas below m is the term's index among the non-constant
// terms, j the argument position, and f the function's rank among the
// sort's candidate functions.
type WidgetOrder int

const (
	// OrderFunctionFirst sets argument position j to
	// 1 + ((m + j) mod size).
	OrderFunctionFirst WidgetOrder = iota
	// OrderArgumentFirst sets argument position j to
	// 1 + ((m/size + j + f) mod size).
	OrderArgumentFirst
	// OrderDiagonal applies the diagonal formula
	// 1 + ((m + f) mod size) to every argument position.
	OrderDiagonal
)

// GroundedTerm pairs a function symbol with a concrete argument tuple
// (empty for constants), used as one enumeration position for
// symmetry breaking (spec glossary).
type GroundedTerm struct {
	Func       sig.FuncID
	Args       []int
	IsConstant bool
}

// VarFor returns the SAT variable asserting that the term's grounding
// takes value.
func (g GroundedTerm) VarFor(o *Offsets, value int) SatVar {
	return o.VarIdFunc(g.Func, g.Args, value)
}

// SymmetryOrdering is the ordered sequence T_s of spec §4.4 for one
// source sort.
type SymmetryOrdering struct {
	Sort         sig.SourceSort
	Terms        []GroundedTerm
	NumConstants int
}

// BuildOrdering constructs the first n terms of the symmetry ordering
// for sort, given the sorted signature's constants and functions
// landing in that sort (spec §4.1 step 5). It is rebuilt on every
// Reset since argument-sort sizes, and therefore which argument tuples
// exist, change with sort size.
func BuildOrdering(ss *sig.SortedSignature, sort sig.SourceSort, order WidgetOrder, n int) *SymmetryOrdering {
	so := &SymmetryOrdering{Sort: sort}

	for _, f := range ss.SortedConstants[sort] {
		so.Terms = append(so.Terms, GroundedTerm{Func: f, IsConstant: true})
	}
	so.NumConstants = len(so.Terms)

	functions := ss.SortedFunctions[sort]
	if len(functions) == 0 {
		return so
	}

	for len(so.Terms) < n {
		k := len(so.Terms) - so.NumConstants
		f := functions[k%len(functions)]
		argSorts := ss.FunctionSignatures[f][:len(ss.FunctionSignatures[f])-1]
		rank := indexOf(functions, f)

		args := make([]int, len(argSorts))
		for j, as := range argSorts {
			size := ss.SizeOfSource(as)
			if size <= 0 {
				size = 1
			}
			args[j] = diagonalArg(order, k, rank, j, size)
		}
		so.Terms = append(so.Terms, GroundedTerm{Func: f, Args: args})
	}

	return so
}

func indexOf(fs []sig.FuncID, target sig.FuncID) int {
	for i, f := range fs {
		if f == target {
			return i
		}
	}
	return 0
}

// diagonalArg picks the value of one argument position given the
// active ordering strategy. OrderDiagonal implements spec §4.4's
// formula exactly; the other two strategies use the variants
// documented on their WidgetOrder constants.
func diagonalArg(order WidgetOrder, m, f, position, size int) int {
	switch order {
	case OrderFunctionFirst:
		return 1 + ((m + position) % size)
	case OrderArgumentFirst:
		return 1 + ((m/size + position + f) % size)
	default: // OrderDiagonal
		return 1 + ((m + f) % size)
	}
}

// RestrictedTotality emits the restricted-totality clause of spec
// §4.4 for sort at size n: the n-th GroundedTerm may only take one of
// the values 1..n. The clauses for every size 1..n together break the
// n! renaming symmetry inductively, so a solver must hold all of them,
// not only the one for the current size.
func RestrictedTotality(o *Offsets, ordering *SymmetryOrdering, n int) []SatLit {
	if n < 1 || n > len(ordering.Terms) {
		return nil
	}
	g := ordering.Terms[n-1]
	clause := make([]SatLit, n)
	for v := 1; v <= n; v++ {
		clause[v-1] = Pos(g.VarFor(o, v))
	}
	return clause
}

// CanonicityClauses emits the canonicity axioms of spec §4.4 for the
// constants of ordering at current size n, using width
// w = min(symmetryRatio * maxSize, numConstants): a constant at
// position i may only introduce the fresh value n if some earlier
// constant introduced n-1.
func CanonicityClauses(o *Offsets, ordering *SymmetryOrdering, n int, symmetryRatio float64, maxSize int) [][]SatLit {
	if n < 2 {
		return nil
	}
	w := int(symmetryRatio * float64(maxSize))
	if w > ordering.NumConstants {
		w = ordering.NumConstants
	}

	var clauses [][]SatLit
	for i := 1; i < w; i++ {
		gi := ordering.Terms[i]
		clause := []SatLit{Neg(gi.VarFor(o, n))}
		for j := 0; j < i; j++ {
			gj := ordering.Terms[j]
			clause = append(clause, Pos(gj.VarFor(o, n-1)))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}
