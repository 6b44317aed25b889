// Package sig holds the read-only signature data that the core consumes
// from the preprocessing pipeline: source sorts, the distinct-sort
// equivalence classes produced by sort inference, and the function and
// predicate symbols that range over them.
package sig

import "fmt"

// NoBound marks a sort or function/predicate that carries no finite
// upper bound, mirroring the source's use of -1 as a sentinel rather
// than a pointer or option type.
const NoBound = -1

// SourceSort identifies a sort as it appears in the input signature.
type SourceSort int

// DistinctSort identifies an equivalence class of SourceSorts produced
// by sort inference. Many SourceSorts may map to one DistinctSort.
type DistinctSort int

// SymbolOrder selects how functions and predicates are ordered for the
// purposes of encoding and symmetry breaking (spec §6: symbolOrder).
type SymbolOrder int

const (
	// OrderOccurrence keeps symbols in the order they were declared.
	OrderOccurrence SymbolOrder = iota
	// OrderUsage sorts symbols by descending UsageCnt.
	OrderUsage
	// OrderPreprocessedUsage also sorts by descending UsageCnt; the
	// signature carries a single usage count, so it orders symbols
	// the same way OrderUsage does.
	OrderPreprocessedUsage
)

// FunctionSymbol describes a single function symbol of the source
// signature. The signature array has length Arity+1; slots
// [0,Arity) are argument sorts and the last slot is the result sort.
type FunctionSymbol struct {
	Name       string
	Arity      int
	ArgSorts   []SourceSort
	ResultSort SourceSort

	// Deleted functions are excluded from encoding; their
	// interpretation is recovered at extraction time from Definition.
	Deleted    bool
	Definition *Definition

	// IsInterpretedNonDefault flags functions like successor/plus
	// that carry a built-in interpretation the core cannot encode.
	IsInterpretedNonDefault bool

	// UsageCnt supports symbolOrder = usage / preprocessedUsage.
	UsageCnt int
}

func (f FunctionSymbol) String() string {
	return fmt.Sprintf("%s/%d", f.Name, f.Arity)
}

// PredicateSymbol describes a predicate symbol. Its signature array has
// length Arity (equality is never represented here — it is inlined by
// the encoder, spec §3).
type PredicateSymbol struct {
	Name     string
	Arity    int
	ArgSorts []SourceSort

	Deleted          bool
	PartiallyDeleted bool
	// Trivial predicates are forced true or false on every grounding
	// by a stored unit clause; the extractor evaluates Definition for
	// them and that table replaces the one read from the assignment
	// (spec §C.3). The encoder still allocates SAT variables for a
	// Trivial predicate unless it is also Deleted.
	Trivial    bool
	Definition *Definition

	IsInterpretedNonDefault bool
	UsageCnt                int
}

func (p PredicateSymbol) String() string {
	return fmt.Sprintf("%s/%d", p.Name, p.Arity)
}

// Definition is the stored defining literal or unit recovered for a
// deleted, partially-deleted, or trivial symbol. Body is evaluated by
// the extractor (spec §4.7) by substituting domain constants for the
// variables in Args.
type Definition struct {
	Args []int // formal variable positions referenced by Body
	Body DefinitionBody
}

// DefinitionBody evaluates a stored definition under a concrete
// argument assignment, returning the defined value (a domain element
// for a function, 0/1 truth for a predicate).
type DefinitionBody interface {
	Eval(args []int) int
}

// FuncID and PredID index into a Signature's Functions/Predicates
// slices. They are small value types so they can key maps cheaply.
type FuncID int
type PredID int

// Signature is the function-free-of-interpreted-theories signature of
// one problem: every function and predicate symbol that preprocessing
// produced, in declaration order.
type Signature struct {
	Functions  []FunctionSymbol
	Predicates []PredicateSymbol
}

func (s *Signature) Func(id FuncID) *FunctionSymbol       { return &s.Functions[id] }
func (s *Signature) Pred(id PredID) *PredicateSymbol       { return &s.Predicates[id] }

// NonDeletedFunctions returns the ids of functions with Deleted == false,
// in the order requested by order.
func (s *Signature) NonDeletedFunctions(order SymbolOrder) []FuncID {
	ids := make([]FuncID, 0, len(s.Functions))
	for i, f := range s.Functions {
		if !f.Deleted {
			ids = append(ids, FuncID(i))
		}
	}
	sortSymbolIDs(ids, order, func(id FuncID) int { return s.Functions[id].UsageCnt })
	return ids
}

// NonDeletedPredicates returns the ids of predicates with Deleted ==
// false, in the order requested by order.
func (s *Signature) NonDeletedPredicates(order SymbolOrder) []PredID {
	ids := make([]PredID, 0, len(s.Predicates))
	for i, p := range s.Predicates {
		if !p.Deleted {
			ids = append(ids, PredID(i))
		}
	}
	sortSymbolIDs(ids, order, func(id PredID) int { return s.Predicates[id].UsageCnt })
	return ids
}

func sortSymbolIDs[T ~int](ids []T, order SymbolOrder, usage func(T) int) {
	if order == OrderOccurrence {
		return
	}
	// Stable sort so OrderOccurrence is a true no-op and ties in
	// OrderUsage/OrderPreprocessedUsage fall back to declaration order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && usage(ids[j-1]) < usage(ids[j]); j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// DistinctConstraint records a relative ordering constraint between two
// distinct sorts discovered by sort inference: Less's current size must
// be <= (or <, if Strict) Greater's current size.
type DistinctConstraint struct {
	Less    DistinctSort
	Greater DistinctSort
	Strict  bool
}

// SortedSignature is the output of sort inference that the core
// consumes read-only (spec §6). It never changes sort size_ bookkeeping
// in place except through DistinctSortInfo.Current, which the
// driver advances between epochs.
type SortedSignature struct {
	Sig *Signature

	Sorts         []SourceSort
	DistinctSorts []DistinctSort

	Parent     map[SourceSort]DistinctSort
	SortBounds map[SourceSort]int // NoBound if unconstrained

	Distinct map[DistinctSort]*DistinctSortInfo

	FunctionSignatures map[FuncID][]SourceSort
	PredicateSignatures map[PredID][]SourceSort

	SortedConstants map[SourceSort][]FuncID
	SortedFunctions map[SourceSort][]FuncID

	// VarEqSorts names, for each distinct sort, the special source
	// sort used for two-variable equalities whose variables carry no
	// other constraint (spec §3, "special sort per distinct parent").
	VarEqSorts map[DistinctSort]SourceSort

	VampireToDistinctParent map[SourceSort]DistinctSort

	// NonStrict and Strict hold the two independent constraint
	// families described in spec §9 Open Question (i): both are
	// applied to fixpoint, independently, by the enumerator.
	NonStrict []DistinctConstraint
	Strict    []DistinctConstraint
}

// DistinctSortInfo tracks the three numbers spec §3 assigns to every
// distinct sort, plus whether enlarging it preserves satisfaction.
type DistinctSortInfo struct {
	Min        int
	Max        int // NoBound if unconstrained
	Current    int
	Monotonic  bool
}

// NewSortedSignature builds an empty SortedSignature over sig, ready for
// population by a problem loader or test fixture. Sorts with no
// constants (spec §9 Open Question (ii)) must still be registered with
// Min=Max=Current=1 by the caller — NewSortedSignature does not invent
// sorts on its own, since it has no clause set to discover them from.
func NewSortedSignature(s *Signature) *SortedSignature {
	return &SortedSignature{
		Sig:                      s,
		Parent:                   make(map[SourceSort]DistinctSort),
		SortBounds:               make(map[SourceSort]int),
		Distinct:                 make(map[DistinctSort]*DistinctSortInfo),
		FunctionSignatures:       make(map[FuncID][]SourceSort),
		PredicateSignatures:      make(map[PredID][]SourceSort),
		SortedConstants:          make(map[SourceSort][]FuncID),
		SortedFunctions:          make(map[SourceSort][]FuncID),
		VarEqSorts:               make(map[DistinctSort]SourceSort),
		VampireToDistinctParent:  make(map[SourceSort]DistinctSort),
	}
}

// SizeOfSource returns the current size of source sort s, i.e. the
// current size of s's distinct parent.
func (ss *SortedSignature) SizeOfSource(s SourceSort) int {
	return ss.Distinct[ss.Parent[s]].Current
}

// BoundOf returns the effective per-variable upper bound for a source
// sort: the minimum of its distinct parent's current size and any
// sortBound declared for the source sort itself (spec §4.2).
func (ss *SortedSignature) BoundOf(s SourceSort) int {
	size := ss.SizeOfSource(s)
	if b, ok := ss.SortBounds[s]; ok && b != NoBound && b < size {
		return b
	}
	return size
}

// CloseConstraints applies NonStrict and Strict constraint families to
// a fixpoint against cur, a per-distinct-sort size map, mutating cur in
// place. Both families are applied independently until neither can grow
// any entry further, per spec §9 Open Question (i).
func (ss *SortedSignature) CloseConstraints(cur map[DistinctSort]int) {
	changed := true
	for changed {
		changed = false
		for _, c := range ss.NonStrict {
			if cur[c.Less] > cur[c.Greater] {
				cur[c.Greater] = cur[c.Less]
				changed = true
			}
		}
		for _, c := range ss.Strict {
			if cur[c.Less] >= cur[c.Greater] {
				cur[c.Greater] = cur[c.Less] + 1
				changed = true
			}
		}
	}
}
