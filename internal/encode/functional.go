package encode

import "github.com/go-fmb/fmb/internal/sig"

// EmitFunctionalDefinitions emits, for every non-deleted function f and
// every argument tuple, the pairwise clauses
//
//	~(f(x) = y) | ~(f(x) = z)    for y < z
//
// that forbid f from taking two distinct result values on the same
// arguments (spec §4.3). Combined with the totality axioms emitted by
// the marker manager (spec §4.5), this makes f's interpretation a total
// function.
func EmitFunctionalDefinitions(o *Offsets, funcs []sig.FuncID, markers MarkerAppender, sink Sink) {
	for _, f := range funcs {
		slots := o.FuncSlotSizes(f)
		if len(slots) == 0 {
			continue
		}
		argSlots := slots[:len(slots)-1]
		resultSize := slots[len(slots)-1]
		if resultSize < 2 {
			continue // a single possible result cannot disagree with itself
		}

		sorts := o.Sig.FunctionSignatures[f]

		ForEach(argSlots, func(args []int) {
			for y := 1; y <= resultSize; y++ {
				for z := y + 1; z <= resultSize; z++ {
					vy := o.VarIdFunc(f, args, y)
					vz := o.VarIdFunc(f, args, z)
					clause := []SatLit{Neg(vy), Neg(vz)}

					if markers != nil {
						touched := map[sig.SourceSort]int{}
						for i, sort := range sorts[:len(args)] {
							trackTouched(touched, sort, args[i])
						}
						trackTouched(touched, sorts[len(args)], z)
						clause = markers.AppendInstanceMarkers(clause, touched)
					}

					sink(clause)
				}
			}
		})
	}
}
