package enumerate

import (
	"github.com/go-fmb/fmb/internal/encode"
	"github.com/go-fmb/fmb/internal/sig"
)

// buildNoGood translates a marker manager's FailureReport into the
// tagged constraint vector of spec §4.6 Mode B, shared by
// SbmeamStrategy and the optional SMT-backed strategy.
func buildNoGood(ss *sig.SortedSignature, report encode.FailureReport) NoGood {
	ng := NoGood{}
	for d := range report.Sorts {
		info := ss.Distinct[d]
		switch {
		case report.TotFailed != nil && report.TotFailed[d]:
			if info.Monotonic {
				ng[d] = taggedBound{Tag: TagLeq, Value: info.Current}
			} else {
				ng[d] = taggedBound{Tag: TagEq, Value: info.Current}
			}
		case report.InstFailed != nil && report.InstFailed[d]:
			ng[d] = taggedBound{Tag: TagGeq, Value: info.Current}
		default:
			ng[d] = taggedBound{Tag: TagEq, Value: info.Current}
		}
	}
	return ng
}
