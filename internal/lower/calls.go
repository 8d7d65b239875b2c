package lower

import (
	"fmt"

	"github.com/veloce-lang/veloce/internal/mir"
	"github.com/veloce-lang/veloce/internal/target"
)

// buildCall materializes one call op bound to a driver entry point, checking
// the argument list against the entry point's declared signature. A mismatch
// is a defect in the calling pass, not in the input program.
func buildCall(fn target.RuntimeFunc, args []*mir.Value) (*mir.Call, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("call @%s: got %d argument(s), signature takes %d", fn.Symbol, len(args), len(fn.Params))
	}
	for i, a := range args {
		if !mir.TypeEqual(a.Type, fn.Params[i]) {
			return nil, fmt.Errorf("call @%s: argument %d is %s, signature takes %s", fn.Symbol, i, a.Type, fn.Params[i])
		}
	}
	if len(fn.Results) > 1 {
		return nil, fmt.Errorf("call @%s: multi-result entry points are not supported", fn.Symbol)
	}
	var result mir.Type
	if len(fn.Results) == 1 {
		result = fn.Results[0]
	}
	return mir.NewCall(fn.Symbol, args, result), nil
}
