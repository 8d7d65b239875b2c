// Package rewrite drives pattern-based op substitution over MIR functions.
// Patterns stay pure: they inspect one op and hand back the replacement ops
// plus result bindings; this package performs the actual splice.
package rewrite

import (
	"fmt"

	"github.com/veloce-lang/veloce/internal/mir"
)

// Binding designates that every use of Old must be rebound to New.
type Binding struct {
	Old, New *mir.Value
}

// Rewrite is the outcome of a matched pattern: the ops to splice in where the
// matched op stood, in order, plus the result bindings to apply before the
// matched op is erased.
type Rewrite struct {
	Ops      []mir.Op
	Bindings []Binding
}

// Pattern is implemented by one lowering rule. MatchAndRewrite returns
// (nil, nil) when the op is not a match and should be left alone. A non-nil
// error marks a defect in the input IR; the enclosing pass aborts.
type Pattern interface {
	MatchAndRewrite(op mir.Op) (*Rewrite, error)
}

// PreconditionError reports an op that matched a pattern but violates the
// pattern's structural preconditions. It is a defect in IR construction, not
// a recoverable condition.
type PreconditionError struct {
	Op     mir.Op
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated on %s: %s", e.Op.Mnemonic(), e.Reason)
}

// Apply runs the patterns over every op of fn, first pattern wins. Each
// accepted rewrite is spliced atomically: new ops inserted where the matched
// op stood, bindings applied, matched op erased. Newly inserted ops are not
// revisited. On error the function is left with every already-accepted
// rewrite applied and the failing op untouched.
func Apply(fn *mir.Function, patterns ...Pattern) error {
	for _, block := range fn.Blocks {
		// Snapshot: splicing mutates block.Ops.
		worklist := append([]mir.Op{}, block.Ops...)
		for _, op := range worklist {
			if err := applyOne(block, op, patterns); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyOne(block *mir.Block, op mir.Op, patterns []Pattern) error {
	for _, p := range patterns {
		rw, err := p.MatchAndRewrite(op)
		if err != nil {
			return err
		}
		if rw == nil {
			continue
		}
		return splice(block, op, rw)
	}
	return nil
}

func splice(block *mir.Block, op mir.Op, rw *Rewrite) error {
	for _, bind := range rw.Bindings {
		if bind.Old == nil || bind.New == nil {
			return fmt.Errorf("rewrite of %s: nil value in binding", op.Mnemonic())
		}
		if bind.Old.Def != op {
			return fmt.Errorf("rewrite of %s: binding old value is not a result of the matched op", op.Mnemonic())
		}
	}
	for _, r := range op.Results() {
		if r.NumUses() == 0 {
			continue
		}
		bound := false
		for _, bind := range rw.Bindings {
			if bind.Old == r {
				bound = true
				break
			}
		}
		if !bound {
			return fmt.Errorf("rewrite of %s: used result left without a replacement", op.Mnemonic())
		}
	}
	at := block.IndexOf(op)
	if at < 0 {
		return fmt.Errorf("rewrite of %s: op not in block %q", op.Mnemonic(), block.Label)
	}
	block.Insert(at, rw.Ops...)
	for _, bind := range rw.Bindings {
		bind.Old.ReplaceAllUsesWith(bind.New)
	}
	if err := block.Remove(op); err != nil {
		return fmt.Errorf("rewrite of %s: %w", op.Mnemonic(), err)
	}
	return nil
}
