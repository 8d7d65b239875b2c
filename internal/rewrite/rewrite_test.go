package rewrite

import (
	"errors"
	"testing"

	"github.com/veloce-lang/veloce/internal/mir"
)

// doubleConst rewrites every const.index into a doubled one.
type doubleConst struct{}

func (doubleConst) MatchAndRewrite(op mir.Op) (*Rewrite, error) {
	c, ok := op.(*mir.ConstIndex)
	if !ok {
		return nil, nil
	}
	repl := mir.NewConstIndex(2 * c.Val)
	return &Rewrite{
		Ops:      []mir.Op{repl},
		Bindings: []Binding{{Old: c.Result(), New: repl.Result()}},
	}, nil
}

// failOnConst simulates a pattern hitting a structural precondition.
type failOnConst struct{}

func (failOnConst) MatchAndRewrite(op mir.Op) (*Rewrite, error) {
	if _, ok := op.(*mir.ConstIndex); !ok {
		return nil, nil
	}
	return nil, &PreconditionError{Op: op, Reason: "boom"}
}

// unboundResult replaces an op but forgets to bind its used result.
type unboundResult struct{}

func (unboundResult) MatchAndRewrite(op mir.Op) (*Rewrite, error) {
	if _, ok := op.(*mir.ConstIndex); !ok {
		return nil, nil
	}
	return &Rewrite{Ops: []mir.Op{mir.NewConstIndex(0)}}, nil
}

func buildConstRet(val int64) (*mir.Function, *mir.ConstIndex) {
	fn := &mir.Function{Name: "f"}
	c := mir.NewConstIndex(val)
	fn.Entry().Append(c, mir.NewReturn(c.Result()))
	return fn, c
}

func TestApplySplicesAndRebinds(t *testing.T) {
	fn, old := buildConstRet(21)

	if err := Apply(fn, doubleConst{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	block := fn.Blocks[0]
	if len(block.Ops) != 2 {
		t.Fatalf("block has %d ops, want 2", len(block.Ops))
	}
	repl, ok := block.Ops[0].(*mir.ConstIndex)
	if !ok || repl.Val != 42 {
		t.Fatalf("op 0 = %s, want const.index 42", block.Ops[0])
	}
	ret, ok := block.Ops[1].(*mir.Return)
	if !ok || ret.Vals[0] != repl.Result() {
		t.Fatalf("ret not rebound to the replacement constant")
	}
	if old.Result().NumUses() != 0 {
		t.Errorf("old result still has %d use(s)", old.Result().NumUses())
	}
}

func TestApplyLeavesNonMatchesAlone(t *testing.T) {
	fn := &mir.Function{Name: "f"}
	buf := fn.NewParam(mir.MemRefType{Elem: mir.IntType{Width: 32}, Shape: []int64{4}})
	addr := mir.NewExtractBase(buf)
	fn.Entry().Append(addr, mir.NewReturn(addr.Result()))

	if err := Apply(fn, doubleConst{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if fn.NumOps() != 2 {
		t.Errorf("op count changed on a function with no matches")
	}
}

func TestApplyPropagatesPreconditionError(t *testing.T) {
	fn, _ := buildConstRet(1)

	err := Apply(fn, failOnConst{})
	if err == nil {
		t.Fatal("Apply should fail")
	}
	var pe *PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a PreconditionError", err)
	}
	if fn.NumOps() != 2 {
		t.Errorf("failed pattern must not mutate the function, have %d ops", fn.NumOps())
	}
}

func TestApplyRejectsUnboundLiveResult(t *testing.T) {
	fn, _ := buildConstRet(1)

	if err := Apply(fn, unboundResult{}); err == nil {
		t.Fatal("Apply should reject erasing an op whose result is still used")
	}
	if fn.NumOps() != 2 {
		t.Errorf("rejected rewrite must not mutate the function, have %d ops", fn.NumOps())
	}
}

func TestFirstPatternWins(t *testing.T) {
	fn, _ := buildConstRet(10)

	if err := Apply(fn, doubleConst{}, failOnConst{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	repl := fn.Blocks[0].Ops[0].(*mir.ConstIndex)
	if repl.Val != 20 {
		t.Errorf("first pattern did not win: const = %d", repl.Val)
	}
}
