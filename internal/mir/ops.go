package mir

import (
	"fmt"
	"strings"
)

// DMAStart is a generic one-dimensional asynchronous copy between two
// buffers. It is target-neutral; target passes lower it to driver calls.
// Its single result is a transfer token handed to whatever later waits on
// or inspects the transfer.
type DMAStart struct {
	Src, Dst, Count *Value

	token *Value
}

// NewDMAStart builds a dma.start op copying count elements from src to dst.
func NewDMAStart(src, dst, count *Value) *DMAStart {
	op := &DMAStart{Src: src, Dst: dst, Count: count}
	op.token = &Value{Def: op, Type: IntType{Width: 32}}
	return op
}

// Token returns the transfer token result.
func (d *DMAStart) Token() *Value { return d.token }

func (d *DMAStart) Mnemonic() string    { return "dma.start" }
func (d *DMAStart) Operands() []*Value  { return []*Value{d.Src, d.Dst, d.Count} }
func (d *DMAStart) Results() []*Value   { return []*Value{d.token} }
func (d *DMAStart) setOperand(i int, v *Value) {
	switch i {
	case 0:
		d.Src = v
	case 1:
		d.Dst = v
	case 2:
		d.Count = v
	}
}

func (d *DMAStart) String() string {
	return fmt.Sprintf("%s = dma.start %s, %s, %s", valName(d.token), valName(d.Src), valName(d.Dst), valName(d.Count))
}

// Call invokes a named callee with zero or one results.
type Call struct {
	Callee string
	Args   []*Value

	res *Value // nil when the callee returns nothing
}

// NewCall builds a call op. result is nil for a void callee.
func NewCall(callee string, args []*Value, result Type) *Call {
	c := &Call{Callee: callee, Args: args}
	if result != nil {
		c.res = &Value{Def: c, Type: result}
	}
	return c
}

// Result returns the call's result value, or nil for a void callee.
func (c *Call) Result() *Value { return c.res }

func (c *Call) Mnemonic() string   { return "call" }
func (c *Call) Operands() []*Value { return c.Args }
func (c *Call) Results() []*Value {
	if c.res == nil {
		return nil
	}
	return []*Value{c.res}
}
func (c *Call) setOperand(i int, v *Value) { c.Args[i] = v }

func (c *Call) String() string {
	var b strings.Builder
	if c.res != nil {
		fmt.Fprintf(&b, "%s = ", valName(c.res))
	}
	fmt.Fprintf(&b, "call @%s(", c.Callee)
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(valName(a))
	}
	b.WriteByte(')')
	if c.res != nil {
		fmt.Fprintf(&b, " : %s", c.res.Type)
	}
	return b.String()
}

// ConstIndex materializes an index-typed integer constant.
type ConstIndex struct {
	Val int64

	res *Value
}

// NewConstIndex builds an index constant.
func NewConstIndex(val int64) *ConstIndex {
	c := &ConstIndex{Val: val}
	c.res = &Value{Def: c, Type: IndexType{}}
	return c
}

// Result returns the constant value.
func (c *ConstIndex) Result() *Value { return c.res }

func (c *ConstIndex) Mnemonic() string         { return "const.index" }
func (c *ConstIndex) Operands() []*Value       { return nil }
func (c *ConstIndex) Results() []*Value        { return []*Value{c.res} }
func (c *ConstIndex) setOperand(int, *Value)   {}

func (c *ConstIndex) String() string {
	return fmt.Sprintf("%s = const.index %d", valName(c.res), c.Val)
}

// CmpPred enumerates unsigned compare predicates.
type CmpPred int

const (
	CmpULT CmpPred = iota
	CmpULE
	CmpUGT
	CmpUGE
)

func (p CmpPred) String() string {
	switch p {
	case CmpULT:
		return "ult"
	case CmpULE:
		return "ule"
	case CmpUGT:
		return "ugt"
	case CmpUGE:
		return "uge"
	default:
		return "cmp?"
	}
}

// CmpU is an unsigned integer comparison producing an i1.
type CmpU struct {
	Pred     CmpPred
	LHS, RHS *Value

	res *Value
}

// NewCmpU builds an unsigned comparison op.
func NewCmpU(pred CmpPred, lhs, rhs *Value) *CmpU {
	c := &CmpU{Pred: pred, LHS: lhs, RHS: rhs}
	c.res = &Value{Def: c, Type: BoolType{}}
	return c
}

// Result returns the i1 comparison result.
func (c *CmpU) Result() *Value { return c.res }

func (c *CmpU) Mnemonic() string   { return "cmp." + c.Pred.String() }
func (c *CmpU) Operands() []*Value { return []*Value{c.LHS, c.RHS} }
func (c *CmpU) Results() []*Value  { return []*Value{c.res} }
func (c *CmpU) setOperand(i int, v *Value) {
	if i == 0 {
		c.LHS = v
	} else {
		c.RHS = v
	}
}

func (c *CmpU) String() string {
	return fmt.Sprintf("%s = cmp.%s %s, %s", valName(c.res), c.Pred, valName(c.LHS), valName(c.RHS))
}

// ExtractBase reads a buffer's aligned base address as an index value.
type ExtractBase struct {
	Buf *Value

	res *Value
}

// NewExtractBase builds a base-address extraction for a memref-typed value.
func NewExtractBase(buf *Value) *ExtractBase {
	e := &ExtractBase{Buf: buf}
	e.res = &Value{Def: e, Type: IndexType{}}
	return e
}

// Result returns the extracted address.
func (e *ExtractBase) Result() *Value { return e.res }

func (e *ExtractBase) Mnemonic() string   { return "memref.base" }
func (e *ExtractBase) Operands() []*Value { return []*Value{e.Buf} }
func (e *ExtractBase) Results() []*Value  { return []*Value{e.res} }
func (e *ExtractBase) setOperand(_ int, v *Value) { e.Buf = v }

func (e *ExtractBase) String() string {
	return fmt.Sprintf("%s = memref.base %s", valName(e.res), valName(e.Buf))
}

// Return ends the enclosing function, yielding zero or more values.
type Return struct {
	Vals []*Value
}

// NewReturn builds a return op.
func NewReturn(vals ...*Value) *Return { return &Return{Vals: vals} }

func (r *Return) Mnemonic() string         { return "ret" }
func (r *Return) Operands() []*Value       { return r.Vals }
func (r *Return) Results() []*Value        { return nil }
func (r *Return) setOperand(i int, v *Value) { r.Vals[i] = v }

func (r *Return) String() string {
	if len(r.Vals) == 0 {
		return "ret"
	}
	parts := make([]string, len(r.Vals))
	for i, v := range r.Vals {
		parts[i] = valName(v)
	}
	return "ret " + strings.Join(parts, ", ")
}
