// Package mir defines the mid-level IR consumed by target lowering passes.
// It is SSA-lite: every value is produced once, by an op or as a function
// parameter, and use lists are maintained so passes can rebind results.
package mir

import (
	"fmt"
	"strings"
)

// Type is implemented by all MIR types.
type Type interface {
	isType()
	String() string
}

// IntType is a fixed-width integer type.
type IntType struct{ Width int }

// BoolType is a single-bit truth value.
type BoolType struct{}

// IndexType is a pointer-sized integer used for sizes and addresses.
type IndexType struct{}

// MemRefType describes a shaped buffer of elements.
type MemRefType struct {
	Elem  Type
	Shape []int64
	// MemorySpace tags the memory region holding the buffer.
	// nil when the type carries no region tag.
	MemorySpace Attr
}

func (IntType) isType()    {}
func (BoolType) isType()   {}
func (IndexType) isType()  {}
func (MemRefType) isType() {}

func (t IntType) String() string { return fmt.Sprintf("i%d", t.Width) }
func (BoolType) String() string  { return "i1" }
func (IndexType) String() string { return "index" }
func (t MemRefType) String() string {
	var b strings.Builder
	b.WriteString("memref<")
	for _, d := range t.Shape {
		fmt.Fprintf(&b, "%dx", d)
	}
	b.WriteString(t.Elem.String())
	if t.MemorySpace != nil {
		fmt.Fprintf(&b, ", %s", t.MemorySpace)
	}
	b.WriteByte('>')
	return b.String()
}

// TypeEqual reports structural equality of two types.
func TypeEqual(a, b Type) bool {
	switch at := a.(type) {
	case IntType:
		bt, ok := b.(IntType)
		return ok && at.Width == bt.Width
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case IndexType:
		_, ok := b.(IndexType)
		return ok
	case MemRefType:
		bt, ok := b.(MemRefType)
		if !ok || !TypeEqual(at.Elem, bt.Elem) || len(at.Shape) != len(bt.Shape) {
			return false
		}
		for i := range at.Shape {
			if at.Shape[i] != bt.Shape[i] {
				return false
			}
		}
		return attrEqual(at.MemorySpace, bt.MemorySpace)
	default:
		return false
	}
}

// Attr is implemented by all MIR attributes.
type Attr interface {
	isAttr()
	String() string
}

// IntAttr is an integer attribute, e.g. a memory-region tag on a memref.
type IntAttr struct{ Value int64 }

func (IntAttr) isAttr() {}

func (a IntAttr) String() string { return fmt.Sprintf("%d", a.Value) }

func attrEqual(a, b Attr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ai, aok := a.(IntAttr)
	bi, bok := b.(IntAttr)
	return aok && bok && ai.Value == bi.Value
}

// Value is an SSA value. Identity is pointer identity, so a pass that holds a
// *Value holds the exact value, not a copy. The use list is maintained by
// Block insertion and removal.
type Value struct {
	Def  Op // producing op; nil for function parameters
	Type Type
	Name string // printer name; assigned when the enclosing function is printed

	uses []use
}

type use struct {
	op    Op
	index int
}

// NumUses returns how many operand slots currently read v.
func (v *Value) NumUses() int { return len(v.uses) }

// Users returns the ops currently reading v, in use order.
func (v *Value) Users() []Op {
	ops := make([]Op, len(v.uses))
	for i, u := range v.uses {
		ops[i] = u.op
	}
	return ops
}

// ReplaceAllUsesWith rewrites every use of v to read other instead.
func (v *Value) ReplaceAllUsesWith(other *Value) {
	if v == other {
		return
	}
	for _, u := range v.uses {
		u.op.setOperand(u.index, other)
		other.uses = append(other.uses, use{op: u.op, index: u.index})
	}
	v.uses = nil
}

// Op is implemented by all MIR operations. The op set is closed to this
// package so that use lists stay consistent with operand slots.
type Op interface {
	Mnemonic() string
	Operands() []*Value
	Results() []*Value
	String() string

	setOperand(i int, v *Value)
}

// Block is a linear sequence of ops.
type Block struct {
	Label string
	Ops   []Op
}

// Append adds ops at the end of the block and records their operand uses.
func (b *Block) Append(ops ...Op) {
	for _, op := range ops {
		registerUses(op)
		b.Ops = append(b.Ops, op)
	}
}

// Insert places ops before position at and records their operand uses.
func (b *Block) Insert(at int, ops ...Op) {
	for _, op := range ops {
		registerUses(op)
	}
	rest := append([]Op{}, b.Ops[at:]...)
	b.Ops = append(append(b.Ops[:at], ops...), rest...)
}

// IndexOf returns the position of op in the block, or -1.
func (b *Block) IndexOf(op Op) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}
	return -1
}

// Remove erases op from the block and drops its operand uses.
// Every result of op must already be unused.
func (b *Block) Remove(op Op) error {
	i := b.IndexOf(op)
	if i < 0 {
		return fmt.Errorf("op %s not in block %q", op.Mnemonic(), b.Label)
	}
	for _, r := range op.Results() {
		if r.NumUses() > 0 {
			return fmt.Errorf("cannot remove %s: result still has %d use(s)", op.Mnemonic(), r.NumUses())
		}
	}
	unregisterUses(op)
	b.Ops = append(b.Ops[:i], b.Ops[i+1:]...)
	return nil
}

func registerUses(op Op) {
	for i, v := range op.Operands() {
		v.uses = append(v.uses, use{op: op, index: i})
	}
}

func unregisterUses(op Op) {
	for i, v := range op.Operands() {
		for j, u := range v.uses {
			if u.op == op && u.index == i {
				v.uses = append(v.uses[:j], v.uses[j+1:]...)
				break
			}
		}
	}
}

// Function is a parameter list plus a sequence of blocks.
type Function struct {
	Name   string
	Params []*Value
	Blocks []*Block
}

// NewParam appends a parameter value of the given type and returns it.
func (f *Function) NewParam(t Type) *Value {
	v := &Value{Type: t}
	f.Params = append(f.Params, v)
	return v
}

// Entry returns the first block, creating it on demand.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		f.Blocks = append(f.Blocks, &Block{Label: "entry"})
	}
	return f.Blocks[0]
}

// NumOps counts ops across all blocks.
func (f *Function) NumOps() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Ops)
	}
	return n
}

// Module is a compilation unit of MIR.
type Module struct {
	Name      string
	Functions []*Function
}

func (m *Module) String() string {
	if m == nil {
		return "<nil-mir-module>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name)
	for _, f := range m.Functions {
		b.WriteString(f.String())
	}
	return b.String()
}

func (f *Function) String() string {
	if f == nil {
		return "<nil-func>"
	}
	f.number()
	var b strings.Builder
	fmt.Fprintf(&b, "func %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Name, p.Type)
	}
	b.WriteString(") {\n")
	for _, bb := range f.Blocks {
		b.WriteString(bb.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (bb *Block) String() string {
	if bb == nil {
		return ""
	}
	var b strings.Builder
	if bb.Label != "" {
		fmt.Fprintf(&b, "%s:\n", bb.Label)
	}
	for _, op := range bb.Ops {
		b.WriteString("  ")
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// number assigns stable printer names: %argN for parameters, %N for results.
func (f *Function) number() {
	for i, p := range f.Params {
		p.Name = fmt.Sprintf("%%arg%d", i)
	}
	n := 0
	for _, bb := range f.Blocks {
		for _, op := range bb.Ops {
			for _, r := range op.Results() {
				r.Name = fmt.Sprintf("%%%d", n)
				n++
			}
		}
	}
}

func valName(v *Value) string {
	if v == nil {
		return "<nil>"
	}
	if v.Name == "" {
		return "%?"
	}
	return v.Name
}
