// Package ir is a small mutable SSA intermediate representation for integer
// programs.
//
// Values and blocks live in a per-function arena and are referred to by
// integer handles (ValueID, BlockID). A handle stays valid for the lifetime of
// the function: inserting new instructions never moves or renumbers existing
// ones, so analyses can hold onto handles while a transformation mutates the
// function in place.
//
// Constants are interned per (width, literal) and do not belong to any
// block. Every other value is defined by exactly one block, and a block lists
// its phis first and its terminator last.
package ir

import "fmt"

// ValueID is a handle to a Value in its Func.
type ValueID int32

// BlockID is a handle to a Block in its Func.
type BlockID int32

const (
	NoValue ValueID = -1
	NoBlock BlockID = -1
)

// Value is a single SSA value (an instruction, constant or parameter).
type Value struct {
	ID     ValueID
	Op     Op
	Bits   int       // Integer width: 1, 8, 16, 32 or 64.
	Args   []ValueID // Operands.
	Edges  []BlockID // Phi only: predecessor supplying Args[i].
	AuxInt int64     // Constant literal or parameter index.
	Aux    string    // Callee name for OpCall.
	Name   string    // Source name, if known.
	Block  BlockID   // Defining block, NoBlock for constants and parameters.
}

// Block is a basic block.
type Block struct {
	ID      BlockID
	Comment string
	Instrs  []ValueID
	Preds   []BlockID
	Succs   []BlockID
}

// Edge is an incoming edge of a phi.
type Edge struct {
	Pred  BlockID
	Value ValueID
}

type constKey struct {
	bits int
	val  int64
}

// Func is a function body.
type Func struct {
	Name   string
	Params []ValueID
	Blocks []*Block

	values []*Value // Arena, indexed by ValueID. Removed values are nil.
	consts map[constKey]ValueID
}

// NewFunc returns an empty function.
func NewFunc(name string) *Func {
	return &Func{
		Name:   name,
		consts: make(map[constKey]ValueID),
	}
}

// Value returns the value with handle id, or nil if id was never allocated or
// the value has been removed.
func (f *Func) Value(id ValueID) *Value {
	if id < 0 || int(id) >= len(f.values) {
		return nil
	}
	return f.values[id]
}

// Block returns the block with handle id.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}

// Entry returns the entry block, or nil for a function without a body.
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NumValues returns the size of the value arena (including removed values).
func (f *Func) NumValues() int {
	return len(f.values)
}

func (f *Func) newValue(op Op, bits int, args ...ValueID) *Value {
	v := &Value{
		ID:    ValueID(len(f.values)),
		Op:    op,
		Bits:  bits,
		Args:  append([]ValueID(nil), args...),
		Block: NoBlock,
	}
	f.values = append(f.values, v)
	return v
}

func (f *Func) newBlock(comment string) *Block {
	b := &Block{ID: BlockID(len(f.Blocks)), Comment: comment}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Const returns the interned integer constant k of the given width.
func (f *Func) Const(bits int, k int64) ValueID {
	k = Truncate(bits, k)
	key := constKey{bits: bits, val: k}
	if id, ok := f.consts[key]; ok {
		return id
	}
	v := f.newValue(OpConst, bits)
	v.AuxInt = k
	f.consts[key] = v.ID
	return v.ID
}

// IntConst returns the literal value of id if it is a compile-time integer
// constant.
func (f *Func) IntConst(id ValueID) (int64, bool) {
	if v := f.Value(id); v != nil && v.Op == OpConst {
		return v.AuxInt, true
	}
	return 0, false
}

// Incoming returns the incoming edges of a phi, in operand order.
func (f *Func) Incoming(phi ValueID) []Edge {
	v := f.Value(phi)
	if v == nil || v.Op != OpPhi {
		return nil
	}
	edges := make([]Edge, len(v.Args))
	for i := range v.Args {
		edges[i] = Edge{Pred: v.Edges[i], Value: v.Args[i]}
	}
	return edges
}

// IncomingFrom returns the value flowing into phi from pred.
func (f *Func) IncomingFrom(phi ValueID, pred BlockID) (ValueID, bool) {
	for _, e := range f.Incoming(phi) {
		if e.Pred == pred {
			return e.Value, true
		}
	}
	return NoValue, false
}

// Uses returns the live values using id as an operand, in handle order.
func (f *Func) Uses(id ValueID) []ValueID {
	var uses []ValueID
	for _, v := range f.values {
		if v == nil {
			continue
		}
		for _, a := range v.Args {
			if a == id {
				uses = append(uses, v.ID)
				break
			}
		}
	}
	return uses
}

// Phis returns the leading phis of b.
func (f *Func) Phis(b *Block) []ValueID {
	var phis []ValueID
	for _, id := range b.Instrs {
		if f.values[id].Op != OpPhi {
			break
		}
		phis = append(phis, id)
	}
	return phis
}

// Terminator returns the last instruction of b if it is a terminator.
func (f *Func) Terminator(b *Block) *Value {
	if len(b.Instrs) == 0 {
		return nil
	}
	if v := f.values[b.Instrs[len(b.Instrs)-1]]; v.Op.IsTerminator() {
		return v
	}
	return nil
}

// Ref returns the operand form of id: a literal for constants, vN otherwise.
func (f *Func) Ref(id ValueID) string {
	v := f.Value(id)
	switch {
	case v == nil:
		return fmt.Sprintf("<dead v%d>", id)
	case v.Op == OpConst:
		return fmt.Sprintf("%d", v.AuxInt)
	}
	return fmt.Sprintf("v%d", id)
}

// Truncate wraps x to a signed integer of the given width. A width of 1 is a
// boolean and keeps only the low bit.
func Truncate(bits int, x int64) int64 {
	switch {
	case bits == 1:
		return x & 1
	case bits <= 0 || bits >= 64:
		return x
	}
	shift := uint(64 - bits)
	return x << shift >> shift
}

// TypeString returns the name of an integer width, e.g. i64.
func TypeString(bits int) string {
	return fmt.Sprintf("i%d", bits)
}
