package ir

import "fmt"

// Builder constructs a Func block by block. Instructions are appended to the
// current block; phis are kept ahead of the other instructions.
type Builder struct {
	fn  *Func
	cur *Block
}

// NewBuilder returns a Builder for a new function called name.
func NewBuilder(name string) *Builder {
	return &Builder{fn: NewFunc(name)}
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.fn }

// Block returns the current block.
func (b *Builder) Block() *Block { return b.cur }

// NewBlock adds a new block. The current block is unchanged.
func (b *Builder) NewBlock(comment string) *Block {
	return b.fn.newBlock(comment)
}

// SetBlock makes blk the current block.
func (b *Builder) SetBlock(blk *Block) { b.cur = blk }

// Param adds a function parameter.
func (b *Builder) Param(name string, bits int) ValueID {
	v := b.fn.newValue(OpParam, bits)
	v.AuxInt = int64(len(b.fn.Params))
	v.Name = name
	b.fn.Params = append(b.fn.Params, v.ID)
	return v.ID
}

// Const returns an interned constant.
func (b *Builder) Const(bits int, k int64) ValueID {
	return b.fn.Const(bits, k)
}

// Name sets the source name of id and returns id.
func (b *Builder) Name(id ValueID, name string) ValueID {
	b.fn.values[id].Name = name
	return id
}

func (b *Builder) emit(v *Value) ValueID {
	if b.cur == nil {
		panic(fmt.Sprintf("ir: %s emitted with no current block", v.Op))
	}
	v.Block = b.cur.ID
	b.cur.Instrs = append(b.cur.Instrs, v.ID)
	return v.ID
}

// BinOp appends a binary operation.
func (b *Builder) BinOp(op Op, x, y ValueID) ValueID {
	if !op.IsBinary() {
		panic(fmt.Sprintf("ir: %s is not a binary operation", op))
	}
	return b.emit(b.fn.newValue(op, resultBits(b.fn, op, x, y), x, y))
}

// resultBits is the width of op applied to x and y; comparisons are 1 bit,
// constant operands take the width of the other side.
func resultBits(f *Func, op Op, x, y ValueID) int {
	if op.IsCompare() {
		return 1
	}
	vx := f.Value(x)
	if vx.Op == OpConst {
		if vy := f.Value(y); vy != nil {
			return vy.Bits
		}
	}
	return vx.Bits
}

// Phi inserts an empty phi in the current block.
func (b *Builder) Phi(bits int) ValueID {
	v := b.fn.newValue(OpPhi, bits)
	v.Block = b.cur.ID
	n := len(b.fn.Phis(b.cur))
	b.cur.Instrs = insertID(b.cur.Instrs, n, v.ID)
	return v.ID
}

// AddIncoming adds an incoming edge to a phi.
func (b *Builder) AddIncoming(phi, v ValueID, pred *Block) {
	b.fn.AddIncoming(phi, v, pred.ID)
}

// Call appends an opaque call to the named function.
func (b *Builder) Call(name string, args ...ValueID) ValueID {
	v := b.fn.newValue(OpCall, 64, args...)
	v.Aux = name
	return b.emit(v)
}

// Opaque appends a value with unknown contents.
func (b *Builder) Opaque(bits int) ValueID {
	return b.emit(b.fn.newValue(OpOpaque, bits))
}

// Jump ends the current block with an unconditional jump.
func (b *Builder) Jump(to *Block) {
	b.emit(b.fn.newValue(OpJump, 0))
	b.fn.addEdge(b.cur, to)
}

// If ends the current block with a conditional branch.
func (b *Builder) If(cond ValueID, then, els *Block) {
	b.emit(b.fn.newValue(OpIf, 0, cond))
	b.fn.addEdge(b.cur, then)
	b.fn.addEdge(b.cur, els)
}

// Return ends the current block with a return.
func (b *Builder) Return(results ...ValueID) {
	b.emit(b.fn.newValue(OpReturn, 0, results...))
}

func (f *Func) addEdge(from, to *Block) {
	from.Succs = append(from.Succs, to.ID)
	to.Preds = append(to.Preds, from.ID)
}

func insertID(ids []ValueID, i int, id ValueID) []ValueID {
	ids = append(ids, NoValue)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
