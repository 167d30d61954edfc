package ir

import "fmt"

// Mutation primitives used by transformations. All of them keep existing
// handles valid.

// InsertPhi inserts a new phi of the given width in block blk, immediately
// before the instruction before. If before is NoValue the phi is placed after
// the existing phis. The phi starts with no incoming edges.
func (f *Func) InsertPhi(blk BlockID, before ValueID, bits int) ValueID {
	b := f.mustBlock(blk)
	idx := len(f.Phis(b))
	if before != NoValue {
		idx = f.indexIn(b, before)
		if f.values[before].Op != OpPhi {
			panic(fmt.Sprintf("ir: phi inserted before non-phi v%d in b%d", before, blk))
		}
	}
	v := f.newValue(OpPhi, bits)
	v.Block = blk
	b.Instrs = insertID(b.Instrs, idx, v.ID)
	return v.ID
}

// AddIncoming appends the edge (pred, v) to a phi.
func (f *Func) AddIncoming(phi, v ValueID, pred BlockID) {
	p := f.Value(phi)
	if p == nil || p.Op != OpPhi {
		panic(fmt.Sprintf("ir: AddIncoming on non-phi v%d", phi))
	}
	p.Args = append(p.Args, v)
	p.Edges = append(p.Edges, pred)
}

// InsertBinOp inserts a binary operation in block blk immediately before the
// instruction before. If before is NoValue the instruction is placed before the
// block terminator (or at the end of a block that has none).
func (f *Func) InsertBinOp(op Op, x, y ValueID, blk BlockID, before ValueID) ValueID {
	if !op.IsBinary() {
		panic(fmt.Sprintf("ir: %s is not a binary operation", op))
	}
	b := f.mustBlock(blk)
	idx := len(b.Instrs)
	switch {
	case before != NoValue:
		idx = f.indexIn(b, before)
	case f.Terminator(b) != nil:
		idx--
	}
	if idx < len(f.Phis(b)) {
		panic(fmt.Sprintf("ir: %s inserted among phis of b%d", op, blk))
	}
	v := f.newValue(op, resultBits(f, op, x, y), x, y)
	v.Block = blk
	b.Instrs = insertID(b.Instrs, idx, v.ID)
	return v.ID
}

// ReplaceAllUsesWith redirects every operand referring to old to new, except
// the operands of new itself. It returns the number of operands rewritten.
func (f *Func) ReplaceAllUsesWith(old, new ValueID) int {
	if old == new {
		return 0
	}
	n := 0
	for _, v := range f.values {
		if v == nil || v.ID == new {
			continue
		}
		for i, a := range v.Args {
			if a == old {
				v.Args[i] = new
				n++
			}
		}
	}
	return n
}

// RemoveValue deletes id from its block and the arena. Its handle is not
// reused. The caller must make sure id has no remaining uses.
func (f *Func) RemoveValue(id ValueID) {
	v := f.Value(id)
	if v == nil {
		return
	}
	if v.Op == OpConst {
		delete(f.consts, constKey{bits: v.Bits, val: v.AuxInt})
	}
	if b := f.Block(v.Block); b != nil {
		idx := f.indexIn(b, id)
		b.Instrs = append(b.Instrs[:idx], b.Instrs[idx+1:]...)
	}
	f.values[id] = nil
}

func (f *Func) mustBlock(id BlockID) *Block {
	b := f.Block(id)
	if b == nil {
		panic(fmt.Sprintf("ir: no block b%d in %s", id, f.Name))
	}
	return b
}

func (f *Func) indexIn(b *Block, id ValueID) int {
	for i, x := range b.Instrs {
		if x == id {
			return i
		}
	}
	panic(fmt.Sprintf("ir: v%d is not in b%d", id, b.ID))
}
