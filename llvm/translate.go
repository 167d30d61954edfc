package llvm

import (
	"fmt"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"

	"github.com/nickng/ivsr/ir"
)

// translator builds the ir of one LLVM function.
type translator struct {
	f      *llir.Func
	b      *ir.Builder
	blocks map[*llir.Block]*ir.Block
	values map[value.Value]ir.ValueID
	phis   []*llir.InstPhi
}

func (t *translator) unsupported(format string, args ...interface{}) error {
	return UnsupportedError{Func: t.f.Name(), Reason: fmt.Sprintf(format, args...)}
}

func (t *translator) translate() error {
	for _, p := range t.f.Params {
		if bits, ok := intBits(p.Type()); ok {
			t.values[p] = t.b.Param(p.Name(), bits)
		}
	}
	rpo := reversePostorder(t.f)
	for _, blk := range rpo {
		t.blocks[blk] = t.b.NewBlock(blk.LocalName)
	}
	for _, blk := range rpo {
		t.b.SetBlock(t.blocks[blk])
		for _, inst := range blk.Insts {
			phi, ok := inst.(*llir.InstPhi)
			if !ok {
				break
			}
			if bits, ok := intBits(phi.Type()); ok {
				t.values[phi] = t.b.Name(t.b.Phi(bits), phi.LocalName)
				t.phis = append(t.phis, phi)
			} else {
				t.opaque(phi)
			}
		}
	}
	for _, blk := range rpo {
		t.b.SetBlock(t.blocks[blk])
		for _, inst := range blk.Insts {
			if _, ok := inst.(*llir.InstPhi); !ok {
				t.inst(inst)
			}
		}
		if err := t.term(blk.Term); err != nil {
			return err
		}
	}
	for _, phi := range t.phis {
		id := t.values[phi]
		for _, inc := range phi.Incs {
			pred, ok := t.blocks[block(inc.Pred)]
			if !ok {
				continue // Unreachable predecessor.
			}
			v, ok := t.operand(inc.X)
			if !ok {
				return t.unsupported("phi %s: operand %s not translated", phi.Ident(), inc.X.Ident())
			}
			t.b.AddIncoming(id, v, pred)
		}
	}
	return nil
}

// operand returns the ir value of v. Integer constants are created on
// demand.
func (t *translator) operand(v value.Value) (ir.ValueID, bool) {
	if id, ok := t.values[v]; ok {
		return id, true
	}
	c, ok := v.(constant.Constant)
	if !ok {
		return ir.NoValue, false
	}
	bits, ok := intBits(c.Type())
	if !ok {
		return ir.NoValue, false
	}
	k, ok := constInt(c)
	if !ok {
		return ir.NoValue, false
	}
	return t.b.Const(bits, k), true
}

func (t *translator) opaque(v value.Value) {
	bits, ok := intBits(v.Type())
	if !ok {
		bits = 64
	}
	t.values[v] = t.b.Opaque(bits)
}

func (t *translator) binary(v value.Value, op ir.Op, x, y value.Value) {
	if _, ok := intBits(x.Type()); !ok {
		t.opaque(v)
		return
	}
	xid, okx := t.operand(x)
	yid, oky := t.operand(y)
	if !okx || !oky {
		t.opaque(v)
		return
	}
	t.values[v] = t.b.BinOp(op, xid, yid)
}

func (t *translator) inst(inst llir.Instruction) {
	switch inst := inst.(type) {
	case *llir.InstAdd:
		t.binary(inst, ir.OpAdd, inst.X, inst.Y)
	case *llir.InstSub:
		t.binary(inst, ir.OpSub, inst.X, inst.Y)
	case *llir.InstMul:
		t.binary(inst, ir.OpMul, inst.X, inst.Y)
	case *llir.InstSDiv:
		t.binary(inst, ir.OpDiv, inst.X, inst.Y)
	case *llir.InstSRem:
		t.binary(inst, ir.OpRem, inst.X, inst.Y)
	case *llir.InstShl:
		t.binary(inst, ir.OpShl, inst.X, inst.Y)
	case *llir.InstAShr:
		t.binary(inst, ir.OpShr, inst.X, inst.Y)
	case *llir.InstLShr:
		t.binary(inst, ir.OpUShr, inst.X, inst.Y)
	case *llir.InstAnd:
		t.binary(inst, ir.OpAnd, inst.X, inst.Y)
	case *llir.InstOr:
		t.binary(inst, ir.OpOr, inst.X, inst.Y)
	case *llir.InstXor:
		t.binary(inst, ir.OpXor, inst.X, inst.Y)
	case *llir.InstICmp:
		if op, ok := icmpOps[inst.Pred]; ok {
			t.binary(inst, op, inst.X, inst.Y)
		} else {
			t.opaque(inst)
		}
	case *llir.InstCall:
		var args []ir.ValueID
		for _, a := range inst.Args {
			if _, ok := intBits(a.Type()); !ok {
				continue
			}
			if id, ok := t.operand(a); ok {
				args = append(args, id)
			}
		}
		id := t.b.Call(calleeName(inst.Callee), args...)
		if bits, ok := intBits(inst.Type()); ok && bits != 64 {
			id = t.b.Opaque(bits)
		}
		t.values[inst] = id
	default:
		if v, ok := inst.(value.Value); ok {
			t.opaque(v)
		}
	}
}

func (t *translator) term(term llir.Terminator) error {
	switch term := term.(type) {
	case *llir.TermBr:
		to, ok := t.blocks[block(term.Target)]
		if !ok {
			return t.unsupported("br to unknown block")
		}
		t.b.Jump(to)
	case *llir.TermCondBr:
		then, ok1 := t.blocks[block(term.TargetTrue)]
		els, ok2 := t.blocks[block(term.TargetFalse)]
		if !ok1 || !ok2 {
			return t.unsupported("br to unknown block")
		}
		cond, ok := t.operand(term.Cond)
		if !ok {
			cond = t.b.Opaque(1)
		}
		t.b.If(cond, then, els)
	case *llir.TermRet:
		if term.X == nil {
			t.b.Return()
			return nil
		}
		if _, ok := intBits(term.X.Type()); ok {
			if id, ok := t.operand(term.X); ok {
				t.b.Return(id)
				return nil
			}
		}
		t.b.Return()
	case *llir.TermUnreachable:
		t.b.Call("unreachable")
		t.b.Return()
	default:
		return t.unsupported("terminator %T", term)
	}
	return nil
}
