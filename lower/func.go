package lower

import (
	"go/token"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"

	"github.com/nickng/ivsr/fn"
	"github.com/nickng/ivsr/instr"
	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
)

var (
	_ fn.Analyser    = (*funcLowerer)(nil)
	_ instr.Analyser = (*funcLowerer)(nil)
)

var binOps = map[token.Token]ir.Op{
	token.ADD: ir.OpAdd,
	token.SUB: ir.OpSub,
	token.MUL: ir.OpMul,
	token.QUO: ir.OpDiv,
	token.REM: ir.OpRem,
	token.SHL: ir.OpShl,
	token.SHR: ir.OpShr,
	token.AND: ir.OpAnd,
	token.OR:  ir.OpOr,
	token.XOR: ir.OpXor,
	token.EQL: ir.OpEq,
	token.NEQ: ir.OpNe,
	token.LSS: ir.OpLt,
	token.LEQ: ir.OpLe,
	token.GTR: ir.OpGt,
	token.GEQ: ir.OpGe,
}

// funcLowerer is an fn.Analyser and instr.Analyser building the ir of a
// single function.
type funcLowerer struct {
	*logger.Logger
	fn     *ssa.Function
	b      *ir.Builder
	blocks []*ir.Block // Indexed by ssa.BasicBlock.Index.
	values map[ssa.Value]ir.ValueID
	phis   []*ssa.Phi // Integer phis, incoming edges added by ExitFunc.
}

// EnterFunc creates the parameters, the blocks and the integer phis of fn.
// Phis exist before any block is lowered so that back edges can refer to
// them.
func (fl *funcLowerer) EnterFunc(fn *ssa.Function) {
	params := append(append([]ssa.Value{}, valuesOf(fn.Params)...), freeVarsOf(fn.FreeVars)...)
	for _, p := range params {
		if bits, ok := intBits(p.Type()); ok {
			fl.values[p] = fl.b.Param(p.Name(), bits)
		}
	}
	fl.blocks = make([]*ir.Block, len(fn.Blocks))
	for i, blk := range fn.Blocks {
		fl.blocks[i] = fl.b.NewBlock(blk.Comment)
	}
	for _, blk := range fn.Blocks {
		fl.b.SetBlock(fl.blocks[blk.Index])
		for _, i := range blk.Instrs {
			phi, ok := i.(*ssa.Phi)
			if !ok {
				break
			}
			if bits, ok := intBits(phi.Type()); ok {
				fl.values[phi] = fl.b.Name(fl.b.Phi(bits), phi.Comment)
				fl.phis = append(fl.phis, phi)
			}
		}
	}
}

// ExitFunc adds the incoming edges of the integer phis.
func (fl *funcLowerer) ExitFunc(fn *ssa.Function) error {
	for _, phi := range fl.phis {
		id := fl.values[phi]
		for i, e := range phi.Edges {
			v, ok := fl.operand(e)
			if !ok {
				return errors.Wrapf(unsupported(fn, "phi operand not lowered"), "%s = %s", phi.Name(), phi)
			}
			fl.b.AddIncoming(id, v, fl.blocks[phi.Block().Preds[i].Index])
		}
	}
	return nil
}

func valuesOf(params []*ssa.Parameter) []ssa.Value {
	vs := make([]ssa.Value, len(params))
	for i, p := range params {
		vs[i] = p
	}
	return vs
}

func freeVarsOf(fvs []*ssa.FreeVar) []ssa.Value {
	vs := make([]ssa.Value, len(fvs))
	for i, fv := range fvs {
		vs[i] = fv
	}
	return vs
}

// operand returns the ir value of v. Constants are created on demand.
func (fl *funcLowerer) operand(v ssa.Value) (ir.ValueID, bool) {
	if id, ok := fl.values[v]; ok {
		return id, true
	}
	c, ok := v.(*ssa.Const)
	if !ok {
		return ir.NoValue, false
	}
	bits, ok := intBits(c.Type())
	if !ok {
		return ir.NoValue, false
	}
	return fl.b.Const(bits, constInt(c)), true
}

// opaque records v as a value with unknown contents.
func (fl *funcLowerer) opaque(v ssa.Value) {
	bits, ok := intBits(v.Type())
	if !ok {
		bits = 64
	}
	fl.values[v] = fl.b.Opaque(bits)
	fl.Debugf("%s %s: opaque %s = %s", fl.Module(), fl.fn.Name(), v.Name(), v)
}

func (fl *funcLowerer) VisitInstr(i ssa.Instruction) {
	switch i := i.(type) {
	case *ssa.ChangeType:
		if fl.alias(i, i.X) {
			return
		}
	}
	if v, ok := i.(ssa.Value); ok {
		fl.opaque(v)
		return
	}
	fl.Debugf("%s %s: skip %s", fl.Module(), fl.fn.Name(), i)
}

// alias maps v to the ir value of x if both are integers of the same width.
func (fl *funcLowerer) alias(v, x ssa.Value) bool {
	vbits, ok := intBits(v.Type())
	if !ok {
		return false
	}
	if xbits, ok := intBits(x.Type()); !ok || xbits != vbits {
		return false
	}
	id, ok := fl.operand(x)
	if ok {
		fl.values[v] = id
	}
	return ok
}

func (fl *funcLowerer) VisitBinOp(i *ssa.BinOp) {
	bits, ok := intBits(i.X.Type())
	if !ok {
		fl.opaque(i)
		return
	}
	x, ok := fl.operand(i.X)
	if !ok {
		fl.opaque(i)
		return
	}
	var y ir.ValueID
	switch i.Op {
	case token.SHL, token.SHR:
		y, ok = fl.shiftCount(i.Y, bits)
	default:
		y, ok = fl.operand(i.Y)
	}
	if !ok {
		fl.opaque(i)
		return
	}
	if i.Op == token.AND_NOT {
		fl.values[i] = fl.b.BinOp(ir.OpAnd, x, fl.b.BinOp(ir.OpXor, y, fl.b.Const(bits, -1)))
		return
	}
	op, ok := binOps[i.Op]
	if !ok {
		fl.opaque(i)
		return
	}
	fl.values[i] = fl.b.BinOp(op, x, y)
}

// shiftCount returns y as an operand of a shift of a bits wide value. Go
// allows unsigned or differently sized counts; only constants and counts of
// the same width are modelled.
func (fl *funcLowerer) shiftCount(y ssa.Value, bits int) (ir.ValueID, bool) {
	if c, ok := y.(*ssa.Const); ok {
		if _, ok := anyIntBits(c.Type()); ok {
			return fl.b.Const(bits, constInt(c)), true
		}
		return ir.NoValue, false
	}
	if ybits, ok := intBits(y.Type()); !ok || ybits != bits {
		return ir.NoValue, false
	}
	return fl.operand(y)
}

func (fl *funcLowerer) VisitUnOp(i *ssa.UnOp) {
	bits, ok := intBits(i.X.Type())
	if !ok {
		fl.opaque(i)
		return
	}
	x, ok := fl.operand(i.X)
	if !ok {
		fl.opaque(i)
		return
	}
	switch i.Op {
	case token.SUB:
		fl.values[i] = fl.b.BinOp(ir.OpSub, fl.b.Const(bits, 0), x)
	case token.XOR:
		fl.values[i] = fl.b.BinOp(ir.OpXor, x, fl.b.Const(bits, -1))
	case token.NOT:
		fl.values[i] = fl.b.BinOp(ir.OpXor, x, fl.b.Const(1, 1))
	default:
		fl.opaque(i)
	}
}

func (fl *funcLowerer) VisitConvert(i *ssa.Convert) {
	if !fl.alias(i, i.X) {
		fl.opaque(i)
	}
}

func (fl *funcLowerer) VisitDebugRef(i *ssa.DebugRef) {}

func (fl *funcLowerer) VisitCall(i *ssa.Call) {
	id := fl.call("", i.Common())
	if bits, ok := intBits(i.Type()); ok && bits != 64 {
		id = fl.b.Opaque(bits)
	}
	fl.values[i] = id
}

func (fl *funcLowerer) VisitGo(i *ssa.Go) { fl.call("go ", i.Common()) }

func (fl *funcLowerer) VisitDefer(i *ssa.Defer) { fl.call("defer ", i.Common()) }

// call emits a call keeping only the integer arguments.
func (fl *funcLowerer) call(prefix string, c *ssa.CallCommon) ir.ValueID {
	var args []ir.ValueID
	for _, a := range c.Args {
		if _, ok := intBits(a.Type()); !ok {
			continue
		}
		if id, ok := fl.operand(a); ok {
			args = append(args, id)
		}
	}
	return fl.b.Call(prefix+callee(c), args...)
}

func callee(c *ssa.CallCommon) string {
	if c.IsInvoke() {
		return c.Method.Name()
	}
	if fn := c.StaticCallee(); fn != nil {
		return fn.Name()
	}
	return c.Value.Name()
}

func (fl *funcLowerer) VisitPhi(i *ssa.Phi) {
	if _, ok := fl.values[i]; !ok {
		fl.opaque(i)
	}
}

func (fl *funcLowerer) VisitIf(i *ssa.If) {
	cond, ok := fl.operand(i.Cond)
	if !ok {
		cond = fl.b.Opaque(1)
	}
	succs := i.Block().Succs
	fl.b.If(cond, fl.blocks[succs[0].Index], fl.blocks[succs[1].Index])
}

func (fl *funcLowerer) VisitJump(i *ssa.Jump) {
	fl.b.Jump(fl.blocks[i.Block().Succs[0].Index])
}

func (fl *funcLowerer) VisitReturn(i *ssa.Return) {
	var results []ir.ValueID
	for _, r := range i.Results {
		if _, ok := intBits(r.Type()); !ok {
			continue
		}
		if id, ok := fl.operand(r); ok {
			results = append(results, id)
		}
	}
	fl.b.Return(results...)
}

func (fl *funcLowerer) VisitPanic(i *ssa.Panic) {
	fl.b.Call("panic")
	fl.b.Return()
}
