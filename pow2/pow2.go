// Package pow2 replaces multiplication, division and remainder by a power of
// two with shifts.
//
// Each instruction is rewritten on its own:
//
//	mul x, 2^k  →  shl x, k
//	div x, 2^k  →  shr (add x, (ushr (shr x, bits-1), bits-k)), k
//	rem x, 2^k  →  sub x, (and (add x, bias), -2^k)
//
// where bias is the ushr term of the division. The bias rounds negative
// dividends towards zero, so the results match signed division. The
// replaced instruction is left without uses.
package pow2

import (
	"math/bits"

	"github.com/fatih/color"

	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/pass"
)

// Name is the name of the pass in the pass registry.
const Name = "sr"

func init() {
	pass.Register(Name, "power of two multiply, divide and remainder to shifts", func(pass.Config) (pass.Pass, error) {
		return New(), nil
	})
}

// Pass is the power of two strength reduction.
type Pass struct {
	*logger.Logger
}

// New returns a Pass that logs nowhere until SetLogger is called.
func New() *Pass {
	return &Pass{Logger: logger.Nop().WithModule(Name, color.YellowString)}
}

// SetLogger sets logger for Pass.
func (p *Pass) SetLogger(l *logger.Logger) {
	p.Logger = l.WithModule(Name, color.YellowString)
}

func (p *Pass) Name() string { return Name }

// Run rewrites every eligible instruction of fn.
func (p *Pass) Run(fn *ir.Func) (bool, error) {
	n := 0
	for _, b := range fn.Blocks {
		instrs := append([]ir.ValueID(nil), b.Instrs...)
		for _, id := range instrs {
			v := fn.Value(id)
			if len(fn.Uses(id)) == 0 {
				continue
			}
			var repl ir.ValueID
			switch v.Op {
			case ir.OpMul:
				repl = mul(fn, v)
			case ir.OpDiv:
				repl = div(fn, v)
			case ir.OpRem:
				repl = rem(fn, v)
			default:
				continue
			}
			if repl == ir.NoValue {
				continue
			}
			p.Debugf("%s %s: %s → %s", p.Module(), fn.Name, fn.Format(id), fn.Format(repl))
			fn.ReplaceAllUsesWith(id, repl)
			n++
		}
	}
	return n > 0, nil
}

// log2 returns k if x is 2^k with k ≥ 1 and x fits in a signed integer of the
// given width.
func log2(width int, x int64) (int, bool) {
	if x < 2 || x&(x-1) != 0 {
		return 0, false
	}
	k := bits.TrailingZeros64(uint64(x))
	if k >= width-1 {
		return 0, false
	}
	return k, true
}

func mul(fn *ir.Func, v *ir.Value) ir.ValueID {
	x, y := v.Args[0], v.Args[1]
	if _, ok := fn.IntConst(x); ok {
		x, y = y, x
	}
	if _, ok := fn.IntConst(x); ok {
		return ir.NoValue
	}
	c, ok := fn.IntConst(y)
	if !ok {
		return ir.NoValue
	}
	k, ok := log2(v.Bits, c)
	if !ok {
		return ir.NoValue
	}
	return fn.InsertBinOp(ir.OpShl, x, fn.Const(v.Bits, int64(k)), v.Block, v.ID)
}

// bias returns ushr (shr x, bits-1), bits-k: 2^k-1 for negative x, 0
// otherwise.
func bias(fn *ir.Func, v *ir.Value, x ir.ValueID, k int) ir.ValueID {
	sign := fn.InsertBinOp(ir.OpShr, x, fn.Const(v.Bits, int64(v.Bits-1)), v.Block, v.ID)
	return fn.InsertBinOp(ir.OpUShr, sign, fn.Const(v.Bits, int64(v.Bits-k)), v.Block, v.ID)
}

func divisor(fn *ir.Func, v *ir.Value) (ir.ValueID, int, bool) {
	x := v.Args[0]
	if _, ok := fn.IntConst(x); ok {
		return ir.NoValue, 0, false
	}
	c, ok := fn.IntConst(v.Args[1])
	if !ok {
		return ir.NoValue, 0, false
	}
	k, ok := log2(v.Bits, c)
	return x, k, ok
}

func div(fn *ir.Func, v *ir.Value) ir.ValueID {
	x, k, ok := divisor(fn, v)
	if !ok {
		return ir.NoValue
	}
	sum := fn.InsertBinOp(ir.OpAdd, x, bias(fn, v, x, k), v.Block, v.ID)
	return fn.InsertBinOp(ir.OpShr, sum, fn.Const(v.Bits, int64(k)), v.Block, v.ID)
}

func rem(fn *ir.Func, v *ir.Value) ir.ValueID {
	x, k, ok := divisor(fn, v)
	if !ok {
		return ir.NoValue
	}
	sum := fn.InsertBinOp(ir.OpAdd, x, bias(fn, v, x, k), v.Block, v.ID)
	mask := fn.InsertBinOp(ir.OpAnd, sum, fn.Const(v.Bits, -(int64(1) << uint(k))), v.Block, v.ID)
	return fn.InsertBinOp(ir.OpSub, x, mask, v.Block, v.ID)
}
