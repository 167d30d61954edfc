package opt_test

import (
	"testing"

	"github.com/nickng/ivsr/indvar"
	"github.com/nickng/ivsr/internal/irtest"
	"github.com/nickng/ivsr/interp"
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/opt"
)

func TestFoldConstants(t *testing.T) {
	b := ir.NewBuilder("f")
	b.SetBlock(b.NewBlock("entry"))
	prod := b.BinOp(ir.OpMul, b.Const(64, 2), b.Const(64, 3))
	sum := b.BinOp(ir.OpAdd, prod, b.Const(64, 4))
	cmp := b.BinOp(ir.OpLt, sum, b.Const(64, 11))
	div := b.BinOp(ir.OpDiv, b.Const(64, 1), b.Const(64, 0))
	b.Return(sum, cmp, div)
	fn := b.Func()

	if want, got := 3, opt.FoldConstants(fn); want != got {
		t.Errorf("want %d folded, got %d", want, got)
	}
	ret := fn.Terminator(fn.Entry())
	if k, ok := fn.IntConst(ret.Args[0]); !ok || k != 10 {
		t.Errorf("2*3+4 should fold to 10, got %s", fn.Ref(ret.Args[0]))
	}
	if k, ok := fn.IntConst(ret.Args[1]); !ok || k != 1 || fn.Value(ret.Args[1]).Bits != 1 {
		t.Errorf("10 < 11 should fold to i1 1, got %s", fn.Format(ret.Args[1]))
	}
	if ret.Args[2] != div {
		t.Errorf("division by zero should not be folded")
	}
	if want, got := 3, opt.EliminateDeadCode(fn); want != got {
		t.Errorf("want %d removed, got %d:\n%s", want, got, fn)
	}
	if err := ir.Verify(fn); err != nil {
		t.Error(err)
	}
}

func TestDeadCycle(t *testing.T) {
	// The counter only feeds itself once the bound no longer uses it.
	l := irtest.CountedLoop("f", 0, 1, nil)
	cond := l.Fn.Value(l.Fn.Terminator(l.Header).Args[0])
	cond.Args[0] = l.N
	removed := opt.EliminateDeadCode(l.Fn)
	if want := 2; removed != want {
		t.Errorf("want phi and increment removed (%d), got %d:\n%s", want, removed, l.Fn)
	}
	if l.Fn.Value(l.I) != nil || l.Fn.Value(l.Next) != nil {
		t.Errorf("dead counter should be removed")
	}
}

func TestCleanupAfterReduction(t *testing.T) {
	mk := func() *irtest.Loop {
		return irtest.CountedLoop("f", 0, 1, func(b *ir.Builder, i ir.ValueID) []ir.ValueID {
			_, j := irtest.Affine(b, i, 2, 3)
			b.Call("sink", j)
			return nil
		})
	}
	l := mk()
	fn := l.Fn
	if _, err := indvar.New(indvar.Options{}).Run(fn); err != nil {
		t.Fatal(err)
	}
	folded := opt.FoldConstants(fn)
	removed := opt.EliminateDeadCode(fn)
	if folded != 2 {
		t.Errorf("init 0*2+3 should fold in 2 steps, got %d", folded)
	}
	// Old mul and add, and the two preheader instructions.
	if removed != 4 {
		t.Errorf("want 4 removed, got %d:\n%s", removed, fn)
	}
	for _, id := range l.Body.Instrs {
		if op := fn.Value(id).Op; op == ir.OpMul {
			t.Errorf("no multiplication should be left in the loop body:\n%s", fn)
		}
	}
	if err := ir.Verify(fn); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int64{0, 1, 5} {
		want, _ := interp.Run(mk().Fn, []int64{n})
		got, err := interp.Run(fn, []int64{n})
		if err != nil {
			t.Fatal(err)
		}
		if len(want.Calls) != len(got.Calls) {
			t.Fatalf("n=%d: want %v, got %v", n, want.Calls, got.Calls)
		}
		for i := range want.Calls {
			if want.Calls[i].String() != got.Calls[i].String() {
				t.Errorf("n=%d call %d: want %s, got %s", n, i, want.Calls[i], got.Calls[i])
			}
		}
	}
}
