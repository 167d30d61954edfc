package pow2

import (
	"math"
	"testing"

	"github.com/nickng/ivsr/interp"
	"github.com/nickng/ivsr/ir"
)

// arith returns x*8, x/4, x%4, 16*x, x/3 and x*1 at the given width.
func arith(width int) *ir.Func {
	b := ir.NewBuilder("arith")
	x := b.Param("x", width)
	b.SetBlock(b.NewBlock("entry"))
	b.Return(
		b.BinOp(ir.OpMul, x, b.Const(width, 8)),
		b.BinOp(ir.OpDiv, x, b.Const(width, 4)),
		b.BinOp(ir.OpRem, x, b.Const(width, 4)),
		b.BinOp(ir.OpMul, b.Const(width, 16), x),
		b.BinOp(ir.OpDiv, x, b.Const(width, 3)),
		b.BinOp(ir.OpMul, x, b.Const(width, 1)),
	)
	return b.Func()
}

func TestRewrites(t *testing.T) {
	fn := arith(64)
	ret := fn.Terminator(fn.Entry())
	orig := append([]ir.ValueID(nil), ret.Args...)
	modified, err := New().Run(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !modified {
		t.Fatalf("function should be modified")
	}
	if err := ir.Verify(fn); err != nil {
		t.Fatal(err)
	}
	wantOps := []ir.Op{ir.OpShl, ir.OpShr, ir.OpSub, ir.OpShl, ir.OpDiv, ir.OpMul}
	for i, want := range wantOps {
		if got := fn.Value(ret.Args[i]).Op; want != got {
			t.Errorf("result %d: want %s, got %s", i, want, got)
		}
	}
	if ret.Args[4] != orig[4] || ret.Args[5] != orig[5] {
		t.Errorf("x/3 and x*1 should be left alone")
	}
	if k, _ := fn.IntConst(fn.Value(ret.Args[0]).Args[1]); k != 3 {
		t.Errorf("x*8 should shift by 3, got %d", k)
	}
	if again, _ := New().Run(fn); again {
		t.Errorf("second run should not find anything:\n%s", fn)
	}
}

func TestSignedSemantics(t *testing.T) {
	for _, width := range []int{8, 32, 64} {
		fn := arith(width)
		if _, err := New().Run(fn); err != nil {
			t.Fatal(err)
		}
		inputs := []int64{-9, -8, -7, -5, -4, -3, -1, 0, 1, 3, 4, 5, 9, 100,
			ir.Truncate(width, math.MinInt64>>uint(64-width)), ir.Truncate(width, math.MaxInt64>>uint(64-width))}
		for _, x := range inputs {
			x = ir.Truncate(width, x)
			want, err := interp.Run(arith(width), []int64{x})
			if err != nil {
				t.Fatal(err)
			}
			got, err := interp.Run(fn, []int64{x})
			if err != nil {
				t.Fatal(err)
			}
			for i := range want.Return {
				if want.Return[i] != got.Return[i] {
					t.Errorf("i%d x=%d result %d: want %d, got %d", width, x, i, want.Return[i], got.Return[i])
				}
			}
		}
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		width int
		x     int64
		k     int
		ok    bool
	}{
		{64, 2, 1, true},
		{64, 1 << 40, 40, true},
		{64, 1, 0, false},
		{64, 6, 0, false},
		{64, -4, 0, false},
		{8, 64, 6, true},
		{8, -128, 0, false},
	}
	for _, test := range tests {
		k, ok := log2(test.width, test.x)
		if k != test.k || ok != test.ok {
			t.Errorf("log2(%d, %d): want (%d, %t), got (%d, %t)", test.width, test.x, test.k, test.ok, k, ok)
		}
	}
}
