package interp

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/nickng/ivsr/internal/irtest"
	"github.com/nickng/ivsr/ir"
)

func sinkAffine(b *ir.Builder, i ir.ValueID) []ir.ValueID {
	_, j := irtest.Affine(b, i, 2, 3)
	b.Call("sink", j)
	return []ir.ValueID{j}
}

func TestRunCountedLoop(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, sinkAffine)
	tr, err := Run(l.Fn, []int64{3}, Watch(l.I))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{3, 5, 7}
	if len(tr.Calls) != len(want) {
		t.Fatalf("want %d calls, got %v", len(want), tr.Calls)
	}
	for i, c := range tr.Calls {
		if c.Callee != "sink" || len(c.Args) != 1 || c.Args[0] != want[i] {
			t.Errorf("call %d: want sink[%d], got %s", i, want[i], c)
		}
	}
	if want, got := []int64{0, 1, 2, 3}, tr.Watched[l.I]; len(got) != len(want) {
		t.Errorf("counter: want %v, got %v", want, got)
	} else {
		for i := range want {
			if want[i] != got[i] {
				t.Errorf("counter[%d]: want %d, got %d", i, want[i], got[i])
			}
		}
	}
}

func TestRunReturn(t *testing.T) {
	b := ir.NewBuilder("f")
	x := b.Param("x", 32)
	b.SetBlock(b.NewBlock("entry"))
	b.Return(b.BinOp(ir.OpMul, x, b.Const(32, 3)))
	tr, err := Run(b.Func(), []int64{math.MaxInt32})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := ir.Truncate(32, 3*math.MaxInt32); len(tr.Return) != 1 || tr.Return[0] != want {
		t.Errorf("want return %d (wrapped to 32 bits), got %v", want, tr.Return)
	}
}

func TestRunStepLimit(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, nil)
	_, err := Run(l.Fn, []int64{1 << 40}, MaxSteps(100))
	if errors.Cause(err) != ErrStepLimit {
		t.Errorf("want %v, got %v", ErrStepLimit, err)
	}
}

func TestRunOpaque(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, func(b *ir.Builder, i ir.ValueID) []ir.ValueID {
		b.Call("sink", b.BinOp(ir.OpAdd, i, b.Opaque(64)))
		return nil
	})
	_, err := Run(l.Fn, []int64{2})
	if errors.Cause(err) != ErrOpaque {
		t.Errorf("want %v, got %v", ErrOpaque, err)
	}
}

func TestRunArgCount(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, nil)
	if _, err := Run(l.Fn, nil); err == nil {
		t.Errorf("missing argument should be an error")
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		op   ir.Op
		bits int
		x, y int64
		want int64
	}{
		{"add wraps", ir.OpAdd, 8, 127, 1, -128},
		{"sub", ir.OpSub, 64, 3, 5, -2},
		{"mul wraps", ir.OpMul, 16, 256, 256, 0},
		{"div truncates", ir.OpDiv, 64, -7, 2, -3},
		{"rem sign of dividend", ir.OpRem, 64, -7, 2, -1},
		{"div overflow", ir.OpDiv, 32, math.MinInt32, -1, math.MinInt32},
		{"shl", ir.OpShl, 64, 3, 4, 48},
		{"shl out of range", ir.OpShl, 32, 1, 32, 0},
		{"shr negative", ir.OpShr, 64, -8, 1, -4},
		{"shr out of range", ir.OpShr, 8, -1, 9, -1},
		{"ushr", ir.OpUShr, 8, -1, 4, 15},
		{"ushr 64", ir.OpUShr, 64, -1, 63, 1},
		{"and", ir.OpAnd, 64, -7, -4, -8},
		{"or", ir.OpOr, 64, 4, 1, 5},
		{"xor", ir.OpXor, 64, 6, 3, 5},
		{"lt", ir.OpLt, 64, -1, 0, 1},
		{"ge", ir.OpGe, 64, -1, 0, 0},
		{"eq", ir.OpEq, 64, 4, 4, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Eval(test.op, test.bits, test.x, test.y)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.want {
				t.Errorf("%s i%d %d, %d: want %d, got %d", test.op, test.bits, test.x, test.y, test.want, got)
			}
		})
	}
}

func TestEvalDivByZero(t *testing.T) {
	for _, op := range []ir.Op{ir.OpDiv, ir.OpRem} {
		if _, err := Eval(op, 64, 1, 0); err != ErrDivByZero {
			t.Errorf("%s by zero: want %v, got %v", op, ErrDivByZero, err)
		}
	}
}
