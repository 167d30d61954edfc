package ir_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nickng/ivsr/internal/irtest"
	"github.com/nickng/ivsr/ir"
	"go.uber.org/multierr"
)

func affineBody(b *ir.Builder, i ir.ValueID) []ir.ValueID {
	_, j := irtest.Affine(b, i, 2, 3)
	b.Call("sink", j)
	return []ir.ValueID{j}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		bits int
		x    int64
		want int64
	}{
		{64, -5, -5},
		{32, 1<<32 + 7, 7},
		{32, 1<<31 + 0, -1 << 31},
		{8, 255, -1},
		{8, 128, -128},
		{16, -1, -1},
		{1, 3, 1},
		{1, 2, 0},
	}
	for _, test := range tests {
		if got := ir.Truncate(test.bits, test.x); got != test.want {
			t.Errorf("Truncate(%d, %d): want %d, got %d", test.bits, test.x, test.want, got)
		}
	}
}

func TestConstInterned(t *testing.T) {
	fn := ir.NewFunc("f")
	a, b := fn.Const(64, 5), fn.Const(64, 5)
	if a != b {
		t.Errorf("constant 5 should be interned, got v%d and v%d", a, b)
	}
	if c := fn.Const(32, 5); c == a {
		t.Errorf("constants of different width should not share a handle")
	}
	if want, got := fn.Const(32, 1), fn.Const(32, 1<<32+1); want != got {
		t.Errorf("constant should be truncated before interning: want v%d got v%d", want, got)
	}
	if k, ok := fn.IntConst(a); !ok || k != 5 {
		t.Errorf("IntConst(v%d): want (5, true), got (%d, %t)", a, k, ok)
	}
}

func TestIntConstNonConst(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, nil)
	if _, ok := l.Fn.IntConst(l.I); ok {
		t.Errorf("phi should not be recognised as a constant")
	}
	if _, ok := l.Fn.IntConst(ir.ValueID(1000)); ok {
		t.Errorf("unallocated handle should not be recognised as a constant")
	}
}

func TestIncoming(t *testing.T) {
	l := irtest.CountedLoop("f", 4, 1, nil)
	edges := l.Fn.Incoming(l.I)
	if len(edges) != 2 {
		t.Fatalf("counter should have 2 incoming edges, got %d", len(edges))
	}
	if k, _ := l.Fn.IntConst(edges[0].Value); edges[0].Pred != l.Entry.ID || k != 4 {
		t.Errorf("first edge should be (b%d, 4), got (b%d, %s)", l.Entry.ID, edges[0].Pred, l.Fn.Ref(edges[0].Value))
	}
	if v, ok := l.Fn.IncomingFrom(l.I, l.Body.ID); !ok || v != l.Next {
		t.Errorf("edge from body should carry v%d, got %s", l.Next, l.Fn.Ref(v))
	}
}

func TestInsertPhiBeforeCounter(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, nil)
	phi := l.Fn.InsertPhi(l.Header.ID, l.I, 64)
	if want, got := []ir.ValueID{phi, l.I}, l.Fn.Phis(l.Header); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("new phi should precede the counter: want %v, got %v", want, got)
	}
	if v := l.Fn.Value(phi); v.Block != l.Header.ID || len(v.Args) != 0 {
		t.Errorf("new phi should be empty and in b%d, got %s", l.Header.ID, l.Fn.Format(phi))
	}
}

func TestInsertBinOpBeforeTerminator(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, nil)
	n := len(l.Entry.Instrs)
	v := l.Fn.InsertBinOp(ir.OpMul, l.N, l.Fn.Const(64, 3), l.Entry.ID, ir.NoValue)
	if len(l.Entry.Instrs) != n+1 || l.Entry.Instrs[n-1] != v {
		t.Errorf("insert should go before the terminator: %v", l.Entry.Instrs)
	}
	if term := l.Fn.Terminator(l.Entry); term == nil || term.Op != ir.OpJump {
		t.Errorf("entry should still end in a jump")
	}
	w := l.Fn.InsertBinOp(ir.OpAdd, v, l.Fn.Const(64, 1), l.Entry.ID, v)
	if l.Entry.Instrs[n-1] != w || l.Entry.Instrs[n] != v {
		t.Errorf("insert before v%d should precede it: %v", v, l.Entry.Instrs)
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, affineBody)
	j := l.Results[0]
	phi := l.Fn.InsertPhi(l.Header.ID, l.I, 64)
	next := l.Fn.InsertBinOp(ir.OpAdd, phi, l.Fn.Const(64, 2), l.Body.ID, ir.NoValue)
	l.Fn.AddIncoming(phi, l.Fn.Const(64, 3), l.Entry.ID)
	l.Fn.AddIncoming(phi, next, l.Body.ID)

	if want, got := 1, l.Fn.ReplaceAllUsesWith(j, phi); want != got {
		t.Errorf("want %d operand rewritten, got %d", want, got)
	}
	if uses := l.Fn.Uses(j); len(uses) != 0 {
		t.Errorf("v%d should have no uses left, got %v", j, uses)
	}
	if uses := l.Fn.Uses(phi); len(uses) != 2 {
		t.Errorf("phi should be used by the call and its increment, got %v", uses)
	}
	if got := l.Fn.ReplaceAllUsesWith(phi, phi); got != 0 {
		t.Errorf("self replacement should be a no-op, got %d", got)
	}
}

func TestRemoveValue(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, affineBody)
	mul := l.Fn.Value(l.Results[0]).Args[0]
	l.Fn.ReplaceAllUsesWith(mul, l.I)
	l.Fn.RemoveValue(mul)
	if l.Fn.Value(mul) != nil {
		t.Errorf("removed value should not be reachable")
	}
	for _, id := range l.Body.Instrs {
		if id == mul {
			t.Errorf("removed value still in block: %v", l.Body.Instrs)
		}
	}
	if err := ir.Verify(l.Fn); err != nil {
		t.Errorf("function should still verify: %v", err)
	}
}

func TestVerify(t *testing.T) {
	l := irtest.CountedLoop("f", 0, 1, affineBody)
	if err := ir.Verify(l.Fn); err != nil {
		t.Fatalf("canonical loop should verify: %v", err)
	}
	phi := l.Fn.InsertPhi(l.Header.ID, l.I, 64)
	l.Fn.AddIncoming(phi, l.Fn.Const(64, 3), l.Entry.ID)
	err := ir.Verify(l.Fn)
	if err == nil {
		t.Fatalf("phi with a missing back edge should not verify")
	}
	errs := multierr.Errors(err)
	if len(errs) != 1 {
		t.Errorf("want 1 problem, got %d: %v", len(errs), err)
	}
	if !strings.Contains(err.Error(), fmt.Sprintf("no incoming edge from predecessor b%d", l.Body.ID)) {
		t.Errorf("unexpected verify message: %v", err)
	}
}

func TestVerifyMissingTerminator(t *testing.T) {
	b := ir.NewBuilder("f")
	b.SetBlock(b.NewBlock("entry"))
	b.BinOp(ir.OpAdd, b.Const(64, 1), b.Const(64, 2))
	if err := ir.Verify(b.Func()); err == nil || !strings.Contains(err.Error(), "terminator") {
		t.Errorf("want missing terminator error, got %v", err)
	}
}

func TestOpClasses(t *testing.T) {
	if !ir.OpMul.IsBinary() || !ir.OpMul.IsArith() || !ir.OpMul.IsCommutative() {
		t.Errorf("mul should be a commutative binary arithmetic op")
	}
	if ir.OpSub.IsCommutative() || ir.OpDiv.IsCommutative() {
		t.Errorf("sub and div are not commutative")
	}
	if !ir.OpLt.IsCompare() || ir.OpLt.IsArith() {
		t.Errorf("lt should be a comparison")
	}
	if ir.OpPhi.IsBinary() || !ir.OpIf.IsTerminator() {
		t.Errorf("phi is not binary and if is a terminator")
	}
	if want, got := "ushr", ir.OpUShr.String(); want != got {
		t.Errorf("want %q got %q", want, got)
	}
}

func ExampleFunc_WriteTo() {
	l := irtest.CountedLoop("loop", 0, 1, affineBody)
	fmt.Print(l.Fn.String())
	// Output:
	// func loop(v0 i64):
	// b0: entry P:0 S:1
	// 	jump b1
	// b1: for.loop P:2 S:2
	// 	v2 = phi i64 [b0: 0, b2: v11] ; i
	// 	v3 = lt i1 v2, v0
	// 	if v3 goto b2 else b3
	// b2: for.body P:1 S:1
	// 	v6 = mul i64 v2, 2
	// 	v8 = add i64 v6, 3
	// 	v9 = call sink(v8)
	// 	v11 = add i64 v2, 1
	// 	jump b1
	// b3: for.done P:1 S:0
	// 	return
}
