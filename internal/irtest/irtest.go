// Package irtest builds small ir functions shared by the tests of several
// packages.
package irtest

import "github.com/nickng/ivsr/ir"

// Loop is a canonical counted loop:
//
//	entry:    jump header
//	header:   i = phi [entry: init, body: next]
//	          if i < n goto body else done
//	body:     ...
//	          next = i + step
//	          jump header
//	done:     return
type Loop struct {
	Fn      *ir.Func
	B       *ir.Builder
	N       ir.ValueID // Loop bound parameter.
	I       ir.ValueID // Basic counter.
	Next    ir.ValueID // Counter increment.
	Entry   *ir.Block
	Header  *ir.Block
	Body    *ir.Block
	Done    *ir.Block
	Results []ir.ValueID // Values returned by body, in order.
}

// CountedLoop builds a Loop counting from init in steps of step. The body
// callback emits instructions into the loop body and may return values to
// record in Results.
func CountedLoop(name string, init, step int64, body func(b *ir.Builder, i ir.ValueID) []ir.ValueID) *Loop {
	b := ir.NewBuilder(name)
	l := &Loop{B: b, Fn: b.Func()}
	l.N = b.Param("n", 64)
	l.Entry = b.NewBlock("entry")
	l.Header = b.NewBlock("for.loop")
	l.Body = b.NewBlock("for.body")
	l.Done = b.NewBlock("for.done")

	b.SetBlock(l.Entry)
	b.Jump(l.Header)

	b.SetBlock(l.Header)
	l.I = b.Name(b.Phi(64), "i")
	b.If(b.BinOp(ir.OpLt, l.I, l.N), l.Body, l.Done)

	b.SetBlock(l.Body)
	if body != nil {
		l.Results = body(b, l.I)
	}
	l.Next = b.BinOp(ir.OpAdd, l.I, b.Const(64, step))
	b.Jump(l.Header)

	b.AddIncoming(l.I, b.Const(64, init), l.Entry)
	b.AddIncoming(l.I, l.Next, l.Body)

	b.SetBlock(l.Done)
	b.Return()
	return l
}

// Affine emits m*x+a into the current block and returns the multiply and the
// add.
func Affine(b *ir.Builder, x ir.ValueID, m, a int64) (mul, add ir.ValueID) {
	mul = b.BinOp(ir.OpMul, x, b.Const(64, m))
	add = b.BinOp(ir.OpAdd, mul, b.Const(64, a))
	return mul, add
}

// TwoLoops builds a function with two sequential counted loops sharing the
// block between them: the exit of the first loop is the preheader of the
// second. Each loop computes 2*i+3 (first) and 5*j+7 (second) and passes it to
// sink. It returns the function and the derived values of each loop.
func TwoLoops(name string) (fn *ir.Func, first, second ir.ValueID) {
	b := ir.NewBuilder(name)
	n := b.Param("n", 64)
	entry := b.NewBlock("entry")
	h1 := b.NewBlock("for.loop")
	b1 := b.NewBlock("for.body")
	mid := b.NewBlock("for.done")
	h2 := b.NewBlock("for.loop")
	b2 := b.NewBlock("for.body")
	done := b.NewBlock("for.done")

	b.SetBlock(entry)
	b.Jump(h1)

	b.SetBlock(h1)
	i := b.Name(b.Phi(64), "i")
	b.If(b.BinOp(ir.OpLt, i, n), b1, mid)
	b.SetBlock(b1)
	_, first = Affine(b, i, 2, 3)
	b.Call("sink", first)
	nextI := b.BinOp(ir.OpAdd, i, b.Const(64, 1))
	b.Jump(h1)
	b.AddIncoming(i, b.Const(64, 0), entry)
	b.AddIncoming(i, nextI, b1)

	b.SetBlock(mid)
	b.Jump(h2)

	b.SetBlock(h2)
	j := b.Name(b.Phi(64), "j")
	b.If(b.BinOp(ir.OpLt, j, n), b2, done)
	b.SetBlock(b2)
	_, second = Affine(b, j, 5, 7)
	b.Call("sink", second)
	nextJ := b.BinOp(ir.OpAdd, j, b.Const(64, 2))
	b.Jump(h2)
	b.AddIncoming(j, b.Const(64, 1), mid)
	b.AddIncoming(j, nextJ, b2)

	b.SetBlock(done)
	b.Return()
	return b.Func(), first, second
}
