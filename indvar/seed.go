package indvar

import (
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/loop"
)

// Seed records the phis of the loop header. The incoming value from the
// preheader is kept as the initial value, and the first incoming edge from
// inside the loop names the latch.
//
// A phi that steps in lockstep with another counter c, starting at
// init(c)×m + a and bumped by m×step(c), is recorded as c×m + a rather than as
// a basic counter. Every other phi is a basic counter. Phis are matched from
// the last to the first, so counters inserted in front of c by an earlier run
// are found to derive from c.
func Seed(fn *ir.Func, l *loop.Info, t *Table) {
	pre := ir.NoBlock
	if p := l.Preheader(); p != nil {
		pre = p.ID
	}
	phis := fn.Phis(l.Header())
	descs := make([]Descriptor, len(phis))
	for i, phi := range phis {
		d := Descriptor{
			Base:  phi,
			Mul:   1,
			Add:   0,
			Basic: true,
			Init:  ir.NoValue,
			Latch: ir.NoBlock,
		}
		for _, e := range fn.Incoming(phi) {
			switch {
			case e.Pred == pre:
				d.Init = e.Value
			case l.Contains(e.Pred) && d.Latch == ir.NoBlock:
				d.Latch = e.Pred
			}
		}
		descs[i] = d
	}
	for i := len(descs) - 1; i >= 0; i-- {
		for j := len(descs) - 1; j > i; j-- {
			if !descs[j].Basic {
				continue
			}
			if d, ok := lockstep(fn, descs[i], descs[j]); ok {
				descs[i] = d
				break
			}
		}
	}
	for i, phi := range phis {
		t.Insert(phi, descs[i])
	}
}

// lockstep returns the descriptor of counter p in terms of the basic counter
// c, if p = c×m + a on every iteration.
func lockstep(fn *ir.Func, p, c Descriptor) (Descriptor, bool) {
	if p.Init == ir.NoValue || c.Init == ir.NoValue || p.Latch == ir.NoBlock || p.Latch != c.Latch {
		return Descriptor{}, false
	}
	bits := fn.Value(p.Base).Bits
	if fn.Value(c.Base).Bits != bits {
		return Descriptor{}, false
	}
	ps, ok := step(fn, p.Base, p.Latch)
	if !ok {
		return Descriptor{}, false
	}
	cs, ok := step(fn, c.Base, c.Latch)
	if !ok || cs == 0 {
		return Descriptor{}, false
	}
	d := Descriptor{Base: c.Base, Init: c.Init, Latch: c.Latch}
	if m, a, ok := scaledInit(fn, p.Init, c.Init); ok {
		if ir.Truncate(bits, m*cs) != ps {
			return Descriptor{}, false
		}
		d.Mul, d.Add = m, a
		return d, true
	}
	p0, ok := fn.IntConst(p.Init)
	if !ok {
		return Descriptor{}, false
	}
	c0, ok := fn.IntConst(c.Init)
	if !ok || ps%cs != 0 || ps/cs == 0 {
		return Descriptor{}, false
	}
	d.Mul = ps / cs
	d.Add = ir.Truncate(bits, p0-c0*d.Mul)
	return d, true
}

// step returns s if the value phi receives from latch is phi + s.
func step(fn *ir.Func, phi ir.ValueID, latch ir.BlockID) (int64, bool) {
	next, ok := fn.IncomingFrom(phi, latch)
	if !ok {
		return 0, false
	}
	v := fn.Value(next)
	if v == nil || v.Op != ir.OpAdd {
		return 0, false
	}
	return constOperand(fn, v, phi)
}

// scaledInit matches init = x×m + a with x the initial value of the base
// counter, as computed in the preheader for a rewritten value.
func scaledInit(fn *ir.Func, init, x ir.ValueID) (m, a int64, ok bool) {
	add := fn.Value(init)
	if add == nil || add.Op != ir.OpAdd {
		return 0, 0, false
	}
	for i, arg := range add.Args {
		mul := fn.Value(arg)
		if mul == nil || mul.Op != ir.OpMul {
			continue
		}
		k, ok := fn.IntConst(add.Args[1-i])
		if !ok {
			continue
		}
		if m, ok := constOperand(fn, mul, x); ok {
			return m, k, true
		}
	}
	return 0, 0, false
}

// constOperand returns k if v has operands x and the constant k, in either
// order.
func constOperand(fn *ir.Func, v *ir.Value, x ir.ValueID) (int64, bool) {
	switch {
	case v.Args[0] == x:
		return fn.IntConst(v.Args[1])
	case v.Args[1] == x:
		return fn.IntConst(v.Args[0])
	}
	return 0, false
}
