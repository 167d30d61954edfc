package indvar

import (
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/loop"
)

// Close extends t to a fixpoint. A multiplication or an addition gets a
// descriptor when exactly one operand has a descriptor and the other is a
// constant k:
//
//	mul: Base×(Mul·k) + Add·k
//	add: Base×Mul + (Add+k)
//
// The blocks of l are scanned in order and the scan is repeated until it adds
// nothing, so chains resolve whatever the order of their instructions. After
// the fixpoint, Close reports the arithmetic that involves a derived value or
// only constants but was not extended.
func Close(fn *ir.Func, l *loop.Info, t *Table) []Diagnostic {
	for {
		added := 0
		for _, b := range l.Blocks() {
			for _, id := range b.Instrs {
				v := fn.Value(id)
				if !v.Op.IsArith() {
					continue
				}
				if _, ok := t.Lookup(id); ok {
					continue
				}
				if d, ok := extend(fn, t, v); ok {
					t.Insert(id, d)
					added++
				}
			}
		}
		if added == 0 {
			break
		}
	}

	var diags []Diagnostic
	for _, b := range l.Blocks() {
		for _, id := range b.Instrs {
			v := fn.Value(id)
			if !v.Op.IsArith() {
				continue
			}
			if _, ok := t.Lookup(id); ok {
				continue
			}
			if kind, ok := classify(fn, t, v); ok {
				diags = append(diags, Diagnostic{
					Kind:   kind,
					Loop:   l.Header().ID,
					Value:  id,
					Detail: fn.Format(id),
				})
			}
		}
	}
	return diags
}

// operands splits a binary instruction into its derived operand and constant
// operand, in either order.
func operands(fn *ir.Func, t *Table, v *ir.Value) (Descriptor, int64, bool) {
	x, y := v.Args[0], v.Args[1]
	if d, ok := t.Lookup(x); ok {
		if k, ok := fn.IntConst(y); ok {
			return d, k, true
		}
	}
	if d, ok := t.Lookup(y); ok {
		if k, ok := fn.IntConst(x); ok {
			return d, k, true
		}
	}
	return Descriptor{}, 0, false
}

func extend(fn *ir.Func, t *Table, v *ir.Value) (Descriptor, bool) {
	d, k, ok := operands(fn, t, v)
	if !ok {
		return Descriptor{}, false
	}
	switch v.Op {
	case ir.OpMul:
		d.Mul = ir.Truncate(v.Bits, d.Mul*k)
		d.Add = ir.Truncate(v.Bits, d.Add*k)
	case ir.OpAdd:
		d.Add = ir.Truncate(v.Bits, d.Add+k)
	default:
		return Descriptor{}, false
	}
	d.Basic = false
	return d, true
}

func classify(fn *ir.Func, t *Table, v *ir.Value) (Kind, bool) {
	x, y := v.Args[0], v.Args[1]
	_, dx := t.Lookup(x)
	_, dy := t.Lookup(y)
	_, cx := fn.IntConst(x)
	_, cy := fn.IntConst(y)
	switch {
	case dx && dy:
		return BothDerived, true
	case cx && cy:
		return BothConstant, true
	case dx && cy, dy && cx:
		return Unsupported, true
	}
	return 0, false
}
