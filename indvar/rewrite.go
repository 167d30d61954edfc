package indvar

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/loop"
)

// Filter selects the descriptors that are rewritten. Basic counters are never
// rewritten.
type Filter int

const (
	// Complete rewrites descriptors with Mul ≠ 1 and Add ≠ 0.
	Complete Filter = iota
	// Affine rewrites any descriptor other than the identity, including pure
	// scaling (Add = 0) and pure offsets (Mul = 1).
	Affine
)

// ParseFilter returns the filter called name: "complete" (or empty) and "any".
func ParseFilter(name string) (Filter, error) {
	switch name {
	case "", "complete":
		return Complete, nil
	case "any":
		return Affine, nil
	}
	return Complete, errors.Errorf("unknown filter %q (want complete or any)", name)
}

func (f Filter) String() string {
	if f == Affine {
		return "any"
	}
	return "complete"
}

// Eligible returns true if d should be rewritten under f.
func (f Filter) Eligible(d Descriptor) bool {
	if d.Basic {
		return false
	}
	if f == Affine {
		return d.Mul != 1 || d.Add != 0
	}
	return d.Mul != 1 && d.Add != 0
}

// Candidate is a descriptor selected for rewriting, together with the step of
// its basic counter.
type Candidate struct {
	Value ir.ValueID
	Desc  Descriptor
	Step  int64
}

// Plan selects the descriptors of t to rewrite, in table order. It only reads
// fn. Header phis are counters already and are never rewritten, nor are the
// increments they receive from the latch. Descriptors of values without uses
// are skipped so that running the pass again over its own output finds
// nothing new.
func Plan(fn *ir.Func, l *loop.Info, t *Table, f Filter) ([]Candidate, []Diagnostic) {
	var (
		cands []Candidate
		diags []Diagnostic
	)
	skip := func(kind Kind, v ir.ValueID, format string, args ...interface{}) {
		diags = append(diags, Diagnostic{
			Kind:   kind,
			Loop:   l.Header().ID,
			Value:  v,
			Detail: fmt.Sprintf(format, args...),
		})
	}
	bumps := make(map[ir.ValueID]ir.ValueID)
	for _, phi := range fn.Phis(l.Header()) {
		for _, e := range fn.Incoming(phi) {
			if _, ok := step(fn, phi, e.Pred); ok && l.Contains(e.Pred) {
				bumps[e.Value] = phi
			}
		}
	}
	for _, v := range t.Keys() {
		d, _ := t.Lookup(v)
		if d.Basic || fn.Value(v).Op == ir.OpPhi {
			continue
		}
		if !f.Eligible(d) {
			skip(Filtered, v, "%s not eligible under %s filter", d, f)
			continue
		}
		if phi, ok := bumps[v]; ok {
			skip(Filtered, v, "%s is the increment of v%d", d, phi)
			continue
		}
		if len(fn.Uses(v)) == 0 {
			skip(Filtered, v, "%s has no uses", d)
			continue
		}
		if d.Init == ir.NoValue {
			skip(NoPreheader, v, "counter v%d has no preheader value", d.Base)
			continue
		}
		s, ok := increment(fn, t, d)
		if !ok {
			skip(MissingIncrement, v, "counter v%d has no constant increment in b%d", d.Base, d.Latch)
			continue
		}
		cands = append(cands, Candidate{Value: v, Desc: d, Step: s})
	}
	return cands, diags
}

// increment returns the step s of the basic counter of d, from the value the
// latch feeds back to it. That value must be the counter plus a constant.
func increment(fn *ir.Func, t *Table, d Descriptor) (int64, bool) {
	if d.Latch == ir.NoBlock {
		return 0, false
	}
	next, ok := fn.IncomingFrom(d.Base, d.Latch)
	if !ok {
		return 0, false
	}
	nd, ok := t.Lookup(next)
	if !ok || nd.Basic || nd.Base != d.Base || nd.Mul != 1 {
		return 0, false
	}
	return nd.Add, true
}

// Rewrite records a derived value replaced by a new counter.
type Rewrite struct {
	Loop  ir.BlockID // Loop header.
	Value ir.ValueID // Replaced value, left without uses.
	Phi   ir.ValueID // New counter.
	Init  ir.ValueID // Initial value, computed in the preheader.
	Next  ir.ValueID // Increment, computed in the latch.
	Desc  Descriptor
	Step  int64 // Increment of Phi per iteration.
	Uses  int   // Operands redirected to Phi.
}

func (r Rewrite) String() string {
	return fmt.Sprintf("loop b%d: v%d = %s → v%d (init v%d, step %d, %d uses)",
		r.Loop, r.Value, r.Desc, r.Phi, r.Init, r.Step, r.Uses)
}

// Apply rewrites each candidate: a new phi before the counter in the header,
// its initial value init×Mul+Add before the terminator of the preheader, and
// phi+Mul×Step before the terminator of the latch. Uses of the derived value
// are then redirected to the new phi.
func Apply(fn *ir.Func, l *loop.Info, cands []Candidate) []Rewrite {
	header, pre := l.Header().ID, l.Preheader().ID
	rewrites := make([]Rewrite, 0, len(cands))
	for _, c := range cands {
		d := c.Desc
		bits := fn.Value(c.Value).Bits
		phi := fn.InsertPhi(header, d.Base, bits)

		scaled := fn.InsertBinOp(ir.OpMul, d.Init, fn.Const(bits, d.Mul), pre, ir.NoValue)
		init := fn.InsertBinOp(ir.OpAdd, scaled, fn.Const(bits, d.Add), pre, ir.NoValue)
		fn.AddIncoming(phi, init, pre)

		step := ir.Truncate(bits, d.Mul*c.Step)
		next := fn.InsertBinOp(ir.OpAdd, phi, fn.Const(bits, step), d.Latch, ir.NoValue)
		fn.AddIncoming(phi, next, d.Latch)

		uses := fn.ReplaceAllUsesWith(c.Value, phi)
		rewrites = append(rewrites, Rewrite{
			Loop:  header,
			Value: c.Value,
			Phi:   phi,
			Init:  init,
			Next:  next,
			Desc:  d,
			Step:  step,
			Uses:  uses,
		})
	}
	return rewrites
}
