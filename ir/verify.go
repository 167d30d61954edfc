package ir

import (
	"fmt"

	"go.uber.org/multierr"
)

// VerifyError is a single structural problem found by Verify.
type VerifyError struct {
	Func  string
	Block BlockID
	Value ValueID // NoValue if the problem is with the block itself.
	Msg   string
}

func (e VerifyError) Error() string {
	if e.Value == NoValue {
		return fmt.Sprintf("%s: b%d: %s", e.Func, e.Block, e.Msg)
	}
	return fmt.Sprintf("%s: b%d: v%d: %s", e.Func, e.Block, e.Value, e.Msg)
}

// Verify checks that f is well formed. All problems found are combined in
// the returned error; use multierr.Errors to inspect them individually.
func Verify(f *Func) error {
	var err error
	report := func(b *Block, v ValueID, format string, args ...interface{}) {
		err = multierr.Append(err, VerifyError{
			Func:  f.Name,
			Block: b.ID,
			Value: v,
			Msg:   fmt.Sprintf(format, args...),
		})
	}
	for _, b := range f.Blocks {
		if f.Terminator(b) == nil {
			report(b, NoValue, "block does not end in a terminator")
		}
		seenNonPhi := false
		for i, id := range b.Instrs {
			v := f.Value(id)
			if v == nil {
				report(b, id, "removed value still listed in block")
				continue
			}
			if v.Block != b.ID {
				report(b, id, "value claims block b%d", v.Block)
			}
			if v.Op.IsTerminator() && i != len(b.Instrs)-1 {
				report(b, id, "%s before the end of the block", v.Op)
			}
			if v.Op == OpPhi {
				if seenNonPhi {
					report(b, id, "phi after non-phi instruction")
				}
				verifyPhi(f, b, v, report)
			} else {
				seenNonPhi = true
			}
			for _, a := range v.Args {
				if f.Value(a) == nil {
					report(b, id, "operand v%d is not a live value", a)
				}
			}
		}
		if t := f.Terminator(b); t != nil {
			want := 0
			switch t.Op {
			case OpJump:
				want = 1
			case OpIf:
				want = 2
			}
			if len(b.Succs) != want {
				report(b, t.ID, "%s with %d successors", t.Op, len(b.Succs))
			}
		}
	}
	return err
}

func verifyPhi(f *Func, b *Block, v *Value, report func(*Block, ValueID, string, ...interface{})) {
	if len(v.Args) != len(v.Edges) {
		report(b, v.ID, "phi has %d operands but %d edges", len(v.Args), len(v.Edges))
		return
	}
	count := make(map[BlockID]int)
	for _, e := range v.Edges {
		count[e]++
	}
	for _, p := range b.Preds {
		if count[p] == 0 {
			report(b, v.ID, "phi has no incoming edge from predecessor b%d", p)
		}
	}
	seen := make(map[BlockID]bool)
	for _, e := range v.Edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		if !hasPred(b, e) {
			report(b, v.ID, "phi has incoming edge from non-predecessor b%d", e)
		} else if count[e] > 1 {
			report(b, v.ID, "phi has %d incoming edges from b%d", count[e], e)
		}
	}
}

func hasPred(b *Block, id BlockID) bool {
	for _, p := range b.Preds {
		if p == id {
			return true
		}
	}
	return false
}
