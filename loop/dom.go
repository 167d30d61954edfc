package loop

import (
	"github.com/nickng/ivsr/block"
	"github.com/nickng/ivsr/ir"
)

// domTree holds the immediate dominators of the reachable blocks of a
// function, computed with the iterative algorithm of Cooper, Harvey and
// Kennedy ("A Simple, Fast Dominance Algorithm").
type domTree struct {
	idom  []ir.BlockID // NoBlock for unreachable blocks.
	order []int        // Reverse postorder number, -1 if unreachable.
}

func newDomTree(fn *ir.Func) *domTree {
	rpo := block.ReversePostorder(fn)
	t := &domTree{
		idom:  make([]ir.BlockID, len(fn.Blocks)),
		order: make([]int, len(fn.Blocks)),
	}
	for i := range t.idom {
		t.idom[i] = ir.NoBlock
		t.order[i] = -1
	}
	if len(rpo) == 0 {
		return t
	}
	for i, b := range rpo {
		t.order[b.ID] = i
	}
	entry := rpo[0].ID
	t.idom[entry] = entry
	for changed := true; changed; {
		changed = false
		for _, b := range rpo[1:] {
			idom := ir.NoBlock
			for _, p := range b.Preds {
				if t.idom[p] == ir.NoBlock {
					continue // Unreachable or not processed yet.
				}
				if idom == ir.NoBlock {
					idom = p
				} else {
					idom = t.intersect(p, idom)
				}
			}
			if idom != t.idom[b.ID] {
				t.idom[b.ID] = idom
				changed = true
			}
		}
	}
	return t
}

func (t *domTree) intersect(a, b ir.BlockID) ir.BlockID {
	for a != b {
		for t.order[a] > t.order[b] {
			a = t.idom[a]
		}
		for t.order[b] > t.order[a] {
			b = t.idom[b]
		}
	}
	return a
}

func (t *domTree) reachable(b ir.BlockID) bool {
	return t.order[b] >= 0
}

// dominates reports whether a dominates b. Every block dominates itself.
func (t *domTree) dominates(a, b ir.BlockID) bool {
	if !t.reachable(a) || !t.reachable(b) {
		return false
	}
	for {
		if a == b {
			return true
		}
		next := t.idom[b]
		if next == b {
			return false // Reached the entry block.
		}
		b = next
	}
}
