package block

import "github.com/nickng/ivsr/ir"

// TraverseEdges takes a Func and applies visit to each edge reachable from the
// entry block exactly once, breadth first. The entry block is visited with a
// nil from.
func TraverseEdges(fn *ir.Func, visit func(from, to *ir.Block)) {
	if fn.Entry() == nil {
		return
	}
	visited := NewVisitGraph(fn)
	type Edge struct {
		From, To *ir.Block
	}
	queue := []Edge{{To: fn.Entry()}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e.From != nil && visited.EdgeVisited(e.From, e.To) {
			continue
		}
		entered := visited.Entered(e.To)
		if e.From == nil {
			visited.Visit(e.To)
		} else {
			visited.VisitFrom(e.From, e.To)
		}
		visit(e.From, e.To)
		if !entered {
			for _, succ := range e.To.Succs {
				queue = append(queue, Edge{From: e.To, To: fn.Block(succ)})
			}
		}
	}
}

// ReversePostorder returns the blocks reachable from the entry block in
// reverse postorder. Successors are explored in order, so the result is
// deterministic.
func ReversePostorder(fn *ir.Func) []*ir.Block {
	entry := fn.Entry()
	if entry == nil {
		return nil
	}
	seen := make([]bool, len(fn.Blocks))
	post := make([]*ir.Block, 0, len(fn.Blocks))
	type frame struct {
		b    *ir.Block
		next int // Index of the next successor to explore.
	}
	stack := []frame{{b: entry}}
	seen[entry.ID] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.b.Succs) {
			succ := fn.Block(top.b.Succs[top.next])
			top.next++
			if !seen[succ.ID] {
				seen[succ.ID] = true
				stack = append(stack, frame{b: succ})
			}
			continue
		}
		post = append(post, top.b)
		stack = stack[:len(stack)-1]
	}
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
