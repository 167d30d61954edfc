package block

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/nickng/ivsr/ir"
)

var ErrBadNode = errors.New("VisitNode does not contain block (or has nil block)")

// visitedEdges keeps track of whether edges into blocks are visited.
//
// Edges are mapped as Block.ID --> incoming Block.ID --> bool
type visitedEdges map[ir.BlockID]map[ir.BlockID]bool

// VisitGraph is a data structure to track the control flow of execution within
// a function. Each node is a block that the analysis has previously visited.
//
// VisitGraph, unlike the name suggests, is a doubly linked list.
// Traversing the VisitGraph is equivalent to going through the analysis.
type VisitGraph struct {
	sync.Mutex

	fn    *ir.Func
	nodes []*VisitNode

	// visited keeps track of whether a block is visited.
	//
	// The intuitive understanding of whether a block is visited, is that
	// all incoming edges (i.e. paths into a block) have been visited.
	//
	// The visited entry of a block is initialised with false for all
	// incoming Block.ID.
	visited visitedEdges
	entered map[ir.BlockID]bool
}

// NewVisitGraph returns a new VisitGraph for the blocks of fn.
func NewVisitGraph(fn *ir.Func) *VisitGraph {
	g := &VisitGraph{
		fn:      fn,
		visited: make(visitedEdges),
		entered: make(map[ir.BlockID]bool),
	}
	for _, b := range fn.Blocks {
		g.visited[b.ID] = make(map[ir.BlockID]bool)
		for _, p := range b.Preds {
			g.visited[b.ID][p] = false
		}
	}
	return g
}

func (g *VisitGraph) link(b *ir.Block) *VisitNode {
	n := &VisitNode{blk: b}
	g.nodes = append(g.nodes, n)
	if len(g.nodes) > 1 {
		n.Prev = g.nodes[len(g.nodes)-2]
		g.nodes[len(g.nodes)-2].Next = n
	}
	g.entered[b.ID] = true
	return n
}

// Visit enters a block without following an edge, which adds a new VisitNode
// to the end of the VisitGraph.
func (g *VisitGraph) Visit(b *ir.Block) *VisitNode {
	g.Lock()
	defer g.Unlock()
	return g.link(b)
}

// VisitFrom enters b through the edge prev → b. prev must be visited before.
func (g *VisitGraph) VisitFrom(prev, b *ir.Block) *VisitNode {
	g.Lock()
	defer g.Unlock()
	if !g.entered[prev.ID] {
		log.Printf("VisitFrom: b%d is not a valid existing VisitNode", prev.ID)
	}
	n := g.link(b)
	if _, ok := g.visited[b.ID][prev.ID]; !ok {
		log.Printf("VisitFrom: b%d is not a predecessor of b%d", prev.ID, b.ID)
		return n
	}
	g.visited[b.ID][prev.ID] = true
	return n
}

// LastNode returns the last node in the VisitGraph.
func (g *VisitGraph) LastNode() *VisitNode {
	if len(g.nodes) == 0 {
		return nil
	}
	return g.nodes[len(g.nodes)-1]
}

// Size of the graph.
func (g *VisitGraph) Size() int {
	return len(g.nodes)
}

// Entered returns true if the block has been visited through any edge.
func (g *VisitGraph) Entered(b *ir.Block) bool {
	g.Lock()
	defer g.Unlock()
	return g.entered[b.ID]
}

// NodeVisited returns true if the block is visited.
// A block is visited if it was entered and all the in edges are visited.
func (g *VisitGraph) NodeVisited(b *ir.Block) bool {
	g.Lock()
	defer g.Unlock()
	if !g.entered[b.ID] {
		return false
	}
	for _, v := range g.visited[b.ID] {
		if !v {
			return false
		}
	}
	return true
}

// EdgeVisited returns true if the edge between the block pair has been
// visited.
func (g *VisitGraph) EdgeVisited(from, to *ir.Block) bool {
	g.Lock()
	defer g.Unlock()
	return g.visited[to.ID][from.ID]
}

// VisitNode is one node in the VisitGraph.
// Each VisitNode corresponds to one visit of an ir.Block.
type VisitNode struct {
	blk *ir.Block

	Prev, Next *VisitNode
}

// Blk returns the underlying block.
func (n *VisitNode) Blk() *ir.Block {
	return n.blk
}

// Index returns the block handle.
func (n *VisitNode) Index() ir.BlockID {
	if n.blk == nil {
		log.Fatalln(ErrBadNode)
	}
	return n.blk.ID
}

func (n *VisitNode) String() string {
	if n.Next != nil {
		return fmt.Sprintf("Block: b%d\n%s", n.Index(), n.Next.String())
	}
	return fmt.Sprintf("Block: b%d\n-- end --\n", n.Index())
}
