package ssa

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/callgraph/rta"
	"golang.org/x/tools/go/callgraph/static"
	"golang.org/x/tools/go/ssa"
)

// ErrUnknownAlgo is returned by BuildCallGraph for an unsupported algorithm.
var ErrUnknownAlgo = errors.New("callgraph: unknown algorithm")

// CallGraph is a callgraph of a Program with synthetic nodes removed.
type CallGraph struct {
	cg   *callgraph.Graph
	prog *ssa.Program

	reachable []*ssa.Function // Cached result of Reachable.
}

// BuildCallGraph constructs a callgraph of info.Prog with algo, one of
//
//	static  static calls only (unsound)
//	cha     Class Hierarchy Analysis
//	rta     Rapid Type Analysis, rooted at main.init and main.main
//
// tests selects the generated test mains as the rta roots.
func (info *Info) BuildCallGraph(algo string, tests bool) (*CallGraph, error) {
	var cg *callgraph.Graph
	switch algo {
	case "static":
		cg = static.CallGraph(info.Prog)
	case "cha":
		cg = cha.CallGraph(info.Prog)
	case "rta":
		roots, err := mainRoots(info.Prog, tests)
		if err != nil {
			return nil, err
		}
		cg = rta.Analyze(roots, true).CallGraph
	default:
		return nil, errors.Wrap(ErrUnknownAlgo, algo)
	}
	cg.DeleteSyntheticNodes()
	return &CallGraph{cg: cg, prog: info.Prog}, nil
}

// mainRoots returns init and main of every main package.
func mainRoots(prog *ssa.Program, tests bool) ([]*ssa.Function, error) {
	mains, err := MainPkgs(prog, tests)
	if err != nil {
		return nil, err
	}
	var roots []*ssa.Function
	for _, pkg := range mains {
		for _, name := range []string{"init", "main"} {
			if fn := pkg.Func(name); fn != nil {
				roots = append(roots, fn)
			}
		}
	}
	return roots, nil
}

// Funcs returns every function with a node in the callgraph, ordered by
// position.
func (g *CallGraph) Funcs() []*ssa.Function {
	var fns []*ssa.Function
	for fn := range g.cg.Nodes {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	sortFuncs(fns)
	return fns
}

// Reachable returns the functions reachable from main.init and main.main,
// ordered by position.
func (g *CallGraph) Reachable() ([]*ssa.Function, error) {
	if g.reachable != nil {
		return g.reachable, nil
	}
	roots, err := mainRoots(g.prog, false)
	if err != nil {
		return nil, errors.Wrap(err, "callgraph: no roots (is this a command?)")
	}
	seen := make(map[*ssa.Function]bool)
	for len(roots) > 0 {
		fn := roots[len(roots)-1]
		roots = roots[:len(roots)-1]
		if seen[fn] {
			continue
		}
		seen[fn] = true
		if n := g.cg.Nodes[fn]; n != nil {
			for _, e := range n.Out {
				roots = append(roots, e.Callee.Func)
			}
		}
	}
	for fn := range seen {
		g.reachable = append(g.reachable, fn)
	}
	sortFuncs(g.reachable)
	return g.reachable, nil
}

// WriteDot writes the callgraph to w in graphviz dot format. Only functions
// for which keep returns true are drawn (nil keeps all), and functions for
// which marked returns true are filled. Call sites between the same pair of
// functions share one edge.
func (g *CallGraph) WriteDot(w io.Writer, keep, marked func(*ssa.Function) bool) error {
	kept := func(fn *ssa.Function) bool { return fn != nil && (keep == nil || keep(fn)) }
	bufw := bufio.NewWriter(w)
	fmt.Fprintln(bufw, "digraph callgraph {")
	fns := g.Funcs()
	for _, fn := range fns {
		if !kept(fn) {
			continue
		}
		if marked != nil && marked(fn) {
			fmt.Fprintf(bufw, "  %q [style=filled]\n", fn.String())
		} else {
			fmt.Fprintf(bufw, "  %q\n", fn.String())
		}
	}
	for _, fn := range fns {
		if !kept(fn) {
			continue
		}
		drawn := make(map[*ssa.Function]bool)
		for _, e := range g.cg.Nodes[fn].Out {
			callee := e.Callee.Func
			if !kept(callee) || drawn[callee] {
				continue
			}
			drawn[callee] = true
			fmt.Fprintf(bufw, "  %q -> %q\n", fn.String(), callee.String())
		}
	}
	fmt.Fprintln(bufw, "}")
	return errors.Wrap(bufw.Flush(), "callgraph: write dot")
}

func sortFuncs(fns []*ssa.Function) {
	sort.Slice(fns, func(i, j int) bool {
		if fns[i].Pos() != fns[j].Pos() {
			return fns[i].Pos() < fns[j].Pos()
		}
		return fns[i].String() < fns[j].String()
	})
}
