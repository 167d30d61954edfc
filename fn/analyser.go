// Package fn provides the Analyser interface for functions.
package fn

import "golang.org/x/tools/go/ssa"

// Analyser is an interface for Function analysis,
// handles function entry and exit.
type Analyser interface {
	// EnterFunc prepares the analysis of a Function, before any of its
	// blocks are visited.
	EnterFunc(fn *ssa.Function)

	// ExitFunc finishes analysing a Function once all of its blocks have been
	// visited. It is where forward references are resolved.
	ExitFunc(fn *ssa.Function) error
}
