// Package ssa is a library to build and work with SSA.
// For most part the package contains helper or wrapper functions to use the
// packages in Go project's extra tools.
//
// In particular, the SSA IR is from golang.org/x/tools/go/ssa, and reuses many
// of the packages in the static analysis stack built on top of it. The
// functions selected here are lowered to the loop IR by package lower.
//
package ssa

import (
	"go/token"
	"io"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Info holds the results of a SSA build for analysis.
// To populate this structure, the 'build' subpackage should be used.
//
type Info struct {
	IgnoredPkgs []string // Record of ignored package during the build process.

	FSet *token.FileSet  // FileSet for parsed source files.
	Prog *ssa.Program    // SSA IR for whole program.
	Pkgs []*ssa.Package  // Packages named on the command line.

	BldLog io.Writer // Build log.
}

// SourceFuncs returns the functions with bodies declared in the packages
// named on the command line, ordered by source position. Synthetic functions
// (wrappers, package initialisers) are not included.
func (info *Info) SourceFuncs() []*ssa.Function {
	srcPkg := make(map[*ssa.Package]bool)
	for _, pkg := range info.Pkgs {
		if pkg != nil && !info.ignored(pkg) {
			srcPkg[pkg] = true
		}
	}
	var funcs []*ssa.Function
	for fn := range ssautil.AllFunctions(info.Prog) {
		if fn.Pkg == nil || !srcPkg[fn.Pkg] || fn.Synthetic != "" || fn.Blocks == nil {
			continue
		}
		funcs = append(funcs, fn)
	}
	sortFuncs(funcs)
	return funcs
}

func (info *Info) ignored(pkg *ssa.Package) bool {
	for _, name := range info.IgnoredPkgs {
		if pkg.Pkg.Name() == name {
			return true
		}
	}
	return false
}
