package ssa

import (
	"github.com/pkg/errors"
	"strings"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

var (
	// ErrNoMainPkgs is returned when the program has no main package.
	ErrNoMainPkgs = errors.New("no main packages")
	// ErrNoTestMainPkgs is returned when no package has tests to build a test
	// main from.
	ErrNoTestMainPkgs = errors.New("no test main packages")
)

// MainPkgs returns the main packages in the program. If tests is set, only
// the generated test mains (package paths ending in .test) are returned.
func MainPkgs(prog *ssa.Program, tests bool) ([]*ssa.Package, error) {
	pkgs := prog.AllPackages()

	var mains []*ssa.Package
	if tests {
		for _, pkg := range ssautil.MainPackages(pkgs) {
			if strings.HasSuffix(pkg.Pkg.Path(), ".test") {
				mains = append(mains, pkg)
			}
		}
		if mains == nil {
			return nil, ErrNoTestMainPkgs
		}
		return mains, nil
	}

	mains = append(mains, ssautil.MainPackages(pkgs)...)
	if len(mains) == 0 {
		return nil, ErrNoMainPkgs
	}
	return mains, nil
}
