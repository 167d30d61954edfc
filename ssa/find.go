package ssa

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ErrFuncNotFound is returned by FindFunc when no function matches.
var ErrFuncNotFound = errors.New("function not found")

// FindFunc parses path (e.g. "github.com/nickng/ivsr/ssa".MainPkgs) and
// returns Function body in SSA IR. A path without a package segment (e.g.
// sum) is looked up among the source functions.
func (info *Info) FindFunc(path string) (*ssa.Function, error) {
	pkgPath, fnName := parseFuncPath(path)
	if pkgPath == "" {
		for _, f := range info.SourceFuncs() {
			if f.Name() == fnName {
				return f, nil
			}
		}
		return nil, errors.Wrap(ErrFuncNotFound, path)
	}
	for f := range ssautil.AllFunctions(info.Prog) {
		if f.Pkg != nil && (f.Pkg.Pkg.Path() == pkgPath || f.Pkg.Pkg.Name() == pkgPath) && f.Name() == fnName {
			return f, nil
		}
	}
	return nil, errors.Wrap(ErrFuncNotFound, path)
}

// parseFuncPath splits path to package and function segments.
// Does not handle complex functions with receivers.
func parseFuncPath(path string) (pkgPath, fnName string) {
	if len(path) < 1 {
		return "", ""
	}
	switch path[0] {
	case '(':
		regex := regexp.MustCompile(`\((?P<pkg>[^)]+)\).(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	case '"':
		regex := regexp.MustCompile(`"(?P<pkg>[^)]+)".(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	default:
		parts := strings.Split(path, ".")
		if len(parts) >= 2 {
			return parts[0], parts[1]
		}
	}
	return "", path
}
