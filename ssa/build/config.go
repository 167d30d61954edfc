package build

import (
	"go/token"
	"io"
	"log"

	"github.com/nickng/ivsr/ssa"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ErrLoad is returned when the packages fail to load or type check.
var ErrLoad = errors.New("packages contain errors")

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
	packages.NeedTypesSizes | packages.NeedSyntax | packages.NeedTypesInfo

// srcMaterialiser is a wrapper for source code which can be put on disk for
// the go command to load.
type srcMaterialiser interface {
	Materialise() (dir string, files []string, cleanup func(), err error)
}

type Configurer interface {
	Builder
	Default() Configurer
	AddBadPkg(pkg, reason string) Configurer
	WithBuildLog(l io.Writer, flags int) Configurer
}

// Config represents a build configuration.
type Config struct {
	badPkgs map[string]string

	bldLog    io.Writer // Build log.
	bldLFlags int       // Build log flags.

	src srcMaterialiser // src points to the program source.
}

func newConfig(src srcMaterialiser) *Config {
	return &Config{
		badPkgs:   make(map[string]string),
		bldLog:    io.Discard,
		bldLFlags: log.LstdFlags,
		src:       src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer, flags int) Configurer {
	c.bldLog = l
	c.bldLFlags = flags
	return c
}

// AddBadPkg marks a package 'bad' to avoid building its function bodies.
func (c *Config) AddBadPkg(pkg, reason string) Configurer {
	c.badPkgs[pkg] = reason
	return c
}

func (c *Config) Build() (*ssa.Info, error) {
	bldLog := log.New(c.bldLog, "ssabuild: ", c.bldLFlags)

	dir, files, cleanup, err := c.src.Materialise()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	fset := token.NewFileSet()
	lconf := &packages.Config{Mode: loadMode, Dir: dir, Fset: fset}
	// Load, parse and type-check program
	initial, err := packages.Load(lconf, files...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load packages")
	}
	if n := packages.PrintErrors(initial); n > 0 {
		return nil, errors.Wrapf(ErrLoad, "%d errors", n)
	}
	bldLog.Print("Program loaded and type checked")

	prog, pkgs := ssautil.AllPackages(initial, gossa.GlobalDebug|gossa.BareInits)

	var ignoredPkgs []string
	if len(c.badPkgs) == 0 {
		prog.Build()
	} else {
		for _, pkg := range prog.AllPackages() {
			if reason, badPkg := c.badPkgs[pkg.Pkg.Name()]; badPkg {
				bldLog.Printf("Skip package: %s (%s)", pkg.Pkg.Name(), reason)
				ignoredPkgs = append(ignoredPkgs, pkg.Pkg.Name())
			} else {
				pkg.Build()
			}
		}
	}

	return &ssa.Info{
		IgnoredPkgs: ignoredPkgs,
		FSet:        fset,
		Prog:        prog,
		Pkgs:        pkgs,
		BldLog:      c.bldLog,
	}, nil
}

// Default returns a default configuration for static analysis.
func (c *Config) Default() Configurer {
	return c.
		AddBadPkg("reflect", "Reflection is not supported").
		AddBadPkg("runtime", "Runtime is ignored for static analysis")
}
