// Package build loads Go source and builds its SSA IR for the parent package.
//
// Loading
//
// Sources are put on disk and handed to golang.org/x/tools/go/packages, which
// runs the go command to parse and type check them together with their
// dependencies. The loaded packages are then converted to SSA with ssautil,
// and every package other than those marked bad (see AddBadPkg) is built.
//
// Sources
//
// FromFiles takes a list of file names, usually command line arguments. The
// files are loaded as a single ad hoc package named command-line-arguments,
// so they must agree on their package clause.
//
// FromReader reads the source from an io.Reader into a file in a fresh
// temporary directory, which is removed once the build is complete. It is
// mostly used for tests and demos.
//
package build
