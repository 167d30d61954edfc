// Command ssaview is a SSA printer using standard static analysis options.
// With -ir it prints the functions lowered to the loop IR instead.
//
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nickng/ivsr/lower"
	"github.com/nickng/ivsr/ssa/build"
	gossa "golang.org/x/tools/go/ssa"
)

const (
	Usage = `ssaview is a tool for printing SSA IR of Go source code.

Usage:

  ssaview [options] file.go [files.go...]

Options:

`
)

var (
	buildlogPath string
	defaultArgs  bool
	outPath      string
	viewFunc     string
	viewAll      bool
	viewIR       bool

	out io.Writer
)

func init() {
	flag.BoolVar(&defaultArgs, "default", true, "Use default SSA build arguments")
	flag.StringVar(&buildlogPath, "log", "", "Specify build log file (use '-' for stdout)")
	flag.StringVar(&outPath, "out", "", "Specify output file (default: stdout)")
	flag.StringVar(&viewFunc, "func", "", `Specify the function to view (format: (import/path).FuncName or FuncName)`)
	flag.BoolVar(&viewAll, "all", false, "View all functions in the program, including dependencies")
	flag.BoolVar(&viewIR, "ir", false, "View the lowered loop IR instead of SSA")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	conf := build.FromFiles(flag.Args())
	if defaultArgs {
		conf = conf.Default()
	}

	switch buildlogPath {
	case "":
	case "-":
		conf = conf.WithBuildLog(os.Stdout, log.LstdFlags)
	default:
		f, err := os.Create(buildlogPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", buildlogPath, err)
		}
		defer f.Close()
		conf = conf.WithBuildLog(f, log.LstdFlags)
	}

	switch outPath {
	case "":
		out = os.Stdout
	default:
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Cannot create output file %s: %v", outPath, err)
		}
		defer f.Close()
		out = f
	}

	info, err := conf.Build()
	if err != nil {
		log.Fatal("Cannot build SSA from files:", err)
	}

	fns := info.SourceFuncs()
	if viewFunc != "" {
		fn, err := info.FindFunc(viewFunc)
		if err != nil {
			log.Fatal("Cannot find function:", err)
		}
		fns = []*gossa.Function{fn}
	} else if viewAll && !viewIR {
		if _, err := info.WriteAll(out); err != nil {
			log.Fatal("Cannot write SSA:", err)
		}
		return
	}

	for _, fn := range fns {
		if !viewIR {
			if _, err := fn.WriteTo(out); err != nil {
				log.Fatal("Cannot write SSA:", err)
			}
			continue
		}
		f, err := lower.Function(fn)
		if err != nil {
			log.Printf("Skip: %v", err)
			continue
		}
		if _, err := f.WriteTo(out); err != nil {
			log.Fatal("Cannot write IR:", err)
		}
	}
}
