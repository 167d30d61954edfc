package pass

import (
	"io"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/nickng/ivsr/internal/logger"
)

// DefaultPasses is the pipeline used when none is configured.
const DefaultPasses = "iv-sr"

// Config holds the options shared by the passes of a pipeline.
type Config struct {
	Passes      []string // Pass names, in order.
	Verify      bool     // Verify the function after every pass.
	Filter      string   // Descriptor filter of iv-sr: complete or any.
	Debug       bool     // Debug level logging.
	PrintBefore bool     // Print each function to Out before every pass.

	Out    io.Writer
	Logger *logger.Logger
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Passes: SplitPasses(DefaultPasses),
		Filter: "complete",
	}
}

// FromEnv returns the default configuration overridden by the environment
// variables IVSR_PASSES, IVSR_VERIFY, IVSR_FILTER and IVSR_DEBUG.
func FromEnv() Config {
	cfg := Default()
	cfg.Passes = SplitPasses(env.Str("IVSR_PASSES", DefaultPasses))
	cfg.Verify = env.Bool("IVSR_VERIFY")
	cfg.Filter = env.Str("IVSR_FILTER", cfg.Filter)
	cfg.Debug = env.Bool("IVSR_DEBUG")
	return cfg
}

// SplitPasses splits a comma separated list of pass names.
func SplitPasses(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
