// Package logger wraps zap loggers with the module they belong to.
package logger

import (
	"log"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Logger encapsulates a Logger and module which it belongs to.
// Use this through SetLogger() of a pass.
type Logger struct {
	*zap.SugaredLogger
	module string
}

type LogSetter interface {
	SetLogger(*Logger)
}

// Module returns (stylised) module name.
func (l *Logger) Module() string {
	return l.module
}

// WithModule returns a logger sharing the same output, tagged with name.
// The tag is coloured with colour, e.g. color.GreenString.
func (l *Logger) WithModule(name string, colour func(format string, a ...interface{}) string) *Logger {
	if colour == nil {
		colour = color.BlueString
	}
	return &Logger{SugaredLogger: l.SugaredLogger, module: colour(name)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Development returns a logger with debug output enabled regardless of how
// the binary is built.
func Development(files ...string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = append(cfg.OutputPaths, files...)
	l, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return &Logger{SugaredLogger: l.Sugar()}
}
