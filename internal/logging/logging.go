package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options controls the root logger
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New builds the root logger. Components take named children of it, e.g.
// logger.Named("cache").
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "weatherpulse",
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
}
