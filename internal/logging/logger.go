package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production zap logger at the given level writing to output,
// which is a zap sink such as "stderr" or a file path. An empty output
// disables logging; the terminal form uses that because it owns the screen.
func New(level, output string) (*zap.Logger, error) {
	if output == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{output}
	return cfg.Build()
}
