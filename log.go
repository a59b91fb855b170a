package ember

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is the package-wide structured logger. It starts as a nop so
// library use stays silent; the binary points it at a file, since stderr
// belongs to the raw terminal while the editor runs.
var logger = zap.NewNop()

// InitLogger routes package logging to the given file path and returns a
// flush function for shutdown.
func InitLogger(path string) (func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = l
	return func() { _ = l.Sync() }, nil
}
