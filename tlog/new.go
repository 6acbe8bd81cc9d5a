package tlog

import (
	"fmt"
	"testing"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// New creates a top-level logger writing to stderr
func New(config Config) *zap.Logger {
	enc, ec := encoding(config, func() bool { return term.IsTerminal(unix.Stderr) })

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(config.Level()),
		Development:      enc != "json",
		Encoding:         enc,
		EncoderConfig:    ec,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger := must.OK1(cfg.Build())

	if config.Name != "" {
		logger = logger.Named(config.Name)
	}

	return logger
}

// encoding picks the zap encoding and encoder config for config. isTerminal
// is consulted for ColorAuto only.
func encoding(config Config, isTerminal func() bool) (string, zapcore.EncoderConfig) {
	ec := DefaultEncoderConfig
	switch config.Format {
	case FormatJSON:
		return "json", ec
	case FormatText:
		var color bool
		switch config.Color {
		case ColorYes:
			color = true
		case ColorNo:
			color = false
		case ColorAuto:
			color = isTerminal()
		default:
			panic(fmt.Errorf("unexpected --log-color value: %s", config.Color))
		}

		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		ec.ConsoleSeparator = " "
		return "console", ec
	default:
		panic(fmt.Errorf("unexpected --log-format value: %s", config.Format))
	}
}

// NewForTesting creates a logger for use in unit tests
func NewForTesting(t *testing.T) *zap.Logger {
	return New(Config{
		Name:    t.Name(),
		Format:  FormatText,
		Color:   ColorAuto,
		Verbose: true,
	})
}
