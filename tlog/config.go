package tlog

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the logging format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Color is the coloring setting for text format
type Color string

// Color values
const (
	ColorAuto Color = ""
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// Config is the configuration of a top-level logger
type Config struct {
	Name    string // logger name, usually the command name; optional
	Format  Format
	Color   Color
	Verbose bool // enable messages at Debug level
}

// Level returns the lowest level the logger writes
func (c Config) Level() zapcore.Level {
	if c.Verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// TimeLayout is the layout of log timestamps: UTC with microseconds
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(TimeLayout))
}

// DefaultEncoderConfig is the encoder configuration of top-level loggers
// before the format-specific level encoder is chosen
var DefaultEncoderConfig = func() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = encodeTime
	ec.EncodeDuration = zapcore.StringDurationEncoder
	return ec
}()
