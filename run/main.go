package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ridge/parallel"
	"github.com/ridge/quarry/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var fs = newLogFlags(os.Args[0])

func init() {
	// Add options help to the main command-line parser.
	pflag.CommandLine.AddFlagSet(fs)
}

func newLogFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.String("log-format", string(tlog.FormatText), "Log format (json|text)")
	fs.String("log-color", "auto", "Colored logs (yes|no|auto)")
	fs.BoolP("verbose", "v", false, "Enable verbose (debug level) messages")
	// Usage is printed by the regular command line parser
	fs.Usage = func() {}
	return fs
}

// Tool runs the top-level task of a command-line program, watching for
// signals.
//
// The context passed to the task carries a logger configured by the
// --log-format, --log-color and --verbose flags. If an interruption or
// termination signal arrives, the context is closed.
//
// Tool does not return. It exits with code 0 if the task returns nil, with
// the code of a WithExitCode error, and with code 1 on any other error.
// Deferred functions of the caller do not run.
//
//	func main() {
//	    run.Tool(func(ctx context.Context) error {
//	        return cli.Run(ctx, cfg)
//	    })
//	}
func Tool(task func(ctx context.Context) error) {
	config, err := logConfig(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	config.Name = filepath.Base(os.Args[0])
	ctx := tlog.WithLogger(context.Background(), tlog.New(config))

	err = parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, task)
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
	if err != nil {
		tlog.Get(ctx).Error("Error", zap.Error(err))
	}
	_ = tlog.Get(ctx).Sync()
	os.Exit(exitCode(err))
}

// WithExitCode is an optional interface that can be implemented by an error.
//
// When a (possibly wrapped) error implementing WithExitCode reaches the top
// level, the value returned by the ExitCode method becomes the exit code of the
// process. The default exit code for other errors is 1.
type WithExitCode interface {
	ExitCode() int
}

func exitCode(err error) int {
	var wec WithExitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &wec):
		return wec.ExitCode()
	default:
		return 1
	}
}

// logConfig returns the logger configuration given on the command line
func logConfig(fs *pflag.FlagSet, args []string) (tlog.Config, error) {
	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return tlog.Config{}, err
	}

	var config tlog.Config
	format, err := fs.GetString("log-format")
	if err != nil {
		return tlog.Config{}, err
	}
	switch f := tlog.Format(format); f {
	case tlog.FormatJSON, tlog.FormatText:
		config.Format = f
	default:
		return tlog.Config{}, fmt.Errorf("invalid --log-format value %q", format)
	}

	color, err := fs.GetString("log-color")
	if err != nil {
		return tlog.Config{}, err
	}
	switch color {
	case "", "auto":
		config.Color = tlog.ColorAuto
	case "yes":
		config.Color = tlog.ColorYes
	case "no":
		config.Color = tlog.ColorNo
	default:
		return tlog.Config{}, fmt.Errorf("invalid --log-color value %q", color)
	}

	config.Verbose, err = fs.GetBool("verbose")
	if err != nil {
		return tlog.Config{}, err
	}
	return config, nil
}
