// Command vetgen generates validating unmarshalers for types annotated with
// //vetted:decode. It is meant to run from go generate:
//
//	//go:generate go run github.com/zoobzio/vetted/cmd/vetgen
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/zoobzio/vetted"
	"github.com/zoobzio/vetted/internal/gen"
	"go.uber.org/zap"
)

func main() {
	var (
		dir     = flag.String("dir", ".", "Package directory to scan")
		output  = flag.String("output", gen.DefaultOutput, "Generated file name inside -dir")
		formats = flag.String("formats", string(vetted.FormatJSON), "Formats for directives without a format list")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	code := run(logger, *dir, *output, *formats)
	_ = logger.Sync()
	os.Exit(code)
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(logger *zap.Logger, dir, output, formatList string) int {
	defaults, err := vetted.ParseFormats(formatList)
	if err != nil {
		logger.Error("Invalid -formats", zap.Error(err))
		return 2
	}

	logger.Debug("Scanning package", zap.String("dir", dir), zap.Strings("formats", formatNames(defaults)))

	res, err := gen.Run(gen.Config{
		Dir:            dir,
		Output:         output,
		DefaultFormats: defaults,
	})
	if err != nil {
		var diags gen.Diagnostics
		if errors.As(err, &diags) {
			for _, d := range diags {
				logger.Error(d.Msg, zap.String("pos", d.Pos.String()))
			}
			return 1
		}
		logger.Error("Generation failed", zap.Error(err))
		return 1
	}

	for _, t := range res.Package.Types {
		logger.Debug("Generated unmarshalers",
			zap.String("type", t.Name),
			zap.Strings("formats", formatNames(t.Formats)),
		)
	}

	if !res.Written {
		logger.Info("No annotated types", zap.String("package", res.Package.Name))
		return 0
	}
	logger.Info("Generated file",
		zap.String("path", res.Path),
		zap.Int("types", len(res.Package.Types)),
	)
	return 0
}

func formatNames(formats []vetted.Format) []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
