// Package main is the entry point for the typographic command.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/typographic/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, showMetrics := parseFlags()

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	// Cancel the run on SIGINT and SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if showMetrics {
		if err := application.WriteMetrics(os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing metrics: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var opts app.Options
	var showVersion, showHelp, showMetrics bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.Format, "format", app.FormatText, "Output format ("+strings.Join(app.Formats, ", ")+")")
	flag.StringVar(&opts.Format, "f", app.FormatText, "Output format (shorthand)")
	flag.StringVar(&opts.Color, "color", app.ColorAuto, "Color text output (auto, always, never)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Watch, "watch", false, "Re-annotate files when they change")
	flag.BoolVar(&opts.Watch, "w", false, "Re-annotate files when they change (shorthand)")
	flag.BoolVar(&showMetrics, "metrics", false, "Print engine metrics to stderr on exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "typographic - annotate invisible typography in editor documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: typographic [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Documents are editor JSON. With no files, or \"-\", standard input is read.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  typographic doc.json               List annotations\n")
		fmt.Fprintf(os.Stderr, "  typographic -f html doc.json       Render annotated HTML\n")
		fmt.Fprintf(os.Stderr, "  typographic -f json -w doc.json    Stream annotations on every save\n")
		fmt.Fprintf(os.Stderr, "  typographic -f screen a.json b.json\n")
		fmt.Fprintf(os.Stderr, "                                     Browse documents in the terminal\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("typographic %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	opts.Files = flag.Args()
	return opts, showMetrics
}
