package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/gridcompare/cmd/gridcompare/commands"
	"github.com/ruslano69/gridcompare/pkg/ingest"
	"github.com/ruslano69/gridcompare/pkg/resultlog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Parse flags
	flags, err := ParseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	// Handle version
	if *flags.Version {
		PrintVersion(stdout)
		return 0
	}

	// Handle help
	if *flags.Help {
		PrintHelp(stdout)
		return 0
	}

	// Handle config creation
	if *flags.CreateConfig {
		if err := SaveConfig(*flags.Config, CreateSampleConfig()); err != nil {
			return fail(stderr, "Failed to save config: %v", err)
		}
		fmt.Fprintf(stdout, "✓ Created sample config: %s\n", *flags.Config)
		fmt.Fprintln(stdout, "Edit the file with your sources and key, then run:")
		fmt.Fprintf(stdout, "  gridcompare --config %s\n", *flags.Config)
		return 0
	}

	// Load configuration; the default file is optional
	config, err := LoadConfig(*flags.Config)
	if errors.Is(err, fs.ErrNotExist) && !flags.IsSet("config") {
		config, err = DefaultConfig(), nil
	}
	if err != nil {
		return fail(stderr, "Failed to load config: %v", err)
	}
	config.ApplyFlags(flags)

	log, err := newLogger(config.Log, stderr)
	if err != nil {
		return fail(stderr, "%v", err)
	}

	orig, exp, err := buildSources(config)
	if err != nil {
		return fail(stderr, "%v", err)
	}
	if orig.Location == "" || exp.Location == "" {
		PrintHelp(stderr)
		return 1
	}

	// Route commands
	if *flags.Columns {
		if _, err := commands.ListColumns(ctx, orig, exp, stdout, log); err != nil {
			return fail(stderr, "Command failed: %v", err)
		}
		return 0
	}

	opts := commands.CompareOptions{
		Original:      orig,
		Export:        exp,
		KeyField:      config.Compare.KeyField,
		Output:        config.Output.Path,
		Report:        config.ReportOptions(),
		Writer:        config.WriterOptions(),
		RequireFields: config.Compare.RequireFields,
		RunName:       config.ResultLog.Name,
		Out:           stdout,
		Log:           log,
	}

	if config.ResultLog.Enabled {
		pub, err := resultlog.NewRedisPublisher(config.ResultLog, log)
		if err != nil {
			return fail(stderr, "Invalid result_log config: %v", err)
		}
		defer pub.Close()
		opts.Publisher = pub
	}

	if _, err := commands.Compare(ctx, opts); err != nil {
		return fail(stderr, "Command failed: %v", err)
	}
	return 0
}

func buildSources(config *Config) (commands.Source, commands.Source, error) {
	var norm *ingest.Normalizer
	if len(config.Normalize.Rules) > 0 {
		n, err := ingest.NewNormalizer(config.Normalize.Rules)
		if err != nil {
			return commands.Source{}, commands.Source{}, err
		}
		norm = n
	}

	origOpts, err := config.Sources.Original.IngestOptions(norm)
	if err != nil {
		return commands.Source{}, commands.Source{}, fmt.Errorf("original: %w", err)
	}
	expOpts, err := config.Sources.Export.IngestOptions(norm)
	if err != nil {
		return commands.Source{}, commands.Source{}, fmt.Errorf("export: %w", err)
	}

	return commands.Source{Location: config.Sources.Original.Location, Options: origOpts},
		commands.Source{Location: config.Sources.Export.Location, Options: expOpts}, nil
}

// newLogger - console output for humans, JSON when configured
func newLogger(cfg LogConfig, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	if cfg.JSON {
		w = out
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func fail(stderr io.Writer, format string, args ...any) int {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return 1
}
