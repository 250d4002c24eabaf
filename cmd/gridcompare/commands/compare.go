package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/gridcompare/pkg/core/table"
	"github.com/ruslano69/gridcompare/pkg/ingest"
	"github.com/ruslano69/gridcompare/pkg/report"
	"github.com/ruslano69/gridcompare/pkg/resultlog"
	"github.com/ruslano69/gridcompare/pkg/xlsx"
)

// Source is one side of the comparison
type Source struct {
	Location string
	Options  ingest.Options
}

// ResultPublisher receives the outcome of every run
type ResultPublisher interface {
	Publish(ctx context.Context, result resultlog.RunResult) error
}

// CompareOptions holds options for the compare command
type CompareOptions struct {
	Original Source
	Export   Source
	KeyField string
	Output   string // file or directory

	Report report.Options
	Writer xlsx.Options

	// RequireFields fails the run when nothing but the key is comparable
	RequireFields bool
	// RunName identifies the run in the published result
	RunName   string
	Publisher ResultPublisher

	Out io.Writer // default os.Stdout
	Log zerolog.Logger
}

// CompareResult is what a successful run produced
type CompareResult struct {
	Report *report.Report
	Path   string
}

// Compare reads both sources, builds the comparison report and writes the
// workbook. The result is published whether or not the run succeeded.
func Compare(ctx context.Context, opts CompareOptions) (res *CompareResult, err error) {
	started := time.Now()
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	var r *report.Report
	var path string
	if opts.Publisher != nil {
		defer func() {
			result := resultlog.NewRunResult(opts.RunName, opts.Original.Location, opts.Export.Location,
				r, path, started, err)
			if pubErr := opts.Publisher.Publish(ctx, result); pubErr != nil {
				opts.Log.Warn().Err(pubErr).Msg("failed to publish run result")
			}
		}()
	}

	if opts.KeyField == "" {
		return nil, fmt.Errorf("key field is required (use --columns to list candidates)")
	}

	fmt.Fprintf(out, "Comparing tables...\n")
	fmt.Fprintf(out, "Original: %s\n", opts.Original.Location)
	fmt.Fprintf(out, "Export: %s\n", opts.Export.Location)
	fmt.Fprintf(out, "Key: %s\n", opts.KeyField)

	original, export, err := openBoth(ctx, opts.Original, opts.Export, opts.Log)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✓ Original: %d field(s), %d row(s)\n", original.Width(), original.Len())
	fmt.Fprintf(out, "✓ Export: %d field(s), %d row(s)\n", export.Width(), export.Len())

	built, err := report.Build(original, export, opts.KeyField, opts.Report)
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	if opts.RequireFields {
		if err := built.RequireFields(); err != nil {
			return nil, err
		}
	}
	r = built

	opts.Log.Debug().
		Strs("fields", r.Fields()).
		Int("rows", r.Layout.Addr.Rows()).
		Int("formulas", r.Formulas.Len()).
		Msg("report planned")

	written, err := xlsx.WriteReport(r, opts.Output, opts.Log, opts.Writer)
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	path = written

	fmt.Fprint(out, r.Preview.FormatText())
	fmt.Fprintf(out, "✓ Compared %d field(s) over %d key(s)\n", len(r.Fields()), r.Layout.Addr.Rows())
	if r.Preview.IsEqual() {
		fmt.Fprintf(out, "✓ Tables match\n")
	} else {
		fmt.Fprintf(out, "✗ %d cell(s) will show Error\n", r.Preview.TotalErrors())
	}
	fmt.Fprintf(out, "✓ Results saved to %s\n", path)

	return &CompareResult{Report: r, Path: path}, nil
}

func openBoth(ctx context.Context, orig, exp Source, log zerolog.Logger) (*table.Table, *table.Table, error) {
	original, err := ingest.Open(ctx, orig.Location, orig.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read original %s: %w", orig.Location, err)
	}
	log.Debug().Str("source", orig.Location).Str("fingerprint", original.Fingerprint()).Msg("original loaded")

	export, err := ingest.Open(ctx, exp.Location, exp.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read export %s: %w", exp.Location, err)
	}
	log.Debug().Str("source", exp.Location).Str("fingerprint", export.Fingerprint()).Msg("export loaded")

	return original, export, nil
}
