package main

import (
	"flag"
	"io"
)

// Flags holds all command-line flags
type Flags struct {
	// Sources
	Original      *string
	Export        *string
	OriginalSheet *string // worksheet of an .xlsx original
	ExportSheet   *string // worksheet of an .xlsx export
	OriginalQuery *string // SQL instead of SELECT * FROM <table>
	ExportQuery   *string
	Delimiter     *string // CSV delimiter override

	// Comparison
	Key           *string
	NoKeyTriplet  *bool
	RequireFields *bool
	Normalize     *string // rules applied to every field, comma-separated

	// Commands
	Columns *bool

	// Options
	Config      *string
	Output      *string
	ColumnWidth *float64

	// Logging
	LogLevel *string
	LogJSON  *bool

	// Config Creation
	CreateConfig *bool

	// Misc
	Version *bool
	Help    *bool

	// Args are positional arguments: [original] [export]
	Args []string

	set map[string]bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	fs := flag.NewFlagSet("gridcompare", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { PrintHelp(output) }

	f := &Flags{}

	// Sources
	f.Original = fs.String("original", "", "Original table (file or database URL)")
	f.Export = fs.String("export", "", "Export table (file or database URL)")
	f.OriginalSheet = fs.String("original-sheet", "", "Worksheet of an .xlsx original (default: first)")
	f.ExportSheet = fs.String("export-sheet", "", "Worksheet of an .xlsx export (default: first)")
	f.OriginalQuery = fs.String("original-query", "", "SQL query for a database original")
	f.ExportQuery = fs.String("export-query", "", "SQL query for a database export")
	f.Delimiter = fs.String("delimiter", "", "CSV delimiter (default: by extension)")

	// Comparison
	f.Key = fs.String("key", "", "Key field shared by both tables")
	f.NoKeyTriplet = fs.Bool("no-key-triplet", false, "Do not render the key field as its own triplet")
	f.RequireFields = fs.Bool("require-fields", false, "Fail when no field besides the key is comparable")
	f.Normalize = fs.String("normalize", "", "Normalize every field before comparing (e.g. trim,nfc)")

	// Commands
	f.Columns = fs.Bool("columns", false, "List the columns both tables share and exit")

	// Options
	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.Output = fs.String("output", "", "Output file or directory (default: current directory)")
	f.ColumnWidth = fs.Float64("column-width", 0, "Column width of every sheet (default: 15)")

	// Logging
	f.LogLevel = fs.String("log-level", "", "Log level: debug, info, warn, error")
	f.LogJSON = fs.Bool("log-json", false, "Write logs as JSON")

	// Config Creation
	f.CreateConfig = fs.Bool("create-config", false, "Create sample config file")

	// Misc
	f.Version = fs.Bool("version", false, "Show version information")
	f.Help = fs.Bool("help", false, "Show detailed help with examples")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.Args = fs.Args()
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	// positional form: gridcompare [flags] original export
	if *f.Original == "" && len(f.Args) > 0 {
		*f.Original = f.Args[0]
	}
	if *f.Export == "" && len(f.Args) > 1 {
		*f.Export = f.Args[1]
	}

	return f, nil
}

// IsSet reports whether the flag was given on the command line
func (f *Flags) IsSet(name string) bool {
	return f.set[name]
}
