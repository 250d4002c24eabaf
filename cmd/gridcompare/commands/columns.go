package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ruslano69/gridcompare/pkg/diff"
)

// ListColumns prints the fields both sources share, in original order.
// Any of them can serve as --key.
func ListColumns(ctx context.Context, orig, exp Source, out io.Writer, log zerolog.Logger) ([]string, error) {
	if out == nil {
		out = os.Stdout
	}

	original, export, err := openBoth(ctx, orig, exp, log)
	if err != nil {
		return nil, err
	}

	common := diff.CommonFields(original, export)
	if len(common) == 0 {
		fmt.Fprintln(out, "(no common columns)")
		return common, nil
	}

	fmt.Fprintf(out, "Common columns (%d):\n", len(common))
	for _, f := range common {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return common, nil
}
