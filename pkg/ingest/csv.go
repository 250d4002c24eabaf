package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ruslano69/gridcompare/pkg/core/table"
)

// ErrNoHeader - source has no header row.
var ErrNoHeader = errors.New("source has no header row")

// ReadCSV reads delimited text with a header row.
//
// A UTF-8 or UTF-16 byte order mark is honoured and stripped, so files saved
// by spreadsheet applications keep their first field name intact. Short
// records are padded with empty values; records wider than the header fail
// with table.ErrRowWidth.
func ReadCSV(r io.Reader, name string, comma rune) (*table.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %q", ErrNoHeader, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %q: %w", name, err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		records = append(records, rec)
	}

	return table.FromStrings(name, header, records)
}

// commaFor picks the delimiter from the file name; .txt files are sniffed.
func commaFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return '\t'
	case ".txt":
		return sniffComma(path)
	}
	return ','
}

func sniffComma(path string) rune {
	f, err := os.Open(path)
	if err != nil {
		return ','
	}
	defer f.Close()

	line, _ := bufio.NewReader(f).ReadString('\n')
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return '\t'
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
