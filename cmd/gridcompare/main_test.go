package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeInputs(t *testing.T) (dir, orig, exp string) {
	t.Helper()
	dir = t.TempDir()
	orig = filepath.Join(dir, "orig.csv")
	exp = filepath.Join(dir, "exp.csv")
	if err := os.WriteFile(orig, []byte("ID,Name\n1,Ann\n2,Bob\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(exp, []byte("Name,ID\nAnn,1\nBob,2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, orig, exp
}

func TestRun_Compare(t *testing.T) {
	dir, orig, exp := writeInputs(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--key", "ID", "--output", dir, "--log-level", "error", orig, exp}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "✓ Tables match") {
		t.Errorf("stdout:\n%s", stdout.String())
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "comparison_output.xlsx"))
	if err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Compare", "E1"); got != "Name" {
		t.Errorf("Compare!E1 = %q", got)
	}
}

func TestRun_Columns(t *testing.T) {
	_, orig, exp := writeInputs(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"--columns", "--log-level", "error", orig, exp}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "  ID\n") || !strings.Contains(stdout.String(), "  Name\n") {
		t.Errorf("stdout:\n%s", stdout.String())
	}
}

func TestRun_Errors(t *testing.T) {
	dir, orig, exp := writeInputs(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing key field", []string{"--key", "Nope", "--output", dir, orig, exp}, "key field missing"},
		{"no key", []string{"--output", dir, orig, exp}, "key field is required"},
		{"explicit config missing", []string{"--config", filepath.Join(dir, "none.yaml"), orig, exp}, "Failed to load config"},
		{"bad log level", []string{"--log-level", "loud", orig, exp}, "invalid log level"},
		{"bad normalize rule", []string{"--key", "ID", "--normalize", "reverse", orig, exp}, "invalid normalize rule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != 1 {
				t.Errorf("exit code %d, want 1", code)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr misses %q:\n%s", tt.want, stderr.String())
			}
		})
	}
}

func TestRun_NoSourcesShowsHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "USAGE:") {
		t.Errorf("help not printed:\n%s", stderr.String())
	}
}

func TestRun_CreateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	var stdout, stderr bytes.Buffer

	if code := run([]string{"--create-config", "--config", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compare.KeyField != "id" {
		t.Errorf("sample key = %q", cfg.Compare.KeyField)
	}
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &bytes.Buffer{}); code != 0 {
		t.Errorf("exit code %d", code)
	}
	if !strings.Contains(stdout.String(), version) {
		t.Errorf("stdout = %q", stdout.String())
	}
}
