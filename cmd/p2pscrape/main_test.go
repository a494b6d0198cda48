package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/p2pscrape/internal/app"
	"github.com/hyperifyio/p2pscrape/internal/extract"
	"github.com/hyperifyio/p2pscrape/internal/numeric"
)

func fixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "internal", "extract", "testdata", "8percent-829.html"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")
	cfg := app.Config{
		InputPath:  filepath.Join("..", "..", "internal", "extract", "testdata", "8percent-829.html"),
		OutputPath: out,
	}
	if code := run(context.Background(), cfg); code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	b, err := os.ReadFile(out)
	if err != nil || !strings.Contains(string(b), `"2018-03-12"`) {
		t.Fatalf("expected output with last record, err=%v", err)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	if code := run(context.Background(), app.Config{OutputPath: "-"}); code != exitUsage {
		t.Fatalf("no source: exit %d", code)
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "broken.html")
	broken := strings.Replace(fixture(t), "repayment-schedule", "x", 1)
	if err := os.WriteFile(in, []byte(broken), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := run(context.Background(), app.Config{InputPath: in, OutputPath: filepath.Join(dir, "o.json")}); code != exitExtraction {
		t.Fatalf("broken page: exit %d", code)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("extract: %w", &extract.ParseError{Field: "records", Reason: "not found"}), exitExtraction},
		{fmt.Errorf("field amount: %w", &numeric.ConversionError{Text: "x", Kind: numeric.KindInt, Reason: "no digits"}), exitExtraction},
		{errors.New("fetch failed"), exitUsage},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("exitCode(%v)=%d, want %d", tc.err, got, tc.want)
		}
	}
}
