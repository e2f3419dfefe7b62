package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/dtypediet/internal/arrowio"
	"github.com/KaramelBytes/dtypediet/internal/diet"
	"github.com/KaramelBytes/dtypediet/internal/frame"
)

// resetFlags clears values and Changed state left by earlier invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeCSV(t *testing.T, dir, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,label,score\n")
	for i := 0; i < 10; i++ {
		b.WriteString(strings.Join([]string{strconv.Itoa(i), "x", "1.5"}, ","))
		b.WriteString("\n")
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_DemoMarkdown(t *testing.T) {
	isolateHome(t)
	out := mustRun(t, "demo", "--unit", "byte")
	for _, want := range []string{
		"[DTYPE REPORT]",
		"Source: demo",
		"| a | int64 | int8 | 800 | 100 | 700 | 87.5 |",
		"| str_a | object | category | 2100 | 121 |",
		"| str_b | object | - | 1790 | - | - | - |",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("demo output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ReportJSON(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "metrics.csv")
	out := mustRun(t, "report", path, "--format", "json", "--unit", "byte")

	var rep struct {
		Source  string `json:"source"`
		Rows    int    `json:"rows"`
		Columns []struct {
			Column       string  `json:"column"`
			CurrentKind  string  `json:"current_kind"`
			ProposedKind *string `json:"proposed_kind"`
		} `json:"columns"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if rep.Source != "metrics.csv" || rep.Rows != 10 || len(rep.Columns) != 3 {
		t.Fatalf("report = %+v", rep)
	}
	want := map[string][2]string{
		"id":    {"int64", "int8"},
		"label": {"object", "category"},
		"score": {"float64", "float16"},
	}
	for _, c := range rep.Columns {
		w := want[c.Column]
		if c.CurrentKind != w[0] || c.ProposedKind == nil || *c.ProposedKind != w[1] {
			t.Fatalf("%s: %s -> %v, want %v", c.Column, c.CurrentKind, c.ProposedKind, w)
		}
	}
}

func TestCLI_ReportOutputFile(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "metrics.csv")
	dest := filepath.Join(home, "out", "report.md")
	out := mustRun(t, "report", path, "-o", dest)
	if !strings.Contains(out, "✓ Wrote report to") {
		t.Fatalf("unexpected stdout: %s", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Unit: MB") {
		t.Fatalf("report should default to MB:\n%s", b)
	}
}

func TestCLI_OptimizeWritesNarrowParquet(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "metrics.csv")
	dest := filepath.Join(home, "narrow.parquet")
	out := mustRun(t, "optimize", path, "--out", dest, "-q")
	if !strings.Contains(out, "3 of 3 columns narrowed") {
		t.Fatalf("summary = %s", out)
	}
	ds, err := arrowio.ReadFile(context.Background(), dest)
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	id, ok := ds.Column("id")
	if !ok || id.Kind() != frame.Int8 {
		t.Fatalf("id column = %v", id)
	}
	if id.Value(9).Int != 9 {
		t.Fatalf("id[9] = %v", id.Value(9))
	}
}

func TestCLI_OptimizeRejectsBadOutput(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "metrics.csv")
	if _, err := runCmd(t, "optimize", path, "--out", filepath.Join(home, "x.csv")); err == nil {
		t.Fatal("expected error for .csv output")
	}
	if _, err := runCmd(t, "optimize", path); err == nil {
		t.Fatal("expected error when --out is missing")
	}
}

func TestCLI_ReportErrors(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "metrics.csv")
	if _, err := runCmd(t, "report", filepath.Join(home, "data.json")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := runCmd(t, "report", path, "--unit", "TB"); err == nil {
		t.Fatal("expected unit error")
	}
	if _, err := runCmd(t, "report", path, "--delimiter", ";;"); err == nil {
		t.Fatal("expected delimiter error")
	}
}

func TestCLI_Kinds(t *testing.T) {
	isolateHome(t)
	out := mustRun(t, "kinds")
	for _, want := range []string{"int32, int16, int8", "float32, float16", "category"} {
		if !strings.Contains(out, want) {
			t.Fatalf("kinds output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)
	mustRun(t, "config", "set", "default_unit", "KB")
	if _, err := os.Stat(filepath.Join(home, ".dtypediet", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "default_unit: KB") {
		t.Fatalf("config show = %s", out)
	}
	out = mustRun(t, "demo")
	if !strings.Contains(out, "Unit: KB") {
		t.Fatalf("demo should use configured unit:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "default_unit", "TB"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestCLI_ReportBatch(t *testing.T) {
	home := isolateHome(t)
	writeCSV(t, home, filepath.Join("d1", "metrics.csv"))
	writeCSV(t, home, filepath.Join("d2", "metrics.csv"))
	outDir := filepath.Join(home, "reports")
	mustRun(t, "report-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--format", "yaml")
	for _, name := range []string{"metrics.report.yaml", "metrics_2.report.yaml"} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if !strings.Contains(string(b), "proposed_kind: int8") {
			t.Fatalf("%s content:\n%s", name, b)
		}
	}
	if _, err := runCmd(t, "report-batch", filepath.Join(home, "none*.csv")); err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestCLI_ReportBatchSuffixedNamesDoNotCollide(t *testing.T) {
	home := isolateHome(t)
	inputs := []string{
		writeCSV(t, home, "a.csv"),
		writeCSV(t, home, "a_2.csv"),
		writeCSV(t, home, filepath.Join("b", "a.csv")),
	}
	outDir := filepath.Join(home, "reports")
	mustRun(t, append([]string{"report-batch", "--out-dir", outDir, "--format", "yaml", "-q"}, inputs...)...)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a.report.yaml", "a_2.report.yaml", "a_3.report.yaml"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("reports = %v, want %v", names, want)
	}
}

func TestBatchOutputPath(t *testing.T) {
	dir := t.TempDir()
	used := map[string]bool{}
	for _, tc := range []struct{ in, want string }{
		{"in/a.csv", "a.report.md"},
		{"in/a_2.csv", "a_2.report.md"},
		{"in/b/a.csv", "a_3.report.md"},
		{"in/c.tsv", "c.report.md"},
	} {
		if got := batchOutputPath(dir, tc.in, diet.FormatMarkdown, used); got != filepath.Join(dir, tc.want) {
			t.Fatalf("%s -> %s, want %s", tc.in, got, tc.want)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "x.report.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := batchOutputPath(dir, "x.csv", diet.FormatJSON, map[string]bool{}); got != filepath.Join(dir, "x_2.report.json") {
		t.Fatalf("existing file overwritten: %s", got)
	}
}
