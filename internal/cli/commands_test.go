package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	treeio "github.com/matzehuels/gridtree/pkg/io"
)

const scenarioJSON = `[[0, 0, 0], [15, 5, 0], [45, 45, 0]]`

// execute runs the root command with args against a private cache
// directory and returns everything printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _ := captureOutput(t)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeMarkers(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolateCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	return filepath.Join(dir, appName)
}

func TestBuildCommand(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)

	out, err := execute(t, "build", input)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "Exported 1 tree") {
		t.Errorf("output = %q", out)
	}

	f, err := os.Open(filepath.Join(dir, "markers.p3d"))
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	defer f.Close()
	file, err := chunk.DecodeP3D(f)
	if err != nil {
		t.Fatalf("DecodeP3D: %v", err)
	}
	trees := file.Find(treeio.TagTree)
	if len(trees) != 1 {
		t.Fatalf("got %d tree chunks, want 1", len(trees))
	}
	if n := len(trees[0].Find(treeio.TagNode)); n != 13 {
		t.Errorf("got %d node chunks, want 13", n)
	}
}

func TestBuildCommandConfigAndFlags(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	writeMarkers(t, dir, "markers.json", scenarioJSON)
	cfg := writeMarkers(t, dir, "gridtree.toml", `
markers_file = "markers.json"
grid_unit = 40
format = "xml"
output = "world.xml"
`)

	if _, err := execute(t, "build", "--config", cfg); err != nil {
		t.Fatalf("build with config: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "world.xml"))
	if err != nil {
		t.Fatalf("config output missing: %v", err)
	}
	if !bytes.Contains(data, []byte("<Pure3DFile")) {
		t.Errorf("not an XML chunk file: %.80s", data)
	}

	override := filepath.Join(dir, "override.json")
	if _, err := execute(t, "build", "--config", cfg, "--format", "json", "-o", override); err != nil {
		t.Fatalf("build with overrides: %v", err)
	}
	data, err = os.ReadFile(override)
	if err != nil {
		t.Fatalf("override output missing: %v", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		t.Errorf("not a JSON chunk file: %.80s", data)
	}
}

func TestBuildCommandBatch(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	a := writeMarkers(t, dir, "a.json", scenarioJSON)
	b := writeMarkers(t, dir, "b.json", `[[0, 0, 0], [100, 100, 0]]`)
	outDir := filepath.Join(dir, "out")
	metricsFile := filepath.Join(dir, "gridtree.prom")

	out, err := execute(t, "build", a, b, "-o", outDir, "--metrics-file", metricsFile)
	if err != nil {
		t.Fatalf("batch build: %v", err)
	}
	if !strings.Contains(out, "Exported 2 trees") {
		t.Errorf("output = %q", out)
	}
	for _, name := range []string{"a.p3d", "b.p3d"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file missing: %v", err)
	}
	if !bytes.Contains(prom, []byte("gridtree_builds_total")) || !bytes.Contains(prom, []byte(`result="ok"} 2`)) {
		t.Errorf("metrics file lacks build count:\n%s", prom)
	}
}

func TestBuildCommandErrors(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	a := writeMarkers(t, dir, "a.json", scenarioJSON)
	b := writeMarkers(t, dir, "b.json", scenarioJSON)
	empty := writeMarkers(t, dir, "empty.json", `[]`)
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	clash := writeMarkers(t, sub, "a.json", scenarioJSON)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"build"}, errors.ErrCodeEmptyInput},
		{"empty markers", []string{"build", empty}, errors.ErrCodeEmptyInput},
		{"missing file", []string{"build", filepath.Join(dir, "nope.json")}, errors.ErrCodeFileNotFound},
		{"bad format", []string{"build", a, "--format", "obj"}, errors.ErrCodeInvalidFormat},
		{"negative grid", []string{"build", a, "--grid=-5"}, errors.ErrCodeInvalidArgument},
		{"dump with batch", []string{"build", a, b, "--dump", "tree.txt"}, errors.ErrCodeInvalidArgument},
		{"colliding outputs", []string{"build", a, clash, "-o", filepath.Join(dir, "out")}, errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuildCommandDump(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)
	dump := filepath.Join(dir, "tree.txt")

	if _, err := execute(t, "build", input, "--dump", dump, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := os.ReadFile(dump)
	if err != nil {
		t.Fatalf("dump missing: %v", err)
	}
	// Header plus one line per node.
	if got := strings.Count(string(data), "\n"); got != 14 {
		t.Errorf("dump has %d lines, want 14:\n%s", got, data)
	}
}

func TestInspectCommand(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)

	out, err := execute(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"X=20", "Y=40", "root", "[0,0]-[60,60]", "13 nodes", "7 leaves"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommandDOT(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)

	out, err := execute(t, "inspect", input, "--dot")
	if err != nil {
		t.Fatalf("inspect --dot: %v", err)
	}
	if !strings.HasPrefix(out, "digraph Tree {") {
		t.Errorf("DOT output = %.60q", out)
	}

	dotFile := filepath.Join(dir, "tree.dot")
	if _, err := execute(t, "inspect", input, "--dot", "-o", dotFile); err != nil {
		t.Fatalf("inspect --dot -o: %v", err)
	}
	if _, err := os.Stat(dotFile); err != nil {
		t.Errorf("DOT file missing: %v", err)
	}

	_, err = execute(t, "inspect", input, "--dot", "--svg")
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("--dot --svg error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestPlotCommand(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)
	output := filepath.Join(dir, "partition.svg")

	if _, err := execute(t, "plot", input, "-o", output, "--width", "4", "--height", "4"); err != nil {
		t.Fatalf("plot: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("plot output missing: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("not an SVG: %.80s", data)
	}

	_, err = execute(t, "plot", input, "-o", filepath.Join(dir, "partition.bmp"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension error = %v, want INVALID_FORMAT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheRoot := isolateCache(t)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cacheRoot {
		t.Errorf("cache path = %q, want %q", out, cacheRoot)
	}

	out, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on empty cache = %q", out)
	}

	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)
	if _, err := execute(t, "build", input); err != nil {
		t.Fatalf("build: %v", err)
	}
	entries, _ := os.ReadDir(cacheRoot)
	if len(entries) == 0 {
		t.Fatal("build did not populate the cache")
	}

	out, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cache cleared") {
		t.Errorf("clear output = %q", out)
	}
	entries, _ = os.ReadDir(cacheRoot)
	if len(entries) != 0 {
		t.Errorf("cache still has %d entries", len(entries))
	}
}

func TestBuildCommandCacheHit(t *testing.T) {
	isolateCache(t)
	dir := t.TempDir()
	input := writeMarkers(t, dir, "markers.json", scenarioJSON)

	out, err := execute(t, "build", input)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if !strings.Contains(out, iconFresh) {
		t.Errorf("first build should be fresh: %q", out)
	}
	out, err = execute(t, "build", input)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if !strings.Contains(out, iconCached) {
		t.Errorf("second build should be cached: %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "gridtree") {
		t.Errorf("completion script does not mention gridtree")
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestShellCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"marker files", []string{"build", ""}, []string{"json", ":8"}},
		{"export formats", []string{"build", "--format", ""}, []string{"json", "p3d", "xml", ":4"}},
		{"config files", []string{"build", "--config", ""}, []string{"toml", "yaml", ":8"}},
		{"plot formats", []string{"plot", "m.json", "--output", ""}, []string{"png", "svg", "pdf", ":8"}},
		{"inspect args", []string{"inspect", ""}, []string{"json", ":8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"__complete"}, tt.args...)...)
			if err != nil {
				t.Fatalf("__complete %v: %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("completions for %v missing %q:\n%s", tt.args, want, out)
				}
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "gridtree version ") {
		t.Errorf("version output = %q", out)
	}
}
