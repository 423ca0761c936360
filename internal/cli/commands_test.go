package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/render/sink"
)

func TestLayoutCommand(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "quadrants")

	out, err := runCLI(t, "layout", doc)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	mustContain(t, out, "Layout of", "200x100", "top", "bottom", "left", "right", "[50,100]", "p, x, y", "fresh")
}

func TestLayoutCommandJSON(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "quadrants")
	path := filepath.Join(dir, "layout.json")

	if _, err := runCLI(t, "layout", doc, "-o", path, "--height", "200"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	l, err := sink.ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(l.Positions) != 4 || len(l.Cells) != 4 {
		t.Errorf("got %d positions and %d cells, want 4 and 4", len(l.Positions), len(l.Cells))
	}
	if p, _ := l.Position("bottom"); p.Bounds != (canvas.Bounds{Min: 100, Max: 200}) {
		t.Errorf("bottom = %v, want [100,200] after the height override", p.Bounds)
	}
	if len(l.Components) != 3 {
		t.Errorf("components = %d, want 3", len(l.Components))
	}
}

func TestHitCommand(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "quadrants")

	tests := []struct {
		name     string
		x, y     string
		wantCell string
		wantLine string
		wantComp bool
	}{
		{"inside the plot cell", "20", "70", "bottom/left", "", true},
		{"on the row boundary", "20", "50", "bottom/left", "top/max", true},
		{"near a column edge", "101", "10", "top/right", "left/max", false},
		{"outside every cell", "250", "10", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, "hit", doc, tt.x, tt.y, "--json")
			if err != nil {
				t.Fatalf("hit: %v", err)
			}
			var res hitResult
			if err := json.Unmarshal([]byte(out), &res); err != nil {
				t.Fatalf("decode: %v\n%s", err, out)
			}

			cell := ""
			if res.Cell != nil {
				cell = res.Cell.Row + "/" + res.Cell.Column
			}
			if cell != tt.wantCell {
				t.Errorf("cell = %q, want %q", cell, tt.wantCell)
			}
			line := ""
			if res.Line != nil {
				line = res.Line.Position + "/" + res.Line.Edge
			}
			if line != tt.wantLine {
				t.Errorf("line = %q, want %q", line, tt.wantLine)
			}
			if got := slices.Contains(res.Components, "p"); got != tt.wantComp {
				t.Errorf("components = %v, want plot present = %v", res.Components, tt.wantComp)
			}
		})
	}
}

func TestHitCommandText(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "quadrants")

	out, err := runCLI(t, "hit", doc, "20", "50")
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	mustContain(t, out, "Point (20, 50)", "bottom × left", "top max @ 50", "p")
}

func TestHitCommandBadCoordinate(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "quadrants")
	if _, err := runCLI(t, "hit", doc, "ten", "5"); err == nil || !strings.Contains(err.Error(), "invalid x") {
		t.Errorf("error = %v, want invalid x", err)
	}
}

func TestDepsCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relative.toml")
	src := `
width = 100
height = 100

[[row]]
name = "body"
min = "10%"
max = "90%"

[[row]]
name = "upper"
relative_to = "body"
min = "0%"
max = "50%"

[[column]]
name = "main"
min = "0"
max = "100%"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "deps", path, "--cells")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	mustContain(t, out, "digraph G {", `"pos:body" -> "pos:upper"`, "cluster_column", `"cell:upper/main"`)

	if _, err := runCLI(t, "deps", path, "-f", "gif"); err == nil {
		t.Error("expected an error for an unknown graph format")
	}
}

func TestCacheCommands(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "quadrants")
	cacheHome := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		out := captureStdout(t)
		c := New(os.Stderr, LogInfo)
		root := c.RootCommand()
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	if got := strings.TrimSpace(run("cache", "path")); got != filepath.Join(cacheHome, appName) {
		t.Errorf("cache path = %q", got)
	}
	mustContain(t, run("cache", "clear"), "Cache is empty")

	run("render", doc, "-o", filepath.Join(t.TempDir(), "out.svg"))
	mustContain(t, run("render", doc, "-o", filepath.Join(t.TempDir(), "out.svg")), "cached")
	mustContain(t, run("cache", "clear"), "Cleared 2 cached entries")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	want := []string{"layout", "render", "hit", "deps", "inspect", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	mustContain(t, out, "gridplot")
}
