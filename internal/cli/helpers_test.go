package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// gridDoc is a 200×100 canvas split into quadrants with one plot in the
// bottom-left cell:
//
//	top    [0,50]   bottom [50,100]
//	left   [0,100]  right  [100,200]
const gridDoc = `
title = "quadrants"
width = 200
height = 100

[[row]]
name = "top"
min = "0"
max = "50%"

[[row]]
name = "bottom"
min = "50%"
max = "100%"

[[column]]
name = "left"
min = "0"
max = "50%"

[[column]]
name = "right"
min = "50%"
max = "100%"

[[axis]]
name = "x"
direction = "x"
min = 0.0
max = 4.0
row = "bottom"
column = "left"

[[axis]]
name = "y"
direction = "y"
min = 0.0
max = 16.0
row = "bottom"
column = "left"

[[plot]]
name = "p"
row = "bottom"
column = "left"
xaxis = "x"
yaxis = "y"

  [[plot.series]]
  label = "squares"
  x = [0.0, 1.0, 2.0, 3.0, 4.0]
  y = [0.0, 1.0, 4.0, 9.0, 16.0]
`

// writeDoc writes gridDoc to dir/name.toml and returns its path.
func writeDoc(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+docExt)
	if err := os.WriteFile(path, []byte(gridDoc), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

// captureStdout redirects user-facing output for the rest of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// runCLI executes the root command with args against an isolated cache
// directory and returns what was printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureStdout(t)

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func mustContain(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}
