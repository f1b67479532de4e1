// Package loxtest runs golden-file Lox programs in-process and compares
// their observed stdout and exit code against the expected values
// recorded alongside each fixture, printing a colorized pass/fail line
// and a side-by-side diff on mismatch -- the same shape as the
// reference implementation's own external test-comparison tooling,
// adapted to run the interpreter directly instead of a subprocess.
package loxtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/sdecook/glox/internal/lox"
)

const width = 100

// Case is one golden fixture: a .lox source plus its expected observable
// behavior.
type Case struct {
	Name           string
	Source         []byte
	ExpectedStdout string
	ExpectedExit   int
}

// Load reads every `*.lox` file under dir. Expected stdout comes from a
// sibling `name.expected` file (empty string if absent); expected exit
// code comes from a trailing `// exit: N` comment on its own line in the
// `.lox` source, defaulting to 0.
func Load(t *testing.T, dir string) []Case {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}

	var cases []Case
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lox") {
			continue
		}

		srcPath := filepath.Join(dir, e.Name())
		source, err := os.ReadFile(srcPath)
		if err != nil {
			t.Fatalf("reading %s: %v", srcPath, err)
		}

		expected := ""
		expectedPath := strings.TrimSuffix(srcPath, ".lox") + ".expected"
		if data, err := os.ReadFile(expectedPath); err == nil {
			expected = string(data)
		}

		cases = append(cases, Case{
			Name:           e.Name(),
			Source:         source,
			ExpectedStdout: expected,
			ExpectedExit:   exitCodeDirective(source),
		})
	}
	return cases
}

func exitCodeDirective(source []byte) int {
	for _, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "// exit:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				return n
			}
		}
	}
	return 0
}

// Run executes c in-process, asserts its observed stdout and exit code
// (derived from the diagnostics sink's sticky flags) match, and prints a
// colorized pass/fail line.
func Run(t *testing.T, c Case) {
	t.Helper()

	var stdout bytes.Buffer
	diags := lox.NewDiagnostics(&bytes.Buffer{})
	diags.NoColor = true
	interp := lox.NewInterpreter(&stdout, diags)

	lox.Run(interp, diags, c.Source)

	exit := 0
	switch {
	case diags.HadError():
		exit = 65
	case diags.HadRuntimeError():
		exit = 70
	}

	stdoutOK := assert.Equal(t, c.ExpectedStdout, stdout.String(), "%s: stdout mismatch", c.Name)
	exitOK := assert.Equal(t, c.ExpectedExit, exit, "%s: exit code mismatch", c.Name)

	spacing := strings.Repeat(" ", max(1, width-len("  [passed] ")-len(c.Name)))
	if stdoutOK && exitOK {
		fmt.Printf("  [%s] %s%s\n", color.GreenString("passed"), c.Name, spacing)
		return
	}

	fmt.Printf("  [%s] %s%s\n", color.RedString("failed"), c.Name, spacing)
	printDiff(c.ExpectedStdout, stdout.String())
}

func printDiff(expected, actual string) {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	fmt.Printf("%-*s%s\n", width/2, "Expected stdout", "Actual stdout")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var el, al string
		if i < len(expectedLines) {
			el = expectedLines[i]
		}
		if i < len(actualLines) {
			al = actualLines[i]
		}
		fmt.Printf("%-*s%s\n", width/2, el, al)
	}
}
