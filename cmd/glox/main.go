package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sdecook/glox/internal/lox"
)

var (
	noColor bool
	trace   bool
)

// executionError wraps a failure from inside a command's own body (file
// I/O, REPL setup) so main can tell it apart from a cobra-level usage
// error (bad flag, wrong argument count, unrecognized subcommand) that
// never reaches a RunE at all.
type executionError struct{ err error }

func (e *executionError) Error() string { return e.err.Error() }
func (e *executionError) Unwrap() error { return e.err }

func main() {
	root := newRootCmd()
	err := root.Execute()
	if err == nil {
		return
	}

	var execErr *executionError
	if errors.As(err, &execErr) {
		os.Exit(1)
	}
	os.Exit(64)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glox",
		Short: "glox is a tree-walking interpreter for Lox",
		// No args ⇒ REPL, for drop-in compatibility with the reference tool.
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runRepl(); err != nil {
				return &executionError{err}
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "log phase-by-phase scan/parse/resolve/eval trace to stderr")

	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "execute a Lox source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runFile(args[0]); err != nil {
				return &executionError{err}
			}
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runRepl(); err != nil {
				return &executionError{err}
			}
			return nil
		},
	}
}

func setupTrace() {
	if trace {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func runFile(path string) error {
	setupTrace()

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	diags := lox.NewDiagnostics(os.Stderr)
	diags.NoColor = noColor || !isatty.IsTerminal(os.Stderr.Fd())
	interp := lox.NewInterpreter(os.Stdout, diags)

	lox.Run(interp, diags, source)

	switch {
	case diags.HadError():
		os.Exit(65)
	case diags.HadRuntimeError():
		os.Exit(70)
	}
	return nil
}

func runRepl() error {
	setupTrace()

	diags := lox.NewDiagnostics(os.Stderr)
	diags.NoColor = noColor || !isatty.IsTerminal(os.Stderr.Fd())
	interp := lox.NewInterpreter(os.Stdout, diags)
	interp.SetREPL(true)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		return replReadline(interp, diags)
	}
	return replScanner(interp, diags)
}

func replReadline(interp *lox.Interpreter, diags *lox.Diagnostics) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		diags.Reset()
		lox.Run(interp, diags, []byte(line))
	}
}

func replScanner(interp *lox.Interpreter, diags *lox.Diagnostics) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "> ")
	for scanner.Scan() {
		diags.Reset()
		lox.Run(interp, diags, scanner.Bytes())
		fmt.Fprint(os.Stdout, "> ")
	}
	return scanner.Err()
}
