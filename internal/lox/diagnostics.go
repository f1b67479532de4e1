package lox

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// LexError, ParseError and ResolveError are the three static-diagnostic
// kinds; RuntimeError is the dynamic one. All implement error and carry
// the source line so a reporter can format them uniformly.
type LexError struct {
	Line    int
	Message string
}

func (e *LexError) Error() string { return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message) }

// ParseError/ResolveError report relative to a token: either a lexeme or
// "end" when the failure happened at EOF.
type ParseError struct {
	Line    int
	AtEnd   bool
	Lexeme  string
	Message string
}

func (e *ParseError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

type ResolveError struct {
	Line    int
	AtEnd   bool
	Lexeme  string
	Message string
}

func (e *ResolveError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

// RuntimeError is raised during evaluation; it aborts the current
// top-level execution.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func (e *RuntimeError) Format() string { return fmt.Sprintf("%s\n[line %d]", e.Message, e.Line) }

// Diagnostics is the pipeline's diagnostics sink: a process-wide pair of
// sticky "had error" flags plus an accumulator for every diagnostic
// raised during one lex/parse/resolve pass, so a single run can report
// every static error it found instead of just the first.
//
// It is threaded explicitly through the lexer, parser and resolver
// rather than kept as package-level mutable state.
type Diagnostics struct {
	Out     io.Writer
	NoColor bool

	errs          *multierror.Error
	hadError      bool
	hadRuntimeErr bool
}

func NewDiagnostics(out io.Writer) *Diagnostics {
	return &Diagnostics{Out: out}
}

// Reset clears the sticky flags and accumulated errors between REPL
// lines; successful global bindings from prior lines are untouched.
func (d *Diagnostics) Reset() {
	d.errs = nil
	d.hadError = false
	d.hadRuntimeErr = false
}

func (d *Diagnostics) HadError() bool        { return d.hadError }
func (d *Diagnostics) HadRuntimeError() bool { return d.hadRuntimeErr }

func (d *Diagnostics) report(err error) {
	d.hadError = true
	d.errs = multierror.Append(d.errs, err)
	logrus.WithError(err).Debug("diagnostic reported")
	d.printErr(err.Error())
}

func (d *Diagnostics) ReportLex(line int, message string) {
	d.report(&LexError{Line: line, Message: message})
}

func (d *Diagnostics) ReportParse(tok Token, message string) {
	err := &ParseError{Line: tok.Line, Message: message}
	if tok.Type == EOF {
		err.AtEnd = true
	} else {
		err.Lexeme = tok.Lexeme
	}
	d.report(err)
}

func (d *Diagnostics) ReportResolve(tok Token, message string) {
	err := &ResolveError{Line: tok.Line, Message: message}
	if tok.Type == EOF {
		err.AtEnd = true
	} else {
		err.Lexeme = tok.Lexeme
	}
	d.report(err)
}

// ReportRuntime prints a runtime error and sets the sticky runtime flag.
// Unlike the static diagnostics, only one runtime error is ever reported
// per top-level execution: it aborts the statement/program in progress.
func (d *Diagnostics) ReportRuntime(err *RuntimeError) {
	d.hadRuntimeErr = true
	logrus.WithError(err).Debug("runtime error reported")
	d.printErr(err.Format())
}

// Errors returns every diagnostic accumulated in the current pass, or
// nil if there were none.
func (d *Diagnostics) Errors() *multierror.Error { return d.errs }

func (d *Diagnostics) printErr(msg string) {
	if d.Out == nil {
		return
	}
	if d.NoColor {
		fmt.Fprintln(d.Out, msg)
		return
	}
	fmt.Fprintln(d.Out, color.RedString("%s", msg))
}
