package lox

import "github.com/sirupsen/logrus"

// Run lexes, parses, resolves and interprets source in a single pass,
// stopping before interpretation if any static diagnostic was reported
// -- a syntactically or statically invalid program is never executed,
// even partially.
func Run(in *Interpreter, diags *Diagnostics, source []byte) {
	logrus.Debug("phase: scan/parse")
	decls := Compile(diags, source)
	if diags.HadError() {
		return
	}

	logrus.Debug("phase: resolve")
	Resolve(in, diags, decls)
	if diags.HadError() {
		return
	}
	logrus.Debug("phase: eval")
	in.Run(decls)
}

// Compile runs the lexer and parser over source and returns whatever
// declaration list the parser produces. The parser always runs over the
// full token stream regardless of lexer diagnostics -- a lexical error
// drops only its own offending token, it doesn't prevent the parser from
// surfacing every syntax error it finds in the rest of the source.
func Compile(diags *Diagnostics, source []byte) []Stmt {
	tokens := NewLexer(source, diags).Scan()
	return NewParser(tokens, diags).Parse()
}

// Resolve runs the resolver over decls against in, recording variable
// scope distances. Call before handing decls to in.Run.
func Resolve(in *Interpreter, diags *Diagnostics, decls []Stmt) {
	NewResolver(in, diags).Resolve(decls)
}
