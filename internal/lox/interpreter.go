package lox

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Interpreter walks a resolved AST, evaluating expressions and executing
// statements against a chain of Environments.
type Interpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[Expr]int // filled by the Resolver; missing == global
	output      io.Writer
	diags       *Diagnostics
	isREPL      bool
}

func NewInterpreter(output io.Writer, diags *Diagnostics) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", NewNativeFunc("clock", 0, func(*Interpreter, []Value) (Value, error) {
		return Number(float64(time.Now().UnixNano()) / 1e9), nil
	}))

	return &Interpreter{
		globals:     globals,
		environment: globals,
		locals:      make(map[Expr]int),
		output:      output,
		diags:       diags,
	}
}

// SetREPL toggles REPL mode, where a bare expression statement's value is
// echoed to output (assignments and calls excepted) -- convenient
// interactively, a no-op for file runs.
func (in *Interpreter) SetREPL(v bool) { in.isREPL = v }

// Resolve records that expr, at evaluation time, is bound `distance`
// environments out from wherever it is evaluated. Called by the Resolver.
func (in *Interpreter) Resolve(expr Expr, distance int) {
	in.locals[expr] = distance
}

// Run executes a full program's top-level statements in order, stopping
// at (and reporting) the first runtime error.
func (in *Interpreter) Run(decls []Stmt) {
	for _, stmt := range decls {
		sig, err := in.exec(stmt)
		if err != nil {
			if rerr, ok := err.(*RuntimeError); ok {
				in.diags.ReportRuntime(rerr)
			} else {
				in.diags.ReportRuntime(&RuntimeError{Message: err.Error()})
			}
			return
		}
		_ = sig // top level: break/continue/return can't escape here, resolver forbids it
	}
}

func (in *Interpreter) exec(stmt Stmt) (signal, error) {
	logrus.WithField("stmt", fmt.Sprintf("%T", stmt)).Trace("exec")
	return stmt.exec(in)
}

func (in *Interpreter) eval(expr Expr) (Value, error) {
	return expr.evaluate(in)
}

// ---- Statement execution ----

func (p *Program) exec(in *Interpreter) (signal, error) {
	for _, d := range p.Decls {
		sig, err := in.exec(d)
		if err != nil || !sig.isNormal() {
			return sig, err
		}
	}
	return normalSignal, nil
}

func (f *FunDeclStmt) exec(in *Interpreter) (signal, error) {
	fn := newFunction(f.Fun, in.environment, false)
	in.environment.Define(f.Fun.Name.Lexeme, fn)
	return normalSignal, nil
}

func (v *VarDecl) exec(in *Interpreter) (signal, error) {
	value := Value(NilValue)
	if v.Init != nil {
		var err error
		value, err = in.eval(v.Init)
		if err != nil {
			return normalSignal, err
		}
	}
	in.environment.Define(v.Name.Lexeme, value)
	return normalSignal, nil
}

func (e *ExprStmt) exec(in *Interpreter) (signal, error) {
	v, err := in.eval(e.Expr)
	if err != nil {
		return normalSignal, err
	}
	if in.isREPL {
		switch e.Expr.(type) {
		case *AssignExpr, *CallExpr:
			// not echoed: these are statement-shaped expressions
		default:
			fmt.Fprintln(in.output, Stringify(v))
		}
	}
	return normalSignal, nil
}

func (p *PrintStmt) exec(in *Interpreter) (signal, error) {
	v, err := in.eval(p.Expr)
	if err != nil {
		return normalSignal, err
	}
	fmt.Fprintln(in.output, Stringify(v))
	return normalSignal, nil
}

func (r *ReturnStmt) exec(in *Interpreter) (signal, error) {
	if r.Value == nil {
		return returnSignal(NilValue), nil
	}
	v, err := in.eval(r.Value)
	if err != nil {
		return normalSignal, err
	}
	return returnSignal(v), nil
}

func (*BreakStmt) exec(in *Interpreter) (signal, error) {
	return breakSignal(), nil
}

func (*ContinueStmt) exec(in *Interpreter) (signal, error) {
	return continueSignal(), nil
}

func (i *IfStmt) exec(in *Interpreter) (signal, error) {
	cond, err := in.eval(i.Condition)
	if err != nil {
		return normalSignal, err
	}
	if IsTruthy(cond) {
		return in.exec(i.ThenBranch)
	} else if i.ElseBranch != nil {
		return in.exec(i.ElseBranch)
	}
	return normalSignal, nil
}

func (w *LoopStmt) exec(in *Interpreter) (signal, error) {
	for {
		cond, err := in.eval(w.Condition)
		if err != nil {
			return normalSignal, err
		}
		if !IsTruthy(cond) {
			return normalSignal, nil
		}

		sig, err := in.exec(w.Body)
		if err != nil {
			return normalSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return normalSignal, nil
		case signalReturn:
			return sig, nil
		}
		// signalNone and signalContinue both fall through to the increment.

		if w.Increment != nil {
			if _, err := in.eval(w.Increment); err != nil {
				return normalSignal, err
			}
		}
	}
}

func (b *Block) exec(in *Interpreter) (signal, error) {
	return in.execBlock(b.Decls, NewEnvironment(in.environment))
}

// execBlock runs decls in env, always restoring the previous environment
// on every exit path (normal, error, or control-flow signal).
func (in *Interpreter) execBlock(decls []Stmt, env *Environment) (signal, error) {
	prev := in.environment
	in.environment = env
	defer func() { in.environment = prev }()

	for _, d := range decls {
		sig, err := in.exec(d)
		if err != nil || !sig.isNormal() {
			return sig, err
		}
	}
	return normalSignal, nil
}

func (c *ClassDecl) exec(in *Interpreter) (signal, error) {
	var super *Class
	if c.Superclass != nil {
		superVal, err := in.eval(c.Superclass)
		if err != nil {
			return normalSignal, err
		}
		var ok bool
		super, ok = superVal.(*Class)
		if !ok {
			return normalSignal, &RuntimeError{Line: c.Superclass.Name.Line, Message: "Superclass must be a class."}
		}
	}

	in.environment.Define(c.Name.Lexeme, NilValue)

	methodEnv := in.environment
	if super != nil {
		methodEnv = NewEnvironment(in.environment)
		methodEnv.Define("super", super)
	}

	methods := make(map[string]*Function, len(c.Methods))
	for _, m := range c.Methods {
		methods[m.Name.Lexeme] = newFunction(m, methodEnv, m.Name.Lexeme == "init")
	}

	class := &Class{Name: c.Name.Lexeme, Superclass: super, Methods: methods}
	if err := in.environment.Assign(c.Name, class); err != nil {
		return normalSignal, err
	}
	return normalSignal, nil
}

// ---- Expression evaluation ----

func (l *LiteralExpr) evaluate(*Interpreter) (Value, error) { return l.Value, nil }

func (g *GroupExpr) evaluate(in *Interpreter) (Value, error) { return in.eval(g.Inner) }

func (u *UnaryExpr) evaluate(in *Interpreter) (Value, error) {
	right, err := in.eval(u.Right)
	if err != nil {
		return nil, err
	}
	switch u.Op.Type {
	case BANG:
		return Bool(!IsTruthy(right)), nil
	case MINUS:
		n, err := asNumber(right, u.Op)
		if err != nil {
			return nil, err
		}
		return -n, nil
	}
	panic("unreachable: unary operator " + u.Op.Type.String())
}

func (b *BinaryExpr) evaluate(in *Interpreter) (Value, error) {
	left, err := in.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op.Type {
	case PLUS:
		ln, lNum := left.(Number)
		rn, rNum := right.(Number)
		if lNum && rNum {
			return ln + rn, nil
		}
		// Any other string/number pairing concatenates, with numbers
		// rendered the way `print` renders them.
		_, lStr := left.(String)
		_, rStr := right.(String)
		if (lStr || lNum) && (rStr || rNum) {
			return String(Stringify(left) + Stringify(right)), nil
		}
		return nil, &RuntimeError{Line: b.Op.Line, Message: "Operands must be numbers or strings."}
	case MINUS:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil
	case STAR:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil
	case SLASH:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return ln / rn, nil
	case GREATER:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return Bool(ln > rn), nil
	case GREATER_EQUAL:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return Bool(ln >= rn), nil
	case LESS:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return Bool(ln < rn), nil
	case LESS_EQUAL:
		ln, rn, err := asNumbers(left, right, b.Op)
		if err != nil {
			return nil, err
		}
		return Bool(ln <= rn), nil
	case EQUAL_EQUAL:
		return Bool(Equal(left, right)), nil
	case BANG_EQUAL:
		return Bool(!Equal(left, right)), nil
	}
	panic("unreachable: binary operator " + b.Op.Type.String())
}

func (l *LogicalExpr) evaluate(in *Interpreter) (Value, error) {
	left, err := in.eval(l.Left)
	if err != nil {
		return nil, err
	}
	switch l.Op.Type {
	case OR:
		if IsTruthy(left) {
			return left, nil
		}
	case AND:
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return in.eval(l.Right)
}

func (v *VariableExpr) evaluate(in *Interpreter) (Value, error) {
	return in.lookUpVariable(v.Name, v)
}

func (in *Interpreter) lookUpVariable(name Token, expr Expr) (Value, error) {
	if distance, ok := in.locals[expr]; ok {
		return in.environment.GetAt(distance, name.Lexeme), nil
	}
	return in.globals.Get(name)
}

func (a *AssignExpr) evaluate(in *Interpreter) (Value, error) {
	v, err := in.eval(a.Value)
	if err != nil {
		return nil, err
	}

	if distance, ok := in.locals[a]; ok {
		in.environment.AssignAt(distance, a.Name, v)
		return v, nil
	}
	if err := in.globals.Assign(a.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *CallExpr) evaluate(in *Interpreter) (Value, error) {
	callee, err := in.eval(c.Callee)
	if err != nil {
		return nil, err
	}

	// Evaluate arguments left-to-right regardless of what callee turns
	// out to be; side effects in arguments are observable even when the
	// call itself later fails.
	args := make([]Value, 0, len(c.Args))
	for _, a := range c.Args {
		v, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &RuntimeError{Line: c.Paren.Line, Message: "Can only call functions and classes."}
	}
	if len(args) != fn.Arity() {
		return nil, &RuntimeError{Line: c.Paren.Line, Message: fmt.Sprintf(
			"Expected %d arguments, got %d.", fn.Arity(), len(args))}
	}
	return fn.Call(in, args)
}

func (g *GetExpr) evaluate(in *Interpreter) (Value, error) {
	obj, err := in.eval(g.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, &RuntimeError{Line: g.Name.Line, Message: "Only instances have properties."}
	}
	return inst.Get(g.Name)
}

func (s *SetExpr) evaluate(in *Interpreter) (Value, error) {
	obj, err := in.eval(s.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, &RuntimeError{Line: s.Name.Line, Message: "Only instances have fields."}
	}
	v, err := in.eval(s.Value)
	if err != nil {
		return nil, err
	}
	inst.Set(s.Name, v)
	return v, nil
}

func (t *ThisExpr) evaluate(in *Interpreter) (Value, error) {
	return in.lookUpVariable(t.Keyword, t)
}

func (s *SuperExpr) evaluate(in *Interpreter) (Value, error) {
	distance := in.locals[s]
	super := in.environment.GetAt(distance, "super").(*Class)
	this := in.environment.GetAt(distance-1, "this").(*Instance)

	method, ok := super.FindMethod(s.Method.Lexeme)
	if !ok {
		return nil, &RuntimeError{Line: s.Method.Line, Message: "Undefined property '" + s.Method.Lexeme + "'."}
	}
	return method.bind(this), nil
}

func (f *FunctionExpr) evaluate(in *Interpreter) (Value, error) {
	fn := newFunction(f, in.environment, false)
	if f.Name.Lexeme != "" {
		in.environment.Define(f.Name.Lexeme, fn)
	}
	return fn, nil
}

// ---- helpers ----

func asNumber(v Value, op Token) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, &RuntimeError{Line: op.Line, Message: "Operand must be a number."}
	}
	return n, nil
}

func asNumbers(a, b Value, op Token) (Number, Number, error) {
	an, aok := a.(Number)
	bn, bok := b.(Number)
	if !aok || !bok {
		return 0, 0, &RuntimeError{Line: op.Line, Message: "Operands must be numbers."}
	}
	return an, bn, nil
}
