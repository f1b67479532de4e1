package lox

import "fmt"

// Function is a user-defined function or method: a FunctionExpr plus the
// environment captured at its definition site (its closure).
type Function struct {
	decl    *FunctionExpr
	closure *Environment
	isInit  bool
}

func newFunction(decl *FunctionExpr, closure *Environment, isInit bool) *Function {
	return &Function{decl: decl, closure: closure, isInit: isInit}
}

func (*Function) Type() string { return "function" }

func (f *Function) String() string {
	name := f.decl.Name.Lexeme
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<fn %s>", name)
}

func (f *Function) Arity() int { return len(f.decl.Params) }

// Call runs the function body in a fresh environment chained to its
// closure, with parameters bound by position.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	sig, err := in.execBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.isInit {
		// A bare `return;` or falling off the end both yield `this`;
		// resolve-time checks already forbid `return <expr>;` here.
		return f.closure.GetAt(0, "this"), nil
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return NilValue, nil
}

// bind produces a fresh Function whose closure adds a single `this`
// slot in front of the method's original closure, rebinding it to
// instance. Used both for plain method lookup and for `super.method`.
func (f *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return newFunction(f.decl, env, f.isInit)
}

// Class is a Lox class value: itself callable (constructs instances).
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (*Class) Type() string     { return "class" }
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }

func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// FindMethod walks the superclass chain looking for name.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Instance is a heap object: a reference to its class plus a mutable
// field table. Field lookups fall back to bound methods.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (*Instance) Type() string     { return "instance" }
func (i *Instance) String() string { return fmt.Sprintf("<instance of %s>", i.class.Name) }

func (i *Instance) Get(name Token) (Value, error) {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v, nil
	}
	if method, ok := i.class.FindMethod(name.Lexeme); ok {
		return method.bind(i), nil
	}
	return nil, &RuntimeError{Line: name.Line, Message: "Undefined property '" + name.Lexeme + "'."}
}

func (i *Instance) Set(name Token, v Value) {
	i.fields[name.Lexeme] = v
}
