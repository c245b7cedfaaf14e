// Package semantics is the lookup-only stand-in for the semantic analyzer
// spec.md §1 names as an external collaborator. It answers the two queries
// the code generator needs — function and class descriptions — and carries
// the builtin function registry. It deliberately does not type-check,
// detect inheritance cycles, or reject redefinitions: a real front end does
// that before the generator ever runs (spec.md §7).
package semantics

import (
	"fmt"

	"lattec/internal/ast"

	"github.com/pkg/errors"
)

// FunDesc describes a free function's or a method's signature.
type FunDesc struct {
	Name     string
	RetType  ast.Type
	ArgTypes []ast.Type
}

// ClassDesc describes one class's own (non-inherited) fields and methods,
// plus a pointer to its parent's description for chained lookup.
type ClassDesc struct {
	Name   string
	Parent *ClassDesc
	Fields []ast.FieldDef
	Methods []FunDesc
}

// GlobalContext is the read-only registry of every free function and class
// in the program, seeded with the fixed builtin I/O functions.
type GlobalContext struct {
	functions map[string]FunDesc
	classes   map[string]*ClassDesc
}

// NewGlobalContext builds a context from class and function definitions.
// It assumes the input already passed semantic analysis: no validation is
// performed beyond wiring parent pointers.
func NewGlobalContext(prog ast.Program) (*GlobalContext, error) {
	gctx := &GlobalContext{
		functions: builtinFunctions(),
		classes:   map[string]*ClassDesc{},
	}

	for _, cl := range prog.Classes {
		gctx.classes[cl.Name] = &ClassDesc{
			Name:   cl.Name,
			Fields: cl.Fields,
			Methods: methodDescs(cl.Methods),
		}
	}
	for _, cl := range prog.Classes {
		if cl.Parent == "" {
			continue
		}
		parent, ok := gctx.classes[cl.Parent]
		if !ok {
			return nil, errors.Wrapf(errNoSuchClass, "class %q extends undeclared class %q", cl.Name, cl.Parent)
		}
		gctx.classes[cl.Name].Parent = parent
	}
	for _, fn := range prog.Functions {
		gctx.functions[fn.Name] = funDescOf(fn)
	}

	return gctx, nil
}

var errNoSuchClass = errors.New("semantics: no such class")

func methodDescs(methods []ast.FunDef) []FunDesc {
	out := make([]FunDesc, len(methods))
	for i, m := range methods {
		out[i] = funDescOf(m)
	}
	return out
}

func funDescOf(fn ast.FunDef) FunDesc {
	argTypes := make([]ast.Type, len(fn.Args))
	for i, a := range fn.Args {
		argTypes[i] = a.Type
	}
	return FunDesc{Name: fn.Name, RetType: fn.RetType, ArgTypes: argTypes}
}

// FunctionDescription looks up a free function by name.
func (g *GlobalContext) FunctionDescription(name string) (FunDesc, bool) {
	d, ok := g.functions[name]
	return d, ok
}

// ClassDescription looks up a class by name.
func (g *GlobalContext) ClassDescription(name string) (*ClassDesc, bool) {
	d, ok := g.classes[name]
	return d, ok
}

// IsSubclass reports whether sub is class or a (possibly transitive)
// subclass of super. Real cycle detection belongs to the semantic analyzer;
// this simply walks a bounded-by-program-size parent chain.
func (g *GlobalContext) IsSubclass(super, sub string) bool {
	cl, ok := g.classes[sub]
	for ok {
		if cl.Name == super {
			return true
		}
		cl = cl.Parent
		ok = cl != nil
	}
	return false
}

func builtinFunctions() map[string]FunDesc {
	return map[string]FunDesc{
		"printInt":    {Name: "printInt", RetType: ast.Void(), ArgTypes: []ast.Type{ast.Int()}},
		"printString": {Name: "printString", RetType: ast.Void(), ArgTypes: []ast.Type{ast.String()}},
		"error":       {Name: "error", RetType: ast.Void(), ArgTypes: nil},
		"readInt":     {Name: "readInt", RetType: ast.Int(), ArgTypes: nil},
		"readString":  {Name: "readString", RetType: ast.String(), ArgTypes: nil},
	}
}

// Describe renders a one-line human summary of the context.
func (g *GlobalContext) Describe() string {
	return fmt.Sprintf("%d classes, %d functions", len(g.classes), len(g.functions))
}
