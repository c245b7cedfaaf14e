// Package ir is the typed three-address intermediate representation the
// code generator emits: a control-flow graph in direct SSA form with
// explicit phi-nodes. It is a pure data description — constructing and
// inspecting values here never fails and never touches the AST or the
// semantic collaborators.
package ir

import (
	"fmt"
	"strings"
)

// TypeKind tags the variant of a Type. Go has no sum types, so Type is a
// small tagged struct rather than an interface hierarchy: this keeps
// construction, equality and switch-matching direct, matching how the
// original compiler's `enum Type` reads.
type TypeKind int

const (
	TVoid TypeKind = iota
	TInt
	TBool
	TChar
	TPtr
	TClass
	TFunc
)

// Type is the IR type grammar: Void | Int | Bool | Char | Ptr(T) |
// Class(name) | Func(ret, args...). Strings are Ptr(Char).
type Type struct {
	Kind TypeKind

	Elem *Type // Ptr

	Class string // Class

	Ret  *Type  // Func
	Args []Type // Func
}

func Void() Type { return Type{Kind: TVoid} }
func Int() Type  { return Type{Kind: TInt} }
func Bool() Type { return Type{Kind: TBool} }
func Char() Type { return Type{Kind: TChar} }

func Ptr(elem Type) Type {
	return Type{Kind: TPtr, Elem: &elem}
}

func ClassType(name string) Type {
	return Type{Kind: TClass, Class: name}
}

func FuncType(ret Type, args []Type) Type {
	return Type{Kind: TFunc, Ret: &ret, Args: args}
}

// PtrClass is the common "pointer to an instance of class C" shape used for
// `this`, object locals and object literals.
func PtrClass(name string) Type {
	return Ptr(ClassType(name))
}

// StringType is Ptr(Char); strings have no distinct IR type of their own.
func StringType() Type {
	return Ptr(Char())
}

// VtableTypeName is the synthetic class name used for a class's vtable
// struct, per spec: "The vtable type of class C is Ptr(Class("<C>.vtable.type"))".
func VtableTypeName(class string) string {
	return class + ".vtable.type"
}

// VtableType returns Ptr(Class("<C>.vtable.type")).
func VtableType(class string) Type {
	return PtrClass(VtableTypeName(class))
}

// Equal compares types structurally.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TPtr:
		return t.Elem.Equal(*o.Elem)
	case TClass:
		return t.Class == o.Class
	case TFunc:
		if !t.Ret.Equal(*o.Ret) || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Kind {
	case TVoid:
		return "void"
	case TInt:
		return "i32"
	case TBool:
		return "i1"
	case TChar:
		return "i8"
	case TPtr:
		return t.Elem.String() + "*"
	case TClass:
		return "%cls." + t.Class
	case TFunc:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(", t.Ret)
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteString(")")
		return b.String()
	default:
		return "<invalid-type>"
	}
}
