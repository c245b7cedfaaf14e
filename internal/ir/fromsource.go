package ir

import (
	"fmt"

	"lattec/internal/ast"
)

// FromSourceType maps a source-level type to its IR representation
// (spec.md §4.1): String -> Ptr(Char), Array(T) -> Ptr(IR(T)),
// Class(N) -> Ptr(Class(N)), Null -> Ptr(Char) as the unresolved-null
// default, everything else structurally.
func FromSourceType(t ast.Type) Type {
	switch t.Kind {
	case ast.TInt:
		return Int()
	case ast.TBool:
		return Bool()
	case ast.TString:
		return StringType()
	case ast.TArray:
		return Ptr(FromSourceType(*t.Elem))
	case ast.TClass:
		return PtrClass(t.Class)
	case ast.TNull:
		return StringType()
	case ast.TVoid:
		return Void()
	default:
		panic(fmt.Sprintf("ir: invalid source type kind %d", t.Kind))
	}
}

// FunctionPointerOf builds the Ptr(Func(ret, args)) type of a free
// function's signature.
func FunctionPointerOf(retType ast.Type, argTypes []ast.Type) Type {
	args := make([]Type, len(argTypes))
	for i, a := range argTypes {
		args[i] = FromSourceType(a)
	}
	return Ptr(FuncType(FromSourceType(retType), args))
}

// MethodPointerOf builds the Ptr(Func(ret, [Ptr(Class(definingClass)), args...]))
// type of a method signature; the first parameter is always a pointer to
// the class that declares the slot, per spec.md §4.1.
func MethodPointerOf(definingClass string, retType ast.Type, argTypes []ast.Type) Type {
	args := make([]Type, 0, len(argTypes)+1)
	args = append(args, PtrClass(definingClass))
	for _, a := range argTypes {
		args = append(args, FromSourceType(a))
	}
	return Ptr(FuncType(FromSourceType(retType), args))
}
