package ir

import "testing"

func TestTypeEqualStructural(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"int == int", Int(), Int(), true},
		{"int != bool", Int(), Bool(), false},
		{"ptr(int) == ptr(int)", Ptr(Int()), Ptr(Int()), true},
		{"ptr(int) != ptr(bool)", Ptr(Int()), Ptr(Bool()), false},
		{"class same name", ClassType("Shape"), ClassType("Shape"), true},
		{"class different name", ClassType("Shape"), ClassType("Circle"), false},
		{
			"func same signature",
			FuncType(Int(), []Type{Int(), Bool()}),
			FuncType(Int(), []Type{Int(), Bool()}),
			true,
		},
		{
			"func different arg count",
			FuncType(Int(), []Type{Int()}),
			FuncType(Int(), []Type{Int(), Bool()}),
			false,
		},
		{
			"func different return type",
			FuncType(Int(), nil),
			FuncType(Bool(), nil),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("(%s).Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestVtableTypeNaming(t *testing.T) {
	if got, want := VtableTypeName("Circle"), "Circle.vtable.type"; got != want {
		t.Errorf("VtableTypeName(Circle) = %q, want %q", got, want)
	}
	want := PtrClass("Circle.vtable.type")
	if got := VtableType("Circle"); !got.Equal(want) {
		t.Errorf("VtableType(Circle) = %v, want %v", got, want)
	}
}

func TestStringTypeIsPtrChar(t *testing.T) {
	want := Ptr(Char())
	if got := StringType(); !got.Equal(want) {
		t.Errorf("StringType() = %v, want %v", got, want)
	}
}

func TestTypeStringRendering(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"void", Void(), "void"},
		{"int", Int(), "i32"},
		{"bool", Bool(), "i1"},
		{"char", Char(), "i8"},
		{"ptr int", Ptr(Int()), "i32*"},
		{"class", ClassType("Shape"), "%cls.Shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("%s.String() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
