// Package fixtures builds the seeded end-to-end scenarios by hand, the way
// a parser's output would look once semantic analysis has resolved types.
// Tests and the CLI demo command run these through program.Lower instead of
// parsing source text, since there is no front end in this tree.
package fixtures

import "lattec/internal/ast"

func block(stmts ...ast.Stmt) ast.Block { return ast.Block{Stmts: stmts} }

func litVar(name string) *ast.Expr  { return &ast.Expr{Kind: ast.ELitVar, VarName: name} }
func litInt(n int32) *ast.Expr      { return &ast.Expr{Kind: ast.ELitInt, IntVal: n} }
func binary(op ast.BinaryOp, lhs, rhs *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.EBinary, Op: op, Lhs: lhs, Rhs: rhs}
}
func decl(typ ast.Type, name string, init *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.SDecl, DeclType: typ, DeclItems: []ast.DeclItem{{Name: name, Init: init}}}
}
func assign(lhs, rhs *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.SAssign, Lhs: lhs, Rhs: rhs}
}
func ret(v *ast.Expr) ast.Stmt { return ast.Stmt{Kind: ast.SRet, RetValue: v} }

// S1 is `int f() { return 1+2; }`: the smallest possible body, one block,
// no control flow at all.
func S1() ast.Program {
	return ast.Program{
		Functions: []ast.FunDef{{
			Name:    "f",
			RetType: ast.Int(),
			Body:    block(ret(binary(ast.OpAdd, litInt(1), litInt(2)))),
		}},
	}
}

// S2 is `int f(int x) { if (x>0) x = x+1; else x = x-1; return x; }`: an
// if/else where both arms assign the same outer variable, exercising the
// join-point phi.
func S2() ast.Program {
	cond := binary(ast.OpGT, litVar("x"), litInt(0))
	trueBranch := block(assign(litVar("x"), binary(ast.OpAdd, litVar("x"), litInt(1))))
	falseBranch := block(assign(litVar("x"), binary(ast.OpSub, litVar("x"), litInt(1))))
	return ast.Program{
		Functions: []ast.FunDef{{
			Name:    "f",
			RetType: ast.Int(),
			Args:    []ast.Param{{Type: ast.Int(), Name: "x"}},
			Body: block(
				ast.Stmt{Kind: ast.SCond, Cond: cond, TrueBranch: &trueBranch, FalseBranch: &falseBranch},
				ret(litVar("x")),
			),
		}},
	}
}

// S3 is `int f(int n){ int s=0; int i=0; while(i<n){ s=s+i; i=i+1; } return s; }`:
// a while loop with two loop-carried variables, exercising the phi-stub
// loop-condition machinery.
func S3() ast.Program {
	body := block(
		assign(litVar("s"), binary(ast.OpAdd, litVar("s"), litVar("i"))),
		assign(litVar("i"), binary(ast.OpAdd, litVar("i"), litInt(1))),
	)
	return ast.Program{
		Functions: []ast.FunDef{{
			Name:    "f",
			RetType: ast.Int(),
			Args:    []ast.Param{{Type: ast.Int(), Name: "n"}},
			Body: block(
				decl(ast.Int(), "s", litInt(0)),
				decl(ast.Int(), "i", litInt(0)),
				ast.Stmt{
					Kind:      ast.SWhile,
					WhileCond: binary(ast.OpLT, litVar("i"), litVar("n")),
					WhileBody: &body,
				},
				ret(litVar("s")),
			),
		}},
	}
}

// S4 is `void f(boolean a, boolean b){ if (a && b) g(); }`: short-circuit `&&` lowered purely for
// control flow, never materialized as a value, merging at a single join.
func S4() ast.Program {
	cond := binary(ast.OpAnd, litVar("a"), litVar("b"))
	callG := ast.Stmt{Kind: ast.SExpr, Expr: &ast.Expr{Kind: ast.EFunCall, FuncName: "g"}}
	trueBranch := block(callG)
	return ast.Program{
		Functions: []ast.FunDef{
			{Name: "g", RetType: ast.Void()},
			{
				Name:    "f",
				RetType: ast.Void(),
				Args:    []ast.Param{{Type: ast.Bool(), Name: "a"}, {Type: ast.Bool(), Name: "b"}},
				Body:    block(ast.Stmt{Kind: ast.SCond, Cond: cond, TrueBranch: &trueBranch}),
			},
		},
	}
}

// S5 is `int f(int[] a){ int s=0; for (int x : a) s=s+x; return s; }`: array
// for-each desugared to a pointer walk, exercising the `$iter` cursor and the
// array-length prefix read.
func S5() ast.Program {
	body := block(assign(litVar("s"), binary(ast.OpAdd, litVar("s"), litVar("x"))))
	return ast.Program{
		Functions: []ast.FunDef{{
			Name:    "f",
			RetType: ast.Int(),
			Args:    []ast.Param{{Type: ast.Array(ast.Int()), Name: "a"}},
			Body: block(
				decl(ast.Int(), "s", litInt(0)),
				ast.Stmt{
					Kind:     ast.SForEach,
					IterType: ast.Int(),
					IterName: "x",
					Array:    litVar("a"),
					ForBody:  &body,
				},
				ret(litVar("s")),
			),
		}},
	}
}

// S6 is `Shape p = new Circle(); p.area();`: object construction through
// _bltn_malloc plus a virtual call dispatched through Circle's vtable, with
// `this` cast up to whichever class first declared the `area` slot.
func S6() ast.Program {
	areaBody := block(ret(litInt(0)))
	circleAreaBody := block(ret(litInt(1)))
	return ast.Program{
		Classes: []ast.ClassDef{
			{
				Name:    "Shape",
				Methods: []ast.FunDef{{Name: "area", RetType: ast.Int(), Body: areaBody}},
			},
			{
				Name:    "Circle",
				Parent:  "Shape",
				Methods: []ast.FunDef{{Name: "area", RetType: ast.Int(), Body: circleAreaBody}},
			},
		},
		Functions: []ast.FunDef{{
			Name:    "main",
			RetType: ast.Void(),
			Body: block(
				decl(ast.ClassT("Shape"), "p", &ast.Expr{Kind: ast.ENewObject, ClassName: "Circle"}),
				ast.Stmt{Kind: ast.SExpr, Expr: &ast.Expr{
					Kind:       ast.EObjMethodCall,
					MethodObj:  litVar("p"),
					MethodName: "area",
				}},
			),
		}},
	}
}

// All returns every seeded scenario in order, named for display purposes.
func All() []struct {
	Name string
	Prog ast.Program
} {
	return []struct {
		Name string
		Prog ast.Program
	}{
		{"S1", S1()},
		{"S2", S2()},
		{"S3", S3()},
		{"S4", S4()},
		{"S5", S5()},
		{"S6", S6()},
	}
}
