package codegen

import (
	"testing"

	"lattec/internal/ast"
	"lattec/internal/ir"
)

func litInt(n int32) *ast.Expr { return &ast.Expr{Kind: ast.ELitInt, IntVal: n} }
func litBool(v bool) *ast.Expr { return &ast.Expr{Kind: ast.ELitBool, BoolVal: v} }
func litVar(name string) *ast.Expr { return &ast.Expr{Kind: ast.ELitVar, VarName: name} }

func declStmt(name string, init *ast.Expr) ast.Stmt {
	return ast.Stmt{Kind: ast.SDecl, DeclType: ast.Int(), DeclItems: []ast.DeclItem{{Name: name, Init: init}}}
}

func newEntryBuilder() (*FunctionBuilder, ir.Label) {
	b := newTestBuilder()
	entry := b.allocateBlock(argsLabel)
	return b, entry
}

func TestProcessCondLiteralTrueTakesTrueBranchOnly(t *testing.T) {
	b, entry := newEntryBuilder()
	trueBranch := ast.Block{Stmts: []ast.Stmt{declStmt("t", litInt(1))}}
	falseBranch := ast.Block{Stmts: []ast.Stmt{declStmt("f", litInt(2))}}

	out := b.processCond(&ast.Stmt{
		Kind: ast.SCond, Cond: litBool(true), TrueBranch: &trueBranch, FalseBranch: &falseBranch,
	}, entry)

	if out != entry {
		t.Fatalf("a literal-true condition should fold away entirely and stay in the entry block, got %d", out)
	}
	if len(b.blocks) != 1 {
		t.Fatalf("a literal-true condition should allocate no new blocks, got %d blocks", len(b.blocks))
	}
	if _, err := recoverLookup(b, entry, "t"); err != nil {
		t.Fatalf("the true branch should have run: %v", err)
	}
	if _, err := recoverLookup(b, entry, "f"); err == nil {
		t.Fatal("the false branch should never have run")
	}
}

func TestProcessCondLiteralFalseTakesFalseBranchOnly(t *testing.T) {
	b, entry := newEntryBuilder()
	trueBranch := ast.Block{Stmts: []ast.Stmt{declStmt("t", litInt(1))}}
	falseBranch := ast.Block{Stmts: []ast.Stmt{declStmt("f", litInt(2))}}

	out := b.processCond(&ast.Stmt{
		Kind: ast.SCond, Cond: litBool(false), TrueBranch: &trueBranch, FalseBranch: &falseBranch,
	}, entry)

	if out != entry {
		t.Fatalf("a literal-false condition should fold away entirely and stay in the entry block, got %d", out)
	}
	if len(b.blocks) != 1 {
		t.Fatalf("a literal-false condition should allocate no new blocks, got %d blocks", len(b.blocks))
	}
	if _, err := recoverLookup(b, entry, "f"); err != nil {
		t.Fatalf("the false branch should have run: %v", err)
	}
}

func TestProcessCondLiteralFalseWithNoElseIsNoOp(t *testing.T) {
	b, entry := newEntryBuilder()
	trueBranch := ast.Block{Stmts: []ast.Stmt{declStmt("t", litInt(1))}}

	out := b.processCond(&ast.Stmt{
		Kind: ast.SCond, Cond: litBool(false), TrueBranch: &trueBranch,
	}, entry)

	if out != entry || len(b.blocks) != 1 {
		t.Fatalf("a dead if-with-no-else should be a pure no-op, got out=%d blocks=%d", out, len(b.blocks))
	}
}

func TestProcessWhileLiteralFalseNeverAllocatesLoop(t *testing.T) {
	b, entry := newEntryBuilder()
	body := ast.Block{Stmts: []ast.Stmt{declStmt("x", litInt(1))}}

	out := b.processWhile(&ast.Stmt{Kind: ast.SWhile, WhileCond: litBool(false), WhileBody: &body}, entry)

	if out != entry {
		t.Fatalf("while(false) should never enter the loop, got block %d", out)
	}
	if len(b.blocks) != 1 {
		t.Fatalf("while(false) should allocate no blocks at all, got %d", len(b.blocks))
	}
}

func TestProcessBlockSkipsStatementsAfterReturn(t *testing.T) {
	b, entry := newEntryBuilder()
	blk := ast.Block{Stmts: []ast.Stmt{
		{Kind: ast.SRet, RetValue: litInt(1)},
		declStmt("dead", litInt(2)),
	}}

	out := b.processBlock(blk, entry)

	if out != unreachableLabel {
		t.Fatalf("processBlock after a return should report unreachableLabel, got %d", out)
	}
	body := b.block(entry).Body
	if len(body) != 1 || body[0].Kind != ir.OpReturn {
		t.Fatalf("the statement after return should never have been lowered, block body = %+v", body)
	}
}

func TestIncrUpdatesBindingInPlaceWithoutNewBlock(t *testing.T) {
	b, entry := newEntryBuilder()
	b.env.declare(entry, "x", ir.LitInt(5))

	out := b.processIncrDecr(&ast.Stmt{Kind: ast.SIncr, Lhs: litVar("x")}, entry)

	if out != entry {
		t.Fatalf("incr/decr of a plain local should never allocate a new block, got %d", out)
	}
	v := b.env.lookup(entry, "x")
	if v.Kind != ir.VRegister {
		t.Fatalf("after incrementing x, lookup should return a fresh register, got %+v", v)
	}
}

// recoverLookup wraps env.lookup, which panics via diagnostics.Bug on an
// undeclared name, as an ordinary (value, error) pair so tests can assert
// absence without a bare recover() in the test body.
func recoverLookup(b *FunctionBuilder, frame ir.Label, name string) (v ir.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errUndeclared
		}
	}()
	v = b.env.lookup(frame, name)
	return
}

var errUndeclared = &lookupError{}

type lookupError struct{}

func (e *lookupError) Error() string { return "undeclared" }
