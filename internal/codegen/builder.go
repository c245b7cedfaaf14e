// Package codegen is the per-function IR builder: C2 (scoped environment),
// C3 (function builder), C4 (expression lowering), C5 (statement/CFG
// driver) and C6 (SSA/phi engine) of spec.md. It lowers one AST function or
// method body into an ir.Function — a typed CFG in direct SSA form.
//
// The builder trusts its input completely (spec.md §7): every residual
// failure mode is an invariant violation, raised via diagnostics.Bug, never
// a returned error.
package codegen

import (
	"sync"

	"lattec/internal/ast"
	"lattec/internal/classlayout"
	"lattec/internal/diagnostics"
	"lattec/internal/ir"
	"lattec/internal/semantics"
)

// GlobalStrings is the shared, program-wide string-interning table handle
// (spec.md §5: "shared across function builds... mutated only by
// intern(s), which is idempotent on equal content"). A program build lowers
// every function and method concurrently (see the program package), so
// Intern guards the table with a mutex rather than assuming single-threaded
// access the way one function's own build state can.
type GlobalStrings struct {
	mu    sync.Mutex
	table map[string]ir.GlobalStrNum
}

func NewGlobalStrings() *GlobalStrings {
	return &GlobalStrings{table: map[string]ir.GlobalStrNum{}}
}

// Intern returns the GlobalRegister value for a string literal, allocating
// a fresh GlobalStrNum on first occurrence and reusing it for every later
// occurrence of the same content.
func (g *GlobalStrings) Intern(s string) ir.Value {
	g.mu.Lock()
	defer g.mu.Unlock()
	strType := ir.StringType()
	if n, ok := g.table[s]; ok {
		return ir.GlobalRegister(ir.FormatGlobalString(n), strType)
	}
	n := ir.GlobalStrNum(len(g.table))
	g.table[s] = n
	return ir.GlobalRegister(ir.FormatGlobalString(n), strType)
}

// Snapshot returns the interned strings as a plain map, for assembling
// ir.Program.
func (g *GlobalStrings) Snapshot() map[string]ir.GlobalStrNum {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]ir.GlobalStrNum, len(g.table))
	for k, v := range g.table {
		out[k] = v
	}
	return out
}

// FunctionBuilder owns the growing block list, the fresh-id counters, the
// scoped environment, and handles to the shared collaborators (global
// string table, class registry, global context) for one function build.
type FunctionBuilder struct {
	gctx     *semantics.GlobalContext
	classes  *classlayout.Registry
	strings  *GlobalStrings
	classCtx string // owning class name, "" for a free function

	env       *env
	blocks    []ir.Block
	nextReg   ir.RegNum
}

// NewFunctionBuilder starts a build for one function. classCtx is the
// owning class name for a method, or "" for a free function.
func NewFunctionBuilder(gctx *semantics.GlobalContext, classes *classlayout.Registry, strings *GlobalStrings, classCtx string) *FunctionBuilder {
	return &FunctionBuilder{
		gctx:    gctx,
		classes: classes,
		strings: strings,
		classCtx: classCtx,
		env:     newEnv(),
	}
}

// Generate lowers fn into a complete ir.Function (spec.md §4.3).
func (b *FunctionBuilder) Generate(fn ast.FunDef) ir.Function {
	var irArgs []ir.Param

	addArg := func(t ir.Type, name string) {
		reg := b.freshReg()
		irArgs = append(irArgs, ir.Param{Reg: reg, Typ: t})
		b.env.declare(argsLabel, name, ir.Register(reg, t))
	}

	var funName string
	if b.classCtx != "" {
		funName = ir.FormatMethodName(b.classCtx, fn.Name)
		addArg(ir.PtrClass(b.classCtx), ast.ThisVar)
	} else {
		funName = fn.Name
	}
	for _, p := range fn.Args {
		addArg(ir.FromSourceType(p.Type), p.Name)
	}

	entry := b.allocateBlock(argsLabel)
	last := b.processBlock(fn.Body, entry)
	if last != unreachableLabel {
		b.emit(last, ir.Return(nil))
	}

	return ir.Function{
		RetType: ir.FromSourceType(fn.RetType),
		Name:    funName,
		Args:    irArgs,
		Blocks:  b.blocks,
	}
}

func (b *FunctionBuilder) freshReg() ir.RegNum {
	r := b.nextReg
	b.nextReg++
	return r
}

// allocateBlock appends a fresh block whose environment parent is
// parentEnvLabel and returns its label. Block labels are the dense integer
// the CFG invariants (spec.md §3) key predecessor bookkeeping on.
func (b *FunctionBuilder) allocateBlock(parentEnvLabel ir.Label) ir.Label {
	label := ir.Label(len(b.blocks))
	b.blocks = append(b.blocks, ir.Block{Label: label})
	b.env.newFrame(label, parentEnvLabel)
	return label
}

func (b *FunctionBuilder) block(label ir.Label) *ir.Block {
	if int(label) >= len(b.blocks) {
		diagnostics.Bug("codegen: no such block %d", label)
	}
	return &b.blocks[label]
}

func (b *FunctionBuilder) emit(label ir.Label, op ir.Operation) {
	bl := b.block(label)
	bl.Body = append(bl.Body, op)
}

func (b *FunctionBuilder) addBranch1(src, dst ir.Label) {
	b.emit(src, ir.Branch1(dst))
	b.block(dst).Predecessors = append(b.block(dst).Predecessors, src)
}

func (b *FunctionBuilder) addBranch2(src ir.Label, cond ir.Value, t, f ir.Label) {
	b.emit(src, ir.Branch2(cond, t, f))
	b.block(t).Predecessors = append(b.block(t).Predecessors, src)
	b.block(f).Predecessors = append(b.block(f).Predecessors, src)
}
