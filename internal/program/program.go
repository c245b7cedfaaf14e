// Package program is the top-level driver the spec's function-level
// generator is deliberately silent on: it wires semantics.GlobalContext and
// classlayout.Registry for a whole compilation unit, then fans the
// per-function/per-method lowering out across goroutines since each body is
// an independent unit of work sharing only the global string table.
package program

import (
	"context"

	"lattec/internal/ast"
	"lattec/internal/classlayout"
	"lattec/internal/codegen"
	"lattec/internal/diagnostics"
	"lattec/internal/ir"
	"lattec/internal/semantics"

	"golang.org/x/sync/errgroup"
)

// Lower builds the complete ir.Program for prog: every class layout, every
// free function and every method, with string literals interned once into a
// table shared across the whole build.
func Lower(ctx context.Context, prog ast.Program) (*ir.Program, error) {
	gctx, err := semantics.NewGlobalContext(prog)
	if err != nil {
		return nil, err
	}

	classNames := make([]string, len(prog.Classes))
	for i, c := range prog.Classes {
		classNames[i] = c.Name
	}
	registry, err := classlayout.NewRegistry(gctx, classNames)
	if err != nil {
		return nil, err
	}

	strings := codegen.NewGlobalStrings()

	type job struct {
		fn    ast.FunDef
		class string
	}
	var jobs []job
	for _, fn := range prog.Functions {
		jobs = append(jobs, job{fn: fn})
	}
	for _, cl := range prog.Classes {
		for _, m := range cl.Methods {
			jobs = append(jobs, job{fn: m, class: cl.Name})
		}
	}

	results := make([]ir.Function, len(jobs))
	g, _ := errgroup.WithContext(ctx)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() (err error) {
			defer func() {
				if rerr := diagnostics.Recover(recover()); rerr != nil {
					err = rerr
				}
			}()
			fb := codegen.NewFunctionBuilder(gctx, registry, strings, j.class)
			results[i] = fb.Generate(j.fn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	classes := make([]ir.Class, len(prog.Classes))
	for i, cl := range prog.Classes {
		vtable, err := registry.VtableSlots(cl.Name)
		if err != nil {
			return nil, err
		}
		fields, err := registry.FieldTypes(cl.Name)
		if err != nil {
			return nil, err
		}
		classes[i] = ir.Class{
			Name:   cl.Name,
			Fields: append([]ir.Type{ir.VtableType(cl.Name)}, fields...),
			Vtable: vtable,
		}
	}

	return &ir.Program{
		Classes:       classes,
		Functions:     results,
		GlobalStrings: strings.Snapshot(),
	}, nil
}
