// Package stats summarizes a lowered function for the CLI's human-readable
// reporting: block/phi/register counts rendered with humanized counts the
// way a build-output banner would.
package stats

import (
	"fmt"

	"lattec/internal/ir"

	"github.com/dustin/go-humanize"
)

// Stats is a size summary of one lowered function.
type Stats struct {
	Name            string
	Blocks          int
	Instructions    int
	Phis            int
	Registers       int
	MaxPredecessors int
}

// Summarize walks fn once and tallies its shape.
func Summarize(fn ir.Function) Stats {
	s := Stats{Name: fn.Name}

	maxReg := int32(-1)
	for _, a := range fn.Args {
		if int32(a.Reg) > maxReg {
			maxReg = int32(a.Reg)
		}
	}
	for _, bl := range fn.Blocks {
		s.Blocks++
		s.Instructions += len(bl.Body)
		s.Phis += len(bl.Phis)
		if len(bl.Predecessors) > s.MaxPredecessors {
			s.MaxPredecessors = len(bl.Predecessors)
		}
		for _, ph := range bl.Phis {
			if int32(ph.Result) > maxReg {
				maxReg = int32(ph.Result)
			}
		}
		for _, op := range regsTouched(bl) {
			if int32(op) > maxReg {
				maxReg = int32(op)
			}
		}
	}
	s.Registers = int(maxReg) + 1
	return s
}

// regsTouched collects every register an operation in bl assigns, so
// Summarize can derive the function's total SSA register count without
// threading a separate counter through the builder.
func regsTouched(bl ir.Block) []ir.RegNum {
	var regs []ir.RegNum
	for _, op := range bl.Body {
		switch op.Kind {
		case ir.OpFunctionCall:
			if op.HasResult {
				regs = append(regs, op.Result)
			}
		case ir.OpArithmetic, ir.OpCompare, ir.OpGetElementPtr, ir.OpLoad:
			regs = append(regs, op.Dst)
		case ir.OpCastPtr, ir.OpCastPtrToInt, ir.OpCastGlobalString:
			regs = append(regs, op.DstReg)
		}
	}
	return regs
}

// String renders a one-line human summary, e.g. "f: 4 blocks, 12
// instructions, 2 phis, 9 registers".
func (s Stats) String() string {
	return fmt.Sprintf("%s: %s blocks, %s instructions, %s phis, %s registers",
		s.Name,
		humanize.Comma(int64(s.Blocks)),
		humanize.Comma(int64(s.Instructions)),
		humanize.Comma(int64(s.Phis)),
		humanize.Comma(int64(s.Registers)),
	)
}

// Totals sums a slice of per-function Stats into one program-wide summary.
func Totals(all []Stats) Stats {
	var t Stats
	t.Name = "program"
	for _, s := range all {
		t.Blocks += s.Blocks
		t.Instructions += s.Instructions
		t.Phis += s.Phis
		t.Registers += s.Registers
		if s.MaxPredecessors > t.MaxPredecessors {
			t.MaxPredecessors = s.MaxPredecessors
		}
	}
	return t
}
