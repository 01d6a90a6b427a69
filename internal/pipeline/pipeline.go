// Package pipeline wires the core's five passes together in the order the
// driver runs them: name binding and constraint generation/solving are
// non-fatal and accumulate into the module's diag.Set; lowering and
// interpretation are fatal and abort on the first error, per the error
// handling policy the teacher's typechecker/evaluator split already
// follows.
package pipeline

import (
	"fmt"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/bind"
	"github.com/anzenlang/anzenc/internal/constraint"
	"github.com/anzenlang/anzenc/internal/interp"
	"github.com/anzenlang/anzenc/internal/lowir"
	"github.com/anzenlang/anzenc/internal/solve"
	"github.com/anzenlang/anzenc/internal/source"
)

// Analyze runs name binding and constraint generation/solving: the two
// non-fatal passes. Every issue they raise is recorded on m.Issues rather
// than returned directly; the returned error just reports that the module
// is not clean enough for later passes to proceed.
func Analyze(cc *ast.CompilerContext, m *ast.Module) (*constraint.Generator, error) {
	bind.Module(cc, m)
	if m.Issues.HasErrors() {
		return nil, fmt.Errorf("pipeline: %d error(s) during name binding", m.Issues.Len())
	}

	gen := constraint.NewGenerator(cc, m.Issues)
	cs := gen.Module(m)

	sub, errs := solve.Solve(cc, cs)
	if len(errs) > 0 {
		for _, e := range errs {
			m.Issues.Errorf(source.Range{}, nil, "%v", e)
		}
		return nil, fmt.Errorf("pipeline: %d error(s) solving constraints", len(errs))
	}
	for _, e := range gen.Apply(sub) {
		m.Issues.Errorf(source.Range{}, nil, "%v", e)
	}
	if m.Issues.HasErrors() {
		return nil, fmt.Errorf("pipeline: %d error(s) during type checking", m.Issues.Len())
	}
	return gen, nil
}

// BuildIR runs binding and solving, then lowers the solved module to IR.
// Lowering is fatal: the first internal inconsistency aborts with an error
// rather than being collected as an Issue.
func BuildIR(cc *ast.CompilerContext, m *ast.Module) (*lowir.Unit, error) {
	if _, err := Analyze(cc, m); err != nil {
		return nil, err
	}
	return lowir.Lower(cc, m)
}

// Run builds IR and interprets its "main" entry point (the synthetic
// function lowered from the module's top-level code), returning its
// result value. Interpretation is fatal, matching the interpreter's own
// error taxonomy.
func Run(cc *ast.CompilerContext, m *ast.Module) (any, error) {
	unit, err := BuildIR(cc, m)
	if err != nil {
		return nil, err
	}
	if _, ok := unit.Functions["main"]; !ok {
		return nil, nil
	}
	in := interp.New(unit)
	return in.Run("main", nil)
}
