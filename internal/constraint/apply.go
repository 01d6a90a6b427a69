package constraint

import (
	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/types"
)

// Apply reifies every expression's inferred type variable against a solved
// substitution and records the result on the node itself via
// ast.SetExprType, so later passes (lowering) can read ExprType() directly
// instead of needing the generator's own bookkeeping.
func (g *Generator) Apply(sub types.Substitution) []error {
	var errs []error
	for e, v := range g.NodeVars {
		t, ok := types.Reify(g.cc.Types, v, sub)
		if !ok {
			errs = append(errs, &unresolvedError{Loc: Location{Anchor: e}})
			t = g.cc.Types.ErrorType()
		}
		ast.SetExprType(e, t)
	}
	return errs
}

type unresolvedError struct {
	Loc Location
}

func (e *unresolvedError) Error() string {
	return "could not infer a concrete type for this expression"
}
