package solve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/constraint"
	"github.com/anzenlang/anzenc/internal/types"
)

func qual(t types.Type) types.QualifiedType { return types.QualifiedType{Bare: t} }

func ceq(a, b types.Type) *constraint.Constraint {
	return &constraint.Constraint{Kind: constraint.Equality, A: a, B: b}
}

// TestSolveUnifiesEqualityChain covers scenario 1: a chain of Equality
// constraints tying a fresh variable to Int should resolve that variable to
// Int in the winning substitution.
func TestSolveUnifiesEqualityChain(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	v := cc.Types.GetTypeVar()

	sub, errs := Solve(cc, []*constraint.Constraint{ceq(v, intT)})
	require.Empty(t, errs)

	tv := v.(*types.TypeVar)
	got, ok := sub[tv.ID]
	require.True(t, ok)
	assert.Equal(t, intT, got)
}

// TestSolvePicksMostSpecificDisjunctionBranch covers scenario 2: given a
// Disjunction between a concrete Int-specific choice and a generic choice
// that both discharge successfully, the non-generic branch wins.
func TestSolvePicksMostSpecificDisjunctionBranch(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	v := cc.Types.GetTypeVar()

	disj := &constraint.Constraint{
		Kind: constraint.Disjunction,
		Choices: []constraint.Choice{
			{Constraints: []*constraint.Constraint{ceq(v, intT)}, Generic: false},
			{Constraints: []*constraint.Constraint{ceq(v, intT)}, Generic: true},
		},
	}

	sub, errs := Solve(cc, []*constraint.Constraint{disj})
	require.Empty(t, errs)
	tv := v.(*types.TypeVar)
	assert.Equal(t, intT, sub[tv.ID])
}

// TestSolveFallsBackToGenericBranchOnMismatch covers scenario 3: when the
// non-generic choice cannot unify (a String argument against an Int-typed
// parameter), the solver backtracks to the generic branch instead of
// failing outright.
func TestSolveFallsBackToGenericBranchOnMismatch(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	strT := cc.Types.GetBuiltin(types.String)
	v := cc.Types.GetTypeVar()

	disj := &constraint.Constraint{
		Kind: constraint.Disjunction,
		Choices: []constraint.Choice{
			// specific: requires the argument to be Int, which fails here.
			{Constraints: []*constraint.Constraint{ceq(intT, strT)}, Generic: false},
			// generic: accepts whatever the argument's variable resolves to.
			{Constraints: []*constraint.Constraint{ceq(v, strT)}, Generic: true},
		},
	}

	sub, errs := Solve(cc, []*constraint.Constraint{disj})
	require.Empty(t, errs)
	tv := v.(*types.TypeVar)
	assert.Equal(t, strT, sub[tv.ID])
}

// TestBindVarJoinsOnRebindConflict covers scenario 4: poly<T>(x: T, y: T)
// called with an Int and a Bool argument should resolve T to Anything
// rather than fail, since both bindings target the same variable.
func TestBindVarJoinsOnRebindConflict(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	boolT := cc.Types.GetBuiltin(types.Bool)
	anythingT := cc.Types.GetBuiltin(types.Anything)
	v := cc.Types.GetTypeVar()

	sub, errs := Solve(cc, []*constraint.Constraint{ceq(v, intT), ceq(v, boolT)})
	require.Empty(t, errs)
	tv := v.(*types.TypeVar)
	assert.Equal(t, anythingT, sub[tv.ID])
}

// TestOccursCheckRejectsSelfReferentialBinding ensures a variable can never
// be bound to a function type that itself mentions that same variable.
func TestOccursCheckRejectsSelfReferentialBinding(t *testing.T) {
	cc := ast.NewCompilerContext()
	v := cc.Types.GetTypeVar()
	fn := cc.Types.GetFunction(nil, []types.Param{{Type: qual(v)}}, qual(cc.Types.GetBuiltin(types.Int)))

	_, errs := Solve(cc, []*constraint.Constraint{ceq(v, fn)})
	assert.NotEmpty(t, errs)
}

// TestSolveReportsErrorOnHardMismatch covers two independently-typed
// expressions (no shared variable) that can never unify.
func TestSolveReportsErrorOnHardMismatch(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	boolT := cc.Types.GetBuiltin(types.Bool)

	_, errs := Solve(cc, []*constraint.Constraint{ceq(intT, boolT)})
	assert.NotEmpty(t, errs)
}
