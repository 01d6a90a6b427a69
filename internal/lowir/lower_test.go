package lowir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/types"
)

func TestInstrStringMatchesTextualIRForm(t *testing.T) {
	i := Instr{Op: OpApply, Dst: "%3", Callee: "@foo", Args: []Reg{"%1", "%2"}}
	assert.Equal(t, "%3 = apply @foo(%1, %2)", i.String())

	ret := Instr{Op: OpReturn}
	assert.Equal(t, "return", ret.String())

	cp := Instr{Op: OpCopy, Src: "<int-1>", Dst: "%1"}
	assert.Equal(t, "copy <int-1> -> %1", cp.String())
}

func TestMangleBuiltinsAndFunctions(t *testing.T) {
	ctx := types.NewContext()
	intT := ctx.GetBuiltin(types.Int)
	boolT := ctx.GetBuiltin(types.Bool)

	assert.Equal(t, "i", Mangle(intT))
	assert.Equal(t, "b", Mangle(boolT))

	fn := ctx.GetFunction(nil,
		[]types.Param{{Label: "x", Type: types.QualifiedType{Bare: intT}}},
		types.QualifiedType{Bare: boolT})
	assert.Equal(t, "F1xi2b", Mangle(fn))
}

func TestMangleSymbolPrependsScopeNames(t *testing.T) {
	ctx := types.NewContext()
	intT := ctx.GetBuiltin(types.Int)
	fn := ctx.GetFunction(nil, nil, types.QualifiedType{Bare: intT})
	got := MangleSymbol([]string{"f"}, fn)
	assert.Equal(t, "1fF2i", got)
}

// buildFunc constructs a one-parameter (Int -> Int) FuncDecl with the given
// body statements, its type pre-elaborated by hand (standing in for the
// constraint generator's elaboration pass, which this package does not
// depend on).
func buildFunc(t *testing.T, name string, body []ast.Stmt) *ast.FuncDecl {
	t.Helper()
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	xSym := &ast.Symbol{Name: "x", Type: types.QualifiedType{Bare: intT}}
	param := &ast.ParamDecl{Name: "x", Symbol: xSym}
	fn := &ast.FuncDecl{
		Name:   name,
		Params: []*ast.ParamDecl{param},
		Body:   &ast.BraceStmt{Stmts: body},
	}
	fn.Type = cc.Types.GetFunction(nil,
		[]types.Param{{Label: "", Type: types.QualifiedType{Bare: intT}}},
		types.QualifiedType{Bare: intT})
	return fn
}

// TestIfStmtLowersToThreeBlocks covers scenario 5: an if/else lowers to
// exactly three blocks (then/else/after) entered by one branch; both arms
// here return, so no jump to after is emitted.
func TestIfStmtLowersToThreeBlocks(t *testing.T) {
	cond := &ast.BoolLiteralExpr{Value: true}
	ast.SetExprType(cond, nil)
	ifStmt := &ast.IfStmt{
		Cond: cond,
		Then: &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLiteralExpr{Value: 1}}}},
		Else: &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLiteralExpr{Value: 2}}}},
	}
	fn := buildFunc(t, "f", []ast.Stmt{ifStmt})

	cc := ast.NewCompilerContext()
	u, err := Lower(cc, &ast.Module{Decls: []ast.Decl{fn}})
	require.NoError(t, err)

	var lowered *Function
	for _, f := range u.Functions {
		lowered = f
	}
	require.NotNil(t, lowered)

	// entry + then + else + after
	assert.Len(t, lowered.Blocks, 4)
	var branchCount, jumpCount int
	for _, b := range lowered.Blocks {
		for _, i := range b.Instrs {
			switch i.Op {
			case OpBranch:
				branchCount++
			case OpJump:
				jumpCount++
			}
		}
	}
	assert.Equal(t, 1, branchCount)
	assert.Equal(t, 0, jumpCount, "both arms return, so neither needs a trailing jump to after")
}

// TestLambdaCapturesEnclosingParameter covers scenario 6: a lambda
// referencing an enclosing parameter captures it, prepending the captured
// type to the inner function's domain and emitting a partial_apply at the
// binding site.
func TestLambdaCapturesEnclosingParameter(t *testing.T) {
	cc := ast.NewCompilerContext()
	intT := cc.Types.GetBuiltin(types.Int)
	xSym := &ast.Symbol{Name: "x", Type: types.QualifiedType{Bare: intT}}
	xParam := &ast.ParamDecl{Name: "x", Symbol: xSym}

	xRef := &ast.IdentifierExpr{Name: "x", Candidates: []*ast.Symbol{xSym}}
	lambdaFnType := cc.Types.GetFunction(nil, nil, types.QualifiedType{Bare: intT})
	lambda := &ast.LambdaExpr{Body: &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: xRef}}}}
	ast.SetExprType(lambda, lambdaFnType)

	binding := &ast.BindingStmt{
		Target: &ast.IdentifierExpr{Name: "g"},
		Op:     ast.OpCopy,
		Value:  lambda,
		IsDecl: true,
		Symbol: &ast.Symbol{Name: "g", Type: types.QualifiedType{Bare: lambdaFnType}},
	}

	fn := &ast.FuncDecl{
		Name:   "f",
		Params: []*ast.ParamDecl{xParam},
		Body:   &ast.BraceStmt{Stmts: []ast.Stmt{binding}},
	}
	fn.Type = cc.Types.GetFunction(nil,
		[]types.Param{{Type: types.QualifiedType{Bare: intT}}},
		types.QualifiedType{Bare: intT})

	u, err := Lower(cc, &ast.Module{Decls: []ast.Decl{fn}})
	require.NoError(t, err)

	// Two functions: f itself, plus the lifted lambda.
	assert.Len(t, u.Functions, 2)

	var lambdaFn *Function
	for name, f := range u.Functions {
		if name != MangleSymbol([]string{"f"}, fn.Type) {
			lambdaFn = f
		}
	}
	require.NotNil(t, lambdaFn, "expected the lifted lambda function in the unit")
	assert.Len(t, lambdaFn.Params, 1, "the captured x parameter should be prepended to the lambda's domain")

	var sawPartialApply bool
	for _, f := range u.Functions {
		for _, b := range f.Blocks {
			for _, i := range b.Instrs {
				if i.Op == OpPartialApply {
					sawPartialApply = true
				}
			}
		}
	}
	assert.True(t, sawPartialApply, "expected a partial_apply at the lambda's binding site")
}

// TestLowerIsDeterministicAcrossRuns lowers the same function twice from
// independent compiler contexts and diffs the textual IR: lowering must
// not depend on anything but the function's own structure.
func TestLowerIsDeterministicAcrossRuns(t *testing.T) {
	lower := func() string {
		fn := buildFunc(t, "f", []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLiteralExpr{Value: 1}}})
		cc := ast.NewCompilerContext()
		u, err := Lower(cc, &ast.Module{Decls: []ast.Decl{fn}})
		require.NoError(t, err)
		return u.String()
	}

	first, second := lower(), lower()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("lowering is not deterministic (-first +second):\n%s", diff)
	}
}
