package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/samples"
)

func build(t *testing.T, name string) (*ast.CompilerContext, *ast.Module) {
	t.Helper()
	s, ok := samples.Get(name)
	require.True(t, ok, "sample %q not registered", name)
	return ast.NewCompilerContext(), s.Build()
}

func TestRunLetBindingReturnsBoundValue(t *testing.T) {
	cc, m := build(t, "let-binding")
	v, err := Run(cc, m)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestRunArithmeticAddsOperands(t *testing.T) {
	cc, m := build(t, "arithmetic")
	v, err := Run(cc, m)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestRunIfElseTakesTrueBranch(t *testing.T) {
	cc, m := build(t, "if-else")
	v, err := Run(cc, m)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestBuildIRProducesMainFunction(t *testing.T) {
	cc, m := build(t, "let-binding")
	unit, err := BuildIR(cc, m)
	require.NoError(t, err)
	_, ok := unit.Functions["main"]
	assert.True(t, ok)
}

func TestAnalyzeReportsUndefinedSymbol(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("broken.anzen")
	m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.IdentifierExpr{Name: "undefined"}},
	}}}

	_, err := Analyze(cc, m)
	require.Error(t, err)
	assert.True(t, m.Issues.HasErrors())
}
