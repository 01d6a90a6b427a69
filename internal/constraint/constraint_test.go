package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/bind"
	"github.com/anzenlang/anzenc/internal/types"
)

// buildModule assembles a module by hand (no parser yet). Callers set
// m.Main (if any) before calling bind.Module themselves, exactly once.
func buildModule(decls ...ast.Decl) (*ast.CompilerContext, *ast.Module) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	m.AddDecl(&ast.BuiltinTypeDecl{Name: "Int"})
	m.AddDecl(&ast.BuiltinTypeDecl{Name: "Bool"})
	for _, d := range decls {
		m.AddDecl(d)
	}
	return cc, m
}

// TestLetBindingGeneratesEqualityAgainstInt covers scenario 1: `let x = 1`
// should produce an Equality constraint tying x's variable to Int.
func TestLetBindingGeneratesEqualityAgainstInt(t *testing.T) {
	lit := &ast.IntLiteralExpr{Value: 1}
	mainStmt := &ast.BindingStmt{
		Target: &ast.IdentifierExpr{Name: "x"},
		Op:     ast.OpCopy,
		Value:  lit,
		IsDecl: true,
	}
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	m.AddDecl(&ast.BuiltinTypeDecl{Name: "Int"})
	m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: []ast.Stmt{mainStmt}}}
	bind.Module(cc, m)

	g := NewGenerator(cc, m.Issues)
	cs := g.Module(m)

	require.NotEmpty(t, cs)
	litVar, ok := g.NodeVars[lit]
	require.True(t, ok)

	foundIntEquality := false
	foundBindingEquality := false
	intType := cc.Types.GetBuiltin(types.Int)
	for _, c := range cs {
		if c.Kind != Equality {
			continue
		}
		if c.A == litVar && c.B == intType {
			foundIntEquality = true
		}
		if c.A == mainStmt.Symbol.Type.Bare && c.B == litVar {
			foundBindingEquality = true
		}
	}
	assert.True(t, foundIntEquality, "expected literal's variable equated with Int")
	assert.True(t, foundBindingEquality, "expected x's declared variable equated with the literal's")
}

// TestOverloadedIdentifierGeneratesDisjunction covers the setup for
// scenarios 2 and 3: a name with more than one candidate symbol produces a
// Disjunction constraint, one choice per candidate, each tagged with
// whether it came from a generic declaration.
func TestOverloadedIdentifierGeneratesDisjunction(t *testing.T) {
	specific := &ast.FuncDecl{
		Name:       "f",
		Params:     []*ast.ParamDecl{{Name: "x", TypeAnn: &ast.IdentifierTypeSig{Name: "Int"}}},
		ReturnType: &ast.IdentifierTypeSig{Name: "Int"},
		Body:       &ast.BraceStmt{},
	}
	generic := &ast.FuncDecl{
		Name:     "f",
		Generics: []*ast.GenericParamDecl{{Name: "T"}},
		Params:   []*ast.ParamDecl{{Name: "x", TypeAnn: &ast.IdentifierTypeSig{Name: "T"}}},
		ReturnType: &ast.IdentifierTypeSig{Name: "T"},
		Body:     &ast.BraceStmt{},
	}
	call := &ast.CallExpr{
		Callee: &ast.IdentifierExpr{Name: "f"},
		Args:   []*ast.CallArgumentExpr{{Value: &ast.IntLiteralExpr{Value: 1}}},
	}
	cc, m := buildModule(specific, generic)
	m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: []ast.Stmt{
		&ast.BindingStmt{Target: &ast.IdentifierExpr{Name: "r"}, Op: ast.OpCopy, Value: call, IsDecl: true},
	}}}
	bind.Module(cc, m)

	g := NewGenerator(cc, m.Issues)
	cs := g.Module(m)

	var found *Constraint
	for _, c := range cs {
		if c.Kind == Disjunction {
			found = c
		}
	}
	require.NotNil(t, found, "expected a disjunction constraint over the two f candidates")
	require.Len(t, found.Choices, 2)

	var sawGeneric, sawSpecific bool
	for _, ch := range found.Choices {
		if ch.Generic {
			sawGeneric = true
		} else {
			sawSpecific = true
		}
	}
	assert.True(t, sawGeneric)
	assert.True(t, sawSpecific)
}

func TestGeneratorReportsNoIssuesOnCleanModule(t *testing.T) {
	cc, m := buildModule()
	bind.Module(cc, m)
	g := NewGenerator(cc, m.Issues)
	g.Module(m)
	assert.False(t, m.Issues.HasErrors())
}
