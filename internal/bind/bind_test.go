package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
)

// buildModule assembles a tiny module by hand (no parser yet): one
// property `let x = 1`, and a function `f(n: Int) -> Int { return x }`
// whose body references the module-level property.
func buildModule() (*ast.CompilerContext, *ast.Module) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")

	prop := &ast.PropertyDecl{Name: "x", Init: &ast.IntLiteralExpr{Value: 1}, Op: ast.OpCopy}
	m.AddDecl(prop)

	fn := &ast.FuncDecl{
		Name: "f",
		Params: []*ast.ParamDecl{
			{Name: "n", TypeAnn: &ast.IdentifierTypeSig{Name: "Int"}},
		},
		ReturnType: &ast.IdentifierTypeSig{Name: "Int"},
		Body: &ast.BraceStmt{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.IdentifierExpr{Name: "x"}},
		}},
	}
	m.AddDecl(fn)

	builtin := &ast.BuiltinTypeDecl{Name: "Int"}
	m.AddDecl(builtin)

	return cc, m
}

func TestModuleBindsTopLevelSymbols(t *testing.T) {
	cc, m := buildModule()
	Module(cc, m)

	assert.False(t, m.Issues.HasErrors(), "unexpected issues: %v", m.Issues.Sorted())

	prop := m.Decls[0].(*ast.PropertyDecl)
	require.NotNil(t, prop.Symbol)
	assert.True(t, prop.Symbol.Attrs.Has(ast.Reassignable))

	fn := m.Decls[1].(*ast.FuncDecl)
	require.NotNil(t, fn.Symbol)
	assert.True(t, fn.Symbol.Attrs.Has(ast.Overloadable))
}

func TestBindResolvesIdentifierInFunctionBody(t *testing.T) {
	cc, m := buildModule()
	Module(cc, m)

	fn := m.Decls[1].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	id := ret.Value.(*ast.IdentifierExpr)

	require.Len(t, id.Candidates, 1)
	assert.Equal(t, "x", id.Candidates[0].Name)
}

func TestBindResolvesParamTypeAnnotations(t *testing.T) {
	cc, m := buildModule()
	Module(cc, m)

	fn := m.Decls[1].(*ast.FuncDecl)
	paramType := fn.Params[0].TypeAnn.(*ast.IdentifierTypeSig)
	require.Len(t, paramType.Candidates, 1)
	assert.Equal(t, "Int", paramType.Candidates[0].Name)
}

func TestBindReportsUndefinedSymbol(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	fn := &ast.FuncDecl{
		Name: "g",
		Body: &ast.BraceStmt{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.IdentifierExpr{Name: "nowhere"}},
		}},
	}
	m.AddDecl(fn)

	Module(cc, m)

	require.True(t, m.Issues.HasErrors())
	id := fn.Body.Stmts[0].(*ast.ReturnStmt).Value.(*ast.IdentifierExpr)
	assert.Empty(t, id.Candidates)
}

func TestBindRejectsDuplicateNonOverloadableProperty(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	m.AddDecl(&ast.PropertyDecl{Name: "x", Init: &ast.IntLiteralExpr{Value: 1}})
	m.AddDecl(&ast.PropertyDecl{Name: "x", Init: &ast.IntLiteralExpr{Value: 2}})

	Module(cc, m)

	assert.True(t, m.Issues.HasErrors())
}

func TestBindAllowsOverloadedFunctions(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	m.AddDecl(&ast.FuncDecl{Name: "f", Body: &ast.BraceStmt{}})
	m.AddDecl(&ast.FuncDecl{Name: "f", Body: &ast.BraceStmt{}})

	Module(cc, m)

	assert.False(t, m.Issues.HasErrors())
}

func TestBindCreatesNestedScopeForStructMembers(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	st := &ast.StructDecl{
		Name: "Point",
		Members: []ast.Decl{
			&ast.PropertyDecl{Name: "x", Init: &ast.IntLiteralExpr{Value: 0}},
			&ast.PropertyDecl{Name: "y", Init: &ast.IntLiteralExpr{Value: 0}},
		},
	}
	m.AddDecl(st)

	Module(cc, m)

	require.NotNil(t, st.Context)
	assert.False(t, m.Issues.HasErrors())
	// members live in the struct's own scope, not the module's
	assert.Nil(t, m.Context.Scope.Lookup("x"))
	assert.Len(t, st.Context.Scope.Lookup("x"), 1)
}

func TestBindBumpsGenerationOnTypeExtension(t *testing.T) {
	cc := ast.NewCompilerContext()
	m := ast.NewModule("test.anzen")
	m.AddDecl(&ast.TypeExtensionDecl{
		Extended: &ast.IdentifierTypeSig{Name: "Point"},
		Members: []ast.Decl{
			&ast.FuncDecl{Name: "magnitude", Body: &ast.BraceStmt{}},
		},
	})

	before := cc.Generation()
	Module(cc, m)
	assert.Greater(t, cc.Generation(), before)
}
