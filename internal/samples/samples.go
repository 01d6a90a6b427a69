// Package samples provides hand-built modules for cmd/anzenc and the REPL
// to run. There is no parser in this core's scope (parsing sits upstream
// of the external-interfaces boundary), so these modules are assembled
// directly as ast.Decl trees instead of being read from .anzen source
// text, the same way internal/constraint's and internal/lowir's tests
// build their fixtures.
package samples

import (
	"fmt"
	"sort"

	"github.com/anzenlang/anzenc/internal/ast"
)

// Sample is one named, runnable module plus a short description shown by
// `anzenc list` and the REPL's :list command.
type Sample struct {
	Name        string
	Description string
	Build       func() *ast.Module
}

var registry = map[string]Sample{}

func register(s Sample) {
	registry[s.Name] = s
}

// Names returns every registered sample name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get looks up a sample by name.
func Get(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

func intLit(v int64) *ast.IntLiteralExpr  { return &ast.IntLiteralExpr{Value: v} }
func ident(name string) *ast.IdentifierExpr { return &ast.IdentifierExpr{Name: name} }

func mainModule(buffer string, stmts ...ast.Stmt) *ast.Module {
	m := ast.NewModule(buffer)
	m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: stmts}}
	return m
}

func init() {
	register(Sample{
		Name:        "let-binding",
		Description: "let x = 1; returns x — a monomorphic let-binding",
		Build: func() *ast.Module {
			return mainModule("let-binding.anzen",
				&ast.BindingStmt{Target: ident("x"), Op: ast.OpCopy, IsDecl: true, Value: intLit(1)},
				&ast.ReturnStmt{Value: ident("x")},
			)
		},
	})

	register(Sample{
		Name:        "arithmetic",
		Description: "let x = 1 + 2; returns x via the __builtin_add overload",
		Build: func() *ast.Module {
			return mainModule("arithmetic.anzen",
				&ast.BindingStmt{
					Target: ident("x"), Op: ast.OpCopy, IsDecl: true,
					Value: &ast.InfixExpr{Left: intLit(1), Op: "+", Right: intLit(2)},
				},
				&ast.ReturnStmt{Value: ident("x")},
			)
		},
	})

	register(Sample{
		Name:        "if-else",
		Description: "if true { 1 } else { 2 } — exercises branch/jump lowering",
		Build: func() *ast.Module {
			return mainModule("if-else.anzen",
				&ast.IfStmt{
					Cond: &ast.BoolLiteralExpr{Value: true},
					Then: &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: intLit(1)}}},
					Else: &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: intLit(2)}}},
				},
			)
		},
	})

	register(Sample{
		Name:        "overload-int",
		Description: "two overloads of f, called with an Int argument",
		Build: func() *ast.Module {
			m := ast.NewModule("overload-int.anzen")
			m.AddDecl(&ast.BuiltinTypeDecl{Name: "Int"})
			m.AddDecl(&ast.BuiltinTypeDecl{Name: "Bool"})
			fInt := &ast.FuncDecl{
				Name:   "f",
				Params: []*ast.ParamDecl{{Name: "x", TypeAnn: &ast.IdentifierTypeSig{Name: "Int"}}},
				Body:   &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: ident("x")}}},
			}
			fBool := &ast.FuncDecl{
				Name:   "f",
				Params: []*ast.ParamDecl{{Name: "x", TypeAnn: &ast.IdentifierTypeSig{Name: "Bool"}}},
				Body:   &ast.BraceStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: ident("x")}}},
			}
			m.AddDecl(fInt)
			m.AddDecl(fBool)
			m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.CallExpr{
					Callee: ident("f"),
					Args:   []*ast.CallArgumentExpr{{Value: intLit(7)}},
				}},
			}}}
			return m
		},
	})

	register(Sample{
		Name:        "closure-capture",
		Description: "a lambda closing over an enclosing parameter, then applied",
		Build: func() *ast.Module {
			m := ast.NewModule("closure-capture.anzen")
			m.AddDecl(&ast.BuiltinTypeDecl{Name: "Int"})
			lambda := &ast.LambdaExpr{
				Params: []*ast.ParamDecl{{Name: "y"}},
				Body: &ast.BraceStmt{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.InfixExpr{Left: ident("x"), Op: "+", Right: ident("y")}},
				}},
			}
			fn := &ast.FuncDecl{
				Name:   "makeAdder",
				Params: []*ast.ParamDecl{{Name: "x", TypeAnn: &ast.IdentifierTypeSig{Name: "Int"}}},
				Body: &ast.BraceStmt{Stmts: []ast.Stmt{
					&ast.BindingStmt{Target: ident("g"), Op: ast.OpCopy, IsDecl: true, Value: lambda},
					&ast.ReturnStmt{Value: &ast.CallExpr{
						Callee: ident("g"),
						Args:   []*ast.CallArgumentExpr{{Value: intLit(5)}},
					}},
				}},
			}
			m.AddDecl(fn)
			m.Main = &ast.MainCodeDecl{Body: &ast.BraceStmt{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.CallExpr{
					Callee: ident("makeAdder"),
					Args:   []*ast.CallArgumentExpr{{Value: intLit(10)}},
				}},
			}}}
			return m
		},
	})
}

// Describe formats every registered sample as one line, for the CLI's
// `list` subcommand and the REPL's :list command.
func Describe() string {
	out := ""
	for _, n := range Names() {
		s := registry[n]
		out += fmt.Sprintf("  %-16s %s\n", s.Name, s.Description)
	}
	return out
}
