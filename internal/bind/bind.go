// Package bind implements name binding: the pass that walks a freshly
// parsed module, builds its scope tree, and resolves every identifier to
// the set of symbols it could denote. It runs before constraint
// generation, which needs each identifier's candidate list to build
// disjunction constraints over overload sets.
package bind

import (
	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/diag"
)

// Binder carries the state threaded through one module's binding pass.
type Binder struct {
	cc     *ast.CompilerContext
	issues *diag.Set
}

// Module binds every declaration and statement in m, recording undefined-
// symbol and duplicate-declaration issues on m.Issues.
func Module(cc *ast.CompilerContext, m *ast.Module) {
	b := &Binder{cc: cc, issues: m.Issues}
	for _, d := range m.Decls {
		b.decl(m.Context, d)
	}
	if m.Main != nil {
		b.decl(m.Context, m.Main)
	}
}

func (b *Binder) defineSymbol(ctx *ast.DeclContext, name string, decl ast.Decl, attrs ast.SymbolAttr) *ast.Symbol {
	sym := &ast.Symbol{Name: name, Decl: decl, Attrs: attrs}
	ctx.Scope.Define(sym, b.issues)
	return sym
}

func (b *Binder) decl(ctx *ast.DeclContext, d ast.Decl) {
	switch n := d.(type) {
	case *ast.PropertyDecl:
		if n.Init != nil {
			b.expr(ctx, n.Init)
		}
		if n.TypeAnn != nil {
			b.typeSig(ctx, n.TypeAnn)
		}
		attrs := ast.SymbolAttr(0)
		if n.Op != ast.OpAlias {
			attrs |= ast.Reassignable
		}
		n.Symbol = b.defineSymbol(ctx, n.Name, n, attrs)

	case *ast.FuncDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, ast.Overloadable)
		fnCtx := ast.NewDeclContext(ctx)
		for _, g := range n.Generics {
			b.genericParam(fnCtx, g)
		}
		for _, p := range n.Params {
			b.param(fnCtx, p)
		}
		if n.ReturnType != nil {
			b.typeSig(fnCtx, n.ReturnType)
		}
		if n.Body != nil {
			n.Body.Context = fnCtx
			b.braceStmtIn(fnCtx, n.Body)
		}

	case *ast.ParamDecl:
		b.param(ctx, n)

	case *ast.GenericParamDecl:
		b.genericParam(ctx, n)

	case *ast.StructDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, 0)
		bodyCtx := ast.NewDeclContext(ctx)
		n.Context = bodyCtx
		for _, g := range n.Generics {
			b.genericParam(bodyCtx, g)
		}
		for _, c := range n.Conformances {
			b.typeSig(bodyCtx, c)
		}
		for _, m := range n.Members {
			b.decl(bodyCtx, m)
		}

	case *ast.UnionDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, 0)
		bodyCtx := ast.NewDeclContext(ctx)
		n.Context = bodyCtx
		for _, g := range n.Generics {
			b.genericParam(bodyCtx, g)
		}
		for _, c := range n.Conformances {
			b.typeSig(bodyCtx, c)
		}
		for _, cs := range n.Cases {
			b.decl(bodyCtx, cs)
		}
		for _, m := range n.Members {
			b.decl(bodyCtx, m)
		}

	case *ast.InterfaceDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, 0)
		bodyCtx := ast.NewDeclContext(ctx)
		n.Context = bodyCtx
		for _, g := range n.Generics {
			b.genericParam(bodyCtx, g)
		}
		for _, c := range n.Conformances {
			b.typeSig(bodyCtx, c)
		}
		for _, r := range n.Requirements {
			b.decl(bodyCtx, r)
		}

	case *ast.UnionTypeCaseDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, ast.Overloadable)
		for _, p := range n.Params {
			b.param(ctx, p)
		}

	case *ast.UnionAliasCaseDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, ast.Overloadable)
		if n.Aliased != nil {
			b.typeSig(ctx, n.Aliased)
		}

	case *ast.TypeExtensionDecl:
		extCtx := ast.NewDeclContext(ctx)
		n.Context = extCtx
		if n.Extended != nil {
			b.typeSig(ctx, n.Extended)
		}
		for _, g := range n.Generics {
			b.genericParam(extCtx, g)
		}
		for _, c := range n.Conformances {
			b.typeSig(extCtx, c)
		}
		for _, m := range n.Members {
			b.decl(extCtx, m)
		}
		// A later member-table rebuild must see these additions.
		b.cc.BumpGeneration()

	case *ast.BuiltinTypeDecl:
		n.Symbol = b.defineSymbol(ctx, n.Name, n, 0)
		n.Type = b.cc.Types.GetBuiltin(n.Name)

	case *ast.MainCodeDecl:
		if n.Body != nil {
			mainCtx := ast.NewDeclContext(ctx)
			n.Body.Context = mainCtx
			b.braceStmtIn(mainCtx, n.Body)
		}
	}
}

func (b *Binder) param(ctx *ast.DeclContext, p *ast.ParamDecl) {
	if p.TypeAnn != nil {
		b.typeSig(ctx, p.TypeAnn)
	}
	if p.Default != nil {
		b.expr(ctx, p.Default)
	}
	p.Symbol = b.defineSymbol(ctx, p.Name, p, ast.Reassignable)
}

func (b *Binder) genericParam(ctx *ast.DeclContext, g *ast.GenericParamDecl) {
	for _, c := range g.Constraints {
		b.typeSig(ctx, c)
	}
	g.Placeholder = b.cc.Types.GetPlaceholder(g, g.Name)
	g.Symbol = b.defineSymbol(ctx, g.Name, g, 0)
}

// braceStmtIn binds the statements of body directly into ctx rather than a
// freshly nested one — used for the scope a FuncDecl/MainCodeDecl already
// allocated for its parameters, so parameters and the top-level locals of
// the body share one scope.
func (b *Binder) braceStmtIn(ctx *ast.DeclContext, body *ast.BraceStmt) {
	for _, s := range body.Stmts {
		b.stmt(ctx, s)
	}
}

func (b *Binder) stmt(ctx *ast.DeclContext, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BraceStmt:
		childCtx := ast.NewDeclContext(ctx)
		n.Context = childCtx
		b.braceStmtIn(childCtx, n)

	case *ast.IfStmt:
		b.expr(ctx, n.Cond)
		if n.Then != nil {
			b.stmt(ctx, n.Then)
		}
		if n.Else != nil {
			b.stmt(ctx, n.Else)
		}

	case *ast.WhileStmt:
		b.expr(ctx, n.Cond)
		if n.Body != nil {
			b.stmt(ctx, n.Body)
		}

	case *ast.BindingStmt:
		if n.Value != nil {
			b.expr(ctx, n.Value)
		}
		if n.TypeAnn != nil {
			b.typeSig(ctx, n.TypeAnn)
		}
		if n.IsDecl {
			name := ""
			if id, ok := n.Target.(*ast.IdentifierExpr); ok {
				name = id.Name
			}
			attrs := ast.SymbolAttr(0)
			if n.Op != ast.OpAlias {
				attrs |= ast.Reassignable
			}
			n.Symbol = b.defineSymbol(ctx, name, n, attrs)
		} else {
			b.expr(ctx, n.Target)
		}

	case *ast.ReturnStmt:
		if n.Value != nil {
			b.expr(ctx, n.Value)
		}

	case *ast.InvalidStmt:
		// nothing to bind
	}
}

func (b *Binder) resolve(ctx *ast.DeclContext, name string, anchor ast.Node) []*ast.Symbol {
	syms := ctx.Scope.Lookup(name)
	if len(syms) == 0 {
		b.issues.Errorf(anchor.Range(), anchor, "undefined symbol '%s'", name)
	}
	return syms
}

func (b *Binder) expr(ctx *ast.DeclContext, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentifierExpr:
		n.Candidates = b.resolve(ctx, n.Name, n)

	case *ast.SelectExpr:
		b.expr(ctx, n.Base)
		// Member candidates require the base's solved type and are filled
		// in once the solver has picked one; binding only resolves the
		// base expression here.

	case *ast.ImplicitSelectExpr:
		// Resolved against the expected type during solving.

	case *ast.LambdaExpr:
		lamCtx := ast.NewDeclContext(ctx)
		for _, p := range n.Params {
			b.param(lamCtx, p)
		}
		if n.ReturnType != nil {
			b.typeSig(lamCtx, n.ReturnType)
		}
		if n.Body != nil {
			n.Body.Context = lamCtx
			b.braceStmtIn(lamCtx, n.Body)
		}

	case *ast.UnsafeCastExpr:
		b.expr(ctx, n.Value)
		b.typeSig(ctx, n.Target)

	case *ast.InfixExpr:
		b.expr(ctx, n.Left)
		b.expr(ctx, n.Right)

	case *ast.PrefixExpr:
		b.expr(ctx, n.Operand)

	case *ast.CallExpr:
		b.expr(ctx, n.Callee)
		for _, a := range n.Args {
			b.expr(ctx, a.Value)
		}

	case *ast.CallArgumentExpr:
		b.expr(ctx, n.Value)

	case *ast.ArrayLiteralExpr:
		for _, el := range n.Elements {
			b.expr(ctx, el)
		}

	case *ast.SetLiteralExpr:
		for _, el := range n.Elements {
			b.expr(ctx, el)
		}

	case *ast.MapLiteralExpr:
		for i := range n.Keys {
			b.expr(ctx, n.Keys[i])
			b.expr(ctx, n.Values[i])
		}

	case *ast.ParenExpr:
		b.expr(ctx, n.Inner)

	case *ast.NullExpr, *ast.BoolLiteralExpr, *ast.IntLiteralExpr,
		*ast.FloatLiteralExpr, *ast.StringLiteralExpr, *ast.InvalidExpr:
		// no sub-expressions, no names to resolve
	}
}

func (b *Binder) typeSig(ctx *ast.DeclContext, t ast.TypeSig) {
	switch n := t.(type) {
	case *ast.QualifiedTypeSig:
		b.typeSig(ctx, n.Inner)

	case *ast.IdentifierTypeSig:
		n.Candidates = b.resolve(ctx, n.Name, n)
		for _, a := range n.GenericArgs {
			b.typeSig(ctx, a)
		}

	case *ast.NestedTypeSig:
		b.typeSig(ctx, n.Outer)
		for _, a := range n.GenericArgs {
			b.typeSig(ctx, a)
		}

	case *ast.ImplicitNestedTypeSig:
		for _, a := range n.GenericArgs {
			b.typeSig(ctx, a)
		}

	case *ast.FunctionTypeSig:
		for _, p := range n.Params {
			b.typeSig(ctx, p.Inner)
		}
		b.typeSig(ctx, n.Ret)

	case *ast.ParameterTypeSig:
		b.typeSig(ctx, n.Inner)

	case *ast.InvalidTypeSig:
		// nothing to resolve
	}
}
