package ast

import "github.com/anzenlang/anzenc/internal/types"

// Expr is implemented by every expression node variant.
type Expr interface {
	Node
	exprNode()
	// ExprType returns the type assigned by the solver, or nil before
	// solving has run.
	ExprType() types.Type
	setExprType(types.Type)
}

// exprBase factors out the "every expression carries a solved type" field
// so each variant only has to embed it instead of repeating the plumbing.
type exprBase struct {
	NodeBase
	typ types.Type
}

func (e *exprBase) ExprType() types.Type     { return e.typ }
func (e *exprBase) setExprType(t types.Type) { e.typ = t }

// SetExprType is the public entry point passes outside this package (the
// solver) use to record a node's final type.
func SetExprType(e Expr, t types.Type) { e.setExprType(t) }

// NullExpr is the `null` literal.
type NullExpr struct{ exprBase }

func (*NullExpr) exprNode()              {}
func (n *NullExpr) Children() []Node         { return nil }
func (n *NullExpr) Accept(v Visitor)         { Walk(v, n) }
func (n *NullExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *NullExpr) traverseT(Transformer) Node { out := *n; return &out }

// LambdaExpr is an anonymous function literal; free identifiers it
// references from an enclosing scope become captures during lowering.
type LambdaExpr struct {
	exprBase
	Params     []*ParamDecl
	ReturnType TypeSig // optional
	Body       *BraceStmt
}

func (*LambdaExpr) exprNode() {}

func (n *LambdaExpr) Children() []Node {
	out := childrenOf(n.Params)
	if n.ReturnType != nil {
		out = appendNonNil(out, n.ReturnType)
	}
	return appendNonNil(out, n.Body)
}
func (n *LambdaExpr) Accept(v Visitor) { Walk(v, n) }
func (n *LambdaExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *LambdaExpr) traverseT(t Transformer) Node {
	out := *n
	out.Params = acceptAll(t, n.Params, "LambdaExpr.Params")
	if n.ReturnType != nil {
		out.ReturnType = mustAs[TypeSig](n.ReturnType.AcceptT(t), "LambdaExpr.ReturnType")
	}
	if n.Body != nil {
		out.Body = mustAs[*BraceStmt](n.Body.AcceptT(t), "LambdaExpr.Body")
	}
	return &out
}

// UnsafeCastExpr force-casts a value to a target type signature, bypassing
// conformance checking.
type UnsafeCastExpr struct {
	exprBase
	Value  Expr
	Target TypeSig
}

func (*UnsafeCastExpr) exprNode() {}

func (n *UnsafeCastExpr) Children() []Node {
	out := appendNonNil(nil, n.Value)
	return appendNonNil(out, n.Target)
}
func (n *UnsafeCastExpr) Accept(v Visitor) { Walk(v, n) }
func (n *UnsafeCastExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *UnsafeCastExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Value != nil {
		out.Value = mustAs[Expr](n.Value.AcceptT(t), "UnsafeCastExpr.Value")
	}
	if n.Target != nil {
		out.Target = mustAs[TypeSig](n.Target.AcceptT(t), "UnsafeCastExpr.Target")
	}
	return &out
}

// InfixExpr is `left op right`.
type InfixExpr struct {
	exprBase
	Left  Expr
	Op    string
	Right Expr
}

func (*InfixExpr) exprNode() {}

func (n *InfixExpr) Children() []Node {
	out := appendNonNil(nil, n.Left)
	return appendNonNil(out, n.Right)
}
func (n *InfixExpr) Accept(v Visitor) { Walk(v, n) }
func (n *InfixExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *InfixExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Left != nil {
		out.Left = mustAs[Expr](n.Left.AcceptT(t), "InfixExpr.Left")
	}
	if n.Right != nil {
		out.Right = mustAs[Expr](n.Right.AcceptT(t), "InfixExpr.Right")
	}
	return &out
}

// PrefixExpr is `op operand`.
type PrefixExpr struct {
	exprBase
	Op      string
	Operand Expr
}

func (*PrefixExpr) exprNode() {}
func (n *PrefixExpr) Children() []Node { return appendNonNil(nil, n.Operand) }
func (n *PrefixExpr) Accept(v Visitor) { Walk(v, n) }
func (n *PrefixExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *PrefixExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Operand != nil {
		out.Operand = mustAs[Expr](n.Operand.AcceptT(t), "PrefixExpr.Operand")
	}
	return &out
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	exprBase
	Callee Expr
	Args   []*CallArgumentExpr
}

func (*CallExpr) exprNode() {}

func (n *CallExpr) Children() []Node {
	out := appendNonNil(nil, n.Callee)
	return append(out, childrenOf(n.Args)...)
}
func (n *CallExpr) Accept(v Visitor) { Walk(v, n) }
func (n *CallExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *CallExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Callee != nil {
		out.Callee = mustAs[Expr](n.Callee.AcceptT(t), "CallExpr.Callee")
	}
	out.Args = acceptAll(t, n.Args, "CallExpr.Args")
	return &out
}

// CallArgumentExpr is one (optionally labeled) call argument.
type CallArgumentExpr struct {
	exprBase
	Label string // "" if positional
	Value Expr
}

func (*CallArgumentExpr) exprNode() {}
func (n *CallArgumentExpr) Children() []Node { return appendNonNil(nil, n.Value) }
func (n *CallArgumentExpr) Accept(v Visitor) { Walk(v, n) }
func (n *CallArgumentExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *CallArgumentExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Value != nil {
		out.Value = mustAs[Expr](n.Value.AcceptT(t), "CallArgumentExpr.Value")
	}
	return &out
}

// IdentifierExpr refers to a name. Name binding records every symbol the
// name could denote (an overload set); solving narrows it to one.
type IdentifierExpr struct {
	exprBase
	Name       string
	Candidates []*Symbol
}

func (*IdentifierExpr) exprNode()         {}
func (n *IdentifierExpr) Children() []Node { return nil }
func (n *IdentifierExpr) Accept(v Visitor) { Walk(v, n) }
func (n *IdentifierExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *IdentifierExpr) traverseT(Transformer) Node { out := *n; return &out }

// SelectExpr is `base.name`, an explicit member access.
type SelectExpr struct {
	exprBase
	Base       Expr
	Name       string
	Candidates []*Symbol
}

func (*SelectExpr) exprNode() {}
func (n *SelectExpr) Children() []Node { return appendNonNil(nil, n.Base) }
func (n *SelectExpr) Accept(v Visitor) { Walk(v, n) }
func (n *SelectExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *SelectExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Base != nil {
		out.Base = mustAs[Expr](n.Base.AcceptT(t), "SelectExpr.Base")
	}
	return &out
}

// ImplicitSelectExpr is `.name`, a member access whose base is inferred
// from the expected type (e.g. union case shorthand `.some(x)`).
type ImplicitSelectExpr struct {
	exprBase
	Name       string
	Candidates []*Symbol
}

func (*ImplicitSelectExpr) exprNode()          {}
func (n *ImplicitSelectExpr) Children() []Node { return nil }
func (n *ImplicitSelectExpr) Accept(v Visitor) { Walk(v, n) }
func (n *ImplicitSelectExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *ImplicitSelectExpr) traverseT(Transformer) Node { out := *n; return &out }

// ArrayLiteralExpr is `[e1, e2, ...]`.
type ArrayLiteralExpr struct {
	exprBase
	Elements []Expr
}

func (*ArrayLiteralExpr) exprNode()         {}
func (n *ArrayLiteralExpr) Children() []Node { return childrenOf(n.Elements) }
func (n *ArrayLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *ArrayLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *ArrayLiteralExpr) traverseT(t Transformer) Node {
	out := *n
	out.Elements = acceptAll(t, n.Elements, "ArrayLiteralExpr.Elements")
	return &out
}

// SetLiteralExpr is `{e1, e2, ...}` in set-literal position.
type SetLiteralExpr struct {
	exprBase
	Elements []Expr
}

func (*SetLiteralExpr) exprNode()         {}
func (n *SetLiteralExpr) Children() []Node { return childrenOf(n.Elements) }
func (n *SetLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *SetLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *SetLiteralExpr) traverseT(t Transformer) Node {
	out := *n
	out.Elements = acceptAll(t, n.Elements, "SetLiteralExpr.Elements")
	return &out
}

// MapLiteralExpr is `{k1: v1, k2: v2, ...}`; Keys and Values run parallel.
type MapLiteralExpr struct {
	exprBase
	Keys   []Expr
	Values []Expr
}

func (*MapLiteralExpr) exprNode() {}

func (n *MapLiteralExpr) Children() []Node {
	out := make([]Node, 0, len(n.Keys)+len(n.Values))
	for i := range n.Keys {
		out = appendNonNil(out, n.Keys[i])
		out = appendNonNil(out, n.Values[i])
	}
	return out
}
func (n *MapLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *MapLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *MapLiteralExpr) traverseT(t Transformer) Node {
	out := *n
	out.Keys = acceptAll(t, n.Keys, "MapLiteralExpr.Keys")
	out.Values = acceptAll(t, n.Values, "MapLiteralExpr.Values")
	return &out
}

// BoolLiteralExpr is a `true`/`false` literal.
type BoolLiteralExpr struct {
	exprBase
	Value bool
}

func (*BoolLiteralExpr) exprNode()         {}
func (n *BoolLiteralExpr) Children() []Node { return nil }
func (n *BoolLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *BoolLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *BoolLiteralExpr) traverseT(Transformer) Node { out := *n; return &out }

// IntLiteralExpr is an integer literal.
type IntLiteralExpr struct {
	exprBase
	Value int64
}

func (*IntLiteralExpr) exprNode()         {}
func (n *IntLiteralExpr) Children() []Node { return nil }
func (n *IntLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *IntLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *IntLiteralExpr) traverseT(Transformer) Node { out := *n; return &out }

// FloatLiteralExpr is a floating-point literal.
type FloatLiteralExpr struct {
	exprBase
	Value float64
}

func (*FloatLiteralExpr) exprNode()         {}
func (n *FloatLiteralExpr) Children() []Node { return nil }
func (n *FloatLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *FloatLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *FloatLiteralExpr) traverseT(Transformer) Node { out := *n; return &out }

// StringLiteralExpr is a string literal.
type StringLiteralExpr struct {
	exprBase
	Value string
}

func (*StringLiteralExpr) exprNode()         {}
func (n *StringLiteralExpr) Children() []Node { return nil }
func (n *StringLiteralExpr) Accept(v Visitor) { Walk(v, n) }
func (n *StringLiteralExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *StringLiteralExpr) traverseT(Transformer) Node { out := *n; return &out }

// ParenExpr is `(inner)`, kept distinct so precedence-sensitive lowering
// (e.g. of infix chains) doesn't have to be re-derived from a parser.
type ParenExpr struct {
	exprBase
	Inner Expr
}

func (*ParenExpr) exprNode()         {}
func (n *ParenExpr) Children() []Node { return appendNonNil(nil, n.Inner) }
func (n *ParenExpr) Accept(v Visitor) { Walk(v, n) }
func (n *ParenExpr) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *ParenExpr) traverseT(t Transformer) Node {
	out := *n
	if n.Inner != nil {
		out.Inner = mustAs[Expr](n.Inner.AcceptT(t), "ParenExpr.Inner")
	}
	return &out
}

// InvalidExpr stands in for an expression the parser could not make sense
// of; it always resolves to the error type.
type InvalidExpr struct{ exprBase }

func (*InvalidExpr) exprNode()         {}
func (n *InvalidExpr) Children() []Node { return nil }
func (n *InvalidExpr) Accept(v Visitor) { Walk(v, n) }
func (n *InvalidExpr) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *InvalidExpr) traverseT(Transformer) Node { out := *n; return &out }
