package ast

import "github.com/anzenlang/anzenc/internal/types"

// TypeSig is implemented by every surface type-signature node variant —
// the syntactic counterpart of the interned types.Type.
type TypeSig interface {
	Node
	typeSigNode()
}

// QualifiedTypeSig attaches a qualifier set (@cst/@mut) to an inner
// signature.
type QualifiedTypeSig struct {
	NodeBase
	Quals types.QualifierSet
	Inner TypeSig
}

func (*QualifiedTypeSig) typeSigNode() {}
func (n *QualifiedTypeSig) Children() []Node { return appendNonNil(nil, n.Inner) }
func (n *QualifiedTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *QualifiedTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *QualifiedTypeSig) traverseT(t Transformer) Node {
	out := *n
	if n.Inner != nil {
		out.Inner = mustAs[TypeSig](n.Inner.AcceptT(t), "QualifiedTypeSig.Inner")
	}
	return &out
}

// IdentifierTypeSig names a type, optionally with generic arguments, e.g.
// `List<Int>`. Name binding records every candidate symbol it could refer
// to; solving narrows that to the one the constraints picked.
type IdentifierTypeSig struct {
	NodeBase
	Name        string
	GenericArgs []TypeSig

	Candidates []*Symbol
	Type       types.Type
}

func (*IdentifierTypeSig) typeSigNode() {}
func (n *IdentifierTypeSig) Children() []Node { return childrenOf(n.GenericArgs) }
func (n *IdentifierTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *IdentifierTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *IdentifierTypeSig) traverseT(t Transformer) Node {
	out := *n
	out.GenericArgs = acceptAll(t, n.GenericArgs, "IdentifierTypeSig.GenericArgs")
	return &out
}

// NestedTypeSig names a type nested under an explicit outer signature,
// e.g. `Outer.Inner<Args>`.
type NestedTypeSig struct {
	NodeBase
	Outer       TypeSig
	Name        string
	GenericArgs []TypeSig

	Candidates []*Symbol
	Type       types.Type
}

func (*NestedTypeSig) typeSigNode() {}

func (n *NestedTypeSig) Children() []Node {
	out := appendNonNil(nil, n.Outer)
	return append(out, childrenOf(n.GenericArgs)...)
}
func (n *NestedTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *NestedTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *NestedTypeSig) traverseT(t Transformer) Node {
	out := *n
	if n.Outer != nil {
		out.Outer = mustAs[TypeSig](n.Outer.AcceptT(t), "NestedTypeSig.Outer")
	}
	out.GenericArgs = acceptAll(t, n.GenericArgs, "NestedTypeSig.GenericArgs")
	return &out
}

// ImplicitNestedTypeSig names a nested type whose outer type is inferred
// from context, e.g. `.Bar` used where a `Foo` is expected.
type ImplicitNestedTypeSig struct {
	NodeBase
	Name        string
	GenericArgs []TypeSig

	Candidates []*Symbol
	Type       types.Type
}

func (*ImplicitNestedTypeSig) typeSigNode() {}
func (n *ImplicitNestedTypeSig) Children() []Node { return childrenOf(n.GenericArgs) }
func (n *ImplicitNestedTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *ImplicitNestedTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *ImplicitNestedTypeSig) traverseT(t Transformer) Node {
	out := *n
	out.GenericArgs = acceptAll(t, n.GenericArgs, "ImplicitNestedTypeSig.GenericArgs")
	return &out
}

// FunctionTypeSig is a function-type signature, e.g. `(Int, label: Bool) -> String`.
type FunctionTypeSig struct {
	NodeBase
	Params []*ParameterTypeSig
	Ret    TypeSig

	Type types.Type
}

func (*FunctionTypeSig) typeSigNode() {}

func (n *FunctionTypeSig) Children() []Node {
	out := childrenOf(n.Params)
	return appendNonNil(out, n.Ret)
}
func (n *FunctionTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *FunctionTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *FunctionTypeSig) traverseT(t Transformer) Node {
	out := *n
	out.Params = acceptAll(t, n.Params, "FunctionTypeSig.Params")
	if n.Ret != nil {
		out.Ret = mustAs[TypeSig](n.Ret.AcceptT(t), "FunctionTypeSig.Ret")
	}
	return &out
}

// ParameterTypeSig is one parameter slot of a FunctionTypeSig.
type ParameterTypeSig struct {
	NodeBase
	Label string
	Inner TypeSig
}

func (*ParameterTypeSig) typeSigNode()      {}
func (n *ParameterTypeSig) Children() []Node { return appendNonNil(nil, n.Inner) }
func (n *ParameterTypeSig) Accept(v Visitor) { Walk(v, n) }
func (n *ParameterTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *ParameterTypeSig) traverseT(t Transformer) Node {
	out := *n
	if n.Inner != nil {
		out.Inner = mustAs[TypeSig](n.Inner.AcceptT(t), "ParameterTypeSig.Inner")
	}
	return &out
}

// InvalidTypeSig stands in for a signature the parser could not make
// sense of; it always resolves to the error type.
type InvalidTypeSig struct {
	NodeBase
}

func (*InvalidTypeSig) typeSigNode()              {}
func (n *InvalidTypeSig) Children() []Node         { return nil }
func (n *InvalidTypeSig) Accept(v Visitor)         { Walk(v, n) }
func (n *InvalidTypeSig) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *InvalidTypeSig) traverseT(Transformer) Node { out := *n; return &out }
