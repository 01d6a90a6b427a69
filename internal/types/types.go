// Package types implements the hash-consed type universe described in the
// data model: every semantic type is interned in a compiler-context hash
// table so structural equality reduces to pointer equality. It replaces
// the teacher's ad hoc TCon/TFunc hierarchy (internal/types/types.go in the
// original) with a context-owned interning table plus a qualifier system
// (@cst / @mut) the surface language needs that the teacher never modeled.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// infoBits is the single machine word each interned type carries: the low
// bits encode boolean properties, the high 16 bits (when HasVar is set)
// hold the owning type variable's id.
type infoBits uint32

const (
	bitHasVar infoBits = 1 << iota
	bitHasPlaceholder
)

const infoVarIDShift = 16

func varInfo(id int) infoBits {
	return bitHasVar | infoBits(id<<infoVarIDShift)
}

func (b infoBits) HasVar() bool         { return b&bitHasVar != 0 }
func (b infoBits) HasPlaceholder() bool { return b&bitHasPlaceholder != 0 }
func (b infoBits) VarID() int           { return int(b >> infoVarIDShift) }

// Type is the common interface implemented by every interned type variant.
type Type interface {
	String() string
	isType()
	info() infoBits
	structHash() uint64
}

// Qualifier is one bit of a QualifierSet.
type Qualifier uint8

const (
	Cst Qualifier = 1 << iota // @cst: immutable ownership
	Mut                       // @mut: exclusive-mutable
)

// QualifierSet is a set of qualifiers. The zero value means "unresolved" —
// inference has not yet picked @cst or @mut.
type QualifierSet uint8

func (s QualifierSet) Has(q Qualifier) bool          { return s&QualifierSet(q) != 0 }
func (s QualifierSet) With(q Qualifier) QualifierSet { return s | QualifierSet(q) }
func (s QualifierSet) Resolved() bool                { return s != 0 }

func (s QualifierSet) String() string {
	var parts []string
	if s.Has(Cst) {
		parts = append(parts, "@cst")
	}
	if s.Has(Mut) {
		parts = append(parts, "@mut")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ")
}

// QualifiedType pairs a bare type with its qualifier set.
type QualifiedType struct {
	Bare  Type
	Quals QualifierSet
}

func (q QualifiedType) String() string {
	if q.Quals == 0 {
		return q.Bare.String()
	}
	return q.Quals.String() + " " + q.Bare.String()
}

// Equals compares by bare-type pointer identity and qualifier bits — the
// cheap comparison the interning invariant is meant to enable.
func (q QualifiedType) Equals(o QualifiedType) bool {
	return q.Bare == o.Bare && q.Quals == o.Quals
}

// ---- Type variants ----

// KindT is "the type of a type" — the kind of the type named by Of.
type KindT struct {
	Of Type
	h  uint64
}

func (k *KindT) isType()            {}
func (k *KindT) info() infoBits     { return k.Of.info() & bitHasPlaceholder }
func (k *KindT) structHash() uint64 { return k.h }
func (k *KindT) String() string     { return fmt.Sprintf("Kind(%s)", k.Of) }

// TypeVar is a unique type variable used during inference.
type TypeVar struct {
	ID int
	h  uint64
}

func (v *TypeVar) isType()            {}
func (v *TypeVar) info() infoBits     { return varInfo(v.ID) }
func (v *TypeVar) structHash() uint64 { return v.h }
func (v *TypeVar) String() string     { return fmt.Sprintf("$%d", v.ID) }

// Placeholder is a generic parameter; its identity is the declaration that
// introduced it (stored opaquely so this package never imports the AST).
type Placeholder struct {
	Decl any
	Name string
	h    uint64
}

func (p *Placeholder) isType()            {}
func (p *Placeholder) info() infoBits     { return bitHasPlaceholder }
func (p *Placeholder) structHash() uint64 { return p.h }
func (p *Placeholder) String() string     { return p.Name }

// Binding pairs a placeholder with the type substituted for it in a
// BoundGeneric.
type Binding struct {
	Placeholder *Placeholder
	Type        Type
}

type infoCache struct {
	bits infoBits
	hash uint64
}

// BoundGeneric is a base type plus a placeholder -> type map. Its base is
// never itself a BoundGeneric: construction always merges.
type BoundGeneric struct {
	Base     Type
	Bindings []Binding
	h        infoCache
}

func (b *BoundGeneric) isType()            {}
func (b *BoundGeneric) info() infoBits     { return b.h.bits }
func (b *BoundGeneric) structHash() uint64 { return b.h.hash }
func (b *BoundGeneric) String() string {
	parts := make([]string, len(b.Bindings))
	for i, bind := range b.Bindings {
		parts[i] = fmt.Sprintf("%s=%s", bind.Placeholder.Name, bind.Type)
	}
	return fmt.Sprintf("%s<%s>", b.Base, strings.Join(parts, ", "))
}

// Param is one entry in a function type's ordered domain.
type Param struct {
	Label string // "" if unlabeled
	Type  QualifiedType
}

// FuncType is a (possibly generic) function type.
type FuncType struct {
	GenericParams []*Placeholder
	Domain        []Param
	Codomain      QualifiedType
	h             infoCache
}

func (f *FuncType) isType()            {}
func (f *FuncType) info() infoBits     { return f.h.bits }
func (f *FuncType) structHash() uint64 { return f.h.hash }
func (f *FuncType) String() string {
	parts := make([]string, len(f.Domain))
	for i, p := range f.Domain {
		if p.Label != "" {
			parts[i] = fmt.Sprintf("%s: %s", p.Label, p.Type)
		} else {
			parts[i] = p.Type.String()
		}
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Codomain)
}

// NominalKind distinguishes the three nominal type flavors.
type NominalKind int

const (
	NominalStruct NominalKind = iota
	NominalUnion
	NominalInterface
)

func (k NominalKind) String() string {
	switch k {
	case NominalStruct:
		return "struct"
	case NominalUnion:
		return "union"
	case NominalInterface:
		return "interface"
	}
	return "nominal"
}

// NominalType is a struct, union or interface type. Its identity is the
// declaration that introduced it.
type NominalType struct {
	Kind NominalKind
	Decl any
	Name string
	h    uint64
}

func (n *NominalType) isType()            {}
func (n *NominalType) info() infoBits     { return 0 }
func (n *NominalType) structHash() uint64 { return n.h }
func (n *NominalType) String() string     { return n.Name }

// BuiltinType is a built-in primitive, identified by name.
type BuiltinType struct {
	Name string
	h    uint64
}

func (b *BuiltinType) isType()            {}
func (b *BuiltinType) info() infoBits     { return 0 }
func (b *BuiltinType) structHash() uint64 { return b.h }
func (b *BuiltinType) String() string     { return b.Name }

// ErrorType is the single sentinel error type per context.
type ErrorType struct{}

func (e *ErrorType) isType()            {}
func (e *ErrorType) info() infoBits     { return 0 }
func (e *ErrorType) structHash() uint64 { return seedError }
func (e *ErrorType) String() string     { return "<error>" }

// ---- Context: the hash-consing table ----

// Context is the compiler-wide type universe: every type is created
// through it, and structurally-equal constructions return the same
// pointer. Hash collisions within a bucket are resolved by linear probe.
type Context struct {
	mu         sync.Mutex
	buckets    map[uint64][]Type
	nextVar    int
	errorType  *ErrorType
	identities map[any]uint64
	nextIdent  uint64
}

func NewContext() *Context {
	return &Context{
		buckets:    make(map[uint64][]Type),
		errorType:  &ErrorType{},
		identities: make(map[any]uint64),
	}
}

// identityID assigns a stable integer to an opaque identity (typically an
// AST declaration pointer) the first time it is seen.
func (c *Context) identityID(v any) uint64 {
	if id, ok := c.identities[v]; ok {
		return id
	}
	c.nextIdent++
	c.identities[v] = c.nextIdent
	return c.nextIdent
}

func (c *Context) intern(h uint64, eq func(Type) bool, build func() Type) Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.buckets[h] {
		if eq(t) {
			return t
		}
	}
	t := build()
	c.buckets[h] = append(c.buckets[h], t)
	return t
}

// GetKind returns the (interned) kind of the given type.
func (c *Context) GetKind(of Type) Type {
	h := hashCombine(seedKind, of.structHash())
	return c.intern(h, func(t Type) bool {
		k, ok := t.(*KindT)
		return ok && k.Of == of
	}, func() Type {
		return &KindT{Of: of, h: h}
	})
}

// GetTypeVar creates a fresh, never-interned-away type variable.
func (c *Context) GetTypeVar() Type {
	c.mu.Lock()
	id := c.nextVar
	c.nextVar++
	c.mu.Unlock()
	h := hashCombine(seedVar, uint64(id))
	return c.intern(h, func(t Type) bool {
		v, ok := t.(*TypeVar)
		return ok && v.ID == id
	}, func() Type {
		return &TypeVar{ID: id, h: h}
	})
}

// GetPlaceholder returns the (interned) placeholder for a generic
// parameter declaration.
func (c *Context) GetPlaceholder(decl any, name string) Type {
	id := c.identityID(decl)
	h := hashCombine(seedPlaceholder, id)
	return c.intern(h, func(t Type) bool {
		p, ok := t.(*Placeholder)
		return ok && p.Decl == decl
	}, func() Type {
		return &Placeholder{Decl: decl, Name: name, h: h}
	})
}

func boundGenericHash(base Type, bindings []Binding) uint64 {
	h := hashCombine(seedBoundGeneric, base.structHash())
	for _, b := range bindings {
		h = hashCombine(h, b.Placeholder.structHash(), b.Type.structHash())
	}
	return h
}

func boundGenericInfo(base Type, bindings []Binding) infoBits {
	bits := base.info()
	for _, b := range bindings {
		bits |= b.Type.info()
	}
	return bits
}

func bindingsEqual(a, b []Binding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Placeholder != b[i].Placeholder || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

// GetBoundGeneric returns a bound-generic type. If base is itself a
// BoundGeneric, bindings are merged into it (its base is never itself a
// BoundGeneric — invariant 2 of the data model).
func (c *Context) GetBoundGeneric(base Type, bindings []Binding) Type {
	if inner, ok := base.(*BoundGeneric); ok {
		merged := make(map[*Placeholder]Type, len(inner.Bindings)+len(bindings))
		order := make([]*Placeholder, 0, len(inner.Bindings)+len(bindings))
		for _, b := range inner.Bindings {
			if _, seen := merged[b.Placeholder]; !seen {
				order = append(order, b.Placeholder)
			}
			merged[b.Placeholder] = b.Type
		}
		for _, b := range bindings {
			if _, seen := merged[b.Placeholder]; !seen {
				order = append(order, b.Placeholder)
			}
			merged[b.Placeholder] = b.Type
		}
		flat := make([]Binding, len(order))
		for i, p := range order {
			flat[i] = Binding{Placeholder: p, Type: merged[p]}
		}
		base = inner.Base
		bindings = flat
	}
	h := boundGenericHash(base, bindings)
	bits := boundGenericInfo(base, bindings)
	return c.intern(h, func(t Type) bool {
		bg, ok := t.(*BoundGeneric)
		return ok && bg.Base == base && bindingsEqual(bg.Bindings, bindings)
	}, func() Type {
		return &BoundGeneric{Base: base, Bindings: bindings, h: infoCache{bits: bits, hash: h}}
	})
}

func paramsEqual(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label || !a[i].Type.Equals(b[i].Type) {
			return false
		}
	}
	return true
}

func genericsEqual(a, b []*Placeholder) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func funcHash(generics []*Placeholder, dom []Param, codom QualifiedType) uint64 {
	h := hashCombine(seedFunc, uint64(len(generics)), uint64(len(dom)))
	for _, g := range generics {
		h = hashCombine(h, g.structHash())
	}
	for _, p := range dom {
		h = hashCombine(h, hashString(p.Label), p.Type.Bare.structHash(), uint64(p.Type.Quals))
	}
	h = hashCombine(h, codom.Bare.structHash(), uint64(codom.Quals))
	return h
}

func funcInfo(generics []*Placeholder, dom []Param, codom QualifiedType) infoBits {
	var bits infoBits
	for _, g := range generics {
		bits |= g.info()
	}
	for _, p := range dom {
		bits |= p.Type.Bare.info()
	}
	bits |= codom.Bare.info()
	return bits
}

// GetFunction returns an interned function type.
func (c *Context) GetFunction(generics []*Placeholder, dom []Param, codom QualifiedType) Type {
	h := funcHash(generics, dom, codom)
	bits := funcInfo(generics, dom, codom)
	return c.intern(h, func(t Type) bool {
		f, ok := t.(*FuncType)
		return ok && genericsEqual(f.GenericParams, generics) && paramsEqual(f.Domain, dom) && f.Codomain.Equals(codom)
	}, func() Type {
		return &FuncType{GenericParams: generics, Domain: dom, Codomain: codom, h: infoCache{bits: bits, hash: h}}
	})
}

func (c *Context) getNominal(kind NominalKind, decl any, name string) Type {
	id := c.identityID(decl)
	h := hashCombine(seedNominal, uint64(kind), id)
	return c.intern(h, func(t Type) bool {
		n, ok := t.(*NominalType)
		return ok && n.Kind == kind && n.Decl == decl
	}, func() Type {
		return &NominalType{Kind: kind, Decl: decl, Name: name, h: h}
	})
}

func (c *Context) GetStruct(decl any, name string) Type   { return c.getNominal(NominalStruct, decl, name) }
func (c *Context) GetUnion(decl any, name string) Type     { return c.getNominal(NominalUnion, decl, name) }
func (c *Context) GetInterface(decl any, name string) Type { return c.getNominal(NominalInterface, decl, name) }

// GetBuiltin returns the interned built-in type named name.
func (c *Context) GetBuiltin(name string) Type {
	h := hashCombine(seedBuiltin, hashString(name))
	return c.intern(h, func(t Type) bool {
		b, ok := t.(*BuiltinType)
		return ok && b.Name == name
	}, func() Type {
		return &BuiltinType{Name: name, h: h}
	})
}

// ErrorType returns the single sentinel error type for this context.
func (c *Context) ErrorType() Type { return c.errorType }

// Well-known builtin names, mirroring the mangling alphabet in §6.
const (
	Anything = "Anything"
	Nothing  = "Nothing"
	Bool     = "Bool"
	Int      = "Int"
	Float    = "Float"
	String   = "String"
)

// SameStructure reports whether two already-interned types are identical —
// by construction this is always a pointer comparison, but the helper
// documents the invariant at call sites.
func SameStructure(a, b Type) bool { return a == b }
