package types

// Transformer is polymorphic over the type variants and returns a Type
// for each; this package uses it to build the opener and
// the reifier, but later passes (e.g. pretty-printing) can add their own.
type Transformer interface {
	TransformKind(ctx *Context, t *KindT) Type
	TransformVar(ctx *Context, t *TypeVar) Type
	TransformPlaceholder(ctx *Context, t *Placeholder) Type
	TransformBoundGeneric(ctx *Context, t *BoundGeneric) Type
	TransformFunc(ctx *Context, t *FuncType) Type
	TransformNominal(ctx *Context, t *NominalType) Type
	TransformBuiltin(ctx *Context, t *BuiltinType) Type
	TransformError(ctx *Context, t *ErrorType) Type
}

// Transform dispatches t to the matching Transformer method.
func Transform(ctx *Context, t Type, tr Transformer) Type {
	switch v := t.(type) {
	case *KindT:
		return tr.TransformKind(ctx, v)
	case *TypeVar:
		return tr.TransformVar(ctx, v)
	case *Placeholder:
		return tr.TransformPlaceholder(ctx, v)
	case *BoundGeneric:
		return tr.TransformBoundGeneric(ctx, v)
	case *FuncType:
		return tr.TransformFunc(ctx, v)
	case *NominalType:
		return tr.TransformNominal(ctx, v)
	case *BuiltinType:
		return tr.TransformBuiltin(ctx, v)
	case *ErrorType:
		return tr.TransformError(ctx, v)
	default:
		panic("types: Transform given an unknown type variant")
	}
}

// ---- Opener: replaces a generic type's placeholders with fresh variables ----

type opener struct {
	ctx   *Context
	fresh map[*Placeholder]Type
}

// Open monomorphizes a generic type for one use site: each unbound
// placeholder becomes a fresh type variable, threaded consistently through
// the whole type. Opening a non-generic type (no placeholders anywhere) is
// the identity and returns the same interned pointer.
func Open(ctx *Context, t Type) Type {
	if !t.info().HasPlaceholder() {
		return t
	}
	o := &opener{ctx: ctx, fresh: make(map[*Placeholder]Type)}
	return Transform(ctx, t, o)
}

func (o *opener) open(t Type) Type { return Transform(o.ctx, t, o) }

func (o *opener) TransformKind(ctx *Context, t *KindT) Type { return ctx.GetKind(o.open(t.Of)) }
func (o *opener) TransformVar(_ *Context, t *TypeVar) Type  { return t }

func (o *opener) TransformPlaceholder(ctx *Context, t *Placeholder) Type {
	if v, ok := o.fresh[t]; ok {
		return v
	}
	v := ctx.GetTypeVar()
	o.fresh[t] = v
	return v
}

func (o *opener) TransformBoundGeneric(ctx *Context, t *BoundGeneric) Type {
	base := o.open(t.Base)
	bindings := make([]Binding, len(t.Bindings))
	for i, b := range t.Bindings {
		bindings[i] = Binding{Placeholder: b.Placeholder, Type: o.open(b.Type)}
	}
	return ctx.GetBoundGeneric(base, bindings)
}

func (o *opener) TransformFunc(ctx *Context, t *FuncType) Type {
	// Opening a function type whose generic-params is empty is the identity.
	if len(t.GenericParams) == 0 {
		return t
	}
	dom := make([]Param, len(t.Domain))
	for i, p := range t.Domain {
		dom[i] = Param{Label: p.Label, Type: QualifiedType{Bare: o.open(p.Type.Bare), Quals: p.Type.Quals}}
	}
	codom := QualifiedType{Bare: o.open(t.Codomain.Bare), Quals: t.Codomain.Quals}
	return ctx.GetFunction(nil, dom, codom)
}

func (o *opener) TransformNominal(_ *Context, t *NominalType) Type { return t }
func (o *opener) TransformBuiltin(_ *Context, t *BuiltinType) Type { return t }
func (o *opener) TransformError(_ *Context, t *ErrorType) Type     { return t }

// ---- Reifier: substitutes a solved substitution into a type ----

// Substitution maps a type variable's id to its assigned type.
type Substitution map[int]Type

type reifier struct {
	ctx    *Context
	sub    Substitution
	failed bool
}

// Reify walks t replacing each variable by its assigned type (transitively)
// and re-interns the result. It fails (second return false, and the
// returned type is the context's error type) if any variable remains
// unbound. Reifying a variable-free type, or reifying with an empty
// substitution against such a type, is the identity.
func Reify(ctx *Context, t Type, sub Substitution) (Type, bool) {
	if !t.info().HasVar() {
		return t, true
	}
	r := &reifier{ctx: ctx, sub: sub}
	out := r.reify(t)
	if r.failed {
		return ctx.ErrorType(), false
	}
	return out, true
}

func (r *reifier) reify(t Type) Type { return Transform(r.ctx, t, r) }

func (r *reifier) TransformKind(ctx *Context, t *KindT) Type { return ctx.GetKind(r.reify(t.Of)) }

func (r *reifier) TransformVar(ctx *Context, t *TypeVar) Type {
	bound, ok := r.sub[t.ID]
	if !ok {
		r.failed = true
		return ctx.ErrorType()
	}
	if bound == t {
		r.failed = true
		return ctx.ErrorType()
	}
	return r.reify(bound)
}

func (r *reifier) TransformPlaceholder(_ *Context, t *Placeholder) Type { return t }

func (r *reifier) TransformBoundGeneric(ctx *Context, t *BoundGeneric) Type {
	base := r.reify(t.Base)
	bindings := make([]Binding, len(t.Bindings))
	for i, b := range t.Bindings {
		bindings[i] = Binding{Placeholder: b.Placeholder, Type: r.reify(b.Type)}
	}
	return ctx.GetBoundGeneric(base, bindings)
}

func (r *reifier) TransformFunc(ctx *Context, t *FuncType) Type {
	dom := make([]Param, len(t.Domain))
	for i, p := range t.Domain {
		dom[i] = Param{Label: p.Label, Type: QualifiedType{Bare: r.reify(p.Type.Bare), Quals: p.Type.Quals}}
	}
	codom := QualifiedType{Bare: r.reify(t.Codomain.Bare), Quals: t.Codomain.Quals}
	return ctx.GetFunction(t.GenericParams, dom, codom)
}

func (r *reifier) TransformNominal(_ *Context, t *NominalType) Type { return t }
func (r *reifier) TransformBuiltin(_ *Context, t *BuiltinType) Type { return t }
func (r *reifier) TransformError(_ *Context, t *ErrorType) Type     { return t }
