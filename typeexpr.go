package duality

// TypeExpr is the structural description of a field's type. It is a closed
// tagged union: primitives, literal tag values, model references, generic
// containers, ordered unions, metadata annotations and nullable wrappers.
// Resolve rewrites an authored expression for a target variant kind.
type TypeExpr interface {
	isTypeExpr()
}

// PrimitiveKind enumerates the leaf scalar types.
type PrimitiveKind int

const (
	PrimString PrimitiveKind = iota
	PrimInt
	PrimFloat
	PrimBool
	PrimAny
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimInt:
		return "int"
	case PrimFloat:
		return "float"
	case PrimBool:
		return "bool"
	case PrimAny:
		return "any"
	default:
		return "string"
	}
}

// Primitive is a scalar leaf type.
type Primitive struct {
	Kind PrimitiveKind
}

// Literal is a single-valued tag type. Literal fields are used as union
// discriminators and are exempt from PatchRequest nullable-wrapping: nulling a
// tag would break tagged-union dispatch.
type Literal struct {
	Value any
}

// ModelRef is an authored reference to a canonical model. Target may be bound
// eagerly (Ref) or late (LazyRef) to allow self- and forward references.
type ModelRef struct {
	model *Model
	lazy  func() *Model
}

// Target returns the referenced canonical model, resolving a late binding.
func (r ModelRef) Target() *Model {
	if r.model != nil {
		return r.model
	}
	if r.lazy != nil {
		return r.lazy()
	}
	return nil
}

// VariantRef is a resolved reference produced by Resolve: the same model
// pointed at a concrete variant kind. The variant itself is looked up at parse
// time, never during synthesis, which is what keeps reference cycles safe.
type VariantRef struct {
	ref  ModelRef
	Kind VariantKind
}

// Target returns the referenced canonical model.
func (r VariantRef) Target() *Model { return r.ref.Target() }

// Variant returns the concrete derived variant, synthesizing it on first use.
func (r VariantRef) Variant() *Variant {
	m := r.Target()
	if m == nil {
		return nil
	}
	return m.Variant(r.Kind)
}

// GenericOrigin enumerates supported container shapes.
type GenericOrigin int

const (
	OriginList GenericOrigin = iota
	OriginMap                // string-keyed, JSON object semantics
)

// Generic is a container type applied to argument expressions.
type Generic struct {
	Origin GenericOrigin
	Args   []TypeExpr
}

// Union is an ordered union of member expressions. Order matters: dispatch
// tries members first to last, and tagged-union fast paths preserve it.
type Union struct {
	Members []TypeExpr
}

// Annotated attaches opaque metadata to an inner expression. Resolution
// rewrites the inner expression and passes metadata through unchanged.
type Annotated struct {
	Inner    TypeExpr
	Metadata []any
}

// Nullable accepts null in addition to the inner expression. PatchRequest
// resolution introduces it around every non-tag field.
type Nullable struct {
	Inner TypeExpr
}

func (Primitive) isTypeExpr()  {}
func (Literal) isTypeExpr()    {}
func (ModelRef) isTypeExpr()   {}
func (VariantRef) isTypeExpr() {}
func (Generic) isTypeExpr()    {}
func (Union) isTypeExpr()      {}
func (Annotated) isTypeExpr()  {}
func (Nullable) isTypeExpr()   {}

// ---- constructors ----

// String returns the string primitive expression.
func String() TypeExpr { return Primitive{Kind: PrimString} }

// Int returns the integer primitive expression.
func Int() TypeExpr { return Primitive{Kind: PrimInt} }

// Float returns the float primitive expression.
func Float() TypeExpr { return Primitive{Kind: PrimFloat} }

// Bool returns the bool primitive expression.
func Bool() TypeExpr { return Primitive{Kind: PrimBool} }

// Any returns the unconstrained expression.
func Any() TypeExpr { return Primitive{Kind: PrimAny} }

// LiteralOf returns a single-valued tag expression.
func LiteralOf(v any) TypeExpr { return Literal{Value: v} }

// Ref references a canonical model that already exists.
func Ref(m *Model) TypeExpr { return ModelRef{model: m} }

// LazyRef references a canonical model through a late binding. The resolve
// function runs at parse time, so self-referential declarations can close over
// a variable assigned after Build.
func LazyRef(resolve func() *Model) TypeExpr { return ModelRef{lazy: resolve} }

// List returns a homogeneous list expression.
func List(elem TypeExpr) TypeExpr { return Generic{Origin: OriginList, Args: []TypeExpr{elem}} }

// MapOf returns a string-keyed map expression.
func MapOf(value TypeExpr) TypeExpr { return Generic{Origin: OriginMap, Args: []TypeExpr{value}} }

// UnionOf returns an ordered union expression.
func UnionOf(members ...TypeExpr) TypeExpr { return Union{Members: members} }

// AnnotatedWith wraps an expression with metadata annotations.
func AnnotatedWith(inner TypeExpr, metadata ...any) TypeExpr {
	return Annotated{Inner: inner, Metadata: metadata}
}

// NullableOf wraps an expression to also accept null.
func NullableOf(inner TypeExpr) TypeExpr { return Nullable{Inner: inner} }

// ---- resolver ----

// Resolve rewrites expr for the target variant kind. It is a pure structural
// transform and never fails: model references are substituted with the
// matching variant reference, containers and unions recurse over their
// arguments preserving order, annotation metadata passes through unchanged,
// and everything else is returned as-is.
//
// The PatchRequest nullable-with-default-null wrapping is a field-level rule
// and lives in resolveFieldExpr; Resolve itself only retargets references.
func Resolve(expr TypeExpr, kind VariantKind) TypeExpr {
	switch t := expr.(type) {
	case ModelRef:
		return VariantRef{ref: t, Kind: kind}
	case VariantRef:
		return VariantRef{ref: t.ref, Kind: kind}
	case Generic:
		args := make([]TypeExpr, len(t.Args))
		for i, a := range t.Args {
			args[i] = Resolve(a, kind)
		}
		return Generic{Origin: t.Origin, Args: args}
	case Union:
		members := make([]TypeExpr, len(t.Members))
		for i, m := range t.Members {
			members[i] = Resolve(m, kind)
		}
		return Union{Members: members}
	case Annotated:
		return Annotated{Inner: Resolve(t.Inner, kind), Metadata: t.Metadata}
	case Nullable:
		return Nullable{Inner: Resolve(t.Inner, kind)}
	default:
		return expr
	}
}

// resolveFieldExpr applies Resolve plus the PatchRequest wrapping rule: the
// resolved expression becomes nullable unless the original is a literal tag
// (directly or under an annotation). Already-nullable expressions are not
// double-wrapped.
func resolveFieldExpr(expr TypeExpr, kind VariantKind) TypeExpr {
	r := Resolve(expr, kind)
	if kind != KindPatchRequest {
		return r
	}
	switch t := r.(type) {
	case Literal:
		return t
	case Nullable:
		return t
	case Annotated:
		if _, tag := t.Inner.(Literal); tag {
			return t
		}
		if _, already := t.Inner.(Nullable); already {
			return t
		}
		return Annotated{Inner: Nullable{Inner: t.Inner}, Metadata: t.Metadata}
	default:
		return Nullable{Inner: r}
	}
}

// validateExpr rejects malformed authored expressions at definition time.
func validateExpr(model, field string, expr TypeExpr) error {
	switch t := expr.(type) {
	case nil:
		return configErrf(model, "field %q has a nil type expression", field)
	case Literal:
		if t.Value == nil {
			return configErrf(model, "field %q: literal value must not be nil", field)
		}
	case ModelRef:
		if t.model == nil && t.lazy == nil {
			return configErrf(model, "field %q references no model", field)
		}
	case Generic:
		if len(t.Args) != 1 {
			return configErrf(model, "field %q: container takes exactly one argument", field)
		}
		return validateExpr(model, field, t.Args[0])
	case Union:
		if len(t.Members) == 0 {
			return configErrf(model, "field %q: union needs at least one member", field)
		}
		for _, m := range t.Members {
			if err := validateExpr(model, field, m); err != nil {
				return err
			}
		}
	case Annotated:
		return validateExpr(model, field, t.Inner)
	case Nullable:
		return validateExpr(model, field, t.Inner)
	}
	return nil
}
