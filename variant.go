package duality

import "context"

// Variant is one concrete derived type: the resolved field set, the concrete
// unknown-key policy, the compiled validator output, and back-references to
// the owning model. The three variants of a model cross-link through the
// model's cache, so arbitrarily long accessor chains resolve to the same
// cached objects.
type Variant struct {
	kind     VariantKind
	name     string
	model    *Model
	fields   []Field
	bases    []*Variant
	unknown  UnknownPolicy
	compiled CompiledModel
}

// Kind returns the variant kind.
func (v *Variant) Kind() VariantKind { return v.kind }

// Name returns the display name: the canonical name plus the effective suffix.
func (v *Variant) Name() string { return v.name }

// Model returns the canonical model this variant derives from.
func (v *Variant) Model() *Model { return v.model }

// Fields returns the resolved field set in declaration order.
func (v *Variant) Fields() []Field { return append([]Field(nil), v.fields...) }

// Field looks up a resolved field by name.
func (v *Variant) Field(name string) (Field, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Descriptors returns the per-field descriptor map of the compiled model.
func (v *Variant) Descriptors() map[string]Field { return v.compiled.Descriptors() }

// Unknown returns the concrete unknown-key policy of this variant.
func (v *Variant) Unknown() UnknownPolicy { return v.unknown }

// Bases returns the same-kind variants of the declared base models.
func (v *Variant) Bases() []*Variant { return append([]*Variant(nil), v.bases...) }

// Compiled exposes the validator collaborator's opaque model, mainly for
// nested parsing and advanced integrations.
func (v *Variant) Compiled() CompiledModel { return v.compiled }

// Request returns the owning model's Request variant.
func (v *Variant) Request() *Variant { return v.model.Request() }

// Response returns the owning model's Response variant, synthesizing it on
// first access.
func (v *Variant) Response() *Variant { return v.model.Response() }

// PatchRequest returns the owning model's PatchRequest variant, synthesizing
// it on first access.
func (v *Variant) PatchRequest() *Variant { return v.model.PatchRequest() }

// Parse validates a raw value against this variant and returns an Instance.
// The input must be a mapping; failures are Issues from the validator,
// propagated unchanged.
func (v *Variant) Parse(ctx context.Context, raw any) (*Instance, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, Issues{Issue{Path: "/", Code: CodeInvalidType, Message: "expected object", Hint: "expected object"}}
	}
	value, pm, err := v.compiled.Parse(ctx, m)
	if err != nil {
		return nil, err
	}
	return &Instance{variant: v, value: value, presence: pm}, nil
}

// Instance is a parsed value bound to the variant that produced it.
type Instance struct {
	variant  *Variant
	value    map[string]any
	presence PresenceMap
}

// Variant returns the variant this instance was constructed through.
func (i *Instance) Variant() *Variant { return i.variant }

// Value returns the validated field mapping.
func (i *Instance) Value() map[string]any { return i.value }

// Get returns a field value by name.
func (i *Instance) Get(name string) (any, bool) {
	val, ok := i.value[name]
	return val, ok
}

// Presence returns the collected presence metadata.
func (i *Instance) Presence() PresenceMap { return i.presence }

// Seen reports whether the named top-level field appeared in the input.
func (i *Instance) Seen(name string) bool {
	return i.presence["/"+name]&PresenceSeen != 0
}

// WasNull reports whether the named top-level field was explicitly null.
func (i *Instance) WasNull(name string) bool {
	return i.presence["/"+name]&PresenceWasNull != 0
}

// DefaultApplied reports whether the named field was materialized from its
// default rather than the input.
func (i *Instance) DefaultApplied(name string) bool {
	return i.presence["/"+name]&PresenceDefaultApplied != 0
}
