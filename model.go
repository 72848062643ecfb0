package duality

import (
	"context"
	"sync"
	"sync/atomic"
)

var _modelSeq atomic.Uint64

// ModelSpec is the declarative description of a canonical model. It is the
// explicit builder input (see dsl.Model for the fluent surface): no hidden
// definition-time hooks, just a value handed to Define.
type ModelSpec struct {
	Name     string
	Fields   []Field
	Bases    []*Model
	Config   *Config // nil inherits from the nearest base; required on roots
	Suffixes Suffixes
	// Validator compiles resolved field sets into value-checking models.
	// Inherited from the nearest base when nil; required on roots.
	Validator Validator
}

// Model is a canonical model declaration together with its derived variants.
// The Request variant is synthesized eagerly at Define time because the model
// delegates all parsing to it; Response and PatchRequest are synthesized
// lazily on first access and cached for the lifetime of the model.
type Model struct {
	name      string
	fields    []Field // authored declaration, pre-resolution
	bases     []*Model
	config    Config
	suffixes  Suffixes
	validator Validator
	id        uint64

	request *Variant

	responseOnce sync.Once
	response     *Variant
	responseErr  error

	patchOnce sync.Once
	patch     *Variant
	patchErr  error
}

// Define validates a declaration, propagates config and suffixes from its
// bases, and synthesizes the Request variant. All failure modes are
// ConfigError values: missing config or suffixes on a root declaration, nil
// or duplicate pieces, malformed type expressions.
func Define(spec ModelSpec) (*Model, error) {
	if spec.Name == "" {
		return nil, configErrf("", "model name must not be empty")
	}
	for _, b := range spec.Bases {
		if b == nil {
			return nil, configErrf(spec.Name, "base model must not be nil")
		}
	}
	seen := make(map[string]struct{}, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.Name == "" {
			return nil, configErrf(spec.Name, "field name must not be empty")
		}
		if _, dup := seen[f.Name]; dup {
			return nil, configErrf(spec.Name, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if err := validateExpr(spec.Name, f.Name, f.Type); err != nil {
			return nil, err
		}
	}

	// Suffixes and config inherit from the nearest ancestor that defined
	// them; a root declaration must supply both.
	sfx := spec.Suffixes
	for _, b := range spec.Bases {
		sfx = sfx.Merge(b.suffixes)
	}
	if !sfx.complete() {
		return nil, configErrf(spec.Name, "a root declaration must supply request, response and patchRequest suffixes")
	}
	var cfg Config
	switch {
	case spec.Config != nil:
		cfg = *spec.Config
	case len(spec.Bases) > 0:
		cfg = spec.Bases[0].config
	default:
		return nil, configErrf(spec.Name, "a root declaration must supply a validation config")
	}
	val := spec.Validator
	for i := 0; val == nil && i < len(spec.Bases); i++ {
		val = spec.Bases[i].validator
	}
	if val == nil {
		return nil, configErrf(spec.Name, "no validator supplied or inherited")
	}

	m := &Model{
		name:      spec.Name,
		fields:    append([]Field(nil), spec.Fields...),
		bases:     append([]*Model(nil), spec.Bases...),
		config:    cfg,
		suffixes:  sfx,
		validator: val,
		id:        _modelSeq.Add(1),
	}
	req, err := m.synthesize(KindRequest)
	if err != nil {
		return nil, err
	}
	m.request = req
	return m, nil
}

// MustDefine is like Define but panics on error.
func MustDefine(spec ModelSpec) *Model {
	m, err := Define(spec)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the canonical declared name. Variant display names carry the
// configured suffixes; see Variant.Name.
func (m *Model) Name() string { return m.name }

// DeclaredFields returns the authored field declarations, pre-resolution and
// pre-inheritance.
func (m *Model) DeclaredFields() []Field { return append([]Field(nil), m.fields...) }

// Bases returns the declared base models.
func (m *Model) Bases() []*Model { return append([]*Model(nil), m.bases...) }

// Suffixes returns the effective (inherited) suffix set.
func (m *Model) Suffixes() Suffixes { return m.suffixes }

// Unknown returns the effective unknown-key config for this model.
// UnknownDefault means each variant derives its own policy.
func (m *Model) Unknown() UnknownPolicy { return m.config.Unknown }

// Request returns the eagerly built strict variant.
func (m *Model) Request() *Variant { return m.request }

// Response returns the lenient variant, synthesizing it on first access. The
// result is cached: repeated calls return the identical object.
func (m *Model) Response() *Variant {
	m.responseOnce.Do(func() {
		m.response, m.responseErr = m.synthesize(KindResponse)
	})
	if m.response == nil {
		// unreachable for models that passed Define validation
		panic(m.responseErr)
	}
	return m.response
}

// PatchRequest returns the partial-update variant, synthesizing it on first
// access from the already-built Request variant's field set.
func (m *Model) PatchRequest() *Variant {
	m.patchOnce.Do(func() {
		m.patch, m.patchErr = m.synthesize(KindPatchRequest)
	})
	if m.patch == nil {
		// unreachable for models that passed Define validation
		panic(m.patchErr)
	}
	return m.patch
}

// Variant returns the derived variant for the given kind.
func (m *Model) Variant(kind VariantKind) *Variant {
	switch kind {
	case KindResponse:
		return m.Response()
	case KindPatchRequest:
		return m.PatchRequest()
	default:
		return m.request
	}
}

// Fields returns the Request variant's resolved field set. Reads on the
// canonical model route to its Request variant.
func (m *Model) Fields() []Field { return m.request.Fields() }

// Descriptors returns the Request variant's per-field descriptor map.
func (m *Model) Descriptors() map[string]Field { return m.request.Descriptors() }

// Parse constructs an instance through the Request variant: building a
// canonical model is always building its strict Request form.
func (m *Model) Parse(ctx context.Context, v any) (*Instance, error) {
	return m.request.Parse(ctx, v)
}

// synthesize builds one concrete variant. Request and Response resolve the
// authored fields against the target kind, layering base variant fields
// underneath. PatchRequest derives from the Request variant's resolved field
// set so defaulting and inheritance are already applied, then retargets
// nested references and makes every non-tag field optional with default null.
func (m *Model) synthesize(kind VariantKind) (*Variant, error) {
	var (
		fields []Field
		bases  []*Variant
	)
	if kind == KindPatchRequest {
		for _, b := range m.bases {
			bases = append(bases, b.PatchRequest())
		}
		src := m.request.fields
		fields = make([]Field, len(src))
		for i, f := range src {
			fields[i] = patchField(f)
		}
	} else {
		var baseFields []Field
		for _, b := range m.bases {
			bv := b.Variant(kind)
			bases = append(bases, bv)
			baseFields = mergeFields(baseFields, bv.fields)
		}
		own := make([]Field, len(m.fields))
		for i, f := range m.fields {
			rf := f
			rf.Type = resolveFieldExpr(f.Type, kind)
			own[i] = rf
		}
		fields = mergeFields(baseFields, own)
	}

	unknown := m.config.Unknown
	if unknown == UnknownDefault {
		unknown = kind.derivedUnknown()
	}
	name := m.name + m.suffixes.forKind(kind)

	compiled, err := m.validator.Compile(CompiledSpec{Name: name, Fields: fields, Unknown: unknown})
	if err != nil {
		if ce, ok := err.(*ConfigError); ok {
			return nil, ce
		}
		return nil, configErrf(m.name, "validator rejected %s variant: %v", kind, err)
	}
	return &Variant{
		kind:     kind,
		name:     name,
		model:    m,
		fields:   fields,
		bases:    bases,
		unknown:  unknown,
		compiled: compiled,
	}, nil
}

// patchField rewrites one Request field for the PatchRequest variant: nested
// references retarget to PatchRequest, the type becomes nullable, the field
// turns optional with default null regardless of any original default. Tag
// fields keep their type and required flag so union dispatch still works.
func patchField(f Field) Field {
	f.Type = resolveFieldExpr(f.Type, KindPatchRequest)
	if f.IsTag() {
		return f
	}
	f.Required = false
	f.HasDefault = true
	f.Default = nil
	return f
}
