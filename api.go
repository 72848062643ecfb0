package duality

import "context"

// Validator is the collaborator boundary: it compiles a resolved field set
// plus a concrete unknown-key policy into an opaque model capable of value
// checking. The default implementation lives in internal/engine and is wired
// in by the dsl package; callers may supply their own.
type Validator interface {
	Compile(spec CompiledSpec) (CompiledModel, error)
}

// CompiledSpec is the input handed to a Validator: the variant's display
// name, its fully resolved fields, and the concrete unknown-key policy.
type CompiledSpec struct {
	Name    string
	Fields  []Field
	Unknown UnknownPolicy
}

// CompiledModel is the opaque product of Validator.Compile. Parse performs
// the actual value checking against a raw mapping and reports presence
// metadata for every field it touched; failures are Issues.
type CompiledModel interface {
	Parse(ctx context.Context, raw map[string]any) (map[string]any, PresenceMap, error)
	Descriptors() map[string]Field
}

// ---- Parse-time context options ----

type contextKey int

const _ctxKeyFailFast contextKey = iota

// WithFailFast returns a child context that marks fail-fast parsing behavior.
// Validator implementations consult it to stop on the first issue.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
