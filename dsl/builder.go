// Package dsl is the schema-author surface: a fluent builder over
// duality.Define plus a declarative YAML loader. It wires the default
// validator engine into every root declaration.
package dsl

import (
	duality "github.com/reoring/duality"
	"github.com/reoring/duality/internal/engine"
)

type modelBuilder struct {
	name      string
	fields    []duality.Field
	bases     []*duality.Model
	config    *duality.Config
	suffixes  duality.Suffixes
	validator duality.Validator
}

type fieldStep struct {
	b   *modelBuilder
	idx int
}

// Model creates a new canonical-model builder. A root declaration must still
// supply a config and all three suffixes (or extend a base that does); use
// Base for a builder pre-seeded with the conventional defaults.
func Model(name string) *modelBuilder {
	return &modelBuilder{name: name}
}

// Base is Model with the conventional root defaults applied: an empty config
// (per-variant derived strictness) and the Request/Response/PatchRequest
// suffixes.
func Base(name string) *modelBuilder {
	b := Model(name)
	cfg := duality.Config{}
	b.config = &cfg
	b.suffixes = duality.DefaultSuffixes()
	return b
}

// Field registers a field with its type expression. Fields are optional until
// marked Required.
func (b *modelBuilder) Field(name string, t duality.TypeExpr) *fieldStep {
	b.fields = append(b.fields, duality.Field{Name: name, Type: t})
	return &fieldStep{b: b, idx: len(b.fields) - 1}
}

// Required marks the field as required.
func (f *fieldStep) Required() *fieldStep {
	f.b.fields[f.idx].Required = true
	return f
}

// Optional marks the field as optional (the default).
func (f *fieldStep) Optional() *fieldStep {
	f.b.fields[f.idx].Required = false
	return f
}

// Default sets a default for the current field.
func (f *fieldStep) Default(v any) *fieldStep {
	f.b.fields[f.idx].HasDefault = true
	f.b.fields[f.idx].Default = v
	return f
}

// Meta attaches metadata annotations to the current field.
func (f *fieldStep) Meta(vals ...any) *fieldStep {
	f.b.fields[f.idx].Metadata = append(f.b.fields[f.idx].Metadata, vals...)
	return f
}

func (f *fieldStep) Field(name string, t duality.TypeExpr) *fieldStep { return f.b.Field(name, t) }
func (f *fieldStep) Extends(bases ...*duality.Model) *modelBuilder    { return f.b.Extends(bases...) }
func (f *fieldStep) Suffixes(req, resp, patch string) *modelBuilder {
	return f.b.Suffixes(req, resp, patch)
}
func (f *fieldStep) RequestSuffix(s string) *modelBuilder      { return f.b.RequestSuffix(s) }
func (f *fieldStep) ResponseSuffix(s string) *modelBuilder     { return f.b.ResponseSuffix(s) }
func (f *fieldStep) PatchRequestSuffix(s string) *modelBuilder { return f.b.PatchRequestSuffix(s) }
func (f *fieldStep) Unknown(p duality.UnknownPolicy) *modelBuilder { return f.b.Unknown(p) }
func (f *fieldStep) Config(c duality.Config) *modelBuilder         { return f.b.Config(c) }
func (f *fieldStep) Build() (*duality.Model, error)                { return f.b.Build() }
func (f *fieldStep) MustBuild() *duality.Model                     { return f.b.MustBuild() }

// Extends declares base canonical models. Suffixes, config and the validator
// inherit from them unless overridden at this level.
func (b *modelBuilder) Extends(bases ...*duality.Model) *modelBuilder {
	b.bases = append(b.bases, bases...)
	return b
}

// Unknown sets the explicit unknown-key policy for this model, overriding the
// per-variant derived defaults on all three variants.
func (b *modelBuilder) Unknown(p duality.UnknownPolicy) *modelBuilder {
	b.config = &duality.Config{Unknown: p}
	return b
}

// Config sets the full validation config.
func (b *modelBuilder) Config(c duality.Config) *modelBuilder {
	b.config = &c
	return b
}

// Suffixes sets all three variant name suffixes.
func (b *modelBuilder) Suffixes(req, resp, patch string) *modelBuilder {
	b.suffixes = duality.Suffixes{Request: req, Response: resp, PatchRequest: patch}
	return b
}

// RequestSuffix overrides only the Request suffix at this level; the others
// keep inheriting.
func (b *modelBuilder) RequestSuffix(s string) *modelBuilder {
	b.suffixes.Request = s
	return b
}

// ResponseSuffix overrides only the Response suffix at this level.
func (b *modelBuilder) ResponseSuffix(s string) *modelBuilder {
	b.suffixes.Response = s
	return b
}

// PatchRequestSuffix overrides only the PatchRequest suffix at this level.
func (b *modelBuilder) PatchRequestSuffix(s string) *modelBuilder {
	b.suffixes.PatchRequest = s
	return b
}

// Validator replaces the validator collaborator for this model and its
// undeclared descendants.
func (b *modelBuilder) Validator(v duality.Validator) *modelBuilder {
	b.validator = v
	return b
}

// Build validates the declaration and synthesizes the Request variant. Root
// declarations default to the built-in engine validator.
func (b *modelBuilder) Build() (*duality.Model, error) {
	val := b.validator
	if val == nil && len(b.bases) == 0 {
		val = engine.Default()
	}
	return duality.Define(duality.ModelSpec{
		Name:      b.name,
		Fields:    b.fields,
		Bases:     b.bases,
		Config:    b.config,
		Suffixes:  b.suffixes,
		Validator: val,
	})
}

// MustBuild is like Build but panics on error.
func (b *modelBuilder) MustBuild() *duality.Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
