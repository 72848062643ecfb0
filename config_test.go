package duality_test

import (
	"context"
	"strings"
	"testing"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/dsl"
)

func defineExpectingConfigError(t *testing.T, spec duality.ModelSpec, want string) {
	t.Helper()
	_, err := duality.Define(spec)
	if err == nil {
		t.Fatalf("expected ConfigError containing %q, got nil", want)
	}
	ce, ok := err.(*duality.ConfigError)
	if !ok {
		t.Fatalf("expected *ConfigError, got %T: %v", err, err)
	}
	if !strings.Contains(ce.Error(), want) {
		t.Fatalf("error %q does not mention %q", ce.Error(), want)
	}
}

func TestDefine_RejectsMalformedDeclarations(t *testing.T) {
	id := duality.Field{Name: "id", Type: duality.String(), Required: true}

	defineExpectingConfigError(t, duality.ModelSpec{}, "name must not be empty")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Bases: []*duality.Model{nil},
	}, "base model must not be nil")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Fields: []duality.Field{{Name: "", Type: duality.String()}},
	}, "field name must not be empty")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Fields: []duality.Field{id, id},
	}, "duplicate field")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Fields: []duality.Field{{Name: "x"}},
	}, "nil type expression")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Fields: []duality.Field{{Name: "x", Type: duality.LiteralOf(nil)}},
	}, "literal value must not be nil")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name: "M", Fields: []duality.Field{{Name: "x", Type: duality.UnionOf()}},
	}, "union needs at least one member")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name:   "M",
		Config: &duality.Config{},
		Fields: []duality.Field{id},
	}, "suffixes")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name:     "M",
		Suffixes: duality.DefaultSuffixes(),
		Fields:   []duality.Field{id},
	}, "validation config")

	defineExpectingConfigError(t, duality.ModelSpec{
		Name:     "M",
		Config:   &duality.Config{},
		Suffixes: duality.DefaultSuffixes(),
		Fields:   []duality.Field{id},
	}, "no validator")
}

func TestConfig_DerivedUnknownPerVariant(t *testing.T) {
	u := newUser(t)
	if got := u.Request().Unknown(); got != duality.UnknownStrict {
		t.Fatalf("request unknown = %v", got)
	}
	if got := u.Response().Unknown(); got != duality.UnknownStrip {
		t.Fatalf("response unknown = %v", got)
	}
	if got := u.PatchRequest().Unknown(); got != duality.UnknownStrict {
		t.Fatalf("patch unknown = %v", got)
	}
}

func TestConfig_ExplicitUnknownAppliesToAllVariants(t *testing.T) {
	ctx := context.Background()
	m := dsl.Base("Loose").
		Unknown(duality.UnknownStrip).
		Field("id", duality.String()).Required().
		MustBuild()

	for _, v := range []*duality.Variant{m.Request(), m.Response(), m.PatchRequest()} {
		if got := v.Unknown(); got != duality.UnknownStrip {
			t.Fatalf("%s unknown = %v", v.Name(), got)
		}
	}
	inst, err := m.Parse(ctx, map[string]any{"id": "1", "extra": "ok"})
	if err != nil {
		t.Fatalf("strip request must accept unknown keys: %v", err)
	}
	if _, ok := inst.Get("extra"); ok {
		t.Fatalf("stripped key must not survive")
	}

	strict := dsl.Base("Tight").
		Unknown(duality.UnknownStrict).
		Field("id", duality.String()).Required().
		MustBuild()
	_, err = strict.Response().Parse(ctx, map[string]any{"id": "1", "extra": "no"})
	iss, ok := duality.AsIssues(err)
	if !ok || iss[0].Code != duality.CodeUnknownKey {
		t.Fatalf("strict response must reject unknown keys, got %v", err)
	}
}

func TestConfig_ChildInheritsBaseConfig(t *testing.T) {
	ctx := context.Background()
	parent := dsl.Base("LooseParent").
		Unknown(duality.UnknownStrip).
		Field("id", duality.String()).Required().
		MustBuild()
	child := dsl.Model("LooseChild").
		Extends(parent).
		Field("name", duality.String()).
		MustBuild()

	if _, err := child.Parse(ctx, map[string]any{"id": "1", "extra": true}); err != nil {
		t.Fatalf("inherited strip config: %v", err)
	}
}
