package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/dsl"
)

func TestBuilder_BaseDefaults(t *testing.T) {
	m, err := dsl.Base("Account").
		Field("id", duality.String()).Required().
		Field("plan", duality.String()).Default("free").
		Build()
	require.NoError(t, err)

	require.Equal(t, "AccountRequest", m.Request().Name())
	require.Equal(t, "AccountResponse", m.Response().Name())
	require.Equal(t, "AccountPatchRequest", m.PatchRequest().Name())

	inst, err := m.Parse(context.Background(), map[string]any{"id": "a-1"})
	require.NoError(t, err)
	plan, ok := inst.Get("plan")
	require.True(t, ok)
	require.Equal(t, "free", plan)
	require.True(t, inst.DefaultApplied("plan"))
}

func TestBuilder_ModelWithoutConfigFails(t *testing.T) {
	_, err := dsl.Model("Bare").
		Field("id", duality.String()).Required().
		Build()
	require.Error(t, err)
	var ce *duality.ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestBuilder_ExtendsInheritsEverything(t *testing.T) {
	parent := dsl.Base("Animal").
		Field("name", duality.String()).Required().
		MustBuild()

	child, err := dsl.Model("Lion").
		Extends(parent).
		Field("pride", duality.String()).
		Build()
	require.NoError(t, err)

	require.Equal(t, "LionRequest", child.Request().Name())
	fields := child.Fields()
	require.Len(t, fields, 2)
	require.Equal(t, "name", fields[0].Name)
	require.Equal(t, "pride", fields[1].Name)
	require.True(t, duality.DescendsFrom(child.Request(), parent.Request()))
}

func TestBuilder_ChildOverridesField(t *testing.T) {
	parent := dsl.Base("Doc").
		Field("body", duality.String()).Required().
		MustBuild()
	child := dsl.Model("Draft").
		Extends(parent).
		Field("body", duality.String()).Default("").
		MustBuild()

	inst, err := child.Parse(context.Background(), map[string]any{})
	require.NoError(t, err)
	body, ok := inst.Get("body")
	require.True(t, ok)
	require.Equal(t, "", body)
}

func TestBuilder_MetaReachesDescriptors(t *testing.T) {
	m := dsl.Base("Contact").
		Field("email", duality.String()).Meta("format:email").Required().
		MustBuild()

	desc := m.Descriptors()
	require.Contains(t, desc, "email")
	require.Equal(t, []any{"format:email"}, desc["email"].Metadata)
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	require.Panics(t, func() {
		dsl.Base("").MustBuild()
	})
}
