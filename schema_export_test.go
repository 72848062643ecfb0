package duality_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/dsl"
	"github.com/reoring/duality/jsonschema"
)

func TestJSONSchema_RequestIsClosed(t *testing.T) {
	u := newUser(t)
	got, err := u.Request().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":   {Type: "string"},
			"name": {Type: "string", Default: "anonymous"},
		},
		Required:             []string{"id"},
		AdditionalProperties: false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONSchema_ResponseIsOpen(t *testing.T) {
	u := newUser(t)
	got, err := u.Response().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got.AdditionalProperties != true {
		t.Fatalf("response must allow additional properties, got %v", got.AdditionalProperties)
	}
}

func TestJSONSchema_NestedModelBecomesDef(t *testing.T) {
	inner := dsl.Base("Address").
		Field("city", duality.String()).Required().
		MustBuild()
	outer := dsl.Base("Customer").
		Field("home", duality.Ref(inner)).Required().
		MustBuild()

	got, err := outer.Request().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	home := got.Properties["home"]
	if home.Ref != "#/$defs/AddressRequest" {
		t.Fatalf("home ref = %q", home.Ref)
	}
	def, ok := got.Defs["AddressRequest"]
	if !ok {
		t.Fatalf("missing $defs entry, have %v", got.Defs)
	}
	if def.Properties["city"].Type != "string" {
		t.Fatalf("nested def incomplete: %+v", def)
	}
}

func TestJSONSchema_SelfReferenceDoesNotRecurse(t *testing.T) {
	var node *duality.Model
	node = dsl.Base("Node").
		Field("value", duality.Int()).Required().
		Field("next", duality.LazyRef(func() *duality.Model { return node })).
		MustBuild()

	got, err := node.Request().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	next := got.Properties["next"]
	if next.Ref != "#/$defs/NodeRequest" {
		t.Fatalf("next ref = %q", next.Ref)
	}
	// the self-referential def must stay registered so the ref resolves
	if _, ok := got.Defs["NodeRequest"]; !ok {
		t.Fatalf("self-referential def missing")
	}
}

func TestJSONSchema_PatchFieldsAreNullableWithNullDefault(t *testing.T) {
	u := newUser(t)
	got, err := u.PatchRequest().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	id := got.Properties["id"]
	if len(id.OneOf) != 2 || id.OneOf[1].Type != "null" {
		t.Fatalf("patch field should be a oneOf with null, got %+v", id)
	}
	if len(got.Required) != 0 {
		t.Fatalf("patch schema should require nothing, got %v", got.Required)
	}
}

func TestJSONSchema_LiteralTagExportsConst(t *testing.T) {
	m := dsl.Base("Event").
		Field("type", duality.LiteralOf("created")).Required().
		Field("payload", duality.MapOf(duality.Any())).
		MustBuild()

	got, err := m.Request().JSONSchema()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got.Properties["type"].Const != "created" {
		t.Fatalf("tag const = %v", got.Properties["type"].Const)
	}
	payload := got.Properties["payload"]
	if payload.Type != "object" || payload.AdditionalProperties == nil {
		t.Fatalf("map export = %+v", payload)
	}
}
