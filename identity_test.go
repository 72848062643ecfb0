package duality_test

import (
	"context"
	"testing"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/dsl"
)

func newUser(t *testing.T) *duality.Model {
	t.Helper()
	return dsl.Base("User").
		Field("id", duality.String()).Required().
		Field("name", duality.String()).Default("anonymous").
		MustBuild()
}

func TestIdentity_ModelEqualsRequest(t *testing.T) {
	m := newUser(t)

	if !m.Equal(m.Request()) {
		t.Fatalf("model must equal its request variant")
	}
	if !m.Request().Equal(m) {
		t.Fatalf("request variant must equal its model")
	}
	if !duality.Equal(m, m.Request()) || !duality.Equal(m.Request(), m) {
		t.Fatalf("Equal must be symmetric across the model/request pair")
	}
	if m.HashKey() != m.Request().HashKey() {
		t.Fatalf("model and request must share one hash key")
	}
	if m.Equal(m.Response()) {
		t.Fatalf("model must not equal its response variant")
	}
	if m.Equal(m.PatchRequest()) {
		t.Fatalf("model must not equal its patchRequest variant")
	}
}

func TestIdentity_VariantsPairwiseDistinct(t *testing.T) {
	m := newUser(t)
	req, resp, patch := m.Request(), m.Response(), m.PatchRequest()

	if req.Equal(resp) || resp.Equal(patch) || req.Equal(patch) {
		t.Fatalf("the three variants must be pairwise distinct")
	}
	if req.HashKey() == resp.HashKey() || resp.HashKey() == patch.HashKey() || req.HashKey() == patch.HashKey() {
		t.Fatalf("variant hash keys must be pairwise distinct")
	}
}

func TestIdentity_DistinctModelsDiffer(t *testing.T) {
	a := newUser(t)
	b := newUser(t)
	if a.Equal(b) || a.HashKey() == b.HashKey() {
		t.Fatalf("two separate declarations must not collapse into one identity")
	}
}

func TestDescendsFrom_Rules(t *testing.T) {
	parent := newUser(t)
	child := dsl.Model("Child").
		Field("role", duality.String()).Required().
		Extends(parent).
		MustBuild()

	if !duality.DescendsFrom(parent, parent) {
		t.Fatalf("ancestry must be reflexive")
	}
	if duality.DescendsFrom(parent, parent.Request()) || duality.DescendsFrom(parent.Request(), parent) {
		t.Fatalf("a model and its request variant are equal but not each other's subclasses")
	}
	if !duality.DescendsFrom(child, parent) {
		t.Fatalf("child must descend from parent")
	}
	if !duality.DescendsFrom(child.Request(), parent) {
		t.Fatalf("child request must descend from the canonical parent")
	}
	if !duality.DescendsFrom(child.Request(), parent.Request()) {
		t.Fatalf("child request must descend from parent request")
	}
	if !duality.DescendsFrom(child.Response(), parent.Response()) {
		t.Fatalf("child response must descend from parent response")
	}
	if duality.DescendsFrom(parent, child) {
		t.Fatalf("parent must not descend from child")
	}
}

func TestInstanceOf(t *testing.T) {
	ctx := context.Background()
	parent := newUser(t)
	child := dsl.Model("Child").
		Field("role", duality.String()).Required().
		Extends(parent).
		MustBuild()

	inst, err := parent.Parse(ctx, map[string]any{"id": "u1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !duality.InstanceOf(inst, parent) {
		t.Fatalf("instance built through the model must be an instance of it")
	}
	if !duality.InstanceOf(inst, parent.Request()) {
		t.Fatalf("instance must be an instance of the request variant")
	}
	if duality.InstanceOf(inst, parent.Response()) {
		t.Fatalf("a request instance is not a response instance")
	}

	ci, err := child.Parse(ctx, map[string]any{"id": "u2", "role": "admin"})
	if err != nil {
		t.Fatalf("parse child: %v", err)
	}
	if !duality.InstanceOf(ci, parent) {
		t.Fatalf("child instance must count as a parent instance")
	}
	if duality.InstanceOf(inst, child) {
		t.Fatalf("parent instance must not count as a child instance")
	}
}
