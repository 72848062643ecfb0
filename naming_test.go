package duality_test

import (
	"errors"
	"testing"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/dsl"
)

func TestNaming_DefaultSuffixes(t *testing.T) {
	u := newUser(t)
	if got := u.Request().Name(); got != "UserRequest" {
		t.Fatalf("request name = %q", got)
	}
	if got := u.Response().Name(); got != "UserResponse" {
		t.Fatalf("response name = %q", got)
	}
	if got := u.PatchRequest().Name(); got != "UserPatchRequest" {
		t.Fatalf("patch name = %q", got)
	}
}

func TestNaming_SuffixOverrideIsInherited(t *testing.T) {
	parent := dsl.Base("Parent").
		Field("id", duality.String()).Required().
		MustBuild()

	child := dsl.Model("Child").
		Extends(parent).
		RequestSuffix("Req").
		Field("extra", duality.Int()).
		MustBuild()

	if got := child.Request().Name(); got != "ChildReq" {
		t.Fatalf("child request name = %q", got)
	}
	// the other two fall back to the parent's suffixes
	if got := child.Response().Name(); got != "ChildResponse" {
		t.Fatalf("child response name = %q", got)
	}

	grandchild := dsl.Model("Grandchild").
		Extends(child).
		MustBuild()
	if got := grandchild.Request().Name(); got != "GrandchildReq" {
		t.Fatalf("grandchild inherits the override, got %q", got)
	}
	if got := grandchild.PatchRequest().Name(); got != "GrandchildPatchRequest" {
		t.Fatalf("grandchild patch name = %q", got)
	}
}

func TestNaming_RootMustSupplyAllSuffixes(t *testing.T) {
	_, err := duality.Define(duality.ModelSpec{
		Name:     "Orphan",
		Config:   &duality.Config{},
		Suffixes: duality.Suffixes{Request: "Req"}, // incomplete and no base
		Fields:   []duality.Field{{Name: "id", Type: duality.String(), Required: true}},
	})
	var cfgErr *duality.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
