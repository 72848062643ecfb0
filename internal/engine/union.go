package engine

import (
	"context"
	"sort"
	"sync"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/i18n"
)

// compileUnion builds an ordered union: members are tried first to last and
// the first match wins. When every member is a model reference exposing a
// shared required literal tag field, dispatch switches to the tag value and
// reports discriminator issues instead of a generic mismatch.
//
// Tag detection needs the member variants, so it runs lazily on first parse;
// doing it at compile time would force variant construction mid-synthesis and
// reintroduce the reference cycles the lazy cache exists to break.
func compileUnion(u duality.Union) (parseFn, error) {
	fns := make([]parseFn, len(u.Members))
	for i, m := range u.Members {
		fn, err := compileExpr(m)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	up := &unionPlan{members: u.Members, fns: fns}
	return up.parse, nil
}

type unionPlan struct {
	members []duality.TypeExpr
	fns     []parseFn

	once     sync.Once
	tagKey   string
	tagIndex map[string]int // literalKey(tag value) -> member index
}

func (u *unionPlan) parse(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
	u.once.Do(u.detectTag)
	if u.tagKey != "" {
		return u.dispatch(ctx, path, v)
	}
	return u.tryInOrder(ctx, path, v)
}

func (u *unionPlan) dispatch(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, nil, invalidType(path, "expected object")
	}
	tv, present := m[u.tagKey]
	if !present || tv == nil {
		return nil, nil, duality.Issues{duality.Issue{Path: path + "/" + u.tagKey, Code: duality.CodeDiscriminatorMissing, Message: i18n.T(duality.CodeDiscriminatorMissing, nil), Hint: "discriminator missing"}}
	}
	idx, known := u.tagIndex[literalKey(tv)]
	if !known {
		return nil, nil, duality.Issues{duality.Issue{Path: path + "/" + u.tagKey, Code: duality.CodeDiscriminatorUnknown, Message: i18n.T(duality.CodeDiscriminatorUnknown, nil), Hint: "unknown variant: " + literalKey(tv)}}
	}
	return u.fns[idx](ctx, path, v)
}

func (u *unionPlan) tryInOrder(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
	var first duality.Issues
	for _, fn := range u.fns {
		parsed, pm, iss := fn(ctx, path, v)
		if len(iss) == 0 {
			return parsed, pm, nil
		}
		if first == nil {
			first = iss
		}
	}
	out := duality.Issues{duality.Issue{
		Path:    path,
		Code:    duality.CodeUnionNoMatch,
		Message: i18n.T(duality.CodeUnionNoMatch, nil),
		Hint:    "no union member matched",
		Params:  map[string]any{"members": len(u.fns)},
	}}
	return nil, nil, duality.AppendIssues(out, first...)
}

// detectTag looks for a required literal field shared by every member model
// with pairwise-distinct values. Candidate names resolve in sorted order so
// detection is deterministic.
func (u *unionPlan) detectTag() {
	variants := make([]*duality.Variant, len(u.members))
	for i, m := range u.members {
		vr, ok := m.(duality.VariantRef)
		if !ok {
			return
		}
		nested := vr.Variant()
		if nested == nil {
			return
		}
		variants[i] = nested
	}
	candidates := tagCandidates(variants[0])
	for _, v := range variants[1:] {
		next := tagCandidates(v)
		for name := range candidates {
			if _, ok := next[name]; !ok {
				delete(candidates, name)
			}
		}
	}
	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		index := make(map[string]int, len(variants))
		ok := true
		for i, v := range variants {
			f, _ := v.Field(name)
			key := literalKey(tagValue(f.Type))
			if _, dup := index[key]; dup {
				ok = false
				break
			}
			index[key] = i
		}
		if ok {
			u.tagKey = name
			u.tagIndex = index
			return
		}
	}
}

// tagCandidates returns the required literal-typed field names of a variant.
func tagCandidates(v *duality.Variant) map[string]struct{} {
	out := map[string]struct{}{}
	for _, f := range v.Fields() {
		if f.Required && f.IsTag() {
			out[f.Name] = struct{}{}
		}
	}
	return out
}

// tagValue unwraps the literal value beneath optional annotations.
func tagValue(e duality.TypeExpr) any {
	switch t := e.(type) {
	case duality.Literal:
		return t.Value
	case duality.Annotated:
		return tagValue(t.Inner)
	default:
		return nil
	}
}
