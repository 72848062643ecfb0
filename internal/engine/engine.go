// Package engine is the default Validator implementation: it compiles a
// resolved field set into a value-checking model. Nested variant references
// are looked up at parse time, never at compile time, so compiling a variant
// of a self-referential or mutually-referencing model terminates.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/i18n"
)

// Default returns the built-in validator.
func Default() duality.Validator { return validator{} }

type validator struct{}

func (validator) Compile(spec duality.CompiledSpec) (duality.CompiledModel, error) {
	c := &compiled{
		name:        spec.Name,
		fields:      make(map[string]plan, len(spec.Fields)),
		required:    make(map[string]struct{}),
		descriptors: make(map[string]duality.Field, len(spec.Fields)),
		unknown:     spec.Unknown,
	}
	for _, f := range spec.Fields {
		fn, err := compileExpr(f.Type)
		if err != nil {
			return nil, err
		}
		c.fields[f.Name] = plan{field: f, parse: fn}
		c.descriptors[f.Name] = f
		if f.Required {
			c.required[f.Name] = struct{}{}
		}
	}
	// cache sorted keys for deterministic order without per-parse sorting
	kfs := make([]string, 0, len(c.fields))
	for k := range c.fields {
		kfs = append(kfs, k)
	}
	sort.Strings(kfs)
	c.sortedKeys = kfs
	return c, nil
}

// parseFn validates one value. path anchors issue paths and presence entries;
// the returned PresenceMap carries nested-model presence, already rebased.
type parseFn func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues)

type plan struct {
	field duality.Field
	parse parseFn
}

type compiled struct {
	name        string
	fields      map[string]plan
	required    map[string]struct{}
	sortedKeys  []string
	unknown     duality.UnknownPolicy
	descriptors map[string]duality.Field
}

var _ duality.CompiledModel = (*compiled)(nil)

func (c *compiled) Descriptors() map[string]duality.Field {
	out := make(map[string]duality.Field, len(c.descriptors))
	for k, v := range c.descriptors {
		out[k] = v
	}
	return out
}

func (c *compiled) Parse(ctx context.Context, src map[string]any) (map[string]any, duality.PresenceMap, error) {
	pm := duality.PresenceMap{"/": duality.PresenceSeen}
	out := make(map[string]any, len(src))
	var iss duality.Issues
	for _, k := range c.sortedKeys {
		pl := c.fields[k]
		if val, exists := src[k]; exists {
			pm["/"+k] |= duality.PresenceSeen
			if val == nil {
				pm["/"+k] |= duality.PresenceWasNull
			}
			parsed, cpm, i2 := pl.parse(ctx, "/"+k, val)
			if len(i2) > 0 {
				iss = duality.AppendIssues(iss, i2...)
				if duality.IsFailFast(ctx) {
					return nil, pm, iss
				}
				continue
			}
			pm = duality.MergePresence(pm, cpm)
			out[k] = parsed
			continue
		}
		// missing: apply default when declared, otherwise enforce required
		if pl.field.HasDefault {
			pm["/"+k] |= duality.PresenceDefaultApplied
			out[k] = pl.field.Default
			continue
		}
		if _, req := c.required[k]; req {
			iss = duality.AppendIssues(iss, duality.Issue{Path: "/" + k, Code: duality.CodeRequired, Message: i18n.T(duality.CodeRequired, nil), Hint: "required property missing"})
			if duality.IsFailFast(ctx) {
				return nil, pm, iss
			}
		}
	}
	iss = duality.AppendIssues(iss, c.collectUnknown(src)...)
	if len(iss) > 0 {
		return nil, pm, iss
	}
	return out, pm, nil
}

// collectUnknown reports or drops unknown keys according to the policy, in
// key-sorted order.
func (c *compiled) collectUnknown(src map[string]any) duality.Issues {
	if c.unknown != duality.UnknownStrict {
		return nil
	}
	var uks []string
	for k := range src {
		if _, known := c.fields[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	var iss duality.Issues
	for _, k := range uks {
		iss = duality.AppendIssues(iss, duality.Issue{Path: "/" + k, Code: duality.CodeUnknownKey, Message: i18n.T(duality.CodeUnknownKey, nil)})
	}
	return iss
}

// ---- expression compilation ----

func compileExpr(e duality.TypeExpr) (parseFn, error) {
	switch t := e.(type) {
	case duality.Primitive:
		return compilePrimitive(t.Kind), nil
	case duality.Literal:
		return compileLiteral(t.Value), nil
	case duality.VariantRef:
		return compileVariantRef(t), nil
	case duality.ModelRef:
		return nil, &duality.ConfigError{Reason: "unresolved model reference; resolve the expression before compiling"}
	case duality.Generic:
		inner, err := compileExpr(t.Args[0])
		if err != nil {
			return nil, err
		}
		if t.Origin == duality.OriginMap {
			return compileMap(inner), nil
		}
		return compileList(inner), nil
	case duality.Union:
		return compileUnion(t)
	case duality.Annotated:
		return compileExpr(t.Inner)
	case duality.Nullable:
		inner, err := compileExpr(t.Inner)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
			if v == nil {
				return nil, nil, nil
			}
			return inner(ctx, path, v)
		}, nil
	default:
		return nil, &duality.ConfigError{Reason: fmt.Sprintf("unsupported type expression %T", e)}
	}
}

func invalidType(path, hint string) duality.Issues {
	return duality.Issues{duality.Issue{Path: path, Code: duality.CodeInvalidType, Message: i18n.T(duality.CodeInvalidType, nil), Hint: hint}}
}

func compilePrimitive(k duality.PrimitiveKind) parseFn {
	return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
		switch k {
		case duality.PrimString:
			if s, ok := v.(string); ok {
				return s, nil, nil
			}
			return nil, nil, invalidType(path, "expected string")
		case duality.PrimBool:
			if b, ok := v.(bool); ok {
				return b, nil, nil
			}
			return nil, nil, invalidType(path, "expected bool")
		case duality.PrimInt:
			if n, ok := asInt(v); ok {
				return n, nil, nil
			}
			return nil, nil, invalidType(path, "expected integer")
		case duality.PrimFloat:
			if f, ok := asFloat(v); ok {
				return f, nil, nil
			}
			return nil, nil, invalidType(path, "expected number")
		default: // PrimAny
			return v, nil, nil
		}
	}
}

func compileLiteral(want any) parseFn {
	wantKey := literalKey(want)
	return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
		if literalKey(v) == wantKey {
			return want, nil, nil
		}
		return nil, nil, duality.Issues{duality.Issue{
			Path:    path,
			Code:    duality.CodeInvalidLiteral,
			Message: i18n.T(duality.CodeInvalidLiteral, nil),
			Hint:    "expected " + wantKey,
			Params:  map[string]any{"expected": want},
		}}
	}
}

func compileVariantRef(t duality.VariantRef) parseFn {
	return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil, invalidType(path, "expected object")
		}
		nested := t.Variant()
		if nested == nil {
			return nil, nil, duality.Issues{duality.Issue{Path: path, Code: duality.CodeParseError, Message: i18n.T(duality.CodeParseError, nil), Hint: "dangling model reference"}}
		}
		val, cpm, err := nested.Compiled().Parse(ctx, m)
		if err != nil {
			if child, ok := duality.AsIssues(err); ok {
				return nil, nil, duality.RebaseIssues(path, child)
			}
			return nil, nil, duality.Issues{duality.Issue{Path: path, Code: duality.CodeParseError, Message: err.Error(), Cause: err}}
		}
		return val, duality.RebasePresence(path, cpm), nil
	}
}

func compileList(elem parseFn) parseFn {
	return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
		arr, ok := v.([]any)
		if !ok {
			return nil, nil, invalidType(path, "expected array")
		}
		out := make([]any, 0, len(arr))
		var pm duality.PresenceMap
		var iss duality.Issues
		for i, el := range arr {
			parsed, cpm, i2 := elem(ctx, path+"/"+strconv.Itoa(i), el)
			if len(i2) > 0 {
				iss = duality.AppendIssues(iss, i2...)
				if duality.IsFailFast(ctx) {
					return nil, pm, iss
				}
				continue
			}
			pm = duality.MergePresence(pm, cpm)
			out = append(out, parsed)
		}
		if len(iss) > 0 {
			return nil, pm, iss
		}
		return out, pm, nil
	}
}

func compileMap(value parseFn) parseFn {
	return func(ctx context.Context, path string, v any) (any, duality.PresenceMap, duality.Issues) {
		src, ok := v.(map[string]any)
		if !ok {
			return nil, nil, invalidType(path, "expected object")
		}
		keys := make([]string, 0, len(src))
		for k := range src {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(src))
		var pm duality.PresenceMap
		var iss duality.Issues
		for _, k := range keys {
			parsed, cpm, i2 := value(ctx, path+"/"+k, src[k])
			if len(i2) > 0 {
				iss = duality.AppendIssues(iss, i2...)
				if duality.IsFailFast(ctx) {
					return nil, pm, iss
				}
				continue
			}
			pm = duality.MergePresence(pm, cpm)
			out[k] = parsed
		}
		if len(iss) > 0 {
			return nil, pm, iss
		}
		return out, pm, nil
	}
}

// ---- scalar coercion helpers ----

// asInt accepts Go integers, integral floats and json.Number values.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
		return 0, false
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// literalKey normalizes a scalar to a comparable string form so literal tags
// match across json.Number and native Go numbers.
func literalKey(v any) string {
	switch t := v.(type) {
	case string:
		return "\"" + t + "\""
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
