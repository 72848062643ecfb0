package duality

import (
	"sort"

	js "github.com/reoring/duality/jsonschema"
)

// JSONSchema projects the variant into a JSON Schema representation. Nested
// variants are emitted as $defs entries referenced by display name, so
// self-referential and mutually-referencing models export without recursion.
// Strict variants export additionalProperties false; lenient variants true.
func (v *Variant) JSONSchema() (*js.Schema, error) {
	defs := map[string]*js.Schema{}
	root := schemaForVariant(v, defs)
	if len(defs) > 0 {
		root.Defs = defs
	}
	return root, nil
}

func schemaForVariant(v *Variant, defs map[string]*js.Schema) *js.Schema {
	props := make(map[string]*js.Schema, len(v.fields))
	var req []string
	for _, f := range v.fields {
		fs := schemaForExpr(f.Type, defs)
		if f.HasDefault {
			fs.Default = f.Default
		}
		props[f.Name] = fs
		if f.Required {
			req = append(req, f.Name)
		}
	}
	sort.Strings(req)
	var additional any
	switch v.unknown {
	case UnknownStrict:
		additional = false
	default:
		// runtime accepts then discards unknown keys, so JSON Schema should
		// mark them as accepted
		additional = true
	}
	return &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: additional}
}

func schemaForExpr(e TypeExpr, defs map[string]*js.Schema) *js.Schema {
	switch t := e.(type) {
	case Primitive:
		switch t.Kind {
		case PrimInt:
			return &js.Schema{Type: "integer"}
		case PrimFloat:
			return &js.Schema{Type: "number"}
		case PrimBool:
			return &js.Schema{Type: "boolean"}
		case PrimAny:
			return &js.Schema{}
		default:
			return &js.Schema{Type: "string"}
		}
	case Literal:
		return &js.Schema{Const: t.Value}
	case VariantRef:
		nested := t.Variant()
		if nested == nil {
			return &js.Schema{}
		}
		if _, visited := defs[nested.name]; !visited {
			defs[nested.name] = &js.Schema{} // break cycles before recursing
			defs[nested.name] = schemaForVariant(nested, defs)
		}
		return &js.Schema{Ref: "#/$defs/" + nested.name}
	case ModelRef:
		// unresolved authored reference; export as its request form
		return schemaForExpr(VariantRef{ref: t, Kind: KindRequest}, defs)
	case Generic:
		inner := schemaForExpr(t.Args[0], defs)
		if t.Origin == OriginMap {
			return &js.Schema{Type: "object", AdditionalProperties: inner}
		}
		return &js.Schema{Type: "array", Items: inner}
	case Union:
		out := &js.Schema{OneOf: make([]*js.Schema, 0, len(t.Members))}
		for _, m := range t.Members {
			out.OneOf = append(out.OneOf, schemaForExpr(m, defs))
		}
		return out
	case Annotated:
		return schemaForExpr(t.Inner, defs)
	case Nullable:
		return &js.Schema{OneOf: []*js.Schema{schemaForExpr(t.Inner, defs), {Type: "null"}}}
	default:
		return &js.Schema{}
	}
}
