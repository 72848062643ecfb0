package duality

// Field is a single declared (or resolved) field of a model. On a canonical
// declaration Type is the authored expression; on a Variant it is the resolved
// one.
type Field struct {
	Name       string
	Type       TypeExpr
	Required   bool
	HasDefault bool
	Default    any
	Metadata   []any
}

// IsTag reports whether the field's type is a single-valued literal,
// optionally under annotations. Tag fields select tagged-union members and
// stay required and non-nullable on the derived PatchRequest.
func (f Field) IsTag() bool {
	return isTagExpr(f.Type)
}

func isTagExpr(e TypeExpr) bool {
	switch t := e.(type) {
	case Literal:
		return true
	case Annotated:
		return isTagExpr(t.Inner)
	default:
		return false
	}
}

// mergeFields layers own fields over the base field set: base order is kept,
// redeclared names are overridden in place, new names are appended.
func mergeFields(base, own []Field) []Field {
	out := make([]Field, 0, len(base)+len(own))
	idx := make(map[string]int, len(base)+len(own))
	for _, f := range base {
		idx[f.Name] = len(out)
		out = append(out, f)
	}
	for _, f := range own {
		if i, ok := idx[f.Name]; ok {
			out[i] = f
			continue
		}
		idx[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}
