package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	duality "github.com/reoring/duality"
	"github.com/reoring/duality/internal/engine"
)

// LoadYAML builds canonical models from a declarative YAML document:
//
//	unknown: strict            # optional, root default
//	suffixes:                  # optional, root default
//	  request: Request
//	  response: Response
//	  patchRequest: PatchRequest
//	models:
//	  - name: User
//	    fields:
//	      - {name: id, type: string, required: true}
//	      - {name: tags, type: "[]string"}
//	      - {name: best_friend, type: User}
//	  - name: Admin
//	    extends: [User]
//	    suffixes: {request: Req}
//	    fields:
//	      - {name: kind, type: lit:"admin", required: true}
//
// Type strings: primitives (string, int, float, bool, any), []T, map[T],
// A | B unions, lit:"x" / lit:123 / lit:true literals, T? nullable, and a
// model reference as either ref:Name or a bare identifier. References bind
// lazily, so mutually
// referencing and self-referential models may appear in any order; dangling
// names are rejected before returning.
func LoadYAML(data []byte) (map[string]*duality.Model, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &duality.ConfigError{Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}
	if len(doc.Models) == 0 {
		return nil, &duality.ConfigError{Reason: "document declares no models"}
	}

	reg := make(map[string]*duality.Model, len(doc.Models))
	referenced := map[string]struct{}{}

	docSuffixes := doc.Suffixes.toSuffixes().Merge(duality.DefaultSuffixes())
	docUnknown, err := parseUnknown(doc.Unknown)
	if err != nil {
		return nil, err
	}

	for _, ym := range doc.Models {
		if ym.Name == "" {
			return nil, &duality.ConfigError{Reason: "model with empty name"}
		}
		if _, dup := reg[ym.Name]; dup {
			return nil, &duality.ConfigError{Model: ym.Name, Reason: "declared twice"}
		}
		spec := duality.ModelSpec{Name: ym.Name}
		for _, baseName := range ym.Extends {
			base, ok := reg[baseName]
			if !ok {
				return nil, &duality.ConfigError{Model: ym.Name, Reason: fmt.Sprintf("extends %q which is not declared above it", baseName)}
			}
			spec.Bases = append(spec.Bases, base)
		}
		spec.Suffixes = ym.Suffixes.toSuffixes()
		if len(spec.Bases) == 0 {
			spec.Suffixes = spec.Suffixes.Merge(docSuffixes)
			spec.Validator = engine.Default()
		}
		unknown, err := parseUnknown(ym.Unknown)
		if err != nil {
			return nil, &duality.ConfigError{Model: ym.Name, Reason: err.Error()}
		}
		switch {
		case ym.Unknown != "":
			spec.Config = &duality.Config{Unknown: unknown}
		case len(spec.Bases) == 0:
			spec.Config = &duality.Config{Unknown: docUnknown}
		}
		for _, yf := range ym.Fields {
			f := duality.Field{Name: yf.Name, Required: yf.Required}
			f.Type, err = parseTypeString(yf.Type, reg, referenced)
			if err != nil {
				return nil, &duality.ConfigError{Model: ym.Name, Reason: fmt.Sprintf("field %q: %v", yf.Name, err)}
			}
			if !yf.Default.IsZero() {
				var dv any
				if err := yf.Default.Decode(&dv); err != nil {
					return nil, &duality.ConfigError{Model: ym.Name, Reason: fmt.Sprintf("field %q: invalid default: %v", yf.Name, err)}
				}
				f.HasDefault = true
				f.Default = dv
			}
			spec.Fields = append(spec.Fields, f)
		}
		m, err := duality.Define(spec)
		if err != nil {
			return nil, err
		}
		reg[ym.Name] = m
	}

	// references bind lazily; reject dangling names now rather than at parse time
	for name := range referenced {
		if _, ok := reg[name]; !ok {
			return nil, &duality.ConfigError{Reason: fmt.Sprintf("reference to undeclared model %q", name)}
		}
	}
	return reg, nil
}

type yamlDoc struct {
	Unknown  string       `yaml:"unknown"`
	Suffixes yamlSuffixes `yaml:"suffixes"`
	Models   []yamlModel  `yaml:"models"`
}

type yamlSuffixes struct {
	Request      string `yaml:"request"`
	Response     string `yaml:"response"`
	PatchRequest string `yaml:"patchRequest"`
}

func (s yamlSuffixes) toSuffixes() duality.Suffixes {
	return duality.Suffixes{Request: s.Request, Response: s.Response, PatchRequest: s.PatchRequest}
}

type yamlModel struct {
	Name     string       `yaml:"name"`
	Extends  []string     `yaml:"extends"`
	Unknown  string       `yaml:"unknown"`
	Suffixes yamlSuffixes `yaml:"suffixes"`
	Fields   []yamlField  `yaml:"fields"`
}

type yamlField struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Required bool      `yaml:"required"`
	Default  yaml.Node `yaml:"default"`
}

func parseUnknown(s string) (duality.UnknownPolicy, error) {
	switch s {
	case "", "default":
		return duality.UnknownDefault, nil
	case "strict", "forbid":
		return duality.UnknownStrict, nil
	case "strip", "ignore":
		return duality.UnknownStrip, nil
	default:
		return duality.UnknownDefault, fmt.Errorf("invalid unknown policy %q", s)
	}
}

// parseTypeString parses the compact type grammar. reg is consulted lazily at
// parse time; referenced collects names for post-load validation.
func parseTypeString(s string, reg map[string]*duality.Model, referenced map[string]struct{}) (duality.TypeExpr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty type")
	}
	if parts := splitTopLevel(s, '|'); len(parts) > 1 {
		members := make([]duality.TypeExpr, len(parts))
		for i, p := range parts {
			m, err := parseTypeString(p, reg, referenced)
			if err != nil {
				return nil, err
			}
			members[i] = m
		}
		return duality.UnionOf(members...), nil
	}
	if strings.HasSuffix(s, "?") {
		inner, err := parseTypeString(strings.TrimSuffix(s, "?"), reg, referenced)
		if err != nil {
			return nil, err
		}
		return duality.NullableOf(inner), nil
	}
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		inner, err := parseTypeString(rest, reg, referenced)
		if err != nil {
			return nil, err
		}
		return duality.List(inner), nil
	}
	if strings.HasPrefix(s, "map[") && strings.HasSuffix(s, "]") {
		inner, err := parseTypeString(s[len("map["):len(s)-1], reg, referenced)
		if err != nil {
			return nil, err
		}
		return duality.MapOf(inner), nil
	}
	if rest, ok := strings.CutPrefix(s, "lit:"); ok {
		return parseLiteral(rest)
	}
	if rest, ok := strings.CutPrefix(s, "ref:"); ok {
		s = strings.TrimSpace(rest)
		if !isIdent(s) {
			return nil, fmt.Errorf("invalid reference %q", rest)
		}
		name := s
		referenced[name] = struct{}{}
		return duality.LazyRef(func() *duality.Model { return reg[name] }), nil
	}
	switch s {
	case "string":
		return duality.String(), nil
	case "int", "integer":
		return duality.Int(), nil
	case "float", "number":
		return duality.Float(), nil
	case "bool", "boolean":
		return duality.Bool(), nil
	case "any":
		return duality.Any(), nil
	}
	if !isIdent(s) {
		return nil, fmt.Errorf("invalid type %q", s)
	}
	name := s
	referenced[name] = struct{}{}
	return duality.LazyRef(func() *duality.Model { return reg[name] }), nil
}

func parseLiteral(s string) (duality.TypeExpr, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return duality.LiteralOf(s[1 : len(s)-1]), nil
	}
	if s == "true" || s == "false" {
		return duality.LiteralOf(s == "true"), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return duality.LiteralOf(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return duality.LiteralOf(f), nil
	}
	return nil, fmt.Errorf("invalid literal %q", s)
}

// splitTopLevel splits on sep outside bracket nesting.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case '[':
			if !inString {
				depth++
			}
		case ']':
			if !inString {
				depth--
			}
		case sep:
			if depth == 0 && !inString {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
