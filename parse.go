package duality

import "context"

// ParseOpt bundles parsing options.
type ParseOpt struct {
	FailFast bool
}

// ParseFrom is the primary wire entry point. It decodes the Source into an
// any value and delegates validation to the variant. When multiple options
// are given the last one wins.
func ParseFrom(ctx context.Context, v *Variant, src Source, opts ...ParseOpt) (*Instance, error) {
	if v == nil {
		return nil, Issues{Issue{Path: "/", Code: CodeParseError, Message: "nil variant"}}
	}
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	raw, err := src.Decode()
	if err != nil {
		return nil, err
	}
	return v.Parse(ctx, raw)
}

// ParseJSON parses a JSON document against the variant.
func ParseJSON(ctx context.Context, v *Variant, data []byte, opts ...ParseOpt) (*Instance, error) {
	return ParseFrom(ctx, v, JSONBytes(data), opts...)
}
