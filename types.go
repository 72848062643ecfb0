package duality

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	// UnknownDefault derives the policy from the variant kind: Request and
	// PatchRequest reject unknown keys, Response drops them.
	UnknownDefault UnknownPolicy = iota
	UnknownStrict                // Reject unknown keys with an error.
	UnknownStrip                 // Drop unknown keys.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	case UnknownStrip:
		return "strip"
	default:
		return "default"
	}
}

// Config is the validation configuration attached to a canonical model. An
// explicit Unknown policy always overrides the per-variant derived default.
type Config struct {
	Unknown UnknownPolicy
}

// Suffixes holds the display-name suffixes for the three derived variants.
// Suffixes affect only the generated variant's name, never behavior.
type Suffixes struct {
	Request      string
	Response     string
	PatchRequest string
}

// DefaultSuffixes returns the conventional suffix set.
func DefaultSuffixes() Suffixes {
	return Suffixes{Request: "Request", Response: "Response", PatchRequest: "PatchRequest"}
}

func (s Suffixes) complete() bool {
	return s.Request != "" && s.Response != "" && s.PatchRequest != ""
}

// Merge fills empty entries of s from o.
func (s Suffixes) Merge(o Suffixes) Suffixes {
	if s.Request == "" {
		s.Request = o.Request
	}
	if s.Response == "" {
		s.Response = o.Response
	}
	if s.PatchRequest == "" {
		s.PatchRequest = o.PatchRequest
	}
	return s
}

func (s Suffixes) forKind(k VariantKind) string {
	switch k {
	case KindResponse:
		return s.Response
	case KindPatchRequest:
		return s.PatchRequest
	default:
		return s.Request
	}
}

// VariantKind identifies one of the three derived variants.
type VariantKind int

const (
	KindRequest VariantKind = iota
	KindResponse
	KindPatchRequest
)

func (k VariantKind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindPatchRequest:
		return "patchRequest"
	default:
		return "request"
	}
}

// derivedUnknown is the per-kind default policy when the model config leaves
// Unknown unset.
func (k VariantKind) derivedUnknown() UnknownPolicy {
	if k == KindResponse {
		return UnknownStrip
	}
	return UnknownStrict
}
