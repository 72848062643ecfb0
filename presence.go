package duality

// Presence is the bit flag collected while parsing a field set.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// MergePresence returns the bitwise-OR merge of a and b.
func MergePresence(a, b PresenceMap) PresenceMap {
	if a == nil && b == nil {
		return nil
	}
	out := make(PresenceMap, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] |= v
	}
	return out
}

// RebasePresence prefixes child presence paths with base so nested model
// presence surfaces under the owning field.
func RebasePresence(base string, child PresenceMap) PresenceMap {
	if child == nil {
		return nil
	}
	out := make(PresenceMap, len(child))
	for k, v := range child {
		if k == "/" || k == "" {
			// the child's root maps onto the owning field itself
			out[base] |= v
			continue
		}
		out[base+k] |= v
	}
	return out
}
