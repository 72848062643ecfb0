package duality

import (
	"encoding/binary"
	"hash/fnv"
)

// The canonical model and its Request variant behave as one logical entity:
// they are Equal, share one HashKey, and instances of one are instances of
// the other. The relation is an explicit equivalence, not overridden default
// equality, so associative containers keyed by HashKey behave predictably.
//
// Subclass semantics are deliberately fixed to one rule: a model and its own
// Request variant are NOT each other's descendants, while DescendsFrom is
// reflexive and Child variants descend from both Parent and Parent.Request.

// HashKey returns the identity hash shared with the Request variant.
func (m *Model) HashKey() uint64 { return m.request.HashKey() }

// HashKey returns the identity hash of this variant. The Request variant
// shares its key with the canonical model; the three variants of one model
// are pairwise distinct.
func (v *Variant) HashKey() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v.model.id)
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte{byte(v.kind)})
	return h.Sum64()
}

// Equal reports whether x is this model or its Request variant.
func (m *Model) Equal(x any) bool {
	switch t := x.(type) {
	case *Model:
		return t == m
	case *Variant:
		return t == m.request
	default:
		return false
	}
}

// Equal reports whether x is this variant, or, for a Request variant, the
// canonical model it derives from.
func (v *Variant) Equal(x any) bool {
	switch t := x.(type) {
	case *Variant:
		return t == v
	case *Model:
		return v.kind == KindRequest && t == v.model
	default:
		return false
	}
}

// Equal is the symmetric form over models and variants.
func Equal(a, b any) bool {
	switch t := a.(type) {
	case *Model:
		return t.Equal(b)
	case *Variant:
		return t.Equal(b)
	default:
		return false
	}
}

// ancestryRoot maps a model or variant onto the variant used for ancestry
// walks: a canonical model descends (and is descended from) through its
// Request variant.
func ancestryRoot(x any) *Variant {
	switch t := x.(type) {
	case *Model:
		return t.request
	case *Variant:
		return t
	default:
		return nil
	}
}

// sameDual reports whether x and y are a canonical model and its own Request
// variant, in either order.
func sameDual(x, y any) bool {
	if m, ok := x.(*Model); ok {
		if v, ok2 := y.(*Variant); ok2 {
			return v == m.request
		}
	}
	if m, ok := y.(*Model); ok {
		if v, ok2 := x.(*Variant); ok2 {
			return v == m.request
		}
	}
	return false
}

// DescendsFrom reports whether x structurally descends from y. Both arguments
// may be a *Model or a *Variant. The relation is reflexive (everything
// descends from itself) except across the model/Request pair, which are equal
// by identity but not each other's subclasses.
func DescendsFrom(x, y any) bool {
	xv := ancestryRoot(x)
	yv := ancestryRoot(y)
	if xv == nil || yv == nil {
		return false
	}
	if x == y {
		return true
	}
	if sameDual(x, y) {
		return false
	}
	return strictAncestor(xv, yv)
}

// strictAncestor walks xv's declared base chain looking for yv.
func strictAncestor(xv, yv *Variant) bool {
	for _, b := range xv.bases {
		if b == yv || strictAncestor(b, yv) {
			return true
		}
	}
	return false
}

// InstanceOf reports whether inst was constructed through target or one of
// its descendants. For a canonical model target this means the Request
// variant's construction path, since building the model delegates there.
func InstanceOf(inst *Instance, target any) bool {
	if inst == nil || inst.variant == nil {
		return false
	}
	switch t := target.(type) {
	case *Model:
		return inst.variant == t.request || strictAncestor(inst.variant, t.request)
	case *Variant:
		return inst.variant == t || strictAncestor(inst.variant, t)
	default:
		return false
	}
}
