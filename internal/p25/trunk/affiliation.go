package trunk

import "github.com/puzpuzpuz/xsync/v4"

// affKey is a (source, destination group) affiliation tuple key.
type affKey struct {
	src uint32
	dst uint32
}

// Affiliations holds the set of (source -> group destination) tuples and
// the set of registered source IDs.
type Affiliations struct {
	affiliations *xsync.Map[affKey, struct{}]
	registered   *xsync.Map[uint32, struct{}]
}

// NewAffiliations builds an empty Affiliations table.
func NewAffiliations() *Affiliations {
	return &Affiliations{
		affiliations: xsync.NewMap[affKey, struct{}](),
		registered:   xsync.NewMap[uint32, struct{}](),
	}
}

// UnitReg registers src as present on the system.
func (a *Affiliations) UnitReg(src uint32) {
	a.registered.Store(src, struct{}{})
}

// UnitDereg removes src's registration, reporting whether it had been
// registered.
func (a *Affiliations) UnitDereg(src uint32) bool {
	_, existed := a.registered.LoadAndDelete(src)
	return existed
}

// IsRegistered reports whether src is currently registered.
func (a *Affiliations) IsRegistered(src uint32) bool {
	_, ok := a.registered.Load(src)
	return ok
}

// GroupAff records an affiliation of src with group destination dst.
func (a *Affiliations) GroupAff(src, dst uint32) {
	a.affiliations.Store(affKey{src: src, dst: dst}, struct{}{})
}

// IsGroupAff reports whether (src, dst) is an affiliated tuple.
func (a *Affiliations) IsGroupAff(src, dst uint32) bool {
	_, ok := a.affiliations.Load(affKey{src: src, dst: dst})
	return ok
}

// ClearGroupAff removes affiliations for group destination dst (or every
// affiliation, if all is true), returning the sources that had been
// affiliated with dst. It emits no TSBK itself, and control.Engine does
// not call it, so no U_DEREG_ACK is sent for the returned sources.
func (a *Affiliations) ClearGroupAff(dst uint32, all bool) []uint32 {
	var removed []uint32
	var keys []affKey
	a.affiliations.Range(func(k affKey, _ struct{}) bool {
		if all || k.dst == dst {
			removed = append(removed, k.src)
			keys = append(keys, k)
		}
		return true
	})
	for _, k := range keys {
		a.affiliations.Delete(k)
	}
	return removed
}
