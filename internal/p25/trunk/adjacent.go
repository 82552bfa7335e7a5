package trunk

import (
	"github.com/mitchellh/hashstructure/v2"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/keystone-rf/p25ctrl/internal/p25/site"
)

// adjacentEntry tracks one neighbor's last-known site data, a
// descending tick counter, and the structural hash of the last
// broadcast site data (used to detect a changed announcement cheaply —
// the hashstructure library, carried from the teacher's go.mod, gives a
// one-line structural hash instead of a field-by-field comparison).
type adjacentEntry struct {
	Site    site.Data
	Counter int
	Hash    uint64
}

// Adjacent is the adjacent-site table: neighbor site ID -> site data plus
// a descending update counter, default 5 (spec.md §3).
type Adjacent struct {
	sites        *xsync.Map[uint8, adjacentEntry]
	defaultCount int
}

// NewAdjacent builds an Adjacent table with the given default update
// counter (ticks before a neighbor is flagged failed).
func NewAdjacent(defaultCounter int) *Adjacent {
	return &Adjacent{
		sites:        xsync.NewMap[uint8, adjacentEntry](),
		defaultCount: defaultCounter,
	}
}

// Observe records a received OSP_ADJ_STS_BCAST from a neighbor site,
// resetting its update counter. Returns true if this announcement
// differs structurally from the last one seen for this neighbor (the
// caller may use this to suppress redundant re-broadcasts).
func (a *Adjacent) Observe(siteID uint8, data site.Data) bool {
	hash, _ := hashstructure.Hash(data, hashstructure.FormatV2, nil)
	prev, existed := a.sites.Load(siteID)
	a.sites.Store(siteID, adjacentEntry{Site: data, Counter: a.defaultCount, Hash: hash})
	return !existed || prev.Hash != hash
}

// Tick decrements every neighbor's counter by one; a neighbor reaching
// zero is flagged failed. Returns the site IDs that just transitioned to
// failed this tick.
func (a *Adjacent) Tick() []uint8 {
	var justFailed []uint8
	a.sites.Range(func(id uint8, e adjacentEntry) bool {
		if e.Counter <= 0 {
			return true
		}
		e.Counter--
		a.sites.Store(id, e)
		if e.Counter == 0 {
			justFailed = append(justFailed, id)
		}
		return true
	})
	return justFailed
}

// Failed reports whether siteID's update counter has reached zero.
func (a *Adjacent) Failed(siteID uint8) bool {
	e, ok := a.sites.Load(siteID)
	if !ok {
		return true
	}
	return e.Counter <= 0
}

// Get returns the last-known site data for siteID.
func (a *Adjacent) Get(siteID uint8) (site.Data, bool) {
	e, ok := a.sites.Load(siteID)
	return e.Site, ok
}

// Neighbors returns every known neighbor site ID, for the round-robin
// advertisement scheduler.
func (a *Adjacent) Neighbors() []uint8 {
	var ids []uint8
	a.sites.Range(func(id uint8, _ adjacentEntry) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
