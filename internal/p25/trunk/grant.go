// Package trunk implements the grant table, affiliation table, and
// adjacent-site table of spec.md §4.6/§3 — the tables touched by both the
// RF and net paths of the control engine, but only from the main thread
// (spec.md §5); workers hand parsed frames in via ring buffers instead of
// touching these tables directly. Backed by puzpuzpuz/xsync maps, the
// same lock-free map used by internal/kv's in-memory backend, so a
// metrics collector can safely read table sizes from another goroutine.
package trunk

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

// GrantRecord is a per-destination-ID grant entry.
type GrantRecord struct {
	Dest          uint32
	Source        uint32
	Channel       uint16
	Group         bool
	NetOriginated bool
	Expires       time.Time
}

// Grants holds the live grant table plus the pool of voice channel
// numbers available for allocation.
type Grants struct {
	grants       *xsync.Map[uint32, GrantRecord]
	freeChannels []uint16
	channelOwner map[uint16]uint32
}

// NewGrants builds a Grants table with the given pool of voice channel
// numbers available for allocation.
func NewGrants(channels []uint16) *Grants {
	free := make([]uint16, len(channels))
	copy(free, channels)
	return &Grants{
		grants:       xsync.NewMap[uint32, GrantRecord](),
		freeChannels: free,
		channelOwner: make(map[uint16]uint32),
	}
}

// Grant inserts a new grant for dst if a channel is free; allocates the
// next free voice channel number, associates it with dst, and starts a
// duration timer. Returns p25err.ErrNoChannelAvailable if the pool is
// exhausted.
func (g *Grants) Grant(dst, src uint32, duration time.Duration, group, netOriginated bool) (GrantRecord, error) {
	if len(g.freeChannels) == 0 {
		return GrantRecord{}, p25err.ErrNoChannelAvailable
	}
	ch := g.freeChannels[0]
	g.freeChannels = g.freeChannels[1:]
	rec := GrantRecord{
		Dest:          dst,
		Source:        src,
		Channel:       ch,
		Group:         group,
		NetOriginated: netOriginated,
		Expires:       time.Now().Add(duration),
	}
	g.grants.Store(dst, rec)
	g.channelOwner[ch] = dst
	return rec, nil
}

// TouchGrant refreshes dst's grant timer to the given duration from now.
func (g *Grants) TouchGrant(dst uint32, duration time.Duration) {
	if rec, ok := g.grants.Load(dst); ok {
		rec.Expires = time.Now().Add(duration)
		g.grants.Store(dst, rec)
	}
}

// ReleaseGrant removes dst's grant (if all is false) or every grant
// regardless of dst (if all is true), per the spec's
// `releaseGrant(dst, all)` signature.
func (g *Grants) ReleaseGrant(dst uint32, all bool) {
	if all {
		g.grants.Range(func(d uint32, rec GrantRecord) bool {
			g.releaseChannel(rec.Channel)
			g.grants.Delete(d)
			return true
		})
		return
	}
	if rec, ok := g.grants.LoadAndDelete(dst); ok {
		g.releaseChannel(rec.Channel)
	}
}

func (g *Grants) releaseChannel(ch uint16) {
	delete(g.channelOwner, ch)
	g.freeChannels = append(g.freeChannels, ch)
}

// IsGranted reports whether dst currently has a live grant.
func (g *Grants) IsGranted(dst uint32) bool {
	_, ok := g.grants.Load(dst)
	return ok
}

// GrantedChannel returns dst's assigned channel number, if granted.
func (g *Grants) GrantedChannel(dst uint32) (uint16, bool) {
	rec, ok := g.grants.Load(dst)
	return rec.Channel, ok
}

// GrantedSource returns dst's granted source ID, if granted.
func (g *Grants) GrantedSource(dst uint32) (uint32, bool) {
	rec, ok := g.grants.Load(dst)
	return rec.Source, ok
}

// Get returns the full grant record for dst, if any.
func (g *Grants) Get(dst uint32) (GrantRecord, bool) {
	return g.grants.Load(dst)
}

// Count returns the live grant count; callers report this to SiteData.
func (g *Grants) Count() int {
	return g.grants.Size()
}

// ExpireOlderThan releases every grant whose Expires time is before now,
// returning the destinations released. Called on tick.
func (g *Grants) ExpireOlderThan(now time.Time) []uint32 {
	var expired []uint32
	g.grants.Range(func(d uint32, rec GrantRecord) bool {
		if rec.Expires.Before(now) {
			expired = append(expired, d)
		}
		return true
	})
	for _, d := range expired {
		g.ReleaseGrant(d, false)
	}
	return expired
}

// Range iterates live grants in an unspecified order, used by the
// round-robin OSP_GRP_VCH_GRANT_UPD scheduler.
func (g *Grants) Range(fn func(dst uint32, rec GrantRecord) bool) {
	g.grants.Range(fn)
}
