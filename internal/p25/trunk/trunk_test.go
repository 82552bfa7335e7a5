package trunk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keystone-rf/p25ctrl/internal/p25err"
)

func TestGrantHappyPath(t *testing.T) {
	g := NewGrants([]uint16{2})

	rec, err := g.Grant(100, 1001, 15*time.Second, true, false)
	require.NoError(t, err)
	require.Equal(t, uint16(2), rec.Channel)

	require.True(t, g.IsGranted(100))
	ch, ok := g.GrantedChannel(100)
	require.True(t, ok)
	require.Equal(t, uint16(2), ch)
	require.Equal(t, 1, g.Count())
}

func TestGrantCollisionWhenChannelExhausted(t *testing.T) {
	g := NewGrants([]uint16{2})
	_, err := g.Grant(100, 1001, 15*time.Second, true, false)
	require.NoError(t, err)

	_, err = g.Grant(200, 1002, 15*time.Second, true, false)
	require.ErrorIs(t, err, p25err.ErrNoChannelAvailable)
}

func TestIsGrantedInvariant(t *testing.T) {
	g := NewGrants([]uint16{1, 2, 3})
	require.False(t, g.IsGranted(50))
	_, err := g.Grant(50, 10, time.Second, true, false)
	require.NoError(t, err)
	require.True(t, g.IsGranted(50))
	g.ReleaseGrant(50, false)
	require.False(t, g.IsGranted(50))
	require.Equal(t, 0, g.Count())
}

func TestExpireOlderThan(t *testing.T) {
	g := NewGrants([]uint16{1})
	_, err := g.Grant(1, 1, -time.Second, true, false)
	require.NoError(t, err)

	expired := g.ExpireOlderThan(time.Now())
	require.Equal(t, []uint32{1}, expired)
	require.False(t, g.IsGranted(1))
}

func TestAffiliationInvariant(t *testing.T) {
	a := NewAffiliations()
	require.False(t, a.IsGroupAff(10, 100))
	a.GroupAff(10, 100)
	require.True(t, a.IsGroupAff(10, 100))

	a.GroupAff(20, 100)
	removed := a.ClearGroupAff(100, false)
	require.ElementsMatch(t, []uint32{10, 20}, removed)
	require.False(t, a.IsGroupAff(10, 100))
	require.False(t, a.IsGroupAff(20, 100))
}

func TestUnitRegDereg(t *testing.T) {
	a := NewAffiliations()
	require.False(t, a.UnitDereg(5))
	a.UnitReg(5)
	require.True(t, a.IsRegistered(5))
	require.True(t, a.UnitDereg(5))
	require.False(t, a.IsRegistered(5))
}
