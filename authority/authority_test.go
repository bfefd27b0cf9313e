package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelfall/worldserver/models"
)

func roster() []models.RosterEntry {
	// host joined first and sits in hub; p3, p1, p2 share archive
	return []models.RosterEntry{
		{ID: "zz_host", Zone: "hub"},
		{ID: "p3", Zone: "archive"},
		{ID: "p1", Zone: "archive"},
		{ID: "p2", Zone: "archive"},
	}
}

func TestZoneAuthority_FallbackSmallestID(t *testing.T) {
	got := ZoneAuthority(roster(), "zz_host", "archive")
	assert.Equal(t, "p1", got, "smallest id among occupants wins")
}

func TestZoneAuthority_HostPrecedence(t *testing.T) {
	// host id sorts after every other id, rule 1 must still win
	got := ZoneAuthority(roster(), "zz_host", "hub")
	assert.Equal(t, "zz_host", got)
}

func TestZoneAuthority_HostInContestedZone(t *testing.T) {
	entries := []models.RosterEntry{
		{ID: "zz_host", Zone: "archive"},
		{ID: "p1", Zone: "archive"},
	}
	got := ZoneAuthority(entries, "zz_host", "archive")
	assert.Equal(t, "zz_host", got, "host presence overrides the id ordering")
}

func TestZoneAuthority_EmptyZone(t *testing.T) {
	assert.Equal(t, "", ZoneAuthority(roster(), "zz_host", "vault"))
	assert.Equal(t, "", ZoneAuthority(nil, "", "anywhere"))
}

func TestRoleOf_Host(t *testing.T) {
	assert.Equal(t, RoleRoomHost, RoleOf(roster(), "zz_host", "zz_host"))
}

func TestRoleOf_ZoneHost(t *testing.T) {
	assert.Equal(t, RoleZoneHost, RoleOf(roster(), "zz_host", "p1"))
	assert.Equal(t, RoleNone, RoleOf(roster(), "zz_host", "p2"))
	assert.Equal(t, RoleNone, RoleOf(roster(), "zz_host", "p3"))
}

func TestRoleOf_HostNeverZoneHost(t *testing.T) {
	// host shares a zone with a larger-id player; the host stays RoomHost
	// and the other player gets nothing
	entries := []models.RosterEntry{
		{ID: "a_host", Zone: "archive"},
		{ID: "b", Zone: "archive"},
	}
	assert.Equal(t, RoleRoomHost, RoleOf(entries, "a_host", "a_host"))
	assert.Equal(t, RoleNone, RoleOf(entries, "a_host", "b"))
}

func TestRoleOf_MutuallyExclusive(t *testing.T) {
	entries := roster()
	for _, p := range entries {
		role := RoleOf(entries, "zz_host", p.ID)
		if p.ID == "zz_host" {
			assert.NotEqual(t, RoleZoneHost, role)
		} else {
			assert.NotEqual(t, RoleRoomHost, role)
		}
	}
}

func TestRoleOf_UnknownPlayer(t *testing.T) {
	assert.Equal(t, RoleNone, RoleOf(roster(), "zz_host", "ghost"))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "room_host", RoleRoomHost.String())
	assert.Equal(t, "zone_host", RoleZoneHost.String())
	assert.Equal(t, "none", RoleNone.String())
}
