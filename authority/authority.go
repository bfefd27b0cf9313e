// authority/authority.go
package authority

import (
	"github.com/pixelfall/worldserver/models"
)

// Role is the authority a single player holds, derived on demand from the
// roster. It is never stored: caching it invites drift from the roster it
// was computed from.
type Role int

const (
	RoleNone Role = iota
	RoleRoomHost
	RoleZoneHost
)

func (r Role) String() string {
	switch r {
	case RoleRoomHost:
		return "room_host"
	case RoleZoneHost:
		return "zone_host"
	default:
		return "none"
	}
}

// ZoneAuthority computes which player is authoritative for a zone.
//
// Rule 1: if the room host is physically in the zone, the host owns it.
// Rule 2: otherwise the occupant with the lexicographically smallest id
// owns it. An empty zone has no authority ("").
func ZoneAuthority(roster []models.RosterEntry, hostID, zone string) string {
	smallest := ""
	for _, p := range roster {
		if p.Zone != zone {
			continue
		}
		if p.ID == hostID {
			return hostID
		}
		if smallest == "" || p.ID < smallest {
			smallest = p.ID
		}
	}
	return smallest
}

// RoleOf derives a player's authority role. The two roles are mutually
// exclusive: the host's own zone is governed purely by rule 1, so the host
// is never a zone-host candidate.
func RoleOf(roster []models.RosterEntry, hostID, playerID string) Role {
	if playerID == hostID {
		for _, p := range roster {
			if p.ID == playerID {
				return RoleRoomHost
			}
		}
		return RoleNone
	}

	var zone string
	found := false
	for _, p := range roster {
		if p.ID == playerID {
			zone = p.Zone
			found = true
			break
		}
	}
	if !found {
		return RoleNone
	}

	if ZoneAuthority(roster, hostID, zone) == playerID {
		return RoleZoneHost
	}
	return RoleNone
}
