package room

// ZoneSession is the handle to an independently ticking zone simulation.
// The registry never interprets its internals; it only guarantees Shutdown
// is called once the owning room is deleted.
type ZoneSession interface {
	Shutdown()
}

// SessionFactory creates a zone session when a zone is first occupied.
// This is defined here to break the import cycle between room and zone.
type SessionFactory interface {
	Create(roomID, zone string) ZoneSession
}
