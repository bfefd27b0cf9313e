// state/interfaces.go
package state

// ZoneContext defines the interface a zone session must implement to be
// driven by the state machine. This breaks the import cycle between zone
// and state.
type ZoneContext interface {
	GetRoomID() string
	GetZone() string
	ChangeState(newState State) error
}
