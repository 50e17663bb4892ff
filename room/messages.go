package room

import "freezetag/protocol"

// Conn is the transport seen from a room: fire a payload at one client.
// Closing is the transport layer's business.
type Conn interface {
	Send([]byte) error
}

// Commands posted into a room inbox. Replies go over buffered channels;
// callers should select against Done() in case the room dies first.

type Join struct {
	PlayerID string
	Nickname string
	Password string
	X, Y     float64
	Conn     Conn
	Reply    chan<- JoinResult
}

type JoinResult struct {
	Err    error
	Map    string
	Leader string
}

// Leave is issued for both an explicit leave and a disconnect.
// Reply may be nil (disconnects do not wait for one).
type Leave struct {
	PlayerID string
	Reply    chan<- error
}

type Start struct {
	PlayerID string
	Reply    chan<- error
}

type Members struct {
	Reply chan<- []protocol.RoomMember
}

type MoveIntent struct {
	PlayerID string
	Dir      string
}

type ClickMove struct {
	PlayerID string
	X, Y     float64
}

type FreezeToggle struct {
	PlayerID string
}

type FreezeSet struct {
	PlayerID string
	Value    bool
}

type StartTimer struct {
	Seconds int // <= 0 picks the default for the current phase
}

type Overlap struct {
	AID string
	BID string
}

// internal commands
type timerTick struct{}
type chainMatch struct{}
type gameOverDue struct{}
