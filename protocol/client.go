package protocol

// Payload structs coming in from the client.

type NewPlayer struct {
	Nickname string `json:"nickname,omitempty"`
}

type CreateRoom struct {
	RoomName string `json:"roomName"`
	Map      string `json:"map"`
	Password string `json:"password,omitempty"`
}

type JoinRoom struct {
	RoomName string `json:"roomName"`
	Password string `json:"password,omitempty"`
}

type StartGame struct {
	RoomName string `json:"roomName"`
}

type GetPlayersInRoom struct {
	RoomName string `json:"roomName"`
}

// Position is sent by reportPosition and click. The server stores it as-is;
// there is no server-side plausibility check on client movement.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Move struct {
	Dir string `json:"dir"` // left | right | up | down | stop
}

type SetFrozen struct {
	Value bool `json:"value"`
}

type StartTimer struct {
	DurationMs int `json:"durationMs"`
}

// Overlap is a client-detected hit-area intersection. The pair is unordered.
type Overlap struct {
	AID string `json:"aId"`
	BID string `json:"bId"`
}
