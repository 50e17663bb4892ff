package protocol

// Payload structs going out to clients.

type YourID struct {
	ID string `json:"id"`
}

type PlayerSnapshot struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Nickname string  `json:"nickname"`
}

type RoomInfo struct {
	RoomName          string `json:"roomName"`
	Map               string `json:"map"`
	PlayerCount       int    `json:"playerCount"`
	PasswordProtected bool   `json:"passwordProtected"`
	Status            string `json:"status"`
}

type CreateRoomResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	RoomName string `json:"roomName,omitempty"`
	Leader   string `json:"leader,omitempty"`
}

type JoinRoomResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	RoomName string `json:"roomName,omitempty"`
	Map      string `json:"map,omitempty"`
	Leader   string `json:"leader,omitempty"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type RoomReady struct {
	Leader string `json:"leader"`
}

type NewLeader struct {
	Leader string `json:"leader"`
}

type RoomMember struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// GamePlayer is one entry of the startgame broadcast: who plays which slot.
type GamePlayer struct {
	ID       string `json:"id"`
	Slot     int    `json:"slot"`
	Nickname string `json:"nickname"`
}

// MoveDir is broadcast to a room when a member changes direction.
type MoveDir struct {
	ID  string `json:"id"`
	Dir string `json:"dir"`
}

// MoveTo is broadcast when a member teleports via click.
type MoveTo struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type SyncPosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type FreezeChange struct {
	ID    string `json:"id"`
	Value bool   `json:"value"`
}

type Dead struct {
	ID string `json:"id"`
}

type GameOver struct {
	Winner string `json:"winner"` // tagger | evaders
}

type Timer struct {
	Remaining int `json:"remaining"`
}

type Removed struct {
	ID string `json:"id"`
}
