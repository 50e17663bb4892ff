package protocol

import (
	"encoding/json"
)

// Client -> server event names. These mirror what the web client emits.
const (
	MsgNewPlayer        = "newplayer"
	MsgCreateRoom       = "createroom"
	MsgGetRooms         = "getrooms"
	MsgJoinRoom         = "joinroom"
	MsgLeaveRoom        = "leaveroom"
	MsgStartGame        = "startgame"
	MsgGetPlayersInRoom = "getplayersinroom"
	MsgReportPosition   = "reportPosition"
	MsgClick            = "click"
	MsgMove             = "move"
	MsgToggleFreeze     = "toggleFreeze"
	MsgSetFrozen        = "setFrozen"
	MsgStartTimer       = "startTimer"
	MsgOverlap          = "overlap"
)

// Server -> client event names. MsgNewPlayer, MsgMove and MsgStartGame are
// reused in this direction, same as the original socket protocol.
const (
	MsgYourID           = "yourId"
	MsgAllPlayers       = "allplayers"
	MsgRemove           = "remove"
	MsgRoomList         = "roomlist"
	MsgRoomListUpdate   = "roomlist_update"
	MsgCreateRoomResult = "createroom_response"
	MsgJoinRoomResult   = "joinroom_response"
	MsgLeaveRoomResult  = "leaveroom_response"
	MsgStartGameResult  = "startgame_response"
	MsgRoomReady        = "room_ready"
	MsgNewLeader        = "new_leader"
	MsgPlayersInRoom    = "playersinroom"
	MsgSyncPosition     = "syncPosition"
	MsgFreezeChange     = "freezeChange"
	MsgDead             = "dead"
	MsgGameOver         = "gameOver"
	MsgTimer            = "timer"
	MsgTimerEnd         = "timerEnd"
)

// SyncHz is the rate of the global position reconciliation broadcast.
// Per-room move events go out immediately on top of this.
const SyncHz = 10

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
