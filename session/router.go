package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"freezetag/game"
	"freezetag/player"
	"freezetag/protocol"
	"freezetag/room"
)

// Router dispatches inbound client events to the registries and room
// actors, and owns the global broadcast group (presence, lobby list, the
// position sync tick). Per-room ordering comes from the room inboxes;
// everything here is either per-connection or eventually consistent.
type Router struct {
	players *player.Registry
	rooms   *room.Manager
	log     *zap.Logger

	mu    sync.RWMutex
	conns map[string]room.Conn
}

func NewRouter(players *player.Registry, rooms *room.Manager, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	rt := &Router{
		players: players,
		rooms:   rooms,
		log:     log,
		conns:   make(map[string]room.Conn),
	}
	rooms.OnUpdate = rt.broadcastRoomList
	return rt
}

// Connect registers a new connection and tells it its id.
func (rt *Router) Connect(id string, conn room.Conn) {
	rt.mu.Lock()
	rt.conns[id] = conn
	rt.mu.Unlock()
	rt.unicast(conn, protocol.MsgYourID, protocol.YourID{ID: id})
	rt.log.Info("client connected", zap.String("player", id))
}

// Disconnect unwinds a gone connection: leave the room through the same
// path as an explicit leave, then drop presence globally.
func (rt *Router) Disconnect(id string) {
	if name := rt.players.RoomOf(id); name != "" {
		if r, ok := rt.rooms.Get(name); ok {
			r.Post(room.Leave{PlayerID: id})
		}
		rt.players.SetRoom(id, "")
	}
	rt.players.Remove(id)

	rt.mu.Lock()
	delete(rt.conns, id)
	rt.mu.Unlock()

	rt.broadcastAll(protocol.MsgRemove, protocol.Removed{ID: id})
	rt.log.Info("client disconnected", zap.String("player", id))
}

// Run drives the global position reconciliation tick until ctx ends.
func (rt *Router) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / protocol.SyncHz)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range rt.players.Snapshot() {
				rt.broadcastAll(protocol.MsgSyncPosition, protocol.SyncPosition{ID: p.ID, X: p.X, Y: p.Y})
			}
		}
	}
}

// Dispatch routes one decoded client event. Unknown or malformed events
// are dropped; they cost the sender nothing but a log line.
func (rt *Router) Dispatch(id string, conn room.Conn, data []byte) {
	env, err := protocol.DecodeEnvelope(data)
	if err != nil {
		rt.log.Warn("bad envelope", zap.String("player", id), zap.Error(err))
		return
	}

	switch env.T {
	case protocol.MsgNewPlayer:
		rt.handleNewPlayer(id, conn, env)
	case protocol.MsgCreateRoom:
		rt.handleCreateRoom(id, conn, env)
	case protocol.MsgGetRooms:
		rt.unicast(conn, protocol.MsgRoomList, rt.rooms.List())
	case protocol.MsgJoinRoom:
		rt.handleJoinRoom(id, conn, env)
	case protocol.MsgLeaveRoom:
		rt.handleLeaveRoom(id, conn)
	case protocol.MsgStartGame:
		rt.handleStartGame(id, conn, env)
	case protocol.MsgGetPlayersInRoom:
		rt.handleGetPlayersInRoom(conn, env)
	case protocol.MsgReportPosition:
		if p, err := protocol.DecodePayload[protocol.Position](env); err == nil {
			rt.players.UpdatePosition(id, p.X, p.Y)
		}
	case protocol.MsgClick:
		rt.handleClick(id, env)
	case protocol.MsgMove:
		rt.handleMove(id, env)
	case protocol.MsgToggleFreeze:
		rt.postToOwnRoom(id, room.FreezeToggle{PlayerID: id})
	case protocol.MsgSetFrozen:
		if p, err := protocol.DecodePayload[protocol.SetFrozen](env); err == nil {
			rt.postToOwnRoom(id, room.FreezeSet{PlayerID: id, Value: p.Value})
		}
	case protocol.MsgStartTimer:
		if p, err := protocol.DecodePayload[protocol.StartTimer](env); err == nil {
			rt.postToOwnRoom(id, room.StartTimer{Seconds: p.DurationMs / 1000})
		}
	case protocol.MsgOverlap:
		if p, err := protocol.DecodePayload[protocol.Overlap](env); err == nil {
			rt.postToOwnRoom(id, room.Overlap{AID: p.AID, BID: p.BID})
		}
	default:
		rt.log.Debug("unknown event", zap.String("player", id), zap.String("event", env.T))
	}
}

func (rt *Router) handleNewPlayer(id string, conn room.Conn, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.NewPlayer](env)
	if err != nil {
		return
	}
	me := rt.players.Register(id, p.Nickname)
	rt.unicast(conn, protocol.MsgYourID, protocol.YourID{ID: id})
	rt.unicast(conn, protocol.MsgAllPlayers, rt.players.Snapshot())
	rt.broadcastOthers(id, protocol.MsgNewPlayer, protocol.PlayerSnapshot{
		ID: id, X: me.X, Y: me.Y, Nickname: me.Nickname,
	})
}

func (rt *Router) handleCreateRoom(id string, conn room.Conn, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.CreateRoom](env)
	if err != nil {
		return
	}
	rt.players.Register(id, "")
	if rt.players.RoomOf(id) != "" {
		rt.unicast(conn, protocol.MsgCreateRoomResult, protocol.CreateRoomResult{
			Success: false, Message: "already in a room",
		})
		return
	}
	me, _ := rt.players.Get(id)
	_, err = rt.rooms.Create(p.RoomName, p.Map, p.Password, id, me.Nickname, conn)
	if err != nil {
		rt.unicast(conn, protocol.MsgCreateRoomResult, protocol.CreateRoomResult{
			Success: false, Message: err.Error(),
		})
		return
	}
	rt.players.SetRoom(id, p.RoomName)
	rt.unicast(conn, protocol.MsgCreateRoomResult, protocol.CreateRoomResult{
		Success: true, RoomName: p.RoomName, Leader: id,
	})
}

func (rt *Router) handleJoinRoom(id string, conn room.Conn, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.JoinRoom](env)
	if err != nil {
		return
	}
	rt.players.Register(id, "")
	if rt.players.RoomOf(id) != "" {
		rt.unicast(conn, protocol.MsgJoinRoomResult, protocol.JoinRoomResult{
			Success: false, Message: "already in a room",
		})
		return
	}
	r, ok := rt.rooms.Get(p.RoomName)
	if !ok {
		rt.unicast(conn, protocol.MsgJoinRoomResult, protocol.JoinRoomResult{
			Success: false, Message: room.ErrRoomNotFound.Error(),
		})
		return
	}
	me, _ := rt.players.Get(id)
	reply := make(chan room.JoinResult, 1)
	if !r.Post(room.Join{
		PlayerID: id,
		Nickname: me.Nickname,
		Password: p.Password,
		X:        me.X,
		Y:        me.Y,
		Conn:     conn,
		Reply:    reply,
	}) {
		rt.unicast(conn, protocol.MsgJoinRoomResult, protocol.JoinRoomResult{
			Success: false, Message: room.ErrRoomNotFound.Error(),
		})
		return
	}
	var res room.JoinResult
	select {
	case res = <-reply:
	case <-r.Done():
		res = room.JoinResult{Err: room.ErrRoomNotFound}
	}
	if res.Err != nil {
		rt.unicast(conn, protocol.MsgJoinRoomResult, protocol.JoinRoomResult{
			Success: false, Message: res.Err.Error(),
		})
		return
	}
	rt.players.SetRoom(id, p.RoomName)
	rt.unicast(conn, protocol.MsgJoinRoomResult, protocol.JoinRoomResult{
		Success: true, RoomName: p.RoomName, Map: res.Map, Leader: res.Leader,
	})
}

func (rt *Router) handleLeaveRoom(id string, conn room.Conn) {
	name := rt.players.RoomOf(id)
	if name == "" {
		rt.unicast(conn, protocol.MsgLeaveRoomResult, protocol.Result{
			Success: false, Message: room.ErrNotInRoom.Error(),
		})
		return
	}
	r, ok := rt.rooms.Get(name)
	if !ok {
		rt.players.SetRoom(id, "")
		rt.unicast(conn, protocol.MsgLeaveRoomResult, protocol.Result{
			Success: false, Message: room.ErrRoomNotFound.Error(),
		})
		return
	}
	reply := make(chan error, 1)
	r.Post(room.Leave{PlayerID: id, Reply: reply})
	var err error
	select {
	case err = <-reply:
	case <-r.Done():
	}
	rt.players.SetRoom(id, "")
	if err != nil {
		rt.unicast(conn, protocol.MsgLeaveRoomResult, protocol.Result{
			Success: false, Message: err.Error(),
		})
		return
	}
	rt.unicast(conn, protocol.MsgLeaveRoomResult, protocol.Result{Success: true})
}

func (rt *Router) handleStartGame(id string, conn room.Conn, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.StartGame](env)
	if err != nil {
		return
	}
	r, ok := rt.rooms.Get(p.RoomName)
	if !ok {
		rt.unicast(conn, protocol.MsgStartGameResult, protocol.Result{
			Success: false, Message: room.ErrRoomNotFound.Error(),
		})
		return
	}
	reply := make(chan error, 1)
	r.Post(room.Start{PlayerID: id, Reply: reply})
	var startErr error
	select {
	case startErr = <-reply:
	case <-r.Done():
		startErr = room.ErrRoomNotFound
	}
	if startErr != nil {
		rt.unicast(conn, protocol.MsgStartGameResult, protocol.Result{
			Success: false, Message: startErr.Error(),
		})
		return
	}
	rt.unicast(conn, protocol.MsgStartGameResult, protocol.Result{Success: true})
}

func (rt *Router) handleGetPlayersInRoom(conn room.Conn, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.GetPlayersInRoom](env)
	if err != nil {
		return
	}
	r, ok := rt.rooms.Get(p.RoomName)
	if !ok {
		rt.unicast(conn, protocol.MsgPlayersInRoom, []protocol.RoomMember{})
		return
	}
	reply := make(chan []protocol.RoomMember, 1)
	if !r.Post(room.Members{Reply: reply}) {
		rt.unicast(conn, protocol.MsgPlayersInRoom, []protocol.RoomMember{})
		return
	}
	select {
	case members := <-reply:
		rt.unicast(conn, protocol.MsgPlayersInRoom, members)
	case <-r.Done():
		rt.unicast(conn, protocol.MsgPlayersInRoom, []protocol.RoomMember{})
	}
}

// handleClick is a position teleport: inside a room it goes to the room,
// outside it goes to everyone, same as the original behavior.
func (rt *Router) handleClick(id string, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.Position](env)
	if err != nil {
		return
	}
	rt.players.UpdatePosition(id, p.X, p.Y)
	if name := rt.players.RoomOf(id); name != "" {
		if r, ok := rt.rooms.Get(name); ok {
			r.Post(room.ClickMove{PlayerID: id, X: p.X, Y: p.Y})
		}
		return
	}
	rt.broadcastAll(protocol.MsgMove, protocol.MoveTo{ID: id, X: p.X, Y: p.Y})
}

// handleMove keeps a rough server-side position for direction events and
// rebroadcasts the direction to the room.
func (rt *Router) handleMove(id string, env protocol.Envelope) {
	p, err := protocol.DecodePayload[protocol.Move](env)
	if err != nil {
		return
	}
	name := rt.players.RoomOf(id)
	if name == "" {
		return
	}
	switch p.Dir {
	case "left":
		rt.players.MoveBy(id, -game.MoveSpeed, 0)
	case "right":
		rt.players.MoveBy(id, game.MoveSpeed, 0)
	case "up":
		rt.players.MoveBy(id, 0, -game.MoveSpeed)
	case "down":
		rt.players.MoveBy(id, 0, game.MoveSpeed)
	}
	if r, ok := rt.rooms.Get(name); ok {
		r.Post(room.MoveIntent{PlayerID: id, Dir: p.Dir})
	}
}

func (rt *Router) postToOwnRoom(id string, cmd any) {
	name := rt.players.RoomOf(id)
	if name == "" {
		return
	}
	if r, ok := rt.rooms.Get(name); ok {
		r.Post(cmd)
	}
}

func (rt *Router) broadcastRoomList() {
	rt.broadcastAll(protocol.MsgRoomListUpdate, rt.rooms.List())
}

func (rt *Router) unicast(conn room.Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		rt.log.Error("encode unicast", zap.String("event", t), zap.Error(err))
		return
	}
	_ = conn.Send(b)
}

func (rt *Router) broadcastAll(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		rt.log.Error("encode broadcast", zap.String("event", t), zap.Error(err))
		return
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for _, c := range rt.conns {
		_ = c.Send(b)
	}
}

func (rt *Router) broadcastOthers(except string, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		rt.log.Error("encode broadcast", zap.String("event", t), zap.Error(err))
		return
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	for id, c := range rt.conns {
		if id == except {
			continue
		}
		_ = c.Send(b)
	}
}
