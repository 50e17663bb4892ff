package player

import (
	"sync"

	"freezetag/game"
	"freezetag/protocol"
)

type Player struct {
	ID       string
	Nickname string
	X, Y     float64
	Room     string // empty when not in a room
}

// Registry is the global presence table, keyed by connection identity.
// Room state lives elsewhere; the registry only remembers which room a
// player is in so leave and disconnect can find it.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*Player)}
}

// Register creates the entry on first contact. Calling it again for a known
// id returns the existing record unchanged.
func (r *Registry) Register(id, nickname string) Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		return *p
	}
	if nickname == "" {
		nickname = "noname"
	}
	p := &Player{ID: id, Nickname: nickname, X: game.SpawnX, Y: game.SpawnY}
	r.players[id] = p
	return *p
}

func (r *Registry) Get(id string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// UpdatePosition overwrites the stored position. The report is trusted;
// there is no speed or plausibility validation server-side.
func (r *Registry) UpdatePosition(id string, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.X = x
		p.Y = y
	}
}

// MoveBy shifts the stored position for a direction event.
func (r *Registry) MoveBy(id string, dx, dy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.X += dx
		p.Y += dy
	}
}

func (r *Registry) SetRoom(id, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.Room = room
	}
}

// RoomOf returns the current room name, empty if none or unknown.
func (r *Registry) RoomOf(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.players[id]; ok {
		return p.Room
	}
	return ""
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

// Snapshot is an eventually consistent view for allplayers and the global
// position sync tick.
func (r *Registry) Snapshot() []protocol.PlayerSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.PlayerSnapshot, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, protocol.PlayerSnapshot{ID: p.ID, X: p.X, Y: p.Y, Nickname: p.Nickname})
	}
	return out
}
