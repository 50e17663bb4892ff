package game

import "time"

// Internal truth authoritative session state for one started match.

type Role uint8

const (
	RoleEvader Role = iota
	RoleTagger
)

// RoleForSlot keeps the original assignment rule: slots follow join order
// and the third joiner plays the tagger.
func RoleForSlot(slot int) Role {
	if slot == TaggerSlot {
		return RoleTagger
	}
	return RoleEvader
}

type Player struct {
	ID       string
	Nickname string
	Slot     int
	Role     Role
	Frozen   bool
	Dead     bool
}

type Session struct {
	Players  map[string]*Player
	AliveNum int

	StartedAt   time.Time
	DurationSec int // main countdown length; 0 until the match timer starts

	// EliminatedAt captures elapsed seconds at the moment of elimination.
	// Scores at match end use these captured values, never a recompute.
	EliminatedAt map[string]int
}

func NewSession(players []*Player, now time.Time) *Session {
	s := &Session{
		Players:      make(map[string]*Player, len(players)),
		AliveNum:     len(players),
		StartedAt:    now,
		EliminatedAt: make(map[string]int),
	}
	for _, p := range players {
		s.Players[p.ID] = p
	}
	return s
}

// Elapsed is the whole seconds since the match started.
func (s *Session) Elapsed(now time.Time) int {
	return int(now.Sub(s.StartedAt) / time.Second)
}

// Tagger returns the tagger entry, nil if it already left the room.
func (s *Session) Tagger() *Player {
	for _, p := range s.Players {
		if p.Role == RoleTagger {
			return p
		}
	}
	return nil
}
