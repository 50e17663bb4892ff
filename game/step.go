package game

// Tag rules. All operations mutate the session and return the effects the
// caller must broadcast; an empty slice means nothing observable happened.
// Callers are expected to serialize access to one session.

type EffectKind uint8

const (
	EffectFreezeChange EffectKind = iota
	EffectEliminated
	EffectTaggerWin
	EffectEvadersWin
)

type Effect struct {
	Kind     EffectKind
	PlayerID string
	Frozen   bool
}

// RequestFreeze is a voluntary freeze by an evader. It is refused when it
// would leave the tagger with fewer than two unfrozen, living evaders in
// play: you cannot freeze yourself into a trivial tagger win.
func RequestFreeze(s *Session, id string) []Effect {
	p := s.Players[id]
	if p == nil || p.Dead || p.Frozen || p.Role == RoleTagger {
		return nil
	}
	active := 0
	for _, q := range s.Players {
		if q.Role == RoleTagger || q.Dead || q.Frozen {
			continue
		}
		active++
	}
	if active <= 2 {
		return nil
	}
	p.Frozen = true
	return []Effect{{Kind: EffectFreezeChange, PlayerID: id, Frozen: true}}
}

// SetFrozen sets the frozen flag directly. Dead players are ignored and a
// redundant set produces no effect.
func SetFrozen(s *Session, id string, value bool) []Effect {
	p := s.Players[id]
	if p == nil || p.Dead || p.Frozen == value {
		return nil
	}
	p.Frozen = value
	return []Effect{{Kind: EffectFreezeChange, PlayerID: id, Frozen: value}}
}

// ResolveOverlap applies the contact rules to an unordered pair:
//
//   - dead participants do not interact
//   - evader touching evader thaws a frozen one (exactly one frozen)
//   - tagger touching an unfrozen evader eliminates it; every other living
//     player is unfrozen so a match can never deadlock on chained freezes
//
// elapsedSec is captured for eliminated players. An unknown id drops the
// whole event.
func ResolveOverlap(s *Session, elapsedSec int, aID, bID string) []Effect {
	pa, pb := s.Players[aID], s.Players[bID]
	if pa == nil || pb == nil || pa == pb {
		return nil
	}
	if pa.Dead || pb.Dead {
		return nil
	}

	if pa.Role != RoleTagger && pb.Role != RoleTagger {
		if pa.Frozen == pb.Frozen {
			return nil
		}
		thawed := pa
		if pb.Frozen {
			thawed = pb
		}
		thawed.Frozen = false
		return []Effect{{Kind: EffectFreezeChange, PlayerID: thawed.ID, Frozen: false}}
	}

	// Tag attempt. Frozen players are inert on both sides of it.
	if pa.Frozen || pb.Frozen {
		return nil
	}
	victim := pa
	if pa.Role == RoleTagger {
		victim = pb
	}
	victim.Dead = true
	victim.Frozen = true
	s.AliveNum--
	s.EliminatedAt[victim.ID] = elapsedSec

	effects := []Effect{{Kind: EffectEliminated, PlayerID: victim.ID}}
	for _, q := range s.Players {
		if q.Dead || !q.Frozen {
			continue
		}
		q.Frozen = false
		effects = append(effects, Effect{Kind: EffectFreezeChange, PlayerID: q.ID, Frozen: false})
	}
	if s.AliveNum == 1 {
		effects = append(effects, Effect{Kind: EffectTaggerWin})
	}
	return effects
}

// Forfeit removes a player who left mid-match. A living evader counts as
// eliminated for the alive count; a leaving tagger hands the win to the
// evaders since nobody can tag anymore.
func Forfeit(s *Session, id string, elapsedSec int) []Effect {
	p := s.Players[id]
	if p == nil {
		return nil
	}
	delete(s.Players, id)
	if p.Dead {
		return nil
	}
	if p.Role == RoleTagger {
		return []Effect{{Kind: EffectEvadersWin}}
	}
	s.AliveNum--
	s.EliminatedAt[id] = elapsedSec
	if s.AliveNum == 1 {
		return []Effect{{Kind: EffectTaggerWin}}
	}
	return nil
}
