package game

import (
	"testing"
	"time"
)

func testSession() *Session {
	players := []*Player{
		{ID: "p1", Nickname: "a", Slot: 0, Role: RoleForSlot(0)},
		{ID: "p2", Nickname: "b", Slot: 1, Role: RoleForSlot(1)},
		{ID: "p3", Nickname: "c", Slot: 2, Role: RoleForSlot(2)},
		{ID: "p4", Nickname: "d", Slot: 3, Role: RoleForSlot(3)},
	}
	return NewSession(players, time.Now())
}

func kinds(effects []Effect) map[EffectKind]int {
	out := make(map[EffectKind]int)
	for _, e := range effects {
		out[e.Kind]++
	}
	return out
}

func TestRoleForSlot(t *testing.T) {
	for slot := 0; slot < RoomCapacity; slot++ {
		want := RoleEvader
		if slot == 2 {
			want = RoleTagger
		}
		if got := RoleForSlot(slot); got != want {
			t.Fatalf("RoleForSlot(%d) = %v, want %v", slot, got, want)
		}
	}
}

func TestOverlapEvaderThawsFrozenAlly(t *testing.T) {
	s := testSession()
	s.Players["p1"].Frozen = true

	effects := ResolveOverlap(s, 10, "p1", "p2")
	if len(effects) != 1 {
		t.Fatalf("expected exactly one effect, got %d", len(effects))
	}
	e := effects[0]
	if e.Kind != EffectFreezeChange || e.PlayerID != "p1" || e.Frozen {
		t.Fatalf("expected thaw of p1, got %+v", e)
	}
	if s.Players["p1"].Frozen {
		t.Fatalf("p1 still frozen after ally touch")
	}
}

func TestOverlapIsSymmetric(t *testing.T) {
	a := testSession()
	a.Players["p1"].Frozen = true
	b := testSession()
	b.Players["p1"].Frozen = true

	ea := ResolveOverlap(a, 0, "p1", "p2")
	eb := ResolveOverlap(b, 0, "p2", "p1")
	if len(ea) != 1 || len(eb) != 1 || ea[0] != eb[0] {
		t.Fatalf("overlap not symmetric: %+v vs %+v", ea, eb)
	}
}

func TestOverlapEvadersBothFrozenOrBothNotIsNoop(t *testing.T) {
	s := testSession()
	if effects := ResolveOverlap(s, 0, "p1", "p2"); len(effects) != 0 {
		t.Fatalf("two unfrozen evaders should not interact, got %+v", effects)
	}
	s.Players["p1"].Frozen = true
	s.Players["p2"].Frozen = true
	if effects := ResolveOverlap(s, 0, "p1", "p2"); len(effects) != 0 {
		t.Fatalf("two frozen evaders should not interact, got %+v", effects)
	}
}

func TestFrozenEvaderCannotBeTagged(t *testing.T) {
	s := testSession()
	s.Players["p1"].Frozen = true

	if effects := ResolveOverlap(s, 0, "p3", "p1"); len(effects) != 0 {
		t.Fatalf("frozen evader must be immune, got %+v", effects)
	}
	if s.Players["p1"].Dead {
		t.Fatalf("frozen evader was eliminated")
	}
}

func TestFrozenTaggerCannotTag(t *testing.T) {
	s := testSession()
	s.Players["p3"].Frozen = true

	if effects := ResolveOverlap(s, 0, "p3", "p1"); len(effects) != 0 {
		t.Fatalf("frozen tagger must be inert, got %+v", effects)
	}
}

func TestTagEliminatesAndClearsAllFreezes(t *testing.T) {
	s := testSession()
	s.Players["p2"].Frozen = true
	s.Players["p4"].Frozen = true

	effects := ResolveOverlap(s, 42, "p3", "p1")

	p1 := s.Players["p1"]
	if !p1.Dead || !p1.Frozen {
		t.Fatalf("victim state = dead:%v frozen:%v, want dead and frozen", p1.Dead, p1.Frozen)
	}
	if s.AliveNum != 3 {
		t.Fatalf("AliveNum = %d, want 3", s.AliveNum)
	}
	if got := s.EliminatedAt["p1"]; got != 42 {
		t.Fatalf("captured elapsed = %d, want 42", got)
	}
	if s.Players["p2"].Frozen || s.Players["p4"].Frozen {
		t.Fatalf("elimination must clear every other living freeze")
	}
	k := kinds(effects)
	if k[EffectEliminated] != 1 {
		t.Fatalf("want one elimination effect, got %d", k[EffectEliminated])
	}
	if k[EffectFreezeChange] != 2 {
		t.Fatalf("want two thaw effects, got %d", k[EffectFreezeChange])
	}
	if k[EffectTaggerWin] != 0 {
		t.Fatalf("premature win with 3 alive")
	}
}

func TestThirdEliminationTriggersTaggerWin(t *testing.T) {
	s := testSession()
	for i, id := range []string{"p1", "p2", "p4"} {
		effects := ResolveOverlap(s, i, "p3", id)
		if len(effects) == 0 {
			t.Fatalf("tag %d produced no effects", i)
		}
		win := kinds(effects)[EffectTaggerWin]
		if i < 2 && win != 0 {
			t.Fatalf("win fired with %d alive", s.AliveNum)
		}
		if i == 2 && win != 1 {
			t.Fatalf("no win effect after last evader fell")
		}
	}
	if s.AliveNum != 1 {
		t.Fatalf("AliveNum = %d, want 1", s.AliveNum)
	}
}

func TestDeadPlayersDoNotInteract(t *testing.T) {
	s := testSession()
	ResolveOverlap(s, 0, "p3", "p1")
	if s.AliveNum != 3 {
		t.Fatalf("setup failed, AliveNum = %d", s.AliveNum)
	}

	// Dead victim can neither be thawed nor re-tagged.
	if effects := ResolveOverlap(s, 1, "p2", "p1"); len(effects) != 0 {
		t.Fatalf("dead evader interacted with ally: %+v", effects)
	}
	if effects := ResolveOverlap(s, 1, "p3", "p1"); len(effects) != 0 {
		t.Fatalf("dead evader interacted with tagger: %+v", effects)
	}
	if s.AliveNum != 3 {
		t.Fatalf("AliveNum changed on dead overlap: %d", s.AliveNum)
	}
}

func TestOverlapUnknownIDIsDropped(t *testing.T) {
	s := testSession()
	if effects := ResolveOverlap(s, 0, "p3", "ghost"); len(effects) != 0 {
		t.Fatalf("unknown id must drop the event, got %+v", effects)
	}
	if effects := ResolveOverlap(s, 0, "p1", "p1"); len(effects) != 0 {
		t.Fatalf("self overlap must be a no-op, got %+v", effects)
	}
}

func TestRequestFreezeRefusedForLastActiveEvaders(t *testing.T) {
	s := testSession()
	s.Players["p1"].Frozen = true // leaves p2 and p4 active

	if effects := RequestFreeze(s, "p2"); len(effects) != 0 {
		t.Fatalf("freeze granted although it strands the last evader: %+v", effects)
	}
	if s.Players["p2"].Frozen {
		t.Fatalf("p2 frozen despite refusal")
	}
}

func TestRequestFreezeGrantedWhileEnoughEvadersActive(t *testing.T) {
	s := testSession()
	effects := RequestFreeze(s, "p1")
	if len(effects) != 1 || !s.Players["p1"].Frozen {
		t.Fatalf("voluntary freeze refused with three active evaders: %+v", effects)
	}
}

func TestRequestFreezeIgnoresTagger(t *testing.T) {
	s := testSession()
	if effects := RequestFreeze(s, "p3"); len(effects) != 0 {
		t.Fatalf("tagger cannot voluntarily freeze, got %+v", effects)
	}
}

func TestSetFrozenIdempotent(t *testing.T) {
	s := testSession()
	if effects := SetFrozen(s, "p1", true); len(effects) != 1 {
		t.Fatalf("first set should produce one effect, got %d", len(effects))
	}
	if effects := SetFrozen(s, "p1", true); len(effects) != 0 {
		t.Fatalf("redundant set must be silent, got %+v", effects)
	}
	if effects := SetFrozen(s, "p1", false); len(effects) != 1 {
		t.Fatalf("unset should produce one effect, got %d", len(effects))
	}
}

func TestSetFrozenIgnoresDead(t *testing.T) {
	s := testSession()
	ResolveOverlap(s, 0, "p3", "p1")
	if effects := SetFrozen(s, "p1", false); len(effects) != 0 {
		t.Fatalf("dead player frozen flag must stay, got %+v", effects)
	}
}

func TestForfeitEvaderCountsAsElimination(t *testing.T) {
	s := testSession()
	effects := Forfeit(s, "p1", 30)
	if len(effects) != 0 {
		t.Fatalf("forfeit with 3 alive should end nothing, got %+v", effects)
	}
	if s.AliveNum != 3 {
		t.Fatalf("AliveNum = %d, want 3", s.AliveNum)
	}
	if s.EliminatedAt["p1"] != 30 {
		t.Fatalf("forfeit elapsed not captured")
	}

	Forfeit(s, "p2", 31)
	effects = Forfeit(s, "p4", 32)
	if kinds(effects)[EffectTaggerWin] != 1 {
		t.Fatalf("last evader leaving must hand the tagger the win, got %+v", effects)
	}
}

func TestForfeitTaggerEndsMatchForEvaders(t *testing.T) {
	s := testSession()
	effects := Forfeit(s, "p3", 12)
	if kinds(effects)[EffectEvadersWin] != 1 {
		t.Fatalf("tagger leaving must end the match, got %+v", effects)
	}
	if s.Tagger() != nil {
		t.Fatalf("tagger still present after forfeit")
	}
}
