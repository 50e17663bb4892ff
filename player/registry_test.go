package player

import (
	"testing"

	"freezetag/game"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	first := r.Register("c1", "kim")
	if first.X != game.SpawnX || first.Y != game.SpawnY {
		t.Fatalf("spawn = (%f,%f), want fixed spawn point", first.X, first.Y)
	}

	r.UpdatePosition("c1", 10, 20)
	again := r.Register("c1", "other")
	if again.Nickname != "kim" {
		t.Fatalf("re-register changed nickname to %q", again.Nickname)
	}
	if again.X != 10 || again.Y != 20 {
		t.Fatalf("re-register reset position to (%f,%f)", again.X, again.Y)
	}
}

func TestRegisterDefaultsNickname(t *testing.T) {
	r := NewRegistry()
	p := r.Register("c1", "")
	if p.Nickname != "noname" {
		t.Fatalf("nickname = %q, want noname", p.Nickname)
	}
}

func TestUpdatePositionUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.UpdatePosition("ghost", 1, 2)
	r.MoveBy("ghost", 1, 2)
	if _, ok := r.Get("ghost"); ok {
		t.Fatalf("position update materialized an unknown player")
	}
}

func TestMoveByShiftsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "kim")
	r.MoveBy("c1", game.MoveSpeed, 0)
	p, _ := r.Get("c1")
	if p.X != game.SpawnX+game.MoveSpeed {
		t.Fatalf("x = %f after move", p.X)
	}
}

func TestRemoveAndSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "a")
	r.Register("c2", "b")
	r.Remove("c1")

	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].ID != "c2" {
		t.Fatalf("snapshot after remove = %+v", snap)
	}
	if r.RoomOf("c1") != "" {
		t.Fatalf("removed player still reports a room")
	}
}
