package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"freezetag/game"
	"freezetag/protocol"
)

// recordStore captures persistence calls for assertions.
type recordStore struct {
	mu      sync.Mutex
	upserts map[string]string
	updates map[string]int
}

func newRecordStore() *recordStore {
	return &recordStore{upserts: make(map[string]string), updates: make(map[string]int)}
}

func (s *recordStore) UpsertScore(_ context.Context, id, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts[id] = nickname
	return nil
}

func (s *recordStore) UpdateScore(_ context.Context, id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[id] = score
	return nil
}

func (s *recordStore) update(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.updates[id]
	return v, ok
}

func (s *recordStore) upsertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts)
}

// syncRoom builds a full started room whose commands are applied directly,
// without the actor goroutine, so timer phases can be driven tick by tick.
func syncRoom(t *testing.T, scores *recordStore) (*Room, *fakeConn) {
	t.Helper()
	r := New("R1", "map2", "", scores, nil)
	fc := newFakeConn()
	r.seed("p1", "kim", fc)
	for _, id := range []string{"p2", "p3", "p4"} {
		reply := make(chan JoinResult, 1)
		r.handleCommand(Join{PlayerID: id, Nickname: id, Conn: newFakeConn(), Reply: reply})
		if res := <-reply; res.Err != nil {
			t.Fatalf("join %s: %v", id, res.Err)
		}
	}
	reply := make(chan error, 1)
	r.handleCommand(Start{PlayerID: "p1", Reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(r.Stop)
	return r, fc
}

func drainTicks(t *testing.T, r *Room, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		r.handleCommand(timerTick{})
	}
}

func waitStore(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("persistence did not happen in time")
}

func TestOpeningExpiryUnfreezesTaggerAndChains(t *testing.T) {
	r, fc := syncRoom(t, newRecordStore())

	drainTicks(t, r, game.TaggerFreezeSeconds)

	// Drain everything sent so far and keep the last freezeChange for p3.
	var last *protocol.FreezeChange
	sawEnd := false
	for len(fc.sendCh) > 0 {
		env, err := protocol.DecodeEnvelope(<-fc.sendCh)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		switch env.T {
		case protocol.MsgTimerEnd:
			sawEnd = true
		case protocol.MsgFreezeChange:
			p, _ := protocol.DecodePayload[protocol.FreezeChange](env)
			if p.ID == "p3" {
				last = &p
			}
		}
	}
	if !sawEnd {
		t.Fatalf("no timerEnd after the opening countdown ran out")
	}
	if last == nil || last.Value {
		t.Fatalf("tagger not unfrozen on opening expiry: %+v", last)
	}
	if !r.openingDone {
		t.Fatalf("opening phase not marked done")
	}
	if r.pendingChain == nil {
		t.Fatalf("match countdown not chained")
	}
}

func TestMatchExpiryScoresEveryRole(t *testing.T) {
	scores := newRecordStore()
	r, fc := syncRoom(t, scores)

	waitStore(t, func() bool { return scores.upsertCount() == 4 })

	// Skip the opening phase and run a short match countdown.
	drainTicks(t, r, game.TaggerFreezeSeconds)
	r.handleCommand(StartTimer{Seconds: 3})
	if r.timer == nil || r.timerPhase != phaseMatch {
		t.Fatalf("match countdown not running")
	}

	// p3 (tagger) eliminates p1 at elapsed ~0.
	r.handleCommand(Overlap{AID: "p3", BID: "p1"})
	drainTicks(t, r, 3)

	over := waitFor[protocol.GameOver](t, fc, protocol.MsgGameOver, time.Second)
	if over.Winner != string(game.WinnerEvaders) {
		t.Fatalf("winner = %q, want evaders", over.Winner)
	}
	if r.session != nil {
		t.Fatalf("session survives the match end")
	}

	waitStore(t, func() bool {
		_, ok := scores.update("p4")
		return ok
	})
	for id, want := range map[string]int{"p1": 0, "p2": 3, "p3": 0, "p4": 3} {
		if got, _ := scores.update(id); got != want {
			t.Fatalf("score[%s] = %d, want %d", id, got, want)
		}
	}
}

func TestTaggerWinIsDelayedNotImmediate(t *testing.T) {
	scores := newRecordStore()
	r, fc := syncRoom(t, scores)
	drainTicks(t, r, game.TaggerFreezeSeconds)

	for _, victim := range []string{"p1", "p2", "p4"} {
		r.handleCommand(Overlap{AID: "p3", BID: victim})
		// separate physical contacts, get past the pair cooldown map
	}
	if r.session.AliveNum != 1 {
		t.Fatalf("AliveNum = %d, want 1", r.session.AliveNum)
	}
	if r.pendingGameOver == nil {
		t.Fatalf("game over not scheduled")
	}

	// Nothing announced yet.
	for len(fc.sendCh) > 0 {
		env, _ := protocol.DecodeEnvelope(<-fc.sendCh)
		if env.T == protocol.MsgGameOver {
			t.Fatalf("game over broadcast before the settle delay")
		}
	}

	r.handleCommand(gameOverDue{})
	over := waitFor[protocol.GameOver](t, fc, protocol.MsgGameOver, time.Second)
	if over.Winner != string(game.WinnerTagger) {
		t.Fatalf("winner = %q, want tagger", over.Winner)
	}
}

func TestRoomDestroyCancelsLiveTimer(t *testing.T) {
	r, _ := syncRoom(t, newRecordStore())
	if r.timer == nil {
		t.Fatalf("no opening countdown after start")
	}
	c := r.timer
	r.destroy()
	if r.timer != nil {
		t.Fatalf("timer survived destroy")
	}
	select {
	case <-c.cancel:
	default:
		t.Fatalf("countdown goroutine not cancelled on destroy")
	}
}
