package room

import (
	"time"

	"freezetag/game"
	"freezetag/protocol"
)

// countdown is the live timer of a room: at most one exists per room.
// It only produces ticks; all state changes happen in the room goroutine.
type countdown struct {
	remaining int
	cancel    chan struct{}
}

func (c *countdown) run(inbox chan<- any, quit <-chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-c.cancel:
			return
		case <-quit:
			return
		case <-t.C:
			select {
			case inbox <- timerTick{}:
			case <-c.cancel:
				return
			case <-quit:
				return
			}
		}
	}
}

// startCountdown begins a countdown unless one is already running; the
// duplicate request is silently absorbed. The starting value is broadcast
// right away so clients can render the full count.
func (r *Room) startCountdown(seconds int, ph phase) bool {
	if r.timer != nil {
		return false
	}
	c := &countdown{remaining: seconds, cancel: make(chan struct{})}
	r.timer = c
	r.timerPhase = ph
	if ph == phaseMatch && r.session != nil {
		r.session.DurationSec = seconds
	}
	r.broadcast(protocol.MsgTimer, protocol.Timer{Remaining: seconds})
	go c.run(r.Inbox, r.quit)
	return true
}

func (r *Room) stopCountdown() {
	if r.timer == nil {
		return
	}
	close(r.timer.cancel)
	r.timer = nil
}

// handleStartTimer serves both the explicit client request and the chained
// match countdown. seconds <= 0 picks the default for the current phase.
func (r *Room) handleStartTimer(seconds int) {
	if r.status != StatusStarted || r.session == nil {
		return
	}
	ph := phaseOpening
	if r.openingDone {
		ph = phaseMatch
	}
	if seconds <= 0 {
		if ph == phaseOpening {
			seconds = game.TaggerFreezeSeconds
		} else {
			seconds = game.MatchSeconds
		}
	}
	r.startCountdown(seconds, ph)
}

func (r *Room) handleTimerTick() {
	if r.timer == nil {
		// tick raced a cancel
		return
	}
	r.timer.remaining--
	r.broadcast(protocol.MsgTimer, protocol.Timer{Remaining: r.timer.remaining})
	if r.timer.remaining > 0 {
		return
	}

	r.stopCountdown()
	r.broadcast(protocol.MsgTimerEnd, nil)

	switch r.timerPhase {
	case phaseOpening:
		r.openingDone = true
		if r.session != nil {
			if tg := r.session.Tagger(); tg != nil {
				r.applyEffects(game.SetFrozen(r.session, tg.ID, false))
			}
			// Chain the main countdown after a short breather.
			r.pendingChain = time.AfterFunc(game.ChainDelaySeconds*time.Second, func() {
				select {
				case r.Inbox <- chainMatch{}:
				case <-r.quit:
				}
			})
		}
	case phaseMatch:
		r.endGame(game.WinnerEvaders)
	}
}
