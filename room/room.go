package room

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"freezetag/game"
	"freezetag/protocol"
	"freezetag/store"
)

type Status uint8

const (
	StatusWaiting Status = iota
	StatusReady
	StatusStarted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusStarted:
		return "started"
	default:
		return "waiting"
	}
}

type member struct {
	id       string
	nickname string
}

// Which countdown is live. The timer itself is phase-agnostic; the room
// remembers what an expiry means.
type phase uint8

const (
	phaseOpening phase = iota // tagger locked in place at round start
	phaseMatch
)

// Room owns all state for one named room. Everything is mutated by the
// single goroutine draining Inbox, so no field below needs a lock except
// the info snapshot read by the lobby projection.
type Room struct {
	Inbox chan any
	Name  string
	Map   string

	OnEmpty  func(name string) // called when the last member leaves
	OnUpdate func()            // called after any lobby-visible mutation

	password string
	members  []member // insertion order; slot = index
	clients  map[string]Conn
	leader   string
	status   Status

	session     *game.Session
	openingDone bool
	timer       *countdown
	timerPhase  phase

	pendingChain    *time.Timer
	pendingGameOver *time.Timer
	lastOverlap     map[string]time.Time

	scores store.ScoreStore
	log    *zap.Logger

	infoMu sync.RWMutex
	info   protocol.RoomInfo

	quit     chan struct{}
	stopOnce sync.Once
}

func New(name, mapID, password string, scores store.ScoreStore, log *zap.Logger) *Room {
	if scores == nil {
		scores = store.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	r := &Room{
		Inbox:       make(chan any, 256),
		Name:        name,
		Map:         mapID,
		password:    password,
		clients:     make(map[string]Conn),
		lastOverlap: make(map[string]time.Time),
		scores:      scores,
		log:         log,
		quit:        make(chan struct{}),
	}
	r.updateInfo()
	return r
}

// seed installs the creator as sole member and leader. Must run before Run.
func (r *Room) seed(id, nickname string, conn Conn) {
	r.members = []member{{id, nickname}}
	r.leader = id
	r.clients[id] = conn
	r.updateInfo()
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed when the room goroutine is gone.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

// Post delivers a command unless the room is already dead.
func (r *Room) Post(cmd any) bool {
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.quit:
		return false
	}
}

// Info is an eventually consistent snapshot for the lobby list.
func (r *Room) Info() protocol.RoomInfo {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.info
}

func (r *Room) Run() {
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		r.handleJoin(c)
	case Leave:
		r.handleLeave(c.PlayerID, c.Reply)
	case Start:
		r.handleStart(c)
	case Members:
		c.Reply <- r.memberList()
	case MoveIntent:
		r.broadcast(protocol.MsgMove, protocol.MoveDir{ID: c.PlayerID, Dir: c.Dir})
	case ClickMove:
		r.broadcast(protocol.MsgMove, protocol.MoveTo{ID: c.PlayerID, X: c.X, Y: c.Y})
	case FreezeToggle:
		r.handleFreezeToggle(c.PlayerID)
	case FreezeSet:
		if r.session != nil {
			r.applyEffects(game.SetFrozen(r.session, c.PlayerID, c.Value))
		}
	case StartTimer:
		r.handleStartTimer(c.Seconds)
	case Overlap:
		r.handleOverlap(c)
	case timerTick:
		r.handleTimerTick()
	case chainMatch:
		r.pendingChain = nil
		if r.openingDone {
			r.handleStartTimer(0)
		}
	case gameOverDue:
		r.pendingGameOver = nil
		r.endGame(game.WinnerTagger)
	}
}

func (r *Room) handleJoin(c Join) {
	var err error
	switch {
	case r.status != StatusWaiting:
		err = ErrRoomNotWaiting
	case r.password != "" && r.password != c.Password:
		err = ErrWrongPassword
	case len(r.members) >= game.RoomCapacity:
		err = ErrRoomFull
	}
	if err != nil {
		c.Reply <- JoinResult{Err: err}
		return
	}

	// Existing members learn about the joiner; the joiner gets the reply.
	r.broadcast(protocol.MsgNewPlayer, protocol.PlayerSnapshot{
		ID: c.PlayerID, X: c.X, Y: c.Y, Nickname: c.Nickname,
	})

	r.members = append(r.members, member{id: c.PlayerID, nickname: c.Nickname})
	r.clients[c.PlayerID] = c.Conn
	c.Reply <- JoinResult{Map: r.Map, Leader: r.leader}

	if len(r.members) == game.RoomCapacity {
		r.status = StatusReady
		r.broadcast(protocol.MsgRoomReady, protocol.RoomReady{Leader: r.leader})
	}
	r.updateInfo()
	r.notifyUpdate()
	r.log.Info("player joined room",
		zap.String("room", r.Name),
		zap.String("player", c.PlayerID),
		zap.Int("size", len(r.members)))
}

func (r *Room) handleLeave(id string, reply chan<- error) {
	idx := -1
	for i, m := range r.members {
		if m.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		if reply != nil {
			reply <- ErrNotInRoom
		}
		return
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	delete(r.clients, id)

	if r.session != nil {
		r.applyEffects(game.Forfeit(r.session, id, r.session.Elapsed(time.Now())))
	}

	if len(r.members) == 0 {
		r.destroy()
		if reply != nil {
			reply <- nil
		}
		r.notifyUpdate()
		return
	}

	if r.leader == id {
		r.leader = r.members[0].id
		r.broadcast(protocol.MsgNewLeader, protocol.NewLeader{Leader: r.leader})
	}
	r.broadcast(protocol.MsgRemove, protocol.Removed{ID: id})
	if reply != nil {
		reply <- nil
	}
	r.updateInfo()
	r.notifyUpdate()
}

func (r *Room) handleStart(c Start) {
	var err error
	switch {
	case r.status == StatusStarted:
		err = ErrRoomNotWaiting
	case c.PlayerID != r.leader:
		err = ErrNotLeader
	case len(r.members) < game.RoomCapacity:
		err = ErrNotEnoughPlayers
	}
	if err != nil {
		c.Reply <- err
		return
	}

	r.status = StatusStarted
	players := make([]*game.Player, len(r.members))
	roster := make([]protocol.GamePlayer, len(r.members))
	for i, m := range r.members {
		players[i] = &game.Player{
			ID:       m.id,
			Nickname: m.nickname,
			Slot:     i,
			Role:     game.RoleForSlot(i),
		}
		roster[i] = protocol.GamePlayer{ID: m.id, Slot: i, Nickname: m.nickname}
	}
	r.session = game.NewSession(players, time.Now())
	r.openingDone = false
	r.lastOverlap = make(map[string]time.Time)
	c.Reply <- nil

	r.broadcast(protocol.MsgStartGame, roster)

	// Tagger sits out the opening countdown frozen.
	if tg := r.session.Tagger(); tg != nil {
		r.applyEffects(game.SetFrozen(r.session, tg.ID, true))
	}
	r.startCountdown(game.TaggerFreezeSeconds, phaseOpening)

	go r.persistRoster(roster)
	r.updateInfo()
	r.notifyUpdate()
	r.log.Info("game started", zap.String("room", r.Name))
}

func (r *Room) handleFreezeToggle(id string) {
	if r.session == nil {
		return
	}
	p := r.session.Players[id]
	if p == nil {
		return
	}
	if p.Frozen {
		r.applyEffects(game.SetFrozen(r.session, id, false))
	} else {
		r.applyEffects(game.RequestFreeze(r.session, id))
	}
}

func (r *Room) handleOverlap(c Overlap) {
	if r.session == nil {
		return
	}
	now := time.Now()
	key := pairKey(c.AID, c.BID)
	if last, ok := r.lastOverlap[key]; ok && now.Sub(last) < game.OverlapCooldownMs*time.Millisecond {
		return
	}
	r.lastOverlap[key] = now
	r.applyEffects(game.ResolveOverlap(r.session, r.session.Elapsed(now), c.AID, c.BID))
}

func (r *Room) applyEffects(effects []game.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case game.EffectFreezeChange:
			r.broadcast(protocol.MsgFreezeChange, protocol.FreezeChange{ID: e.PlayerID, Value: e.Frozen})
		case game.EffectEliminated:
			r.broadcast(protocol.MsgDead, protocol.Dead{ID: e.PlayerID})
		case game.EffectTaggerWin:
			r.scheduleGameOver()
		case game.EffectEvadersWin:
			r.endGame(game.WinnerEvaders)
		}
	}
}

// scheduleGameOver delays the tagger-wins announcement so elimination
// animations can settle client-side.
func (r *Room) scheduleGameOver() {
	if r.pendingGameOver != nil {
		return
	}
	r.pendingGameOver = time.AfterFunc(game.GameOverDelaySeconds*time.Second, func() {
		select {
		case r.Inbox <- gameOverDue{}:
		case <-r.quit:
		}
	})
}

func (r *Room) endGame(winner game.Winner) {
	if r.session == nil {
		return
	}
	r.stopCountdown()
	if r.pendingChain != nil {
		r.pendingChain.Stop()
		r.pendingChain = nil
	}
	if r.pendingGameOver != nil {
		r.pendingGameOver.Stop()
		r.pendingGameOver = nil
	}

	scores := game.FinalScores(r.session, winner, r.session.Elapsed(time.Now()))
	r.session = nil
	r.broadcast(protocol.MsgGameOver, protocol.GameOver{Winner: string(winner)})
	go r.persistScores(scores)
	r.log.Info("match finished",
		zap.String("room", r.Name),
		zap.String("winner", string(winner)))
}

// destroy tears the room down with the last member. Timers are cancelled
// here, before OnEmpty, so nothing can tick into a deleted room.
func (r *Room) destroy() {
	r.stopCountdown()
	if r.pendingChain != nil {
		r.pendingChain.Stop()
		r.pendingChain = nil
	}
	if r.pendingGameOver != nil {
		r.pendingGameOver.Stop()
		r.pendingGameOver = nil
	}
	r.session = nil
	if r.OnEmpty != nil {
		r.OnEmpty(r.Name)
	}
	r.log.Info("room destroyed", zap.String("room", r.Name))
}

func (r *Room) memberList() []protocol.RoomMember {
	out := make([]protocol.RoomMember, len(r.members))
	for i, m := range r.members {
		out[i] = protocol.RoomMember{ID: m.id, Nickname: m.nickname}
	}
	return out
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error("encode broadcast", zap.String("event", t), zap.Error(err))
		return
	}
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			// The transport will deliver the disconnect; stop sending now.
			delete(r.clients, id)
			r.log.Warn("dropping unreachable room conn",
				zap.String("room", r.Name),
				zap.String("player", id),
				zap.Error(err))
		}
	}
}

func (r *Room) updateInfo() {
	r.infoMu.Lock()
	r.info = protocol.RoomInfo{
		RoomName:          r.Name,
		Map:               r.Map,
		PlayerCount:       len(r.members),
		PasswordProtected: r.password != "",
		Status:            r.status.String(),
	}
	r.infoMu.Unlock()
}

func (r *Room) notifyUpdate() {
	if r.OnUpdate != nil {
		r.OnUpdate()
	}
}

func (r *Room) persistRoster(roster []protocol.GamePlayer) {
	for _, p := range roster {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.scores.UpsertScore(ctx, p.ID, p.Nickname); err != nil {
			r.log.Warn("score upsert failed",
				zap.String("player", p.ID),
				zap.Error(err))
		}
		cancel()
	}
}

func (r *Room) persistScores(scores map[string]int) {
	for id, score := range scores {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.scores.UpdateScore(ctx, id, score); err != nil {
			r.log.Warn("score update failed",
				zap.String("player", id),
				zap.Int("score", score),
				zap.Error(err))
		}
		cancel()
	}
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
