package room

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"freezetag/protocol"
	"freezetag/store"
)

// Manager holds rooms by name. A room is created with its creator already
// seated as leader, and removed the instant its last member leaves.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	scores store.ScoreStore
	log    *zap.Logger

	// OnUpdate fires after any lobby-visible change; set before traffic.
	OnUpdate func()
}

func NewManager(scores store.ScoreStore, log *zap.Logger) *Manager {
	if scores == nil {
		scores = store.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		rooms:  make(map[string]*Room),
		scores: scores,
		log:    log,
	}
}

// Create makes a new room with the creator as sole member and leader.
func (m *Manager) Create(name, mapID, password, creatorID, nickname string, conn Conn) (*Room, error) {
	m.mu.Lock()
	if _, exists := m.rooms[name]; exists {
		m.mu.Unlock()
		return nil, ErrDuplicateRoom
	}
	r := New(name, mapID, password, m.scores, m.log)
	r.OnEmpty = func(n string) { m.remove(n) }
	r.OnUpdate = func() {
		if m.OnUpdate != nil {
			m.OnUpdate()
		}
	}
	r.seed(creatorID, nickname, conn)
	m.rooms[name] = r
	m.mu.Unlock()

	go r.Run()
	m.log.Info("room created",
		zap.String("room", name),
		zap.String("map", mapID),
		zap.String("leader", creatorID))
	if m.OnUpdate != nil {
		m.OnUpdate()
	}
	return r, nil
}

func (m *Manager) Get(name string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[name]
	return r, ok
}

func (m *Manager) remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		r.Stop()
		delete(m.rooms, name)
	}
}

// List is the lobby projection. It reads per-room snapshots, so it never
// waits on any room's command processing.
func (m *Manager) List() []protocol.RoomInfo {
	m.mu.RLock()
	out := make([]protocol.RoomInfo, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Info())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].RoomName < out[j].RoomName })
	return out
}
