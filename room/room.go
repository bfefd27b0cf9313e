// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/network"
)

var ErrRoomExists = errors.New("room already exists")

// Player 是房间内的成员记录。Conn 不对外序列化
type Player struct {
	ID        string
	Username  string
	Zone      string
	Character int
	Conn      network.Connection
}

// Room 是游戏房间的核心结构。players 保持加入顺序，
// 房主交接时顺位继承取决于这个顺序
type Room struct {
	ID        string
	HostID    string // 空字符串表示房间无人
	Started   bool
	CreatedAt time.Time
	players   []*Player
	sessions  map[string]ZoneSession // zone -> session
}

// playerIndex returns the roster position of a player id, or -1.
func (r *Room) playerIndex(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// PlayerCount returns the roster size. Callers outside the manager get a
// snapshot only; the slice itself is never handed out.
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// RemoveResult 描述一次移除操作的结果。NewHostID 为空表示房主未变
type RemoveResult struct {
	Room      *Room
	NewHostID string
}

// --- 房间管理器 ---

// Manager 管理所有房间。所有写操作都经由 Manager 串行化，
// 对调用方而言每个操作都是原子的
type Manager struct {
	rooms      map[string]*Room
	maxPlayers int
	factory    SessionFactory
	mutex      sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器。factory 可以为 nil，
// 此时不会创建任何区域会话
func NewRoomManager(maxPlayers int, factory SessionFactory) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		maxPlayers: maxPlayers,
		factory:    factory,
	}
}

func (m *Manager) MaxPlayers() int {
	return m.maxPlayers
}

// CreateRoom 创建一个空房间。重复的 id 直接拒绝，绝不重置已有房间
func (m *Manager) CreateRoom(id string) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.rooms[id]; exists {
		return nil, ErrRoomExists
	}

	room := &Room{
		ID:        id,
		CreatedAt: time.Now(),
		sessions:  make(map[string]ZoneSession),
	}
	m.rooms[id] = room
	return room, nil
}

func (m *Manager) HasRoom(id string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, exists := m.rooms[id]
	return exists
}

func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[id]
	return room, exists
}

func (m *Manager) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// AddPlayer 添加一个玩家到房间。房间不存在、已满或 id 重复都返回 false。
// 第一个加入的玩家成为房主，此后房主只在房主离开时交接
func (m *Manager) AddPlayer(roomID string, p *Player) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return false
	}
	if len(room.players) >= m.maxPlayers {
		return false
	}
	if room.playerIndex(p.ID) >= 0 {
		return false
	}

	room.players = append(room.players, p)
	if len(room.players) == 1 {
		room.HostID = p.ID
	}
	m.ensureSessionLocked(room, p.Zone)
	return true
}

// RemovePlayer 从房间移除一个玩家。房间或玩家不存在返回 nil。
// 移除后房间为空则删除房间并返回 nil
func (m *Manager) RemovePlayer(roomID, playerID string) *RemoveResult {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil
	}
	idx := room.playerIndex(playerID)
	if idx < 0 {
		return nil
	}
	return m.removeAtLocked(room, idx)
}

// RemovePlayerByConn 按连接句柄移除玩家，语义与 RemovePlayer 相同。
// 断线事件是唯一的取消信号，走的就是这条路径
func (m *Manager) RemovePlayerByConn(roomID string, conn network.Connection) *RemoveResult {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil
	}
	for i, p := range room.players {
		if p.Conn == conn {
			return m.removeAtLocked(room, i)
		}
	}
	return nil
}

// removeAtLocked removes the roster entry at idx, preserving join order for
// the remaining players so host succession stays well-defined.
func (m *Manager) removeAtLocked(room *Room, idx int) *RemoveResult {
	removed := room.players[idx]
	room.players = append(room.players[:idx], room.players[idx+1:]...)

	if len(room.players) == 0 {
		m.deleteLocked(room)
		return nil
	}

	if removed.ID == room.HostID {
		room.HostID = room.players[0].ID
		return &RemoveResult{Room: room, NewHostID: room.HostID}
	}
	return &RemoveResult{Room: room}
}

// SetZone 将玩家迁移到新的区域，必要时创建区域会话。
// 房间或玩家不存在返回 false
func (m *Manager) SetZone(roomID, playerID, zone string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return false
	}
	idx := room.playerIndex(playerID)
	if idx < 0 {
		return false
	}
	room.players[idx].Zone = zone
	m.ensureSessionLocked(room, zone)
	return true
}

// StartGame 设置开局标志。房间不存在返回 false
func (m *Manager) StartGame(roomID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return false
	}
	room.Started = true
	return true
}

// ensureSessionLocked registers a zone session on first occupancy of a zone.
func (m *Manager) ensureSessionLocked(room *Room, zone string) {
	if m.factory == nil || zone == "" {
		return
	}
	if _, exists := room.sessions[zone]; exists {
		return
	}
	room.sessions[zone] = m.factory.Create(room.ID, zone)
}

// Roster 返回对外可序列化的玩家列表，缺省 character 补为 1
func (m *Manager) Roster(roomID string) []models.RosterEntry {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[roomID]
	if !exists {
		return nil
	}

	entries := make([]models.RosterEntry, 0, len(room.players))
	for _, p := range room.players {
		character := p.Character
		if character == 0 {
			character = 1
		}
		entries = append(entries, models.RosterEntry{
			ID:        p.ID,
			Username:  p.Username,
			Zone:      p.Zone,
			Character: character,
		})
	}
	return entries
}

// AvailableRooms 列出未满的房间，只暴露人数与用户名
func (m *Manager) AvailableRooms() []models.RoomSummary {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	summaries := make([]models.RoomSummary, 0, len(m.rooms))
	for id, room := range m.rooms {
		if len(room.players) >= m.maxPlayers {
			continue
		}
		names := make([]string, 0, len(room.players))
		for _, p := range room.players {
			names = append(names, p.Username)
		}
		summaries = append(summaries, models.RoomSummary{
			RoomID:      id,
			PlayerCount: len(room.players),
			MaxPlayers:  m.maxPlayers,
			Players:     names,
		})
	}
	return summaries
}

// BroadcastToRoom 序列化一次后发给房间内除 exclude 外的所有连接。
// 房间不存在时静默返回
func (m *Manager) BroadcastToRoom(roomID, msgType string, payload interface{}, exclude network.Connection) {
	m.mutex.RLock()
	room, exists := m.rooms[roomID]
	if !exists {
		m.mutex.RUnlock()
		return
	}
	conns := make([]network.Connection, 0, len(room.players))
	for _, p := range room.players {
		if p.Conn != nil && p.Conn != exclude {
			conns = append(conns, p.Conn)
		}
	}
	m.mutex.RUnlock()

	data, err := network.EncodeEnvelope(msgType, payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.SendRaw(data); err != nil {
			// 发送失败由读循环的断线处理收尾
			continue
		}
	}
}

// DeleteRoom 从注册表移除房间并关闭其所有区域会话
func (m *Manager) DeleteRoom(roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[roomID]; exists {
		m.deleteLocked(room)
	}
}

// deleteLocked shuts down every registered zone session exactly once and
// removes the room from the registry.
func (m *Manager) deleteLocked(room *Room) {
	for _, session := range room.sessions {
		session.Shutdown()
	}
	room.sessions = nil
	delete(m.rooms, room.ID)
}
