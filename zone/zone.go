// zone/zone.go
package zone

import (
	"sync"
	"time"

	"github.com/pixelfall/worldserver/logger"
	"github.com/pixelfall/worldserver/room"
	"github.com/pixelfall/worldserver/state"
)

// Session 是单个区域的权威模拟实例：一条独立的敌人 AI 心跳循环。
// 注册表只关心它的创建与 Shutdown，内部行为对外不透明
type Session struct {
	RoomID       string
	Zone         string
	StateMachine state.StateMachine
	ticker       *time.Ticker
	closeChan    chan bool
	closeOnce    sync.Once
}

func NewSession(roomID, zone string) *Session {
	s := &Session{
		RoomID:    roomID,
		Zone:      zone,
		closeChan: make(chan bool),
	}
	s.StateMachine = state.NewBaseStateMachine(state.NewIdleState(s))

	// 启动区域心跳
	s.ticker = time.NewTicker(100 * time.Millisecond) // 10 FPS
	go s.loop()

	return s
}

// --- 实现 state.ZoneContext 接口 ---

func (s *Session) GetRoomID() string {
	return s.RoomID
}

func (s *Session) GetZone() string {
	return s.Zone
}

func (s *Session) ChangeState(newState state.State) error {
	return s.StateMachine.ChangeState(newState)
}

// loop 是区域的主循环，定时驱动状态更新
func (s *Session) loop() {
	for {
		select {
		case <-s.ticker.C:
			current := s.StateMachine.GetCurrentState()
			if current != nil {
				current.OnUpdate()
			}
		case <-s.closeChan:
			s.ticker.Stop()
			return
		}
	}
}

// Shutdown stops the tick loop. The registry calls this at most once per
// instance; the once guard keeps a stray second call harmless.
func (s *Session) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
		logger.Log.Infof("Zone session for room %s zone %s shut down", s.RoomID, s.Zone)
	})
}

// Factory 按 (房间, 区域) 创建区域会话，实现 room.SessionFactory
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(roomID, zone string) room.ZoneSession {
	logger.Log.Infof("Zone session created for room %s zone %s", roomID, zone)
	return NewSession(roomID, zone)
}
