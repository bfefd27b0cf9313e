package state

import (
	"errors"
	"sync"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	OnUpdate()
	GetID() string
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// 基础状态机实现
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	// 检查是否有转换条件
	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// 区域状态基础结构
type ZoneStateBase struct {
	ID   string
	Zone ZoneContext
}

func (s *ZoneStateBase) GetID() string {
	return s.ID
}

func (s *ZoneStateBase) OnEnter() {
	// 默认实现
}

func (s *ZoneStateBase) OnExit() {
	// 默认实现
}

func (s *ZoneStateBase) OnUpdate() {
	// 默认实现
}

// NewIdleState creates the enemy-AI idle state.
func NewIdleState(zone ZoneContext) *IdleState {
	return &IdleState{
		ZoneStateBase: ZoneStateBase{
			ID:   "idle",
			Zone: zone,
		},
	}
}

// 空闲状态：倒计时结束后进入巡逻
type IdleState struct {
	ZoneStateBase
	timer int
}

func (s *IdleState) OnEnter() {
	s.timer = 50 // 5 seconds at 10fps
}

func (s *IdleState) OnUpdate() {
	s.timer--
	if s.timer <= 0 {
		s.Zone.ChangeState(NewPatrolState(s.Zone))
	}
}

// NewPatrolState creates the enemy-AI patrol state.
func NewPatrolState(zone ZoneContext) *PatrolState {
	return &PatrolState{
		ZoneStateBase: ZoneStateBase{
			ID:   "patrol",
			Zone: zone,
		},
	}
}

// 巡逻状态：巡逻一轮后回到空闲
type PatrolState struct {
	ZoneStateBase
	timer int
}

func (s *PatrolState) OnEnter() {
	s.timer = 100 // 10 seconds at 10fps
}

func (s *PatrolState) OnUpdate() {
	s.timer--
	if s.timer <= 0 {
		s.Zone.ChangeState(NewIdleState(s.Zone))
	}
}
