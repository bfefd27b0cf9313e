// router/router.go
package router

import (
	"encoding/json"

	"github.com/pixelfall/worldserver/limiter"
	"github.com/pixelfall/worldserver/network"
	"github.com/pixelfall/worldserver/session"
)

// Kind 是封闭的消息种类枚举。wire 上的 type 字符串只在解析边界
// 出现一次，之后全部走枚举分发
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindCreateRoom
	KindJoinRoom
	KindLeaveRoom
	KindListRooms
	KindZoneChange
	KindStateUpdate
	KindStartGame
)

var kindNames = map[string]Kind{
	"ping":         KindPing,
	"create_room":  KindCreateRoom,
	"join_room":    KindJoinRoom,
	"leave_room":   KindLeaveRoom,
	"list_rooms":   KindListRooms,
	"zone_change":  KindZoneChange,
	"state_update": KindStateUpdate,
	"start_game":   KindStartGame,
}

// ParseKind maps a wire type string onto the closed kind set.
func ParseKind(s string) (Kind, bool) {
	kind, ok := kindNames[s]
	return kind, ok
}

// Handler processes one validated message for a session.
type Handler func(sess *session.Session, data json.RawMessage)

// Result of handling one inbound frame.
type Result int

const (
	// ResultDropped: malformed or unrecognized, discarded silently.
	ResultDropped Result = iota
	// ResultDispatched: accepted and handed to the registered handler.
	ResultDispatched
	// ResultRateLimited: the frame pushed the connection over its message
	// budget; the caller must close the connection.
	ResultRateLimited
)

// Router 解析入站帧并分发到注册的处理器。不可解析、非对象、
// 未注册种类的帧一律静默丢弃，不给发送方任何探测反馈
type Router struct {
	handlers map[Kind]Handler
	limiter  *limiter.Limiter
}

func New(lim *limiter.Limiter) *Router {
	return &Router{
		handlers: make(map[Kind]Handler),
		limiter:  lim,
	}
}

func (r *Router) Register(kind Kind, handler Handler) {
	r.handlers[kind] = handler
}

// HandleFrame validates and dispatches a single inbound frame. Only frames
// that are accepted for dispatch count against the rate window.
func (r *Router) HandleFrame(sess *session.Session, raw []byte) Result {
	env, err := network.ParseEnvelope(raw)
	if err != nil {
		return ResultDropped
	}

	kind, ok := ParseKind(env.Type)
	if !ok {
		return ResultDropped
	}

	handler, ok := r.handlers[kind]
	if !ok {
		return ResultDropped
	}

	if r.limiter != nil && !r.limiter.Allow(sess.Conn) {
		return ResultRateLimited
	}

	handler(sess, env.Data)
	return ResultDispatched
}
