// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/pixelfall/worldserver/network"
	"github.com/pixelfall/worldserver/room"
	"github.com/pixelfall/worldserver/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID, msgType string, payload interface{}, exclude network.Connection) error
	BroadcastToAll(msgType string, payload interface{}) error
	BroadcastToUsers(userIDs []int64, msgType string, payload interface{}) error
}

// 基于房间的广播器
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom 发给房间内除 exclude 外的所有连接
func (b *RoomBroadcaster) BroadcastToRoom(roomID, msgType string, payload interface{}, exclude network.Connection) error {
	if !b.roomManager.HasRoom(roomID) {
		return ErrRoomNotFound
	}
	b.roomManager.BroadcastToRoom(roomID, msgType, payload, exclude)
	return nil
}

// BroadcastToAll 发给所有在线会话
func (b *RoomBroadcaster) BroadcastToAll(msgType string, payload interface{}) error {
	data, err := network.EncodeEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	for _, s := range b.sessionManager.All() {
		if err := s.Conn.SendRaw(data); err != nil {
			// 发送失败由读循环的断线处理收尾
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToUsers(userIDs []int64, msgType string, payload interface{}) error {
	data, err := network.EncodeEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		sessions := b.sessionManager.GetByUserID(userID)
		for _, s := range sessions {
			if err := s.Conn.SendRaw(data); err != nil {
				// 处理发送错误
				continue
			}
		}
	}
	return nil
}
