// server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pixelfall/worldserver/logger"
	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/network"
	"github.com/pixelfall/worldserver/room"
	"github.com/pixelfall/worldserver/router"
	"github.com/pixelfall/worldserver/session"
)

// rosterPayload 随加入/离开/换区广播给整个房间
type rosterPayload struct {
	RoomID  string               `json:"room_id"`
	HostID  string               `json:"host_id"`
	Players []models.RosterEntry `json:"players"`
}

func (s *GameServer) registerHandlers() {
	s.msgRouter.Register(router.KindPing, s.handlePing)
	s.msgRouter.Register(router.KindCreateRoom, s.handleCreateRoom)
	s.msgRouter.Register(router.KindJoinRoom, s.handleJoinRoom)
	s.msgRouter.Register(router.KindLeaveRoom, s.handleLeaveRoom)
	s.msgRouter.Register(router.KindListRooms, s.handleListRooms)
	s.msgRouter.Register(router.KindZoneChange, s.handleZoneChange)
	s.msgRouter.Register(router.KindStateUpdate, s.handleStateUpdate)
	s.msgRouter.Register(router.KindStartGame, s.handleStartGame)
}

func (s *GameServer) handlePing(sess *session.Session, data json.RawMessage) {
	sess.LastActive = time.Now()
}

func (s *GameServer) handleCreateRoom(sess *session.Session, data json.RawMessage) {
	if sess.RoomID != "" {
		return
	}

	var req struct {
		RoomID    string `json:"room_id"`
		Zone      string `json:"zone"`
		Character int    `json:"character"`
	}
	if data != nil {
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
	}
	if req.RoomID == "" {
		req.RoomID = uuid.New().String()
	}

	if _, err := s.roomManager.CreateRoom(req.RoomID); err != nil {
		sess.Send("create_room", map[string]interface{}{"ok": false, "room_id": req.RoomID})
		return
	}
	s.roomManager.AddPlayer(req.RoomID, s.playerRecord(sess, req.Zone, req.Character))
	sess.RoomID = req.RoomID
	s.mon.SetActiveRooms(s.roomManager.RoomCount())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), req.RoomID)
	sess.Send("create_room", map[string]interface{}{
		"ok":      true,
		"room_id": req.RoomID,
		"roster":  s.roomManager.Roster(req.RoomID),
	})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, data json.RawMessage) {
	if sess.RoomID != "" {
		return
	}

	var req struct {
		RoomID    string `json:"room_id"`
		Zone      string `json:"zone"`
		Character int    `json:"character"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	// 满员、重复、房间不存在都是正常的拒绝路径，不是错误
	if !s.roomManager.AddPlayer(req.RoomID, s.playerRecord(sess, req.Zone, req.Character)) {
		sess.Send("join_room", map[string]interface{}{"ok": false, "room_id": req.RoomID})
		return
	}
	sess.RoomID = req.RoomID

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), req.RoomID)
	sess.Send("join_room", map[string]interface{}{
		"ok":      true,
		"room_id": req.RoomID,
		"roster":  s.roomManager.Roster(req.RoomID),
	})
	s.broadcastRoster(req.RoomID, sess)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, data json.RawMessage) {
	s.leaveCurrentRoom(sess)
}

func (s *GameServer) handleListRooms(sess *session.Session, data json.RawMessage) {
	sess.Send("room_list", s.roomManager.AvailableRooms())
}

func (s *GameServer) handleZoneChange(sess *session.Session, data json.RawMessage) {
	if sess.RoomID == "" {
		return
	}

	var req struct {
		Zone string `json:"zone"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.Zone == "" {
		return
	}

	if s.roomManager.SetZone(sess.RoomID, sess.GetID(), req.Zone) {
		s.broadcastRoster(sess.RoomID, nil)
	}
}

// handleStateUpdate 原样转发给同房间的其他连接，服务器不模拟任何区域
func (s *GameServer) handleStateUpdate(sess *session.Session, data json.RawMessage) {
	if sess.RoomID == "" {
		return
	}
	s.roomManager.BroadcastToRoom(sess.RoomID, "state_update", data, sess.Conn)
}

func (s *GameServer) handleStartGame(sess *session.Session, data json.RawMessage) {
	if sess.RoomID == "" {
		return
	}
	r, exists := s.roomManager.GetRoom(sess.RoomID)
	if !exists || r.HostID != sess.GetID() {
		// 只有房主能开局
		return
	}
	if s.roomManager.StartGame(sess.RoomID) {
		logger.Log.Infof("Room %s started by host %s", sess.RoomID, sess.GetID())
		s.roomManager.BroadcastToRoom(sess.RoomID, "game_start", nil, nil)
	}
}

// playerRecord builds the membership record for a session.
func (s *GameServer) playerRecord(sess *session.Session, zone string, character int) *room.Player {
	if character == 0 {
		if c, ok := sess.Get("character").(int); ok {
			character = c
		}
	}
	return &room.Player{
		ID:        sess.GetID(),
		Username:  sess.Username,
		Zone:      zone,
		Character: character,
		Conn:      sess.Conn,
	}
}

// leaveCurrentRoom 把会话移出当前房间并通知余下的玩家。
// 房间被清空时整间删除，区域会话随之关闭
func (s *GameServer) leaveCurrentRoom(sess *session.Session) {
	if sess.RoomID == "" {
		return
	}
	roomID := sess.RoomID
	sess.RoomID = ""

	result := s.roomManager.RemovePlayerByConn(roomID, sess.Conn)
	s.mon.SetActiveRooms(s.roomManager.RoomCount())
	if result == nil {
		// 房间不存在、玩家不在、或房间已随最后一人删除
		return
	}

	s.broadcastRoster(roomID, nil)
	if result.NewHostID != "" {
		logger.Log.Infof("Room %s host reassigned to %s", roomID, result.NewHostID)
		s.roomManager.BroadcastToRoom(roomID, "host_change",
			map[string]string{"host_id": result.NewHostID}, nil)
	}
}

// broadcastRoster 把当前名单发给房间内除 exclude 外的所有人
func (s *GameServer) broadcastRoster(roomID string, exclude *session.Session) {
	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return
	}
	payload := rosterPayload{
		RoomID:  roomID,
		HostID:  r.HostID,
		Players: s.roomManager.Roster(roomID),
	}
	var excludeConn network.Connection
	if exclude != nil {
		excludeConn = exclude.Conn
	}
	s.roomManager.BroadcastToRoom(roomID, "roster", payload, excludeConn)
}

// --- HTTP 登录接口 ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Character int    `json:"character"`
	Coins     int64  `json:"coins"`
}

func (s *GameServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	account, err := s.playerService.VerifyLogin(req.Username, req.Password)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.writeLoginResponse(w, http.StatusOK, account)
}

func (s *GameServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		Character int    `json:"character"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	account, err := s.playerService.Register(req.Username, req.Password, req.Character)
	if err != nil {
		http.Error(w, "registration failed", http.StatusConflict)
		return
	}

	s.writeLoginResponse(w, http.StatusCreated, account)
}

func (s *GameServer) writeLoginResponse(w http.ResponseWriter, status int, account *models.Account) {
	token := s.authManager.Issue(account)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(loginResponse{
		Token:     token,
		UserID:    account.UserID,
		Username:  account.Username,
		Character: account.Character,
		Coins:     account.Coins,
	})
}
