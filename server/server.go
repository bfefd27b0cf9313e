package server

import (
	"net"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pixelfall/worldserver/auth"
	"github.com/pixelfall/worldserver/broadcast"
	"github.com/pixelfall/worldserver/config"
	"github.com/pixelfall/worldserver/gateway"
	"github.com/pixelfall/worldserver/limiter"
	"github.com/pixelfall/worldserver/logger"
	"github.com/pixelfall/worldserver/monitor"
	"github.com/pixelfall/worldserver/network"
	"github.com/pixelfall/worldserver/persistence"
	"github.com/pixelfall/worldserver/room"
	"github.com/pixelfall/worldserver/router"
	"github.com/pixelfall/worldserver/services"
	"github.com/pixelfall/worldserver/session"
	"github.com/pixelfall/worldserver/timer"
	"github.com/pixelfall/worldserver/zone"
	worldserver_rpc "github.com/pixelfall/worldserver/rpc"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	playerService  *services.PlayerService
	broadcaster    broadcast.Broadcaster
	authManager    *auth.Manager
	gate           *gateway.Gateway
	msgRouter      *router.Router
	msgLimiter     *limiter.Limiter
	mon            *monitor.Monitor
	timers         *timer.TimerManager
	rpcServer      *worldserver_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewRoomManager(cfg.Room.MaxPlayers, zone.NewFactory()),
		sessionManager: session.NewManager(),
		playerService:  services.NewPlayerService(db),
		authManager:    auth.NewManager(cfg.Auth.TokenTTL),
		msgLimiter:     limiter.New(cfg.Gateway.RateLimit, cfg.Gateway.RateWindow),
		mon:            monitor.NewMonitor("worldserver"),
		timers:         timer.NewTimerManager(),
		shutdownChan:   make(chan struct{}),
	}

	s.gate = gateway.New(cfg.Gateway.AllowedOrigins, cfg.Gateway.MaxConnsPerAddr, s.authManager)
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.gate.CheckOrigin,
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	// 注册消息处理器
	s.msgRouter = router.New(s.msgLimiter)
	s.registerHandlers()

	// 周期任务：连接数对账、过期令牌清理
	s.timers.AddTimer(cfg.Gateway.ReconcileInterval, cfg.Gateway.ReconcileInterval, func() {
		s.gate.Tracker().Reconcile(s.sessionManager.CountByAddr())
	})
	s.timers.AddTimer(cfg.Auth.TokenTTL, cfg.Auth.TokenTTL, func() {
		s.authManager.Sweep()
	})

	// 初始化RPC服务器
	rpcServer, err := worldserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := worldserver_rpc.NewAdminService(s.playerService, s.roomManager)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.cfg.Server.MonitorAddress)

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/login", s.handleLogin)
	http.HandleFunc("/register", s.handleRegister)
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// 未登录的连接在升级前就拒绝
	account, ok := s.gate.Authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}

	wsConn := network.NewWSConnection(conn, s.cfg.Gateway.MaxFrameBytes)

	sourceAddr := sourceHost(r.RemoteAddr)
	if !s.gate.Tracker().Acquire(sourceAddr) {
		logger.Log.Warnf("Connection cap reached for %s", sourceAddr)
		s.mon.IncPolicyDisconnects()
		wsConn.ClosePolicy("connection limit reached")
		return
	}

	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.UserID = account.UserID
	sess.Username = account.Username
	sess.SourceAddr = sourceAddr
	if account.Character > 0 {
		sess.Set("character", account.Character)
	}
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s, user: %s",
		wsConn.RemoteAddr(), sess.GetID(), account.Username)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.leaveCurrentRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		s.gate.Tracker().Release(sourceAddr)
		s.msgLimiter.Forget(wsConn)
		s.mon.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			raw, err := wsConn.ReadFrame()
			if err != nil {
				return
			}
			start := time.Now()
			switch s.msgRouter.HandleFrame(sess, raw) {
			case router.ResultDispatched:
				s.mon.IncMessagesReceived()
				s.mon.ObserveDispatchLatency(time.Since(start))
			case router.ResultDropped:
				s.mon.IncMessagesDropped()
			case router.ResultRateLimited:
				logger.Log.Warnf("Session %s exceeded message budget, closing", sess.GetID())
				s.mon.IncPolicyDisconnects()
				wsConn.ClosePolicy("message rate exceeded")
				return
			}
		}
	}
}

// sourceHost strips the port from a remote address.
func sourceHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
