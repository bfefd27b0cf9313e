package rpc

import (
	"net"
	"net/rpc"

	"github.com/pixelfall/worldserver/logger"
	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/room"
	"github.com/pixelfall/worldserver/services"
)

// Server manages the RPC listener for operational tooling.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes player and room lookups over net/rpc.
type AdminService struct {
	playerService *services.PlayerService
	roomManager   *room.Manager
}

// NewAdminService creates a new AdminService.
func NewAdminService(ps *services.PlayerService, rm *room.Manager) *AdminService {
	return &AdminService{playerService: ps, roomManager: rm}
}

// GetPlayerWithStats is an RPC method to get player data.
// It must follow the net/rpc signature: exported method, exported arguments,
// second argument is a pointer, return type is error.
type GetPlayerArgs struct {
	UserID int64
}

type GetPlayerReply struct {
	Account *models.Account
	Stats   *models.PlayerStats
}

func (as *AdminService) GetPlayerWithStats(args *GetPlayerArgs, reply *GetPlayerReply) error {
	account, stats, err := as.playerService.GetPlayerWithStats(args.UserID)
	if err != nil {
		return err
	}
	reply.Account = account
	reply.Stats = stats
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []models.RoomSummary
}

// ListRooms returns the rooms that still have free capacity.
func (as *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = as.roomManager.AvailableRooms()
	return nil
}
