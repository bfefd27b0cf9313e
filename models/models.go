// models/models.go
package models

import (
	"time"
)

// RosterEntry 对外可序列化的玩家条目，绝不携带连接句柄
type RosterEntry struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Zone      string `json:"zone"`
	Character int    `json:"character"`
}

// RoomSummary 房间列表条目，只暴露人数与用户名
type RoomSummary struct {
	RoomID      string   `json:"room_id"`
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	Players     []string `json:"players"`
}

// Account 玩家账户数据模型
type Account struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Character    int       `json:"character"`
	Coins        int64     `json:"coins"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GameRecord 对局记录模型
type GameRecord struct {
	RoomID    string       `json:"room_id"`
	Ruleset   string       `json:"ruleset"`
	Players   []PlayerInfo `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
}

// PlayerInfo 玩家信息（用于对局记录）
type PlayerInfo struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"` // win/lose/draw
	Points  int    `json:"points"`
}

// PlayerStats 玩家战绩统计
type PlayerStats struct {
	TotalGames int64 `json:"total_games"`
	Wins       int64 `json:"wins"`
	Losses     int64 `json:"losses"`
}
