// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/pixelfall/worldserver/models"
)

// Database 数据库接口。只持久化账户与对局记录，
// 房间状态从不落盘
type Database interface {
	CreateAccount(account *models.Account) error
	GetAccountByUsername(username string) (*models.Account, error)
	GetAccountByID(userID int64) (*models.Account, error)
	AdjustCoins(userID int64, delta int64) error
	SaveGameRecord(record *models.GameRecord) error
	GetPlayerStats(userID int64) (*models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound    = fmt.Errorf("record not found")
	ErrInsufficientCoins = fmt.Errorf("insufficient coins")
	ErrUsernameTaken     = fmt.Errorf("username already taken")
)
