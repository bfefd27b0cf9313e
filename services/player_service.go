// services/player_service.go
package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/persistence"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// Register 创建新账户，密码只保存 bcrypt 哈希
func (s *PlayerService) Register(username, password string, character int) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if character == 0 {
		character = 1
	}
	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Character:    character,
	}
	if err := s.db.CreateAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// VerifyLogin 校验用户名密码。账户不存在和密码错误返回同一个错误，
// 不给探测者区分两种失败的机会
func (s *PlayerService) VerifyLogin(username, password string) (*models.Account, error) {
	account, err := s.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// GetPlayerWithStats 获取玩家信息和统计
func (s *PlayerService) GetPlayerWithStats(userID int64) (*models.Account, *models.PlayerStats, error) {
	account, err := s.db.GetAccountByID(userID)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.db.GetPlayerStats(userID)
	if err != nil {
		return nil, nil, err
	}
	return account, stats, nil
}

// AdjustCoins 调整玩家金币（余额不足时由存储层拒绝）
func (s *PlayerService) AdjustCoins(userID int64, delta int64) error {
	return s.db.AdjustCoins(userID, delta)
}

// RecordGame 追加一条对局记录
func (s *PlayerService) RecordGame(record *models.GameRecord) error {
	return s.db.SaveGameRecord(record)
}
