// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixelfall/worldserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// 定义GORM模型
type AccountModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       int64  `gorm:"index;not null"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Character    int    `gorm:"default:1"`
	Coins        int64  `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GameRecordModel struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    string `gorm:"index;not null"`
	Ruleset   string `gorm:"not null"`
	Players   []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AccountModel{},
		&GameRecordModel{},
	)
}

func accountFromModel(m *AccountModel) *models.Account {
	return &models.Account{
		UserID:       m.UserID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Character:    m.Character,
		Coins:        m.Coins,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// CreateAccount 创建账户，用户名唯一
func (p *GormPostgreSQL) CreateAccount(account *models.Account) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var existing AccountModel
		err := tx.Where("username = ?", account.Username).First(&existing).Error
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		model := AccountModel{
			UserID:       account.UserID,
			Username:     account.Username,
			PasswordHash: account.PasswordHash,
			Character:    account.Character,
			Coins:        account.Coins,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		// 注册路径不带 user_id，用行 ID 补上
		if model.UserID == 0 {
			model.UserID = int64(model.ID)
			if err := tx.Model(&model).Update("user_id", model.UserID).Error; err != nil {
				return err
			}
		}
		account.UserID = model.UserID
		account.CreatedAt = model.CreatedAt
		account.UpdatedAt = model.UpdatedAt
		return nil
	})
}

func (p *GormPostgreSQL) GetAccountByUsername(username string) (*models.Account, error) {
	var model AccountModel
	if err := p.db.Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return accountFromModel(&model), nil
}

func (p *GormPostgreSQL) GetAccountByID(userID int64) (*models.Account, error) {
	var model AccountModel
	if err := p.db.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return accountFromModel(&model), nil
}

// AdjustCoins 更新玩家金币数量（原子操作）
func (p *GormPostgreSQL) AdjustCoins(userID int64, delta int64) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		var model AccountModel
		if err := tx.Where("user_id = ?", userID).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		// 检查金币是否足够（如果是减少）
		if delta < 0 && model.Coins+delta < 0 {
			return ErrInsufficientCoins
		}

		model.Coins += delta
		model.UpdatedAt = time.Now()
		return tx.Save(&model).Error
	})
}

// SaveGameRecord 保存对局记录
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := marshalPlayers(record.Players)
	if err != nil {
		return err
	}

	model := GameRecordModel{
		RoomID:  record.RoomID,
		Ruleset: record.Ruleset,
		Players: players,
	}
	return p.db.Create(&model).Error
}

// GetPlayerStats 统计玩家胜负场次
func (p *GormPostgreSQL) GetPlayerStats(userID int64) (*models.PlayerStats, error) {
	var stats models.PlayerStats

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as total_games,
            SUM(CASE WHEN player->>'outcome' = 'win' THEN 1 ELSE 0 END) as wins,
            SUM(CASE WHEN player->>'outcome' = 'lose' THEN 1 ELSE 0 END) as losses
        FROM game_records, jsonb_array_elements(players) as player
        WHERE (player->>'user_id')::bigint = ?`,
		userID,
	).Scan(&stats).Error

	return &stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
