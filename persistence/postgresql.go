// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/pixelfall/worldserver/models"
)

// PostgreSQL 数据库实现（原生 SQL 版本）
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	// 创建账户表
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS accounts (
            id SERIAL PRIMARY KEY,
            user_id BIGSERIAL UNIQUE NOT NULL,
            username VARCHAR(100) UNIQUE NOT NULL,
            password_hash VARCHAR(255) NOT NULL,
            character INT DEFAULT 1,
            coins BIGINT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建对局记录表
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            ruleset VARCHAR(100) NOT NULL,
            players JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
        CREATE INDEX IF NOT EXISTS idx_game_records_room_id ON game_records(room_id);
        CREATE INDEX IF NOT EXISTS idx_game_records_created_at ON game_records(created_at);
    `)

	return err
}

func marshalPlayers(players []models.PlayerInfo) ([]byte, error) {
	if players == nil {
		players = []models.PlayerInfo{}
	}
	return json.Marshal(players)
}

func (p *PostgreSQL) scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(&account.UserID, &account.Username, &account.PasswordHash,
		&account.Character, &account.Coins, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount 创建账户
func (p *PostgreSQL) CreateAccount(account *models.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO accounts (username, password_hash, character, coins)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO NOTHING
        RETURNING user_id, created_at, updated_at
    `

	err := p.db.QueryRowContext(ctx, query,
		account.Username, account.PasswordHash, account.Character, account.Coins).
		Scan(&account.UserID, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrUsernameTaken
	}
	return err
}

// GetAccountByUsername 按用户名查询账户
func (p *PostgreSQL) GetAccountByUsername(username string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT user_id, username, password_hash, character, coins, created_at, updated_at
        FROM accounts WHERE username = $1`
	return p.scanAccount(p.db.QueryRowContext(ctx, query, username))
}

// GetAccountByID 按用户ID查询账户
func (p *PostgreSQL) GetAccountByID(userID int64) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT user_id, username, password_hash, character, coins, created_at, updated_at
        FROM accounts WHERE user_id = $1`
	return p.scanAccount(p.db.QueryRowContext(ctx, query, userID))
}

// AdjustCoins 更新玩家金币数量（单条 UPDATE 保证原子性）
func (p *PostgreSQL) AdjustCoins(userID int64, delta int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        UPDATE accounts
        SET coins = coins + $2, updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1 AND coins + $2 >= 0
    `

	result, err := p.db.ExecContext(ctx, query, userID, delta)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// 要么账户不存在，要么余额不足
		if _, err := p.GetAccountByID(userID); err != nil {
			return err
		}
		return ErrInsufficientCoins
	}
	return nil
}

// SaveGameRecord 保存对局记录
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	players, err := marshalPlayers(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `INSERT INTO game_records (room_id, ruleset, players) VALUES ($1, $2, $3)`
	_, err = p.db.ExecContext(ctx, query, record.RoomID, record.Ruleset, players)
	return err
}

// GetPlayerStats 统计玩家胜负场次
func (p *PostgreSQL) GetPlayerStats(userID int64) (*models.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN player->>'outcome' = 'win' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN player->>'outcome' = 'lose' THEN 1 ELSE 0 END), 0)
        FROM game_records, jsonb_array_elements(players) as player
        WHERE (player->>'user_id')::bigint = $1
    `

	var stats models.PlayerStats
	err := p.db.QueryRowContext(ctx, query, userID).
		Scan(&stats.TotalGames, &stats.Wins, &stats.Losses)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
