package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelfall/worldserver/models"
	"github.com/pixelfall/worldserver/persistence"
)

// memoryDB is an in-memory stand-in for persistence.Database.
type memoryDB struct {
	accounts map[string]*models.Account
	records  []*models.GameRecord
	nextID   int64
}

func newMemoryDB() *memoryDB {
	return &memoryDB{accounts: make(map[string]*models.Account), nextID: 1}
}

func (m *memoryDB) CreateAccount(account *models.Account) error {
	if _, exists := m.accounts[account.Username]; exists {
		return persistence.ErrUsernameTaken
	}
	account.UserID = m.nextID
	m.nextID++
	m.accounts[account.Username] = account
	return nil
}

func (m *memoryDB) GetAccountByUsername(username string) (*models.Account, error) {
	account, exists := m.accounts[username]
	if !exists {
		return nil, persistence.ErrRecordNotFound
	}
	return account, nil
}

func (m *memoryDB) GetAccountByID(userID int64) (*models.Account, error) {
	for _, account := range m.accounts {
		if account.UserID == userID {
			return account, nil
		}
	}
	return nil, persistence.ErrRecordNotFound
}

func (m *memoryDB) AdjustCoins(userID int64, delta int64) error {
	account, err := m.GetAccountByID(userID)
	if err != nil {
		return err
	}
	if account.Coins+delta < 0 {
		return persistence.ErrInsufficientCoins
	}
	account.Coins += delta
	return nil
}

func (m *memoryDB) SaveGameRecord(record *models.GameRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memoryDB) GetPlayerStats(userID int64) (*models.PlayerStats, error) {
	return &models.PlayerStats{}, nil
}

func (m *memoryDB) Close() error { return nil }

func TestRegisterAndVerifyLogin(t *testing.T) {
	svc := NewPlayerService(newMemoryDB())

	account, err := svc.Register("alice", "secret", 2)
	assert.NoError(t, err)
	assert.Equal(t, 2, account.Character)
	assert.NotEqual(t, "secret", account.PasswordHash, "password must never be stored in the clear")

	verified, err := svc.VerifyLogin("alice", "secret")
	assert.NoError(t, err)
	assert.Equal(t, account.UserID, verified.UserID)
}

func TestVerifyLogin_Failures(t *testing.T) {
	svc := NewPlayerService(newMemoryDB())
	svc.Register("alice", "secret", 0)

	_, err := svc.VerifyLogin("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown user fails with the same error as a bad password
	_, err = svc.VerifyLogin("nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_DefaultCharacter(t *testing.T) {
	svc := NewPlayerService(newMemoryDB())

	account, err := svc.Register("bob", "pw", 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, account.Character)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewPlayerService(newMemoryDB())
	svc.Register("alice", "pw", 0)

	_, err := svc.Register("alice", "pw2", 0)
	assert.ErrorIs(t, err, persistence.ErrUsernameTaken)
}

func TestAdjustCoins(t *testing.T) {
	db := newMemoryDB()
	svc := NewPlayerService(db)
	account, _ := svc.Register("alice", "pw", 0)

	assert.NoError(t, svc.AdjustCoins(account.UserID, 100))
	assert.ErrorIs(t, svc.AdjustCoins(account.UserID, -200), persistence.ErrInsufficientCoins)
	assert.NoError(t, svc.AdjustCoins(account.UserID, -100))
}
