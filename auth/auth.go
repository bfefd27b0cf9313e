// auth/auth.go
package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pixelfall/worldserver/models"
)

type entry struct {
	account   *models.Account
	expiresAt time.Time
}

// Manager 保存登录后签发的会话令牌。令牌是进程内的，
// 随进程重启全部失效
type Manager struct {
	ttl    time.Duration
	tokens map[string]*entry
	mutex  sync.RWMutex
	now    func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:    ttl,
		tokens: make(map[string]*entry),
		now:    time.Now,
	}
}

// Issue creates a bearer token for an authenticated account.
func (m *Manager) Issue(account *models.Account) string {
	token := uuid.New().String()

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tokens[token] = &entry{
		account:   account,
		expiresAt: m.now().Add(m.ttl),
	}
	return token
}

// Resolve returns the account behind a token, if the token is valid and
// unexpired. Implements gateway.Authenticator.
func (m *Manager) Resolve(token string) (*models.Account, bool) {
	m.mutex.RLock()
	e, exists := m.tokens[token]
	m.mutex.RUnlock()

	if !exists {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.Revoke(token)
		return nil, false
	}
	return e.account, true
}

func (m *Manager) Revoke(token string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.tokens, token)
}

// Sweep drops expired tokens. Driven periodically by the timer service.
func (m *Manager) Sweep() {
	now := m.now()

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for token, e := range m.tokens {
		if now.After(e.expiresAt) {
			delete(m.tokens, token)
		}
	}
}
