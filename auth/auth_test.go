package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pixelfall/worldserver/models"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewManager(time.Hour)
	account := &models.Account{UserID: 42, Username: "alice"}

	token := m.Issue(account)
	assert.NotEmpty(t, token)

	resolved, ok := m.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, int64(42), resolved.UserID)

	_, ok = m.Resolve("no-such-token")
	assert.False(t, ok)
}

func TestResolve_Expired(t *testing.T) {
	now := time.Now()
	m := NewManager(time.Minute)
	m.now = func() time.Time { return now }

	token := m.Issue(&models.Account{UserID: 1})

	now = now.Add(2 * time.Minute)
	_, ok := m.Resolve(token)
	assert.False(t, ok, "expired token must not resolve")

	// the expired entry is gone for good
	now = now.Add(-2 * time.Minute)
	_, ok = m.Resolve(token)
	assert.False(t, ok)
}

func TestRevoke(t *testing.T) {
	m := NewManager(time.Hour)
	token := m.Issue(&models.Account{UserID: 1})

	m.Revoke(token)
	_, ok := m.Resolve(token)
	assert.False(t, ok)
}

func TestSweep(t *testing.T) {
	now := time.Now()
	m := NewManager(time.Minute)
	m.now = func() time.Time { return now }

	expired := m.Issue(&models.Account{UserID: 1})
	now = now.Add(30 * time.Second)
	fresh := m.Issue(&models.Account{UserID: 2})

	now = now.Add(45 * time.Second)
	m.Sweep()

	_, ok := m.Resolve(expired)
	assert.False(t, ok)
	_, ok = m.Resolve(fresh)
	assert.True(t, ok)
}
