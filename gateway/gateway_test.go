package gateway

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelfall/worldserver/models"
)

type fakeAuth struct {
	tokens map[string]*models.Account
}

func (f *fakeAuth) Resolve(token string) (*models.Account, bool) {
	account, ok := f.tokens[token]
	return account, ok
}

func newTestGateway() *Gateway {
	auth := &fakeAuth{tokens: map[string]*models.Account{
		"good-token": {UserID: 7, Username: "alice"},
	}}
	return New([]string{"https://play.example.com"}, 2, auth)
}

func TestCheckOrigin(t *testing.T) {
	g := newTestGateway()

	// absent header passes
	r := httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	assert.True(t, g.CheckOrigin(r))

	// configured origin passes
	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	r.Header.Set("Origin", "https://play.example.com")
	assert.True(t, g.CheckOrigin(r))

	// same host passes
	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	r.Header.Set("Origin", "http://game.example.com")
	assert.True(t, g.CheckOrigin(r))

	// anything else is rejected
	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	r.Header.Set("Origin", "https://evil.example.net")
	assert.False(t, g.CheckOrigin(r))

	// unparseable origin is rejected
	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	r.Header.Set("Origin", "::broken::")
	assert.False(t, g.CheckOrigin(r))
}

func TestAuthenticate(t *testing.T) {
	g := newTestGateway()

	r := httptest.NewRequest("GET", "http://game.example.com/ws?token=good-token", nil)
	account, ok := g.Authenticate(r)
	assert.True(t, ok)
	assert.Equal(t, "alice", account.Username)

	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	_, ok = g.Authenticate(r)
	assert.True(t, ok)

	r = httptest.NewRequest("GET", "http://game.example.com/ws?token=bad-token", nil)
	_, ok = g.Authenticate(r)
	assert.False(t, ok)

	r = httptest.NewRequest("GET", "http://game.example.com/ws", nil)
	_, ok = g.Authenticate(r)
	assert.False(t, ok, "no token at all is unauthorized")
}

func TestAddrTracker_Ceiling(t *testing.T) {
	tracker := NewAddrTracker(2)

	assert.True(t, tracker.Acquire("10.0.0.1"))
	assert.True(t, tracker.Acquire("10.0.0.1"))
	assert.False(t, tracker.Acquire("10.0.0.1"), "third connection is over the cap")
	assert.True(t, tracker.Acquire("10.0.0.2"), "other addresses are unaffected")

	tracker.Release("10.0.0.1")
	assert.True(t, tracker.Acquire("10.0.0.1"), "released slot can be reused")
}

func TestAddrTracker_ReleaseToZero(t *testing.T) {
	tracker := NewAddrTracker(2)
	tracker.Acquire("10.0.0.1")
	tracker.Release("10.0.0.1")
	assert.Equal(t, 0, tracker.Count("10.0.0.1"))

	// releasing an untracked address never goes negative
	tracker.Release("10.0.0.9")
	assert.Equal(t, 0, tracker.Count("10.0.0.9"))
	assert.True(t, tracker.Acquire("10.0.0.9"))
}

func TestAddrTracker_ReconcileHealsDrift(t *testing.T) {
	tracker := NewAddrTracker(2)
	// simulate a missed close event: two acquires, no releases, but only
	// one connection actually alive
	tracker.Acquire("10.0.0.1")
	tracker.Acquire("10.0.0.1")
	assert.False(t, tracker.Acquire("10.0.0.1"))

	tracker.Reconcile(map[string]int{"10.0.0.1": 1})
	assert.Equal(t, 1, tracker.Count("10.0.0.1"))
	assert.True(t, tracker.Acquire("10.0.0.1"), "healed count frees the leaked slot")
}
