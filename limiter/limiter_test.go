package limiter

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeConn is only used as a map key. It must not be zero-sized:
// pointers to distinct zero-size allocations may compare equal, which
// would collapse separate connections into one map entry.
type fakeConn struct{ id int }

func (f *fakeConn) Send(msgType string, payload interface{}) error { return nil }
func (f *fakeConn) SendRaw(data []byte) error                      { return nil }
func (f *fakeConn) Close() error                                   { return nil }
func (f *fakeConn) ClosePolicy(reason string) error                { return nil }
func (f *fakeConn) RemoteAddr() net.Addr                           { return &net.TCPAddr{} }
func (f *fakeConn) SetHeartbeat(interval time.Duration)            {}
func (f *fakeConn) ReadFrame() ([]byte, error)                     { return nil, nil }

func TestAllow_UnderCeiling(t *testing.T) {
	l := New(5, time.Second)
	conn := &fakeConn{}

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(conn), "message %d should be within budget", i+1)
	}
}

func TestAllow_OverCeiling(t *testing.T) {
	l := New(5, time.Second)
	conn := &fakeConn{}

	for i := 0; i < 5; i++ {
		l.Allow(conn)
	}
	assert.False(t, l.Allow(conn), "message over the ceiling must be refused")
}

func TestAllow_WindowReset(t *testing.T) {
	now := time.Now()
	l := New(2, time.Second)
	l.now = func() time.Time { return now }
	conn := &fakeConn{}

	assert.True(t, l.Allow(conn))
	assert.True(t, l.Allow(conn))
	assert.False(t, l.Allow(conn))

	// past the window the budget is fresh
	now = now.Add(time.Second)
	assert.True(t, l.Allow(conn))
}

func TestAllow_IndependentConnections(t *testing.T) {
	l := New(1, time.Second)
	a, b := &fakeConn{}, &fakeConn{}

	assert.True(t, l.Allow(a))
	assert.True(t, l.Allow(b), "budgets are per connection")
	assert.False(t, l.Allow(a))
}

func TestForget(t *testing.T) {
	l := New(1, time.Second)
	conn := &fakeConn{}

	l.Allow(conn)
	assert.False(t, l.Allow(conn))

	l.Forget(conn)
	assert.True(t, l.Allow(conn), "a forgotten connection starts over")
}
