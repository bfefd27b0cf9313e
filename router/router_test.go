package router

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pixelfall/worldserver/limiter"
	"github.com/pixelfall/worldserver/session"
)

type mockConn struct{}

func (m *mockConn) Send(msgType string, payload interface{}) error { return nil }
func (m *mockConn) SendRaw(data []byte) error                      { return nil }
func (m *mockConn) Close() error                                   { return nil }
func (m *mockConn) ClosePolicy(reason string) error                { return nil }
func (m *mockConn) RemoteAddr() net.Addr                           { return &net.TCPAddr{} }
func (m *mockConn) SetHeartbeat(interval time.Duration)            {}
func (m *mockConn) ReadFrame() ([]byte, error)                     { return nil, nil }

func newTestSession() *session.Session {
	return session.NewSession("test_session", &mockConn{})
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind("join_room")
	assert.True(t, ok)
	assert.Equal(t, KindJoinRoom, kind)

	_, ok = ParseKind("teleport_everywhere")
	assert.False(t, ok)
}

func TestHandleFrame_Dispatch(t *testing.T) {
	r := New(nil)
	var gotData json.RawMessage
	called := 0
	r.Register(KindJoinRoom, func(sess *session.Session, data json.RawMessage) {
		called++
		gotData = data
	})

	result := r.HandleFrame(newTestSession(), []byte(`{"type":"join_room","data":{"room_id":"r1"}}`))
	assert.Equal(t, ResultDispatched, result)
	assert.Equal(t, 1, called)
	assert.JSONEq(t, `{"room_id":"r1"}`, string(gotData))
}

func TestHandleFrame_DropsSilently(t *testing.T) {
	r := New(nil)
	called := 0
	r.Register(KindPing, func(sess *session.Session, data json.RawMessage) { called++ })
	sess := newTestSession()

	cases := [][]byte{
		[]byte(`{not json`),             // unparseable
		[]byte(`"ping"`),                // not an object
		[]byte(`[1,2,3]`),               // not an object
		[]byte(`{"data":{}}`),           // no type field
		[]byte(`{"type":"warp_speed"}`), // unknown kind
		[]byte(`{"type":"join_room"}`),  // known kind, no handler registered
	}
	for _, raw := range cases {
		assert.Equal(t, ResultDropped, r.HandleFrame(sess, raw), "frame %s", raw)
	}
	assert.Equal(t, 0, called)
}

func TestHandleFrame_RateLimit(t *testing.T) {
	lim := limiter.New(2, time.Minute)
	r := New(lim)
	r.Register(KindPing, func(sess *session.Session, data json.RawMessage) {})
	sess := newTestSession()

	ping := []byte(`{"type":"ping"}`)
	assert.Equal(t, ResultDispatched, r.HandleFrame(sess, ping))
	assert.Equal(t, ResultDispatched, r.HandleFrame(sess, ping))
	assert.Equal(t, ResultRateLimited, r.HandleFrame(sess, ping))
}

func TestHandleFrame_DroppedFramesDoNotCount(t *testing.T) {
	lim := limiter.New(1, time.Minute)
	r := New(lim)
	r.Register(KindPing, func(sess *session.Session, data json.RawMessage) {})
	sess := newTestSession()

	// malformed noise never eats the budget
	for i := 0; i < 10; i++ {
		assert.Equal(t, ResultDropped, r.HandleFrame(sess, []byte(`{oops`)))
	}
	assert.Equal(t, ResultDispatched, r.HandleFrame(sess, []byte(`{"type":"ping"}`)))
}
