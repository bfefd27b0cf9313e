// limiter/limiter.go
package limiter

import (
	"sync"
	"time"

	"github.com/pixelfall/worldserver/network"
)

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter 按连接维护滑动窗口计数。窗口靠墙钟比较重置，
// 空闲连接没有任何后台开销
type Limiter struct {
	limit   int
	window  time.Duration
	entries map[network.Connection]*entry
	mutex   sync.Mutex
	now     func() time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[network.Connection]*entry),
		now:     time.Now,
	}
}

// Allow records one message against the connection's window and reports
// whether it is still within budget. The first message over the ceiling
// returns false; the caller is expected to close the connection.
func (l *Limiter) Allow(conn network.Connection) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	e, exists := l.entries[conn]
	if !exists {
		e = &entry{windowStart: now}
		l.entries[conn] = e
	}
	if now.Sub(e.windowStart) >= l.window {
		e.count = 0
		e.windowStart = now
	}
	e.count++
	return e.count <= l.limit
}

// Forget drops the entry for a closed connection.
func (l *Limiter) Forget(conn network.Connection) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.entries, conn)
}
