// gateway/tracker.go
package gateway

import (
	"sync"
)

// AddrTracker 维护每个来源地址的并发连接数。计数随连接建立、
// 断开增减，并定期与真实存活连接集对账以修复漏掉的关闭事件
type AddrTracker struct {
	limit  int
	counts map[string]int
	mutex  sync.Mutex
}

func NewAddrTracker(limit int) *AddrTracker {
	return &AddrTracker{
		limit:  limit,
		counts: make(map[string]int),
	}
}

// Acquire reserves a slot for addr. It reports false when the address is
// already at the ceiling; the caller closes the accepted socket with a
// policy-violation code.
func (t *AddrTracker) Acquire(addr string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.counts[addr] >= t.limit {
		return false
	}
	t.counts[addr]++
	return true
}

// Release frees a slot for addr on disconnect.
func (t *AddrTracker) Release(addr string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.counts[addr] <= 1 {
		delete(t.counts, addr)
		return
	}
	t.counts[addr]--
}

// Count returns the tracked connection count for addr.
func (t *AddrTracker) Count(addr string) int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.counts[addr]
}

// Reconcile replaces the incremental counts with the true live-connection
// set, healing any drift from missed close events.
func (t *AddrTracker) Reconcile(live map[string]int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	counts := make(map[string]int, len(live))
	for addr, n := range live {
		if n > 0 {
			counts[addr] = n
		}
	}
	t.counts = counts
}
