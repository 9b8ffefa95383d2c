package auth

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultNonceTTL is at least 2x the 60s timestamp window (spec §4.3.4).
	DefaultNonceTTL = 300 * time.Second
	// DefaultNonceCapacity bounds the ledger's memory footprint.
	DefaultNonceCapacity = 10000
)

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

// NonceLedger is a bounded, in-memory record of recently seen nonces with
// atomic check-and-insert and insertion-order (FIFO) eviction at capacity.
// It is not durable: a restart erases it, which is acceptable per spec §4.3.4
// because the timestamp window bounds replay risk across restarts.
type NonceLedger struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	index    map[string]*list.Element
	order    *list.List // front = oldest
}

// NewNonceLedger builds a NonceLedger with the given TTL and capacity,
// falling back to the spec defaults for non-positive inputs.
func NewNonceLedger(ttl time.Duration, capacity int) *NonceLedger {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	if capacity <= 0 {
		capacity = DefaultNonceCapacity
	}
	return &NonceLedger{
		ttl:      ttl,
		capacity: capacity,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// CheckAndInsert atomically reports whether nonce is fresh and, if so,
// records it. A naive look-then-insert is a bug here: two requests racing
// with the same nonce must not both pass, so the whole operation runs under
// a single lock acquisition.
func (l *NonceLedger) CheckAndInsert(nonce string) bool {
	if nonce == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	if el, exists := l.index[nonce]; exists {
		entry := el.Value.(*nonceEntry)
		if entry.expiresAt.After(now) {
			return false // replay within the window
		}
		// Expired entry reusing the same nonce value; treat as fresh.
		l.order.Remove(el)
		delete(l.index, nonce)
	}

	l.evictExpiredLocked(now)

	if l.order.Len() >= l.capacity {
		l.evictOldestLocked()
	}

	el := l.order.PushBack(&nonceEntry{nonce: nonce, expiresAt: now.Add(l.ttl)})
	l.index[nonce] = el
	return true
}

// evictExpiredLocked opportunistically drops expired entries from the front
// of the list, where the oldest insertions live. Callers must hold l.mu.
func (l *NonceLedger) evictExpiredLocked(now time.Time) {
	for {
		front := l.order.Front()
		if front == nil {
			return
		}
		entry := front.Value.(*nonceEntry)
		if entry.expiresAt.After(now) {
			return
		}
		l.order.Remove(front)
		delete(l.index, entry.nonce)
	}
}

// evictOldestLocked drops the single oldest entry regardless of expiry, to
// hold the capacity bound. Callers must hold l.mu.
func (l *NonceLedger) evictOldestLocked() {
	front := l.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*nonceEntry)
	l.order.Remove(front)
	delete(l.index, entry.nonce)
}

// Size returns the number of nonces currently tracked.
func (l *NonceLedger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}
