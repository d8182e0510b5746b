package export

import "sync"

// Latch admits at most one in-flight operation per key. A second caller for
// a held key is rejected rather than queued.
type Latch struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLatch creates an empty latch.
func NewLatch() *Latch {
	return &Latch{held: make(map[string]struct{})}
}

// TryAcquire takes the key if it is free. The returned release func is safe
// to call more than once.
func (l *Latch) TryAcquire(key string) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return func() {}, false
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently taken.
func (l *Latch) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[key]
	return busy
}
