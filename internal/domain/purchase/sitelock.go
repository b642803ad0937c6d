package purchase

import "sync"

// siteLocks serializes ledger mutations per site. Transition, aggregate
// recomputation and the alert pass run under the owning site's lock;
// different sites proceed in parallel.
type siteLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newSiteLocks() *siteLocks {
	return &siteLocks{m: make(map[int64]*sync.Mutex)}
}

func (l *siteLocks) lock(siteID int64) func() {
	l.mu.Lock()
	sl, ok := l.m[siteID]
	if !ok {
		sl = &sync.Mutex{}
		l.m[siteID] = sl
	}
	l.mu.Unlock()

	sl.Lock()
	return sl.Unlock
}
