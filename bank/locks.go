package bank

import "sync"

// accountLocks hands out one mutex per account. Entries are dropped once
// no goroutine holds or waits for them.
type accountLocks struct {
	mu    sync.Mutex
	locks map[ID]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func (l *accountLocks) lock(id ID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[ID]*accountLock)
	}
	al, ok := l.locks[id]
	if !ok {
		al = &accountLock{}
		l.locks[id] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()
		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
