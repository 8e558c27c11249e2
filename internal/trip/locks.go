package trip

import "sync"

// runLocks hands out one mutex per run id so that every seat mutation
// on a run serializes against every other mutation on the same run,
// while different runs proceed in parallel. Mutexes are created lazily
// and never reclaimed; the set of active runs is small.
type runLocks struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newRunLocks() *runLocks {
	return &runLocks{locks: make(map[uint64]*sync.Mutex)}
}

// get returns the mutex for a run id, creating it on first use.
func (l *runLocks) get(runID uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[runID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[runID] = m
	}
	return m
}
