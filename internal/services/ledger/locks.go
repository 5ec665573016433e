package ledger

import "sync"

// lockTable hands out one mutex per account ID. Mutexes are created on
// first use and kept for the life of the process; the table is bounded by
// the number of distinct accounts touched.
type lockTable struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[uint]*sync.Mutex)}
}

func (t *lockTable) get(id uint) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.locks[id]
	if !ok {
		m = &sync.Mutex{}
		t.locks[id] = m
	}
	return m
}

// lock serializes mutations on a single account. The returned func
// releases it.
func (t *lockTable) lock(id uint) func() {
	m := t.get(id)
	m.Lock()
	return m.Unlock
}

// lockPair acquires both account locks in ascending ID order. The fixed
// order means two transfers between the same pair of accounts, in either
// direction, can never deadlock. The ids must differ.
func (t *lockTable) lockPair(a, b uint) func() {
	if a > b {
		a, b = b, a
	}
	first, second := t.get(a), t.get(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
