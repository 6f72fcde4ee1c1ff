package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
// At least one stripe is always created.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(int(stripes), hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.stripe(key)]
}

// LockAll acquires the write locks for every key. Stripes are taken once each
// in index order, so concurrent callers with overlapping keys can't deadlock.
func (l *StripedLock) LockAll(keys ...[]byte) (unlock func()) {
	stripes := l.stripes(keys)
	for _, stripe := range stripes {
		l.locks[stripe].Lock()
	}

	return func() {
		for i := len(stripes) - 1; i >= 0; i-- {
			l.locks[stripes[i]].Unlock()
		}
	}
}

// RLockAll is the read lock equivalent of LockAll
func (l *StripedLock) RLockAll(keys ...[]byte) (unlock func()) {
	stripes := l.stripes(keys)
	for _, stripe := range stripes {
		l.locks[stripe].RLock()
	}

	return func() {
		for i := len(stripes) - 1; i >= 0; i-- {
			l.locks[stripes[i]].RUnlock()
		}
	}
}

// Lock write locks the stripes of writeKeys and read locks the remaining
// stripes of readKeys. A stripe shared by both sets is write locked. Stripes
// are acquired in index order, like LockAll.
func (l *StripedLock) Lock(writeKeys, readKeys [][]byte) (unlock func()) {
	writeStripes := l.stripes(writeKeys)

	exclusive := make(map[int]bool, len(writeStripes))
	for _, stripe := range writeStripes {
		exclusive[stripe] = true
	}

	stripes := l.stripes(append(append([][]byte{}, writeKeys...), readKeys...))
	for _, stripe := range stripes {
		if exclusive[stripe] {
			l.locks[stripe].Lock()
		} else {
			l.locks[stripe].RLock()
		}
	}

	return func() {
		for i := len(stripes) - 1; i >= 0; i-- {
			if exclusive[stripes[i]] {
				l.locks[stripes[i]].Unlock()
			} else {
				l.locks[stripes[i]].RUnlock()
			}
		}
	}
}

func (l *StripedLock) stripe(key []byte) int {
	return l.hashRing.shard(key)
}

func (l *StripedLock) stripes(keys [][]byte) []int {
	seen := make(map[int]struct{}, len(keys))
	res := make([]int, 0, len(keys))
	for _, key := range keys {
		stripe := l.stripe(key)
		if _, ok := seen[stripe]; ok {
			continue
		}
		seen[stripe] = struct{}{}
		res = append(res, stripe)
	}
	sort.Ints(res)
	return res
}
