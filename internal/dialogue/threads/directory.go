// Package threads remembers, per user, the operator-channel message that the
// next relay should reply to.
package threads

import "sync"

// Directory maps user id to the last relay message id. Entries never expire
// and the last write wins.
type Directory struct {
	mu   sync.RWMutex
	last map[int64]int
}

func New() *Directory {
	return &Directory{last: map[int64]int{}}
}

// Set records msgID as the user's thread anchor.
func (d *Directory) Set(userID int64, msgID int) {
	d.mu.Lock()
	d.last[userID] = msgID
	d.mu.Unlock()
}

// Get returns the user's thread anchor.
func (d *Directory) Get(userID int64) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.last[userID]
	return id, ok
}
