package relay

import (
	"sync"
	"time"
)

// CooldownTracker remembers, per user, when the user may relay again.
// Entries live for the lifetime of the process; stale ones expire by comparison and are never evicted.
// It is safe for concurrent use.
type CooldownTracker struct {
	mutex    sync.Mutex
	expiries map[string]time.Time
	holds    map[string]*userHold
}

type userHold struct {
	mutex sync.Mutex
	refs  int
}

// NewCooldownTracker creates a new empty CooldownTracker.
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		expiries: map[string]time.Time{},
		holds:    map[string]*userHold{},
	}
}

// IsOnCooldown reports whether the user is still cooling down at now, and for how long.
// The remaining duration is only meaningful when the first return value is true.
func (t *CooldownTracker) IsOnCooldown(userID string, now time.Time) (bool, time.Duration) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	expiry, ok := t.expiries[userID]
	if !ok {
		return false, 0
	}

	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return false, 0
	}

	return true, remaining
}

// Refresh starts a new cooldown of d for the user at now.
func (t *CooldownTracker) Refresh(userID string, now time.Time, d time.Duration) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.expiries[userID] = now.Add(d)
}

// Expiry returns the stored expiry for the user, if any.
func (t *CooldownTracker) Expiry(userID string) (time.Time, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	expiry, ok := t.expiries[userID]
	return expiry, ok
}

// Hold blocks until no other caller holds the given user, then holds it until release is called.
// Callers hold a user between IsOnCooldown and Refresh so that two messages sent at once cannot both pass.
func (t *CooldownTracker) Hold(userID string) (release func()) {
	t.mutex.Lock()
	hold, ok := t.holds[userID]
	if !ok {
		hold = &userHold{}
		t.holds[userID] = hold
	}
	hold.refs++
	t.mutex.Unlock()

	hold.mutex.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			hold.mutex.Unlock()

			t.mutex.Lock()
			defer t.mutex.Unlock()
			hold.refs--
			if hold.refs == 0 {
				delete(t.holds, userID)
			}
		})
	}
}
