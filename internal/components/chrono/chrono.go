package chrono

import (
	"sync"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

// ManualTime is a TimeAPI that only moves when told to, it is meant for tests
// that depend on expiry.
type ManualTime struct {
	lock *sync.Mutex
	now  *time.Time
}

func NewManualTime(start time.Time) ManualTime {
	return ManualTime{lock: &sync.Mutex{}, now: &start}
}

func (m ManualTime) Now() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return *m.now
}

func (m ManualTime) Set(now time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()
	*m.now = now
}

func (m ManualTime) Advance(d time.Duration) {
	m.lock.Lock()
	defer m.lock.Unlock()
	*m.now = m.now.Add(d)
}
