// Package sessions hands out short opaque ids that stand in for a query, so
// that paging interactions only need to carry the id and an index.
package sessions

import (
	"bookbridge/internal/components/assert"
	"bookbridge/internal/components/chrono"
	"bookbridge/internal/components/telemetry"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mazen160/go-random"
)

const (
	report_registry_create = "registry.create"
	report_registry_purge  = "registry.purge"
)

const (
	DefaultTimeout  = time.Hour
	DefaultCapacity = 4096
	DefaultSweepAt  = "@every 10m"
)

const (
	idLength      = 12
	maxIdAttempts = 8
)

type entry struct {
	query     string
	createdAt time.Time
}

type Options struct {
	// defaults to DefaultTimeout
	Timeout time.Duration
	// when full the oldest session is dropped, defaults to DefaultCapacity
	Capacity int
	// defaults to chrono.StandardTime
	Time chrono.TimeAPI
}

type Registry struct {
	lock     *sync.Mutex
	entries  *lru.Cache[string, entry]
	timeout  time.Duration
	time     chrono.TimeAPI
	tel      telemetry.API
	randomId func(n int) (string, error)
}

func NewRegistry(opts Options, tel telemetry.API) (*Registry, error) {
	assert.NotNil(tel)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	var clock chrono.TimeAPI = chrono.NewStandardTime()
	if opts.Time != nil {
		clock = opts.Time
	}

	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("sessions: create lru: %w", err)
	}

	return &Registry{
		lock:     &sync.Mutex{},
		entries:  entries,
		timeout:  timeout,
		time:     clock,
		tel:      telemetry.NewScopedAPI("sessions", tel),
		randomId: random.String,
	}, nil
}

func (r *Registry) expired(e entry, now time.Time) bool {
	return now.Sub(e.createdAt) >= r.timeout
}

// purge assumes the lock is held.
func (r *Registry) purge(now time.Time) int {
	purged := 0
	for _, id := range r.entries.Keys() {
		e, ok := r.entries.Peek(id)
		if ok && r.expired(e, now) {
			r.entries.Remove(id)
			purged++
		}
	}
	return purged
}

// Create allocates a new session for `query`, every call returns a fresh id
// even if the query already has a live session.
func (r *Registry) Create(query string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := r.time.Now()
	r.purge(now)

	for attempt := 0; attempt < maxIdAttempts; attempt++ {
		id, err := r.randomId(idLength)
		if err != nil {
			r.tel.ReportBroken(report_registry_create, err)
			return "", fmt.Errorf("sessions: generate id: %w", err)
		}
		if r.entries.Contains(id) {
			continue
		}
		r.entries.Add(id, entry{query: query, createdAt: now})
		return id, nil
	}

	err := fmt.Errorf("sessions: could not find an unused id after %d attempts", maxIdAttempts)
	r.tel.ReportBroken(report_registry_create, err)
	return "", err
}

// Resolve returns the query a session was created for, expired sessions are
// treated as unknown.
func (r *Registry) Resolve(id string) (string, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.entries.Peek(id)
	if !ok {
		return "", false
	}
	if r.expired(e, r.time.Now()) {
		r.entries.Remove(id)
		return "", false
	}
	return e.query, true
}

// PurgeExpired drops every expired session and returns how many were dropped.
func (r *Registry) PurgeExpired() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	purged := r.purge(r.time.Now())
	if purged > 0 {
		r.tel.ReportCount(report_registry_purge, int64(purged))
	}
	return purged
}

// Schedule runs PurgeExpired periodically on the given cron spec.
func (r *Registry) Schedule(cron chrono.CronAPI, spec string) error {
	assert.NotNil(cron)
	if spec == "" {
		spec = DefaultSweepAt
	}
	return cron.Cron(spec, func() {
		r.PurgeExpired()
	})
}

func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.entries.Len()
}
