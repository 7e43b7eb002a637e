// Package registry tracks running and recently finished chains so the
// HTTP API can answer status queries. Entries expire on a TTL; the
// registry is a window into recent activity, not a durable store.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/solvent/internal/model"
)

// Status is the lifecycle phase of a tracked chain
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Snapshot is a point-in-time copy of a chain's state, safe to
// serialize without holding the chain's lock
type Snapshot struct {
	ID           string         `json:"chain_id"`
	Status       Status         `json:"status"`
	CurrentURL   string         `json:"current_url,omitempty"`
	PagesVisited int            `json:"pages_visited"`
	LastVerdict  *model.Verdict `json:"last_verdict,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	Elapsed      string         `json:"elapsed"`
	Error        string         `json:"error,omitempty"`
}

// Chain is the mutable tracking entry for one running chain. It
// implements the solver's progress callbacks.
type Chain struct {
	id        string
	startedAt time.Time

	mu          sync.Mutex
	status      Status
	currentURL  string
	pages       int
	lastVerdict *model.Verdict
	err         error
}

// PageStarted records the chain moving to a new page
func (c *Chain) PageStarted(pageURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentURL = pageURL
}

// VerdictReceived records the outcome of one solved page
func (c *Chain) VerdictReceived(v model.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages++
	c.lastVerdict = &v
}

// Finished marks the chain done, failed when err is non-nil
func (c *Chain) Finished(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = StatusFailed
		c.err = err
		return
	}
	c.status = StatusFinished
}

func (c *Chain) snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		ID:           c.id,
		Status:       c.status,
		CurrentURL:   c.currentURL,
		PagesVisited: c.pages,
		LastVerdict:  c.lastVerdict,
		StartedAt:    c.startedAt,
		Elapsed:      time.Since(c.startedAt).Round(time.Millisecond).String(),
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}

// Registry holds chain entries behind an expiring cache
type Registry struct {
	store *gocache.Cache
}

// New creates a registry whose entries expire ttl after registration
func New(ttl time.Duration) *Registry {
	return &Registry{store: gocache.New(ttl, ttl/2)}
}

// Register creates a tracking entry for a new chain and returns its ID
func (r *Registry) Register(req model.ChainRequest) (string, *Chain) {
	c := &Chain{
		id:         uuid.NewString(),
		startedAt:  time.Now(),
		status:     StatusRunning,
		currentURL: req.URL,
	}
	r.store.SetDefault(c.id, c)
	return c.id, c
}

// Get returns a snapshot of the chain, false when unknown or expired
func (r *Registry) Get(id string) (Snapshot, bool) {
	v, ok := r.store.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	return v.(*Chain).snapshot(), true
}
