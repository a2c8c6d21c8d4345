package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aurora-hq/saturn/pkg/registry"
	"aurora-hq/saturn/pkg/telemetry/metrics"
)

// CandidateSource enumerates (credential, model) pairs for a discovery
// cycle. *registry.Scanner implements it.
type CandidateSource interface {
	Candidates() []registry.Candidate
}

// EntryVerifier turns candidates into status-bearing entries.
// *Verifier implements it.
type EntryVerifier interface {
	Verify(ctx context.Context, candidates []registry.Candidate) []*Entry
	Remember(id string, status Status, latencyMs *int64, detail string)
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// TTL is how long a snapshot stays fresh.
	TTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// Cache holds the current discovery snapshot and serves ranked reads
// while allowing per-entry status patches between cycles. All access
// goes through the cache's lock; readers receive copies.
type Cache struct {
	source   CandidateSource
	verifier EntryVerifier
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics.Collector

	// discoverMu serializes discovery cycles so concurrent callers do
	// not probe the same batch twice. Readers keep using the previous
	// snapshot while a cycle runs.
	discoverMu sync.Mutex

	mu       sync.RWMutex
	snapshot *Snapshot
	byID     map[string]*Entry
}

// NewCache builds a cache over a candidate source and verifier.
func NewCache(source CandidateSource, verifier EntryVerifier, opts CacheOptions) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Cache{
		source:   source,
		verifier: verifier,
		ttl:      opts.TTL,
		now:      opts.Now,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

// Discover ensures a fresh snapshot exists. Within the TTL window the
// stored snapshot is kept unless force is set. The trigger names what
// initiated the cycle ("startup", "ttl", "forced", "schedule",
// "config") for logs and metrics.
func (c *Cache) Discover(ctx context.Context, force bool, trigger string) {
	c.discoverMu.Lock()
	defer c.discoverMu.Unlock()

	if !force && c.fresh() {
		return
	}

	candidates := c.source.Candidates()
	entries := c.verifier.Verify(ctx, candidates)

	snap := &Snapshot{CreatedAt: c.now(), TTL: c.ttl, Entries: entries}
	byID := make(map[string]*Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	c.mu.Lock()
	c.snapshot = snap
	c.byID = byID
	c.mu.Unlock()

	c.log.Info("discovery cycle complete",
		slog.String("trigger", trigger),
		slog.Int("candidates", len(candidates)),
		slog.Int("entries", len(entries)))
	if c.metrics != nil {
		c.metrics.RecordDiscovery(trigger)
		c.publishGauges(entries)
	}
}

func (c *Cache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot != nil && c.now().Sub(c.snapshot.CreatedAt) < c.ttl
}

func (c *Cache) publishGauges(entries []*Entry) {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[string(e.Status)]++
	}
	c.metrics.SetRegistryEntries(counts)
}

// Entries returns every entry of the current snapshot in ranked order.
// Ranking is applied at read time because patches between reads may
// have changed the order.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil
	}
	refs := make([]*Entry, len(c.snapshot.Entries))
	copy(refs, c.snapshot.Entries)
	sortEntries(refs)

	out := make([]Entry, len(refs))
	for i, e := range refs {
		out[i] = e.clone()
	}
	return out
}

// Usable returns the ranked entries eligible for auto-selection and
// fallback.
func (c *Cache) Usable() []Entry {
	all := c.Entries()
	out := all[:0]
	for _, e := range all {
		if e.Status.Usable() {
			out = append(out, e)
		}
	}
	return out
}

// Get returns a copy of the entry with the given id.
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// IDs returns every entry id in ranked order.
func (c *Cache) IDs() []string {
	entries := c.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// Patch atomically rewrites the status and detail of one entry without
// touching the TTL clock or re-probing. Definitive verdicts are
// remembered so later lazy discovery cycles do not regress the entry
// back to ASSUMED. It reports whether the id was found.
func (c *Cache) Patch(id string, status Status, detail string) bool {
	c.mu.Lock()
	e, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	e.Status = status
	e.Detail = detail
	e.CheckedAt = c.now()
	var latency *int64
	if e.LatencyMs != nil {
		ms := *e.LatencyMs
		latency = &ms
	}
	entries := c.snapshot.Entries
	c.mu.Unlock()

	c.verifier.Remember(id, status, latency, detail)
	c.log.Info("entry status patched",
		slog.String("entry", id),
		slog.String("status", string(status)),
		slog.String("detail", detail))
	if c.metrics != nil {
		c.mu.RLock()
		c.publishGauges(entries)
		c.mu.RUnlock()
	}
	return true
}
