package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"aurora-hq/saturn/pkg/history"
	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
	"aurora-hq/saturn/pkg/telemetry/metrics"
)

// latencyEstimates gives ranking-only latency guesses for well-known
// models when lazy verification skips the network. Values are rough
// medians, not measurements.
var latencyEstimates = map[string]int64{
	"gemini-2.0-flash":                 800,
	"gemini-1.5-pro":                   2000,
	"gpt-4o-mini":                      900,
	"gpt-4o":                           1800,
	"claude-3-5-haiku-latest":          900,
	"claude-3-5-sonnet-latest":         2200,
	"meta-llama/Llama-3.2-3B-Instruct": 1500,
}

// defaultLatencyEstimate is used for models absent from the table.
const defaultLatencyEstimate int64 = 2500

// verdict is a remembered definitive outcome for an entry id, produced
// by a probe or a real call. Remembered verdicts stop later lazy
// discovery cycles from regressing a proven entry back to ASSUMED.
type verdict struct {
	status    Status
	latencyMs *int64
	detail    string
}

// VerifierOptions configures a Verifier.
type VerifierOptions struct {
	// Concurrency bounds simultaneous probes across the whole batch.
	Concurrency int

	// ProbeTimeout is the independent per-probe deadline.
	ProbeTimeout time.Duration

	// Eager enables network probing during discovery. When false
	// entries are assumed valid and verified on first real use.
	Eager bool

	Logger  *slog.Logger
	Metrics *metrics.Collector
	History history.Store
}

// Verifier turns candidates into status-bearing entries, either by
// probing them under a bounded worker pool or by assuming them valid
// for later verification.
type Verifier struct {
	clients      providers.ClientSet
	concurrency  int
	probeTimeout time.Duration
	eager        bool
	log          *slog.Logger
	metrics      *metrics.Collector
	history      history.Store

	mu         sync.Mutex
	remembered map[string]verdict
}

// NewVerifier builds a Verifier over the given backend clients.
func NewVerifier(clients providers.ClientSet, opts VerifierOptions) *Verifier {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Verifier{
		clients:      clients,
		concurrency:  opts.Concurrency,
		probeTimeout: opts.ProbeTimeout,
		eager:        opts.Eager,
		log:          opts.Logger,
		metrics:      opts.Metrics,
		history:      opts.History,
		remembered:   make(map[string]verdict),
	}
}

// Remember stores a definitive verdict for an entry id so later
// discovery cycles reuse it instead of assuming.
func (v *Verifier) Remember(id string, status Status, latencyMs *int64, detail string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.remembered[id] = verdict{status: status, latencyMs: latencyMs, detail: detail}
}

func (v *Verifier) recall(id string) (verdict, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	vd, ok := v.remembered[id]
	return vd, ok
}

// Verify produces one entry per candidate. Entry ids are unique within
// the returned batch; the rare sanitized-model collision gets a numeric
// suffix. The result is returned in ranked order.
func (v *Verifier) Verify(ctx context.Context, candidates []registry.Candidate) []*Entry {
	slotTotals := make(map[registry.Type]map[int]struct{})
	for _, c := range candidates {
		if slotTotals[c.Credential.Provider] == nil {
			slotTotals[c.Credential.Provider] = make(map[int]struct{})
		}
		slotTotals[c.Credential.Provider][c.Credential.Slot] = struct{}{}
	}

	entries := make([]*Entry, 0, len(candidates))
	seen := make(map[string]int)
	for _, c := range candidates {
		id := EntryID(c.Credential.Provider, c.Credential.Slot, c.Model.Model)
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id = fmt.Sprintf("%s_%d", id, n+1)
		} else {
			seen[id] = 1
		}
		entries = append(entries, &Entry{
			ID:          id,
			Label:       buildLabel(c.Credential.Provider, c.Model.DisplayName, c.Credential.Slot, len(slotTotals[c.Credential.Provider])),
			Provider:    c.Credential.Provider,
			Model:       c.Model.Model,
			DisplayName: c.Model.DisplayName,
			Slot:        c.Credential.Slot,
			APIKey:      c.Credential.Value,
			Status:      StatusUnverified,
		})
	}

	if v.eager {
		v.probeAll(ctx, entries)
	} else {
		v.assumeAll(entries)
	}

	sortEntries(entries)
	return entries
}

// probeAll fans probes out over a bounded worker pool and waits for the
// whole batch. A single probe failing, timing out, or panicking only
// marks its own entry.
func (v *Verifier) probeAll(ctx context.Context, entries []*Entry) {
	sem := make(chan struct{}, v.concurrency)
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(e *Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			result := v.probe(ctx, e.Provider, e.APIKey, e.Model)
			v.apply(e, result, history.SourceDiscovery)
		}(e)
	}
	wg.Wait()
}

// probe runs one probe with its own timeout and panic containment.
// A probe that outlives the deadline is abandoned; its goroutine ends
// when the HTTP client honors the cancelled context.
func (v *Verifier) probe(ctx context.Context, provider registry.Type, apiKey, model string) providers.ProbeResult {
	client, err := v.clients.For(provider)
	if err != nil {
		return providers.ProbeResult{Status: providers.ProbeError, Detail: err.Error()}
	}

	probeCtx, cancel := context.WithTimeout(ctx, v.probeTimeout)
	defer cancel()

	done := make(chan providers.ProbeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- providers.ProbeResult{
					Status: providers.ProbeError,
					Detail: fmt.Sprintf("probe panicked: %v", r),
				}
			}
		}()
		done <- client.Probe(probeCtx, apiKey, model)
	}()

	select {
	case result := <-done:
		if probeCtx.Err() == context.DeadlineExceeded {
			return v.timeoutResult()
		}
		return result
	case <-probeCtx.Done():
		return v.timeoutResult()
	}
}

func (v *Verifier) timeoutResult() providers.ProbeResult {
	return providers.ProbeResult{
		Status:    providers.ProbeError,
		LatencyMs: v.probeTimeout.Milliseconds(),
		Detail:    fmt.Sprintf("timed out after %ds", int(v.probeTimeout.Seconds())),
	}
}

// apply writes a probe result onto an entry and records it.
func (v *Verifier) apply(e *Entry, result providers.ProbeResult, source history.Source) {
	ms := result.LatencyMs
	e.LatencyMs = &ms
	e.Detail = result.Detail
	e.CheckedAt = time.Now().UTC()
	e.Status = statusFromProbe(result.Status)
	e.Speed = classifySpeed(e.Model, e.LatencyMs)

	v.log.Debug("probe finished",
		slog.String("entry", e.ID),
		slog.String("status", string(e.Status)),
		slog.Int64("latency_ms", ms))
	v.record(e, source)
}

// assumeAll marks entries ASSUMED without touching the network, reusing
// any remembered verdict and estimating latency for ranking.
func (v *Verifier) assumeAll(entries []*Entry) {
	now := time.Now().UTC()
	for _, e := range entries {
		if vd, ok := v.recall(e.ID); ok {
			e.Status = vd.status
			e.LatencyMs = vd.latencyMs
			e.Detail = vd.detail
			e.Speed = classifySpeed(e.Model, e.LatencyMs)
		} else {
			e.Status = StatusAssumed
			estimate := defaultLatencyEstimate
			if ms, ok := latencyEstimates[e.Model]; ok {
				estimate = ms
			}
			// The estimate ranks entries; the speed label comes from
			// name heuristics since no real measurement exists.
			e.LatencyMs = &estimate
			e.Speed = speedFromModel(e.Model)
		}
		e.CheckedAt = now
	}
}

// ProbeEntry runs a single bounded probe for verify-on-first-use.
func (v *Verifier) ProbeEntry(ctx context.Context, e Entry) providers.ProbeResult {
	result := v.probe(ctx, e.Provider, e.APIKey, e.Model)
	ms := result.LatencyMs
	e.Status = statusFromProbe(result.Status)
	e.LatencyMs = &ms
	e.Detail = result.Detail
	v.record(&e, history.SourceVerify)
	return result
}

func (v *Verifier) record(e *Entry, source history.Source) {
	var latency int64
	if e.LatencyMs != nil {
		latency = *e.LatencyMs
	}
	if v.metrics != nil {
		v.metrics.ObserveProbe(string(e.Provider), string(e.Status), latency)
	}
	if v.history != nil {
		obs := history.Observation{
			EntryID:    e.ID,
			Provider:   string(e.Provider),
			Model:      e.Model,
			Status:     string(e.Status),
			LatencyMs:  latency,
			Detail:     e.Detail,
			Source:     source,
			ObservedAt: time.Now().UTC(),
		}
		if err := v.history.Record(context.Background(), obs); err != nil {
			v.log.Warn("history record failed", slog.String("error", err.Error()))
		}
	}
}

// statusFromProbe maps probe outcomes onto entry statuses.
func statusFromProbe(s providers.ProbeStatus) Status {
	switch s {
	case providers.ProbeOK:
		return StatusAvailable
	case providers.ProbeRateLimited:
		return StatusRateLimited
	case providers.ProbeUnavailable:
		return StatusUnavailable
	default:
		return StatusError
	}
}
