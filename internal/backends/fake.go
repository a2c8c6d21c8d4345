// Package backends provides a scripted fake backend client for tests.
package backends

import (
	"context"
	"sync"

	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
)

// Script describes the responses a fake client returns for one
// (credential, model) pair, keyed by "apiKey/model". The zero value
// means every probe succeeds and every analysis returns a stub result.
type Script struct {
	// ProbeResult overrides the default successful probe.
	ProbeResult *providers.ProbeResult

	// AnalyzeErr makes Analyze fail with this error.
	AnalyzeErr error

	// Analysis overrides the default stub result.
	Analysis *providers.IssueAnalysis
}

// Fake is a scripted providers.BackendClient. It records every call so
// tests can assert on probe and analysis traffic.
type Fake struct {
	ProviderType registry.Type

	mu      sync.Mutex
	scripts map[string]Script

	ProbeCalls   []string
	AnalyzeCalls []string

	// Block, when non-nil, is received from at the start of every
	// probe, letting tests hold probes in flight to observe the
	// concurrency bound.
	Block chan struct{}
}

// NewFake returns a fake client for the given provider type.
func NewFake(t registry.Type) *Fake {
	return &Fake{ProviderType: t, scripts: make(map[string]Script)}
}

// SetScript installs the scripted behavior for an apiKey/model pair.
func (f *Fake) SetScript(apiKey, model string, s Script) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[apiKey+"/"+model] = s
}

func (f *Fake) script(apiKey, model string) Script {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scripts[apiKey+"/"+model]
}

func (f *Fake) Type() registry.Type { return f.ProviderType }

func (f *Fake) Probe(ctx context.Context, apiKey, model string) providers.ProbeResult {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return providers.ProbeResult{Status: providers.ProbeError, Detail: ctx.Err().Error()}
		}
	}
	f.mu.Lock()
	f.ProbeCalls = append(f.ProbeCalls, apiKey+"/"+model)
	f.mu.Unlock()

	if s := f.script(apiKey, model); s.ProbeResult != nil {
		return *s.ProbeResult
	}
	return providers.ProbeResult{Status: providers.ProbeOK, LatencyMs: 500}
}

func (f *Fake) Analyze(ctx context.Context, apiKey, model string, req providers.AnalysisRequest) (*providers.IssueAnalysis, error) {
	f.mu.Lock()
	f.AnalyzeCalls = append(f.AnalyzeCalls, apiKey+"/"+model)
	f.mu.Unlock()

	s := f.script(apiKey, model)
	if s.AnalyzeErr != nil {
		return nil, s.AnalyzeErr
	}
	if s.Analysis != nil {
		return s.Analysis, nil
	}
	return &providers.IssueAnalysis{
		Summary:       "stub analysis from " + string(f.ProviderType) + "/" + model,
		Type:          "bug",
		PriorityScore: 5,
	}, nil
}

// ProbeCount returns how many probes the fake has served.
func (f *Fake) ProbeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ProbeCalls)
}
