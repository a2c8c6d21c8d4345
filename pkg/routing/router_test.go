package routing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"aurora-hq/saturn/internal/backends"
	"aurora-hq/saturn/pkg/discovery"
	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/registry"
)

type staticSource struct {
	candidates []registry.Candidate
}

func (s staticSource) Candidates() []registry.Candidate { return s.candidates }

func candidate(provider registry.Type, slot int, key, model, display string) registry.Candidate {
	return registry.Candidate{
		Credential: registry.Credential{Provider: provider, Slot: slot, Value: key},
		Model:      registry.CandidateModel{Provider: provider, Model: model, DisplayName: display},
	}
}

// fixture wires a router over fake backends with a lazy verifier, so
// every entry starts ASSUMED unless a test patches or probes it.
type fixture struct {
	router *Router
	cache  *discovery.Cache
	gemini *backends.Fake
	openai *backends.Fake
}

func newFixture(t *testing.T, opts Options, candidates ...registry.Candidate) *fixture {
	t.Helper()
	gemini := backends.NewFake(registry.TypeGemini)
	openai := backends.NewFake(registry.TypeOpenAI)
	clients, err := providers.NewClientSet(gemini, openai)
	if err != nil {
		t.Fatalf("NewClientSet: %v", err)
	}

	verifier := discovery.NewVerifier(clients, discovery.VerifierOptions{
		Eager:        false,
		ProbeTimeout: time.Second,
	})
	cache := discovery.NewCache(staticSource{candidates}, verifier, discovery.CacheOptions{TTL: time.Hour})
	if opts.ConfirmFirstUse == nil {
		opts.ConfirmFirstUse = func(providerType string) bool { return providerType != "gemini" }
	}
	router := NewRouter(cache, verifier, clients, opts)
	return &fixture{router: router, cache: cache, gemini: gemini, openai: openai}
}

var (
	geminiCand = candidate(registry.TypeGemini, 1, "AIza-valid-long-key", "gemini-2.0-flash", "Flash 2.0")
	openaiCand = candidate(registry.TypeOpenAI, 1, "sk-valid-long-key", "gpt-4o-mini", "GPT-4o Mini")
)

const (
	geminiID = "gemini_1_gemini20flash"
	openaiID = "openai_1_gpt4omini"
)

func TestRouteAutoSelectsSingleProvider(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand)

	result, err := f.router.Route(context.Background(), "", providers.AnalysisRequest{Context: "issue text"})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result == nil || result.Summary == "" {
		t.Fatal("empty analysis result")
	}
	if len(f.gemini.AnalyzeCalls) != 1 {
		t.Errorf("analyze calls = %d, want 1", len(f.gemini.AnalyzeCalls))
	}
}

func TestSingleEnvCredentialYieldsOneEntryAndAutoSelects(t *testing.T) {
	scanner := registry.NewScanner(nil, nil)
	scanner.Environ = func() []string { return []string{"GEMINI_API_KEY=validlongkeyvalue123"} }

	gemini := backends.NewFake(registry.TypeGemini)
	clients, err := providers.NewClientSet(gemini)
	if err != nil {
		t.Fatalf("NewClientSet: %v", err)
	}
	verifier := discovery.NewVerifier(clients, discovery.VerifierOptions{ProbeTimeout: time.Second})
	cache := discovery.NewCache(scanner, verifier, discovery.CacheOptions{TTL: time.Hour})
	router := NewRouter(cache, verifier, clients, Options{})

	views := router.ListProviders(context.Background(), true)
	if len(views) != 1 {
		t.Fatalf("views = %d, want exactly 1 for a single credential: %+v", len(views), views)
	}
	if views[0].ID != geminiID {
		t.Errorf("id = %q, want %s", views[0].ID, geminiID)
	}

	result, err := router.Route(context.Background(), "", providers.AnalysisRequest{Context: "issue text"})
	if err != nil {
		t.Fatalf("Route with empty provider id: %v", err)
	}
	if result == nil || result.Summary == "" {
		t.Fatal("empty analysis result")
	}
}

func TestRouteAmbiguousSelection(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand, openaiCand)

	_, err := f.router.Route(context.Background(), "", providers.AnalysisRequest{Context: "x"})
	var ambiguous *AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousError, got %v", err)
	}
	msg := err.Error()
	for _, id := range []string{geminiID, openaiID} {
		if !strings.Contains(msg, id) {
			t.Errorf("error message %q missing id %s", msg, id)
		}
	}
}

func TestRouteNoProviders(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.router.Route(context.Background(), "", providers.AnalysisRequest{Context: "x"})
	var none *NoProvidersError
	if !errors.As(err, &none) {
		t.Fatalf("expected *NoProvidersError, got %v", err)
	}
}

func TestRouteUnknownID(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand, openaiCand)

	_, err := f.router.Route(context.Background(), "no_such_id", providers.AnalysisRequest{Context: "x"})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	msg := err.Error()
	for _, id := range []string{geminiID, openaiID} {
		if !strings.Contains(msg, id) {
			t.Errorf("error message %q missing valid id %s", msg, id)
		}
	}
}

func TestRouteFallbackOnRateLimit(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand, openaiCand)
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{
		AnalyzeErr: &providers.RateLimitError{Provider: "gemini", Model: "gemini-2.0-flash", Detail: "quota"},
	})
	f.openai.SetScript("sk-valid-long-key", "gpt-4o-mini", backends.Script{
		Analysis: &providers.IssueAnalysis{Summary: "from fallback", Type: "bug", PriorityScore: 5},
	})

	result, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.Summary != "from fallback" {
		t.Errorf("summary = %q, want fallback result", result.Summary)
	}

	e, ok := f.cache.Get(geminiID)
	if !ok {
		t.Fatal("primary entry missing")
	}
	if e.Status != discovery.StatusRateLimited {
		t.Errorf("primary status = %q, want RATE_LIMITED", e.Status)
	}
	if e.Detail != "rate limit exceeded during analysis" {
		t.Errorf("primary detail = %q", e.Detail)
	}
}

func TestRouteRateLimitExhausted(t *testing.T) {
	f := newFixture(t, Options{MaxFallbacks: 2}, geminiCand, openaiCand)
	rle := func(p string) *providers.RateLimitError {
		return &providers.RateLimitError{Provider: p, Detail: "quota"}
	}
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{AnalyzeErr: rle("gemini")})
	f.openai.SetScript("sk-valid-long-key", "gpt-4o-mini", backends.Script{AnalyzeErr: rle("openai")})

	_, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	var exhausted *RateLimitExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *RateLimitExhaustedError, got %v", err)
	}
	if exhausted.Attempted != 2 {
		t.Errorf("attempted = %d, want 2", exhausted.Attempted)
	}
	if exhausted.PrimaryID != geminiID {
		t.Errorf("primary = %q", exhausted.PrimaryID)
	}
}

func TestRouteMaxFallbacksBound(t *testing.T) {
	third := candidate(registry.TypeOpenAI, 2, "sk-other-long-key", "gpt-4o-mini", "GPT-4o Mini")
	f := newFixture(t, Options{MaxFallbacks: 1}, geminiCand, openaiCand, third)
	rle := &providers.RateLimitError{Detail: "quota"}
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{AnalyzeErr: rle})
	f.openai.SetScript("sk-valid-long-key", "gpt-4o-mini", backends.Script{AnalyzeErr: rle})
	f.openai.SetScript("sk-other-long-key", "gpt-4o-mini", backends.Script{AnalyzeErr: rle})

	_, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	var exhausted *RateLimitExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *RateLimitExhaustedError, got %v", err)
	}
	// Primary plus exactly one fallback.
	if exhausted.Attempted != 2 {
		t.Errorf("attempted = %d, want 2", exhausted.Attempted)
	}
}

func TestRouteFallbackDisabled(t *testing.T) {
	f := newFixture(t, Options{MaxFallbacks: -1}, geminiCand, openaiCand)
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{
		AnalyzeErr: &providers.RateLimitError{Provider: "gemini", Detail: "quota"},
	})

	_, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	var exhausted *RateLimitExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *RateLimitExhaustedError, got %v", err)
	}
	if exhausted.Attempted != 1 {
		t.Errorf("attempted = %d, want 1 with fallback disabled", exhausted.Attempted)
	}
	if len(f.openai.AnalyzeCalls) != 0 {
		t.Error("fallback was attempted with MaxFallbacks < 0")
	}
}

func TestRoutePrimaryNonRateLimitErrorPropagates(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand, openaiCand)
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{
		AnalyzeErr: &providers.APIError{Provider: "gemini", StatusCode: 500, Detail: "internal"},
	})

	_, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	var apiErr *providers.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError to propagate, got %v", err)
	}
	if len(f.openai.AnalyzeCalls) != 0 {
		t.Error("fallback was attempted for a non-rate-limit failure")
	}
}

func TestRouteFallbackSwallowsNonRateLimitFailures(t *testing.T) {
	third := candidate(registry.TypeOpenAI, 2, "sk-other-long-key", "gpt-4o-mini", "GPT-4o Mini")
	f := newFixture(t, Options{MaxFallbacks: 2}, geminiCand, openaiCand, third)
	f.gemini.SetScript("AIza-valid-long-key", "gemini-2.0-flash", backends.Script{
		AnalyzeErr: &providers.RateLimitError{Detail: "quota"},
	})
	// First fallback breaks for an unrelated reason, second succeeds.
	f.openai.SetScript("sk-valid-long-key", "gpt-4o-mini", backends.Script{
		AnalyzeErr: &providers.APIError{Provider: "openai", StatusCode: 500, Detail: "boom"},
	})
	f.openai.SetScript("sk-other-long-key", "gpt-4o-mini", backends.Script{
		Analysis: &providers.IssueAnalysis{Summary: "recovered", Type: "bug", PriorityScore: 4},
	})

	result, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if result.Summary != "recovered" {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestRoutePromotesAssumedOnSuccess(t *testing.T) {
	f := newFixture(t, Options{}, openaiCand)

	if _, err := f.router.Route(context.Background(), openaiID, providers.AnalysisRequest{Context: "x"}); err != nil {
		t.Fatalf("Route: %v", err)
	}

	e, _ := f.cache.Get(openaiID)
	if e.Status != discovery.StatusAvailable {
		t.Fatalf("status = %q, want AVAILABLE after successful use", e.Status)
	}
	probesAfterFirst := f.openai.ProbeCount()
	if probesAfterFirst != 1 {
		t.Fatalf("verify-on-first-use probes = %d, want 1", probesAfterFirst)
	}

	// A second call must not re-run verify-on-first-use.
	if _, err := f.router.Route(context.Background(), openaiID, providers.AnalysisRequest{Context: "y"}); err != nil {
		t.Fatalf("second Route: %v", err)
	}
	if f.openai.ProbeCount() != probesAfterFirst {
		t.Errorf("probe count grew to %d on second call", f.openai.ProbeCount())
	}
}

func TestRouteSkipsConfirmationForExemptType(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand)

	if _, err := f.router.Route(context.Background(), geminiID, providers.AnalysisRequest{Context: "x"}); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if f.gemini.ProbeCount() != 0 {
		t.Errorf("gemini was probed %d times despite exemption", f.gemini.ProbeCount())
	}
}

func TestRouteVerificationFailureBlocksRealCall(t *testing.T) {
	f := newFixture(t, Options{}, openaiCand)
	f.openai.SetScript("sk-valid-long-key", "gpt-4o-mini", backends.Script{
		ProbeResult: &providers.ProbeResult{Status: providers.ProbeUnavailable, Detail: "invalid key"},
	})

	_, err := f.router.Route(context.Background(), openaiID, providers.AnalysisRequest{Context: "x"})
	var vf *VerificationFailedError
	if !errors.As(err, &vf) {
		t.Fatalf("expected *VerificationFailedError, got %v", err)
	}
	if len(f.openai.AnalyzeCalls) != 0 {
		t.Error("real call was attempted after failed verification")
	}

	e, _ := f.cache.Get(openaiID)
	if e.Status != discovery.StatusUnavailable {
		t.Errorf("status = %q, want UNAVAILABLE", e.Status)
	}
}

func TestListProvidersHidesCredentials(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand, openaiCand)

	views := f.router.ListProviders(context.Background(), false)
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	for _, v := range views {
		if v.ID == "" || v.Label == "" || v.Status == "" {
			t.Errorf("incomplete view: %+v", v)
		}
	}
}

func TestListProvidersSingleCredentialScenario(t *testing.T) {
	f := newFixture(t, Options{}, geminiCand)

	views := f.router.ListProviders(context.Background(), false)
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Provider != "gemini" {
		t.Errorf("provider = %q", views[0].Provider)
	}
	if views[0].Status != discovery.StatusAssumed && views[0].Status != discovery.StatusAvailable {
		t.Errorf("status = %q, want ASSUMED or AVAILABLE", views[0].Status)
	}
}
