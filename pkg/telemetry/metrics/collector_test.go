package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProbe(t *testing.T) {
	c := NewCollector("saturn")
	c.ObserveProbe("openai", "ok", 420)
	c.ObserveProbe("openai", "ok", 800)
	c.ObserveProbe("gemini", "rate_limited", 90)

	if got := testutil.ToFloat64(c.probesTotal.WithLabelValues("openai", "ok")); got != 2 {
		t.Errorf("openai ok probes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.probesTotal.WithLabelValues("gemini", "rate_limited")); got != 1 {
		t.Errorf("gemini rate_limited probes = %v, want 1", got)
	}
}

func TestSetRegistryEntriesResetsStale(t *testing.T) {
	c := NewCollector("saturn")
	c.SetRegistryEntries(map[string]int{"AVAILABLE": 3, "ERROR": 1})
	c.SetRegistryEntries(map[string]int{"AVAILABLE": 2})

	if got := testutil.ToFloat64(c.registryEntries.WithLabelValues("AVAILABLE")); got != 2 {
		t.Errorf("AVAILABLE = %v, want 2", got)
	}
	// The ERROR series was reset; reading it recreates it at zero.
	if got := testutil.ToFloat64(c.registryEntries.WithLabelValues("ERROR")); got != 0 {
		t.Errorf("ERROR = %v, want 0", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector("saturn")
	c.RecordDiscovery("startup")
	c.RecordRoute("anthropic", "ok")
	c.RecordFallback()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"saturn_discoveries_total",
		"saturn_route_requests_total",
		"saturn_fallbacks_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
