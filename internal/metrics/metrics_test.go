package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

func TestMetrics_RecordParse(t *testing.T) {
	m := newTestMetrics()

	m.RecordParse("text", false)
	m.RecordParse("text", true)
	m.RecordParse("text", true)
	m.RecordParse("json", false)

	tests := []struct {
		format  string
		outcome string
		want    float64
	}{
		{"text", OutcomeStructured, 1},
		{"text", OutcomeDegraded, 2},
		{"json", OutcomeStructured, 1},
		{"json", OutcomeDegraded, 0},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.outcome, func(t *testing.T) {
			got := testutil.ToFloat64(m.ParseOutcomesTotal.WithLabelValues(tt.format, tt.outcome))
			if got != tt.want {
				t.Errorf("parse outcomes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordRequest("telegram", "ok", 2*time.Second)
	m.RecordRequest("telegram", "ok", time.Second)
	m.RecordRequest("http", "too_short", 0)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("telegram", "ok")); got != 2 {
		t.Errorf("telegram ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("http", "too_short")); got != 1 {
		t.Errorf("http too_short = %v, want 1", got)
	}
}

func TestMetrics_InFlightAndSessions(t *testing.T) {
	m := newTestMetrics()

	m.IncRequestsInFlight()
	m.IncRequestsInFlight()
	m.DecRequestsInFlight()
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}

	m.SetActiveSessions(7)
	if got := testutil.ToFloat64(m.ActiveSessions); got != 7 {
		t.Errorf("active sessions = %v, want 7", got)
	}
}

func TestMetrics_TwoRegistries(t *testing.T) {
	// в разных реестрах одинаковые имена не конфликтуют
	a := newTestMetrics()
	b := newTestMetrics()

	a.RecordRateLimitHit("telegram")
	if got := testutil.ToFloat64(b.RateLimitHitsTotal.WithLabelValues("telegram")); got != 0 {
		t.Errorf("second registry rate limit hits = %v, want 0", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := newTestMetrics()
	m.ObserveEssayWords(320)
	m.RecordLLMRequest("mock", "ok", 10*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"essayblitz_essay_words", "essayblitz_llm_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
