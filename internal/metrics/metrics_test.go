package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Paintersrp/procwick/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.EmitBuildInfo()
	metrics.SetGuardianAlive(true)
	metrics.ObserveLivenessCheck(nil)
	metrics.ObserveLivenessCheck(errors.New("inconclusive"))
	metrics.IncEscalations()
	metrics.ObserveGroupSignal("graceful", metrics.ResultFailed)
	metrics.ObserveSignal("forced", metrics.ResultOK)
	metrics.ObserveTreeSize(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		"procwick_guardian_alive 1",
		`procwick_liveness_checks_total{result="failed"}`,
		`procwick_group_signals_total{result="failed",signal="graceful"} `,
		`procwick_signals_total{result="ok",signal="forced"} `,
		"procwick_escalations_total ",
		"procwick_tree_size_count ",
		"procwick_build_info{",
		"go_version=",
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("expected %q in body:\n%s", line, body)
		}
	}
}

func TestBuildInfoHasGoVersion(t *testing.T) {
	info := metrics.BuildInfo()
	if info["go_version"] == "" {
		t.Fatalf("expected go_version label, got %v", info)
	}
}
