package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultSkip   = "skipped"
)

var (
	registry = prometheus.NewRegistry()

	guardianAlive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "procwick",
		Name:      "guardian_alive",
		Help:      "Last observed liveness of the watched process (1=alive, 0=dead).",
	})

	livenessChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procwick",
		Name:      "liveness_checks_total",
		Help:      "Liveness probes of the watched process by outcome.",
	}, []string{"result"})

	escalations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "procwick",
		Name:      "escalations_total",
		Help:      "Number of escalation runs triggered by the watched process dying.",
	})

	groupSignals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procwick",
		Name:      "group_signals_total",
		Help:      "Process group signal attempts by signal and result.",
	}, []string{"signal", "result"})

	signals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procwick",
		Name:      "signals_total",
		Help:      "Individual process signal attempts by signal and result.",
	}, []string{"signal", "result"})

	treeSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "procwick",
		Name:      "tree_size",
		Help:      "Number of processes discovered per target tree walk.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "procwick",
		Name:      "build_info",
		Help:      "Build metadata for the running procwick binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(guardianAlive, livenessChecks, escalations, groupSignals, signals, treeSize, buildInfo)
}

// Registry returns the Prometheus registry containing all procwick metrics.
func Registry() *prometheus.Registry {
	return registry
}

// SetGuardianAlive records the most recent liveness reading.
func SetGuardianAlive(alive bool) {
	value := 0.0
	if alive {
		value = 1.0
	}
	guardianAlive.Set(value)
}

// ObserveLivenessCheck counts a probe; inconclusive probes are counted as failed.
func ObserveLivenessCheck(err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	livenessChecks.WithLabelValues(result).Inc()
}

// IncEscalations counts a started escalation run.
func IncEscalations() {
	escalations.Inc()
}

// ObserveGroupSignal counts a group signal attempt.
func ObserveGroupSignal(signal, result string) {
	groupSignals.WithLabelValues(signal, result).Inc()
}

// ObserveSignal counts an individual signal attempt.
func ObserveSignal(signal, result string) {
	signals.WithLabelValues(signal, result).Inc()
}

// ObserveTreeSize records the number of processes found under a target.
func ObserveTreeSize(n int) {
	if n < 0 {
		return
	}
	treeSize.Observe(float64(n))
}

// BuildInfo returns the label set published by EmitBuildInfo.
func BuildInfo() map[string]string {
	labels := map[string]string{
		"go_version":   runtime.Version(),
		"vcs":          "",
		"vcs_revision": "",
		"vcs_time":     "",
		"vcs_modified": "",
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.GoVersion != "" {
			labels["go_version"] = info.GoVersion
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs":
				labels["vcs"] = setting.Value
			case "vcs.revision":
				labels["vcs_revision"] = setting.Value
			case "vcs.time":
				labels["vcs_time"] = setting.Value
			case "vcs.modified":
				labels["vcs_modified"] = setting.Value
			}
		}
	}
	return labels
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		buildInfo.With(prometheus.Labels(BuildInfo())).Set(1)
	})
}
