package api

import (
	stdcontext "context"
	"errors"
	"time"

	"github.com/Paintersrp/procwick/internal/engine"
)

// ErrNotReady is returned while the watchdog has no status to report yet.
var ErrNotReady = errors.New("watchdog not ready")

// PhaseSummary mirrors engine.PhaseReport for API consumers.
type PhaseSummary struct {
	Signal        string `json:"signal"`
	GroupSignaled []int  `json:"group_signaled"`
	Fallback      []int  `json:"fallback"`
	Signaled      []int  `json:"signaled"`
	Skipped       []int  `json:"skipped"`
	Failed        []int  `json:"failed"`
}

// EscalationSummary describes a completed escalation run.
type EscalationSummary struct {
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	KillList []int        `json:"kill_list"`
	Graceful PhaseSummary `json:"graceful"`
	Forced   PhaseSummary `json:"forced"`
	Error    string       `json:"error,omitempty"`
}

// StatusReport is the JSON view of the watchdog.
type StatusReport struct {
	Dog         int                `json:"dog"`
	Targets     []int              `json:"targets"`
	State       engine.State       `json:"state"`
	Tick        string             `json:"tick"`
	Grace       string             `json:"grace"`
	Checks      int                `json:"checks"`
	LastCheck   *time.Time         `json:"last_check,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
	DeathSeen   *time.Time         `json:"death_seen,omitempty"`
	Escalation  *EscalationSummary `json:"escalation,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// StatusProvider exposes the watchdog state required by control servers.
type StatusProvider interface {
	Status(stdcontext.Context) (*StatusReport, error)
}

// MonitorStatus adapts an engine.Monitor to StatusProvider.
type MonitorStatus struct {
	Monitor *engine.Monitor
}

// Status implements StatusProvider.
func (m MonitorStatus) Status(stdcontext.Context) (*StatusReport, error) {
	if m.Monitor == nil {
		return nil, ErrNotReady
	}
	return NewStatusReport(m.Monitor.Status()), nil
}

// NewStatusReport converts a monitor snapshot.
func NewStatusReport(st engine.Status) *StatusReport {
	report := &StatusReport{
		Dog:         st.Dog,
		Targets:     append([]int{}, st.Targets...),
		State:       st.State,
		Tick:        st.Tick.String(),
		Grace:       st.Grace.String(),
		Checks:      st.Checks,
		GeneratedAt: time.Now().UTC(),
	}
	if !st.LastCheck.IsZero() {
		ts := st.LastCheck
		report.LastCheck = &ts
	}
	if st.LastErr != nil {
		report.LastError = st.LastErr.Error()
	}
	if !st.DeathSeen.IsZero() {
		ts := st.DeathSeen
		report.DeathSeen = &ts
	}
	if st.Report != nil {
		report.Escalation = newEscalationSummary(st.Report)
	}
	return report
}

func newEscalationSummary(r *engine.Report) *EscalationSummary {
	summary := &EscalationSummary{
		Started:  r.Started,
		Finished: r.Finished,
		KillList: append([]int{}, r.KillList...),
		Graceful: newPhaseSummary(r.Graceful),
		Forced:   newPhaseSummary(r.Forced),
	}
	if r.Err != nil {
		summary.Error = r.Err.Error()
	}
	return summary
}

func newPhaseSummary(p engine.PhaseReport) PhaseSummary {
	return PhaseSummary{
		Signal:        p.Signal.String(),
		GroupSignaled: p.GroupSignaled,
		Fallback:      p.Fallback,
		Signaled:      p.Signaled,
		Skipped:       p.Skipped,
		Failed:        p.Failed,
	}
}
