package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/Paintersrp/procwick/internal/metrics"
	"github.com/Paintersrp/procwick/internal/platform"
	"github.com/Paintersrp/procwick/internal/proctree"
)

// DefaultGracePeriod separates the graceful and forced phases when no grace
// period is configured.
const DefaultGracePeriod = 5 * time.Second

// PhaseReport summarises one escalation phase.
type PhaseReport struct {
	Signal platform.Signal
	// GroupSignaled lists targets whose process group accepted the signal.
	GroupSignaled []int
	// Fallback lists targets whose group signal failed and whose trees were
	// walked instead.
	Fallback []int
	Signaled []int
	Skipped  []int
	Failed   []int
}

// Report describes a completed escalation run. Err aggregates every non-fatal
// failure encountered along the way; it never means the run was aborted
// unless it wraps a context error.
type Report struct {
	Targets  []int
	Graceful PhaseReport
	Forced   PhaseReport
	// KillList is the merged list of individually signaled pids across both
	// phases, in the order they were first discovered.
	KillList []int
	Started  time.Time
	Finished time.Time
	Err      error
}

// Escalator terminates target process trees in two phases separated by a
// grace period: a graceful signal first, then a forced one.
type Escalator struct {
	platform platform.Platform
	grace    time.Duration
	events   chan<- Event

	sleep func(context.Context, time.Duration) error
	self  int
}

// NewEscalator constructs an Escalator. A negative grace period is treated as
// DefaultGracePeriod; zero disables the wait.
func NewEscalator(p platform.Platform, grace time.Duration, events chan<- Event) *Escalator {
	if grace < 0 {
		grace = DefaultGracePeriod
	}
	return &Escalator{
		platform: p,
		grace:    grace,
		events:   events,
		sleep:    sleepWithContext,
		self:     os.Getpid(),
	}
}

// escalation is the state owned by a single Escalate call.
type escalation struct {
	kill   *proctree.KillList
	depths map[int]int
	errs   error
}

// Escalate runs the full protocol against targets:
//
//  1. signal each target's process group gracefully;
//  2. walk the trees of targets whose group signal failed and gracefully
//     signal every still-alive pid, deepest first;
//  3. wait out the grace period;
//  4. signal each target's process group forcefully;
//  5. walk again for targets whose forced group signal failed, extend the
//     kill list and forcefully signal every still-alive pid on it.
//
// Failures for one target never stop the others. Only a cancelled context
// ends the run early.
func (e *Escalator) Escalate(ctx context.Context, targets []int) Report {
	report := Report{
		Targets: append([]int(nil), targets...),
		Started: time.Now(),
	}
	metrics.IncEscalations()

	run := &escalation{
		kill:   proctree.NewKillList(),
		depths: make(map[int]int),
	}

	report.Graceful = e.phase(ctx, run, platform.Graceful, targets)

	if ctx.Err() == nil {
		sendEvent(e.events, Event{
			Type:    EventTypeGraceWait,
			Count:   run.kill.Len(),
			Message: fmt.Sprintf("waiting %s before forcing", e.grace),
		})
		if err := e.sleep(ctx, e.grace); err != nil {
			run.errs = multierr.Append(run.errs, fmt.Errorf("grace period: %w", err))
		}
	}

	if ctx.Err() == nil {
		report.Forced = e.phase(ctx, run, platform.Forced, targets)
	}

	report.KillList = run.kill.PIDs()
	report.Finished = time.Now()
	report.Err = run.errs

	if err := ctx.Err(); err != nil {
		sendEvent(e.events, Event{Type: EventTypeCanceled, Err: err, Message: "escalation interrupted"})
	} else {
		sendEvent(e.events, Event{Type: EventTypeDone, Count: len(report.KillList), PIDs: report.KillList, Message: "escalation complete"})
	}
	return report
}

func (e *Escalator) phase(ctx context.Context, run *escalation, sig platform.Signal, targets []int) PhaseReport {
	result := PhaseReport{Signal: sig}

	for _, pid := range targets {
		if err := e.platform.SignalGroup(pid, sig); err != nil {
			result.Fallback = append(result.Fallback, pid)
			run.errs = multierr.Append(run.errs, err)
			metrics.ObserveGroupSignal(sig.String(), metrics.ResultFailed)
			sendEvent(e.events, Event{Type: EventTypeGroupFailed, Signal: sig, PID: pid, Reason: ReasonGroupFallback, Err: err})
			continue
		}
		result.GroupSignaled = append(result.GroupSignaled, pid)
		metrics.ObserveGroupSignal(sig.String(), metrics.ResultOK)
		sendEvent(e.events, Event{Type: EventTypeGroupSignaled, Signal: sig, PID: pid})
	}

	// Trees are built only now, after the group attempt, so they reflect the
	// process table at decision time. The sweep visits this phase's fresh
	// kill orders first and then whatever the kill list carried over, which
	// keeps children ahead of their parents even for pids appended late.
	sweep := proctree.NewKillList()
	for _, pid := range result.Fallback {
		tree, err := proctree.Build(ctx, e.platform, pid)
		if err != nil {
			run.errs = multierr.Append(run.errs, fmt.Errorf("walk tree of %d: %w", pid, err))
			sendEvent(e.events, Event{Type: EventTypeTreeError, Signal: sig, PID: pid, Err: err})
			if ctx.Err() != nil {
				return result
			}
		}
		order := tree.KillOrder()
		for _, member := range order {
			if _, known := run.depths[member]; !known {
				run.depths[member] = tree.Depth(member)
			}
		}
		sweep.Merge(order...)
		added := run.kill.Merge(order...)
		metrics.ObserveTreeSize(len(order))
		sendEvent(e.events, Event{
			Type:    EventTypeTreeBuilt,
			Signal:  sig,
			PID:     pid,
			Count:   added,
			PIDs:    order,
			Message: fmt.Sprintf("%d processes, %d new", len(order), added),
		})
	}

	sweep.Merge(run.kill.PIDs()...)
	for _, pid := range sweep.PIDs() {
		if ctx.Err() != nil {
			return result
		}
		e.signalOne(run, &result, sig, pid)
	}
	return result
}

func (e *Escalator) signalOne(run *escalation, result *PhaseReport, sig platform.Signal, pid int) {
	depth := run.depths[pid]
	if pid == e.self {
		result.Skipped = append(result.Skipped, pid)
		metrics.ObserveSignal(sig.String(), metrics.ResultSkip)
		sendEvent(e.events, Event{Type: EventTypeSignalSkipped, Signal: sig, PID: pid, Depth: depth, Reason: ReasonSelf})
		return
	}

	alive, err := e.platform.Alive(pid)
	if err != nil || !alive {
		reason := ReasonNotAlive
		if err != nil {
			reason = ReasonProbeFailed
		}
		result.Skipped = append(result.Skipped, pid)
		metrics.ObserveSignal(sig.String(), metrics.ResultSkip)
		sendEvent(e.events, Event{Type: EventTypeSignalSkipped, Signal: sig, PID: pid, Depth: depth, Reason: reason, Err: err})
		return
	}

	if err := e.platform.Signal(pid, sig); err != nil {
		result.Failed = append(result.Failed, pid)
		run.errs = multierr.Append(run.errs, err)
		metrics.ObserveSignal(sig.String(), metrics.ResultFailed)
		sendEvent(e.events, Event{Type: EventTypeSignalFailed, Signal: sig, PID: pid, Depth: depth, Err: err})
		return
	}
	result.Signaled = append(result.Signaled, pid)
	metrics.ObserveSignal(sig.String(), metrics.ResultOK)
	sendEvent(e.events, Event{Type: EventTypeSignaled, Signal: sig, PID: pid, Depth: depth})
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
