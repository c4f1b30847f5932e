package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Paintersrp/procwick/internal/metrics"
	"github.com/Paintersrp/procwick/internal/platform"
)

// DefaultTick is the liveness poll interval used when none is configured.
const DefaultTick = 3 * time.Second

// ErrAlreadyWatching is returned when Watch is invoked more than once on the
// same Monitor.
var ErrAlreadyWatching = errors.New("monitor already started")

// State is the lifecycle position of a Monitor.
type State string

const (
	StateIdle       State = "idle"
	StateWatching   State = "watching"
	StateEscalating State = "escalating"
	StateDone       State = "done"
	StateCanceled   State = "canceled"
)

// Status is a point-in-time view of a Monitor.
type Status struct {
	Dog       int
	Targets   []int
	Tick      time.Duration
	Grace     time.Duration
	State     State
	Checks    int
	LastCheck time.Time
	LastErr   error
	DeathSeen time.Time
	Report    *Report
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	Platform platform.Platform
	Dog      int
	Targets  []int
	Tick     time.Duration
	Grace    time.Duration
	Events   chan<- Event
}

// Monitor polls the guardian process and escalates against the targets once
// it is gone.
type Monitor struct {
	platform  platform.Platform
	escalator *Escalator
	dog       int
	targets   []int
	tick      time.Duration
	events    chan<- Event

	sleep func(context.Context, time.Duration) error

	started  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	mu     sync.RWMutex
	status Status
}

// NewMonitor constructs a Monitor from cfg.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("platform is required")
	}
	if cfg.Dog <= 0 {
		return nil, fmt.Errorf("invalid guardian pid %d", cfg.Dog)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("at least one target is required")
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	targets := append([]int(nil), cfg.Targets...)
	m := &Monitor{
		platform:  cfg.Platform,
		escalator: NewEscalator(cfg.Platform, cfg.Grace, cfg.Events),
		dog:       cfg.Dog,
		targets:   targets,
		tick:      tick,
		events:    cfg.Events,
		sleep:     sleepWithContext,
		done:      make(chan struct{}),
	}
	m.status = Status{
		Dog:     cfg.Dog,
		Targets: targets,
		Tick:    tick,
		Grace:   m.escalator.grace,
		State:   StateIdle,
	}
	return m, nil
}

// Done is closed once Watch returns, whether the escalation completed or the
// context was cancelled.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.status
	st.Targets = append([]int(nil), m.status.Targets...)
	return st
}

// Watch sleeps one tick, probes the guardian and repeats until the guardian
// is reported dead, then runs the escalation exactly once. An inconclusive
// probe counts as alive: a false "dead" reading would kill the targets for
// nothing, a false "alive" only delays detection by a tick.
func (m *Monitor) Watch(ctx context.Context) (Report, error) {
	if !m.started.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyWatching
	}
	defer m.doneOnce.Do(func() { close(m.done) })

	m.setState(StateWatching)
	sendEvent(m.events, Event{
		Type:    EventTypeWatching,
		PID:     m.dog,
		PIDs:    append([]int(nil), m.targets...),
		Message: fmt.Sprintf("tick %s, grace %s", m.tick, m.escalator.grace),
	})

	for {
		if err := m.sleep(ctx, m.tick); err != nil {
			m.setState(StateCanceled)
			sendEvent(m.events, Event{Type: EventTypeCanceled, PID: m.dog, Err: err, Message: "watch stopped"})
			return Report{}, err
		}

		alive, err := m.platform.Alive(m.dog)
		metrics.ObserveLivenessCheck(err)
		if err != nil {
			alive = true
			sendEvent(m.events, Event{Type: EventTypeLivenessError, PID: m.dog, Err: err})
		}
		m.recordCheck(err)
		metrics.SetGuardianAlive(alive)
		if alive {
			continue
		}

		m.mu.Lock()
		m.status.State = StateEscalating
		m.status.DeathSeen = time.Now()
		m.mu.Unlock()
		sendEvent(m.events, Event{Type: EventTypeGuardianDead, PID: m.dog, PIDs: append([]int(nil), m.targets...)})

		report := m.escalator.Escalate(ctx, m.targets)

		m.mu.Lock()
		m.status.Report = &report
		if ctx.Err() != nil {
			m.status.State = StateCanceled
		} else {
			m.status.State = StateDone
		}
		m.mu.Unlock()
		return report, ctx.Err()
	}
}

func (m *Monitor) setState(state State) {
	m.mu.Lock()
	m.status.State = state
	m.mu.Unlock()
}

func (m *Monitor) recordCheck(err error) {
	m.mu.Lock()
	m.status.Checks++
	m.status.LastCheck = time.Now()
	m.status.LastErr = err
	m.mu.Unlock()
}
