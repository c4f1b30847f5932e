package cli

import (
	stdcontext "context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/procwick/internal/api"
	apihttp "github.com/Paintersrp/procwick/internal/api/http"
	"github.com/Paintersrp/procwick/internal/cliutil"
	"github.com/Paintersrp/procwick/internal/config"
	"github.com/Paintersrp/procwick/internal/engine"
)

var newStatusServer = apihttp.NewServer

const eventBuffer = 64

type watchResult struct {
	report engine.Report
	err    error
}

func runWatch(cmd *cobra.Command, cfg *config.Config) error {
	logger, closer, err := cliutil.NewLogger(cliutil.LogOptions{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Format:  cfg.Log.Format,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	events := make(chan engine.Event, eventBuffer)
	monitor, err := engine.NewMonitor(engine.MonitorConfig{
		Platform: newPlatform(),
		Dog:      cfg.Dog,
		Targets:  cfg.Targets,
		Tick:     cfg.Tick.Duration,
		Grace:    cfg.VengeanceDelay.Duration,
		Events:   events,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = stdcontext.Background()
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for evt := range events {
			cliutil.LogEvent(logger, evt)
		}
	}()

	stopServer := startStatusServer(ctx, logger, cfg.MetricsAddr, monitor)

	result := make(chan watchResult, 1)
	go func() {
		report, err := monitor.Watch(ctx)
		result <- watchResult{report: report, err: err}
	}()

	<-monitor.Done()
	res := <-result
	close(events)
	<-printed
	stopServer()

	if res.err != nil {
		if errors.Is(res.err, stdcontext.Canceled) {
			return nil
		}
		return res.err
	}
	summarize(logger, res.report)
	return nil
}

// startStatusServer serves metrics and status when addr is set. Failing to
// bind is logged and never stops the watch.
func startStatusServer(ctx stdcontext.Context, logger log.FieldLogger, addr string, monitor *engine.Monitor) func() {
	if addr == "" {
		return func() {}
	}
	server, err := newStatusServer(apihttp.Config{Addr: addr, Status: api.MonitorStatus{Monitor: monitor}})
	if err != nil {
		logger.WithError(err).Warn("status server disabled")
		return func() {}
	}

	serverCtx, cancel := stdcontext.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(serverCtx)
	}()

	ready := time.NewTimer(200 * time.Millisecond)
	defer ready.Stop()
	select {
	case err := <-errCh:
		cancel()
		if err != nil {
			logger.WithError(err).WithField("addr", addr).Warn("status server failed to start")
		}
		return func() {}
	case <-ready.C:
	case <-ctx.Done():
	}
	logger.WithField("addr", server.Addr()).Info("status server listening")

	return func() {
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("status server stopped")
		}
	}
}

func summarize(logger log.FieldLogger, report engine.Report) {
	entry := logger.WithFields(log.Fields{
		"targets":   report.Targets,
		"kill_list": report.KillList,
		"graceful":  len(report.Graceful.Signaled) + len(report.Graceful.GroupSignaled),
		"forced":    len(report.Forced.Signaled) + len(report.Forced.GroupSignaled),
		"failed":    len(report.Graceful.Failed) + len(report.Forced.Failed),
		"elapsed":   report.Finished.Sub(report.Started).String(),
	})
	if report.Err != nil {
		entry = entry.WithField("notes", report.Err.Error())
	}
	entry.Info("watch finished")
}
