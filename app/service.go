// Package app assembles a dashboard session from configuration: the dataset
// summary, the forecast engine, telemetry sinks and alert delivery.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/homeenergy/api/dashboard"
	"github.com/kilianp07/homeenergy/config"
	"github.com/kilianp07/homeenergy/core/alert"
	"github.com/kilianp07/homeenergy/core/forecast"
	"github.com/kilianp07/homeenergy/core/history"
	coremetrics "github.com/kilianp07/homeenergy/core/metrics"
	coremon "github.com/kilianp07/homeenergy/core/monitoring"
	_ "github.com/kilianp07/homeenergy/infra/history"
	"github.com/kilianp07/homeenergy/infra/logger"
	"github.com/kilianp07/homeenergy/infra/metrics"
	_ "github.com/kilianp07/homeenergy/infra/models"
	"github.com/kilianp07/homeenergy/infra/monitoring"
	"github.com/kilianp07/homeenergy/infra/mqtt"
	"github.com/kilianp07/homeenergy/internal/eventbus"
)

const busBuffer = 64

// Service holds the state of one dashboard session. Summary and Engine are
// immutable after New and shared by every request.
type Service struct {
	Summary *history.Summary
	// Engine is nil when the model could not be loaded; ModelErr tells why.
	Engine   *forecast.Engine
	ModelErr error
	Dataset  string

	cfg       *config.Config
	dashboard *dashboard.Server
	bus       *eventbus.Bus[forecast.Event]
	sink      coremetrics.MetricsSink
	notifier  alert.Notifier
	closers   []io.Closer
	log       logger.Logger

	ready chan struct{}
	mu    sync.Mutex
	addr  net.Addr
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	notifier   alert.Notifier
	skipAlerts bool
}

// WithNotifier replaces the configured alert transport.
func WithNotifier(n alert.Notifier) Option {
	return func(o *serviceOptions) { o.notifier = n }
}

// WithoutAlerts disables alert delivery regardless of configuration.
func WithoutAlerts() Option {
	return func(o *serviceOptions) { o.skipAlerts = true }
}

// New loads the dataset and the model and wires telemetry. A missing dataset
// or model is not an error: the session degrades to the fallback baseline or
// to a dashboard without predictions.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.New("service")
	s := &Service{cfg: cfg, log: log, Dataset: cfg.History.Path, ready: make(chan struct{})}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	src, err := history.NewSource(cfg.History.ModuleConfig())
	if err != nil {
		return nil, fmt.Errorf("history source: %w", err)
	}
	if c, ok := src.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	summary, err := history.Load(ctx, src, logger.New("history"))
	if err != nil {
		s.closeAll()
		return nil, err
	}
	s.Summary = summary
	baseline := history.BaselineOf(summary)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		s.closeAll()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	s.sink = sink
	if c, ok := sink.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	if rec, ok := sink.(coremetrics.HistoryRecorder); ok {
		ev := coremetrics.HistoryEvent{Source: src.Name(), Available: summary != nil, Baseline: baseline, Time: time.Now()}
		if summary != nil {
			ev.Records = summary.Count
		}
		if sc, ok := src.(history.SkipCounter); ok {
			ev.Skipped = sc.Skipped()
		}
		if err := rec.RecordHistory(ev); err != nil {
			log.Warnf("record history: %v", err)
		}
	}

	s.bus = eventbus.New[forecast.Event](busBuffer)
	loaded, err := forecast.LoadModel(cfg.Model.Path)
	if err != nil {
		s.ModelErr = err
		log.Errorf("engine unavailable (halted): %v", err)
		if !errors.Is(err, forecast.ErrModelNotFound) {
			coremon.CaptureException(err, map[string]string{"module": "forecast", "model": cfg.Model.Path})
		}
	} else {
		s.Engine = forecast.NewEngine(loaded, baseline, forecast.WithPublisher(s.bus))
		log.Infow("model loaded", map[string]any{"kind": loaded.Kind, "path": loaded.Path, "baseline": baseline})
	}

	switch {
	case o.notifier != nil:
		s.notifier = o.notifier
	case cfg.Alerts.Enabled && !o.skipAlerts:
		pub, err := mqtt.NewAlertPublisher(cfg.Alerts.MQTT, cfg.Alerts.Topic, cfg.Alerts.QoS)
		if err != nil {
			s.closeAll()
			return nil, fmt.Errorf("alert publisher: %w", err)
		}
		s.notifier = pub
		s.closers = append(s.closers, pub)
	}

	dopts := dashboard.Options{
		Engine:    s.Engine,
		ModelPath: cfg.Model.Path,
		ModelErr:  s.ModelErr,
		Summary:   summary,
		Dataset:   s.Dataset,
		Logger:    logger.New("dashboard"),
	}
	if cfg.Metrics.HasSink("prometheus") {
		dopts.Metrics = metrics.Handler()
	}
	s.dashboard = dashboard.New(dopts)
	return s, nil
}

// Baseline returns the classification reference in use.
func (s *Service) Baseline() float64 { return history.BaselineOf(s.Summary) }

// Handler returns the dashboard HTTP handler.
func (s *Service) Handler() http.Handler { return s.dashboard }

// Predict runs one forecast outside of HTTP.
func (s *Service) Predict(ctx context.Context, in forecast.Input) (forecast.Result, error) {
	if s.Engine == nil {
		return forecast.Result{}, fmt.Errorf("%w: %w", forecast.ErrEngineUnavailable, s.ModelErr)
	}
	return s.Engine.Predict(ctx, in)
}

// Ready is closed once the dashboard listener is open.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Addr returns the dashboard listen address once Ready is closed.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run serves the dashboard and dispatches telemetry until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := []<-chan struct{}{metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))}
	if s.notifier != nil {
		done = append(done, alert.Start(ctx, s.bus, s.notifier, logger.New("alerts")))
	}
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	close(s.ready)

	srv := &http.Server{Handler: s.dashboard, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Infof("dashboard listening on http://%s", ln.Addr())

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
		cancel()
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("dashboard shutdown: %v", err)
	}
	for _, d := range done {
		<-d
	}
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bus != nil {
		s.bus.Close()
	}
	err := s.closeAll()
	coremon.Flush(2 * time.Second)
	return err
}

func (s *Service) closeAll() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
