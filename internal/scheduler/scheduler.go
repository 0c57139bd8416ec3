package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/pin-forecast/internal/metrics"
)

const probeTimeout = 30 * time.Second

// Prober is a service that can check its upstream with a fixed request.
type Prober interface {
	ProviderName() string
	Probe(ctx context.Context) error
}

// Scheduler periodically probes the configured upstreams and publishes the
// result as the upstream_up gauge.
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       *slog.Logger
	metrics   *metrics.Metrics
	probers   []Prober
	interval  time.Duration
}

// New creates a new Scheduler.
func New(log *slog.Logger, interval time.Duration, m *metrics.Metrics, probers ...Prober) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log,
		metrics:   m,
		probers:   probers,
		interval:  interval,
	}
}

// Start schedules the probe job and starts the underlying scheduler. A
// non-positive interval disables probing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || len(s.probers) == 0 {
		s.log.Info("scheduler: upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes every upstream concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	var wg sync.WaitGroup
	for _, p := range s.probers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()

			up := 1.0
			if err := p.Probe(ctx); err != nil {
				up = 0
				s.log.Warn("scheduler: upstream probe failed",
					"provider", p.ProviderName(),
					"error", err,
				)
			}
			s.metrics.UpstreamUp.WithLabelValues(p.ProviderName()).Set(up)
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
