package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/ports"
)

// WatchDeps wires the watch-mode driver with the collection use case.
type WatchDeps struct {
	Driver     ports.Scheduler
	Collector  *Collector
	Repository ports.ResultRepository
	Notifier   ports.Notifier
	Targets    []domain.Target
	Logger     *slog.Logger
}

// Scheduler re-collects a fixed set of targets on every tick, persisting
// each result and publishing its verdict.
type Scheduler struct {
	driver     ports.Scheduler
	collector  *Collector
	repository ports.ResultRepository
	notifier   ports.Notifier
	targets    []domain.Target
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring collections.
func NewScheduler(deps WatchDeps) *Scheduler {
	return &Scheduler{
		driver:     deps.Driver,
		collector:  deps.Collector,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		targets:    deps.Targets,
		logger:     deps.Logger,
	}
}

// Start registers the watch job with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.collector == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.RunOnce(ctx, trigger); err != nil && s.logger != nil {
			s.logger.Error("watch tick failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// RunOnce collects every target sequentially. A persistence or notification
// failure for one target does not skip the rest; the first such error is
// returned after all targets ran.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) error {
	var firstErr error
	for _, target := range s.targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result := s.collector.Collect(ctx, target)
		if err := s.deliver(ctx, result); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deliver %s: %w", target.Company, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("watch tick finished", "trigger", trigger, "targets", len(s.targets))
	}
	return firstErr
}

func (s *Scheduler) deliver(ctx context.Context, result domain.CollectionResult) error {
	if s.repository != nil {
		if err := s.repository.SaveResult(ctx, result); err != nil {
			return fmt.Errorf("persist run %s: %w", result.RunID, err)
		}
	}

	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.PublishVerdict(ctx, BuildVerdictMessage(result)); err != nil {
		return fmt.Errorf("publish verdict %s: %w", result.RunID, err)
	}
	return nil
}

// BuildVerdictMessage renders a short Markdown report of a finished run.
func BuildVerdictMessage(result domain.CollectionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s* (%s): %s\n", result.Company, result.Domain, result.Status)
	fmt.Fprintf(&b, "Documents: %d, attempts %d/%d\n", result.Count, result.Attempts.Current, result.Attempts.Max)
	fmt.Fprintf(&b, "Primary: %d, recent: %d, avg reliability %.2f\n",
		result.Stats.PrimaryCount,
		result.Stats.RecentCount,
		result.Stats.AverageReliability)

	if len(result.Sources) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(result.Sources, ", "))
	}
	for _, reason := range result.Gate.Reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	if result.Error != nil {
		fmt.Fprintf(&b, "Error: %s\n", *result.Error)
	}

	return b.String()
}
