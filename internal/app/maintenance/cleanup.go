package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/monitoring"
	"github.com/charlesng35/chattu/pkg/logger"
)

const (
	JobPresenceReconcile = "presence_reconcile"
	JobMessageRetention  = "message_retention"

	defaultPresenceSpec  = "@every 1m"
	defaultRetentionSpec = "@daily"
)

// PresenceReconciler drops online ids that no longer have a live connection.
// The hub keeps presence consistent on its own; the job only reports drift.
type PresenceReconciler interface {
	ReconcilePresence() []string
}

// MessagePruner deletes stored messages created before a cutoff.
type MessagePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner coordinates background maintenance: presence reconciliation and
// message retention.
type Cleaner struct {
	presence  PresenceReconciler
	pruner    MessagePruner
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger

	presenceSchedule  string
	retentionSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention cutoffs.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetention enables message pruning older than retention using pruner.
func WithRetention(pruner MessagePruner, retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if pruner != nil && retention > 0 {
			cleaner.pruner = pruner
			cleaner.retention = retention
		}
	}
}

// WithPresenceSchedule overrides the cron specification for presence reconciliation.
func WithPresenceSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.presenceSchedule = spec
		}
	}
}

// WithRetentionSchedule overrides the cron specification for message retention.
func WithRetentionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.retentionSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil presence reconciler skips that job;
// retention only runs when configured through WithRetention.
func NewCleaner(presence PresenceReconciler, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		presence:          presence,
		now:               time.Now,
		presenceSchedule:  defaultPresenceSpec,
		retentionSchedule: defaultRetentionSpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the enabled jobs and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.presence == nil && c.pruner == nil {
		return nil
	}

	if c.presence != nil {
		if _, err := c.cron.AddFunc(c.presenceSchedule, func() {
			_ = c.reconcilePresence()
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobPresenceReconcile, err)
		}
	}

	if c.pruner != nil {
		if _, err := c.cron.AddFunc(c.retentionSchedule, func() {
			_ = c.pruneMessages(context.Background())
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobMessageRetention, err)
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every configured job sequentially and joins their errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.presence != nil {
		errs = multierr.Append(errs, c.reconcilePresence())
	}
	if c.pruner != nil {
		errs = multierr.Append(errs, c.pruneMessages(ctx))
	}
	return errs
}

func (c *Cleaner) reconcilePresence() error {
	start := time.Now()
	dropped := c.presence.ReconcilePresence()
	if len(dropped) > 0 {
		c.log.Warn("pruned stale online users", zap.Strings("user_ids", dropped))
	}
	monitoring.RecordMaintenanceRun(JobPresenceReconcile, "success", "", time.Since(start))
	return nil
}

func (c *Cleaner) pruneMessages(ctx context.Context) error {
	start := time.Now()
	cutoff := c.now().Add(-c.retention)
	removed, err := c.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		err = fmt.Errorf("maintenance: %s: %w", JobMessageRetention, err)
		c.log.Warn("message retention failed", zap.Error(err))
		monitoring.RecordMaintenanceRun(JobMessageRetention, "failure", err.Error(), time.Since(start))
		return err
	}
	if removed > 0 {
		c.log.Info("pruned expired messages", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	}
	monitoring.RecordMaintenanceRun(JobMessageRetention, "success", "", time.Since(start))
	return nil
}
