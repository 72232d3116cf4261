package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sbekbolat/maglink/internal/metrics"
	"github.com/sbekbolat/maglink/internal/repository"
)

// Pruner removes audit rows older than the retention window. It runs on a
// cron schedule well away from the request path; the login flow itself has
// no background work.
type Pruner struct {
	audit     repository.AuditRepository
	retention time.Duration
	logger    *slog.Logger
	cron      *cron.Cron
}

func NewPruner(audit repository.AuditRepository, retention time.Duration, logger *slog.Logger) *Pruner {
	return &Pruner{
		audit:     audit,
		retention: retention,
		logger:    logger.With("component", "pruner"),
	}
}

// Start schedules an hourly prune. It returns immediately.
func (p *Pruner) Start() error {
	p.cron = cron.New()
	if _, err := p.cron.AddFunc("@hourly", p.run); err != nil {
		return err
	}
	p.cron.Start()
	p.logger.Info("audit pruner started", "retention", p.retention)
	return nil
}

// Stop waits for an in-flight prune to finish.
func (p *Pruner) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

func (p *Pruner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-p.retention)
	n, err := p.audit.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("audit prune", "error", err)
		return
	}
	if n > 0 {
		metrics.AuditPrunedTotal.Add(float64(n))
		p.logger.Info("audit rows pruned", "count", n, "cutoff", cutoff)
	}
}
