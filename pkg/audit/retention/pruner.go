package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/config"
)

// Pruner enforces the retention policy on stored audit records.
type Pruner struct {
	storage audit.Storage
	cfg     config.RetentionConfig
	logger  *slog.Logger
}

// NewPruner creates a retention pruner for the given storage backend.
func NewPruner(storage audit.Storage, cfg config.RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pruner{
		storage: storage,
		cfg:     cfg,
		logger:  logger.With("component", "audit.retention"),
	}
}

// Prune deletes records older than the retention period and, when a record
// cap is set, the oldest records over the cap. Returns the total number
// deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.cfg.Days > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.cfg.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("audit pruning completed",
			"deleted_count", totalDeleted,
			"retention_days", p.cfg.Days,
			"max_records", p.cfg.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.Days)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.cfg.Days, err)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, audit.NewRetentionError(p.cfg.Days, err)
	}
	if count <= p.cfg.MaxRecords {
		return 0, nil
	}

	// Records come back newest first, so the record at offset MaxRecords
	// is the newest of the excess. Everything at or before its timestamp
	// goes.
	boundary, err := p.storage.Query(ctx, &audit.Query{
		Limit:  1,
		Offset: int(p.cfg.MaxRecords),
	})
	if err != nil {
		return 0, audit.NewRetentionError(p.cfg.Days, err)
	}
	if len(boundary) == 0 {
		return 0, nil
	}

	cutoff := boundary[0].RequestTime
	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.cfg.Days, err)
	}

	return deleted, nil
}
