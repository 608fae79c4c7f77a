// internal/db/audit_db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"restaurant-admin/internal/dashboard"
)

// AuditLog пишет завершённые операции панели в operation_log.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(conn *sql.DB) *AuditLog {
	return &AuditLog{db: conn}
}

// OperationRecord — одна строка operation_log.
type OperationRecord struct {
	ID          string
	DashboardID string
	Kind        string
	Target      string
	Status      string
	StepsDone   int
	StepsTotal  int
	FailedStep  string
	Error       string
	Attempts    int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// RecordOperation делает upsert по id операции: повтор остаётся одной строкой.
func (a *AuditLog) RecordOperation(ctx context.Context, dashboardID string, op dashboard.Operation) error {
	if a == nil || a.db == nil {
		return errors.New("audit log: database not initialised")
	}
	query := `
	INSERT INTO operation_log (id, dashboard_id, kind, target, status, steps_done, steps_total,
	                           failed_step, error_text, attempts, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		status = VALUES(status),
		steps_done = VALUES(steps_done),
		failed_step = VALUES(failed_step),
		error_text = VALUES(error_text),
		attempts = VALUES(attempts),
		finished_at = VALUES(finished_at);
	`
	failedStep := op.FailedStep()
	_, err := a.db.ExecContext(ctx, query,
		op.ID,
		dashboardID,
		string(op.Kind),
		op.Target,
		string(op.Status),
		op.Done,
		len(op.Steps),
		sql.NullString{String: failedStep, Valid: failedStep != ""},
		sql.NullString{String: op.Err, Valid: op.Err != ""},
		op.Attempts,
		op.StartedAt.UTC(),
		op.UpdatedAt.UTC(),
	)
	if err != nil {
		slog.Error("Не удалось записать журнал операций", "operation", op.ID, "kind", op.Kind, "error", err)
		return fmt.Errorf("audit log: insert operation %s: %w", op.ID, err)
	}
	return nil
}

// RecentOperations возвращает строки от новых к старым.
func (a *AuditLog) RecentOperations(ctx context.Context, limit int) ([]OperationRecord, error) {
	if a == nil || a.db == nil {
		return nil, errors.New("audit log: database not initialised")
	}
	query := `SELECT id, dashboard_id, kind, target, status, steps_done, steps_total,
	                 failed_step, error_text, attempts, started_at, finished_at
	          FROM operation_log ORDER BY finished_at DESC LIMIT ?`
	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("audit log: query: %w", err)
	}
	defer rows.Close()

	var out []OperationRecord
	for rows.Next() {
		var r OperationRecord
		var failedStep, errText sql.NullString
		if err := rows.Scan(&r.ID, &r.DashboardID, &r.Kind, &r.Target, &r.Status, &r.StepsDone, &r.StepsTotal,
			&failedStep, &errText, &r.Attempts, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("audit log: scan: %w", err)
		}
		r.FailedStep = failedStep.String
		r.Error = errText.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit log: iterate: %w", err)
	}
	return out, nil
}

// PruneOperations удаляет строки, завершённые до cutoff.
func (a *AuditLog) PruneOperations(ctx context.Context, cutoff time.Time) (int64, error) {
	if a == nil || a.db == nil {
		return 0, errors.New("audit log: database not initialised")
	}
	res, err := a.db.ExecContext(ctx, `DELETE FROM operation_log WHERE finished_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("audit log: prune: %w", err)
	}
	return res.RowsAffected()
}

// StartAuditCleanupScheduler раз в interval удаляет строки старше retention.
func StartAuditCleanupScheduler(ctx context.Context, audit *AuditLog, interval, retention time.Duration) {
	slog.Info("Планировщик очистки журнала операций запущен", "interval", interval.String(), "retention", retention.String())
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := audit.PruneOperations(ctx, time.Now().Add(-retention))
				if err != nil {
					slog.Error("Очистка журнала операций не удалась", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("Удалены старые строки журнала операций", "count", n)
				}
			}
		}
	}()
}
