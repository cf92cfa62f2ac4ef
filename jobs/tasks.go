// Package jobs holds the background reconciliation work: ledger balance
// drift repair, batch stock integrity scanning, and the nightly backup
// snapshot, all running over asynq.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerDriftScan recomputes counterparty balances from the
	// transaction log and repairs the stored value on divergence.
	TaskLedgerDriftScan = "ledger:drift_scan"
	// TaskStockIntegrityScan compares batch stock against the sales log.
	// Report-only: purchase deletions keep stock by policy, so the scan
	// cannot distinguish drift from policy.
	TaskStockIntegrityScan = "stock:integrity_scan"
	// TaskBackupSnapshot writes the nightly JSON snapshot to disk.
	TaskBackupSnapshot = "backup:snapshot"
)

// ScanPayload carries scheduling metadata shared by the scan tasks.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerDriftScanTask constructs the drift-scan task.
func NewLedgerDriftScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerDriftScan, body, asynq.Queue(QueueDefault)), nil
}

// NewStockIntegrityScanTask constructs the stock-scan task.
func NewStockIntegrityScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockIntegrityScan, body, asynq.Queue(QueueDefault)), nil
}

// NewBackupSnapshotTask constructs the snapshot task.
func NewBackupSnapshotTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackupSnapshot, body, asynq.Queue(QueueDefault)), nil
}
