package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	// TaskBackupSnapshot writes the full ledger export to the backup directory.
	TaskBackupSnapshot = "backup:snapshot"
)

// BackupPayload describes why a backup was requested.
type BackupPayload struct {
	Reason string `json:"reason"`
	// Force writes the backup even when autoBackup is off.
	Force bool `json:"force"`
}

func NewBackupTask(p BackupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBackupSnapshot, body, asynq.Queue(QueueDefault)), nil
}
