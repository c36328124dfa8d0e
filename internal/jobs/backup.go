package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"go-repair-pos/internal/services"
)

// BackupJob snapshots the ledger to a JSON file in the import format.
type BackupJob struct {
	settings *services.Settings
	dir      string
	logger   *slog.Logger
	now      func() time.Time
}

func NewBackupJob(settings *services.Settings, dir string, logger *slog.Logger, now func() time.Time) *BackupJob {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &BackupJob{settings: settings, dir: dir, logger: logger, now: now}
}

// Handle is the asynq handler for TaskBackupSnapshot.
func (j *BackupJob) Handle(ctx context.Context, task *asynq.Task) error {
	var p BackupPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("backup payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, p)
	return err
}

// Run writes one backup file and returns its path. It returns an empty path
// when autoBackup is off and the run was not forced.
func (j *BackupJob) Run(ctx context.Context, p BackupPayload) (string, error) {
	settings, err := j.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	if !settings.AutoBackup && !p.Force {
		j.logger.Info("backup skipped, autoBackup is off", slog.String("job", TaskBackupSnapshot))
		return "", nil
	}

	snap, err := j.settings.Export(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(j.dir, 0o750); err != nil {
		return "", err
	}
	name := fmt.Sprintf("pos-backup-%s.json", j.now().UTC().Format("20060102-150405"))
	path := filepath.Join(j.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o640); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	j.logger.Info("backup written",
		slog.String("job", TaskBackupSnapshot),
		slog.String("path", path),
		slog.String("reason", p.Reason),
		slog.Int("bytes", len(body)))
	return path, nil
}
