package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
	"go-repair-pos/internal/services"
	"go-repair-pos/internal/store"
)

var stamp = time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)

func newJob(t *testing.T) (*BackupJob, *services.Settings, string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(store.NewMemory(), log)
	require.NoError(t, l.Update(context.Background(), func(tx *ledger.Tx) error {
		return tx.PutProducts([]models.Product{{ID: "p1", Name: "Cable", Stock: 4}})
	}))
	settings := services.NewSettings(services.Deps{Ledger: l, Log: log})
	dir := filepath.Join(t.TempDir(), "backups")
	return NewBackupJob(settings, dir, log, func() time.Time { return stamp }), settings, dir
}

func TestBackupWritesImportableSnapshot(t *testing.T) {
	job, _, dir := newJob(t)

	path, err := job.Run(context.Background(), BackupPayload{Reason: "test"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "pos-backup-20261018-230000.json"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	var snap ledger.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	require.Len(t, snap.Inventory, 1)
	require.Equal(t, models.DefaultSettings(), snap.Settings)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestBackupRespectsAutoBackup(t *testing.T) {
	job, settings, dir := newJob(t)
	ctx := context.Background()

	s := models.DefaultSettings()
	s.AutoBackup = false
	_, err := settings.Save(ctx, s)
	require.NoError(t, err)

	path, err := job.Run(ctx, BackupPayload{})
	require.NoError(t, err)
	require.Empty(t, path)
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	path, err = job.Run(ctx, BackupPayload{Force: true})
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestHandleTask(t *testing.T) {
	job, _, dir := newJob(t)

	task, err := NewBackupTask(BackupPayload{Reason: "cron"})
	require.NoError(t, err)
	require.Equal(t, TaskBackupSnapshot, task.Type())
	require.NoError(t, job.Handle(context.Background(), task))
	require.FileExists(t, filepath.Join(dir, "pos-backup-20261018-230000.json"))

	err = job.Handle(context.Background(), asynq.NewTask(TaskBackupSnapshot, []byte("{bad")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientEnqueuesBackup(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	info, err := client.EnqueueBackup(context.Background(), BackupPayload{Reason: "manual", Force: true})
	require.NoError(t, err)
	require.Equal(t, TaskBackupSnapshot, info.Type)
	require.Equal(t, QueueDefault, info.Queue)
}
