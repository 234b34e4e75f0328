package backup

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ybenhayun/shuk/internal/database"
	"github.com/ybenhayun/shuk/internal/model"
	"github.com/ybenhayun/shuk/internal/store"
)

type fakeS3 struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
}

func (f *fakeS3) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, *input.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func setupManager(t *testing.T) (*Manager, *fakeS3, *store.BackupStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "shuk.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backups := store.NewBackupStore(db)
	fake := &fakeS3{}
	m := NewManager(Config{
		S3:     S3Config{Bucket: "test-bucket", AccessKey: "k", SecretKey: "s"},
		DBPath: dbPath,
	}, db, backups, store.NewSettingsStore(db), nil, slog.Default())
	m.client = fake
	return m, fake, backups
}

func TestRunNowUploadsAndRecords(t *testing.T) {
	m, fake, backups := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if len(fake.puts) != 1 {
		t.Fatalf("uploaded %d objects, want 1", len(fake.puts))
	}

	record, err := backups.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("record status = %q, want completed", record.Status)
	}
	if record.SizeBytes == 0 {
		t.Error("record size not set")
	}
	if record.S3Key != fake.puts[0] {
		t.Errorf("record key %q != uploaded key %q", record.S3Key, fake.puts[0])
	}

	status := m.Status()
	if status.State != StateIdle || status.LastBackup == nil {
		t.Errorf("manager status = %+v, want idle with last backup set", status)
	}
}

func TestRunNowUnconfigured(t *testing.T) {
	m, _, _ := setupManager(t)
	m.client = nil

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Error("RunNow() without S3 client should fail")
	}
}

func TestCleanupDeletesOldObjects(t *testing.T) {
	m, fake, backups := setupManager(t)

	if _, err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}

	// Backdate the record past the retention window.
	if _, err := m.db.Exec(`UPDATE backups SET created_at = ?`, time.Now().UTC().AddDate(0, 0, -60)); err != nil {
		t.Fatalf("backdate record: %v", err)
	}

	if err := m.Cleanup(context.Background(), 30); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if len(fake.deletes) != 1 {
		t.Fatalf("deleted %d objects, want 1", len(fake.deletes))
	}

	keys, err := backups.DeleteOlderThan(time.Now().UTC())
	if err != nil {
		t.Fatalf("list remaining: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("%d stale records remain after cleanup", len(keys))
	}
}
