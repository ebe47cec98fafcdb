package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

func TestHandleAuditMessage(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	w := NewAuditWorker(repo)
	ctx := context.Background()

	msg := &amqp.AuditMessage{
		Event:      amqp.EventLoginSuccess,
		UserID:     "user-1",
		ResourceID: "",
		Timestamp:  time.Now().UTC(),
	}
	if err := w.HandleAuditMessage(ctx, msg); err != nil {
		t.Fatalf("HandleAuditMessage: %v", err)
	}
	if err := w.HandleAuditMessage(ctx, msg); err != nil {
		t.Fatalf("HandleAuditMessage (second): %v", err)
	}

	n, err := repo.CountAuditEvents(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountAuditEvents: %v", err)
	}
	if n != 2 {
		t.Errorf("CountAuditEvents = %d, want 2", n)
	}
}
