package audit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pawtrails/backoffice/internal/audit"
	"github.com/pawtrails/backoffice/internal/db/models"
)

type fakeLogStore struct {
	err  error
	logs []*models.AuditLog
}

func (f *fakeLogStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	log.ID = "log-1"
	f.logs = append(f.logs, log)
	return nil
}

type fakeQueueStore struct {
	err     error
	entries []*models.AuditQueueEntry
}

func (f *fakeQueueStore) Enqueue(ctx context.Context, entry *models.AuditQueueEntry) error {
	if f.err != nil {
		return f.err
	}
	entry.ID = "queue-1"
	f.entries = append(f.entries, entry)
	return nil
}

func testEntry() audit.Entry {
	actor := "mod-1"
	reason := "spam"
	return audit.Entry{
		ActorID:    &actor,
		Action:     "soft_delete",
		TargetType: "article",
		TargetID:   "a-1",
		Reason:     &reason,
		Metadata:   map[string]interface{}{"source": "report"},
	}
}

func TestWrite_Direct(t *testing.T) {
	logs := &fakeLogStore{}
	queue := &fakeQueueStore{}
	w := audit.NewWriter(logs, queue, nil)

	res := w.Write(context.Background(), testEntry())
	if !res.Success {
		t.Fatalf("Success = false, err = %v", res.Err)
	}
	if res.Queued {
		t.Error("Queued = true, want false")
	}
	if res.LogID != "log-1" {
		t.Errorf("LogID = %q, want log-1", res.LogID)
	}
	if len(queue.entries) != 0 {
		t.Errorf("queue received %d entries, want 0", len(queue.entries))
	}
}

func TestWrite_FallsBackToQueue(t *testing.T) {
	logs := &fakeLogStore{err: errors.New("connection reset")}
	queue := &fakeQueueStore{}
	w := audit.NewWriter(logs, queue, nil)

	res := w.Write(context.Background(), testEntry())
	if !res.Success {
		t.Fatalf("Success = false, err = %v", res.Err)
	}
	if !res.Queued {
		t.Error("Queued = false, want true")
	}
	if res.LogID != "queue-1" {
		t.Errorf("LogID = %q, want queue-1", res.LogID)
	}
	if len(queue.entries) != 1 {
		t.Fatalf("queue received %d entries, want 1", len(queue.entries))
	}
	if queue.entries[0].Action != "soft_delete" {
		t.Errorf("queued action = %q, want soft_delete", queue.entries[0].Action)
	}
}

func TestWrite_BothFail(t *testing.T) {
	logs := &fakeLogStore{err: errors.New("log down")}
	queue := &fakeQueueStore{err: errors.New("queue down")}
	w := audit.NewWriter(logs, queue, nil)

	res := w.Write(context.Background(), testEntry())
	if res.Success {
		t.Fatal("Success = true, want false")
	}
	if res.Err == nil {
		t.Fatal("Err = nil, want combined error")
	}
	msg := res.Err.Error()
	if !strings.HasPrefix(msg, "Both audit log and queue failed:") {
		t.Errorf("error = %q, want 'Both audit log and queue failed:' prefix", msg)
	}
	if !strings.Contains(msg, "log down") || !strings.Contains(msg, "queue down") {
		t.Errorf("error %q should name both underlying failures", msg)
	}
}

type fakeShipper struct {
	err     error
	records []*audit.Record
}

func (f *fakeShipper) Ship(ctx context.Context, rec *audit.Record) error {
	f.records = append(f.records, rec)
	return f.err
}
func (f *fakeShipper) Close() error { return nil }

func TestWrite_ShipsOnDirectWrite(t *testing.T) {
	shipper := &fakeShipper{}
	w := audit.NewWriter(&fakeLogStore{}, &fakeQueueStore{}, shipper)

	w.Write(context.Background(), testEntry())
	if len(shipper.records) != 1 {
		t.Fatalf("shipped %d records, want 1", len(shipper.records))
	}
	if shipper.records[0].ActorID != "mod-1" {
		t.Errorf("shipped ActorID = %q, want mod-1", shipper.records[0].ActorID)
	}
}

func TestWrite_ShipperErrorDoesNotAffectResult(t *testing.T) {
	shipper := &fakeShipper{err: errors.New("webhook 500")}
	w := audit.NewWriter(&fakeLogStore{}, &fakeQueueStore{}, shipper)

	res := w.Write(context.Background(), testEntry())
	if !res.Success {
		t.Errorf("Success = false, shipping failures must not affect the result")
	}
}
