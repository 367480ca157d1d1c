//go:build integration

package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	"docketdesk/contexts/public-comment/moderation-service/ports"
	"docketdesk/internal/platform/db/dbtest"
)

func seededRepository(t *testing.T) (*Repository, time.Time) {
	t.Helper()
	pg := dbtest.StartPostgres(t, Models()...)
	repo := NewRepository(pg.DB, nil)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	_, err := repo.CreateDocket(ctx, entities.Docket{
		DocketID: "d-1", TenantID: "tenant-a", Title: "Riverside rezoning",
		Reference: "RZ-2026-04", Status: entities.DocketStatusOpen,
		CreatedBy: "owner-1", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create docket: %v", err)
	}
	for _, id := range []string{"c-1", "c-2"} {
		_, err := repo.CreateComment(ctx, entities.Comment{
			CommentID: id, TenantID: "tenant-a", DocketID: "d-1",
			CommenterName: "Resident", Content: "comment " + id,
			Status: entities.CommentStatusPending, SubmittedAt: now, UpdatedAt: now,
			Attachments: []entities.Attachment{{
				AttachmentID: id + "-a", CommentID: id, FileName: "note.txt",
				ContentType: "text/plain", SizeBytes: 4, StoragePath: "tenant-a/attachments/" + id,
			}},
		})
		if err != nil {
			t.Fatalf("create comment %s: %v", id, err)
		}
	}
	return repo, now
}

func TestDocketReferenceIsUniquePerTenant(t *testing.T) {
	repo, now := seededRepository(t)
	ctx := context.Background()

	_, err := repo.CreateDocket(ctx, entities.Docket{
		DocketID: "d-2", TenantID: "tenant-a", Reference: "RZ-2026-04",
		Status: entities.DocketStatusOpen, CreatedAt: now,
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = repo.CreateDocket(ctx, entities.Docket{
		DocketID: "d-3", TenantID: "tenant-b", Reference: "RZ-2026-04",
		Status: entities.DocketStatusOpen, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("same reference in another tenant: %v", err)
	}
}

func TestBulkTransitionIsAllOrNothing(t *testing.T) {
	repo, now := seededRepository(t)
	ctx := context.Background()

	transitions := []ports.Transition{
		{TenantID: "tenant-a", CommentID: "c-1", Status: entities.CommentStatusApproved, UpdatedBy: "mod-1", UpdatedAt: now},
		{TenantID: "tenant-a", CommentID: "missing", Status: entities.CommentStatusApproved, UpdatedBy: "mod-1", UpdatedAt: now},
	}
	if _, err := repo.ApplyBulkTransition(ctx, transitions); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	comment, err := repo.GetComment(ctx, "tenant-a", "c-1")
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}
	if comment.Status != entities.CommentStatusPending {
		t.Fatalf("partial bulk update leaked: %s", comment.Status)
	}
	if len(comment.Attachments) != 1 {
		t.Fatalf("attachments not loaded: %+v", comment.Attachments)
	}

	entry := entities.LogEntry{
		EntryID: "log-1", TenantID: "tenant-a", CommentID: "c-2",
		Action: entities.ActionReject, ActorID: "mod-1", Reason: "off topic",
		PreviousStatus: entities.CommentStatusPending, ResultingStatus: entities.CommentStatusRejected,
		CreatedAt: now,
	}
	updated, err := repo.ApplyBulkTransition(ctx, []ports.Transition{
		{TenantID: "tenant-a", CommentID: "c-1", Status: entities.CommentStatusApproved, UpdatedBy: "mod-1", UpdatedAt: now},
		{TenantID: "tenant-a", CommentID: "c-2", Status: entities.CommentStatusRejected, UpdatedBy: "mod-1", UpdatedAt: now, LogEntry: &entry},
	})
	if err != nil {
		t.Fatalf("bulk transition: %v", err)
	}
	if len(updated) != 2 || updated[0].CommentID != "c-1" || updated[1].Status != entities.CommentStatusRejected {
		t.Fatalf("unexpected result order or status: %+v", updated)
	}
	log, err := repo.ListLog(ctx, "tenant-a", "c-2")
	if err != nil || len(log) != 1 || log[0].Reason != "off topic" {
		t.Fatalf("expected one log entry, got %+v err=%v", log, err)
	}
	if log, _ := repo.ListLog(ctx, "tenant-a", "c-1"); len(log) != 0 {
		t.Fatalf("reasonless transition logged: %+v", log)
	}
}

func TestIdempotencyRecordsExpire(t *testing.T) {
	repo, now := seededRepository(t)
	ctx := context.Background()

	record := ports.IdempotencyRecord{Key: "tenant-a:mod-1:key-1", RequestHash: "h1", Payload: []byte(`{"ok":true}`), ExpiresAt: now.Add(time.Hour)}
	if err := repo.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, found, err := repo.Get(ctx, record.Key, now)
	if err != nil || !found || got.RequestHash != "h1" || string(got.Payload) != `{"ok":true}` {
		t.Fatalf("get: found=%v record=%+v err=%v", found, got, err)
	}
	if _, found, _ := repo.Get(ctx, record.Key, now.Add(2*time.Hour)); found {
		t.Fatal("expired record returned")
	}

	record.RequestHash = "h2"
	record.ExpiresAt = now.Add(3 * time.Hour)
	if err := repo.Put(ctx, record); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = repo.Get(ctx, record.Key, now.Add(2*time.Hour))
	if got.RequestHash != "h2" {
		t.Fatalf("record not replaced: %+v", got)
	}
}
