//go:build integration

package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"
	"docketdesk/internal/platform/db/dbtest"
)

// commentTables mirrors the columns this adapter reads from tables owned by
// the moderation service.
var commentTables = []string{`CREATE TABLE dockets (
	docket_id TEXT PRIMARY KEY, tenant_id TEXT, title TEXT, reference TEXT,
	status TEXT, opens_at TIMESTAMPTZ, closes_at TIMESTAMPTZ, created_by TEXT, created_at TIMESTAMPTZ
)`, `CREATE TABLE comments (
	comment_id TEXT PRIMARY KEY, tenant_id TEXT, docket_id TEXT, commenter_name TEXT,
	commenter_email TEXT, commenter_organization TEXT, content TEXT, status TEXT,
	submitted_at TIMESTAMPTZ, updated_at TIMESTAMPTZ, updated_by TEXT
)`, `CREATE TABLE comment_attachments (
	attachment_id TEXT PRIMARY KEY, comment_id TEXT, file_name TEXT, content_type TEXT,
	size_bytes BIGINT, storage_path TEXT
)`}

func newRepository(t *testing.T) *Repository {
	t.Helper()
	pg := dbtest.StartPostgres(t, Models()...)
	for _, stmt := range commentTables {
		if err := pg.DB.Exec(stmt).Error; err != nil {
			t.Fatalf("create comment tables: %v", err)
		}
	}
	return NewRepository(pg.DB, nil)
}

func pendingJob(id string, tenant string, created time.Time) entities.Job {
	return entities.Job{
		JobID:     id,
		TenantID:  tenant,
		Type:      entities.JobTypeTabular,
		Filter:    entities.FilterSpec{Statuses: []string{"approved"}, ContentContains: "river"},
		Status:    entities.JobStatusPending,
		CreatedBy: "owner-1",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestJobLifecycleAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)
	now := time.Date(2026, 5, 6, 9, 0, 0, 0, time.UTC)

	created, err := repo.CreateJob(ctx, pendingJob("job-1", "tenant-a", now))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Filter.ContentContains != "river" {
		t.Fatalf("filter not round-tripped: %+v", created.Filter)
	}
	if _, err := repo.GetJob(ctx, "tenant-b", "job-1"); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected cross-tenant not found, got %v", err)
	}

	_, claimed, err := repo.ClaimJob(ctx, "job-1", now)
	if err != nil || !claimed {
		t.Fatalf("first claim: claimed=%v err=%v", claimed, err)
	}
	if _, claimed, _ := repo.ClaimJob(ctx, "job-1", now); claimed {
		t.Fatal("job claimed twice")
	}

	if err := repo.UpdateProgress(ctx, "job-1", entities.ProgressGenerated, now); err != nil {
		t.Fatalf("progress: %v", err)
	}
	if err := repo.UpdateProgress(ctx, "job-1", entities.ProgressResolved, now); err != nil {
		t.Fatalf("progress: %v", err)
	}
	job, _ := repo.GetJob(ctx, "tenant-a", "job-1")
	if job.Progress != entities.ProgressGenerated {
		t.Fatalf("progress moved backwards: %d", job.Progress)
	}

	err = repo.CompleteJob(ctx, "job-1", ports.CompletedArtifact{
		Path:        "tenant-a/job-1/tabular_export_2026-05-06.csv",
		Size:        42,
		CompletedAt: now,
		ExpiresAt:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := repo.CreateJob(ctx, pendingJob("job-2", "tenant-a", now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, claimed, err := repo.ClaimJob(ctx, "job-2", now.Add(-2*time.Hour)); err != nil || !claimed {
		t.Fatalf("claim job-2: claimed=%v err=%v", claimed, err)
	}
	reaped, err := repo.FailStaleJobs(ctx, now.Add(-time.Hour), "stalled", now)
	if err != nil || len(reaped) != 1 || reaped[0] != "job-2" {
		t.Fatalf("expected job-2 reaped, got %v err=%v", reaped, err)
	}
	err = repo.CompleteJob(ctx, "job-2", ports.CompletedArtifact{Path: "late.csv", CompletedAt: now, ExpiresAt: now})
	if !errors.Is(err, domainerrors.ErrJobNotRunning) {
		t.Fatalf("expected late completion rejected, got %v", err)
	}

	sweepable, err := repo.ListSweepable(ctx, ports.SweepCriteria{ExpiredBefore: now.Add(2 * time.Hour), FailedBefore: now})
	if err != nil || len(sweepable) != 1 {
		t.Fatalf("expected one sweepable job, got %d err=%v", len(sweepable), err)
	}

	if _, err := repo.DeleteJob(ctx, "tenant-a", "job-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.UpdateProgress(ctx, "job-1", 100, now); !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListExportCommentsPushesFilterDown(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	seed := []string{
		`INSERT INTO dockets VALUES ('d-1','tenant-a','Riverside','RZ-1','open',NULL,NULL,'owner-1',NOW())`,
		`INSERT INTO dockets VALUES ('d-2','tenant-b','Other','OT-1','open',NULL,NULL,'owner-2',NOW())`,
	}
	for _, stmt := range seed {
		if err := repo.db.Exec(stmt).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	insert := `INSERT INTO comments VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	rows := [][]any{
		{"c-1", "tenant-a", "d-1", "Ada", "", "", "Keep the RIVER path", "approved", at, at, ""},
		{"c-2", "tenant-a", "d-1", "Bo", "", "", "Parking please", "approved", at, at, ""},
		{"c-3", "tenant-a", "d-1", "Cy", "", "", "river views", "pending", at, at, ""},
		{"c-4", "tenant-b", "d-2", "Di", "", "", "river elsewhere", "approved", at, at, ""},
	}
	for _, row := range rows {
		if err := repo.db.Exec(insert, row...).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}
	if err := repo.db.Exec(`INSERT INTO comment_attachments VALUES ('a-1','c-1','map.png','image/png',4,'tenant-a/attachments/c-1/a-1/map.png')`).Error; err != nil {
		t.Fatalf("seed attachment: %v", err)
	}

	items, err := repo.ListExportComments(ctx, "tenant-a", entities.ResolvedFilter{
		Statuses:        []string{"approved"},
		ContentContains: "river",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].CommentID != "c-1" {
		t.Fatalf("expected only c-1, got %+v", items)
	}
	if items[0].DocketReference != "RZ-1" || len(items[0].Attachments) != 1 {
		t.Fatalf("docket or attachments not joined: %+v", items[0])
	}
}
