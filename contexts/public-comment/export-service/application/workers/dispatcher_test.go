package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"docketdesk/contexts/public-comment/export-service/application/workers"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

// cappedPool admits up to capacity tasks and runs them inline.
type cappedPool struct {
	mu       sync.Mutex
	capacity int
	admitted int
}

func (p *cappedPool) TryGo(ctx context.Context, task func(ctx context.Context)) bool {
	p.mu.Lock()
	if p.admitted >= p.capacity {
		p.mu.Unlock()
		return false
	}
	p.admitted++
	p.mu.Unlock()
	task(ctx)
	return true
}

func TestDispatcherLeavesOverflowPending(t *testing.T) {
	f := newFixture(t)
	first := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	second := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	pool := &cappedPool{capacity: 1}
	dispatcher := workers.Dispatcher{Jobs: f.store, Processor: f.processor, Pool: pool}

	admitted, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if admitted != 1 {
		t.Fatalf("expected 1 admitted job, got %d", admitted)
	}
	if got := f.job(t, first.JobID); got.Status != entities.JobStatusCompleted {
		t.Fatalf("expected oldest job completed, got %s", got.Status)
	}
	if got := f.job(t, second.JobID); got.Status != entities.JobStatusPending {
		t.Fatalf("expected overflow job to stay pending, got %s", got.Status)
	}

	pool.capacity = 2
	if admitted, err = dispatcher.RunOnce(context.Background()); err != nil || admitted != 1 {
		t.Fatalf("expected the next pass to admit the pending job, got %d %v", admitted, err)
	}
	if got := f.job(t, second.JobID); got.Status != entities.JobStatusCompleted {
		t.Fatalf("expected second job completed, got %s", got.Status)
	}
}

func TestDispatcherHandlesRequestedEvent(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	dispatcher := workers.Dispatcher{Jobs: f.store, Processor: f.processor, Pool: &cappedPool{capacity: 5}}

	envelope, err := eventsv1.NewEnvelope("evt-1", eventsv1.TopicExportRequested, "export-service", tenantID, f.clock.now, eventsv1.ExportRequested{
		TenantID: tenantID,
		JobID:    job.JobID,
		Type:     string(job.Type),
	})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if err := dispatcher.HandleRequested(context.Background(), envelope); err != nil {
		t.Fatalf("handle requested: %v", err)
	}
	if got := f.job(t, job.JobID); got.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}

	empty, _ := eventsv1.NewEnvelope("evt-2", eventsv1.TopicExportRequested, "export-service", tenantID, f.clock.now, eventsv1.ExportRequested{TenantID: tenantID})
	if err := dispatcher.HandleRequested(context.Background(), empty); err == nil {
		t.Fatalf("expected an error for an event without job id")
	}
}

func TestExpirySweeperRemovesExpiredAndStaleFailedJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.now

	expired := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	withinGrace := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	fresh := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	staleFailed := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	recentFailed := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	pending := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})

	complete := func(jobID string, expiresAt time.Time) string {
		path := "tenant-a/" + jobID + "/tabular_export.csv"
		_ = f.artifacts.Put(ctx, path, []byte("x"), "text/csv")
		if err := f.store.CompleteJob(ctx, jobID, portsArtifact(path, now.Add(-72*time.Hour), expiresAt)); err != nil {
			t.Fatalf("complete %s: %v", jobID, err)
		}
		return path
	}
	expiredPath := complete(expired.JobID, now.Add(-25*time.Hour))
	withinGracePath := complete(withinGrace.JobID, now.Add(-time.Minute))
	freshPath := complete(fresh.JobID, now.Add(time.Hour))
	if err := f.store.FailJob(ctx, staleFailed.JobID, "boom", now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if err := f.store.FailJob(ctx, recentFailed.JobID, "boom", now.Add(-time.Hour)); err != nil {
		t.Fatalf("fail: %v", err)
	}

	sweeper := workers.ExpirySweeper{Jobs: f.store, Artifacts: f.artifacts, Clock: f.clock, Grace: 24 * time.Hour}
	removed, err := sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed jobs, got %d", removed)
	}
	if f.artifacts.has(expiredPath) {
		t.Fatalf("expected expired artifact deleted")
	}
	if !f.artifacts.has(freshPath) || !f.artifacts.has(withinGracePath) {
		t.Fatalf("expected live and recently expired artifacts kept")
	}
	for _, id := range []string{withinGrace.JobID, fresh.JobID, recentFailed.JobID, pending.JobID} {
		f.job(t, id)
	}
	if status := f.job(t, withinGrace.JobID).EffectiveStatus(now); status != entities.JobStatusExpired {
		t.Fatalf("expected job inside the grace window to report expired, got %s", status)
	}
	for _, id := range []string{expired.JobID, staleFailed.JobID} {
		if _, err := f.store.GetJob(ctx, tenantID, id); err == nil {
			t.Fatalf("expected job %s swept", id)
		}
	}
}

func TestExpirySweeperFailsStaleProcessingJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.clock.now

	stuck := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	running := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	if _, _, err := f.store.ClaimJob(ctx, stuck.JobID, now.Add(-2*time.Hour)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, _, err := f.store.ClaimJob(ctx, running.JobID, now.Add(-10*time.Minute)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	sweeper := workers.ExpirySweeper{Jobs: f.store, Artifacts: f.artifacts, Clock: f.clock, Grace: 24 * time.Hour, StaleAfter: time.Hour}
	if _, err := sweeper.RunOnce(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	reaped := f.job(t, stuck.JobID)
	if reaped.Status != entities.JobStatusFailed || reaped.ErrorMessage == "" || reaped.CompletedAt == nil {
		t.Fatalf("expected stuck job failed, got %+v", reaped)
	}
	if got := f.job(t, running.JobID).Status; got != entities.JobStatusProcessing {
		t.Fatalf("expected active job left processing, got %s", got)
	}
}
