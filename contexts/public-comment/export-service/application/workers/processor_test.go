package workers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"docketdesk/contexts/public-comment/export-service/adapters/archive"
	"docketdesk/contexts/public-comment/export-service/adapters/memory"
	"docketdesk/contexts/public-comment/export-service/application/workers"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/domain/services"
	"docketdesk/contexts/public-comment/export-service/ports"
	eventsv1 "docketdesk/contracts/gen/events/v1"

	"github.com/klauspost/compress/zip"
)

const tenantID = "tenant-a"

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type memoryArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	deletes []string
}

func newMemoryArtifacts() *memoryArtifacts {
	return &memoryArtifacts{objects: make(map[string][]byte)}
}

func (m *memoryArtifacts) Put(_ context.Context, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *memoryArtifacts) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s missing", path)
	}
	return data, nil
}

func (m *memoryArtifacts) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	m.deletes = append(m.deletes, path)
	return nil
}

func (m *memoryArtifacts) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return "https://files.test/" + path + "?ttl=" + ttl.String(), nil
}

func (m *memoryArtifacts) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

type recordingEvents struct {
	mu     sync.Mutex
	topics []string
	events []eventsv1.Envelope
}

func (r *recordingEvents) Publish(_ context.Context, topic string, event eventsv1.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.events = append(r.events, event)
	return nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) JobFinished(jobType string, status string, _ time.Duration, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, jobType+":"+status)
}

type fixture struct {
	store     *memory.Store
	artifacts *memoryArtifacts
	events    *recordingEvents
	observer  *recordingObserver
	clock     fixedClock
	processor workers.Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		artifacts: newMemoryArtifacts(),
		events:    &recordingEvents{},
		observer:  &recordingObserver{},
		clock:     fixedClock{now: time.Date(2026, 5, 6, 9, 30, 0, 0, time.UTC)},
	}
	f.processor = workers.Processor{
		Jobs:              f.store,
		Comments:          f.store,
		Artifacts:         f.artifacts,
		Archives:          archive.ZipFactory{},
		Events:            f.events,
		Observer:          f.observer,
		Clock:             f.clock,
		IDGenerator:       f.store,
		ArtifactRetention: 48 * time.Hour,
	}
	f.store.SeedComments(tenantID, sampleComments())
	return f
}

func (f *fixture) createJob(t *testing.T, jobType entities.JobType, filter entities.FilterSpec) entities.Job {
	t.Helper()
	id, _ := f.store.NewID(context.Background())
	job, err := f.store.CreateJob(context.Background(), entities.Job{
		JobID:     id,
		TenantID:  tenantID,
		Type:      jobType,
		Filter:    filter,
		Status:    entities.JobStatusPending,
		CreatedBy: "actor-owner",
		CreatedAt: f.clock.now,
		UpdatedAt: f.clock.now,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func (f *fixture) job(t *testing.T, jobID string) entities.Job {
	t.Helper()
	job, err := f.store.GetJob(context.Background(), tenantID, jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	return job
}

func sampleComments() []entities.SourceComment {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []entities.SourceComment{
		{
			CommentID: "c-2", TenantID: tenantID, DocketID: "d-1", DocketTitle: "Zoning", DocketReference: "ZN-1",
			CommenterName: "Ada", Content: `She said "no"`, Status: "approved",
			SubmittedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour),
			Attachments: []entities.SourceAttachment{
				{AttachmentID: "a-1", FileName: "map.png", ContentType: "image/png", SizeBytes: 4, StoragePath: "tenant-a/attachments/c-2/a-1/map.png"},
				{AttachmentID: "a-2", FileName: "notes.txt", ContentType: "text/plain", SizeBytes: 5, StoragePath: "tenant-a/attachments/c-2/a-2/notes.txt"},
			},
		},
		{
			CommentID: "c-1", TenantID: tenantID, DocketID: "d-1", DocketTitle: "Zoning", DocketReference: "ZN-1",
			CommenterName: "Grace", Content: "Support, with conditions", Status: "approved",
			SubmittedAt: base, UpdatedAt: base,
		},
		{
			CommentID: "c-3", TenantID: tenantID, DocketID: "d-2", DocketTitle: "Transit", DocketReference: "TR-9",
			CommenterName: "Linus", Content: "Pending review", Status: "pending",
			SubmittedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
		},
	}
}

func (f *fixture) seedAttachmentBlobs() {
	_ = f.artifacts.Put(context.Background(), "tenant-a/attachments/c-2/a-1/map.png", []byte("\x89PNG"), "image/png")
	_ = f.artifacts.Put(context.Background(), "tenant-a/attachments/c-2/a-2/notes.txt", []byte("notes"), "text/plain")
}

func TestProcessTabularJobCompletes(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := f.job(t, job.JobID)
	if got.Status != entities.JobStatusCompleted || got.Progress != entities.ProgressCompleted {
		t.Fatalf("expected completed at 100, got %s at %d (%s)", got.Status, got.Progress, got.ErrorMessage)
	}
	wantPath := "tenant-a/" + job.JobID + "/tabular_export_2026-05-06.csv"
	if got.ArtifactPath != wantPath {
		t.Fatalf("expected artifact path %s, got %s", wantPath, got.ArtifactPath)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(f.clock.now.Add(48*time.Hour)) {
		t.Fatalf("expected expires_at completed+48h, got %v", got.ExpiresAt)
	}

	data, err := f.artifacts.Get(context.Background(), got.ArtifactPath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if got.ArtifactSize != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), got.ArtifactSize)
	}
	rows, err := services.ParseTabular(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse artifact: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected only the 2 approved comments, got %d", len(rows))
	}
	if rows[0]["comment_id"] != "c-1" || rows[1]["comment_id"] != "c-2" {
		t.Fatalf("expected submission order c-1, c-2, got %s, %s", rows[0]["comment_id"], rows[1]["comment_id"])
	}
	if rows[1]["comment_text"] != `She said "no"` || rows[1]["attachment_names"] != "map.png; notes.txt" {
		t.Fatalf("unexpected row content: %#v", rows[1])
	}

	if len(f.events.topics) != 1 || f.events.topics[0] != eventsv1.TopicExportFinished {
		t.Fatalf("expected one export.finished event, got %v", f.events.topics)
	}
	var finished eventsv1.ExportFinished
	if err := f.events.events[0].Decode(&finished); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if finished.Status != string(entities.JobStatusCompleted) || finished.ArtifactSize != got.ArtifactSize {
		t.Fatalf("unexpected finished payload: %#v", finished)
	}
	if len(f.observer.outcomes) != 1 || f.observer.outcomes[0] != "tabular:completed" {
		t.Fatalf("unexpected observer outcomes: %v", f.observer.outcomes)
	}
}

func TestProcessClaimsJobOnce(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("first process: %v", err)
	}
	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if len(f.observer.outcomes) != 1 {
		t.Fatalf("expected one run, got %v", f.observer.outcomes)
	}
	if err := f.processor.Process(context.Background(), "missing"); err != nil {
		t.Fatalf("expected missing job to be ignored, got %v", err)
	}
}

func TestProcessInvalidFilterFailsJob(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{SubmittedFrom: "last tuesday"})

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := f.job(t, job.JobID)
	if got.Status != entities.JobStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if !strings.Contains(got.ErrorMessage, "invalid filter") {
		t.Fatalf("expected filter error message, got %q", got.ErrorMessage)
	}
	if got.ArtifactPath != "" {
		t.Fatalf("expected no artifact, got %s", got.ArtifactPath)
	}
	if len(f.observer.outcomes) != 1 || f.observer.outcomes[0] != "tabular:failed" {
		t.Fatalf("unexpected observer outcomes: %v", f.observer.outcomes)
	}
}

func TestProcessUploadFailureMarksJobFailed(t *testing.T) {
	f := newFixture(t)
	f.artifacts.putErr = errors.New("bucket unavailable")
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := f.job(t, job.JobID)
	if got.Status != entities.JobStatusFailed || !strings.Contains(got.ErrorMessage, "bucket unavailable") {
		t.Fatalf("expected failed with upload error, got %s %q", got.Status, got.ErrorMessage)
	}
}

// vanishingJobs deletes the job right before the upload checkpoint is
// recorded, as a concurrent DeleteJob would.
type vanishingJobs struct {
	*memory.Store
	at int
}

func (v vanishingJobs) UpdateProgress(ctx context.Context, jobID string, progress int, now time.Time) error {
	if progress == v.at {
		if _, err := v.Store.DeleteJob(ctx, tenantID, jobID); err != nil {
			return err
		}
	}
	return v.Store.UpdateProgress(ctx, jobID, progress, now)
}

func TestProcessDiscardsArtifactWhenJobDeletedMidRun(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	f.processor.Jobs = vanishingJobs{Store: f.store, at: entities.ProgressUploaded}

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}
	path := services.ArtifactPath(tenantID, job.JobID, entities.JobTypeTabular, f.clock.now)
	if f.artifacts.has(path) {
		t.Fatalf("expected uploaded artifact %s to be discarded", path)
	}
	if len(f.artifacts.deletes) != 1 || f.artifacts.deletes[0] != path {
		t.Fatalf("expected one delete of %s, got %v", path, f.artifacts.deletes)
	}
	if _, err := f.store.GetJob(context.Background(), tenantID, job.JobID); !errors.Is(err, domainerrors.ErrJobNotFound) {
		t.Fatalf("expected job to stay deleted, got %v", err)
	}
	if len(f.events.topics) != 0 {
		t.Fatalf("expected no finished event for a deleted job, got %v", f.events.topics)
	}
}

// reapingJobs fails the job as stale right before the upload checkpoint, as
// the sweeper would when the worker stalls.
type reapingJobs struct {
	*memory.Store
	at  int
	now time.Time
}

func (r reapingJobs) UpdateProgress(ctx context.Context, jobID string, progress int, now time.Time) error {
	if progress == r.at {
		if _, err := r.Store.FailStaleJobs(ctx, r.now.Add(time.Hour), "stalled", r.now); err != nil {
			return err
		}
	}
	return r.Store.UpdateProgress(ctx, jobID, progress, now)
}

func TestProcessDiscardsArtifactWhenJobReapedMidRun(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, entities.JobTypeTabular, entities.FilterSpec{})
	f.processor.Jobs = reapingJobs{Store: f.store, at: entities.ProgressUploaded, now: f.clock.now}

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}
	path := services.ArtifactPath(tenantID, job.JobID, entities.JobTypeTabular, f.clock.now)
	if f.artifacts.has(path) {
		t.Fatalf("expected artifact of a reaped job to be discarded")
	}
	got := f.job(t, job.JobID)
	if got.Status != entities.JobStatusFailed || got.ErrorMessage != "stalled" {
		t.Fatalf("expected job to stay failed, got %+v", got)
	}
	if err := f.store.CompleteJob(context.Background(), job.JobID, portsArtifact(path, f.clock.now, f.clock.now.Add(time.Hour))); !errors.Is(err, domainerrors.ErrJobNotRunning) {
		t.Fatalf("expected late completion rejected, got %v", err)
	}
}

func TestProcessArchiveHonoursAttachmentFilters(t *testing.T) {
	f := newFixture(t)
	f.seedAttachmentBlobs()
	job := f.createJob(t, entities.JobTypeArchive, entities.FilterSpec{MIMETypes: []string{"image/*"}})

	if err := f.processor.Process(context.Background(), job.JobID); err != nil {
		t.Fatalf("process: %v", err)
	}
	got := f.job(t, job.JobID)
	if got.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", got.Status, got.ErrorMessage)
	}
	if !strings.HasSuffix(got.ArtifactPath, "archive_export_2026-05-06.zip") {
		t.Fatalf("unexpected artifact path %s", got.ArtifactPath)
	}
	entries := zipEntries(t, f, got.ArtifactPath)
	want := []string{"tenant-a/d-1/c-2/map.png"}
	if strings.Join(entries, ",") != strings.Join(want, ",") {
		t.Fatalf("expected entries %v, got %v", want, entries)
	}
}

func TestProcessCombinedPlacesTableAtRoot(t *testing.T) {
	f := newFixture(t)
	f.seedAttachmentBlobs()

	without := f.createJob(t, entities.JobTypeCombined, entities.FilterSpec{})
	with := f.createJob(t, entities.JobTypeCombined, entities.FilterSpec{IncludeAttachments: true, MaxAttachmentBytes: 4})
	for _, id := range []string{without.JobID, with.JobID} {
		if err := f.processor.Process(context.Background(), id); err != nil {
			t.Fatalf("process %s: %v", id, err)
		}
	}

	table := "tabular_export_2026-05-06.csv"
	if entries := zipEntries(t, f, f.job(t, without.JobID).ArtifactPath); strings.Join(entries, ",") != table {
		t.Fatalf("expected only the table, got %v", entries)
	}
	entries := zipEntries(t, f, f.job(t, with.JobID).ArtifactPath)
	want := []string{table, "tenant-a/d-1/c-2/map.png"}
	if strings.Join(entries, ",") != strings.Join(want, ",") {
		t.Fatalf("expected entries %v, got %v", want, entries)
	}
}

func zipEntries(t *testing.T, f *fixture, path string) []string {
	t.Helper()
	data, err := f.artifacts.Get(context.Background(), path)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open %s: %v", file.Name, err)
		}
		if _, err := io.Copy(io.Discard, rc); err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		_ = rc.Close()
		names = append(names, file.Name)
	}
	sort.Strings(names)
	return names
}

var _ ports.ArtifactStore = (*memoryArtifacts)(nil)

func portsArtifact(path string, completedAt time.Time, expiresAt time.Time) ports.CompletedArtifact {
	return ports.CompletedArtifact{Path: path, Size: 1, CompletedAt: completedAt, ExpiresAt: expiresAt}
}
