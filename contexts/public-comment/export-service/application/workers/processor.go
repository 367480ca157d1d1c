package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	application "docketdesk/contexts/public-comment/export-service/application"
	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/domain/services"
	"docketdesk/contexts/public-comment/export-service/ports"
	eventsv1 "docketdesk/contracts/gen/events/v1"
)

const defaultArtifactRetention = 7 * 24 * time.Hour

// errJobVanished marks a job deleted, or failed as stale, while it was being
// processed.
var errJobVanished = errors.New("export job released during processing")

// Processor runs one export job from claim to completion.
type Processor struct {
	Jobs              ports.JobRepository
	Comments          ports.CommentSource
	Artifacts         ports.ArtifactStore
	Archives          ports.ArchiveFactory
	Events            ports.EventPublisher
	Observer          ports.JobObserver
	Clock             ports.Clock
	IDGenerator       ports.IDGenerator
	ArtifactRetention time.Duration
	Logger            *slog.Logger
}

type artifact struct {
	path string
	data []byte
	rows int
}

// Process claims jobID and drives it to a terminal state. Generation failures
// are recorded on the job and not returned; only claim errors are.
func (p Processor) Process(ctx context.Context, jobID string) error {
	logger := application.ResolveLogger(p.Logger)
	started := p.now()
	job, claimed, err := p.Jobs.ClaimJob(ctx, jobID, started)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		logger.Error("export job claim failed",
			"event", "export_job_claim_failed",
			"module", "public-comment/export-service",
			"layer", "worker",
			"job_id", jobID,
			"error", err.Error(),
		)
		return err
	}
	if !claimed {
		return nil
	}
	logger.Info("export job processing",
		"event", "export_job_processing",
		"module", "public-comment/export-service",
		"layer", "worker",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
		"job_type", string(job.Type),
	)

	out, err := p.generate(ctx, job)
	if err != nil {
		if errors.Is(err, errJobVanished) {
			p.discard(ctx, job, out.path)
			return nil
		}
		p.fail(ctx, job, out.path, err, started)
		return nil
	}

	completedAt := p.now()
	expiresAt := completedAt.Add(p.retention())
	err = p.Jobs.CompleteJob(ctx, job.JobID, ports.CompletedArtifact{
		Path:        out.path,
		Size:        int64(len(out.data)),
		CompletedAt: completedAt,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		if released(err) {
			p.discard(ctx, job, out.path)
			return nil
		}
		p.fail(ctx, job, out.path, err, started)
		return nil
	}

	p.finished(ctx, job, entities.JobStatusCompleted, int64(len(out.data)), "", started)
	logger.Info("export job completed",
		"event", "export_job_completed",
		"module", "public-comment/export-service",
		"layer", "worker",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
		"job_type", string(job.Type),
		"rows", out.rows,
		"artifact_path", out.path,
		"artifact_bytes", len(out.data),
		"duration_ms", completedAt.Sub(started).Milliseconds(),
	)
	return nil
}

// generate covers filter resolution, rendering and upload. The returned
// artifact carries the uploaded path even on error so it can be removed.
func (p Processor) generate(ctx context.Context, job entities.Job) (artifact, error) {
	resolved, err := services.ResolveFilter(job.Filter, job.DocketID)
	if err != nil {
		return artifact{}, err
	}
	if err := p.progress(ctx, job, entities.ProgressResolved); err != nil {
		return artifact{}, err
	}

	if p.Comments == nil {
		return artifact{}, domainerrors.ErrDependencyUnavailable
	}
	candidates, err := p.Comments.ListExportComments(ctx, job.TenantID, resolved)
	if err != nil {
		return artifact{}, fmt.Errorf("%w: read comments: %w", domainerrors.ErrTransientStore, err)
	}
	comments := make([]entities.SourceComment, 0, len(candidates))
	for _, comment := range candidates {
		if services.Matches(resolved, comment) {
			comments = append(comments, comment)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].DocketID != comments[j].DocketID {
			return comments[i].DocketID < comments[j].DocketID
		}
		if !comments[i].SubmittedAt.Equal(comments[j].SubmittedAt) {
			return comments[i].SubmittedAt.Before(comments[j].SubmittedAt)
		}
		return comments[i].CommentID < comments[j].CommentID
	})

	day := p.now()
	var buf bytes.Buffer
	switch job.Type {
	case entities.JobTypeTabular:
		if _, err := services.WriteTabular(&buf, comments); err != nil {
			return artifact{}, err
		}
	case entities.JobTypeArchive:
		if err := p.writeArchive(ctx, &buf, job, comments, resolved, false, day); err != nil {
			return artifact{}, err
		}
	case entities.JobTypeCombined:
		if err := p.writeArchive(ctx, &buf, job, comments, resolved, true, day); err != nil {
			return artifact{}, err
		}
	default:
		return artifact{}, domainerrors.ErrUnknownJobType
	}
	if err := p.progress(ctx, job, entities.ProgressGenerated); err != nil {
		return artifact{}, err
	}

	if p.Artifacts == nil {
		return artifact{}, domainerrors.ErrDependencyUnavailable
	}
	out := artifact{
		path: services.ArtifactPath(job.TenantID, job.JobID, job.Type, day),
		data: buf.Bytes(),
		rows: len(comments),
	}
	if err := p.Artifacts.Put(ctx, out.path, out.data, job.Type.ContentType()); err != nil {
		return artifact{}, fmt.Errorf("%w: upload artifact: %w", domainerrors.ErrTransientStore, err)
	}
	if err := p.progress(ctx, job, entities.ProgressUploaded); err != nil {
		return out, err
	}
	return out, nil
}

// writeArchive builds a zip. Combined archives carry the table at the root
// and attachments only when the filter asks for them; plain archives always
// carry attachments.
func (p Processor) writeArchive(
	ctx context.Context,
	buf *bytes.Buffer,
	job entities.Job,
	comments []entities.SourceComment,
	resolved entities.ResolvedFilter,
	withTable bool,
	day time.Time,
) error {
	if p.Archives == nil {
		return domainerrors.ErrDependencyUnavailable
	}
	archive := p.Archives.NewArchive(buf)
	if withTable {
		w, err := archive.Create(services.ArtifactFileName(entities.JobTypeTabular, day), day)
		if err != nil {
			return fmt.Errorf("create table entry: %w", err)
		}
		if _, err := services.WriteTabular(w, comments); err != nil {
			return err
		}
	}
	if !withTable || resolved.IncludeAttachments {
		for _, comment := range comments {
			for _, attachment := range comment.Attachments {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !services.AttachmentAllowed(resolved, attachment) {
					continue
				}
				data, err := p.Artifacts.Get(ctx, attachment.StoragePath)
				if err != nil {
					return fmt.Errorf("%w: read attachment %s: %w", domainerrors.ErrTransientStore, attachment.AttachmentID, err)
				}
				name := services.ArchiveEntryPath(job.TenantID, comment.DocketID, comment.CommentID, attachment.FileName)
				if err := archive.Add(name, comment.SubmittedAt, data); err != nil {
					return fmt.Errorf("add %s: %w", name, err)
				}
			}
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func (p Processor) progress(ctx context.Context, job entities.Job, value int) error {
	err := p.Jobs.UpdateProgress(ctx, job.JobID, value, p.now())
	if released(err) {
		return errJobVanished
	}
	return err
}

func released(err error) bool {
	return errors.Is(err, domainerrors.ErrNotFound) || errors.Is(err, domainerrors.ErrJobNotRunning)
}

func (p Processor) fail(ctx context.Context, job entities.Job, uploadedPath string, cause error, started time.Time) {
	logger := application.ResolveLogger(p.Logger)
	if uploadedPath != "" && p.Artifacts != nil {
		if err := p.Artifacts.Delete(ctx, uploadedPath); err != nil {
			logger.Warn("partial export artifact not removed",
				"event", "export_artifact_cleanup_failed",
				"module", "public-comment/export-service",
				"layer", "worker",
				"job_id", job.JobID,
				"artifact_path", uploadedPath,
				"error", err.Error(),
			)
		}
	}
	message := cause.Error()
	if err := p.Jobs.FailJob(ctx, job.JobID, message, p.now()); err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		logger.Error("export job failure not recorded",
			"event", "export_job_fail_record_failed",
			"module", "public-comment/export-service",
			"layer", "worker",
			"job_id", job.JobID,
			"error", err.Error(),
		)
	}
	p.finished(ctx, job, entities.JobStatusFailed, 0, message, started)
	logger.Warn("export job failed",
		"event", "export_job_failed",
		"module", "public-comment/export-service",
		"layer", "worker",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
		"job_type", string(job.Type),
		"error", message,
	)
}

func (p Processor) discard(ctx context.Context, job entities.Job, uploadedPath string) {
	logger := application.ResolveLogger(p.Logger)
	if uploadedPath != "" && p.Artifacts != nil {
		if err := p.Artifacts.Delete(ctx, uploadedPath); err != nil {
			logger.Warn("orphaned export artifact not removed",
				"event", "export_artifact_cleanup_failed",
				"module", "public-comment/export-service",
				"layer", "worker",
				"job_id", job.JobID,
				"artifact_path", uploadedPath,
				"error", err.Error(),
			)
		}
	}
	logger.Info("export job released while processing",
		"event", "export_job_discarded",
		"module", "public-comment/export-service",
		"layer", "worker",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
	)
}

func (p Processor) finished(ctx context.Context, job entities.Job, status entities.JobStatus, size int64, message string, started time.Time) {
	if p.Observer != nil {
		p.Observer.JobFinished(string(job.Type), string(status), p.now().Sub(started), size)
	}
	if p.Events == nil || p.IDGenerator == nil {
		return
	}
	eventID, err := p.IDGenerator.NewID(ctx)
	if err == nil {
		var envelope eventsv1.Envelope
		envelope, err = eventsv1.NewEnvelope(eventID, eventsv1.TopicExportFinished, "export-service", job.TenantID, p.now(), eventsv1.ExportFinished{
			TenantID:     job.TenantID,
			JobID:        job.JobID,
			Status:       string(status),
			ArtifactSize: size,
			ErrorMessage: message,
		})
		if err == nil {
			err = p.Events.Publish(ctx, eventsv1.TopicExportFinished, envelope)
		}
	}
	if err != nil {
		application.ResolveLogger(p.Logger).Warn("export finished event not published",
			"event", "export_job_event_publish_failed",
			"module", "public-comment/export-service",
			"layer", "worker",
			"job_id", job.JobID,
			"error", err.Error(),
		)
	}
}

func (p Processor) retention() time.Duration {
	if p.ArtifactRetention <= 0 {
		return defaultArtifactRetention
	}
	return p.ArtifactRetention
}

func (p Processor) now() time.Time {
	if p.Clock != nil {
		return p.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
