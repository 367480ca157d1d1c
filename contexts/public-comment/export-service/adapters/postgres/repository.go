package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"docketdesk/contexts/public-comment/export-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/export-service/domain/errors"
	"docketdesk/contexts/public-comment/export-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models lists the tables this service owns. The comment projection tables
// are migrated by the moderation service.
func Models() []any {
	return []any{&jobModel{}}
}

func (r *Repository) CreateJob(ctx context.Context, job entities.Job) (entities.Job, error) {
	row, err := jobModelFromEntity(job)
	if err != nil {
		return entities.Job{}, fmt.Errorf("%w: encode filter: %w", domainerrors.ErrInvalidFilter, err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Job{}, domainerrors.ErrConflict
		}
		return entities.Job{}, wrapStoreError("create export job", err)
	}
	return row.toEntity()
}

func (r *Repository) GetJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error) {
	var row jobModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ?", tenantID, jobID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Job{}, domainerrors.ErrJobNotFound
		}
		return entities.Job{}, wrapStoreError("get export job", err)
	}
	return r.decode(row)
}

func (r *Repository) ListJobs(ctx context.Context, tenantID string, limit int) ([]entities.Job, error) {
	var rows []jobModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Order("job_id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError("list export jobs", err)
	}
	return r.decodeAll(rows)
}

func (r *Repository) DeleteJob(ctx context.Context, tenantID string, jobID string) (entities.Job, error) {
	var deleted entities.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row jobModel
		if err := tx.Where("tenant_id = ? AND job_id = ?", tenantID, jobID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrJobNotFound
			}
			return err
		}
		if err := tx.Delete(&jobModel{}, "job_id = ?", jobID).Error; err != nil {
			return err
		}
		job, err := r.decode(row)
		if err != nil {
			return err
		}
		deleted = job
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrJobNotFound) {
			return entities.Job{}, err
		}
		return entities.Job{}, wrapStoreError("delete export job", err)
	}
	return deleted, nil
}

func (r *Repository) ListPendingJobs(ctx context.Context, limit int) ([]entities.Job, error) {
	var rows []jobModel
	query := r.db.WithContext(ctx).
		Where("status = ?", string(entities.JobStatusPending)).
		Order("created_at ASC").
		Order("job_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError("list pending export jobs", err)
	}
	return r.decodeAll(rows)
}

// ClaimJob relies on a conditional update so only one worker wins.
func (r *Repository) ClaimJob(ctx context.Context, jobID string, now time.Time) (entities.Job, bool, error) {
	started := now.UTC()
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("job_id = ? AND status = ?", jobID, string(entities.JobStatusPending)).
		Updates(map[string]any{
			"status":     string(entities.JobStatusProcessing),
			"progress":   entities.ProgressClaimed,
			"started_at": started,
			"updated_at": started,
		})
	if result.Error != nil {
		return entities.Job{}, false, wrapStoreError("claim export job", result.Error)
	}
	var row jobModel
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Job{}, false, domainerrors.ErrJobNotFound
		}
		return entities.Job{}, false, wrapStoreError("load claimed export job", err)
	}
	job, err := r.decode(row)
	if err != nil {
		return entities.Job{}, false, err
	}
	return job, result.RowsAffected == 1, nil
}

func (r *Repository) UpdateProgress(ctx context.Context, jobID string, progress int, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("job_id = ? AND status <> ?", jobID, string(entities.JobStatusFailed)).
		Updates(map[string]any{
			"progress":   gorm.Expr("CASE WHEN progress < ? THEN ? ELSE progress END", progress, progress),
			"updated_at": now.UTC(),
		})
	return r.requireRunning(ctx, "update export progress", jobID, result)
}

func (r *Repository) CompleteJob(ctx context.Context, jobID string, artifact ports.CompletedArtifact) error {
	completedAt := artifact.CompletedAt.UTC()
	expiresAt := artifact.ExpiresAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("job_id = ? AND status <> ?", jobID, string(entities.JobStatusFailed)).
		Updates(map[string]any{
			"status":        string(entities.JobStatusCompleted),
			"progress":      entities.ProgressCompleted,
			"artifact_path": artifact.Path,
			"artifact_size": artifact.Size,
			"error_message": "",
			"completed_at":  completedAt,
			"expires_at":    expiresAt,
			"updated_at":    completedAt,
		})
	return r.requireRunning(ctx, "complete export job", jobID, result)
}

func (r *Repository) FailJob(ctx context.Context, jobID string, message string, now time.Time) error {
	failedAt := now.UTC()
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("job_id = ?", jobID).
		Updates(map[string]any{
			"status":        string(entities.JobStatusFailed),
			"error_message": message,
			"artifact_path": "",
			"artifact_size": 0,
			"completed_at":  failedAt,
			"updated_at":    failedAt,
		})
	return r.requireRow("fail export job", result)
}

func (r *Repository) ListSweepable(ctx context.Context, criteria ports.SweepCriteria) ([]entities.Job, error) {
	var rows []jobModel
	query := r.db.WithContext(ctx).
		Where(
			"(status = ? AND expires_at < ?) OR (status = ? AND updated_at < ?)",
			string(entities.JobStatusCompleted), criteria.ExpiredBefore.UTC(),
			string(entities.JobStatusFailed), criteria.FailedBefore.UTC(),
		).
		Order("job_id ASC")
	if criteria.Limit > 0 {
		query = query.Limit(criteria.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError("list sweepable export jobs", err)
	}
	return r.decodeAll(rows)
}

// FailStaleJobs reaps jobs whose worker stopped reporting progress. The
// status predicate keeps a job that just finished from being failed.
func (r *Repository) FailStaleJobs(ctx context.Context, staleBefore time.Time, message string, now time.Time) ([]string, error) {
	failedAt := now.UTC()
	var rows []jobModel
	result := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "job_id"}}}).
		Where("status = ? AND updated_at < ?", string(entities.JobStatusProcessing), staleBefore.UTC()).
		Updates(map[string]any{
			"status":        string(entities.JobStatusFailed),
			"error_message": message,
			"completed_at":  failedAt,
			"updated_at":    failedAt,
		})
	if result.Error != nil {
		return nil, wrapStoreError("fail stale export jobs", result.Error)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.JobID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Repository) RemoveJob(ctx context.Context, jobID string) error {
	if err := r.db.WithContext(ctx).Delete(&jobModel{}, "job_id = ?", jobID).Error; err != nil {
		return wrapStoreError("remove export job", err)
	}
	return nil
}

// ListExportComments reads comments joined with their dockets, pushing the
// status, docket, date and content predicates down to SQL.
func (r *Repository) ListExportComments(ctx context.Context, tenantID string, filter entities.ResolvedFilter) ([]entities.SourceComment, error) {
	query := r.db.WithContext(ctx).
		Table("comments AS c").
		Select(`c.comment_id, c.tenant_id, c.docket_id, d.title AS docket_title, d.reference AS docket_reference,
			c.commenter_name, c.commenter_email, c.commenter_organization, c.content, c.status,
			c.submitted_at, c.updated_at`).
		Joins("JOIN dockets AS d ON d.docket_id = c.docket_id AND d.tenant_id = c.tenant_id").
		Where("c.tenant_id = ?", tenantID)
	if len(filter.Statuses) > 0 {
		query = query.Where("c.status IN ?", filter.Statuses)
	}
	if len(filter.DocketIDs) > 0 {
		query = query.Where("c.docket_id IN ?", filter.DocketIDs)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("c.submitted_at >= ?", filter.SubmittedFrom.UTC())
	}
	if filter.SubmittedTo != nil {
		query = query.Where("c.submitted_at <= ?", filter.SubmittedTo.UTC())
	}
	if needle := strings.TrimSpace(filter.ContentContains); needle != "" {
		query = query.Where("LOWER(c.content) LIKE ?", "%"+strings.ToLower(needle)+"%")
	}

	var rows []sourceCommentRow
	if err := query.Order("c.docket_id ASC").Order("c.submitted_at ASC").Order("c.comment_id ASC").Scan(&rows).Error; err != nil {
		return nil, wrapStoreError("list export comments", err)
	}
	if len(rows) == 0 {
		return []entities.SourceComment{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CommentID)
	}
	var attachmentRows []sourceAttachmentRow
	if err := r.db.WithContext(ctx).
		Table("comment_attachments").
		Where("comment_id IN ?", ids).
		Order("attachment_id ASC").
		Scan(&attachmentRows).
		Error; err != nil {
		return nil, wrapStoreError("list export attachments", err)
	}
	byComment := make(map[string][]entities.SourceAttachment, len(rows))
	for _, a := range attachmentRows {
		byComment[a.CommentID] = append(byComment[a.CommentID], entities.SourceAttachment{
			AttachmentID: a.AttachmentID,
			FileName:     a.FileName,
			ContentType:  a.ContentType,
			SizeBytes:    a.SizeBytes,
			StoragePath:  a.StoragePath,
		})
	}

	items := make([]entities.SourceComment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(byComment[row.CommentID]))
	}
	return items, nil
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) requireRow(op string, result *gorm.DB) error {
	if result.Error != nil {
		return wrapStoreError(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrJobNotFound
	}
	return nil
}

// requireRunning tells a deleted job apart from one that was reaped while
// the worker still held it.
func (r *Repository) requireRunning(ctx context.Context, op string, jobID string, result *gorm.DB) error {
	if result.Error != nil {
		return wrapStoreError(op, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&jobModel{}).Where("job_id = ?", jobID).Count(&count).Error; err != nil {
		return wrapStoreError(op, err)
	}
	if count == 0 {
		return domainerrors.ErrJobNotFound
	}
	return domainerrors.ErrJobNotRunning
}

func (r *Repository) decode(row jobModel) (entities.Job, error) {
	job, err := row.toEntity()
	if err != nil {
		r.logger.Error("export job filter undecodable",
			"event", "export_job_decode_failed",
			"module", "public-comment/export-service",
			"layer", "adapter",
			"job_id", row.JobID,
			"error", err.Error(),
		)
		return entities.Job{}, wrapStoreError("decode export job", err)
	}
	return job, nil
}

func (r *Repository) decodeAll(rows []jobModel) ([]entities.Job, error) {
	items := make([]entities.Job, 0, len(rows))
	for _, row := range rows {
		job, err := r.decode(row)
		if err != nil {
			return nil, err
		}
		items = append(items, job)
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func wrapStoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domainerrors.ErrTransientStore, err)
}

var _ ports.JobRepository = (*Repository)(nil)
var _ ports.CommentSource = (*Repository)(nil)
var _ ports.Clock = (*Repository)(nil)
var _ ports.IDGenerator = (*Repository)(nil)
