package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docketdesk/contexts/public-comment/moderation-service/domain/entities"
	domainerrors "docketdesk/contexts/public-comment/moderation-service/domain/errors"
	"docketdesk/contexts/public-comment/moderation-service/ports"

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

func Models() []any {
	return []any{
		&docketModel{},
		&commentModel{},
		&attachmentModel{},
		&logEntryModel{},
		&idempotencyModel{},
	}
}

func (r *Repository) CreateDocket(ctx context.Context, docket entities.Docket) (entities.Docket, error) {
	row := docketModelFromEntity(docket)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Docket{}, domainerrors.ErrDocketAlreadyExists
		}
		return entities.Docket{}, wrapStoreError("create docket", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetDocket(ctx context.Context, tenantID string, docketID string) (entities.Docket, error) {
	var row docketModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND docket_id = ?", tenantID, docketID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Docket{}, domainerrors.ErrDocketNotFound
		}
		return entities.Docket{}, wrapStoreError("get docket", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDockets(ctx context.Context, tenantID string) ([]entities.Docket, error) {
	var rows []docketModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Order("docket_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, wrapStoreError("list dockets", err)
	}
	items := make([]entities.Docket, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	row := commentModelFromEntity(comment)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(comment.Attachments) == 0 {
			return nil
		}
		attachments := make([]attachmentModel, 0, len(comment.Attachments))
		for _, item := range comment.Attachments {
			attachments = append(attachments, attachmentModelFromEntity(item))
		}
		return tx.Create(&attachments).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return entities.Comment{}, fmt.Errorf("%w: comment %s", domainerrors.ErrConflict, comment.CommentID)
		}
		return entities.Comment{}, wrapStoreError("create comment", err)
	}
	return comment, nil
}

func (r *Repository) GetComment(ctx context.Context, tenantID string, commentID string) (entities.Comment, error) {
	items, err := r.GetComments(ctx, tenantID, []string{commentID})
	if err != nil {
		return entities.Comment{}, err
	}
	if len(items) == 0 {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return items[0], nil
}

func (r *Repository) GetComments(ctx context.Context, tenantID string, commentIDs []string) ([]entities.Comment, error) {
	if len(commentIDs) == 0 {
		return []entities.Comment{}, nil
	}
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND comment_id IN ?", tenantID, commentIDs).
		Find(&rows).
		Error; err != nil {
		return nil, wrapStoreError("get comments", err)
	}
	return r.withAttachments(ctx, rows)
}

func (r *Repository) ListComments(ctx context.Context, filter ports.CommentFilter) ([]entities.Comment, error) {
	tx := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.DocketID != "" {
		tx = tx.Where("docket_id = ?", filter.DocketID)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	tx = tx.Order("submitted_at ASC").Order("comment_id ASC")
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	var rows []commentModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, wrapStoreError("list comments", err)
	}
	return r.withAttachments(ctx, rows)
}

func (r *Repository) ListTenantComments(ctx context.Context, tenantID string) ([]entities.Comment, error) {
	return r.ListComments(ctx, ports.CommentFilter{TenantID: tenantID})
}

func (r *Repository) ApplyTransition(ctx context.Context, transition ports.Transition) (entities.Comment, error) {
	items, err := r.ApplyBulkTransition(ctx, []ports.Transition{transition})
	if err != nil {
		return entities.Comment{}, err
	}
	return items[0], nil
}

// ApplyBulkTransition writes every status update and every audit entry in one
// transaction. Rows are not locked beforehand, so concurrent moderators still
// race and the later commit wins.
func (r *Repository) ApplyBulkTransition(ctx context.Context, transitions []ports.Transition) ([]entities.Comment, error) {
	if len(transitions) == 0 {
		return []entities.Comment{}, nil
	}
	tenantID := transitions[0].TenantID
	ids := make([]string, 0, len(transitions))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries := make([]logEntryModel, 0, len(transitions))
		for _, transition := range transitions {
			result := tx.Model(&commentModel{}).
				Where("tenant_id = ? AND comment_id = ?", transition.TenantID, transition.CommentID).
				Updates(map[string]any{
					"status":     string(transition.Status),
					"updated_by": transition.UpdatedBy,
					"updated_at": transition.UpdatedAt.UTC(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", domainerrors.ErrCommentNotFound, transition.CommentID)
			}
			if transition.LogEntry != nil {
				entries = append(entries, logEntryModelFromEntity(*transition.LogEntry))
			}
			ids = append(ids, transition.CommentID)
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		r.logger.Error("moderation transition failed",
			"event", "moderation_transition_failed",
			"module", "public-comment/moderation-service",
			"layer", "adapter",
			"tenant_id", tenantID,
			"count", len(transitions),
			"error", err.Error(),
		)
		return nil, wrapStoreError("apply transitions", err)
	}

	updated, err := r.GetComments(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entities.Comment, len(updated))
	for _, item := range updated {
		byID[item.CommentID] = item
	}
	out := make([]entities.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

func (r *Repository) ListLog(ctx context.Context, tenantID string, commentID string) ([]entities.LogEntry, error) {
	var rows []logEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND comment_id = ?", tenantID, commentID).
		Order("created_at ASC").
		Order("entry_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, wrapStoreError("list moderation log", err)
	}
	items := make([]entities.LogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND expires_at > ?", key, now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, wrapStoreError("get idempotency", err)
	}
	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     append([]byte(nil), row.Payload...),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		Payload:     append([]byte(nil), record.Payload...),
		ExpiresAt:   record.ExpiresAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"request_hash", "payload", "expires_at"}),
	}).Create(&row).Error; err != nil {
		return wrapStoreError("put idempotency", err)
	}
	return nil
}

func (r *Repository) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *Repository) Now() time.Time {
	return time.Now().UTC()
}

func (r *Repository) withAttachments(ctx context.Context, rows []commentModel) ([]entities.Comment, error) {
	if len(rows) == 0 {
		return []entities.Comment{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CommentID)
	}
	var attachments []attachmentModel
	if err := r.db.WithContext(ctx).
		Where("comment_id IN ?", ids).
		Order("file_name ASC").
		Find(&attachments).
		Error; err != nil {
		return nil, wrapStoreError("list attachments", err)
	}
	byComment := make(map[string][]entities.Attachment, len(rows))
	for _, item := range attachments {
		byComment[item.CommentID] = append(byComment[item.CommentID], item.toEntity())
	}
	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		comment := row.toEntity()
		comment.Attachments = byComment[row.CommentID]
		items = append(items, comment)
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

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
