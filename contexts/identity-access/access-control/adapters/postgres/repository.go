package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docketdesk/contexts/identity-access/access-control/domain/entities"
	domainerrors "docketdesk/contexts/identity-access/access-control/domain/errors"
	"docketdesk/contexts/identity-access/access-control/domain/services"
	"docketdesk/contexts/identity-access/access-control/ports"

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

// Models lists the gorm models owned by this adapter for migrations.
func Models() []any {
	return []any{&membershipModel{}}
}

func (r *Repository) GetMembership(ctx context.Context, tenantID string, actorID string) (entities.Membership, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND actor_id = ?", tenantID, actorID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, domainerrors.ErrMembershipNotFound
		}
		return entities.Membership{}, wrapStoreError("get membership", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListMemberships(ctx context.Context, filter ports.MembershipFilter) ([]entities.Membership, error) {
	tx := r.db.WithContext(ctx).
		Model(&membershipModel{}).
		Where("tenant_id = ?", filter.TenantID)
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	var rows []membershipModel
	if err := tx.Order("role_rank DESC").Order("created_at ASC").Order("actor_id ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError("list memberships", err)
	}
	items := make([]entities.Membership, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountActiveOwners(ctx context.Context, tenantID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&membershipModel{}).
		Where("tenant_id = ? AND role = ? AND status = ?", tenantID, string(entities.RoleOwner), string(entities.MembershipStatusActive)).
		Count(&count).
		Error
	if err != nil {
		return 0, wrapStoreError("count active owners", err)
	}
	return int(count), nil
}

func (r *Repository) CreateMembership(ctx context.Context, membership entities.Membership) (entities.Membership, error) {
	row := membershipModelFromEntity(membership)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Membership{}, domainerrors.ErrMembershipAlreadyExist
		}
		return entities.Membership{}, wrapStoreError("create membership", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ActivateMembership(ctx context.Context, tenantID string, actorID string, now time.Time) (entities.Membership, error) {
	now = now.UTC()
	result := r.db.WithContext(ctx).
		Model(&membershipModel{}).
		Where("tenant_id = ? AND actor_id = ? AND status = ?", tenantID, actorID, string(entities.MembershipStatusPending)).
		Updates(map[string]any{
			"status":      string(entities.MembershipStatusActive),
			"accepted_at": now,
			"updated_at":  now,
			"updated_by":  actorID,
		})
	if result.Error != nil {
		return entities.Membership{}, wrapStoreError("activate membership", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetMembership(ctx, tenantID, actorID); err != nil {
			return entities.Membership{}, err
		}
		return entities.Membership{}, domainerrors.ErrMembershipNotPending
	}
	return r.GetMembership(ctx, tenantID, actorID)
}

// ApplyMembershipChange locks the tenant's active owner rows together with the
// target row so two concurrent demotions cannot both pass the owner check.
func (r *Repository) ApplyMembershipChange(ctx context.Context, change ports.MembershipChange) (entities.Membership, error) {
	var out entities.Membership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners []membershipModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND role = ? AND status = ?", change.TenantID, string(entities.RoleOwner), string(entities.MembershipStatusActive)).
			Find(&owners).
			Error; err != nil {
			return err
		}

		var row membershipModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND actor_id = ?", change.TenantID, change.ActorID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrMembershipNotFound
			}
			return err
		}

		if err := services.CheckOwnerContinuity(row.toEntity(), change.Role, change.Status, len(owners)); err != nil {
			return err
		}

		row.Role = string(change.Role)
		row.RoleRank = change.Role.Rank()
		row.Status = string(change.Status)
		row.UpdatedBy = change.UpdatedBy
		row.UpdatedAt = change.UpdatedAt.UTC()
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		out = row.toEntity()
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvariantViolation) || errors.Is(err, domainerrors.ErrNotFound) {
			return entities.Membership{}, err
		}
		r.logger.Error("membership change failed",
			"event", "access_control_membership_change_failed",
			"module", "identity-access/access-control",
			"layer", "adapter",
			"tenant_id", change.TenantID,
			"target_id", change.ActorID,
			"error", err.Error(),
		)
		return entities.Membership{}, wrapStoreError("apply membership change", err)
	}
	return out, nil
}

type membershipModel struct {
	MembershipID string     `gorm:"column:membership_id;primaryKey"`
	TenantID     string     `gorm:"column:tenant_id;uniqueIndex:memberships_tenant_actor_unique"`
	ActorID      string     `gorm:"column:actor_id;uniqueIndex:memberships_tenant_actor_unique"`
	Email        string     `gorm:"column:email"`
	Role         string     `gorm:"column:role"`
	RoleRank     int        `gorm:"column:role_rank"`
	Status       string     `gorm:"column:status"`
	InvitedBy    string     `gorm:"column:invited_by"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	UpdatedBy    string     `gorm:"column:updated_by"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at"`
}

func (membershipModel) TableName() string {
	return "tenant_memberships"
}

func (m membershipModel) toEntity() entities.Membership {
	return entities.Membership{
		MembershipID: m.MembershipID,
		TenantID:     m.TenantID,
		ActorID:      m.ActorID,
		Email:        m.Email,
		Role:         entities.Role(m.Role),
		Status:       entities.MembershipStatus(m.Status),
		InvitedBy:    m.InvitedBy,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		UpdatedBy:    m.UpdatedBy,
		AcceptedAt:   m.AcceptedAt,
	}
}

func membershipModelFromEntity(m entities.Membership) membershipModel {
	return membershipModel{
		MembershipID: m.MembershipID,
		TenantID:     m.TenantID,
		ActorID:      m.ActorID,
		Email:        m.Email,
		Role:         string(m.Role),
		RoleRank:     m.Role.Rank(),
		Status:       string(m.Status),
		InvitedBy:    m.InvitedBy,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		UpdatedBy:    m.UpdatedBy,
		AcceptedAt:   m.AcceptedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func wrapStoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domainerrors.ErrTransientStore, err)
}
