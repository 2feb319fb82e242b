package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"gorm.io/gorm"
)

// InteractionRepository is append-only: interactions are never updated or
// deleted once written.
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

func (r *InteractionRepository) ListByLead(ctx context.Context, leadID uuid.UUID, page, pageSize int) ([]domain.Interaction, int64, error) {
	var interactions []domain.Interaction
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Interaction{}).Where("lead_id = ?", leadID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Secondary key keeps equal-timestamp rows stable across pages.
	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order("created_at DESC, id DESC").
		Find(&interactions).Error

	return interactions, total, err
}

// ListByLeadsInWindow returns interactions across a set of leads inside
// [start, end), for portfolio-level aggregation.
func (r *InteractionRepository) ListByLeadsInWindow(ctx context.Context, leadIDs []uuid.UUID, start, end time.Time) ([]domain.Interaction, error) {
	if len(leadIDs) == 0 {
		return nil, nil
	}
	var interactions []domain.Interaction
	err := r.db.WithContext(ctx).
		Where("lead_id IN ? AND created_at >= ? AND created_at < ?", leadIDs, start, end).
		Order("created_at ASC, id ASC").
		Find(&interactions).Error
	return interactions, err
}

// OrdersInWindow returns only the lead's ORDER interactions inside
// [start, end), oldest first.
func (r *InteractionRepository) OrdersInWindow(ctx context.Context, leadID uuid.UUID, start, end time.Time) ([]domain.Interaction, error) {
	var interactions []domain.Interaction
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND type = ? AND created_at >= ? AND created_at < ?",
			leadID, domain.InteractionTypeOrder, start, end).
		Order("created_at ASC, id ASC").
		Find(&interactions).Error
	return interactions, err
}
