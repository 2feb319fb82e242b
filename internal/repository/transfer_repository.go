package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"gorm.io/gorm"
)

// TransferRepository reads the append-only ownership history. Rows are only
// written inside transfer transactions, directly on the tx handle.
type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadTransfer, error) {
	var transfers []domain.LeadTransfer
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at ASC").
		Find(&transfers).Error
	return transfers, err
}
