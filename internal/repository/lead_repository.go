package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"gorm.io/gorm"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("AssignedKam").
		Preload("Contacts").
		Preload("TransferHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Lead, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&domain.Lead{}), page, pageSize, search)
}

func (r *LeadRepository) ListByKam(ctx context.Context, kamID uuid.UUID, page, pageSize int, search string) ([]domain.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("assigned_kam_id = ?", kamID)
	return r.list(ctx, query, page, pageSize, search)
}

func (r *LeadRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int, search string) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?)", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("AssignedKam").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&leads).Error

	return leads, total, err
}

// ListOwned returns every lead assigned to the KAM, without paging.
// Used by bulk transfer and by the deactivation guard.
func (r *LeadRepository) ListOwned(ctx context.Context, kamID uuid.UUID) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("assigned_kam_id = ?", kamID).
		Order("created_at ASC").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) CountByKam(ctx context.Context, kamID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("assigned_kam_id = ?", kamID).
		Count(&count).Error
	return count, err
}

// ListDueBy returns the KAM's leads whose next call falls on or before the
// cutoff. Overdue leads are included so missed calls keep surfacing.
func (r *LeadRepository) ListDueBy(ctx context.Context, kamID uuid.UUID, cutoff time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Contacts", "is_primary = ?", true).
		Where("assigned_kam_id = ? AND next_call_date IS NOT NULL AND next_call_date <= ?", kamID, cutoff).
		Order("next_call_date ASC").
		Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}

// WithTransaction executes operations within a transaction
func (r *LeadRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// UpdateLeadGuarded applies the updates only if the lead's version still
// matches, bumping the version in the same statement. It returns the number
// of rows changed: zero means a concurrent writer got there first and the
// caller must treat the operation as a conflict. The handle may be a
// transaction so multi-step mutations share the guard.
func UpdateLeadGuarded(db *gorm.DB, lead *domain.Lead, updates map[string]interface{}) (int64, error) {
	updates["version"] = lead.Version + 1
	res := db.Model(&domain.Lead{}).
		Where("id = ? AND version = ?", lead.ID, lead.Version).
		Updates(updates)
	return res.RowsAffected, res.Error
}
