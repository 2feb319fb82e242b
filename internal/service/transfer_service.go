package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/mapper"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/schedule"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransferService moves lead ownership between KAMs, atomically and with an
// audit trail.
type TransferService struct {
	db           *gorm.DB
	leadRepo     *repository.LeadRepository
	userRepo     *repository.UserRepository
	transferRepo *repository.TransferRepository
	logger       *zap.Logger
}

func NewTransferService(
	db *gorm.DB,
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	transferRepo *repository.TransferRepository,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		db:           db,
		leadRepo:     leadRepo,
		userRepo:     userRepo,
		transferRepo: transferRepo,
		logger:       logger,
	}
}

// Reassign moves a single lead to a new KAM. The next call is rescheduled in
// the new owner's timezone and the change lands on the interaction timeline.
func (s *TransferService) Reassign(ctx context.Context, leadID uuid.UUID, req *domain.ReassignLeadRequest) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, leadID)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if !userCtx.CanAccessLead(lead) {
		return nil, fmt.Errorf("%w: lead belongs to another KAM", ErrPermissionDenied)
	}

	if req.NewKamID == lead.AssignedKamID {
		dto := mapper.ToLeadDTO(lead)
		return &dto, nil
	}

	newKam, err := s.validateTarget(ctx, req.NewKamID)
	if err != nil {
		return nil, err
	}

	oldKamID := lead.AssignedKamID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.transferLead(tx, lead, oldKamID, newKam, userCtx.UserID, domain.InteractionTypeKamChange, false)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead reassigned",
		zap.String("lead_id", lead.ID.String()),
		zap.String("from_kam_id", oldKamID.String()),
		zap.String("to_kam_id", newKam.ID.String()))

	updated, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	dto := mapper.ToLeadDTO(updated)
	return &dto, nil
}

// TransferAll moves every lead owned by one KAM to another in a single
// transaction. Either the whole book moves or none of it does. Returns the
// transferred leads in their new state.
func (s *TransferService) TransferAll(ctx context.Context, fromKamID, toKamID uuid.UUID) ([]domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.IsAdmin() {
		return nil, fmt.Errorf("%w: bulk transfer requires admin", ErrPermissionDenied)
	}
	if fromKamID == toKamID {
		return nil, fmt.Errorf("%w: source and target KAM are the same", ErrInvalidInput)
	}

	fromKam, err := s.userRepo.GetByID(ctx, fromKamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: source KAM not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load source KAM: %w", err)
	}
	if !fromKam.CanOwnLeads() {
		return nil, fmt.Errorf("%w: source user is not an active KAM", ErrInvalidInput)
	}

	toKam, err := s.validateTarget(ctx, toKamID)
	if err != nil {
		return nil, err
	}

	leads, err := s.leadRepo.ListOwned(ctx, fromKamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	if len(leads) == 0 {
		return []domain.LeadDTO{}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range leads {
			if err := s.transferLead(tx, &leads[i], fromKamID, toKam, userCtx.UserID, domain.InteractionTypeKamTransfer, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book of business transferred",
		zap.String("from_kam_id", fromKamID.String()),
		zap.String("to_kam_id", toKamID.String()),
		zap.Int("lead_count", len(leads)))

	dtos := make([]domain.LeadDTO, 0, len(leads))
	for i := range leads {
		updated, err := s.leadRepo.GetByID(ctx, leads[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload lead: %w", err)
		}
		dtos = append(dtos, mapper.ToLeadDTO(updated))
	}
	return dtos, nil
}

// History returns the ownership audit trail for a lead, oldest first.
func (s *TransferService) History(ctx context.Context, leadID uuid.UUID) ([]domain.LeadTransferDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, leadID)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if !userCtx.CanAccessLead(lead) {
		return nil, fmt.Errorf("%w: lead belongs to another KAM", ErrPermissionDenied)
	}

	transfers, err := s.transferRepo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	dtos := make([]domain.LeadTransferDTO, len(transfers))
	for i := range transfers {
		dtos[i] = mapper.ToLeadTransferDTO(&transfers[i])
	}
	return dtos, nil
}

// validateTarget checks that the receiving user exists and can own leads.
func (s *TransferService) validateTarget(ctx context.Context, kamID uuid.UUID) (*domain.User, error) {
	kam, err := s.userRepo.GetByID(ctx, kamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: target KAM not found", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load target KAM: %w", err)
	}
	if !kam.CanOwnLeads() {
		return nil, fmt.Errorf("%w: target user cannot own leads", ErrInvalidInput)
	}
	return kam, nil
}

// transferLead applies one ownership change inside the caller's transaction:
// a guarded lead update, a timeline entry, and for bulk transfers a history
// row.
func (s *TransferService) transferLead(tx *gorm.DB, lead *domain.Lead, fromKamID uuid.UUID, toKam *domain.User, actorID uuid.UUID, auditType domain.InteractionType, recordHistory bool) error {
	ref := time.Now()
	if lead.LastCallDate != nil {
		ref = *lead.LastCallDate
	}
	nextCall := schedule.NextCallDate(lead.CallFrequency, ref, schedule.LoadLocation(toKam.Timezone))

	rows, err := repository.UpdateLeadGuarded(tx, lead, map[string]interface{}{
		"assigned_kam_id": toKam.ID,
		"next_call_date":  nextCall,
	})
	if err != nil {
		return fmt.Errorf("failed to reassign lead: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: lead was modified concurrently", ErrConflict)
	}

	if recordHistory {
		transfer := &domain.LeadTransfer{
			LeadID:    lead.ID,
			FromKamID: fromKamID,
			ToKamID:   toKam.ID,
		}
		if err := tx.Create(transfer).Error; err != nil {
			return fmt.Errorf("failed to record transfer: %w", err)
		}
	}

	audit := &domain.Interaction{
		LeadID:  lead.ID,
		Type:    auditType,
		Outcome: fmt.Sprintf("%s -> %s", fromKamID, toKam.ID),
		KamID:   actorID,
	}
	if err := tx.Create(audit).Error; err != nil {
		return fmt.Errorf("failed to record transfer interaction: %w", err)
	}
	return nil
}
