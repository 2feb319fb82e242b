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

type LeadService struct {
	db       *gorm.DB
	leadRepo *repository.LeadRepository
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewLeadService(
	db *gorm.DB,
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		db:       db,
		leadRepo: leadRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	ownerID := userCtx.UserID
	if req.AssignedKamID != nil {
		ownerID = *req.AssignedKamID
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assigned KAM not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load assigned KAM: %w", err)
	}
	if !owner.CanOwnLeads() {
		return nil, fmt.Errorf("%w: assigned user cannot own leads", ErrInvalidInput)
	}

	frequency := req.CallFrequency
	if frequency == "" {
		frequency = domain.CallFrequencyWeekly
	}

	now := time.Now()
	loc := schedule.LoadLocation(owner.Timezone)
	nextCall := schedule.NextCallDate(frequency, now, loc)

	lead := &domain.Lead{
		Name:          req.Name,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
		Status:        domain.LeadStatusNew,
		AssignedKamID: owner.ID,
		CallFrequency: frequency,
		LastCallDate:  &now,
		NextCallDate:  &nextCall,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("assigned_kam_id", owner.ID.String()),
		zap.String("call_frequency", string(frequency)))

	lead.AssignedKam = owner
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.loadOwnedLead(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

func (s *LeadService) List(ctx context.Context, page, pageSize int, search string) ([]domain.LeadDTO, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUnauthorized
	}

	var leads []domain.Lead
	var total int64
	var err error

	if userCtx.IsAdmin() {
		leads, total, err = s.leadRepo.List(ctx, page, pageSize, search)
	} else {
		leads, total, err = s.leadRepo.ListByKam(ctx, userCtx.UserID, page, pageSize, search)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, total, nil
}

func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.loadOwnedLead(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Street != nil {
		updates["street"] = *req.Street
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.ZipCode != nil {
		updates["zip_code"] = *req.ZipCode
	}

	// A cadence change reschedules the next call from the last one, in the
	// owner's timezone.
	if req.CallFrequency != nil && *req.CallFrequency != lead.CallFrequency {
		owner, err := s.userRepo.GetByID(ctx, lead.AssignedKamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lead owner: %w", err)
		}
		ref := time.Now()
		if lead.LastCallDate != nil {
			ref = *lead.LastCallDate
		}
		nextCall := schedule.NextCallDate(*req.CallFrequency, ref, schedule.LoadLocation(owner.Timezone))
		updates["call_frequency"] = *req.CallFrequency
		updates["next_call_date"] = nextCall
	}

	if len(updates) == 0 {
		dto := mapper.ToLeadDTO(lead)
		return &dto, nil
	}

	rows, err := repository.UpdateLeadGuarded(s.db.WithContext(ctx), lead, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: lead was modified concurrently", ErrConflict)
	}

	updated, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	dto := mapper.ToLeadDTO(updated)
	return &dto, nil
}

// UpdateStatus moves the lead through the funnel and writes the change to the
// interaction timeline in the same transaction.
func (s *LeadService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadStatusRequest) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.loadOwnedLead(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := lead.Status
	if oldStatus == req.Status {
		dto := mapper.ToLeadDTO(lead)
		return &dto, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := repository.UpdateLeadGuarded(tx, lead, map[string]interface{}{
			"status": req.Status,
		})
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: lead was modified concurrently", ErrConflict)
		}

		audit := &domain.Interaction{
			LeadID:  lead.ID,
			Type:    domain.InteractionTypeStatusChange,
			Outcome: fmt.Sprintf("%s -> %s", oldStatus, req.Status),
			Notes:   req.Notes,
			KamID:   userCtx.UserID,
		}
		if err := tx.Create(audit).Error; err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead status changed",
		zap.String("lead_id", lead.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(req.Status)))

	updated, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	dto := mapper.ToLeadDTO(updated)
	return &dto, nil
}

func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadOwnedLead(ctx, id); err != nil {
		return err
	}

	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	s.logger.Info("lead deleted", zap.String("lead_id", id.String()))
	return nil
}

// TodayCalls returns the caller's leads due for a call today, including
// overdue ones. "Today" ends at local midnight in the caller's timezone.
func (s *LeadService) TodayCalls(ctx context.Context) ([]domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	loc := schedule.LoadLocation(user.Timezone)
	endOfDay := schedule.StartOfDay(time.Now().In(loc), loc).AddDate(0, 0, 1)

	leads, err := s.leadRepo.ListDueBy(ctx, userCtx.UserID, endOfDay)
	if err != nil {
		return nil, fmt.Errorf("failed to list due leads: %w", err)
	}

	dtos := make([]domain.LeadDTO, len(leads))
	for i := range leads {
		dtos[i] = mapper.ToLeadDTO(&leads[i])
	}
	return dtos, nil
}

// loadOwnedLead fetches the lead and enforces book-of-business access.
func (s *LeadService) loadOwnedLead(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !userCtx.CanAccessLead(lead) {
		return nil, fmt.Errorf("%w: lead belongs to another KAM", ErrPermissionDenied)
	}
	return lead, nil
}
