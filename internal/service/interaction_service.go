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

// metricsWindowDays is the rolling window for per-lead order metrics
const metricsWindowDays = 30

type InteractionService struct {
	db              *gorm.DB
	leadRepo        *repository.LeadRepository
	userRepo        *repository.UserRepository
	interactionRepo *repository.InteractionRepository
	contactRepo     *repository.ContactRepository
	logger          *zap.Logger
}

func NewInteractionService(
	db *gorm.DB,
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	interactionRepo *repository.InteractionRepository,
	contactRepo *repository.ContactRepository,
	logger *zap.Logger,
) *InteractionService {
	return &InteractionService{
		db:              db,
		leadRepo:        leadRepo,
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		contactRepo:     contactRepo,
		logger:          logger,
	}
}

// Record appends an interaction to the lead's timeline and applies its side
// effects in one transaction. A CALL reschedules the next call; an ORDER
// refreshes the lead's rolling order metrics. Validation failures leave
// nothing persisted.
func (s *InteractionService) Record(ctx context.Context, leadID uuid.UUID, req *domain.RecordInteractionRequest) (*domain.InteractionDTO, error) {
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

	if !req.Type.IsRecordable() {
		return nil, fmt.Errorf("%w: interaction type %s cannot be recorded directly", ErrInvalidInput, req.Type)
	}
	if req.Type == domain.InteractionTypeOrder && req.OrderValue < 0 {
		return nil, fmt.Errorf("%w: order value cannot be negative", ErrInvalidInput)
	}
	if req.Type != domain.InteractionTypeOrder && req.OrderValue != 0 {
		return nil, fmt.Errorf("%w: order value only allowed on orders", ErrInvalidInput)
	}
	if req.ContactID != nil {
		contact, err := s.contactRepo.GetByID(ctx, *req.ContactID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: contact %s", ErrNotFound, *req.ContactID)
			}
			return nil, fmt.Errorf("failed to get contact: %w", err)
		}
		if contact.LeadID != lead.ID {
			return nil, fmt.Errorf("%w: contact belongs to another lead", ErrInvalidInput)
		}
	}

	now := time.Now()
	interaction := &domain.Interaction{
		LeadID:     lead.ID,
		Type:       req.Type,
		ContactID:  req.ContactID,
		Notes:      req.Notes,
		Outcome:    req.Outcome,
		OrderValue: req.OrderValue,
		KamID:      userCtx.UserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interaction).Error; err != nil {
			return fmt.Errorf("failed to create interaction: %w", err)
		}

		switch req.Type {
		case domain.InteractionTypeCall:
			return s.applyCall(tx, lead, now, userCtx.Timezone)
		case domain.InteractionTypeOrder:
			return s.applyOrder(tx, lead, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("interaction recorded",
		zap.String("lead_id", lead.ID.String()),
		zap.String("type", string(req.Type)),
		zap.Float64("order_value", req.OrderValue))

	dto := mapper.ToInteractionDTO(interaction)
	return &dto, nil
}

// applyCall stamps the call and schedules the next one in the acting KAM's
// timezone, under the lead's version guard.
func (s *InteractionService) applyCall(tx *gorm.DB, lead *domain.Lead, now time.Time, timezone string) error {
	nextCall := schedule.NextCallDate(lead.CallFrequency, now, schedule.LoadLocation(timezone))

	rows, err := repository.UpdateLeadGuarded(tx, lead, map[string]interface{}{
		"last_call_date": now,
		"next_call_date": nextCall,
	})
	if err != nil {
		return fmt.Errorf("failed to reschedule lead: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: lead was modified concurrently", ErrConflict)
	}
	return nil
}

// applyOrder recomputes the rolling order metrics over the trailing window,
// including the order just written, under the lead's version guard.
func (s *InteractionService) applyOrder(tx *gorm.DB, lead *domain.Lead, now time.Time) error {
	windowStart := now.AddDate(0, 0, -metricsWindowDays)

	var orders []domain.Interaction
	err := tx.
		Where("lead_id = ? AND type = ? AND created_at >= ?", lead.ID, domain.InteractionTypeOrder, windowStart).
		Find(&orders).Error
	if err != nil {
		return fmt.Errorf("failed to load recent orders: %w", err)
	}

	var total float64
	for _, order := range orders {
		total += order.OrderValue
	}

	avgValue := 0.0
	if len(orders) > 0 {
		avgValue = total / float64(len(orders))
	}
	frequency := float64(len(orders)) / float64(metricsWindowDays)

	rows, err := repository.UpdateLeadGuarded(tx, lead, map[string]interface{}{
		"average_order_value": avgValue,
		"order_frequency":     frequency,
	})
	if err != nil {
		return fmt.Errorf("failed to update order metrics: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: lead was modified concurrently", ErrConflict)
	}
	return nil
}

func (s *InteractionService) ListByLead(ctx context.Context, leadID uuid.UUID, page, pageSize int) ([]domain.InteractionDTO, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: lead %s", ErrNotFound, leadID)
		}
		return nil, 0, fmt.Errorf("failed to get lead: %w", err)
	}
	if !userCtx.CanAccessLead(lead) {
		return nil, 0, fmt.Errorf("%w: lead belongs to another KAM", ErrPermissionDenied)
	}

	interactions, total, err := s.interactionRepo.ListByLead(ctx, leadID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list interactions: %w", err)
	}

	dtos := make([]domain.InteractionDTO, len(interactions))
	for i := range interactions {
		dtos[i] = mapper.ToInteractionDTO(&interactions[i])
	}
	return dtos, total, nil
}
