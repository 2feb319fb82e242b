package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/mapper"
	"github.com/kamtrack/lead-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactService struct {
	db          *gorm.DB
	contactRepo *repository.ContactRepository
	leadRepo    *repository.LeadRepository
	logger      *zap.Logger
}

func NewContactService(
	db *gorm.DB,
	contactRepo *repository.ContactRepository,
	leadRepo *repository.LeadRepository,
	logger *zap.Logger,
) *ContactService {
	return &ContactService{
		db:          db,
		contactRepo: contactRepo,
		leadRepo:    leadRepo,
		logger:      logger,
	}
}

// Add creates a contact on the lead. Marking it primary demotes any existing
// primary in the same transaction, so a lead never has two.
func (s *ContactService) Add(ctx context.Context, leadID uuid.UUID, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	lead, err := s.accessLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		LeadID:    lead.ID,
		Name:      req.Name,
		Role:      req.Role,
		Email:     req.Email,
		Phone:     req.Phone,
		IsPrimary: req.IsPrimary,
	}

	// First contact on a lead becomes primary even when not requested.
	existing, err := s.contactRepo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	if len(existing) == 0 {
		contact.IsPrimary = true
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if contact.IsPrimary {
			if err := repository.ClearPrimary(tx, leadID); err != nil {
				return fmt.Errorf("failed to demote primary contact: %w", err)
			}
		}
		if err := tx.Create(contact).Error; err != nil {
			return fmt.Errorf("failed to create contact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact added",
		zap.String("lead_id", lead.ID.String()),
		zap.String("contact_id", contact.ID.String()),
		zap.Bool("is_primary", contact.IsPrimary))

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.ContactDTO, error) {
	if _, err := s.accessLead(ctx, leadID); err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}
	return dtos, nil
}

// SetPrimary promotes a contact, demoting the previous primary atomically.
func (s *ContactService) SetPrimary(ctx context.Context, leadID, contactID uuid.UUID) (*domain.ContactDTO, error) {
	if _, err := s.accessLead(ctx, leadID); err != nil {
		return nil, err
	}

	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", ErrNotFound, contactID)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact.LeadID != leadID {
		return nil, fmt.Errorf("%w: contact belongs to another lead", ErrInvalidInput)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.ClearPrimary(tx, leadID); err != nil {
			return fmt.Errorf("failed to demote primary contact: %w", err)
		}
		if err := tx.Model(&domain.Contact{}).
			Where("id = ?", contactID).
			Update("is_primary", true).Error; err != nil {
			return fmt.Errorf("failed to promote contact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	contact.IsPrimary = true
	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) Delete(ctx context.Context, leadID, contactID uuid.UUID) error {
	if _, err := s.accessLead(ctx, leadID); err != nil {
		return err
	}

	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contact %s", ErrNotFound, contactID)
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}
	if contact.LeadID != leadID {
		return fmt.Errorf("%w: contact belongs to another lead", ErrInvalidInput)
	}

	if err := s.contactRepo.Delete(ctx, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.logger.Info("contact deleted",
		zap.String("lead_id", leadID.String()),
		zap.String("contact_id", contactID.String()))
	return nil
}

func (s *ContactService) accessLead(ctx context.Context, leadID uuid.UUID) (*domain.Lead, error) {
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
	return lead, nil
}
