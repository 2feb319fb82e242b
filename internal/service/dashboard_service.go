package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/analytics"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/schedule"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultWindowDays is the reporting window when the caller doesn't pick one
const defaultWindowDays = 30

type DashboardService struct {
	leadRepo        *repository.LeadRepository
	userRepo        *repository.UserRepository
	interactionRepo *repository.InteractionRepository
	logger          *zap.Logger
}

func NewDashboardService(
	leadRepo *repository.LeadRepository,
	userRepo *repository.UserRepository,
	interactionRepo *repository.InteractionRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		leadRepo:        leadRepo,
		userRepo:        userRepo,
		interactionRepo: interactionRepo,
		logger:          logger,
	}
}

// GetLeadPerformance computes the lead's order statistics over the trailing
// window, bucketed in the owner's timezone.
func (s *DashboardService) GetLeadPerformance(ctx context.Context, leadID uuid.UUID, windowDays int) (*domain.LeadPerformance, error) {
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

	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}

	timezone := "UTC"
	if lead.AssignedKam != nil {
		timezone = lead.AssignedKam.Timezone
	}
	loc := schedule.LoadLocation(timezone)

	end := time.Now()
	start := end.AddDate(0, 0, -windowDays)

	orders, err := s.interactionRepo.OrdersInWindow(ctx, leadID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	perf := analytics.LeadMetrics(orders, start, end, loc)
	return &perf, nil
}

// GetKamDashboard aggregates a KAM's whole book over the trailing window.
// KAMs see their own dashboard; admins can see anyone's.
func (s *DashboardService) GetKamDashboard(ctx context.Context, kamID uuid.UUID, windowDays int) (*domain.KamDashboard, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.IsAdmin() && userCtx.UserID != kamID {
		return nil, fmt.Errorf("%w: cannot view another KAM's dashboard", ErrPermissionDenied)
	}

	if _, err := s.userRepo.GetByID(ctx, kamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, kamID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	end := time.Now()
	start := end.AddDate(0, 0, -windowDays)

	leads, interactions, err := s.loadBook(ctx, kamID, start, end)
	if err != nil {
		return nil, err
	}

	dashboard := analytics.KamMetrics(leads, interactions, start, end)
	return &dashboard, nil
}

// GetKamStats returns the fixed 30-day activity summary for a user profile.
func (s *DashboardService) GetKamStats(ctx context.Context, kamID uuid.UUID) (*domain.KamStats, error) {
	if _, err := s.userRepo.GetByID(ctx, kamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, kamID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -defaultWindowDays)

	leads, interactions, err := s.loadBook(ctx, kamID, start, end)
	if err != nil {
		return nil, err
	}

	stats := analytics.KamStats(leads, interactions)
	return &stats, nil
}

func (s *DashboardService) loadBook(ctx context.Context, kamID uuid.UUID, start, end time.Time) ([]domain.Lead, []domain.Interaction, error) {
	leads, err := s.leadRepo.ListOwned(ctx, kamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list leads: %w", err)
	}

	leadIDs := make([]uuid.UUID, len(leads))
	for i := range leads {
		leadIDs[i] = leads[i].ID
	}

	interactions, err := s.interactionRepo.ListByLeadsInWindow(ctx, leadIDs, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interactions: %w", err)
	}
	return leads, interactions, nil
}
