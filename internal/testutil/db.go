package testutil

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/auth"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database with the full schema.
// Each test gets its own database, so no cleanup between tests is needed.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Lead{},
		&domain.Contact{},
		&domain.Interaction{},
		&domain.LeadTransfer{},
	)
	require.NoError(t, err, "Failed to migrate test schema")

	return db
}

// CreateTestKam creates an active KAM user in the given timezone
func CreateTestKam(t *testing.T, db *gorm.DB, timezone string) *domain.User {
	user := &domain.User{
		Email:        gofakeit.Email(),
		PasswordHash: "x",
		Name:         gofakeit.Name(),
		Role:         domain.RoleKam,
		Timezone:     timezone,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestAdmin creates an active admin user
func CreateTestAdmin(t *testing.T, db *gorm.DB) *domain.User {
	user := &domain.User{
		Email:        gofakeit.Email(),
		PasswordHash: "x",
		Name:         gofakeit.Name(),
		Role:         domain.RoleAdmin,
		Timezone:     "UTC",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestLead creates a lead owned by the given KAM
func CreateTestLead(t *testing.T, db *gorm.DB, kamID uuid.UUID) *domain.Lead {
	lead := &domain.Lead{
		Name:          gofakeit.Company(),
		City:          gofakeit.City(),
		Status:        domain.LeadStatusNew,
		AssignedKamID: kamID,
		CallFrequency: domain.CallFrequencyWeekly,
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

// CreateTestContact creates a contact on the given lead
func CreateTestContact(t *testing.T, db *gorm.DB, leadID uuid.UUID, primary bool) *domain.Contact {
	contact := &domain.Contact{
		LeadID:    leadID,
		Name:      gofakeit.Name(),
		Role:      gofakeit.JobTitle(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		IsPrimary: primary,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// ContextFor returns a request context authenticated as the given user
func ContextFor(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Timezone:    user.Timezone,
	})
}
