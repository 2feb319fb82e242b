package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRepository_Create_AssignsID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewInteractionRepository(db)

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	interaction := &domain.Interaction{
		LeadID: lead.ID,
		Type:   domain.InteractionTypeEmail,
		KamID:  kam.ID,
	}
	require.NoError(t, repo.Create(context.Background(), interaction))
	assert.NotEqual(t, uuid.Nil, interaction.ID)
}

func TestInteractionRepository_ListByLead_StableAcrossPages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewInteractionRepository(db)
	ctx := context.Background()

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	// Force identical timestamps so only the secondary sort key can keep
	// the pagination stable.
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := make(map[uuid.UUID]bool)
	for i := 0; i < 3; i++ {
		interaction := &domain.Interaction{
			LeadID: lead.ID,
			Type:   domain.InteractionTypeEmail,
			KamID:  kam.ID,
		}
		require.NoError(t, repo.Create(ctx, interaction))
		require.NoError(t, db.Model(interaction).Update("created_at", stamp).Error)
		created[interaction.ID] = true
	}

	seen := make(map[uuid.UUID]bool)
	for page := 1; page <= 2; page++ {
		interactions, total, err := repo.ListByLead(ctx, lead.ID, page, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, in := range interactions {
			assert.False(t, seen[in.ID], "interaction repeated across pages")
			seen[in.ID] = true
		}
	}
	assert.Equal(t, created, seen)
}

func TestInteractionRepository_OrdersInWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewInteractionRepository(db)
	ctx := context.Background()

	kam := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, kam.ID)

	now := time.Now()
	inside := &domain.Interaction{LeadID: lead.ID, Type: domain.InteractionTypeOrder, OrderValue: 250, KamID: kam.ID}
	require.NoError(t, repo.Create(ctx, inside))

	outside := &domain.Interaction{LeadID: lead.ID, Type: domain.InteractionTypeOrder, OrderValue: 900, KamID: kam.ID}
	require.NoError(t, repo.Create(ctx, outside))
	require.NoError(t, db.Model(outside).Update("created_at", now.AddDate(0, 0, -45)).Error)

	call := &domain.Interaction{LeadID: lead.ID, Type: domain.InteractionTypeCall, KamID: kam.ID}
	require.NoError(t, repo.Create(ctx, call))

	orders, err := repo.OrdersInWindow(ctx, lead.ID, now.AddDate(0, 0, -30), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, inside.ID, orders[0].ID)
}
