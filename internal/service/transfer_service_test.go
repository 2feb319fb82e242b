package service_test

import (
	"testing"
	"time"

	"github.com/kamtrack/lead-api/internal/domain"
	"github.com/kamtrack/lead-api/internal/repository"
	"github.com/kamtrack/lead-api/internal/service"
	"github.com/kamtrack/lead-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createTransferService(db *gorm.DB) *service.TransferService {
	leadRepo := repository.NewLeadRepository(db)
	userRepo := repository.NewUserRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	return service.NewTransferService(db, leadRepo, userRepo, transferRepo, zap.NewNop())
}

func TestTransferService_Reassign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	owner := testutil.CreateTestKam(t, db, "UTC")
	target := testutil.CreateTestKam(t, db, "America/New_York")
	lead := testutil.CreateTestLead(t, db, owner.ID)

	dto, err := svc.Reassign(testutil.ContextFor(owner), lead.ID, &domain.ReassignLeadRequest{
		NewKamID: target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, dto.AssignedKamID)

	// Next call rescheduled in the new owner's timezone
	require.NotNil(t, dto.NextCallDate)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	local := dto.NextCallDate.In(loc)
	assert.Equal(t, 0, local.Hour())
	assert.Equal(t, 0, local.Minute())

	// Single reassign leaves a KAM_CHANGE on the timeline, nothing in
	// the transfer history
	var interactions []domain.Interaction
	require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&interactions).Error)
	require.Len(t, interactions, 1)
	assert.Equal(t, domain.InteractionTypeKamChange, interactions[0].Type)
	assert.Equal(t, owner.ID.String()+" -> "+target.ID.String(), interactions[0].Outcome)

	var historyCount int64
	require.NoError(t, db.Model(&domain.LeadTransfer{}).Where("lead_id = ?", lead.ID).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)
}

func TestTransferService_Reassign_SameKamNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	owner := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, owner.ID)

	dto, err := svc.Reassign(testutil.ContextFor(owner), lead.ID, &domain.ReassignLeadRequest{
		NewKamID: owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, dto.AssignedKamID)

	var count int64
	require.NoError(t, db.Model(&domain.Interaction{}).Where("lead_id = ?", lead.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTransferService_Reassign_InvalidTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	owner := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, owner.ID)
	ctx := testutil.ContextFor(owner)

	// Admins cannot own leads
	admin := testutil.CreateTestAdmin(t, db)
	_, err := svc.Reassign(ctx, lead.ID, &domain.ReassignLeadRequest{NewKamID: admin.ID})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	// Neither can a deactivated KAM
	inactive := testutil.CreateTestKam(t, db, "UTC")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	_, err = svc.Reassign(ctx, lead.ID, &domain.ReassignLeadRequest{NewKamID: inactive.ID})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTransferService_Reassign_DeniesOtherKam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	owner := testutil.CreateTestKam(t, db, "UTC")
	outsider := testutil.CreateTestKam(t, db, "UTC")
	target := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, owner.ID)

	_, err := svc.Reassign(testutil.ContextFor(outsider), lead.ID, &domain.ReassignLeadRequest{
		NewKamID: target.ID,
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestTransferService_TransferAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "Europe/Oslo")

	var leadIDs []interface{}
	for i := 0; i < 3; i++ {
		lead := testutil.CreateTestLead(t, db, from.ID)
		leadIDs = append(leadIDs, lead.ID)
	}
	keeper := testutil.CreateTestLead(t, db, to.ID)

	transferred, err := svc.TransferAll(testutil.ContextFor(admin), from.ID, to.ID)
	require.NoError(t, err)
	require.Len(t, transferred, 3)
	for _, dto := range transferred {
		assert.Equal(t, to.ID, dto.AssignedKamID)
	}

	// Every lead moved and carries a history row plus an audit interaction
	var moved int64
	require.NoError(t, db.Model(&domain.Lead{}).Where("assigned_kam_id = ?", to.ID).Count(&moved).Error)
	assert.Equal(t, int64(4), moved)

	var historyCount int64
	require.NoError(t, db.Model(&domain.LeadTransfer{}).Where("lead_id IN ?", leadIDs).Count(&historyCount).Error)
	assert.Equal(t, int64(3), historyCount)

	var auditCount int64
	require.NoError(t, db.Model(&domain.Interaction{}).
		Where("lead_id IN ? AND type = ?", leadIDs, domain.InteractionTypeKamTransfer).
		Count(&auditCount).Error)
	assert.Equal(t, int64(3), auditCount)

	// The target's original lead was untouched
	var keeperReloaded domain.Lead
	require.NoError(t, db.First(&keeperReloaded, "id = ?", keeper.ID).Error)
	assert.Equal(t, keeper.Version, keeperReloaded.Version)
}

func TestTransferService_TransferAll_InactiveSource(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, from.ID)
	require.NoError(t, db.Model(from).Update("is_active", false).Error)

	_, err := svc.TransferAll(testutil.ContextFor(admin), from.ID, to.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	var reloaded domain.Lead
	require.NoError(t, db.First(&reloaded, "id = ?", lead.ID).Error)
	assert.Equal(t, from.ID, reloaded.AssignedKamID)
}

func TestTransferService_TransferAll_MidBatchConflictRollsBackEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "UTC")

	for i := 0; i < 3; i++ {
		testutil.CreateTestLead(t, db, from.ID)
	}

	// Simulate a concurrent writer: when the first transfer history row is
	// written, bump the version of every lead still on the source KAM so
	// the next guarded update in the batch hits a stale version.
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("concurrent_version_bump", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*domain.LeadTransfer); ok && !fired {
			fired = true
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE leads SET version = version + 1 WHERE assigned_kam_id = ?", from.ID)
		}
	})
	require.NoError(t, err)

	_, err = svc.TransferAll(testutil.ContextFor(admin), from.ID, to.ID)
	require.ErrorIs(t, err, service.ErrConflict)
	assert.True(t, fired)

	// All-or-nothing: no lead changed owner and no audit rows survived
	var stillOwned int64
	require.NoError(t, db.Model(&domain.Lead{}).Where("assigned_kam_id = ?", from.ID).Count(&stillOwned).Error)
	assert.Equal(t, int64(3), stillOwned)

	var historyCount int64
	require.NoError(t, db.Model(&domain.LeadTransfer{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)

	var auditCount int64
	require.NoError(t, db.Model(&domain.Interaction{}).
		Where("type = ?", domain.InteractionTypeKamTransfer).
		Count(&auditCount).Error)
	assert.Equal(t, int64(0), auditCount)
}

func TestTransferService_TransferAll_RequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "UTC")

	_, err := svc.TransferAll(testutil.ContextFor(from), from.ID, to.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestTransferService_TransferAll_SameKam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	kam := testutil.CreateTestKam(t, db, "UTC")

	_, err := svc.TransferAll(testutil.ContextFor(admin), kam.ID, kam.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestTransferService_TransferAll_EmptyBook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "UTC")

	transferred, err := svc.TransferAll(testutil.ContextFor(admin), from.ID, to.ID)
	require.NoError(t, err)
	assert.Empty(t, transferred)
}

func TestTransferService_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createTransferService(db)

	admin := testutil.CreateTestAdmin(t, db)
	from := testutil.CreateTestKam(t, db, "UTC")
	to := testutil.CreateTestKam(t, db, "UTC")
	lead := testutil.CreateTestLead(t, db, from.ID)

	_, err := svc.TransferAll(testutil.ContextFor(admin), from.ID, to.ID)
	require.NoError(t, err)

	history, err := svc.History(testutil.ContextFor(to), lead.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, from.ID, history[0].FromKamID)
	assert.Equal(t, to.ID, history[0].ToKamID)
}
