package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
	"github.com/groupclose/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupConsolidationTestDB creates an in-memory database with all
// consolidation tables migrated
func setupConsolidationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ConsolidationGroupModel{},
		&models.EliminationRuleModel{},
		&models.ConsolidationRunModel{},
		&models.TrialBalanceModel{},
		&models.AccountBalanceModel{},
		&models.IntercompanyTransactionModel{},
	)
	require.NoError(t, err)

	return db
}

func newPersistedGroup(t *testing.T, tenantID uuid.UUID) *consolidation.ConsolidationGroup {
	t.Helper()
	group, err := consolidation.NewConsolidationGroup(
		tenantID, "Nordic Holdings", valueobject.Currency("EUR"),
		consolidation.MethodFull, uuid.New(),
	)
	require.NoError(t, err)
	return group
}

func TestGormConsolidationGroupRepository_SaveAndFind(t *testing.T) {
	db := setupConsolidationTestDB(t)
	repo := NewGormConsolidationGroupRepository(db)
	ctx := context.Background()

	t.Run("round-trips a group with its member roster", func(t *testing.T) {
		tenantID := uuid.New()
		group := newPersistedGroup(t, tenantID)

		ownership, err := valueobject.NewPercentageFromString("80")
		require.NoError(t, err)
		acquired := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err = group.AddMember(uuid.New(), "Oslo Manufacturing AS", ownership,
			consolidation.MethodFull, valueobject.Currency("NOK"), &acquired)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, group))

		found, err := repo.FindByIDForTenant(ctx, tenantID, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nordic Holdings", found.Name)
		assert.Equal(t, valueobject.Currency("EUR"), found.ReportingCurrency)
		assert.Equal(t, consolidation.MethodFull, found.DefaultMethod)
		assert.True(t, found.IsActive)
		require.Len(t, found.Members, 1)
		assert.Equal(t, "Oslo Manufacturing AS", found.Members[0].CompanyName)
		assert.True(t, found.Members[0].OwnershipPercentage.Equals(ownership))
		assert.Equal(t, valueobject.Currency("NOK"), found.Members[0].FunctionalCurrency)
	})

	t.Run("returns ErrNotFound for a group in another tenant", func(t *testing.T) {
		group := newPersistedGroup(t, uuid.New())
		require.NoError(t, repo.Save(ctx, group))

		found, err := repo.FindByIDForTenant(ctx, uuid.New(), group.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, found)
	})

	t.Run("returns ErrNotFound for unknown ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, found)
	})
}

func TestGormConsolidationGroupRepository_FindAllForTenant(t *testing.T) {
	db := setupConsolidationTestDB(t)
	repo := NewGormConsolidationGroupRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	groupA := newPersistedGroup(t, tenantID)
	require.NoError(t, groupA.Rename("Alpha Group"))
	require.NoError(t, repo.Save(ctx, groupA))

	groupB := newPersistedGroup(t, tenantID)
	require.NoError(t, groupB.Rename("Beta Group"))
	require.NoError(t, groupB.Deactivate())
	require.NoError(t, repo.Save(ctx, groupB))

	otherTenant := newPersistedGroup(t, uuid.New())
	require.NoError(t, repo.Save(ctx, otherTenant))

	t.Run("lists only the tenant's groups ordered by name", func(t *testing.T) {
		groups, err := repo.FindAllForTenant(ctx, tenantID, consolidation.GroupFilter{})
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Alpha Group", groups[0].Name)
		assert.Equal(t, "Beta Group", groups[1].Name)
	})

	t.Run("filters by active flag", func(t *testing.T) {
		active := true
		groups, err := repo.FindAllForTenant(ctx, tenantID, consolidation.GroupFilter{IsActive: &active})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Alpha Group", groups[0].Name)
	})

	t.Run("counts with the same filter semantics", func(t *testing.T) {
		count, err := repo.CountForTenant(ctx, tenantID, consolidation.GroupFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		inactive := false
		count, err = repo.CountForTenant(ctx, tenantID, consolidation.GroupFilter{IsActive: &inactive})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("paginates", func(t *testing.T) {
		filter := consolidation.GroupFilter{}
		filter.Page = 2
		filter.PageSize = 1
		groups, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Beta Group", groups[0].Name)
	})
}

func TestGormConsolidationGroupRepository_SaveWithLock(t *testing.T) {
	db := setupConsolidationTestDB(t)
	repo := NewGormConsolidationGroupRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("persists a version-bumped update", func(t *testing.T) {
		group := newPersistedGroup(t, tenantID)
		require.NoError(t, repo.Save(ctx, group))

		require.NoError(t, group.Rename("Nordic Holdings Europe"))
		require.NoError(t, repo.SaveWithLock(ctx, group))

		found, err := repo.FindByIDForTenant(ctx, tenantID, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nordic Holdings Europe", found.Name)
		assert.Equal(t, group.Version, found.Version)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		group := newPersistedGroup(t, tenantID)
		require.NoError(t, repo.Save(ctx, group))

		stale := *group
		require.NoError(t, group.Rename("First Writer"))
		require.NoError(t, repo.SaveWithLock(ctx, group))

		require.NoError(t, stale.Rename("Second Writer"))
		err := repo.SaveWithLock(ctx, &stale)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
	})
}

func TestGormConsolidationGroupRepository_Delete(t *testing.T) {
	db := setupConsolidationTestDB(t)
	repo := NewGormConsolidationGroupRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes an existing group", func(t *testing.T) {
		group := newPersistedGroup(t, tenantID)
		require.NoError(t, repo.Save(ctx, group))

		require.NoError(t, repo.Delete(ctx, tenantID, group.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, group.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns ErrNotFound for a missing group", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
