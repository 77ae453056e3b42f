package consolidation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

func newGroupService() (*GroupService, *mockGroupRepository, *mockRunRepository) {
	groupRepo := new(mockGroupRepository)
	runRepo := new(mockRunRepository)
	return NewGroupService(groupRepo, runRepo), groupRepo, runRepo
}

func TestGroupService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates group with valid request", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		groupRepo.On("Save", ctx, mock.AnythingOfType("*consolidation.ConsolidationGroup")).Return(nil)

		resp, err := svc.Create(ctx, tenantID, CreateGroupRequest{
			Name:              "Nordic Holdings",
			ReportingCurrency: "EUR",
			DefaultMethod:     "FULL",
			ParentCompanyID:   uuid.New(),
		})

		require.NoError(t, err)
		assert.Equal(t, "Nordic Holdings", resp.Name)
		assert.Equal(t, "EUR", resp.ReportingCurrency)
		assert.Equal(t, tenantID, resp.TenantID)
		assert.True(t, resp.IsActive)
		assert.Empty(t, resp.Members)
		groupRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid reporting currency", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()

		_, err := svc.Create(ctx, tenantID, CreateGroupRequest{
			Name:              "Nordic Holdings",
			ReportingCurrency: "EURO",
			DefaultMethod:     "FULL",
			ParentCompanyID:   uuid.New(),
		})

		require.Error(t, err)
		groupRepo.AssertNotCalled(t, "Save")
	})
}

func TestGroupService_Members(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("adds member and persists with lock", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		groupRepo.On("SaveWithLock", ctx, group).Return(nil)

		acquired := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		resp, err := svc.AddMember(ctx, tenantID, group.ID, AddMemberRequest{
			CompanyID:           uuid.New(),
			CompanyName:         "Nordic Subsidiary AB",
			OwnershipPercentage: decimal.NewFromInt(80),
			Method:              "FULL",
			FunctionalCurrency:  "SEK",
			AcquisitionDate:     &acquired,
		})

		require.NoError(t, err)
		require.Len(t, resp.Members, 1)
		assert.Equal(t, "Nordic Subsidiary AB", resp.Members[0].CompanyName)
		assert.True(t, resp.Members[0].OwnershipPercentage.Equal(decimal.NewFromInt(80)))
		groupRepo.AssertExpectations(t)
	})

	t.Run("rejects ownership outside range", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)

		_, err := svc.AddMember(ctx, tenantID, group.ID, AddMemberRequest{
			CompanyID:           uuid.New(),
			CompanyName:         "Nordic Subsidiary AB",
			OwnershipPercentage: decimal.NewFromInt(120),
			Method:              "FULL",
			FunctionalCurrency:  "SEK",
		})

		require.Error(t, err)
		groupRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("updates member stake", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		group := newActiveGroup(tenantID)
		companyID := uuid.New()
		addTestMember(t, group, companyID, "80")
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		groupRepo.On("SaveWithLock", ctx, group).Return(nil)

		resp, err := svc.UpdateMember(ctx, tenantID, group.ID, companyID, UpdateMemberRequest{
			OwnershipPercentage: decimal.NewFromInt(60),
			Method:              "FULL",
		})

		require.NoError(t, err)
		assert.True(t, resp.Members[0].OwnershipPercentage.Equal(decimal.NewFromInt(60)))
	})

	t.Run("removes member", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		group := newActiveGroup(tenantID)
		companyID := uuid.New()
		addTestMember(t, group, companyID, "80")
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		groupRepo.On("SaveWithLock", ctx, group).Return(nil)

		resp, err := svc.RemoveMember(ctx, tenantID, group.ID, companyID)

		require.NoError(t, err)
		assert.Empty(t, resp.Members)
	})
}

func TestGroupService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes group without completed runs", func(t *testing.T) {
		svc, groupRepo, runRepo := newGroupService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		runRepo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("consolidation.RunFilter")).Return(int64(0), nil)
		groupRepo.On("Delete", ctx, tenantID, group.ID).Return(nil)

		err := svc.Delete(ctx, tenantID, group.ID)

		require.NoError(t, err)
		groupRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete group with completed runs", func(t *testing.T) {
		svc, groupRepo, runRepo := newGroupService()
		group := newActiveGroup(tenantID)
		groupRepo.On("FindByIDForTenant", ctx, tenantID, group.ID).Return(group, nil)
		runRepo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("consolidation.RunFilter")).Return(int64(2), nil)

		err := svc.Delete(ctx, tenantID, group.ID)

		assert.ErrorIs(t, err, consolidation.ErrGroupHasCompletedRuns)
		groupRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("propagates not found", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		id := uuid.New()
		groupRepo.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

		err := svc.Delete(ctx, tenantID, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGroupService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns paginated groups", func(t *testing.T) {
		svc, groupRepo, _ := newGroupService()
		groups := []consolidation.ConsolidationGroup{*newActiveGroup(tenantID), *newActiveGroup(tenantID)}
		groupRepo.On("FindAllForTenant", ctx, tenantID, mock.AnythingOfType("consolidation.GroupFilter")).Return(groups, nil)
		groupRepo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("consolidation.GroupFilter")).Return(int64(2), nil)

		result, err := svc.List(ctx, tenantID, GroupListFilter{Page: 1, PageSize: 20})

		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
		assert.Equal(t, int64(2), result.Total)
	})
}

func addTestMember(t *testing.T, group *consolidation.ConsolidationGroup, companyID uuid.UUID, ownership string) {
	t.Helper()
	pct, err := valueobject.NewPercentageFromString(ownership)
	require.NoError(t, err)
	_, err = group.AddMember(companyID, "Member Co", pct, consolidation.MethodFull, "SEK", nil)
	require.NoError(t, err)
}
