package consolidation

import (
	"context"

	"github.com/google/uuid"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

// GroupService handles consolidation group operations
type GroupService struct {
	groupRepo consolidation.ConsolidationGroupRepository
	runRepo   consolidation.ConsolidationRunRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groupRepo consolidation.ConsolidationGroupRepository,
	runRepo consolidation.ConsolidationRunRepository,
) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		runRepo:   runRepo,
	}
}

// Create creates a new consolidation group
func (s *GroupService) Create(ctx context.Context, tenantID uuid.UUID, req CreateGroupRequest) (*GroupResponse, error) {
	group, err := consolidation.NewConsolidationGroup(
		tenantID,
		req.Name,
		valueobject.Currency(req.ReportingCurrency),
		consolidation.ConsolidationMethod(req.DefaultMethod),
		req.ParentCompanyID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.groupRepo.Save(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// GetByID retrieves a consolidation group by ID
func (s *GroupService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToGroupResponse(group), nil
}

// List retrieves consolidation groups with pagination
func (s *GroupService) List(ctx context.Context, tenantID uuid.UUID, filter GroupListFilter) (*shared.Paginated[GroupResponse], error) {
	domainFilter := consolidation.GroupFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		},
		IsActive: filter.IsActive,
	}

	groups, err := s.groupRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.groupRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]GroupResponse, len(groups))
	for i := range groups {
		responses[i] = *ToGroupResponse(&groups[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Filter.Page, domainFilter.Filter.PageSize)
	return &result, nil
}

// Update renames a consolidation group
func (s *GroupService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := group.Rename(req.Name); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveWithLock(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// AddMember adds a company to the group roster
func (s *GroupService) AddMember(ctx context.Context, tenantID, groupID uuid.UUID, req AddMemberRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	ownership, err := valueobject.NewPercentage(req.OwnershipPercentage)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_OWNERSHIP", err.Error())
	}

	if _, err := group.AddMember(
		req.CompanyID,
		req.CompanyName,
		ownership,
		consolidation.ConsolidationMethod(req.Method),
		valueobject.Currency(req.FunctionalCurrency),
		req.AcquisitionDate,
	); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveWithLock(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// UpdateMember changes a member's stake or consolidation method
func (s *GroupService) UpdateMember(ctx context.Context, tenantID, groupID, companyID uuid.UUID, req UpdateMemberRequest) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	ownership, err := valueobject.NewPercentage(req.OwnershipPercentage)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_OWNERSHIP", err.Error())
	}

	if _, err := group.UpdateMember(companyID, ownership, consolidation.ConsolidationMethod(req.Method)); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveWithLock(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// RemoveMember drops a company from the group roster
func (s *GroupService) RemoveMember(ctx context.Context, tenantID, groupID, companyID uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	if err := group.RemoveMember(companyID); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveWithLock(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// Deactivate takes a group out of service while keeping its history queryable
func (s *GroupService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*GroupResponse, error) {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := group.Deactivate(); err != nil {
		return nil, err
	}

	if err := s.groupRepo.SaveWithLock(ctx, group); err != nil {
		return nil, err
	}

	return ToGroupResponse(group), nil
}

// Delete removes a group that has never produced a completed run. Groups
// with completed runs are part of the audit trail and can only be
// deactivated.
func (s *GroupService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	group, err := s.groupRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	completed := consolidation.RunStatusCompleted
	count, err := s.runRepo.CountForTenant(ctx, tenantID, consolidation.RunFilter{
		GroupID: &group.ID,
		Status:  &completed,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return consolidation.ErrGroupHasCompletedRuns
	}

	return s.groupRepo.Delete(ctx, tenantID, id)
}
