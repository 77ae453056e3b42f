package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConsolidationGroupRepository implements ConsolidationGroupRepository using GORM
type GormConsolidationGroupRepository struct {
	db *gorm.DB
}

// NewGormConsolidationGroupRepository creates a new GormConsolidationGroupRepository
func NewGormConsolidationGroupRepository(db *gorm.DB) *GormConsolidationGroupRepository {
	return &GormConsolidationGroupRepository{db: db}
}

// FindByID finds a consolidation group by its ID
func (r *GormConsolidationGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	var model models.ConsolidationGroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a consolidation group by ID within a tenant
func (r *GormConsolidationGroupRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationGroup, error) {
	var model models.ConsolidationGroupModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all consolidation groups for a tenant
func (r *GormConsolidationGroupRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) ([]consolidation.ConsolidationGroup, error) {
	var groupModels []models.ConsolidationGroupModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ConsolidationGroupModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&groupModels).Error; err != nil {
		return nil, err
	}

	groups := make([]consolidation.ConsolidationGroup, len(groupModels))
	for i, model := range groupModels {
		groups[i] = *model.ToDomain()
	}
	return groups, nil
}

// Save creates or updates a consolidation group
func (r *GormConsolidationGroupRepository) Save(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	model := models.ConsolidationGroupModelFromDomain(group)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a consolidation group with optimistic locking (version check).
// Returns an error if the version has changed (concurrent modification).
func (r *GormConsolidationGroupRepository) SaveWithLock(ctx context.Context, group *consolidation.ConsolidationGroup) error {
	model := models.ConsolidationGroupModelFromDomain(group)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", group.ID, group.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The consolidation group has been modified by another transaction")
	}
	return nil
}

// Delete deletes a consolidation group within a tenant
func (r *GormConsolidationGroupRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ConsolidationGroupModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts consolidation groups for a tenant
func (r *GormConsolidationGroupRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.GroupFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ConsolidationGroupModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormConsolidationGroupRepository) applyFilter(query *gorm.DB, filter consolidation.GroupFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, GroupSortFields, "name")
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormConsolidationGroupRepository) applyFilterWithoutPagination(query *gorm.DB, filter consolidation.GroupFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ParentCompanyID != nil {
		query = query.Where("parent_company_id = ?", *filter.ParentCompanyID)
	}
	return query
}

// Ensure GormConsolidationGroupRepository implements ConsolidationGroupRepository
var _ consolidation.ConsolidationGroupRepository = (*GormConsolidationGroupRepository)(nil)
