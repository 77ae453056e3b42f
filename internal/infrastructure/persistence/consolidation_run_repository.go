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
	"gorm.io/gorm/clause"
)

// activeRunStatuses are the non-terminal run states blocking a new run for the
// same (group, period)
var activeRunStatuses = []consolidation.RunStatus{
	consolidation.RunStatusPending,
	consolidation.RunStatusInProgress,
}

// GormConsolidationRunRepository implements ConsolidationRunRepository using GORM
type GormConsolidationRunRepository struct {
	db *gorm.DB
}

// NewGormConsolidationRunRepository creates a new GormConsolidationRunRepository
func NewGormConsolidationRunRepository(db *gorm.DB) *GormConsolidationRunRepository {
	return &GormConsolidationRunRepository{db: db}
}

// FindByID finds a consolidation run by its ID
func (r *GormConsolidationRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	var model models.ConsolidationRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a consolidation run by ID within a tenant
func (r *GormConsolidationRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.ConsolidationRun, error) {
	var model models.ConsolidationRunModel
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

// FindActiveForPeriod returns the non-terminal run for (group, period), or shared.ErrNotFound
func (r *GormConsolidationRunRepository) FindActiveForPeriod(ctx context.Context, tenantID, groupID uuid.UUID, periodRef string) (*consolidation.ConsolidationRun, error) {
	var model models.ConsolidationRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ? AND period_ref = ? AND status IN ?",
			tenantID, groupID, periodRef, activeRunStatuses).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestCompleted returns the most recently finished Completed run for a group
func (r *GormConsolidationRunRepository) FindLatestCompleted(ctx context.Context, tenantID, groupID uuid.UUID) (*consolidation.ConsolidationRun, error) {
	var model models.ConsolidationRunModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ? AND status = ?",
			tenantID, groupID, consolidation.RunStatusCompleted).
		Order("finished_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all consolidation runs for a tenant matching the filter
func (r *GormConsolidationRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) ([]consolidation.ConsolidationRun, error) {
	var runModels []models.ConsolidationRunModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ConsolidationRunModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]consolidation.ConsolidationRun, len(runModels))
	for i, model := range runModels {
		runs[i] = *model.ToDomain()
	}
	return runs, nil
}

// CreateExclusive inserts the run if and only if no non-terminal run exists
// for the same (group, period). The existence check and the insert run in one
// transaction holding a row lock on the group, so two concurrent initiations
// serialize; a partial unique index in the migrations backs the invariant at
// the storage level.
func (r *GormConsolidationRunRepository) CreateExclusive(ctx context.Context, run *consolidation.ConsolidationRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockQuery := tx.Select("id").
			Where("tenant_id = ? AND id = ?", run.TenantID, run.GroupID)
		if tx.Dialector.Name() == "postgres" {
			lockQuery = lockQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var group models.ConsolidationGroupModel
		if err := lockQuery.First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.ConsolidationRunModel{}).
			Where("tenant_id = ? AND group_id = ? AND period_ref = ? AND status IN ?",
				run.TenantID, run.GroupID, run.PeriodRef, activeRunStatuses).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return consolidation.ErrRunExistsForPeriod
		}

		model := models.ConsolidationRunModelFromDomain(run)
		return tx.Create(model).Error
	})
}

// Save creates or updates a consolidation run
func (r *GormConsolidationRunRepository) Save(ctx context.Context, run *consolidation.ConsolidationRun) error {
	model := models.ConsolidationRunModelFromDomain(run)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a consolidation run with optimistic locking (version check).
// Returns an error if the version has changed (concurrent modification).
func (r *GormConsolidationRunRepository) SaveWithLock(ctx context.Context, run *consolidation.ConsolidationRun) error {
	model := models.ConsolidationRunModelFromDomain(run)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", run.ID, run.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The consolidation run has been modified by another transaction")
	}
	return nil
}

// Delete deletes a consolidation run within a tenant
func (r *GormConsolidationRunRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ConsolidationRunModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts consolidation runs for a tenant
func (r *GormConsolidationRunRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter consolidation.RunFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ConsolidationRunModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormConsolidationRunRepository) applyFilter(query *gorm.DB, filter consolidation.RunFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, RunSortFields, "created_at")
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormConsolidationRunRepository) applyFilterWithoutPagination(query *gorm.DB, filter consolidation.RunFilter) *gorm.DB {
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.PeriodRef != nil {
		query = query.Where("period_ref = ?", *filter.PeriodRef)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// Ensure GormConsolidationRunRepository implements ConsolidationRunRepository
var _ consolidation.ConsolidationRunRepository = (*GormConsolidationRunRepository)(nil)
