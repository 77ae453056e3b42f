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

// GormEliminationRuleRepository implements EliminationRuleRepository using GORM
type GormEliminationRuleRepository struct {
	db *gorm.DB
}

// NewGormEliminationRuleRepository creates a new GormEliminationRuleRepository
func NewGormEliminationRuleRepository(db *gorm.DB) *GormEliminationRuleRepository {
	return &GormEliminationRuleRepository{db: db}
}

// FindByID finds an elimination rule by its ID
func (r *GormEliminationRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*consolidation.EliminationRule, error) {
	var model models.EliminationRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an elimination rule by ID within a tenant
func (r *GormEliminationRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*consolidation.EliminationRule, error) {
	var model models.EliminationRuleModel
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

// FindActiveForGroup returns active rules for a group in evaluation order:
// ascending priority, ties broken by rule ID.
func (r *GormEliminationRuleRepository) FindActiveForGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]consolidation.EliminationRule, error) {
	var ruleModels []models.EliminationRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ? AND is_active = ?", tenantID, groupID, true).
		Order("priority ASC, id ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]consolidation.EliminationRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// FindAllForGroup finds all rules for a group matching the filter
func (r *GormEliminationRuleRepository) FindAllForGroup(ctx context.Context, tenantID, groupID uuid.UUID, filter consolidation.RuleFilter) ([]consolidation.EliminationRule, error) {
	var ruleModels []models.EliminationRuleModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.EliminationRuleModel{}).
			Where("tenant_id = ? AND group_id = ?", tenantID, groupID),
		filter,
	)

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]consolidation.EliminationRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// Save creates or updates an elimination rule
func (r *GormEliminationRuleRepository) Save(ctx context.Context, rule *consolidation.EliminationRule) error {
	model := models.EliminationRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll creates or updates multiple elimination rules in one batch
func (r *GormEliminationRuleRepository) SaveAll(ctx context.Context, rules []*consolidation.EliminationRule) error {
	if len(rules) == 0 {
		return nil
	}
	ruleModels := make([]*models.EliminationRuleModel, len(rules))
	for i, rule := range rules {
		ruleModels[i] = models.EliminationRuleModelFromDomain(rule)
	}
	return r.db.WithContext(ctx).Save(ruleModels).Error
}

// Delete deletes an elimination rule within a tenant
func (r *GormEliminationRuleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.EliminationRuleModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormEliminationRuleRepository) applyFilter(query *gorm.DB, filter consolidation.RuleFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, RuleSortFields, "priority")
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("priority ASC, id ASC")
	}

	return query
}

// Ensure GormEliminationRuleRepository implements EliminationRuleRepository
var _ consolidation.EliminationRuleRepository = (*GormEliminationRuleRepository)(nil)
