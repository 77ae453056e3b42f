package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTrialBalanceRepository implements TrialBalanceRepository using GORM
type GormTrialBalanceRepository struct {
	db *gorm.DB
}

// NewGormTrialBalanceRepository creates a new GormTrialBalanceRepository
func NewGormTrialBalanceRepository(db *gorm.DB) *GormTrialBalanceRepository {
	return &GormTrialBalanceRepository{db: db}
}

// FindByRunID finds the consolidated trial balance for a run
func (r *GormTrialBalanceRepository) FindByRunID(ctx context.Context, tenantID, runID uuid.UUID) (*consolidation.ConsolidatedTrialBalance, error) {
	var model models.TrialBalanceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND run_id = ?", tenantID, runID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a consolidated trial balance
func (r *GormTrialBalanceRepository) Save(ctx context.Context, tb *consolidation.ConsolidatedTrialBalance) error {
	model := models.TrialBalanceModelFromDomain(tb)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByRunID deletes the consolidated trial balance for a run
func (r *GormTrialBalanceRepository) DeleteByRunID(ctx context.Context, tenantID, runID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TrialBalanceModel{}, "tenant_id = ? AND run_id = ?", tenantID, runID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsForRule reports whether any stored trial balance carries an
// elimination posted by the given rule. On PostgreSQL this is a JSONB
// containment query over the eliminations column; other dialects fall back to
// a substring match on the serialized JSON, which cannot collide because rule
// IDs are UUIDs.
func (r *GormTrialBalanceRepository) ExistsForRule(ctx context.Context, tenantID, ruleID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TrialBalanceModel{}).
		Where("tenant_id = ?", tenantID)

	if r.db.Dialector.Name() == "postgres" {
		match, err := json.Marshal([]map[string]string{{"rule_id": ruleID.String()}})
		if err != nil {
			return false, err
		}
		query = query.Where("eliminations @> ?", string(match))
	} else {
		query = query.Where("eliminations LIKE ?", "%"+ruleID.String()+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormTrialBalanceRepository implements TrialBalanceRepository
var _ consolidation.TrialBalanceRepository = (*GormTrialBalanceRepository)(nil)
