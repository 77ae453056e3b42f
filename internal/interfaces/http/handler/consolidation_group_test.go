package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
)

func setupGroupHandler() (*gin.Engine, *MockGroupRepository, *MockRunRepository) {
	groupRepo := new(MockGroupRepository)
	runRepo := new(MockRunRepository)
	h := NewConsolidationGroupHandler(newGroupService(groupRepo, runRepo))

	r := setupTestRouter()
	r.POST("/groups", h.Create)
	r.GET("/groups", h.List)
	r.GET("/groups/:id", h.GetByID)
	r.PUT("/groups/:id", h.Update)
	r.POST("/groups/:id/deactivate", h.Deactivate)
	r.DELETE("/groups/:id", h.Delete)
	r.POST("/groups/:id/members", h.AddMember)
	r.PUT("/groups/:id/members/:companyId", h.UpdateMember)
	r.DELETE("/groups/:id/members/:companyId", h.RemoveMember)
	return r, groupRepo, runRepo
}

func TestConsolidationGroupHandler_Create(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	groupRepo.On("Save", mock.Anything, mock.AnythingOfType("*consolidation.ConsolidationGroup")).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name":               "Nordic Holdings",
		"reporting_currency": "EUR",
		"default_method":     "FULL",
		"parent_company_id":  uuid.New().String(),
	})
	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Name              string `json:"name"`
			ReportingCurrency string `json:"reporting_currency"`
			IsActive          bool   `json:"is_active"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Nordic Holdings", resp.Data.Name)
	assert.Equal(t, "EUR", resp.Data.ReportingCurrency)
	assert.True(t, resp.Data.IsActive)

	groupRepo.AssertExpectations(t)
}

func TestConsolidationGroupHandler_Create_InvalidBody(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Nordic Holdings",
		// missing reporting_currency, default_method, parent_company_id
	})
	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	groupRepo.AssertNotCalled(t, "Save")
}

func TestConsolidationGroupHandler_GetByID(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)

	req := httptest.NewRequest(http.MethodGet, "/groups/"+group.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	groupRepo.AssertExpectations(t)
}

func TestConsolidationGroupHandler_GetByID_NotFound(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	id := uuid.New()
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, id).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/groups/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
}

func TestConsolidationGroupHandler_GetByID_InvalidID(t *testing.T) {
	r, _, _ := setupGroupHandler()

	req := httptest.NewRequest(http.MethodGet, "/groups/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConsolidationGroupHandler_List(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	groups := []consolidation.ConsolidationGroup{*newActiveGroup(testTenantID), *newActiveGroup(testTenantID)}
	groupRepo.On("FindAllForTenant", mock.Anything, testTenantID, mock.AnythingOfType("consolidation.GroupFilter")).Return(groups, nil)
	groupRepo.On("CountForTenant", mock.Anything, testTenantID, mock.AnythingOfType("consolidation.GroupFilter")).Return(int64(2), nil)

	req := httptest.NewRequest(http.MethodGet, "/groups?page=1&page_size=20", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Meta    struct {
			Total    int64 `json:"total"`
			Page     int   `json:"page"`
			PageSize int   `json:"page_size"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)

	groupRepo.AssertExpectations(t)
}

func TestConsolidationGroupHandler_Delete(t *testing.T) {
	r, groupRepo, runRepo := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)
	runRepo.On("CountForTenant", mock.Anything, testTenantID, mock.AnythingOfType("consolidation.RunFilter")).Return(int64(0), nil)
	groupRepo.On("Delete", mock.Anything, testTenantID, group.ID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/groups/"+group.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	groupRepo.AssertExpectations(t)
	runRepo.AssertExpectations(t)
}

func TestConsolidationGroupHandler_Delete_HasCompletedRuns(t *testing.T) {
	r, groupRepo, runRepo := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)
	runRepo.On("CountForTenant", mock.Anything, testTenantID, mock.AnythingOfType("consolidation.RunFilter")).Return(int64(3), nil)

	req := httptest.NewRequest(http.MethodDelete, "/groups/"+group.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_GROUP_HAS_COMPLETED_RUNS", resp.Error.Code)

	groupRepo.AssertNotCalled(t, "Delete")
}

func TestConsolidationGroupHandler_AddMember(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)
	groupRepo.On("SaveWithLock", mock.Anything, group).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"company_id":           uuid.New().String(),
		"company_name":         "Oslo Subsidiary AS",
		"ownership_percentage": decimal.NewFromInt(80),
		"method":               "FULL",
		"functional_currency":  "NOK",
	})
	req := httptest.NewRequest(http.MethodPost, "/groups/"+group.ID.String()+"/members", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Members []struct {
				CompanyName string `json:"company_name"`
			} `json:"members"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Members, 1)
	assert.Equal(t, "Oslo Subsidiary AS", resp.Data.Members[0].CompanyName)

	groupRepo.AssertExpectations(t)
}

func TestConsolidationGroupHandler_AddMember_Duplicate(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	companyID := uuid.New()
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)
	groupRepo.On("SaveWithLock", mock.Anything, group).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"company_id":           companyID.String(),
		"company_name":         "Oslo Subsidiary AS",
		"ownership_percentage": decimal.NewFromInt(80),
		"method":               "FULL",
		"functional_currency":  "NOK",
	})

	first := httptest.NewRequest(http.MethodPost, "/groups/"+group.ID.String()+"/members", bytes.NewReader(body))
	first.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	second := httptest.NewRequest(http.MethodPost, "/groups/"+group.ID.String()+"/members", bytes.NewReader(body))
	second.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, second)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_DUPLICATE_MEMBER", resp.Error.Code)
}

func TestConsolidationGroupHandler_Deactivate(t *testing.T) {
	r, groupRepo, _ := setupGroupHandler()

	group := newActiveGroup(testTenantID)
	groupRepo.On("FindByIDForTenant", mock.Anything, testTenantID, group.ID).Return(group, nil)
	groupRepo.On("SaveWithLock", mock.Anything, group).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/groups/"+group.ID.String()+"/deactivate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			IsActive bool `json:"is_active"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.IsActive)

	groupRepo.AssertExpectations(t)
}
