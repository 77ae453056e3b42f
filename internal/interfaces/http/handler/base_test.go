package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
	"github.com/groupclose/backend/internal/domain/shared/valueobject"
)

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "ERR_NOT_FOUND",
		},
		{
			name:           "run exists for period",
			err:            consolidation.ErrRunExistsForPeriod,
			expectedStatus: http.StatusConflict,
			expectedCode:   "ERR_RUN_EXISTS_FOR_PERIOD",
		},
		{
			name:           "group inactive",
			err:            consolidation.ErrGroupInactive,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "ERR_GROUP_INACTIVE",
		},
		{
			name:           "concurrency conflict",
			err:            shared.ErrConcurrencyConflict,
			expectedStatus: http.StatusConflict,
			expectedCode:   "ERR_CONCURRENCY_CONFLICT",
		},
		{
			name: "rate unavailable via typed error",
			err: &consolidation.RateUnavailableError{
				From:  valueobject.Currency("NOK"),
				To:    valueobject.Currency("EUR"),
				Date:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
				Class: consolidation.RateClassClosing,
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "ERR_RATE_UNAVAILABLE",
		},
		{
			name: "not balanced via wrapped typed error",
			err: fmt.Errorf("validate step: %w", &consolidation.NotBalancedError{
				Identity:   "assets = liabilities + equity",
				Difference: decimal.NewFromFloat(0.05),
				Tolerance:  decimal.NewFromFloat(0.01),
			}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "ERR_NOT_BALANCED",
		},
		{
			name:           "unknown error",
			err:            errors.New("database connection lost"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "ERR_INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			var h BaseHandler
			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestGetTenantID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("from header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		tenantID := "11111111-2222-3333-4444-555555555555"
		c.Request.Header.Set("X-Tenant-ID", tenantID)

		got, err := getTenantID(c)
		assert.NoError(t, err)
		assert.Equal(t, tenantID, got.String())
	})

	t.Run("invalid header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Tenant-ID", "not-a-uuid")

		_, err := getTenantID(c)
		assert.Error(t, err)
	})

	t.Run("falls back to dev tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		got, err := getTenantID(c)
		assert.NoError(t, err)
		assert.Equal(t, testTenantID, got)
	})
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("from header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		userID := "99999999-8888-7777-6666-555555555555"
		c.Request.Header.Set("X-User-ID", userID)

		got, err := getUserID(c)
		assert.NoError(t, err)
		assert.Equal(t, userID, got.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		_, err := getUserID(c)
		assert.Error(t, err)
	})
}
