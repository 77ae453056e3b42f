package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	consolidationapp "github.com/groupclose/backend/internal/application/consolidation"
	"github.com/groupclose/backend/internal/domain/consolidation"
	"github.com/groupclose/backend/internal/domain/shared"
)

func setupReportHandler() (*gin.Engine, *MockRunRepository, *MockTrialBalanceRepository) {
	runRepo := new(MockRunRepository)
	tbRepo := new(MockTrialBalanceRepository)
	assembler := consolidation.NewReportAssembler(decimal.NewFromFloat(0.01))
	h := NewReportHandler(consolidationapp.NewReportService(runRepo, tbRepo, assembler))

	r := setupTestRouter()
	r.GET("/runs/:id/reports", h.GetReportPackage)
	r.GET("/runs/:id/reports/balance-sheet", h.GetBalanceSheet)
	r.GET("/runs/:id/reports/income-statement", h.GetIncomeStatement)
	r.GET("/runs/:id/reports/cash-flow", h.GetCashFlowStatement)
	r.GET("/runs/:id/reports/equity", h.GetEquityStatement)
	return r, runRepo, tbRepo
}

func newCompletedRunWithTB(t *testing.T) (*consolidation.ConsolidationRun, *consolidation.ConsolidatedTrialBalance) {
	t.Helper()
	run := newPendingRun(testTenantID, uuid.New())
	run.Status = consolidation.RunStatusCompleted

	line := func(code string, category consolidation.AccountCategory, amount string) consolidation.ConsolidatedLine {
		d := decimal.RequireFromString(amount)
		return consolidation.ConsolidatedLine{
			AccountID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(code)),
			AccountCode: code,
			AccountName: "Account " + code,
			Category:    category,
			Amount:      d,
			ParentShare: d,
			NCIShare:    decimal.Zero,
		}
	}

	tb := consolidation.NewConsolidatedTrialBalance(run, "EUR")
	tb.Lines = []consolidation.ConsolidatedLine{
		line("1000", consolidation.CategoryCash, "400"),
		line("1500", consolidation.CategoryNonCurrentAsset, "600"),
		line("2100", consolidation.CategoryCurrentLiability, "300"),
		line("3000", consolidation.CategoryContributedCapital, "500"),
		line("4000", consolidation.CategoryRevenue, "700"),
		line("5000", consolidation.CategoryCostOfSales, "500"),
	}
	tb.NetIncomeParent = decimal.NewFromInt(200)
	tb.NetIncomeNCI = decimal.Zero
	require.True(t, tb.Imbalance().IsZero())
	return run, tb
}

func TestReportHandler_GetBalanceSheet(t *testing.T) {
	r, runRepo, tbRepo := setupReportHandler()

	run, tb := newCompletedRunWithTB(t)
	runRepo.On("FindByIDForTenant", mock.Anything, testTenantID, run.ID).Return(run, nil)
	tbRepo.On("FindByRunID", mock.Anything, testTenantID, run.ID).Return(tb, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID.String()+"/reports/balance-sheet", nil)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalAssets               string `json:"total_assets"`
			TotalLiabilitiesAndEquity string `json:"total_liabilities_and_equity"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1000", resp.Data.TotalAssets)
	assert.Equal(t, resp.Data.TotalAssets, resp.Data.TotalLiabilitiesAndEquity)

	runRepo.AssertExpectations(t)
	tbRepo.AssertExpectations(t)
}

func TestReportHandler_GetBalanceSheet_RunNotCompleted(t *testing.T) {
	r, runRepo, tbRepo := setupReportHandler()

	run := newPendingRun(testTenantID, uuid.New())
	runRepo.On("FindByIDForTenant", mock.Anything, testTenantID, run.ID).Return(run, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID.String()+"/reports/balance-sheet", nil)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ERR_RUN_NOT_COMPLETED", resp.Error.Code)
	tbRepo.AssertNotCalled(t, "FindByRunID")
}

func TestReportHandler_GetIncomeStatement(t *testing.T) {
	r, runRepo, tbRepo := setupReportHandler()

	run, tb := newCompletedRunWithTB(t)
	runRepo.On("FindByIDForTenant", mock.Anything, testTenantID, run.ID).Return(run, nil)
	tbRepo.On("FindByRunID", mock.Anything, testTenantID, run.ID).Return(tb, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID.String()+"/reports/income-statement", nil)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			NetIncome string `json:"net_income"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "200", resp.Data.NetIncome)
}

func TestReportHandler_GetReportPackage(t *testing.T) {
	r, runRepo, tbRepo := setupReportHandler()

	run, tb := newCompletedRunWithTB(t)
	runRepo.On("FindByIDForTenant", mock.Anything, testTenantID, run.ID).Return(run, nil)
	tbRepo.On("FindByRunID", mock.Anything, testTenantID, run.ID).Return(tb, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID.String()+"/reports", nil)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			RunID             uuid.UUID       `json:"run_id"`
			ReportingCurrency string          `json:"reporting_currency"`
			BalanceSheet      json.RawMessage `json:"balance_sheet"`
			IncomeStatement   json.RawMessage `json:"income_statement"`
			CashFlowStatement json.RawMessage `json:"cash_flow_statement"`
			EquityStatement   json.RawMessage `json:"equity_statement"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, run.ID, resp.Data.RunID)
	assert.Equal(t, "EUR", resp.Data.ReportingCurrency)
	assert.NotEmpty(t, resp.Data.BalanceSheet)
	assert.NotEmpty(t, resp.Data.IncomeStatement)
	assert.NotEmpty(t, resp.Data.CashFlowStatement)
	assert.NotEmpty(t, resp.Data.EquityStatement)
}

func TestReportHandler_RunNotFound(t *testing.T) {
	r, runRepo, _ := setupReportHandler()

	runID := uuid.New()
	runRepo.On("FindByIDForTenant", mock.Anything, testTenantID, runID).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+runID.String()+"/reports/equity", nil)
	req.Header.Set("X-Tenant-ID", testTenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_InvalidRunID(t *testing.T) {
	r, _, _ := setupReportHandler()

	req := httptest.NewRequest(http.MethodGet, "/runs/not-a-uuid/reports/cash-flow", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
