package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostingUseCase is a mock implementation of PostingUseCase
type MockPostingUseCase struct {
	mock.Mock
}

func (m *MockPostingUseCase) RecordSale(input usecase.RecordSaleInput) (*usecase.RecordSaleResult, error) {
	args := m.Called(input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RecordSaleResult), args.Error(1)
}

func (m *MockPostingUseCase) VoidSale(saleID string) (*entity.LedgerEntry, error) {
	args := m.Called(saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LedgerEntry), args.Error(1)
}

func (m *MockPostingUseCase) ManualCorrection(saleID, correctedAffiliateID string, correctedAmount *int64) (*entity.LedgerEntry, error) {
	args := m.Called(saleID, correctedAffiliateID, correctedAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LedgerEntry), args.Error(1)
}

func (m *MockPostingUseCase) ListUnattributed(limit, offset int) ([]*entity.Sale, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Sale), args.Error(1)
}

func setupSaleRouter(mockUC *MockPostingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSaleHandler(mockUC, logger.New())

	r := gin.New()
	r.POST("/sales", handler.RecordSale)
	r.POST("/sales/:id/void", handler.VoidSale)
	r.POST("/sales/:id/correction", handler.ManualCorrection)
	r.GET("/sales/unattributed", handler.ListUnattributed)
	return r
}

func TestRecordSale_Success(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("RecordSale", mock.AnythingOfType("usecase.RecordSaleInput")).Return(&usecase.RecordSaleResult{
		Sale:   &entity.Sale{ID: "order-1001"},
		Entry:  &entity.LedgerEntry{ID: "entry-1", SaleID: "order-1001", Amount: 75000},
		Posted: true,
	}, nil)

	r := setupSaleRouter(mockUC)

	body, _ := json.Marshal(map[string]interface{}{
		"sale_id":       "order-1001",
		"amount":        250000,
		"product_id":    "course-101",
		"affiliate_ref": "AFF123",
	})
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result usecase.RecordSaleResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Posted)
	assert.Equal(t, int64(75000), result.Entry.Amount)
	mockUC.AssertExpectations(t)
}

func TestRecordSale_MissingSaleID(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	r := setupSaleRouter(mockUC)

	body, _ := json.Marshal(map[string]interface{}{
		"amount":     250000,
		"product_id": "course-101",
	})
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUC.AssertNotCalled(t, "RecordSale", mock.Anything)
}

func TestRecordSale_ZeroAmountAccepted(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("RecordSale", mock.AnythingOfType("usecase.RecordSaleInput")).Return(&usecase.RecordSaleResult{
		Sale:   &entity.Sale{ID: "order-free"},
		Entry:  &entity.LedgerEntry{ID: "entry-2", SaleID: "order-free", Amount: 0},
		Posted: true,
	}, nil)

	r := setupSaleRouter(mockUC)

	body, _ := json.Marshal(map[string]interface{}{
		"sale_id":       "order-free",
		"amount":        0,
		"product_id":    "free-webinar",
		"affiliate_ref": "AFF123",
	})
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVoidSale_NotFound(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("VoidSale", "missing").Return(nil, usecase.ErrSaleNotFound)

	r := setupSaleRouter(mockUC)

	req := httptest.NewRequest(http.MethodPost, "/sales/missing/void", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualCorrection_Success(t *testing.T) {
	amount := int64(60000)
	mockUC := new(MockPostingUseCase)
	mockUC.On("ManualCorrection", "order-1001", "affiliate-2", &amount).Return(&entity.LedgerEntry{
		ID:          "entry-2",
		SaleID:      "order-1001",
		AffiliateID: "affiliate-2",
		Amount:      60000,
		Basis:       entity.BasisManual,
	}, nil)

	r := setupSaleRouter(mockUC)

	body, _ := json.Marshal(map[string]interface{}{
		"affiliate_id": "affiliate-2",
		"amount":       60000,
	})
	req := httptest.NewRequest(http.MethodPost, "/sales/order-1001/correction", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var entry entity.LedgerEntry
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, entity.BasisManual, entry.Basis)
	mockUC.AssertExpectations(t)
}

func TestManualCorrection_VoidedSale(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("ManualCorrection", "order-1001", "", (*int64)(nil)).Return(nil, usecase.ErrSaleVoided)

	r := setupSaleRouter(mockUC)

	req := httptest.NewRequest(http.MethodPost, "/sales/order-1001/correction", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUnattributed_ReturnsQueue(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("ListUnattributed", 50, 0).Return([]*entity.Sale{
		{ID: "order-7", AffiliateRef: "8841", AttributionReason: string(entity.ReasonExternalUserNotFound)},
	}, nil)

	r := setupSaleRouter(mockUC)

	req := httptest.NewRequest(http.MethodGet, "/sales/unattributed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sales []*entity.Sale `json:"sales"`
		Count int            `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "8841", resp.Sales[0].AffiliateRef)
	mockUC.AssertExpectations(t)
}

func TestInternalErrorSurfacesAs500(t *testing.T) {
	mockUC := new(MockPostingUseCase)
	mockUC.On("RecordSale", mock.AnythingOfType("usecase.RecordSaleInput")).Return(nil, errors.New("db down"))

	r := setupSaleRouter(mockUC)

	body, _ := json.Marshal(map[string]interface{}{
		"sale_id":    "order-1001",
		"amount":     250000,
		"product_id": "course-101",
	})
	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
