package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moralesdev/storeapi-backend/internal/invoices"
	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubInvoiceService struct {
	list       []models.Invoice
	created    *models.Invoice
	bulkResult *invoices.BulkResult
	err        error
	lastFilter invoices.ListFilter
}

func (s *stubInvoiceService) List(_ context.Context, filter invoices.ListFilter) ([]models.Invoice, error) {
	s.lastFilter = filter
	return s.list, s.err
}

func (s *stubInvoiceService) Get(context.Context, int) (*models.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.created, nil
}

func (s *stubInvoiceService) Create(context.Context, invoices.CreateInvoiceInput) (*models.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.created, nil
}

func (s *stubInvoiceService) CreateBulk(context.Context, []invoices.CreateInvoiceInput) (*invoices.BulkResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bulkResult, nil
}

func invoiceBody() string {
	return `{"orderIds":[1],"invoiceNumber":"F-001","issueDate":"2025-06-01T00:00:00Z",` +
		`"subtotal":"100","tax":"16","currency":"MXN","billingName":"Acme"}`
}

func TestInvoiceCreate_SetsLocationAnd201(t *testing.T) {
	svc := &stubInvoiceService{created: &models.Invoice{
		ID:            7,
		InvoiceNumber: "F-001",
		IssueDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Total:         decimal.NewFromInt(116),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(invoiceBody()))
	rec := httptest.NewRecorder()
	InvoiceCreate(svc, nil)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "/api/invoices/7", rec.Header().Get("Location"))

	var envelope struct {
		Data models.Invoice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, 7, envelope.Data.ID)
}

func TestInvoiceCreate_ConflictMapsTo409(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeConflict, `invoice number "F-001" already exists`)}

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(invoiceBody()))
	rec := httptest.NewRecorder()
	InvoiceCreate(svc, nil)(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "CONFLICT", envelope.Error.Code)
	require.Contains(t, envelope.Error.Message, "F-001")
}

func TestInvoiceCreate_RejectsMalformedBody(t *testing.T) {
	svc := &stubInvoiceService{}

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(`{"orderIds":[]}`))
	rec := httptest.NewRecorder()
	InvoiceCreate(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceCreateBulk_ReturnsSummary(t *testing.T) {
	svc := &stubInvoiceService{bulkResult: &invoices.BulkResult{
		Message: "invoices created",
		Count:   2,
		IDs:     []int{1, 2},
	}}

	body := "[" + invoiceBody() + "," + strings.Replace(invoiceBody(), "F-001", "F-002", 1) + "]"
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/bulk", strings.NewReader(body))
	rec := httptest.NewRecorder()
	InvoiceCreateBulk(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data invoices.BulkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, 2, envelope.Data.Count)
	require.Equal(t, []int{1, 2}, envelope.Data.IDs)
}

func TestInvoiceCreateBulk_ValidationFailureIs400(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeValidation, "duplicate invoice numbers in batch: A1")}

	body := "[" + invoiceBody() + "]"
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/bulk", strings.NewReader(body))
	rec := httptest.NewRecorder()
	InvoiceCreateBulk(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "duplicate invoice numbers in batch: A1")
}

func TestInvoiceList_ParsesFilters(t *testing.T) {
	svc := &stubInvoiceService{list: []models.Invoice{}}

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?orderId=3&isPaid=true", nil)
	rec := httptest.NewRecorder()
	InvoiceList(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastFilter.OrderID)
	require.Equal(t, 3, *svc.lastFilter.OrderID)
	require.NotNil(t, svc.lastFilter.IsPaid)
	require.True(t, *svc.lastFilter.IsPaid)
}

func TestInvoiceList_RejectsBadOrderID(t *testing.T) {
	svc := &stubInvoiceService{}

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?orderId=abc", nil)
	rec := httptest.NewRecorder()
	InvoiceList(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceDetail_NotFound(t *testing.T) {
	svc := &stubInvoiceService{err: pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")}

	router := chi.NewRouter()
	router.Get("/api/invoices/{id}", InvoiceDetail(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceDetail_BadID(t *testing.T) {
	svc := &stubInvoiceService{}

	router := chi.NewRouter()
	router.Get("/api/invoices/{id}", InvoiceDetail(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
