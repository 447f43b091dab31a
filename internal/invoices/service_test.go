package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/moralesdev/storeapi-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type countingTxRunner struct {
	gormTxRunner
	opened int
}

func (r *countingTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.opened++
	return r.gormTxRunner.WithTx(ctx, fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.RegisterJoinTables(conn))
	require.NoError(t, conn.AutoMigrate(
		&models.SystemUser{},
		&models.Store{},
		&models.Product{},
		&models.Order{},
		&models.OrderProduct{},
		&models.Invoice{},
		&models.InvoiceOrder{},
	))
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), gormTxRunner{db: conn}, nil)
	require.NoError(t, err)
	return svc
}

func seedOrders(t *testing.T, conn *gorm.DB, count int) []models.Order {
	t.Helper()

	user := models.SystemUser{
		Email:     "denisse@gmail.com",
		Password:  "12345",
		FirstName: "John",
		LastName:  "Doe",
	}
	require.NoError(t, conn.Create(&user).Error)

	orders := make([]models.Order, 0, count)
	for i := 0; i < count; i++ {
		order := models.Order{
			SystemUserID: user.ID,
			Total:        decimal.NewFromInt(int64(50 + i)),
		}
		require.NoError(t, conn.Create(&order).Error)
		orders = append(orders, order)
	}
	return orders
}

func validInput(number string, orderIDs ...int) CreateInvoiceInput {
	return CreateInvoiceInput{
		OrderIDs:      orderIDs,
		InvoiceNumber: number,
		IssueDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Subtotal:      decimal.NewFromInt(100),
		Tax:           decimal.NewFromInt(16),
		Currency:      "MXN",
		BillingName:   "Acme SA de CV",
	}
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestCreate_ComputesTotalFromSubtotalAndTax(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	invoice, err := svc.Create(context.Background(), validInput("F-001", orders[0].ID))
	require.NoError(t, err)
	require.True(t, invoice.Total.Equal(decimal.NewFromInt(116)),
		"expected 100 + 16 = 116, got %s", invoice.Total)

	var stored models.Invoice
	require.NoError(t, conn.Preload("Orders").First(&stored, invoice.ID).Error)
	require.True(t, stored.Total.Equal(decimal.NewFromInt(116)))
	require.Len(t, stored.Orders, 1)
}

func TestCreate_ExplicitTotalWins(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	input := validInput("F-002", orders[0].ID)
	total := decimal.NewFromInt(200)
	input.Total = &total

	invoice, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.True(t, invoice.Total.Equal(total))
}

func TestCreate_UnknownOrderIDs(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	_, err := svc.Create(context.Background(), validInput("F-003", orders[0].ID, 98, 97))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "unknown orderIds: 97, 98", typed.Message())
	require.Zero(t, countRows(t, conn, &models.Invoice{}))
}

func TestCreate_DuplicateNumberConflicts(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 2)

	_, err := svc.Create(context.Background(), validInput("F-010", orders[0].ID))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput("  F-010  ", orders[1].ID))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Equal(t, int64(1), countRows(t, conn, &models.Invoice{}))
}

func TestCreate_PaidWithoutPaymentDate(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	input := validInput("F-011", orders[0].ID)
	input.IsPaid = true

	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "paymentDate is required when isPaid is true", typed.Message())
}

func TestCreate_DueDateBeforeIssueDate(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	input := validInput("F-012", orders[0].ID)
	due := input.IssueDate.AddDate(0, 0, -1)
	input.DueDate = &due

	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateBulk_AllValid(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 3)

	inputs := []CreateInvoiceInput{
		validInput("B-001", orders[0].ID),
		validInput("B-002", orders[1].ID, orders[2].ID),
		validInput("B-003", orders[0].ID, orders[1].ID),
	}

	result, err := svc.CreateBulk(context.Background(), inputs)
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)
	require.Len(t, result.IDs, 3)

	require.Equal(t, int64(3), countRows(t, conn, &models.Invoice{}))
	require.Equal(t, int64(5), countRows(t, conn, &models.InvoiceOrder{}))

	var second models.Invoice
	require.NoError(t, conn.Preload("Orders").First(&second, result.IDs[1]).Error)
	require.Len(t, second.Orders, 2)
}

func TestCreateBulk_DuplicateNumbersInBatch(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 2)

	inputs := []CreateInvoiceInput{
		validInput("A1", orders[0].ID),
		validInput("B2", orders[1].ID),
		validInput(" A1", orders[1].ID),
	}

	_, err := svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "duplicate invoice numbers in batch: A1", typed.Message())
	require.Zero(t, countRows(t, conn, &models.Invoice{}))
	require.Zero(t, countRows(t, conn, &models.InvoiceOrder{}))
}

func TestCreateBulk_UnknownOrderIDsRejectWholeBatch(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 1)

	inputs := []CreateInvoiceInput{
		validInput("B-010", orders[0].ID),
		validInput("B-011", 4, 3),
	}

	_, err := svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "unknown orderIds: 3, 4", typed.Message())
	require.Zero(t, countRows(t, conn, &models.Invoice{}))
}

func TestCreateBulk_NumbersAlreadyInUse(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 2)

	_, err := svc.Create(context.Background(), validInput("TAKEN-1", orders[0].ID))
	require.NoError(t, err)

	inputs := []CreateInvoiceInput{
		validInput("TAKEN-1", orders[1].ID),
		validInput("FRESH-1", orders[1].ID),
	}

	_, err = svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "invoice numbers already in use: TAKEN-1", typed.Message())
	require.Equal(t, int64(1), countRows(t, conn, &models.Invoice{}))
}

func TestCreateBulk_MidBatchFailureRollsBack(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 2)

	bad := validInput("B-021", orders[1].ID)
	bad.IsPaid = true // no paymentDate, fails inside the transaction

	inputs := []CreateInvoiceInput{
		validInput("B-020", orders[0].ID),
		bad,
	}

	_, err := svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Zero(t, countRows(t, conn, &models.Invoice{}))
	require.Zero(t, countRows(t, conn, &models.InvoiceOrder{}))
}

func TestCreateBulk_EmptyBatch(t *testing.T) {
	conn := newTestDB(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(NewRepository(conn), gormTxRunner{db: conn}, metrics.NewBulkMetrics(reg))
	require.NoError(t, err)

	_, err = svc.CreateBulk(context.Background(), nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, float64(1), rejectedBatches(t, reg))
}

func TestCreateBulk_PreflightFailureOpensNoTransaction(t *testing.T) {
	conn := newTestDB(t)
	runner := &countingTxRunner{gormTxRunner: gormTxRunner{db: conn}}
	svc, err := NewService(NewRepository(conn), runner, nil)
	require.NoError(t, err)
	orders := seedOrders(t, conn, 1)

	inputs := []CreateInvoiceInput{
		validInput("P-001", orders[0].ID),
		validInput("P-001", orders[0].ID),
	}

	_, err = svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	require.Zero(t, runner.opened)
	require.Zero(t, countRows(t, conn, &models.Invoice{}))
}

func rejectedBatches(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "bulk_batches_rejected" {
			continue
		}
		for _, metric := range family.GetMetric() {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestList_FilterByOrderAndPaid(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	orders := seedOrders(t, conn, 2)

	paid := validInput("L-001", orders[0].ID)
	paid.IsPaid = true
	when := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	paid.PaymentDate = &when

	_, err := svc.Create(context.Background(), paid)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validInput("L-002", orders[1].ID))
	require.NoError(t, err)

	all, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	isPaid := true
	onlyPaid, err := svc.List(context.Background(), ListFilter{IsPaid: &isPaid})
	require.NoError(t, err)
	require.Len(t, onlyPaid, 1)
	require.Equal(t, "L-001", onlyPaid[0].InvoiceNumber)

	byOrder, err := svc.List(context.Background(), ListFilter{OrderID: &orders[1].ID})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	require.Equal(t, "L-002", byOrder[0].InvoiceNumber)
}

func TestGet_NotFound(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Get(context.Background(), 12345)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
