package orders

import (
	"context"
	"testing"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
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

func seedUserAndProducts(t *testing.T, conn *gorm.DB, productCount int) (models.SystemUser, []models.Product) {
	t.Helper()

	user := models.SystemUser{
		Email:     "denisse@gmail.com",
		Password:  "12345",
		FirstName: "John",
		LastName:  "Doe",
	}
	require.NoError(t, conn.Create(&user).Error)

	store := models.Store{Description: "Centro", Latitude: 19.43, Longitude: -99.13}
	require.NoError(t, conn.Create(&store).Error)

	products := make([]models.Product, 0, productCount)
	for i := 0; i < productCount; i++ {
		product := models.Product{
			Name:    "Widget",
			Price:   decimal.NewFromInt(int64(10 + i)),
			StoreID: store.ID,
		}
		require.NoError(t, conn.Create(&product).Error)
		products = append(products, product)
	}
	return user, products
}

func TestCreate_SingleIgnoresProducts(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	user, products := seedUserAndProducts(t, conn, 1)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		SystemUserID: user.ID,
		Total:        decimal.NewFromInt(99),
		Products:     []int{products[0].ID},
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	require.False(t, order.CreatedAt.IsZero())

	var lines int64
	require.NoError(t, conn.Model(&models.OrderProduct{}).Count(&lines).Error)
	require.Zero(t, lines)
}

func TestCreate_MissingSystemUserID(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Create(context.Background(), CreateOrderInput{Total: decimal.NewFromInt(10)})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateBulk_ExpandsProductIDs(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	user, products := seedUserAndProducts(t, conn, 3)

	inputs := []CreateOrderInput{
		{SystemUserID: user.ID, Total: decimal.NewFromInt(30), Products: []int{products[0].ID, products[1].ID}},
		{SystemUserID: user.ID, Total: decimal.NewFromInt(12), Products: []int{products[2].ID}},
	}

	result, err := svc.CreateBulk(context.Background(), inputs)
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	require.Len(t, result.IDs, 2)

	var lines []models.OrderProduct
	require.NoError(t, conn.Find(&lines).Error)
	require.Len(t, lines, 3)
	for _, line := range lines {
		require.Equal(t, 1, line.Amount)
	}
}

func TestCreateBulk_EmptyBatch(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.CreateBulk(context.Background(), nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "no orders submitted", typed.Message())
}

func TestCreateBulk_DuplicateProductInOneOrderRejected(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	user, products := seedUserAndProducts(t, conn, 1)

	inputs := []CreateOrderInput{
		{SystemUserID: user.ID, Total: decimal.NewFromInt(20), Products: []int{products[0].ID, products[0].ID}},
	}

	_, err := svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	var orders int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
	var lines int64
	require.NoError(t, conn.Model(&models.OrderProduct{}).Count(&lines).Error)
	require.Zero(t, lines)
}

func TestCreateBulk_MidTransactionFailureRollsBackEverything(t *testing.T) {
	conn := newTestDB(t)
	runner := &countingTxRunner{gormTxRunner: gormTxRunner{db: conn}}
	svc, err := NewService(NewRepository(conn), runner, nil)
	require.NoError(t, err)
	user, products := seedUserAndProducts(t, conn, 2)

	// The second order fails at the composite key after the first one has
	// already been inserted inside the transaction.
	inputs := []CreateOrderInput{
		{SystemUserID: user.ID, Total: decimal.NewFromInt(10), Products: []int{products[0].ID}},
		{SystemUserID: user.ID, Total: decimal.NewFromInt(20), Products: []int{products[1].ID, products[1].ID}},
	}

	_, err = svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	require.Equal(t, 1, runner.opened)

	var orders int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
	var lines int64
	require.NoError(t, conn.Model(&models.OrderProduct{}).Count(&lines).Error)
	require.Zero(t, lines)
}

func TestCreateBulk_PrecheckFailureOpensNoTransaction(t *testing.T) {
	conn := newTestDB(t)
	runner := &countingTxRunner{gormTxRunner: gormTxRunner{db: conn}}
	svc, err := NewService(NewRepository(conn), runner, nil)
	require.NoError(t, err)
	user, products := seedUserAndProducts(t, conn, 1)

	inputs := []CreateOrderInput{
		{SystemUserID: user.ID, Total: decimal.NewFromInt(10), Products: []int{products[0].ID}},
		{SystemUserID: 0, Total: decimal.NewFromInt(10)},
	}

	_, err = svc.CreateBulk(context.Background(), inputs)
	require.Error(t, err)
	require.Zero(t, runner.opened)

	var orders int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
}

func TestList_PreloadsSystemUser(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	user, _ := seedUserAndProducts(t, conn, 0)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		SystemUserID: user.ID,
		Total:        decimal.NewFromInt(42),
	})
	require.NoError(t, err)

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].SystemUser)
	require.Equal(t, "denisse@gmail.com", orders[0].SystemUser.Email)
}

func TestGet_NotFound(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Get(context.Background(), 555)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
