package inventory

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.RawItem{},
		&models.Recipe{},
		&models.InventoryTransaction{},
	))
	return conn
}

func newTestService(t *testing.T, hardBlock bool) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc, err := NewService(repo, db.NewFromConn(conn), logg, nil, hardBlock)
	require.NoError(t, err)
	return svc, conn
}

func createRawItem(t *testing.T, svc Service, name string, stock float64, threshold *float64) *models.RawItem {
	t.Helper()
	input := RawItemInput{
		Name:         name,
		Unit:         "kg",
		CurrentStock: decimal.NewFromFloat(stock),
	}
	if threshold != nil {
		d := decimal.NewFromFloat(*threshold)
		input.AlertThreshold = &d
	}
	item, err := svc.CreateRawItem(context.Background(), input)
	require.NoError(t, err)
	return item
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateRawItemWritesOpeningBalance(t *testing.T) {
	svc, conn := newTestService(t, false)
	item := createRawItem(t, svc, "Flour", 25, nil)

	var entries []models.InventoryTransaction
	require.NoError(t, conn.Where("raw_item_id = ?", item.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, enums.TransactionTypePurchase, entries[0].TransactionType)
	require.True(t, entries[0].Amount.Equal(decimal.NewFromInt(25)))

	got, err := svc.GetRawItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(25)))
}

func TestRestockAdjustsStockAndLedger(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	item := createRawItem(t, svc, "Flour", 10, nil)

	require.NoError(t, svc.Restock(ctx, item.ID, decimal.NewFromInt(5), nil))

	got, err := svc.GetRawItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(15)))

	entries, err := svc.ListTransactions(ctx, item.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	err = svc.Restock(ctx, item.ID, decimal.NewFromInt(-5), nil)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAdjustAllowsNegativeDelta(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	item := createRawItem(t, svc, "Flour", 10, nil)

	notes := "stocktake correction"
	require.NoError(t, svc.Adjust(ctx, item.ID, decimal.NewFromInt(-3), &notes))

	got, err := svc.GetRawItem(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(7)))
}

func TestCheckLowStock(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	createRawItem(t, svc, "Flour", 2, floatPtr(5))
	createRawItem(t, svc, "Cheese", 10, floatPtr(5))
	createRawItem(t, svc, "Basil", 0, nil)

	low, err := svc.CheckLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Flour", low[0].Name)
}

func TestDeleteRawItemBlockedByRecipe(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	item := createRawItem(t, svc, "Flour", 10, nil)

	require.NoError(t, svc.SetRecipe(ctx, 1, []RecipeInput{
		{RawItemID: item.ID, QuantityNeeded: decimal.NewFromFloat(0.5)},
	}))

	err := svc.DeleteRawItem(ctx, item.ID)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	require.NoError(t, svc.SetRecipe(ctx, 1, nil))
	require.NoError(t, svc.DeleteRawItem(ctx, item.ID))
}

func TestSetRecipeReplacesRows(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 10, nil)
	cheese := createRawItem(t, svc, "Cheese", 10, nil)

	require.NoError(t, svc.SetRecipe(ctx, 7, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.3)},
		{RawItemID: cheese.ID, QuantityNeeded: decimal.NewFromFloat(0.2)},
	}))

	require.NoError(t, svc.SetRecipe(ctx, 7, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.4)},
	}))

	recipe, err := svc.GetRecipe(ctx, 7)
	require.NoError(t, err)
	require.Len(t, recipe, 1)
	require.Equal(t, flour.ID, recipe[0].RawItemID)
	require.True(t, recipe[0].QuantityNeeded.Equal(decimal.NewFromFloat(0.4)))
}

func TestValidateOrderReportsShortages(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 1, nil)

	require.NoError(t, svc.SetRecipe(ctx, 5, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.3)},
	}))

	result, err := svc.ValidateOrder(ctx, []OrderLine{
		{ItemName: "Margherita", VariantID: 5, VariantSize: "Large", Quantity: 4},
		{ItemName: "Cola", VariantID: 9, VariantSize: "Can", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.Shortages, 1)
	require.Equal(t, flour.ID, result.Shortages[0].RawItemID)
	require.True(t, result.Shortages[0].Required.Equal(decimal.NewFromFloat(1.2)))
	require.Equal(t, []string{"Cola (Can)"}, result.MissingRecipes)

	// Read-only: nothing was deducted.
	got, err := svc.GetRawItem(ctx, flour.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(1)))
}

func TestDeductForOrderSoftShortage(t *testing.T) {
	svc, conn := newTestService(t, false)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 1, nil)

	require.NoError(t, svc.SetRecipe(ctx, 5, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.3)},
	}))

	client := db.NewFromConn(conn)
	var result *DeductionResult
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		var innerErr error
		result, innerErr = svc.DeductForOrder(ctx, tx, []OrderLine{
			{ItemName: "Margherita", VariantID: 5, VariantSize: "Large", Quantity: 4},
		}, 42)
		return innerErr
	})
	require.NoError(t, err)
	require.Len(t, result.Shortages, 1)

	// Soft mode still deducts and lets stock go negative.
	got, err := svc.GetRawItem(ctx, flour.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromFloat(-0.2)))

	entries, err := svc.ListTransactions(ctx, flour.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, enums.TransactionTypeUsage, entries[0].TransactionType)
	require.NotNil(t, entries[0].OrderID)
	require.Equal(t, uint(42), *entries[0].OrderID)
	require.NotNil(t, entries[0].Notes)
	require.Equal(t, "Order: Margherita (Large)", *entries[0].Notes)
}

func TestDeductForOrderWritesOneLedgerRowPerLine(t *testing.T) {
	svc, conn := newTestService(t, false)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 10, nil)

	require.NoError(t, svc.SetRecipe(ctx, 5, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromInt(1)},
	}))
	require.NoError(t, svc.SetRecipe(ctx, 6, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromInt(2)},
	}))

	client := db.NewFromConn(conn)
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		_, innerErr := svc.DeductForOrder(ctx, tx, []OrderLine{
			{ItemName: "Margherita", VariantID: 5, VariantSize: "Small", Quantity: 1},
			{ItemName: "Pepperoni", VariantID: 6, VariantSize: "Large", Quantity: 1},
		}, 7)
		return innerErr
	})
	require.NoError(t, err)

	got, err := svc.GetRawItem(ctx, flour.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(7)))

	// A shared ingredient still gets one annotated row per sale line.
	entries, err := svc.ListTransactions(ctx, flour.ID, 10)
	require.NoError(t, err)
	usage := make(map[string]string)
	for _, entry := range entries {
		if entry.TransactionType != enums.TransactionTypeUsage {
			continue
		}
		require.NotNil(t, entry.Notes)
		usage[*entry.Notes] = entry.Amount.String()
	}
	require.Len(t, usage, 2)
	require.Equal(t, "-1", usage["Order: Margherita (Small)"])
	require.Equal(t, "-2", usage["Order: Pepperoni (Large)"])
}

func TestDeductForOrderHardBlock(t *testing.T) {
	svc, conn := newTestService(t, true)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 1, nil)

	require.NoError(t, svc.SetRecipe(ctx, 5, []RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.3)},
	}))

	client := db.NewFromConn(conn)
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		_, innerErr := svc.DeductForOrder(ctx, tx, []OrderLine{
			{ItemName: "Margherita", VariantID: 5, VariantSize: "Large", Quantity: 4},
		}, 42)
		return innerErr
	})
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	// The rolled back transaction left stock untouched.
	got, err := svc.GetRawItem(ctx, flour.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromInt(1)))
}

func TestReconcileDetectsDrift(t *testing.T) {
	svc, conn := newTestService(t, false)
	ctx := context.Background()
	flour := createRawItem(t, svc, "Flour", 10, nil)
	createRawItem(t, svc, "Cheese", 5, nil)

	drifts, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)

	// Skew the counter behind the ledger's back.
	require.NoError(t, conn.Model(&models.RawItem{}).
		Where("id = ?", flour.ID).
		Update("current_stock", decimal.NewFromInt(8)).Error)

	drifts, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, flour.ID, drifts[0].RawItemID)
	require.True(t, drifts[0].Delta.Equal(decimal.NewFromInt(-2)))
}
