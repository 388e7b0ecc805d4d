package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

type fixture struct {
	conn      *gorm.DB
	svc       Service
	catalog   catalog.Service
	inventory inventory.Service
}

func newFixture(t *testing.T, hardBlock bool) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{},
		&models.MenuItem{},
		&models.ItemVariant{},
		&models.Member{},
		&models.Order{},
		&models.OrderItem{},
		&models.RawItem{},
		&models.Recipe{},
		&models.InventoryTransaction{},
	))

	client := db.NewFromConn(conn)
	logg := logger.New(logger.Options{ServiceName: "test"})

	catSvc, err := catalog.NewService(catalog.NewRepository(conn), client)
	require.NoError(t, err)
	invSvc, err := inventory.NewService(inventory.NewRepository(conn), client, logg, nil, hardBlock)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), NewDraftStore(), catSvc, invSvc, client, logg, nil)
	require.NoError(t, err)

	return &fixture{conn: conn, svc: svc, catalog: catSvc, inventory: invSvc}
}

// seedMenu creates an eligible Pizzas category with a Margherita whose Small
// variant lists at 10 with a member price of 7.
func seedMenu(t *testing.T, f *fixture) *models.MenuItem {
	t.Helper()
	ctx := context.Background()

	category, err := f.catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Pizzas", DiscountEligible: true})
	require.NoError(t, err)

	memberPrice := decimal.NewFromInt(7)
	item, err := f.catalog.CreateItem(ctx, catalog.MenuItemInput{
		CategoryID: category.ID,
		Name:       "Margherita",
		IsActive:   true,
		Variants: []catalog.VariantInput{
			{Size: "Small", Price: decimal.NewFromInt(10), MemberPrice: &memberPrice},
			{Size: "Large", Price: decimal.NewFromInt(16)},
		},
	})
	require.NoError(t, err)
	return item
}

func smallVariant(t *testing.T, item *models.MenuItem) *models.ItemVariant {
	t.Helper()
	for i := range item.Variants {
		if item.Variants[i].Size == "Small" {
			return &item.Variants[i]
		}
	}
	t.Fatal("small variant missing")
	return nil
}

func TestAddItemMergesLines(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)
	draft, err = f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)

	require.Len(t, draft.Lines, 1)
	require.Equal(t, 2, draft.Lines[0].Quantity)
	require.True(t, draft.Total.Equal(decimal.NewFromInt(20)))
}

func TestMemberPricingTogglesTotal(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 2)
	require.NoError(t, err)

	draft, err = f.svc.SetMemberStatus(ctx, draft.ID, true)
	require.NoError(t, err)
	require.True(t, draft.Lines[0].UnitPrice.Equal(decimal.NewFromInt(7)))
	require.True(t, draft.Lines[0].MemberPriceApplied)
	require.True(t, draft.Total.Equal(decimal.NewFromInt(14)))

	draft, err = f.svc.SetMemberStatus(ctx, draft.ID, false)
	require.NoError(t, err)
	require.True(t, draft.Total.Equal(decimal.NewFromInt(20)))
}

func TestMemberPricingFallsBackToHalfPrice(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)

	var large *models.ItemVariant
	for i := range item.Variants {
		if item.Variants[i].Size == "Large" {
			large = &item.Variants[i]
		}
	}
	require.NotNil(t, large)

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, large.ID, 1)
	require.NoError(t, err)

	draft, err = f.svc.SetMemberStatus(ctx, draft.ID, true)
	require.NoError(t, err)
	require.True(t, draft.Lines[0].UnitPrice.Equal(decimal.NewFromInt(8)))
}

func TestMemberPricingSkipsIneligibleCategory(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	category, err := f.catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Drinks", DiscountEligible: false})
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, catalog.MenuItemInput{
		CategoryID: category.ID,
		Name:       "Cola",
		IsActive:   true,
		Variants:   []catalog.VariantInput{{Size: "Can", Price: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)

	draft := f.svc.StartDraft(ctx)
	_, err = f.svc.AddItem(ctx, draft.ID, item.ID, item.Variants[0].ID, 1)
	require.NoError(t, err)

	draft, err = f.svc.SetMemberStatus(ctx, draft.ID, true)
	require.NoError(t, err)
	require.True(t, draft.Lines[0].UnitPrice.Equal(decimal.NewFromInt(3)))
	require.False(t, draft.Lines[0].MemberPriceApplied)
}

func TestSetMemberStatusDropsVanishedLines(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteItem(ctx, item.ID))

	draft, err = f.svc.SetMemberStatus(ctx, draft.ID, true)
	require.NoError(t, err)
	require.Empty(t, draft.Lines)
	require.True(t, draft.Total.IsZero())
}

func TestAddItemRejectsInactiveItem(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	require.NoError(t, f.catalog.ToggleItemActive(ctx, item.ID))

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestFinalizePersistsOrderAndDeductsStock(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	flour, err := f.inventory.CreateRawItem(ctx, inventory.RawItemInput{
		Name: "Flour", Unit: "kg", CurrentStock: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.NoError(t, f.inventory.SetRecipe(ctx, variant.ID, []inventory.RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.25)},
	}))

	draft := f.svc.StartDraft(ctx)
	_, err = f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.SetContact(ctx, draft.ID, "Ali", "", "")
	require.NoError(t, err)

	result, err := f.svc.Finalize(ctx, draft.ID)
	require.NoError(t, err)
	require.NotZero(t, result.Order.ID)
	require.Equal(t, "Ali", result.Order.CustomerName)
	require.Equal(t, "N/A", result.Order.Phone)
	require.Equal(t, "N/A", result.Order.Email)
	require.True(t, result.Order.TotalAmount.Equal(decimal.NewFromInt(20)))
	require.Empty(t, result.Inventory.Shortages)

	got, err := f.inventory.GetRawItem(ctx, flour.ID)
	require.NoError(t, err)
	require.True(t, got.CurrentStock.Equal(decimal.NewFromFloat(9.5)))

	// The draft is gone once the sale is committed.
	_, err = f.svc.GetDraft(ctx, draft.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	persisted, err := f.svc.GetOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Len(t, persisted.Items, 1)
	require.Equal(t, 2, persisted.Items[0].Quantity)
}

func TestFinalizeLinksMemberByPhone(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	member, err := f.svc.RegisterMember(ctx, "Sara", "0300-1234567")
	require.NoError(t, err)

	draft := f.svc.StartDraft(ctx)
	_, err = f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.SetMemberStatus(ctx, draft.ID, true)
	require.NoError(t, err)
	_, err = f.svc.SetContact(ctx, draft.ID, "Sara", "0300-1234567", "")
	require.NoError(t, err)

	result, err := f.svc.Finalize(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Order.MemberID)
	require.Equal(t, member.ID, *result.Order.MemberID)
	require.True(t, result.Order.IsMember)
	require.True(t, result.Order.TotalAmount.Equal(decimal.NewFromInt(7)))
}

func TestFinalizeHardBlockRollsBackOrder(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	flour, err := f.inventory.CreateRawItem(ctx, inventory.RawItemInput{
		Name: "Flour", Unit: "kg", CurrentStock: decimal.NewFromFloat(0.1),
	})
	require.NoError(t, err)
	require.NoError(t, f.inventory.SetRecipe(ctx, variant.ID, []inventory.RecipeInput{
		{RawItemID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.25)},
	}))

	draft := f.svc.StartDraft(ctx)
	_, err = f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, draft.ID)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	// The order insert rolled back with the failed deduction.
	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)

	// The draft survives so the register can retry after restocking.
	_, err = f.svc.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
}

func TestFinalizeEmptyDraft(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.Finalize(ctx, draft.ID)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	item := seedMenu(t, f)
	variant := smallVariant(t, item)

	draft := f.svc.StartDraft(ctx)
	_, err := f.svc.AddItem(ctx, draft.ID, item.ID, variant.ID, 1)
	require.NoError(t, err)
	result, err := f.svc.Finalize(ctx, draft.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateOrderStatus(ctx, result.Order.ID, enums.OrderStatusCompleted))
	got, err := f.svc.GetOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, got.Status)

	err = f.svc.UpdateOrderStatus(ctx, result.Order.ID, enums.OrderStatus("bogus"))
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	err = f.svc.UpdateOrderStatus(ctx, 999, enums.OrderStatusCancelled)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRegisterMemberDuplicatePhone(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.RegisterMember(ctx, "Sara", "0300-1234567")
	require.NoError(t, err)
	_, err = f.svc.RegisterMember(ctx, "Imposter", "0300-1234567")
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}
