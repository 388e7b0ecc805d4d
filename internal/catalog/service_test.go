package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn))
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreateCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "  Pizzas ", DiscountEligible: true})
	require.NoError(t, err)
	require.Equal(t, "Pizzas", category.Name)
	require.True(t, category.DiscountEligible)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "   "})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceDeleteCategoryBlockedWhileItemsRemain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas", DiscountEligible: true})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, MenuItemInput{
		CategoryID: category.ID,
		Name:       "Margherita",
		IsActive:   true,
		Variants:   []VariantInput{{Size: "Small", Price: decimal.NewFromInt(8)}},
	})
	require.NoError(t, err)

	err = svc.DeleteCategory(ctx, category.ID)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	items, err := svc.ListItemsByCategory(ctx, category.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteItem(ctx, items[0].ID))
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))
}

func TestServiceDeleteCategoryNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.DeleteCategory(context.Background(), 999)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestServiceCreateItemValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input MenuItemInput
	}{
		{"missing name", MenuItemInput{
			CategoryID: category.ID,
			Variants:   []VariantInput{{Size: "Small", Price: decimal.NewFromInt(8)}},
		}},
		{"no variants", MenuItemInput{CategoryID: category.ID, Name: "Margherita"}},
		{"zero price", MenuItemInput{
			CategoryID: category.ID,
			Name:       "Margherita",
			Variants:   []VariantInput{{Size: "Small", Price: decimal.Zero}},
		}},
		{"duplicate size", MenuItemInput{
			CategoryID: category.ID,
			Name:       "Margherita",
			Variants: []VariantInput{
				{Size: "Small", Price: decimal.NewFromInt(8)},
				{Size: "Small", Price: decimal.NewFromInt(9)},
			},
		}},
		{"unknown category", MenuItemInput{
			CategoryID: 999,
			Name:       "Margherita",
			Variants:   []VariantInput{{Size: "Small", Price: decimal.NewFromInt(8)}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tc.input)
			require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestServiceCreateItemDuplicateNamePerCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pizzas, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)
	drinks, err := svc.CreateCategory(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	input := MenuItemInput{
		CategoryID: pizzas.ID,
		Name:       "Margherita",
		IsActive:   true,
		Variants:   []VariantInput{{Size: "Small", Price: decimal.NewFromInt(8)}},
	}
	_, err = svc.CreateItem(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, input)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	input.CategoryID = drinks.ID
	_, err = svc.CreateItem(ctx, input)
	require.NoError(t, err)
}

func TestServiceUpdateItemKeepsOwnName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)

	memberPrice := decimal.NewFromInt(7)
	created, err := svc.CreateItem(ctx, MenuItemInput{
		CategoryID: category.ID,
		Name:       "Margherita",
		IsActive:   true,
		Variants:   []VariantInput{{Size: "Small", Price: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, created.ID, MenuItemInput{
		CategoryID: category.ID,
		Name:       "Margherita",
		IsActive:   true,
		Variants: []VariantInput{
			{Size: "Small", Price: decimal.NewFromInt(10), MemberPrice: &memberPrice},
			{Size: "Large", Price: decimal.NewFromInt(16)},
		},
	})
	require.NoError(t, err)

	got, err := svc.GetItem(ctx, updated.ID)
	require.NoError(t, err)
	require.Len(t, got.Variants, 2)
}
