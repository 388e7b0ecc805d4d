package orders

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testLine(quantity int) DraftLine {
	return DraftLine{
		ItemID:      1,
		ItemName:    "Margherita",
		VariantID:   10,
		VariantSize: "Small",
		Quantity:    quantity,
		UnitPrice:   decimal.NewFromInt(10),
	}
}

func TestDraftStoreReturnsSnapshots(t *testing.T) {
	store := NewDraftStore()
	draft := store.Create()

	_, err := store.Update(draft.ID, func(d *Draft) error {
		d.upsertLine(testLine(2))
		return nil
	})
	require.NoError(t, err)

	got := store.Get(draft.ID)
	require.Len(t, got.Lines, 1)

	// Mutating the snapshot must not leak back into the store.
	got.Lines[0].Quantity = 99
	got.Lines = append(got.Lines, testLine(5))
	got.CustomerName = "scribbled"

	again := store.Get(draft.ID)
	require.Len(t, again.Lines, 1)
	require.Equal(t, 2, again.Lines[0].Quantity)
	require.Empty(t, again.CustomerName)
}

func TestDraftStoreConcurrentEditsAndReads(t *testing.T) {
	store := NewDraftStore()
	draft := store.Create()

	const edits = 50
	var wg sync.WaitGroup
	wg.Add(2)

	errs := make(chan error, edits)
	go func() {
		defer wg.Done()
		for i := 0; i < edits; i++ {
			_, err := store.Update(draft.ID, func(d *Draft) error {
				d.upsertLine(testLine(1))
				return nil
			})
			if err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < edits; i++ {
			if got := store.Get(draft.ID); got != nil {
				if _, err := json.Marshal(got); err != nil {
					errs <- err
				}
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got := store.Get(draft.ID)
	require.Len(t, got.Lines, 1)
	require.Equal(t, edits, got.Lines[0].Quantity)
	require.True(t, got.Total.Equal(decimal.NewFromInt(10*edits)))
}

func TestDraftStoreUpdateAfterDeleteFails(t *testing.T) {
	store := NewDraftStore()
	draft := store.Create()
	store.Delete(draft.ID)

	_, err := store.Update(draft.ID, func(d *Draft) error { return nil })
	require.ErrorIs(t, err, ErrDraftNotFound)
}