package orders

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftLine is one entry on the register screen. UnitPrice is the price the
// customer will pay per unit under the draft's current member status.
type DraftLine struct {
	ItemID             uint            `json:"item_id"`
	ItemName           string          `json:"item_name"`
	VariantID          uint            `json:"variant_id"`
	VariantSize        string          `json:"variant_size"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	MemberPriceApplied bool            `json:"member_price_applied"`
	DiscountApplied    decimal.Decimal `json:"discount_applied"`
}

// Draft is an in-progress order that only exists in memory until finalized.
// Lines are keyed by item and variant size: adding the same size again bumps
// the quantity instead of appending a duplicate row.
type Draft struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	IsMember     bool            `json:"is_member"`
	Lines        []DraftLine     `json:"lines"`
	Total        decimal.Decimal `json:"total"`
}

// ErrDraftNotFound signals an unknown or already finalized draft id.
var ErrDraftNotFound = errors.New("draft not found")

func (d *Draft) findLine(itemID uint, variantSize string) int {
	for i, line := range d.Lines {
		if line.ItemID == itemID && line.VariantSize == variantSize {
			return i
		}
	}
	return -1
}

// upsertLine merges a line into the draft. An existing line for the same
// item and size gains the quantity and takes the fresh price; the total is
// always recomputed from scratch afterwards.
func (d *Draft) upsertLine(line DraftLine) {
	if i := d.findLine(line.ItemID, line.VariantSize); i >= 0 {
		d.Lines[i].Quantity += line.Quantity
		d.Lines[i].VariantID = line.VariantID
		d.Lines[i].UnitPrice = line.UnitPrice
		d.Lines[i].MemberPriceApplied = line.MemberPriceApplied
		d.Lines[i].DiscountApplied = line.DiscountApplied
	} else {
		d.Lines = append(d.Lines, line)
	}
	d.recalcTotal()
}

func (d *Draft) removeLine(itemID uint, variantSize string) bool {
	i := d.findLine(itemID, variantSize)
	if i < 0 {
		return false
	}
	d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
	d.recalcTotal()
	return true
}

func (d *Draft) setQuantity(itemID uint, variantSize string, quantity int) bool {
	i := d.findLine(itemID, variantSize)
	if i < 0 {
		return false
	}
	d.Lines[i].Quantity = quantity
	d.recalcTotal()
	return true
}

func (d *Draft) recalcTotal() {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	d.Total = total
}

// clone returns a snapshot safe to hand outside the store lock; the lines
// slice is copied so callers never alias live draft state.
func (d *Draft) clone() *Draft {
	out := *d
	out.Lines = append([]DraftLine(nil), d.Lines...)
	return &out
}

// draftEntry pairs a draft with its own lock, so edits on one register do
// not serialize behind another register's catalog lookups.
type draftEntry struct {
	mu    sync.Mutex
	draft *Draft
}

// DraftStore holds the open drafts of the running process. Drafts are not
// persisted; a restart clears the register. Every accessor returns a
// snapshot copy, never the live draft.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]*draftEntry
}

// NewDraftStore builds an empty store.
func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]*draftEntry)}
}

func (s *DraftStore) entry(id string) *draftEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[id]
}

// Create opens a fresh draft and returns a snapshot of it.
func (s *DraftStore) Create() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft := &Draft{ID: uuid.NewString(), Total: decimal.Zero}
	s.drafts[draft.ID] = &draftEntry{draft: draft}
	return draft.clone()
}

// Get returns a snapshot of the draft for id, or nil when it does not
// exist.
func (s *DraftStore) Get(id string) *Draft {
	entry := s.entry(id)
	if entry == nil {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.draft.clone()
}

// Delete drops the draft for id.
func (s *DraftStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Update runs fn while holding the draft's lock so concurrent sessions
// cannot interleave edits on the same draft, and returns a snapshot of the
// result.
func (s *DraftStore) Update(id string, fn func(d *Draft) error) (*Draft, error) {
	entry := s.entry(id)
	if entry == nil {
		return nil, ErrDraftNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	// The draft may have been finalized while we waited for its lock.
	if s.entry(id) != entry {
		return nil, ErrDraftNotFound
	}
	if err := fn(entry.draft); err != nil {
		return nil, err
	}
	return entry.draft.clone(), nil
}
