package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omerfarooq187/pizza-pos-backend/pkg/db"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderLine is the slice of an order the deduction pass needs. Orders hand
// these over instead of persisted rows so deduction can run before the order
// exists.
type OrderLine struct {
	ItemName    string
	VariantID   uint
	VariantSize string
	Quantity    int
}

// StockWarning reports one ingredient that an order pushed, or would push,
// below zero.
type StockWarning struct {
	RawItemID uint            `json:"raw_item_id"`
	Name      string          `json:"name"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

// DeductionResult collects the advisory output of a deduction pass.
type DeductionResult struct {
	Shortages      []StockWarning `json:"shortages,omitempty"`
	MissingRecipes []string       `json:"missing_recipes,omitempty"`
}

// Drift describes the difference between a raw item's running stock counter
// and the folded ledger.
type Drift struct {
	RawItemID    uint            `json:"raw_item_id"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	LedgerTotal  decimal.Decimal `json:"ledger_total"`
	Delta        decimal.Decimal `json:"delta"`
}

// RawItemInput carries the validated payload for raw item writes.
type RawItemInput struct {
	Name           string
	Description    *string
	Unit           string
	CurrentStock   decimal.Decimal
	AlertThreshold *decimal.Decimal
	Supplier       *string
}

// RecipeInput sets how much of one ingredient a variant consumes.
type RecipeInput struct {
	RawItemID      uint
	QuantityNeeded decimal.Decimal
}

// Service exposes stock, recipe and ledger operations.
type Service interface {
	ListRawItems(ctx context.Context) ([]models.RawItem, error)
	GetRawItem(ctx context.Context, id uint) (*models.RawItem, error)
	CreateRawItem(ctx context.Context, input RawItemInput) (*models.RawItem, error)
	UpdateRawItem(ctx context.Context, id uint, input RawItemInput) (*models.RawItem, error)
	DeleteRawItem(ctx context.Context, id uint) error

	Restock(ctx context.Context, rawItemID uint, amount decimal.Decimal, notes *string) error
	Adjust(ctx context.Context, rawItemID uint, delta decimal.Decimal, notes *string) error
	CheckLowStock(ctx context.Context) ([]models.RawItem, error)
	ListTransactions(ctx context.Context, rawItemID uint, limit int) ([]models.InventoryTransaction, error)
	Reconcile(ctx context.Context) ([]Drift, error)

	SetRecipe(ctx context.Context, variantID uint, rows []RecipeInput) error
	GetRecipe(ctx context.Context, variantID uint) ([]models.Recipe, error)

	ValidateOrder(ctx context.Context, lines []OrderLine) (*DeductionResult, error)
	DeductForOrder(ctx context.Context, tx *gorm.DB, lines []OrderLine, orderID uint) (*DeductionResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	logg      *logger.Logger
	metrics   *metrics.POSMetrics
	hardBlock bool
}

// NewService constructs an inventory service instance. hardBlock turns stock
// shortages from warnings into order failures.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, m *metrics.POSMetrics, hardBlock bool) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg, metrics: m, hardBlock: hardBlock}, nil
}

func (s *service) ListRawItems(ctx context.Context) ([]models.RawItem, error) {
	rows, err := s.repo.ListRawItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list raw items")
	}
	return rows, nil
}

func (s *service) GetRawItem(ctx context.Context, id uint) (*models.RawItem, error) {
	item, err := s.repo.FindRawItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "raw item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load raw item")
	}
	return item, nil
}

func (s *service) CreateRawItem(ctx context.Context, input RawItemInput) (*models.RawItem, error) {
	if err := validateRawItemInput(input); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	exists, err := s.repo.RawItemExists(ctx, name, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check raw item name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "raw item name already in use")
	}

	item := &models.RawItem{
		Name:           name,
		Description:    input.Description,
		Unit:           strings.TrimSpace(input.Unit),
		CurrentStock:   input.CurrentStock,
		AlertThreshold: input.AlertThreshold,
		Supplier:       input.Supplier,
	}

	// The opening balance lands in the ledger too so reconciliation starts
	// from zero drift.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		stock := item.CurrentStock
		item.CurrentStock = decimal.Zero
		if err := txRepo.CreateRawItem(ctx, item); err != nil {
			return err
		}
		if stock.IsZero() {
			return nil
		}
		notes := "opening balance"
		return txRepo.AdjustStock(ctx, item.ID, stock, enums.TransactionTypePurchase, nil, &notes)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "raw_items.name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "raw item name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create raw item")
	}
	item.CurrentStock = input.CurrentStock
	return item, nil
}

// UpdateRawItem changes descriptive fields only. Stock moves exclusively
// through Restock/Adjust so every change leaves a ledger entry.
func (s *service) UpdateRawItem(ctx context.Context, id uint, input RawItemInput) (*models.RawItem, error) {
	if err := validateRawItemInput(input); err != nil {
		return nil, err
	}

	item, err := s.GetRawItem(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	exists, err := s.repo.RawItemExists(ctx, name, &id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check raw item name")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "raw item name already in use")
	}

	item.Name = name
	item.Description = input.Description
	item.Unit = strings.TrimSpace(input.Unit)
	item.AlertThreshold = input.AlertThreshold
	item.Supplier = input.Supplier
	if err := s.repo.UpdateRawItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update raw item")
	}
	return item, nil
}

func (s *service) DeleteRawItem(ctx context.Context, id uint) error {
	if _, err := s.GetRawItem(ctx, id); err != nil {
		return err
	}

	recipes, err := s.repo.ListRecipesForRawItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check recipe references")
	}
	if len(recipes) > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "raw item is used by recipes").
			WithDetails(map[string]any{"recipes": len(recipes)})
	}

	if err := s.repo.DeleteRawItem(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete raw item")
	}
	return nil
}

func (s *service) Restock(ctx context.Context, rawItemID uint, amount decimal.Decimal, notes *string) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock amount must be positive")
	}
	return s.applyStockChange(ctx, rawItemID, amount, enums.TransactionTypePurchase, notes)
}

// Adjust applies a signed manual correction, stocktake results for example.
func (s *service) Adjust(ctx context.Context, rawItemID uint, delta decimal.Decimal, notes *string) error {
	if delta.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta cannot be zero")
	}
	return s.applyStockChange(ctx, rawItemID, delta, enums.TransactionTypeAdjustment, notes)
}

func (s *service) applyStockChange(ctx context.Context, rawItemID uint, delta decimal.Decimal, txType enums.TransactionType, notes *string) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).AdjustStock(ctx, rawItemID, delta, txType, nil, notes)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "raw item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock change")
	}
	return nil
}

func (s *service) CheckLowStock(ctx context.Context) ([]models.RawItem, error) {
	rows, err := s.repo.ListBelowThreshold(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check low stock")
	}
	return rows, nil
}

func (s *service) ListTransactions(ctx context.Context, rawItemID uint, limit int) ([]models.InventoryTransaction, error) {
	if _, err := s.GetRawItem(ctx, rawItemID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTransactions(ctx, rawItemID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return rows, nil
}

// Reconcile folds the ledger per raw item and reports every item whose
// running counter disagrees with it.
func (s *service) Reconcile(ctx context.Context) ([]Drift, error) {
	items, err := s.repo.ListRawItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list raw items")
	}

	var drifts []Drift
	for _, item := range items {
		total, err := s.repo.SumLedger(ctx, item.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fold ledger")
		}
		if item.CurrentStock.Equal(total) {
			continue
		}
		drift := Drift{
			RawItemID:    item.ID,
			Name:         item.Name,
			CurrentStock: item.CurrentStock,
			LedgerTotal:  total,
			Delta:        item.CurrentStock.Sub(total),
		}
		drifts = append(drifts, drift)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"raw_item_id":  item.ID,
			"raw_item":     item.Name,
			"stock":        item.CurrentStock.String(),
			"ledger_total": total.String(),
		}), "stock counter disagrees with ledger")
	}
	return drifts, nil
}

func (s *service) SetRecipe(ctx context.Context, variantID uint, rows []RecipeInput) error {
	seen := map[uint]struct{}{}
	for _, row := range rows {
		if !row.QuantityNeeded.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "recipe quantity must be positive").
				WithDetails(map[string]any{"raw_item_id": row.RawItemID})
		}
		if _, dup := seen[row.RawItemID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate recipe ingredient").
				WithDetails(map[string]any{"raw_item_id": row.RawItemID})
		}
		seen[row.RawItemID] = struct{}{}
		if _, err := s.GetRawItem(ctx, row.RawItemID); err != nil {
			return err
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		existing, err := txRepo.ListRecipeForVariant(ctx, variantID)
		if err != nil {
			return err
		}
		for _, row := range existing {
			if _, keep := seen[row.RawItemID]; keep {
				continue
			}
			if err := txRepo.DeleteRecipe(ctx, variantID, row.RawItemID); err != nil {
				return err
			}
		}
		for _, row := range rows {
			recipe := models.Recipe{
				VariantID:      variantID,
				RawItemID:      row.RawItemID,
				QuantityNeeded: row.QuantityNeeded,
			}
			if err := txRepo.UpsertRecipe(ctx, &recipe); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set recipe")
	}
	return nil
}

func (s *service) GetRecipe(ctx context.Context, variantID uint) ([]models.Recipe, error) {
	rows, err := s.repo.ListRecipeForVariant(ctx, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}
	return rows, nil
}

// ValidateOrder runs the deduction math without writing anything, so the
// register can surface shortages before the sale is committed.
func (s *service) ValidateOrder(ctx context.Context, lines []OrderLine) (*DeductionResult, error) {
	required, _, missing, err := s.requirements(ctx, s.repo, lines)
	if err != nil {
		return nil, err
	}

	result := &DeductionResult{MissingRecipes: missing}
	for rawItemID, amount := range required {
		item, err := s.repo.FindRawItemByID(ctx, rawItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load raw item")
		}
		if item.CurrentStock.LessThan(amount) {
			result.Shortages = append(result.Shortages, StockWarning{
				RawItemID: item.ID,
				Name:      item.Name,
				Required:  amount,
				Available: item.CurrentStock,
			})
		}
	}
	return result, nil
}

// DeductForOrder consumes ingredients for a committed sale inside the
// caller's transaction. Shortages do not stop the sale unless hard blocking
// is configured; stock is allowed to go negative and the shortage is
// reported back.
func (s *service) DeductForOrder(ctx context.Context, tx *gorm.DB, lines []OrderLine, orderID uint) (*DeductionResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "deduction requires a transaction")
	}
	txRepo := s.repo.WithTx(tx)

	required, deductions, missing, err := s.requirements(ctx, txRepo, lines)
	if err != nil {
		return nil, err
	}

	result := &DeductionResult{MissingRecipes: missing}
	for _, name := range missing {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID,
			"line":     name,
		}), "order line has no recipe, skipping deduction")
	}

	for rawItemID, amount := range required {
		item, err := txRepo.FindRawItemByID(ctx, rawItemID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load raw item")
		}
		if item.CurrentStock.LessThan(amount) {
			warning := StockWarning{
				RawItemID: item.ID,
				Name:      item.Name,
				Required:  amount,
				Available: item.CurrentStock,
			}
			result.Shortages = append(result.Shortages, warning)
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_id":  orderID,
				"raw_item":  item.Name,
				"required":  amount.String(),
				"available": item.CurrentStock.String(),
			}), "insufficient stock for order")
		}
	}

	if s.hardBlock && len(result.Shortages) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(result.Shortages)
	}

	// One ledger row per line per ingredient, annotated with the sale line,
	// so usage stays traceable back to what was sold.
	oid := orderID
	for _, d := range deductions {
		notes := d.notes
		if err := txRepo.AdjustStock(ctx, d.rawItemID, d.amount.Neg(), enums.TransactionTypeUsage, &oid, &notes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct stock")
		}
	}

	if s.metrics != nil {
		s.metrics.AddStockWarnings(len(result.Shortages))
	}
	return result, nil
}

// lineDeduction is one planned ledger write: the amount of one ingredient
// consumed by one order line.
type lineDeduction struct {
	rawItemID uint
	amount    decimal.Decimal
	notes     string
}

// requirements expands order lines into per-line ingredient deductions plus
// the folded total needed per raw item for shortage checks.
func (s *service) requirements(ctx context.Context, r Repository, lines []OrderLine) (map[uint]decimal.Decimal, []lineDeduction, []string, error) {
	required := make(map[uint]decimal.Decimal)
	var deductions []lineDeduction
	var missing []string
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"line": lineLabel(line)})
		}
		recipe, err := r.ListRecipeForVariant(ctx, line.VariantID)
		if err != nil {
			return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
		}
		if len(recipe) == 0 {
			missing = append(missing, lineLabel(line))
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, row := range recipe {
			amount := row.QuantityNeeded.Mul(qty)
			required[row.RawItemID] = required[row.RawItemID].Add(amount)
			deductions = append(deductions, lineDeduction{
				rawItemID: row.RawItemID,
				amount:    amount,
				notes:     "Order: " + lineLabel(line),
			})
		}
	}
	return required, deductions, missing, nil
}

func lineLabel(line OrderLine) string {
	return fmt.Sprintf("%s (%s)", line.ItemName, line.VariantSize)
}

func validateRawItemInput(input RawItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "raw item name is required")
	}
	if strings.TrimSpace(input.Unit) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "raw item unit is required")
	}
	if input.CurrentStock.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.AlertThreshold != nil && input.AlertThreshold.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert threshold cannot be negative")
	}
	return nil
}
