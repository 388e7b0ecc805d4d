package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	inventorysvc "github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

type rawItemRequest struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Description    *string          `json:"description,omitempty"`
	Unit           string           `json:"unit" validate:"required,max=20"`
	CurrentStock   decimal.Decimal  `json:"current_stock"`
	AlertThreshold *decimal.Decimal `json:"alert_threshold,omitempty"`
	Supplier       *string          `json:"supplier,omitempty"`
}

func (r rawItemRequest) toInput() inventorysvc.RawItemInput {
	return inventorysvc.RawItemInput{
		Name:           validators.SanitizeString(r.Name, 100),
		Description:    r.Description,
		Unit:           validators.SanitizeString(r.Unit, 20),
		CurrentStock:   r.CurrentStock,
		AlertThreshold: r.AlertThreshold,
		Supplier:       r.Supplier,
	}
}

func ListRawItems(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListRawItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetRawItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CreateRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rawItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateRawItem(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func UpdateRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rawItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateRawItem(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func DeleteRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRawItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type stockChangeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  *string         `json:"notes,omitempty"`
}

// RestockRawItem records a purchase and raises the running stock counter.
func RestockRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Restock(r.Context(), id, payload.Amount, payload.Notes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetRawItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdjustRawItem records a signed manual correction.
func AdjustRawItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Adjust(r.Context(), id, payload.Amount, payload.Notes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetRawItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func LowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.CheckLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ReconcileInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drifts, err := svc.Reconcile(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, drifts)
	}
}

func ListStockTransactions(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "rawItemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListTransactions(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type recipeRowRequest struct {
	RawItemID      uint            `json:"raw_item_id" validate:"required"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
}

type recipeRequest struct {
	Rows []recipeRowRequest `json:"rows" validate:"dive"`
}

// SetRecipe replaces the ingredient list of a variant.
func SetRecipe(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parseIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows := make([]inventorysvc.RecipeInput, 0, len(payload.Rows))
		for _, row := range payload.Rows {
			rows = append(rows, inventorysvc.RecipeInput{
				RawItemID:      row.RawItemID,
				QuantityNeeded: row.QuantityNeeded,
			})
		}

		if err := svc.SetRecipe(r.Context(), variantID, rows); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.GetRecipe(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func GetRecipe(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parseIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.GetRecipe(r.Context(), variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}
