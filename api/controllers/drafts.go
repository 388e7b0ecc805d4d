package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	inventorysvc "github.com/omerfarooq187/pizza-pos-backend/internal/inventory"
	ordersvc "github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func draftID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "draftID")
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "draft id required")
	}
	return id, nil
}

func StartDraft(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft := svc.StartDraft(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func GetDraft(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.GetDraft(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func CancelDraft(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.CancelDraft(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cancelled": true})
	}
}

type addDraftItemRequest struct {
	ItemID    uint `json:"item_id" validate:"required"`
	VariantID uint `json:"variant_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

func AddDraftItem(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addDraftItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.AddItem(r.Context(), id, payload.ItemID, payload.VariantID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

type draftLineRequest struct {
	ItemID      uint   `json:"item_id" validate:"required"`
	VariantSize string `json:"variant_size" validate:"required,max=20"`
	Quantity    int    `json:"quantity" validate:"omitempty,min=1"`
}

func RemoveDraftItem(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload draftLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.RemoveItem(r.Context(), id, payload.ItemID, payload.VariantSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func SetDraftQuantity(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload draftLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity < 1 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1"))
			return
		}

		draft, err := svc.SetQuantity(r.Context(), id, payload.ItemID, payload.VariantSize, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

type memberStatusRequest struct {
	IsMember bool `json:"is_member"`
}

func SetDraftMemberStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload memberStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SetMemberStatus(r.Context(), id, payload.IsMember)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

type contactRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
	Email string `json:"email" validate:"omitempty,max=50"`
}

func SetDraftContact(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SetContact(r.Context(), id,
			validators.SanitizeString(payload.Name, 100),
			validators.SanitizeString(payload.Phone, 20),
			validators.SanitizeString(payload.Email, 50),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// ValidateDraft previews the inventory impact of the draft without touching
// stock.
func ValidateDraft(svc ordersvc.Service, inv inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.GetDraft(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]inventorysvc.OrderLine, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			lines = append(lines, inventorysvc.OrderLine{
				ItemName:    line.ItemName,
				VariantID:   line.VariantID,
				VariantSize: line.VariantSize,
				Quantity:    line.Quantity,
			})
		}

		result, err := inv.ValidateOrder(r.Context(), lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// FinalizeDraft commits the draft as an order. Stock shortages that did not
// block the sale come back as warnings next to the order payload.
func FinalizeDraft(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := draftID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Finalize(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Inventory != nil && (len(result.Inventory.Shortages) > 0 || len(result.Inventory.MissingRecipes) > 0) {
			responses.WriteSuccessWarnings(w, result.Order, result.Inventory)
			return
		}
		responses.WriteSuccess(w, result.Order)
	}
}
