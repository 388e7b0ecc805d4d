package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	catalogsvc "github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

type variantRequest struct {
	Size        string           `json:"size" validate:"required,max=20"`
	Price       decimal.Decimal  `json:"price"`
	MemberPrice *decimal.Decimal `json:"member_price,omitempty"`
}

type menuItemRequest struct {
	CategoryID    uint             `json:"category_id" validate:"required"`
	Name          string           `json:"name" validate:"required,max=100"`
	Description   *string          `json:"description,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	DiscountType  *string          `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	Variants      []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (r menuItemRequest) toInput() (catalogsvc.MenuItemInput, error) {
	input := catalogsvc.MenuItemInput{
		CategoryID:    r.CategoryID,
		Name:          validators.SanitizeString(r.Name, 100),
		Description:   r.Description,
		IsActive:      true,
		DiscountValue: r.DiscountValue,
	}
	if r.IsActive != nil {
		input.IsActive = *r.IsActive
	}
	if r.DiscountType != nil {
		dt := enums.DiscountType(strings.ToLower(strings.TrimSpace(*r.DiscountType)))
		if !dt.IsValid() {
			return catalogsvc.MenuItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
		}
		input.DiscountType = &dt
	}
	for _, v := range r.Variants {
		input.Variants = append(input.Variants, catalogsvc.VariantInput{
			Size:        validators.SanitizeString(v.Size, 20),
			Price:       v.Price,
			MemberPrice: v.MemberPrice,
		})
	}
	return input, nil
}

func ListMenu(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListMenu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CreateMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func UpdateMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload menuItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func DeleteMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ToggleMenuItem flips the item's availability on the ordering screen.
func ToggleMenuItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ToggleItemActive(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
