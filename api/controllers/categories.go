package controllers

import (
	"net/http"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	catalogsvc "github.com/omerfarooq187/pizza-pos-backend/internal/catalog"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

type categoryRequest struct {
	Name             string `json:"name" validate:"required,max=50"`
	DiscountEligible bool   `json:"discount_eligible"`
}

func (r categoryRequest) toInput() catalogsvc.CategoryInput {
	return catalogsvc.CategoryInput{
		Name:             validators.SanitizeString(r.Name, 50),
		DiscountEligible: r.DiscountEligible,
	}
}

func ListCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func CreateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func UpdateCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func DeleteCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func ListCategoryItems(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListItemsByCategory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
