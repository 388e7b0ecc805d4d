package controllers

import (
	"net/http"
	"strings"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	ordersvc "github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

type memberRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Phone string `json:"phone" validate:"required,max=20"`
}

func ListMembers(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListMembers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func RegisterMember(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload memberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.RegisterMember(r.Context(),
			validators.SanitizeString(payload.Name, 50),
			validators.SanitizeString(payload.Phone, 20),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// LookupMember resolves a member by phone so the register can confirm
// membership before applying member pricing.
func LookupMember(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(r.URL.Query().Get("phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "phone query parameter required"))
			return
		}

		member, err := svc.LookupMember(r.Context(), phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}
