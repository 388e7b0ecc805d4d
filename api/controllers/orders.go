package controllers

import (
	"net/http"
	"strings"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	ordersvc "github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func UpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.OrderStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}

		if err := svc.UpdateOrderStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
