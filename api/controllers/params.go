package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
)

// parseIDParam reads a numeric chi URL parameter.
func parseIDParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id parameter").
			WithDetails(map[string]any{"param": name})
	}
	return uint(value), nil
}
