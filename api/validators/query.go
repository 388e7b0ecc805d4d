package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
)

const queryDateLayout = "2006-01-02"

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryDate reads a YYYY-MM-DD query parameter in local time. A missing
// value yields defaultVal.
func ParseQueryDate(r *http.Request, key string, defaultVal time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
