package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/omerfarooq187/pizza-pos-backend/api/responses"
	"github.com/omerfarooq187/pizza-pos-backend/api/validators"
	reportsvc "github.com/omerfarooq187/pizza-pos-backend/internal/reports"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

func DailyReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.ParseQueryDate(r, "date", time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Daily(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func WeeklyReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Weekly(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func MonthlyReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Monthly(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func RangeReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := queryRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Range(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func TodayStats(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Today(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func SearchSoldItems(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := queryRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		search := strings.TrimSpace(r.URL.Query().Get("search"))
		rows, err := svc.SearchSoldItems(r.Context(), search, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type exportRequest struct {
	Format string  `json:"format" validate:"required,oneof=pdf excel"`
	Period *string `json:"period,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	From   *string `json:"from,omitempty"`
	To     *string `json:"to,omitempty"`
}

// ExportReport renders a summary to disk and returns the written file path.
func ExportReport(svc reportsvc.Service, exporter *reportsvc.Exporter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload exportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := exportSummary(r, svc, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var path string
		switch payload.Format {
		case "pdf":
			path, err = exporter.ExportPDF(r.Context(), summary)
		case "excel":
			path, err = exporter.ExportExcel(r.Context(), summary)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "export report"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"path": path})
	}
}

func exportSummary(r *http.Request, svc reportsvc.Service, payload exportRequest) (*reportsvc.Summary, error) {
	if payload.Period != nil {
		switch *payload.Period {
		case "daily":
			return svc.Daily(r.Context(), time.Now())
		case "weekly":
			return svc.Weekly(r.Context())
		case "monthly":
			return svc.Monthly(r.Context())
		}
	}

	if payload.From == nil || payload.To == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "either period or from/to dates are required")
	}
	from, err := parseDate(*payload.From, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDate(*payload.To, "to")
	if err != nil {
		return nil, err
	}
	// to is inclusive in the request; the service works on [from, to).
	return svc.Range(r.Context(), from, to.AddDate(0, 0, 1))
}

func queryRange(r *http.Request) (time.Time, time.Time, error) {
	today := startOfDay(time.Now())
	from, err := validators.ParseQueryDate(r, "from", today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryDate(r, "to", today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startOfDay(from), startOfDay(to).AddDate(0, 0, 1), nil
}

func parseDate(raw, field string) (time.Time, error) {
	value, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
