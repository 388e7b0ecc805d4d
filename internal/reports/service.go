package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omerfarooq187/pizza-pos-backend/internal/orders"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/db/models"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/enums"
	pkgerrors "github.com/omerfarooq187/pizza-pos-backend/pkg/errors"
	"github.com/omerfarooq187/pizza-pos-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// DailySummary aggregates one calendar day of sales.
type DailySummary struct {
	Date         string          `json:"date"`
	TotalOrders  int64           `json:"total_orders"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	MostSoldItem string          `json:"most_sold_item"`
}

// Summary is a sales report over a date range.
type Summary struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	TotalOrders int64             `json:"total_orders"`
	TotalSales  decimal.Decimal   `json:"total_sales"`
	Days        []DailySummary    `json:"days"`
	TopItems    []orders.SoldItem `json:"top_items"`
}

// TodayStats is the register's live counter for the current day.
type TodayStats struct {
	TotalOrders int64           `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// Service builds sales reports over persisted orders.
type Service interface {
	Daily(ctx context.Context, day time.Time) (*Summary, error)
	Weekly(ctx context.Context) (*Summary, error)
	Monthly(ctx context.Context) (*Summary, error)
	Range(ctx context.Context, from, to time.Time) (*Summary, error)
	Today(ctx context.Context) (*TodayStats, error)
	SearchSoldItems(ctx context.Context, search string, from, to time.Time) ([]orders.SoldItem, error)
	OrdersInRange(ctx context.Context, from, to time.Time) ([]models.Order, error)
}

type service struct {
	repo orders.Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs the reporting service.
func NewService(repo orders.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Daily(ctx context.Context, day time.Time) (*Summary, error) {
	from := startOfDay(day)
	return s.Range(ctx, from, from.AddDate(0, 0, 1))
}

func (s *service) Weekly(ctx context.Context) (*Summary, error) {
	to := startOfDay(s.now()).AddDate(0, 0, 1)
	return s.Range(ctx, to.AddDate(0, 0, -7), to)
}

func (s *service) Monthly(ctx context.Context) (*Summary, error) {
	to := startOfDay(s.now()).AddDate(0, 0, 1)
	return s.Range(ctx, to.AddDate(0, 0, -30), to)
}

// Range folds every non-cancelled order inside [from, to) into per-day
// summaries plus range-wide totals.
func (s *service) Range(ctx context.Context, from, to time.Time) (*Summary, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range is empty")
	}

	rows, err := s.repo.ListOrdersByDateRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}

	type dayAgg struct {
		orders    int64
		sales     decimal.Decimal
		itemUnits map[string]int
	}
	days := map[string]*dayAgg{}
	totalSales := decimal.Zero
	var totalOrders int64

	for _, order := range rows {
		if order.Status == enums.OrderStatusCancelled {
			continue
		}
		key := order.CreatedAt.Format(dateLayout)
		agg := days[key]
		if agg == nil {
			agg = &dayAgg{sales: decimal.Zero, itemUnits: map[string]int{}}
			days[key] = agg
		}
		agg.orders++
		agg.sales = agg.sales.Add(order.TotalAmount)
		for _, item := range order.Items {
			agg.itemUnits[item.ItemName] += item.Quantity
		}
		totalOrders++
		totalSales = totalSales.Add(order.TotalAmount)
	}

	summary := &Summary{
		From:        from,
		To:          to,
		TotalOrders: totalOrders,
		TotalSales:  totalSales,
	}
	for key, agg := range days {
		summary.Days = append(summary.Days, DailySummary{
			Date:         key,
			TotalOrders:  agg.orders,
			TotalSales:   agg.sales,
			MostSoldItem: topItem(agg.itemUnits),
		})
	}
	sort.Slice(summary.Days, func(i, j int) bool {
		return summary.Days[i].Date < summary.Days[j].Date
	})

	summary.TopItems, err = s.repo.SoldItemTotals(ctx, from, to, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate sold items")
	}
	return summary, nil
}

func (s *service) Today(ctx context.Context) (*TodayStats, error) {
	from := startOfDay(s.now())
	count, sales, err := s.repo.CountAndSumOrders(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate today")
	}
	return &TodayStats{TotalOrders: count, TotalSales: sales}, nil
}

func (s *service) SearchSoldItems(ctx context.Context, search string, from, to time.Time) ([]orders.SoldItem, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range is empty")
	}
	rows, err := s.repo.SoldItemTotals(ctx, from, to, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search sold items")
	}
	return rows, nil
}

func (s *service) OrdersInRange(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range is empty")
	}
	rows, err := s.repo.ListOrdersByDateRange(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// topItem picks the name with the most units, ties broken alphabetically so
// the result is stable.
func topItem(units map[string]int) string {
	best := ""
	bestUnits := 0
	for name, n := range units {
		if n > bestUnits || (n == bestUnits && (best == "" || name < best)) {
			best = name
			bestUnits = n
		}
	}
	return best
}
