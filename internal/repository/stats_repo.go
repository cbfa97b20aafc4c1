package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

type DashboardKPIs struct {
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	TodayCount   int64           `json:"today_count"`
	PrevRevenue  decimal.Decimal `json:"prev_revenue"`
	PrevCount    int64           `json:"prev_count"`
}

type StatusBreakdown struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type TopItem struct {
	Name  string `json:"name"`
	Units int64  `json:"units"`
}

type Dashboard struct {
	KPIs      DashboardKPIs     `json:"kpis"`
	Breakdown []StatusBreakdown `json:"order_breakdown"`
	TopItems  []TopItem         `json:"top_items"`
}

// StatsRepository serves the admin dashboard aggregates over delivered
// revenue and recent order activity.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	var kpis DashboardKPIs
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select(`COALESCE(SUM(CASE WHEN created_at >= ? THEN total_amount ELSE 0 END), 0) AS today_revenue,
			COUNT(CASE WHEN created_at >= ? THEN 1 END) AS today_count,
			COALESCE(SUM(CASE WHEN created_at >= ? AND created_at < ? THEN total_amount ELSE 0 END), 0) AS prev_revenue,
			COUNT(CASE WHEN created_at >= ? AND created_at < ? THEN 1 END) AS prev_count`,
			today, today, yesterday, today, yesterday, today).
		Where("status = ?", domain.OrderStatusDelivered).
		Scan(&kpis).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	// Last 24h by status, with the two active states folded into "pending"
	// the way the live-orders board groups them.
	var rows []StatusBreakdown
	err = r.db.WithContext(ctx).Model(&domain.Order{}).
		Select(`CASE WHEN status IN ('orderin', 'prepared') THEN 'pending' ELSE status END AS name,
			COUNT(*) AS value`).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Group("name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	breakdown := []StatusBreakdown{
		{Name: "delivered"},
		{Name: "pending"},
		{Name: "cancelled"},
	}
	for i := range breakdown {
		for _, row := range rows {
			if row.Name == breakdown[i].Name {
				breakdown[i].Value = row.Value
			}
		}
	}

	var topItems []TopItem
	err = r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Select("order_items.product_name AS name, SUM(order_items.quantity) AS units").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", domain.OrderStatusDelivered).
		Group("order_items.product_name").
		Order("units DESC").
		Limit(5).
		Scan(&topItems).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	return &Dashboard{KPIs: kpis, Breakdown: breakdown, TopItems: topItems}, nil
}
