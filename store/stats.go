package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rasoilabs/rasoipos/models"
)

// DayStats aggregates one day's figures for the dashboard screen.
type DayStats struct {
	OrdersToday     int64
	OrdersOpen      int64
	OrdersServed    int64
	OrdersCancelled int64

	RevenueToday    float64
	RevenueByMethod map[string]float64

	ExpensesToday     float64
	CreditOutstanding float64

	TablesAvailable int64
	TablesBusy      int64
}

// DayStats computes the tenant's dashboard aggregates for one day.
// Open orders, table occupancy and the credit book are current state;
// everything else is scoped to the given day.
func (rs *Repositories) DayStats(ctx context.Context, tenantID string, day time.Time) (*DayStats, error) {
	db := rs.db.WithContext(ctx)
	date := day.Format("2006-01-02")
	stats := &DayStats{RevenueByMethod: make(map[string]float64)}

	orders := func() *gorm.DB {
		return db.Model(&models.Order{}).Where("tenant_id = ?", tenantID)
	}
	if err := orders().Where("DATE(created_at) = ?", date).Count(&stats.OrdersToday).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("is_open = ?", true).Count(&stats.OrdersOpen).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status = ? AND DATE(created_at) = ?", models.StatusServed, date).
		Count(&stats.OrdersServed).Error; err != nil {
		return nil, err
	}
	if err := orders().Where("status = ? AND DATE(created_at) = ?", models.StatusCancelled, date).
		Count(&stats.OrdersCancelled).Error; err != nil {
		return nil, err
	}

	// Settled orders carry a payment method; cancelled ones never count.
	settled := func() *gorm.DB {
		return orders().Where("payment_method <> '' AND status <> ? AND DATE(created_at) = ?",
			models.StatusCancelled, date)
	}
	if err := settled().Select("COALESCE(SUM(total), 0)").Scan(&stats.RevenueToday).Error; err != nil {
		return nil, err
	}
	for _, method := range []string{models.PaymentCash, models.PaymentUPI, models.PaymentCard, models.PaymentCredit} {
		var amount float64
		if err := settled().Where("payment_method = ?", method).
			Select("COALESCE(SUM(total), 0)").Scan(&amount).Error; err != nil {
			return nil, err
		}
		stats.RevenueByMethod[method] = amount
	}

	if err := db.Model(&models.Expense{}).
		Where("tenant_id = ? AND DATE(spent_at) = ?", tenantID, date).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.ExpensesToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Customer{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(credit_balance), 0)").Scan(&stats.CreditOutstanding).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Table{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.TableAvailable).
		Count(&stats.TablesAvailable).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Table{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.TableBusy).
		Count(&stats.TablesBusy).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
