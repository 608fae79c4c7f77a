// internal/dashboard/analytics.go
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"restaurant-admin/internal/models"
)

// InvalidDateLabel — группа для заказов с неразборчивым временем создания.
const InvalidDateLabel = "Invalid Date"

const dayLayout = "2006-01-02"

type DaySales struct {
	Day         string        `json:"day"`
	TotalSales  models.Amount `json:"total_sales"`
	OrdersCount int           `json:"orders_count"`
}

type SalesReport struct {
	Days        []DaySales    `json:"days"`
	GrandTotal  models.Amount `json:"grand_total"`
	MaxDay      models.Amount `json:"max_day"`
	OrdersCount int           `json:"orders_count"`
}

// DailySales группирует заказы по календарному дню создания в loc.
// Дни идут в порядке появления их первого заказа.
func DailySales(orders []models.Order, loc *time.Location) SalesReport {
	if loc == nil {
		loc = time.Local
	}

	index := make(map[string]int)
	report := SalesReport{Days: []DaySales{}}
	grand := decimal.Zero

	for _, o := range orders {
		day := InvalidDateLabel
		if t, ok := o.CreatedTime(loc); ok {
			day = t.Format(dayLayout)
		}

		i, ok := index[day]
		if !ok {
			i = len(report.Days)
			index[day] = i
			report.Days = append(report.Days, DaySales{Day: day, TotalSales: models.Amount{Decimal: decimal.Zero}})
		}
		d := &report.Days[i]
		d.TotalSales = models.Amount{Decimal: d.TotalSales.Add(o.Total.Decimal)}
		d.OrdersCount++
		grand = grand.Add(o.Total.Decimal)
	}

	report.GrandTotal = models.Amount{Decimal: grand}
	report.OrdersCount = len(orders)
	report.MaxDay = models.Amount{Decimal: decimal.Zero}
	for _, d := range report.Days {
		if d.TotalSales.GreaterThan(report.MaxDay.Decimal) {
			report.MaxDay = d.TotalSales
		}
	}
	return report
}

// BarPercent — продажи дня относительно лучшего дня, 0..100.
func (r SalesReport) BarPercent(d DaySales) int {
	if !r.MaxDay.IsPositive() || !d.TotalSales.IsPositive() {
		return 0
	}
	pct := d.TotalSales.Mul(decimal.NewFromInt(100)).Div(r.MaxDay.Decimal).Round(0)
	return int(pct.IntPart())
}
