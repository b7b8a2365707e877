// Package stats derives aggregate views from an order snapshot. All functions
// are pure: same snapshot in, identical output out, no shared state.
package stats

import (
	"sort"
	"strings"

	"CafeteriaScanner/internal/domain"
)

// Compute aggregates order counts. period is a "YYYY-MM" prefix; orders whose
// date starts with it count toward MonthUdonCount. An empty period is a
// prefix of every date, so it matches all udon orders.
func Compute(orders []domain.Order, period string) domain.Statistics {
	st := domain.Statistics{TotalOrders: len(orders)}

	for _, order := range orders {
		if !order.HasUdon {
			continue
		}
		st.UdonCount++
		if strings.HasPrefix(order.Date, period) {
			st.MonthUdonCount++
		}
	}

	if st.TotalOrders > 0 {
		st.UdonPercentage = 100 * float64(st.UdonCount) / float64(st.TotalOrders)
	}

	return st
}

// Series buckets orders by exact date string and counts udon vs other orders
// per bucket. Buckets are sorted ascending by date, which is correct because
// dates are ISO YYYY-MM-DD; only the most recent window buckets are kept.
// window <= 0 keeps everything.
func Series(orders []domain.Order, window int) []domain.SeriesPoint {
	buckets := map[string]*domain.SeriesPoint{}
	for _, order := range orders {
		point, ok := buckets[order.Date]
		if !ok {
			point = &domain.SeriesPoint{Date: order.Date}
			buckets[order.Date] = point
		}
		if order.HasUdon {
			point.UdonCount++
		} else {
			point.OtherCount++
		}
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	if window > 0 && len(dates) > window {
		dates = dates[len(dates)-window:]
	}

	series := make([]domain.SeriesPoint, 0, len(dates))
	for _, date := range dates {
		series = append(series, *buckets[date])
	}
	return series
}
