package finance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lifelens/lifelens/internal/domain"
)

// SpendingByCategory sums purchase amounts per category and computes each
// category's share of the grand total. Every declared category appears in the
// result, zero-amount ones included, sorted descending by amount. When the
// grand total is 0 all percentages are 0.
func SpendingByCategory(purchases []domain.CategorizedPurchase) []domain.SpendingByCategory {
	totals := make(map[domain.Category]float64, len(domain.Categories))
	for _, c := range domain.Categories {
		totals[c] = 0
	}
	for _, p := range purchases {
		totals[p.Category] += p.Amount
	}

	var grandTotal float64
	for _, amount := range totals {
		grandTotal += amount
	}

	out := make([]domain.SpendingByCategory, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		entry := domain.SpendingByCategory{Category: c, Amount: totals[c]}
		if grandTotal > 0 {
			entry.Percentage = totals[c] / grandTotal * 100
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})
	return out
}

// SpendingTrends buckets purchases by time period and sums amounts per
// bucket. Bucket keys are "YYYY-MM-DD" (daily), "YYYY-Www" (weekly) or
// "YYYY-MM" (monthly); the result is sorted ascending by key, which is
// chronological for all three formats. Purchases whose date cannot be parsed
// are skipped.
func SpendingTrends(purchases []domain.Purchase, granularity domain.Granularity) []domain.SpendingTrend {
	buckets := make(map[string]float64)
	for _, p := range purchases {
		date := p.Date()
		if date.IsZero() {
			continue
		}
		buckets[bucketKey(date, granularity)] += p.Amount
	}

	out := make([]domain.SpendingTrend, 0, len(buckets))
	for key, amount := range buckets {
		out = append(out, domain.SpendingTrend{Date: key, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// bucketKey derives the trend bucket key for a date. The weekly key counts
// whole weeks since January 1 (zero-padded so string order stays
// chronological), not ISO 8601 weeks.
func bucketKey(t time.Time, granularity domain.Granularity) string {
	switch granularity {
	case domain.GranularityWeekly:
		week := (t.YearDay() - 1 + 6) / 7
		return fmt.Sprintf("%d-W%02d", t.Year(), week)
	case domain.GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// DefaultAnomalyThreshold is the standard-deviation multiplier used when the
// caller does not supply one.
const DefaultAnomalyThreshold = 1.5

// DetectSpendingAnomalies flags purchases whose amount deviates from their
// category's mean by more than threshold standard deviations (population
// std-dev). Categories with fewer than 3 purchases are skipped: the sample is
// too small to call anything an outlier. Output preserves first-seen category
// order, then original purchase order within a category.
func DetectSpendingAnomalies(purchases []domain.CategorizedPurchase, threshold float64) []domain.CategorizedPurchase {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	byCategory := make(map[domain.Category][]domain.CategorizedPurchase)
	var order []domain.Category
	for _, p := range purchases {
		if _, seen := byCategory[p.Category]; !seen {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	var anomalies []domain.CategorizedPurchase
	for _, category := range order {
		group := byCategory[category]
		if len(group) < 3 {
			continue
		}

		var sum float64
		for _, p := range group {
			sum += p.Amount
		}
		mean := sum / float64(len(group))

		var variance float64
		for _, p := range group {
			variance += (p.Amount - mean) * (p.Amount - mean)
		}
		variance /= float64(len(group))
		stdDev := math.Sqrt(variance)

		for _, p := range group {
			if math.Abs(p.Amount-mean) > threshold*stdDev {
				anomalies = append(anomalies, p)
			}
		}
	}
	return anomalies
}

// Defaults for recurring-expense detection.
const (
	DefaultRecurringTimeframeDays  = 90
	DefaultRecurringMinOccurrences = 2
)

// IdentifyRecurringExpenses finds purchase groups that look like
// subscriptions: the same merchant charging the same amount at least
// minOccurrences times, with the whole group falling inside a span of
// timeframeDays. All members of a qualifying group are returned, sorted
// ascending by date within the group; groups appear in first-seen order.
func IdentifyRecurringExpenses(purchases []domain.CategorizedPurchase, timeframeDays, minOccurrences int) []domain.CategorizedPurchase {
	if timeframeDays <= 0 {
		timeframeDays = DefaultRecurringTimeframeDays
	}
	if minOccurrences <= 0 {
		minOccurrences = DefaultRecurringMinOccurrences
	}

	groups := make(map[string][]domain.CategorizedPurchase)
	var order []string
	for _, p := range purchases {
		key := fmt.Sprintf("%s_%v", p.MerchantID, p.Amount)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	var recurring []domain.CategorizedPurchase
	for _, key := range order {
		group := groups[key]
		if len(group) < minOccurrences {
			continue
		}

		sorted := make([]domain.CategorizedPurchase, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date().Before(sorted[j].Date())
		})

		first := sorted[0].Date()
		last := sorted[len(sorted)-1].Date()
		spanDays := last.Sub(first).Hours() / 24
		if spanDays <= float64(timeframeDays) {
			recurring = append(recurring, sorted...)
		}
	}
	return recurring
}
