package finance

import (
	"time"

	"github.com/lifelens/lifelens/internal/domain"
)

// FinancialHealthScore rates a customer's financial position on a 0-100
// scale from account balances, recent spending and optional monthly income.
//
// The score starts at a neutral 50 and moves by three factors:
//   - savings ratio (total balance over the last 30 days of spending):
//     +20 above 6, +15 above 3, +10 above 1, +5 above 0.5
//   - income-to-spending ratio, only when income > 0:
//     +20 above 2, +15 above 1.5, +10 above 1.2, +5 above 1, -10 at or below 1
//   - spending trend over the 30-day window, only with at least 10 purchases:
//     +10 when the later half spent less than the earlier half, -10 when it
//     exceeded the earlier half by more than 20%
//
// Both ratios are guarded against a zero monthly spend; the result is always
// clamped to [0,100].
func FinancialHealthScore(accounts []domain.Account, purchases []domain.Purchase, income float64) int {
	return financialHealthScoreAt(time.Now(), accounts, purchases, income)
}

func financialHealthScoreAt(now time.Time, accounts []domain.Account, purchases []domain.Purchase, income float64) int {
	var totalBalance float64
	for _, a := range accounts {
		totalBalance += a.Balance
	}

	oneMonthAgo := now.AddDate(0, -1, 0)
	var recent []domain.Purchase
	for _, p := range purchases {
		date := p.Date()
		if !date.IsZero() && !date.Before(oneMonthAgo) {
			recent = append(recent, p)
		}
	}

	var monthlySpending float64
	for _, p := range recent {
		monthlySpending += p.Amount
	}

	score := 50

	// Factor 1: savings ratio. A zero monthly spend counts as no savings
	// cushion rather than an infinite one.
	var savingsRatio float64
	if monthlySpending > 0 {
		savingsRatio = totalBalance / monthlySpending
	}
	switch {
	case savingsRatio > 6:
		score += 20
	case savingsRatio > 3:
		score += 15
	case savingsRatio > 1:
		score += 10
	case savingsRatio > 0.5:
		score += 5
	}

	// Factor 2: income to spending. No spending at all against a positive
	// income maxes the factor (guards the division instead of producing
	// +Inf).
	if income > 0 {
		if monthlySpending == 0 {
			score += 20
		} else {
			switch ratio := income / monthlySpending; {
			case ratio > 2:
				score += 20
			case ratio > 1.5:
				score += 15
			case ratio > 1.2:
				score += 10
			case ratio > 1:
				score += 5
			default:
				score -= 10
			}
		}
	}

	// Factor 3: spending trend across the window, earlier half vs later half.
	if len(recent) >= 10 {
		halfway := len(recent) / 2
		var firstHalf, secondHalf float64
		for _, p := range recent[:halfway] {
			firstHalf += p.Amount
		}
		for _, p := range recent[halfway:] {
			secondHalf += p.Amount
		}

		trend := secondHalf - firstHalf
		if trend < 0 {
			score += 10
		} else if trend > firstHalf*0.2 {
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
