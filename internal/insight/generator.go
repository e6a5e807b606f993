// Package insight turns scored health logs and categorized purchases into a
// narrative UserInsight: a health summary, a financial summary and a list of
// recommendations. Generation is deterministic for a given input and clock.
package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/health"
)

// recentWindow is how many of the latest check-ins feed the narrative.
const recentWindow = 7

// deliveryKeywords mark a FOOD purchase as food delivery when any of them
// appears in its description.
var deliveryKeywords = []string{"delivery", "doordash", "uber eats", "grubhub"}

// moodCorrelationDelta is the minimum mood-score difference between the high
// and low halves of a metric split before a correlation clause is emitted.
const moodCorrelationDelta = 0.5

// Generate builds a UserInsight from a user's health logs and categorized
// transactions.
//
// With no health logs at all there is nothing to say: the result is a fixed
// "not enough data" insight with a single starter recommendation. Otherwise
// the most recent check-ins drive a health narrative; transactions, when
// present, add food-delivery, healthcare and fitness spending clauses with
// cross-domain recommendations. The result always carries at least one
// recommendation. WeekOf is the generation timestamp.
func Generate(healthLogs []domain.HealthLog, transactions []domain.CategorizedPurchase) domain.UserInsight {
	return generateAt(time.Now(), healthLogs, transactions)
}

func generateAt(now time.Time, healthLogs []domain.HealthLog, transactions []domain.CategorizedPurchase) domain.UserInsight {
	if len(healthLogs) == 0 {
		return domain.UserInsight{
			WeekOf:           now,
			HealthSummary:    "Not enough health data to generate insights.",
			FinancialSummary: "Not enough financial data to generate insights.",
			Recommendations:  []string{"Start logging your daily health to get personalized insights."},
		}
	}

	// Most recent check-ins first.
	sorted := make([]domain.HealthLog, len(healthLogs))
	copy(sorted, healthLogs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ParsedDate().After(sorted[j].ParsedDate())
	})
	recent := sorted
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}

	healthScore := health.Score(recent)
	avgSleep := health.AverageSleep(recent)
	avgExercise := health.AverageExercise(recent)
	moodScore := health.MoodScore(recent)

	var healthSummary strings.Builder
	var recommendations []string

	fmt.Fprintf(&healthSummary, "Your health score is %d/100. ", healthScore)

	if avgSleep < 7 {
		fmt.Fprintf(&healthSummary, "You're averaging only %.1f hours of sleep. ", avgSleep)
		recommendations = append(recommendations, "Try to get 7-8 hours of sleep each night for better health.")
	} else {
		fmt.Fprintf(&healthSummary, "You're getting a healthy %.1f hours of sleep on average. ", avgSleep)
	}

	if avgExercise < 20 {
		fmt.Fprintf(&healthSummary, "You're only exercising %.1f minutes per day on average. ", avgExercise)
		recommendations = append(recommendations, "Aim for at least 20-30 minutes of exercise daily.")
	} else {
		fmt.Fprintf(&healthSummary, "You're maintaining a good exercise routine with %.1f minutes per day. ", avgExercise)
	}

	if moodScore < 2.5 {
		healthSummary.WriteString("Your mood has been lower than optimal. ")
		recommendations = append(recommendations, "Consider speaking with a mental health professional about your mood.")
	} else if moodScore >= 3.5 {
		healthSummary.WriteString("Your mood has been consistently positive. ")
	}

	if len(recent) >= 3 {
		// recent is newest-first, so the trend compares the oldest and
		// newest single check-ins in the window.
		newest := health.Score(recent[:1])
		oldest := health.Score(recent[len(recent)-1:])
		if newest > oldest {
			healthSummary.WriteString("Your daily scores have been improving over the week. ")
		} else if newest < oldest {
			healthSummary.WriteString("Your daily scores have slipped since the start of the week. ")
			recommendations = append(recommendations, "Look at what changed this week and try to restore your earlier routine.")
		}
	}

	if len(recent) >= 5 {
		if delta, ok := moodSplitDelta(recent, func(l domain.HealthLog) float64 { return l.SleepHours }, avgSleep); ok && delta > moodCorrelationDelta {
			healthSummary.WriteString("Your mood is noticeably better after nights with more sleep. ")
			recommendations = append(recommendations, "Prioritize a consistent bedtime; your mood appears to follow your sleep.")
		}
		if delta, ok := moodSplitDelta(recent, func(l domain.HealthLog) float64 { return l.ExerciseMinutes }, avgExercise); ok && delta > moodCorrelationDelta {
			healthSummary.WriteString("Days with more exercise tend to be your better-mood days. ")
			recommendations = append(recommendations, "Schedule short workouts on low days; exercise seems to lift your mood.")
		}
	}

	userID := healthLogs[0].UserID

	if len(transactions) == 0 {
		if len(recommendations) == 0 {
			recommendations = defaultRecommendations()
		}
		return domain.UserInsight{
			UserID:           userID,
			WeekOf:           now,
			HealthSummary:    healthSummary.String(),
			FinancialSummary: "Not enough financial data to generate insights.",
			Recommendations:  recommendations,
		}
	}

	var financialSummary strings.Builder

	foodDelivery := sumMatching(transactions, func(t domain.CategorizedPurchase) bool {
		if t.Category != domain.CategoryFood {
			return false
		}
		desc := strings.ToLower(t.Description)
		for _, kw := range deliveryKeywords {
			if strings.Contains(desc, kw) {
				return true
			}
		}
		return false
	})
	healthcare := sumMatching(transactions, func(t domain.CategorizedPurchase) bool {
		return t.Category == domain.CategoryHealth
	})
	fitness := sumMatching(transactions, func(t domain.CategorizedPurchase) bool {
		desc := strings.ToLower(t.Description)
		return t.Category == domain.CategoryHealth ||
			strings.Contains(desc, "gym") || strings.Contains(desc, "fitness")
	})

	if foodDelivery.count > 0 {
		fmt.Fprintf(&financialSummary, "You've spent $%.2f on food delivery recently. ", foodDelivery.total)
		if avgExercise < 20 && foodDelivery.total > 50 {
			recommendations = append(recommendations, "Consider cooking at home more often and using the savings for fitness activities.")
		}
	}
	if healthcare.count > 0 {
		fmt.Fprintf(&financialSummary, "You've spent $%.2f on healthcare. ", healthcare.total)
	}
	if fitness.count > 0 {
		fmt.Fprintf(&financialSummary, "You've invested $%.2f in fitness. ", fitness.total)
		if avgExercise < 20 && fitness.total > 20 {
			recommendations = append(recommendations, "Make the most of your fitness investments by using them regularly.")
		}
	}

	if len(recommendations) == 0 {
		recommendations = defaultRecommendations()
	}

	return domain.UserInsight{
		UserID:           userID,
		WeekOf:           now,
		HealthSummary:    healthSummary.String(),
		FinancialSummary: financialSummary.String(),
		Recommendations:  recommendations,
	}
}

func defaultRecommendations() []string {
	return []string{
		"Continue maintaining your healthy lifestyle.",
		"Consider tracking your water intake for better hydration.",
	}
}

type bucketSum struct {
	total float64
	count int
}

func sumMatching(transactions []domain.CategorizedPurchase, match func(domain.CategorizedPurchase) bool) bucketSum {
	var s bucketSum
	for _, t := range transactions {
		if match(t) {
			s.total += t.Amount
			s.count++
		}
	}
	return s
}

// moodSplitDelta splits the logs at the metric's average and returns the
// difference between the mean mood of the at-or-above half and the below
// half. ok is false when either half is empty, in which case no correlation
// can be drawn.
func moodSplitDelta(logs []domain.HealthLog, metric func(domain.HealthLog) float64, avg float64) (float64, bool) {
	var high, low []domain.HealthLog
	for _, l := range logs {
		if metric(l) >= avg {
			high = append(high, l)
		} else {
			low = append(low, l)
		}
	}
	if len(high) == 0 || len(low) == 0 {
		return 0, false
	}
	return health.MoodScore(high) - health.MoodScore(low), true
}
