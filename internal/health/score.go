// Package health computes composite wellness scores, per-metric averages,
// score trends and anomaly flags over daily check-in logs. Like the finance
// package, everything here is a pure function over immutable input.
package health

import (
	"fmt"
	"math"
	"sort"

	"github.com/lifelens/lifelens/internal/domain"
)

// moodValues maps each mood to its numeric score. Happy is best at 4,
// Anxious worst at 1; unknown moods contribute 0.
var moodValues = map[domain.Mood]float64{
	domain.MoodHappy:   4,
	domain.MoodNeutral: 3,
	domain.MoodSad:     2,
	domain.MoodAnxious: 1,
}

// MoodScore is the mean mood value across the logs, on the 1-4 scale.
// Returns 0 for an empty log set.
func MoodScore(logs []domain.HealthLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var total float64
	for _, l := range logs {
		total += moodValues[l.Mood]
	}
	return total / float64(len(logs))
}

// AverageSleep is the mean sleep hours per night. Returns 0 for an empty set.
func AverageSleep(logs []domain.HealthLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var total float64
	for _, l := range logs {
		total += l.SleepHours
	}
	return total / float64(len(logs))
}

// AverageMeals is the mean meals per day. Returns 0 for an empty set.
func AverageMeals(logs []domain.HealthLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var total float64
	for _, l := range logs {
		total += float64(l.Meals)
	}
	return total / float64(len(logs))
}

// AverageExercise is the mean exercise minutes per day. Returns 0 for an
// empty set.
func AverageExercise(logs []domain.HealthLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var total float64
	for _, l := range logs {
		total += l.ExerciseMinutes
	}
	return total / float64(len(logs))
}

// Score combines mood, sleep, meals and exercise into a single 0-100
// integer. Components are normalized against their optimum (mood 4, sleep
// 8h, meals 3/day, exercise 30min) and weighted 40/30/15/15.
//
// The meal component is deliberately NOT capped at 1, unlike sleep and
// exercise: averaging more than 3 meals a day pushes the component above
// what its siblings allow. That asymmetry is long-standing observed
// behavior and is preserved here pending a product decision.
//
// Returns 0 for an empty log set.
func Score(logs []domain.HealthLog) int {
	if len(logs) == 0 {
		return 0
	}

	moodScore := MoodScore(logs) / 4
	sleepScore := math.Min(AverageSleep(logs)/8, 1)
	mealScore := AverageMeals(logs) / 3
	exerciseScore := math.Min(AverageExercise(logs)/30, 1)

	weighted := moodScore*0.4 + sleepScore*0.3 + mealScore*0.15 + exerciseScore*0.15
	return int(math.Round(weighted * 100))
}

// Trends computes the composite score per time bucket. Buckets follow the
// spending-trend key formats except weekly, which keys on the Monday of each
// log's week ("YYYY-MM-DD" of that Monday). Output is sorted ascending by
// bucket key. Logs with unparseable dates are skipped.
func Trends(logs []domain.HealthLog, granularity domain.Granularity) []domain.HealthTrendPoint {
	if len(logs) == 0 {
		return nil
	}

	buckets := make(map[string][]domain.HealthLog)
	for _, l := range logs {
		date := l.ParsedDate()
		if date.IsZero() {
			continue
		}

		var key string
		switch granularity {
		case domain.GranularityWeekly:
			// Monday of the log's week.
			offset := (int(date.Weekday()) + 6) % 7
			key = date.AddDate(0, 0, -offset).Format("2006-01-02")
		case domain.GranularityMonthly:
			key = date.Format("2006-01")
		default:
			key = date.Format("2006-01-02")
		}
		buckets[key] = append(buckets[key], l)
	}

	out := make([]domain.HealthTrendPoint, 0, len(buckets))
	for key, group := range buckets {
		out = append(out, domain.HealthTrendPoint{Date: key, Score: Score(group)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// sortByDateAscending returns a copy of logs ordered oldest first.
func sortByDateAscending(logs []domain.HealthLog) []domain.HealthLog {
	sorted := make([]domain.HealthLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ParsedDate().Before(sorted[j].ParsedDate())
	})
	return sorted
}

// formatHours renders an hours value with one decimal, e.g. "6.5".
func formatHours(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
