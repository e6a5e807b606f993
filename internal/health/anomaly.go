package health

import (
	"fmt"
	"strings"

	"github.com/lifelens/lifelens/internal/domain"
)

// DetectAnomalies flags check-ins that deviate from the user's own recent
// norms. At least 3 logs are required; with fewer the baseline is too thin
// and nothing is flagged.
//
// Per log, independently:
//   - sleep below 70% of average (high severity below 50%)
//   - meals below 70% of average (high severity below 50%)
//   - exercise below 50% of average, only when the average itself exceeds
//     10 minutes (medium severity)
//   - mood Sad (medium) or Anxious (high)
//   - any non-empty symptoms string (medium)
//
// A single log can contribute several anomalies. Output is in chronological
// log order and is not ranked by severity.
func DetectAnomalies(logs []domain.HealthLog) []domain.HealthAnomaly {
	if len(logs) < 3 {
		return nil
	}

	sorted := sortByDateAscending(logs)

	avgSleep := AverageSleep(sorted)
	avgMeals := AverageMeals(sorted)
	avgExercise := AverageExercise(sorted)

	var anomalies []domain.HealthAnomaly
	for _, l := range sorted {
		if l.SleepHours < avgSleep*0.7 {
			severity := domain.SeverityMedium
			if l.SleepHours < avgSleep*0.5 {
				severity = domain.SeverityHigh
			}
			anomalies = append(anomalies, domain.HealthAnomaly{
				Date:     l.Date,
				Anomaly:  fmt.Sprintf("Significantly less sleep than usual (%s hours vs. avg %s)", formatHours(l.SleepHours), formatHours(avgSleep)),
				Severity: severity,
			})
		}

		if float64(l.Meals) < avgMeals*0.7 {
			severity := domain.SeverityMedium
			if float64(l.Meals) < avgMeals*0.5 {
				severity = domain.SeverityHigh
			}
			anomalies = append(anomalies, domain.HealthAnomaly{
				Date:     l.Date,
				Anomaly:  fmt.Sprintf("Fewer meals than usual (%d vs. avg %s)", l.Meals, formatHours(avgMeals)),
				Severity: severity,
			})
		}

		if l.ExerciseMinutes < avgExercise*0.5 && avgExercise > 10 {
			anomalies = append(anomalies, domain.HealthAnomaly{
				Date:     l.Date,
				Anomaly:  fmt.Sprintf("Less exercise than usual (%.0f mins vs. avg %s)", l.ExerciseMinutes, formatHours(avgExercise)),
				Severity: domain.SeverityMedium,
			})
		}

		if l.Mood == domain.MoodSad || l.Mood == domain.MoodAnxious {
			severity := domain.SeverityMedium
			if l.Mood == domain.MoodAnxious {
				severity = domain.SeverityHigh
			}
			anomalies = append(anomalies, domain.HealthAnomaly{
				Date:     l.Date,
				Anomaly:  fmt.Sprintf("Mood reported as %s", l.Mood),
				Severity: severity,
			})
		}

		if strings.TrimSpace(l.Symptoms) != "" {
			anomalies = append(anomalies, domain.HealthAnomaly{
				Date:     l.Date,
				Anomaly:  fmt.Sprintf("Reported symptoms: %s", l.Symptoms),
				Severity: domain.SeverityMedium,
			})
		}
	}
	return anomalies
}
