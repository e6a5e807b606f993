package insight

import "strings"

// Recommendations maps current health metrics to a list of actionable
// suggestions, independent of any generated insight. Each band contributes
// its own suggestions; when fewer than three specific ones fire, generic
// wellness fillers are appended without duplicating topics already covered.
func Recommendations(healthScore int, moodScore, avgSleep, avgExercise float64) []string {
	var recs []string

	switch {
	case healthScore < 50:
		recs = append(recs, "Your overall health score needs attention. Try to improve your sleep, exercise, and mood.")
	case healthScore < 70:
		recs = append(recs, "Your health score is average. Small improvements in sleep and exercise can boost it significantly.")
	case healthScore >= 80:
		recs = append(recs, "You have an excellent health score. Keep maintaining your healthy habits.")
	}

	switch {
	case avgSleep < 6:
		recs = append(recs,
			"Aim for 7-8 hours of sleep each night to improve overall health and cognitive function.",
			"Create a consistent sleep schedule, going to bed and waking up at the same time daily.")
	case avgSleep < 7:
		recs = append(recs, "Try to increase your sleep to 7-8 hours each night for optimal health.")
	case avgSleep > 9:
		recs = append(recs, "While rest is important, excessive sleep (>9 hours) may indicate other health issues.")
	}

	switch {
	case avgExercise < 10:
		recs = append(recs, "Start with short 10-minute walks daily and gradually increase duration.")
	case avgExercise < 20:
		recs = append(recs, "Aim to increase your activity to at least 30 minutes daily for better cardiovascular health.")
	case avgExercise < 30:
		recs = append(recs, "You're on the right track with exercise. Consider increasing to 30-45 minutes for optimal benefits.")
	case avgExercise > 90:
		recs = append(recs, "Ensure you're allowing adequate recovery time between intense workouts.")
	}

	switch {
	case moodScore < 2:
		recs = append(recs,
			"Consider speaking with a mental health professional about your persistent low mood.",
			"Practice daily mindfulness meditation to help manage negative emotions.")
	case moodScore < 2.5:
		recs = append(recs, "Regular physical activity can help improve mood through the release of endorphins.")
	case moodScore < 3.5:
		recs = append(recs, "Try incorporating activities you enjoy into your daily routine to boost mood.")
	}

	if len(recs) < 3 {
		for _, filler := range []struct{ topic, text string }{
			{"water", "Stay hydrated by drinking at least 8 glasses of water daily."},
			{"fruit", "Include more fruits and vegetables in your diet for essential nutrients."},
			{"stress", "Practice stress-reduction techniques like deep breathing or meditation."},
		} {
			if !containsTopic(recs, filler.topic) {
				recs = append(recs, filler.text)
			}
		}
	}

	return recs
}

func containsTopic(recs []string, topic string) bool {
	for _, r := range recs {
		if strings.Contains(r, topic) {
			return true
		}
	}
	return false
}
