package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lifelens/lifelens/internal/domain"
)

func TestHealthLogRowRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("with location", func(t *testing.T) {
		in := domain.HealthLog{
			ID:              "l1",
			UserID:          "u1",
			Date:            "2025-06-09",
			Mood:            domain.MoodHappy,
			SleepHours:      7.5,
			Meals:           3,
			ExerciseMinutes: 20,
			Symptoms:        "mild headache",
			Location:        &domain.Location{Lat: 40.7, Lon: -74.0},
		}
		row := healthLogToRow(in, now)
		assert.Equal(t, now, row.CreatedAt)
		assert.NotNil(t, row.Lat)

		out := row.toDomain()
		assert.Equal(t, in, out)
	})

	t.Run("without location", func(t *testing.T) {
		in := domain.HealthLog{
			ID:     "l2",
			UserID: "u1",
			Date:   "2025-06-09",
			Mood:   domain.MoodNeutral,
		}
		row := healthLogToRow(in, now)
		assert.Nil(t, row.Lat)
		assert.Nil(t, row.Lon)

		out := row.toDomain()
		assert.Equal(t, in, out)
		assert.Nil(t, out.Location)
	})
}
