package insight

import (
	"strings"
	"testing"
)

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name        string
		healthScore int
		moodScore   float64
		avgSleep    float64
		avgExercise float64
		wantTopics  []string
		minCount    int
	}{
		{
			name:        "struggling across the board",
			healthScore: 40,
			moodScore:   1.5,
			avgSleep:    5,
			avgExercise: 5,
			wantTopics: []string{
				"needs attention",
				"7-8 hours of sleep",
				"consistent sleep schedule",
				"10-minute walks",
				"mental health professional",
				"mindfulness",
			},
		},
		{
			name:        "average metrics",
			healthScore: 60,
			moodScore:   3,
			avgSleep:    6.5,
			avgExercise: 25,
			wantTopics: []string{
				"score is average",
				"increase your sleep",
				"right track with exercise",
				"activities you enjoy",
			},
		},
		{
			name:        "excellent but oversleeping and overtraining",
			healthScore: 85,
			moodScore:   3.8,
			avgSleep:    10,
			avgExercise: 120,
			wantTopics: []string{
				"excellent health score",
				"excessive sleep",
				"recovery time",
			},
		},
		{
			name:        "sparse bands fall back to generic fillers",
			healthScore: 75, // between the bands, contributes nothing
			moodScore:   3.8,
			avgSleep:    8,
			avgExercise: 45,
			wantTopics: []string{
				"water",
				"fruits and vegetables",
				"stress-reduction",
			},
			minCount: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendations(tt.healthScore, tt.moodScore, tt.avgSleep, tt.avgExercise)
			if tt.minCount > 0 && len(got) < tt.minCount {
				t.Fatalf("got %d recommendations, want at least %d: %v", len(got), tt.minCount, got)
			}
			for _, topic := range tt.wantTopics {
				if !containsTopic(got, topic) {
					t.Errorf("recommendations missing %q: %v", topic, got)
				}
			}
		})
	}
}

func TestRecommendationsFillerAvoidsDuplicateTopics(t *testing.T) {
	// avgSleep < 6 already yields a specific sleep recommendation plus one
	// more; fillers top the list up without repeating covered topics.
	got := Recommendations(75, 3.8, 5, 45)
	if len(got) < 3 {
		t.Fatalf("got %d recommendations, want at least 3: %v", len(got), got)
	}
	seen := make(map[string]bool)
	for _, r := range got {
		if seen[r] {
			t.Errorf("duplicate recommendation %q", r)
		}
		seen[r] = true
	}
}

func TestMythsAndFacts(t *testing.T) {
	got := MythsAndFacts()
	if len(got) != 10 {
		t.Fatalf("got %d entries, want 10", len(got))
	}
	for i, mf := range got {
		if strings.TrimSpace(mf.Myth) == "" || strings.TrimSpace(mf.Fact) == "" {
			t.Errorf("entry %d has empty fields: %+v", i, mf)
		}
	}

	// Callers get a copy; mutating it must not bleed into the package list.
	got[0].Myth = "mutated"
	if MythsAndFacts()[0].Myth == "mutated" {
		t.Error("MythsAndFacts() exposes internal state")
	}
}
