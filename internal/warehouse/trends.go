package warehouse

import (
	"context"
	"fmt"
	"sort"

	"github.com/lifelens/lifelens/internal/domain"
)

// trendRatio is how much the recent half must deviate from the prior half
// before a symptom counts as increasing or decreasing.
const trendRatio = 1.25

// maxSymptomsPerRegion caps the symptom list in each regional trend.
const maxSymptomsPerRegion = 5

// RegionalTrends aggregates the trailing window into per-region symptom
// trends with an alert level and a short prediction.
func (c *Client) RegionalTrends(ctx context.Context, windowDays int) ([]domain.RegionalTrend, error) {
	rows, err := c.SymptomWindows(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	return assembleRegionalTrends(rows), nil
}

func assembleRegionalTrends(rows []symptomWindowRow) []domain.RegionalTrend {
	byRegion := make(map[string][]domain.SymptomCount)
	for _, row := range rows {
		total := int(row.RecentCount + row.PriorCount)
		if total == 0 {
			continue
		}
		region := row.Region
		if region == "" {
			region = "Unknown"
		}
		byRegion[region] = append(byRegion[region], domain.SymptomCount{
			Name:  row.Symptom,
			Count: total,
			Trend: trendDirection(row.RecentCount, row.PriorCount),
		})
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	trends := make([]domain.RegionalTrend, 0, len(regions))
	for _, region := range regions {
		symptoms := byRegion[region]
		sort.SliceStable(symptoms, func(i, j int) bool {
			return symptoms[i].Count > symptoms[j].Count
		})
		if len(symptoms) > maxSymptomsPerRegion {
			symptoms = symptoms[:maxSymptomsPerRegion]
		}
		level := alertLevel(symptoms)
		trends = append(trends, domain.RegionalTrend{
			Region:     region,
			Symptoms:   symptoms,
			AlertLevel: level,
			Prediction: prediction(region, symptoms, level),
		})
	}
	return trends
}

// trendDirection compares the recent half of the window against the prior
// half. Small absolute counts stay stable to avoid noise.
func trendDirection(recent, prior int64) domain.TrendDirection {
	if recent+prior < 4 {
		return domain.TrendStable
	}
	if prior == 0 {
		return domain.TrendIncreasing
	}
	ratio := float64(recent) / float64(prior)
	switch {
	case ratio >= trendRatio:
		return domain.TrendIncreasing
	case ratio <= 1/trendRatio:
		return domain.TrendDecreasing
	default:
		return domain.TrendStable
	}
}

// alertLevel combines total report volume with how many symptoms are rising.
func alertLevel(symptoms []domain.SymptomCount) domain.AlertLevel {
	total := 0
	rising := 0
	for _, s := range symptoms {
		total += s.Count
		if s.Trend == domain.TrendIncreasing {
			rising++
		}
	}
	switch {
	case total >= 50 && rising >= 2:
		return domain.AlertHigh
	case total >= 20 || rising >= 1:
		return domain.AlertModerate
	default:
		return domain.AlertLow
	}
}

func prediction(region string, symptoms []domain.SymptomCount, level domain.AlertLevel) string {
	if len(symptoms) == 0 {
		return fmt.Sprintf("No notable symptom activity in %s.", region)
	}
	top := symptoms[0].Name
	switch level {
	case domain.AlertHigh:
		return fmt.Sprintf("Elevated %s reports in %s are likely to continue rising over the next week.", top, region)
	case domain.AlertModerate:
		return fmt.Sprintf("Moderate %s activity in %s; levels may rise if current trends hold.", top, region)
	default:
		return fmt.Sprintf("Symptom activity in %s is low; %s reports are expected to stay stable.", region, top)
	}
}

// RegionFromLocation maps a US latitude/longitude to a coarse census-style
// region. Locations outside the continental US map to Unknown.
func RegionFromLocation(lat, lon float64) string {
	if lat < 24 || lat > 50 || lon < -125 || lon > -66 {
		return "Unknown"
	}
	switch {
	case lon >= -80 && lat >= 39:
		return "Northeast"
	case lon >= -104 && lat >= 40:
		return "Midwest"
	case lon >= -104:
		return "South"
	default:
		return "West"
	}
}
