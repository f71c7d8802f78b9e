package risk

import (
	"math"
	"strings"

	"github.com/kuyua/kuyua-api/services"
)

const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

type Result struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Reasons []string `json:"reasons"`
}

var profileWeights = map[string]float64{
	"very high": 25,
	"high":      17,
	"medium":    9,
	"low":       2,
}

var profileLabels = map[string]string{
	services.KeyImpactProfile:     "impact",
	services.KeyDependencyProfile: "dependency",
	services.KeyNatureRiskProfile: "nature risk",
	services.KeyClimateProfile:    "climate",
}

// Calculate scores a location's four risk profiles into an overall level.
func Calculate(props map[string]any) Result {
	var score float64
	reasons := make([]string, 0)

	for _, key := range services.ProfileKeys {
		val, _ := props[key].(string)
		weight, ok := profileWeights[strings.ToLower(strings.TrimSpace(val))]
		if !ok {
			continue
		}
		score += weight
		if weight >= profileWeights["high"] {
			reasons = append(reasons, profileLabels[key]+" profile: "+val)
		}
	}

	level := LevelLow
	switch {
	case score >= 60:
		level = LevelHigh
	case score >= 35:
		level = LevelMedium
	}

	return Result{
		Score:   int(math.Round(score)),
		Level:   level,
		Reasons: reasons,
	}
}

// Bucket is one slice of the overall status donut.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Distribution counts features per risk level, high first.
func Distribution(features []services.Feature) []Bucket {
	counts := map[string]int{}
	for _, f := range features {
		counts[Calculate(f.Properties).Level]++
	}
	return []Bucket{
		{Name: "High risk", Count: counts[LevelHigh]},
		{Name: "Medium risk", Count: counts[LevelMedium]},
		{Name: "Low risk", Count: counts[LevelLow]},
	}
}
