package services

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePoint             = "Point"
)

// Profile property keys, in the order the dashboard renders them.
const (
	KeyImpactProfile     = "impactProfile"
	KeyDependencyProfile = "dependencyProfile"
	KeyNatureRiskProfile = "natureRiskProfile"
	KeyClimateProfile    = "climateProfile"
)

var ProfileKeys = []string{
	KeyImpactProfile,
	KeyDependencyProfile,
	KeyNatureRiskProfile,
	KeyClimateProfile,
}

// Profile categories, highest risk first.
const (
	ProfileVeryHigh = "Very High"
	ProfileHigh     = "High"
	ProfileMedium   = "Medium"
	ProfileLow      = "Low"
)

var ProfileValues = []string{ProfileVeryHigh, ProfileHigh, ProfileMedium, ProfileLow}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// ID returns properties.id, or "" when the record carries none.
func (f Feature) ID() string {
	if v, ok := f.Properties["id"].(string); ok {
		return v
	}
	return ""
}

// LonLat returns the point coordinates. ok is false for malformed geometry.
func (f Feature) LonLat() (lon, lat float64, ok bool) {
	if len(f.Geometry.Coordinates) < 2 {
		return 0, 0, false
	}
	return f.Geometry.Coordinates[0], f.Geometry.Coordinates[1], true
}

// Collection is the load-ordered, read-only set of features.
type Collection []Feature
