package query

import (
	"sort"
	"strings"

	"github.com/kuyua/kuyua-api/services"
)

// profileSampleSize is how many leading records feed the profile summary.
const profileSampleSize = 5

type ProfileBundle struct {
	ImpactProfile     string `json:"impactProfile,omitempty"`
	DependencyProfile string `json:"dependencyProfile,omitempty"`
	NatureRiskProfile string `json:"natureRiskProfile,omitempty"`
	ClimateProfile    string `json:"climateProfile,omitempty"`
}

type Response struct {
	Type     string                   `json:"type"`
	Features []services.Feature       `json:"features"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
	Total    int                      `json:"total"`
	Profiles map[string]ProfileBundle `json:"profiles"`
}

// Run filters, sorts and paginates coll for req. coll is never modified.
func Run(coll services.Collection, req Request) Response {
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.PageSize < 1 {
		req.PageSize = DefaultPageSize
	}

	matched := Filter(coll, req.Filters)
	if req.SortField != "" && req.SortOrder != 0 {
		Sort(matched, req.SortField, req.SortOrder)
	}

	return Response{
		Type:     services.TypeFeatureCollection,
		Features: Paginate(matched, req.Page, req.PageSize),
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    len(matched),
		Profiles: Profiles(coll),
	}
}

// Filter returns, in collection order, the features whose properties contain
// every filter value as a case-insensitive substring. The result is a fresh slice.
func Filter(coll services.Collection, filters map[string]string) []services.Feature {
	if len(filters) == 0 {
		return append(make([]services.Feature, 0, len(coll)), coll...)
	}

	needles := make(map[string]string, len(filters))
	for k, v := range filters {
		needles[k] = strings.ToLower(v)
	}

	out := make([]services.Feature, 0)
	for _, f := range coll {
		if matchesAll(f, needles) {
			out = append(out, f)
		}
	}
	return out
}

func matchesAll(f services.Feature, needles map[string]string) bool {
	for key, needle := range needles {
		v, ok := f.Properties[key]
		if !strings.Contains(strings.ToLower(propertyText(v, ok)), needle) {
			return false
		}
	}
	return true
}

// Sort orders features in place by one property, stably. order < 0 reverses.
// Features lacking the property keep their relative order after all others.
func Sort(features []services.Feature, field string, order int) {
	sort.SliceStable(features, func(i, j int) bool {
		a, aok := features[i].Properties[field]
		b, bok := features[j].Properties[field]
		if !aok || !bok {
			return aok && !bok
		}
		c := compareValues(a, b)
		if order < 0 {
			return c > 0
		}
		return c < 0
	})
}

// Paginate returns the 1-based page of the given size; pages past the end are empty.
func Paginate(features []services.Feature, page, pageSize int) []services.Feature {
	if page < 1 || pageSize < 1 {
		return []services.Feature{}
	}
	pages := len(features) / pageSize
	if len(features)%pageSize != 0 {
		pages++
	}
	// Checked before multiplying so huge page numbers cannot overflow.
	if page > pages {
		return []services.Feature{}
	}
	offset := (page - 1) * pageSize
	end := len(features)
	if pageSize < end-offset {
		end = offset + pageSize
	}
	return features[offset:end]
}

// Profiles summarizes the first records of the raw collection per country,
// keeping the first occurrence of each country code.
func Profiles(coll services.Collection) map[string]ProfileBundle {
	out := make(map[string]ProfileBundle)

	n := min(profileSampleSize, len(coll))
	for _, f := range coll[:n] {
		cc, ok := f.Properties["countryCode"]
		if !ok || cc == nil {
			continue
		}
		country := propertyText(cc, true)
		if _, seen := out[country]; seen {
			continue
		}
		out[country] = ProfileBundle{
			ImpactProfile:     profileText(f, services.KeyImpactProfile),
			DependencyProfile: profileText(f, services.KeyDependencyProfile),
			NatureRiskProfile: profileText(f, services.KeyNatureRiskProfile),
			ClimateProfile:    profileText(f, services.KeyClimateProfile),
		}
	}
	return out
}

func profileText(f services.Feature, key string) string {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return ""
	}
	return propertyText(v, true)
}
