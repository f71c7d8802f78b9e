package routes

import (
	"context"
	"errors"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kuyua/kuyua-api/geo"
	"github.com/kuyua/kuyua-api/metrics"
	"github.com/kuyua/kuyua-api/query"
	"github.com/kuyua/kuyua-api/risk"
	"github.com/kuyua/kuyua-api/services"
	"go.uber.org/zap"
)

const defaultNearbyRadiusKm = 100.0

type Options struct {
	DefaultPageSize int
	CORSOrigins     string
	Log             *zap.Logger
	Metrics         *metrics.Collector
}

type pinger interface {
	Ping(ctx context.Context) error
}

func RegisterRoutes(app *fiber.App, store *services.Store, opts Options) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/locations", func(c *fiber.Ctx) error {
		coll, err := store.Load(c.UserContext())
		if err != nil {
			return unavailable(c, log, err)
		}

		req := query.ParseRequest(c.Queries(), opts.DefaultPageSize)
		resp := query.Run(coll, req)
		opts.Metrics.ObserveQuery(len(resp.Features), resp.Total)

		return c.JSON(resp)
	})

	app.Get("/locations/summary", func(c *fiber.Ctx) error {
		coll, err := store.Load(c.UserContext())
		if err != nil {
			return unavailable(c, log, err)
		}

		profiles := make(fiber.Map, len(services.ProfileKeys))
		for _, key := range services.ProfileKeys {
			profiles[key] = profileCounts(coll, key)
		}
		countries := buildCounts(coll, func(f services.Feature) string {
			cc, _ := f.Properties["countryCode"].(string)
			return cc
		})

		return c.JSON(fiber.Map{
			"total":     len(coll),
			"risk":      risk.Distribution(coll),
			"profiles":  profiles,
			"countries": fiber.Map{"total": len(countries), "items": countries},
		})
	})

	app.Get("/locations/nearby", func(c *fiber.Ctx) error {
		lon, lat, err := geo.ParsePoint(c.Query("lon"), c.Query("lat"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		radius := defaultNearbyRadiusKm
		if q := strings.TrimSpace(c.Query("radius")); q != "" {
			if r, err := strconv.ParseFloat(q, 64); err == nil && r > 0 && !math.IsInf(r, 0) {
				radius = r
			}
		}

		coll, err := store.Load(c.UserContext())
		if err != nil {
			return unavailable(c, log, err)
		}

		items := make([]nearbyItem, 0)
		for _, f := range coll {
			flon, flat, ok := f.LonLat()
			if !ok {
				continue
			}
			if d := geo.Haversine(lon, lat, flon, flat); d <= radius {
				items = append(items, nearbyItem{Feature: f, DistanceKm: d})
			}
		}

		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DistanceKm < items[j].DistanceKm
		})

		limit := len(items)
		if q := strings.TrimSpace(c.Query("limit")); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 && n < limit {
				limit = n
			}
		}

		return c.JSON(fiber.Map{
			"count":    len(items),
			"radiusKm": radius,
			"items":    items[:limit],
		})
	})

	app.Get("/locations/:id", func(c *fiber.Ctx) error {
		id := decodeParam(c.Params("id"))
		if strings.TrimSpace(id) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id is required"})
		}

		f, ok, err := store.Lookup(c.UserContext(), id)
		if err != nil {
			return unavailable(c, log, err)
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "location not found"})
		}
		return c.JSON(locationDetail{Feature: f, Risk: risk.Calculate(f.Properties)})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if p, ok := store.Source().(pinger); ok {
			ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
			defer cancel()

			if err := p.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"redis": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		_, _ = store.Load(c.UserContext())

		state := store.State()
		if state != services.StateReady {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": state})
		}
		return c.JSON(fiber.Map{"status": state, "records": store.Len()})
	})

	if opts.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.Metrics.Handler()))
	}
}

type nearbyItem struct {
	Feature    services.Feature `json:"feature"`
	DistanceKm float64          `json:"distanceKm"`
}

// locationDetail is a feature with its risk assessment alongside the GeoJSON fields.
type locationDetail struct {
	services.Feature
	Risk risk.Result `json:"risk"`
}

type nameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// unavailable answers a failed collection load. The body is plain text and
// never carries partial data.
func unavailable(c *fiber.Ctx, log *zap.Logger, err error) error {
	if !errors.Is(err, services.ErrDataUnavailable) {
		log.Error("unexpected store error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}

func buildCounts(features []services.Feature, get func(services.Feature) string) []nameCount {
	temp := make(map[string]*nameCount)
	for _, f := range features {
		name := strings.TrimSpace(get(f))
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if existing, ok := temp[key]; ok {
			existing.Count++
		} else {
			temp[key] = &nameCount{Name: name, Count: 1}
		}
	}

	result := make([]nameCount, 0, len(temp))
	for _, v := range temp {
		result = append(result, *v)
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

// profileCounts counts one profile's categories, in category order. Values
// outside the known categories follow alphabetically.
func profileCounts(features []services.Feature, key string) []nameCount {
	counts := buildCounts(features, func(f services.Feature) string {
		v, _ := f.Properties[key].(string)
		return v
	})

	rank := make(map[string]int, len(services.ProfileValues))
	for i, v := range services.ProfileValues {
		rank[strings.ToLower(v)] = i
	}
	sort.SliceStable(counts, func(i, j int) bool {
		ri, iok := rank[strings.ToLower(counts[i].Name)]
		rj, jok := rank[strings.ToLower(counts[j].Name)]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return false
	})
	return counts
}

func decodeParam(val string) string {
	if val == "" {
		return val
	}
	if decoded, err := url.PathUnescape(val); err == nil {
		return decoded
	}
	return val
}
