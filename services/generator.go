package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/kuyua/kuyua-api/metrics"
	"go.uber.org/zap"
)

const DefaultGeneratorCount = 10000

// Generator fabricates synthetic location features for a fresh deployment.
type Generator struct {
	count   int
	faker   *gofakeit.Faker
	log     *zap.Logger
	metrics *metrics.Collector
}

// NewGenerator builds a generator for count features. A zero seed draws a random one.
func NewGenerator(count int, seed int64, log *zap.Logger, m *metrics.Collector) *Generator {
	if count <= 0 {
		count = DefaultGeneratorCount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		count:   count,
		faker:   gofakeit.New(seed),
		log:     log,
		metrics: m,
	}
}

func (g *Generator) Generate() FeatureCollection {
	features := make([]Feature, 0, g.count)
	for i := 0; i < g.count; i++ {
		features = append(features, g.feature())
	}
	return FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: features,
	}
}

func (g *Generator) feature() Feature {
	f := g.faker
	city := f.City()
	state := f.State()

	return Feature{
		Type: TypeFeature,
		Geometry: Geometry{
			Type:        TypePoint,
			Coordinates: []float64{f.Longitude(), f.Latitude()},
		},
		Properties: map[string]any{
			"id":                 uuid.NewString(),
			"name":               f.City(),
			"score":              f.IntRange(0, 100),
			"address":            fmt.Sprintf("%s, %s, %s, %s", f.Street(), city, state, f.Zip()),
			"state":              state,
			"countryCode":        f.CountryAbr(),
			KeyImpactProfile:     f.RandomString(ProfileValues),
			KeyDependencyProfile: f.RandomString(ProfileValues),
			KeyNatureRiskProfile: f.RandomString(ProfileValues),
			KeyClimateProfile:    f.RandomString(ProfileValues),
		},
	}
}

// Task is a running generation. Err is meaningful once Done is closed.
type Task struct {
	done    chan struct{}
	err     error
	records int
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Err() error {
	return t.err
}

func (t *Task) Records() int {
	return t.records
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start generates a collection in the background and writes it to src.
func (g *Generator) Start(ctx context.Context, src Source) *Task {
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		start := time.Now()
		fc := g.Generate()

		raw, err := json.Marshal(fc)
		if err != nil {
			t.err = fmt.Errorf("marshal generated locations: %w", err)
		} else if err := src.Write(ctx, raw); err != nil {
			t.err = fmt.Errorf("write generated locations to %s: %w", src.Name(), err)
		}
		if t.err != nil {
			g.log.Error("location generation failed", zap.Error(t.err))
			return
		}

		t.records = len(fc.Features)
		g.metrics.ObserveGeneration(time.Since(start))
		g.log.Info("locations generated",
			zap.String("source", src.Name()),
			zap.Int("records", t.records),
			zap.Duration("took", time.Since(start)),
		)
	}()

	return t
}

// EnsureData starts generation when src has no document yet. It returns a nil
// task when the resource already exists.
func EnsureData(ctx context.Context, src Source, g *Generator) (*Task, error) {
	exists, err := src.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", src.Name(), err)
	}
	if exists {
		g.log.Info("locations resource already exists", zap.String("source", src.Name()))
		return nil, nil
	}
	return g.Start(ctx, src), nil
}
