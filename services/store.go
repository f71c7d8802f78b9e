package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kuyua/kuyua-api/metrics"
	"go.uber.org/zap"
)

// ErrDataUnavailable is returned when the collection could not be read or parsed.
var ErrDataUnavailable = errors.New("location data unavailable")

type State string

const (
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateUnavailable State = "unavailable"
)

// Store owns the location collection. The first successful load is kept for the
// process lifetime; failed loads are not remembered, so the next caller reads
// the source again.
type Store struct {
	source  Source
	log     *zap.Logger
	metrics *metrics.Collector

	loadM sync.Mutex
	data  atomic.Pointer[Collection]
	state atomic.Value
}

func NewStore(source Source, log *zap.Logger, m *metrics.Collector) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		source:  source,
		log:     log,
		metrics: m,
	}
	s.state.Store(StateLoading)
	return s
}

func (s *Store) Source() Source {
	return s.source
}

// Load returns the collection, reading the source if nothing has been loaded yet.
func (s *Store) Load(ctx context.Context) (Collection, error) {
	if c := s.data.Load(); c != nil {
		return *c, nil
	}

	s.loadM.Lock()
	defer s.loadM.Unlock()

	if c := s.data.Load(); c != nil {
		return *c, nil
	}

	raw, err := s.source.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceMissing) {
			s.state.Store(StateLoading)
			s.metrics.ObserveLoad("missing", 0)
		} else {
			s.state.Store(StateUnavailable)
			s.metrics.ObserveLoad("error", 0)
		}
		s.log.Warn("location load failed", zap.String("source", s.source.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		s.state.Store(StateUnavailable)
		s.metrics.ObserveLoad("error", 0)
		s.log.Error("location parse failed", zap.String("source", s.source.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: parse %s: %w", ErrDataUnavailable, s.source.Name(), err)
	}

	coll := Collection(fc.Features)
	if coll == nil {
		coll = Collection{}
	}
	s.data.Store(&coll)
	s.state.Store(StateReady)
	s.metrics.ObserveLoad("ok", len(coll))
	s.log.Info("locations loaded", zap.String("source", s.source.Name()), zap.Int("records", len(coll)))

	return coll, nil
}

// Lookup finds a feature by its properties.id.
func (s *Store) Lookup(ctx context.Context, id string) (Feature, bool, error) {
	coll, err := s.Load(ctx)
	if err != nil {
		return Feature{}, false, err
	}
	for _, f := range coll {
		if f.ID() == id {
			return f, true, nil
		}
	}
	return Feature{}, false, nil
}

func (s *Store) State() State {
	return s.state.Load().(State)
}

// Len is the number of loaded records, 0 before the first successful load.
func (s *Store) Len() int {
	if c := s.data.Load(); c != nil {
		return len(*c)
	}
	return 0
}
