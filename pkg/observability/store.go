package observability

import (
	"context"
	"errors"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
)

// InstrumentedStore counts the calls made to a ConfigStore. A missing config
// is reported as "not_found" rather than as an error.
type InstrumentedStore struct {
	ports.ConfigStore
	metrics *Metrics
}

// InstrumentStore wraps store so every call is recorded in m.
func InstrumentStore(store ports.ConfigStore, m *Metrics) *InstrumentedStore {
	return &InstrumentedStore{ConfigStore: store, metrics: m}
}

func (s *InstrumentedStore) observe(op string, err error) {
	if errors.Is(err, ports.ErrConfigNotFound) {
		s.metrics.storeOps.WithLabelValues(op, "not_found").Inc()
		return
	}
	s.metrics.observeStore(op, err)
}

func (s *InstrumentedStore) Save(ctx context.Context, name string, cfg *domain.BotConfig) error {
	err := s.ConfigStore.Save(ctx, name, cfg)
	s.observe("save", err)
	return err
}

func (s *InstrumentedStore) Load(ctx context.Context, name string) (*domain.BotConfig, error) {
	cfg, err := s.ConfigStore.Load(ctx, name)
	s.observe("load", err)
	return cfg, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, name string) error {
	err := s.ConfigStore.Delete(ctx, name)
	s.observe("delete", err)
	return err
}

func (s *InstrumentedStore) List(ctx context.Context) ([]string, error) {
	names, err := s.ConfigStore.List(ctx)
	s.observe("list", err)
	return names, err
}

// Unwrap returns the wrapped store, e.g. to reach a ports.VersionedStore.
func (s *InstrumentedStore) Unwrap() ports.ConfigStore {
	return s.ConfigStore
}
