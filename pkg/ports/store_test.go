package ports_test

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/ports"
	"github.com/aretw0/flowstudio/pkg/ports/tests"
)

// mockStore keeps encoded documents in a map, like a real backend would.
type mockStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mockStore) Save(_ context.Context, name string, cfg *domain.BotConfig) error {
	if err := ports.ValidateName(name); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = data
	return nil
}

func (m *mockStore) Load(_ context.Context, name string) (*domain.BotConfig, error) {
	m.mu.Lock()
	data, ok := m.data[name]
	m.mu.Unlock()
	if !ok {
		return nil, ports.ErrConfigNotFound
	}
	var cfg domain.BotConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (m *mockStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *mockStore) List(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func TestConfigStore_Contract(t *testing.T) {
	tests.RunConfigStoreContract(t, &mockStore{data: make(map[string][]byte)})
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"my-bot", true},
		{"bot_1.v2", true},
		{"", false},
		{"..", false},
		{".hidden", false},
		{"a/b", false},
		{"with space", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ports.ValidateName(tt.name)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ports.ErrInvalidName)
			}
		})
	}
}
