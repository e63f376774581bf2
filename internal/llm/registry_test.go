package llm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faturai/faturai/internal/common"
	"github.com/faturai/faturai/internal/institution"
	"github.com/faturai/faturai/internal/model"
)

// stubProvider satisfies Provider for registry and service tests.
type stubProvider struct {
	name   string
	result *model.ExtractionResult
	err    error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ExtractTransactions(_ context.Context, _ string, _ institution.Code) (*model.ExtractionResult, error) {
	return s.result, s.err
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name        string
		defaultName string
		providers   []Provider
		wantErr     bool
	}{
		{
			name:        "valid",
			defaultName: "openai",
			providers:   []Provider{&stubProvider{name: "openai"}, &stubProvider{name: "deepseek"}},
			wantErr:     false,
		},
		{
			name:        "no providers",
			defaultName: "openai",
			providers:   nil,
			wantErr:     true,
		},
		{
			name:        "duplicate names",
			defaultName: "openai",
			providers:   []Provider{&stubProvider{name: "openai"}, &stubProvider{name: "OpenAI"}},
			wantErr:     true,
		},
		{
			name:        "default not registered",
			defaultName: "gemini",
			providers:   []Provider{&stubProvider{name: "openai"}},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.defaultName, tt.providers...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.defaultName, reg.Default())
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry("openai",
		&stubProvider{name: "openai"},
		&stubProvider{name: "deepseek"},
	)
	require.NoError(t, err)

	t.Run("empty name returns default", func(t *testing.T) {
		p, err := reg.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "openai", p.Name())
	})

	t.Run("explicit name", func(t *testing.T) {
		p, err := reg.Resolve("deepseek")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", p.Name())
	})

	t.Run("lookup ignores case", func(t *testing.T) {
		p, err := reg.Resolve("DeepSeek")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", p.Name())
	})

	t.Run("unknown name errors instead of falling back", func(t *testing.T) {
		_, err := reg.Resolve("gpt5")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUnknownProvider)
		assert.Contains(t, err.Error(), "deepseek")
		assert.Contains(t, err.Error(), "openai")
	})
}

func TestRegistryConcurrentResolve(t *testing.T) {
	reg, err := NewRegistry("openai",
		&stubProvider{name: "openai"},
		&stubProvider{name: "deepseek"},
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := ""
			if i%2 == 0 {
				name = "deepseek"
			}
			if _, err := reg.Resolve(name); err != nil {
				t.Errorf("Resolve(%q) failed: %v", name, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestRegistryNames(t *testing.T) {
	reg, err := NewRegistry("openai",
		&stubProvider{name: "openai"},
		&stubProvider{name: "gemini"},
		&stubProvider{name: "deepseek"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"deepseek", "gemini", "openai"}, reg.Names())
}
