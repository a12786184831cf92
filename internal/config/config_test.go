package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://terrywhitechemmart.com.au", cfg.BaseURL)
	assert.Len(t, cfg.Categories, 12)
	assert.Contains(t, cfg.Categories, "skin-care")
	assert.Equal(t, 10, cfg.MaxProducts)
	assert.Equal(t, 5, cfg.AttemptFactor)
	assert.Equal(t, 24, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.ListDelay)
	assert.Equal(t, "Product_data.csv", cfg.OutputFile)
	assert.NotEmpty(t, cfg.DeviceIdentifier)
	assert.NotEmpty(t, cfg.UserAgent)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TWC_BASE_URL", "https://staging.example.com")
	t.Setenv("TWC_CATEGORIES", "skin-care, beauty")
	t.Setenv("TWC_MAX_PRODUCTS", "25")
	t.Setenv("TWC_REQUESTS_PER_SEC", "0.5")
	t.Setenv("TWC_REQUEST_TIMEOUT", "10s")
	t.Setenv("TWC_HEADLESS", "no")

	cfg := Load()

	require.Equal(t, "https://staging.example.com", cfg.BaseURL)
	require.Equal(t, []string{"skin-care", "beauty"}, cfg.Categories)
	require.Equal(t, 25, cfg.MaxProducts)
	require.Equal(t, 0.5, cfg.RequestsPerSec)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.False(t, cfg.Headless)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TWC_MAX_PRODUCTS", "plenty")
	t.Setenv("TWC_REQUEST_TIMEOUT", "soon")
	t.Setenv("TWC_VERBOSE", "maybe")

	cfg := Load()
	def := DefaultConfig()

	assert.Equal(t, def.MaxProducts, cfg.MaxProducts)
	assert.Equal(t, def.RequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, def.Verbose, cfg.Verbose)
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"spaces and blanks", " a , ,b,", []string{"a", "b"}},
		{"only separators", ", ,", []string{"fallback"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TWC_TEST_SLICE", tc.value)
			got := parseStringSlice("TWC_TEST_SLICE", []string{"fallback"})
			assert.Equal(t, tc.want, got)
		})
	}
}
