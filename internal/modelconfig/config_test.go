package modelconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/forecast"
)

func TestDefault_MatchesForecaster(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, forecast.DefaultModelConfig(), cfg.ModelConfig())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	yamlData := []byte(`
meta:
  config_id: kospi_fast
model:
  changepoints:
    count: 10
  seasonality:
    yearly_order: 5
`)

	cfg, err := Parse(yamlData)
	require.NoError(t, err)

	mc := cfg.ModelConfig()
	assert.Equal(t, 10, mc.ChangepointCount)
	assert.Equal(t, 5, mc.YearlyOrder)

	// 지정하지 않은 값은 기본값 유지
	assert.Equal(t, 0.8, mc.ChangepointRange)
	assert.Equal(t, 3, mc.WeeklyOrder)
	assert.Equal(t, 0.80, mc.IntervalWidth)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("model:\n  interval_widht: 0.9\n"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("model:\n  interval_width: 1.5\n"))
	require.Error(t, err)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "model.interval_width", ve.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"missing id", func(c *Config) { c.Meta.ConfigID = "" }, "meta.config_id"},
		{"negative changepoints", func(c *Config) { c.Model.Changepoints.Count = -1 }, "model.changepoints.count"},
		{"zero range", func(c *Config) { c.Model.Changepoints.Range = 0 }, "model.changepoints.range"},
		{"zero prior", func(c *Config) { c.Model.Seasonality.PriorScale = 0 }, "model.seasonality.prior_scale"},
		{"daily without order", func(c *Config) { c.Model.Seasonality.DailyOrder = 0 }, "model.seasonality.daily_order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			var ve ValidationError
			require.True(t, errors.As(Validate(cfg), &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestWarnings(t *testing.T) {
	assert.Empty(t, Warnings(Default()))

	cfg := Default()
	cfg.Model.Changepoints.Count = 80
	cfg.Model.IntervalWidth = 0.3

	codes := []string{}
	for _, w := range Warnings(cfg) {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{"CHANGEPOINTS_HIGH", "INTERVAL_NARROW"}, codes)
}

func TestLoadAndHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  config_id: test\n"), 0o600))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	assert.Equal(t, hash, hash2)

	// 설정이 바뀌면 해시도 바뀜
	cfg.Model.Changepoints.Count++
	hash3, _ := Hash(cfg)
	assert.NotEqual(t, hash, hash3)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
