package commands

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

func TestParseMarkets(t *testing.T) {
	markets, err := parseMarkets([]string{"KOSPI", "KOSDAQ"})
	require.NoError(t, err)
	assert.Equal(t, []contracts.Market{contracts.MarketKOSPI, contracts.MarketKOSDAQ}, markets)

	_, err = parseMarkets([]string{"NASDAQ"})
	assert.Error(t, err)
}

func TestLoadConfig_Flags(t *testing.T) {
	os.Setenv("FULL_ACCESS_TOKEN", "ghp_test")
	os.Setenv("WEBHOOK_URL", "https://hooks.slack.test/services/x")
	t.Cleanup(func() {
		os.Unsetenv("FULL_ACCESS_TOKEN")
		os.Unsetenv("WEBHOOK_URL")
		env, verbose = "", false
	})

	env, verbose = "staging", true
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)

	env = "qa"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestLoadModelConfig(t *testing.T) {
	mc, err := loadModelConfig("", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 25, mc.ChangepointCount)

	path := t.TempDir() + "/model.yaml"
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  config_id: fast\nmodel:\n  changepoints:\n    count: 5\n"), 0o600))

	mc, err = loadModelConfig(path, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 5, mc.ChangepointCount)

	_, err = loadModelConfig(t.TempDir()+"/missing.yaml", logger.Nop())
	assert.Error(t, err)
}

func TestPrintRunResult(t *testing.T) {
	result := &brain.RunResult{
		RunID:           "run_20261019_183000_abcd1234",
		Date:            time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Success:         true,
		CompletedStages: []string{"S0:Data", "S1:Filter"},
		Report: &contracts.Report{
			Date:      time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
			Horizon:   14,
			Eligible:  3,
			Processed: 2,
			Aborted:   true,
			Entries: []contracts.RankedEntry{
				{Rank: 1, Code: "005930", Label: "삼성전자(005930)", CurrentPrice: 61000, PredictedPrice: 62000, ExpectedProfit: 1000},
			},
		},
	}

	assert.NotPanics(t, func() { printRunResult(result) })
	assert.NotPanics(t, func() { printRunResult(&brain.RunResult{RunID: "run_x"}) })
}
