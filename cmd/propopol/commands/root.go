package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/propopol/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propopol",
	Short: "Propopol - 주가 예측 배치",
	Long: `Propopol Stock Predictor CLI

상장 종목 일봉을 수집하고 종목별 가법 시계열 모델로
N일 뒤 예측 하한을 구해 기대 수익 상위 종목을 게시합니다.

Usage:
  go run ./cmd/propopol [command]

Examples:
  go run ./cmd/propopol predict run
  go run ./cmd/propopol predict run --dry-run --top-k 5
  go run ./cmd/propopol universe
  go run ./cmd/propopol scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		switch env {
		case "development", "staging", "production":
			cfg.Env = env
		default:
			return nil, fmt.Errorf("--env must be one of: development, staging, production")
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
