package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/propopol/internal/brain"
	"github.com/wonny/propopol/internal/report"
	"github.com/wonny/propopol/pkg/logger"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "주가 예측 실행",
	Long: `예측 파이프라인을 실행합니다.

S0 → S1 → S2 → S3 → S4

각 단계:
- S0: 데이터셋 수집 (KRX 목록 + 일봉, 또는 스냅샷 DB)
- S1: 종목 필터 (관측 수, 최신성, 보통주, 시장)
- S2: 종목별 예측 (시간 한도 내)
- S3: 기대 수익 순위
- S4: 게시 (GitHub issue, README.md, webhook)

Example:
  go run ./cmd/propopol predict run
  go run ./cmd/propopol predict run --dry-run --print`,
}

var (
	predictRunCmd = &cobra.Command{
		Use:   "run",
		Short: "예측 파이프라인 1회 실행",
		Long: `예측 파이프라인을 1회 실행합니다.

Flags:
  --date       실행 날짜 (기본: 오늘)
  --top-k      게시할 상위 종목 수 (기본: TOP_K)
  --workers    예측 워커 수 (기본: FORECAST_WORKERS)
  --budget     예측 시간 한도 (기본: TIME_BUDGET)
  --dry-run    게시 생략
  --print      보고서 markdown 출력

Example:
  go run ./cmd/propopol predict run
  go run ./cmd/propopol predict run --date 2026-10-16 --dry-run
  go run ./cmd/propopol predict run --top-k 5 --workers 4`,
		RunE: runPredict,
	}

	// Flags
	predictDate    string
	predictTopK    int
	predictWorkers int
	predictBudget  time.Duration
	predictDryRun  bool
	predictPrint   bool
)

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.AddCommand(predictRunCmd)

	predictRunCmd.Flags().StringVar(&predictDate, "date", "", "실행 날짜 (YYYY-MM-DD, 기본: 오늘)")
	predictRunCmd.Flags().IntVar(&predictTopK, "top-k", 0, "게시할 상위 종목 수")
	predictRunCmd.Flags().IntVar(&predictWorkers, "workers", 0, "예측 워커 수 (1 = 순차)")
	predictRunCmd.Flags().DurationVar(&predictBudget, "budget", 0, "예측 시간 한도 (예: 30m)")
	predictRunCmd.Flags().BoolVar(&predictDryRun, "dry-run", false, "게시 생략")
	predictRunCmd.Flags().BoolVar(&predictPrint, "print", false, "보고서 markdown 출력")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// Run config: env defaults, flags override
	runConfig := a.runTemplate()
	runConfig.RunID = brain.GenerateRunID()
	runConfig.DryRun = predictDryRun
	runConfig.Date = time.Now()

	if predictDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", predictDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date format: %w", err)
		}
		runConfig.Date = parsed
	}
	if cmd.Flags().Changed("top-k") {
		if predictTopK <= 0 {
			return fmt.Errorf("--top-k must be positive")
		}
		runConfig.TopK = predictTopK
	}
	if cmd.Flags().Changed("workers") {
		runConfig.Workers = predictWorkers
	}
	if cmd.Flags().Changed("budget") {
		runConfig.Budget = predictBudget
	}

	PrintRunHeader(RunMetadata{
		Title:   "Stock Prediction",
		RunID:   runConfig.RunID,
		Date:    runConfig.Date.Format("2006-01-02"),
		History: fmt.Sprintf("%s ~", runConfig.HistoryStart.Format("2006-01-02")),
		Source:  sourceName(cfg.Predict.DataSource, cfg.Predict.QuoteProvider),
	})
	fmt.Printf("🔧 Top-K: %d  Workers: %d  Budget: %s  Dry Run: %v\n",
		runConfig.TopK, runConfig.Workers, runConfig.Budget, runConfig.DryRun)

	result, runErr := a.orchestrator.Run(ctx, runConfig)
	if result != nil {
		printRunResult(result)
	}
	if runErr != nil {
		return fmt.Errorf("prediction run failed: %w", runErr)
	}

	if predictPrint {
		fmt.Println()
		fmt.Print(report.Render(result.Report))
	}

	return nil
}

func sourceName(dataSource, provider string) string {
	if dataSource == "snapshot" {
		return "snapshot (PostgreSQL)"
	}
	return "KRX listing + " + provider
}
