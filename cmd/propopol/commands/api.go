package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/propopol/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "상태 API 서버 시작",
	Long: `상태 API 서버만 시작합니다. 예약 실행은 하지 않고,
POST /api/jobs/{name}/run 으로 수동 실행할 수 있습니다.

Endpoints:
  GET  /health                    - Health check
  GET  /api/jobs                  - 작업 통계
  GET  /api/jobs/{name}/history   - 작업 실행 이력
  POST /api/jobs/{name}/run       - 작업 즉시 실행
  GET  /api/report/latest         - 최근 게시 보고서

Example:
  go run ./cmd/propopol api
  go run ./cmd/propopol api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Propopol API Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer sched.Stop()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := serveStatusAPI(ctx, a, sched); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
