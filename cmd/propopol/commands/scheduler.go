package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/propopol/internal/api"
	"github.com/wonny/propopol/internal/api/handlers"
	"github.com/wonny/propopol/internal/scheduler"
	"github.com/wonny/propopol/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 데몬 시작 (상태 API 포함)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/propopol scheduler start
  go run ./cmd/propopol scheduler list
  go run ./cmd/propopol scheduler run stock_prediction`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 작업을 스케줄합니다.

등록되는 작업:
- stock_prediction: PREDICT_SCHEDULE (기본 평일 18:30)

상태 API(/health, /api/jobs, /api/report/latest)를 함께 띄웁니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerNoAPI bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().BoolVar(&schedulerNoAPI, "no-api", false, "상태 API 없이 스케줄러만 실행")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Propopol Scheduler ===")

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

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	fmt.Println()
	PrintSuccess("Scheduler started successfully")
	printJobs(sched)

	if schedulerNoAPI {
		fmt.Println("\nPress Ctrl+C to stop")
		<-ctx.Done()
	} else {
		fmt.Printf("\n✅ Status API on http://localhost:%s\n", cfg.Port)
		fmt.Println("\nPress Ctrl+C to stop")
		if err := serveStatusAPI(ctx, a, sched); err != nil {
			return err
		}
	}

	fmt.Println("\nShutting down scheduler...")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

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

	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunNow(ctx, jobName); err != nil {
		PrintError(fmt.Sprintf("Job %s failed: %v", jobName, err))
		return err
	}

	PrintSuccess(fmt.Sprintf("Job %s completed", jobName))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()

	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		st := stats[jobName]
		line := fmt.Sprintf("  - %s (%s)", jobName, st.Schedule)
		if st.NextRun != nil {
			line += " next: " + st.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Println(line)
	}
}

// serveStatusAPI runs the status API until ctx is cancelled
func serveStatusAPI(ctx context.Context, a *app, sched *scheduler.Scheduler) error {
	router := api.NewRouter(
		handlers.NewJobHandler(sched, a.log),
		handlers.NewReportHandler(a.latest, a.log),
		a.log,
	)
	return api.New(a.cfg.Port, router, a.log).Run(ctx)
}
