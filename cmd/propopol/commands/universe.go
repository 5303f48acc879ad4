package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/propopol/pkg/logger"
)

// universeCmd shows which entities the filter would forecast
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "예측 대상 종목 조회",
	Long: `데이터셋을 수집하고 S1 필터를 적용한 결과를 보여줍니다.
예측과 게시는 수행하지 않습니다.

Example:
  go run ./cmd/propopol universe
  go run ./cmd/propopol universe --limit 50`,
	RunE: runUniverse,
}

var universeLimit int

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().IntVar(&universeLimit, "limit", 20, "출력할 대상 종목 수 (0 = 전체)")
}

func runUniverse(cmd *cobra.Command, args []string) error {
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

	now := time.Now()
	PrintRunHeader(RunMetadata{
		Title:   "Universe",
		Date:    now.Format("2006-01-02"),
		History: fmt.Sprintf("%s ~", cfg.Predict.HistoryStart.Format("2006-01-02")),
		Source:  sourceName(cfg.Predict.DataSource, cfg.Predict.QuoteProvider),
	})

	ds, err := a.acquirer.Acquire(ctx, cfg.Predict.HistoryStart, now)
	if err != nil {
		return fmt.Errorf("acquire dataset: %w", err)
	}

	snapshot := a.qualityGate.Check(ds, now)
	universe := a.filter.Build(ds, now)

	fmt.Println()
	PrintKeyValue("Entities", fmt.Sprintf("%d", snapshot.TotalEntities), 12)
	PrintKeyValue("Observations", fmt.Sprintf("%d", snapshot.Observations), 12)
	PrintKeyValue("Quality", fmt.Sprintf("%.2f", snapshot.QualityScore), 12)
	PrintKeyValue("Eligible", fmt.Sprintf("%d", len(universe.Series)), 12)
	PrintKeyValue("Skipped", fmt.Sprintf("%d", len(universe.Excluded)), 12)

	// 제외 사유별 집계 ("관측 수 미달 (50)" → "관측 수 미달")
	tally := make(map[string]int)
	for _, reason := range universe.Excluded {
		if i := strings.Index(reason, " ("); i > 0 {
			reason = reason[:i]
		}
		tally[reason]++
	}
	if len(tally) > 0 {
		reasons := make([]string, 0, len(tally))
		for r := range tally {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)

		fmt.Println()
		fmt.Println("Skipped by reason:")
		for _, r := range reasons {
			fmt.Printf("   • %s: %d\n", r, tally[r])
		}
	}

	if len(universe.Series) == 0 {
		PrintWarning("No eligible entity")
		return nil
	}

	fmt.Println()
	widths := []int{24, 10, 8, 12, 12}
	PrintTableHeader([]string{"corp", "symbol", "obs", "latest", "close"}, widths)
	for i, s := range universe.Series {
		if universeLimit > 0 && i >= universeLimit {
			fmt.Printf("   ... %d more\n", len(universe.Series)-universeLimit)
			break
		}
		latest, _ := s.Latest()
		PrintTableRow([]string{
			s.Entity.Label(),
			s.Entity.Symbol,
			fmt.Sprintf("%d", s.Len()),
			latest.Date.Format("2006-01-02"),
			fmt.Sprintf("%.0f", latest.Close),
		}, widths)
	}

	return nil
}
