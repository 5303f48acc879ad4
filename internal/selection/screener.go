package selection

import (
	"errors"
	"math"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// Screener separates ranked-eligible outcomes from failures
type Screener struct {
	logger *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(logger *logger.Logger) *Screener {
	return &Screener{logger: logger}
}

// Screen keeps successful outcomes in input order and reports the rest
func (s *Screener) Screen(outcomes []contracts.EntityOutcome) ([]contracts.EntityOutcome, []contracts.FailedEntity) {
	passed := make([]contracts.EntityOutcome, 0, len(outcomes))
	failed := make([]contracts.FailedEntity, 0)
	reasons := make(map[string]int)

	for _, o := range outcomes {
		err := o.Err
		if err == nil && o.Forecast == nil {
			err = errors.New("no forecast")
		}
		if err == nil && !isFinite(o.Score()) {
			err = errors.New("non-finite score")
		}
		if err != nil {
			failed = append(failed, contracts.FailedEntity{
				Code:   o.Entity.Code,
				Label:  o.Entity.Label(),
				Reason: err.Error(),
			})
			reasons[category(err)]++
			continue
		}
		passed = append(passed, o)
	}

	if len(failed) > 0 {
		fields := map[string]interface{}{"passed": len(passed), "failed": len(failed)}
		for reason, count := range reasons {
			fields["failed_"+reason] = count
		}
		s.logger.WithFields(fields).Info("Screening completed")
	}

	return passed, failed
}

func category(err error) string {
	switch {
	case errors.Is(err, contracts.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, contracts.ErrNoVariance):
		return "no_variance"
	case errors.Is(err, contracts.ErrIllConditioned):
		return "ill_conditioned"
	case errors.Is(err, contracts.ErrDeadlineExceeded):
		return "deadline"
	default:
		return "other"
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
