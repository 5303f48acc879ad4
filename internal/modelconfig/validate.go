package modelconfig

import (
	"fmt"
	"math"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	// === Changepoints ===
	cp := cfg.Model.Changepoints
	if cp.Count < 0 {
		return ValidationError{"model.changepoints.count", "must be >= 0"}
	}
	if !(cp.Range > 0 && cp.Range <= 1) {
		return ValidationError{"model.changepoints.range", "must be in (0, 1]"}
	}
	if !positive(cp.PriorScale) {
		return ValidationError{"model.changepoints.prior_scale", "must be > 0"}
	}

	// === Seasonality ===
	s := cfg.Model.Seasonality
	if !positive(s.PriorScale) {
		return ValidationError{"model.seasonality.prior_scale", "must be > 0"}
	}
	if s.YearlyOrder < 0 {
		return ValidationError{"model.seasonality.yearly_order", "must be >= 0"}
	}
	if s.WeeklyOrder < 0 {
		return ValidationError{"model.seasonality.weekly_order", "must be >= 0"}
	}
	if s.Daily && s.DailyOrder <= 0 {
		return ValidationError{"model.seasonality.daily_order", "must be > 0 when daily is on"}
	}

	// === Interval ===
	w := cfg.Model.IntervalWidth
	if !(w > 0 && w < 1) {
		return ValidationError{"model.interval_width", "must be in (0, 1)"}
	}

	return nil
}

// Warnings returns recommendations that do not stop the run
func Warnings(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Model.Changepoints.Count > 50 {
		warnings = append(warnings, Warning{
			Code:    "CHANGEPOINTS_HIGH",
			Message: fmt.Sprintf("changepoints.count=%d: 과적합 위험", cfg.Model.Changepoints.Count),
		})
	}
	if cfg.Model.Seasonality.YearlyOrder > 20 {
		warnings = append(warnings, Warning{
			Code:    "YEARLY_ORDER_HIGH",
			Message: fmt.Sprintf("yearly_order=%d: 과적합 위험", cfg.Model.Seasonality.YearlyOrder),
		})
	}
	if cfg.Model.IntervalWidth < 0.5 {
		warnings = append(warnings, Warning{
			Code:    "INTERVAL_NARROW",
			Message: "interval_width < 0.5: 하한이 점 예측에 가까움",
		})
	}

	return warnings
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
