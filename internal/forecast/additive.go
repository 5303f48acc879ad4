package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/propopol/internal/contracts"
)

const (
	secondsPerDay = 86400.0
	daysPerYear   = 365.25
	minFitPoints  = 3

	// 잡음 분산 하한 (scaled y 기준, max |y|의 1%)
	minNoiseVariance = 1e-4
	// 정규방정식 조건수 상한
	maxCondition = 1e12
)

// ErrNotFitted is returned by Predict before a successful Fit
var ErrNotFitted = errors.New("model is not fitted")

// AdditiveModel is a piecewise-linear trend with changepoints plus Fourier
// seasonalities, fitted by ridge-regularised least squares.
//
// y(t) = k·t + m + Σ δ_j·(t − s_j)₊ + yearly(t) + weekly(t) [+ daily(t)]
//
// t is scaled to [0, 1] over the history and y is scaled by its max |y|.
type AdditiveModel struct {
	config ModelConfig

	// fitted state
	fitted       bool
	start        time.Time
	last         time.Time
	spanDays     float64
	yScale       float64
	changepoints []float64 // scaled t
	yearlyOrder  int
	useWeekly    bool
	useDaily     bool
	beta         *mat.VecDense
	chol         *mat.Cholesky // XᵀX + Λ
	sigma2       float64    // residual variance (scaled)
	deltaScale   float64    // mean |δ|
	historyLen   int
}

// NewAdditiveModel creates an unfitted model
func NewAdditiveModel(config ModelConfig) *AdditiveModel {
	return &AdditiveModel{config: config}
}

// YearlyOrder returns the yearly Fourier order actually used by the last fit
func (m *AdditiveModel) YearlyOrder() int {
	return m.yearlyOrder
}

// DailyDegenerate reports that daily seasonality was requested but the
// history has no intra-day timestamps, so it was left out of the fit
func (m *AdditiveModel) DailyDegenerate() bool {
	return m.fitted && m.config.DailySeasonality && !m.useDaily
}

// Fit estimates trend and seasonal coefficients
func (m *AdditiveModel) Fit(points []Point) error {
	m.fitted = false

	if len(points) < minFitPoints {
		return fmt.Errorf("%w: %d points", contracts.ErrInsufficientData, len(points))
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	m.start = sorted[0].Date
	m.last = sorted[len(sorted)-1].Date
	m.spanDays = m.last.Sub(m.start).Seconds() / secondsPerDay
	if m.spanDays <= 0 {
		return fmt.Errorf("%w: history spans a single instant", contracts.ErrInsufficientData)
	}

	// y scaling
	m.yScale = 0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range sorted {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return fmt.Errorf("non-finite value at %s", p.Date.Format("2006-01-02"))
		}
		m.yScale = math.Max(m.yScale, math.Abs(p.Value))
		minY = math.Min(minY, p.Value)
		maxY = math.Max(maxY, p.Value)
	}
	if m.yScale == 0 || maxY == minY {
		return contracts.ErrNoVariance
	}

	n := len(sorted)
	ts := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range sorted {
		ts[i] = m.scaleTime(p.Date)
		ys[i] = p.Value / m.yScale
	}

	m.changepoints = placeChangepoints(ts, m.config.ChangepointCount, m.config.ChangepointRange)
	m.yearlyOrder = yearlyOrderFor(m.config.YearlyOrder, m.spanDays)
	m.useWeekly = m.config.WeeklyOrder > 0 && m.spanDays >= 14
	m.useDaily = m.config.DailySeasonality && m.config.DailyOrder > 0 && hasIntraday(sorted)
	m.historyLen = n

	X := mat.NewDense(n, m.numFeatures(), nil)
	for i, p := range sorted {
		X.SetRow(i, m.features(p.Date, ts[i]))
	}
	y := mat.NewVecDense(n, ys)

	// 사전 분산 대용: 1차 차분 분산
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = ys[i] - ys[i-1]
	}
	noise := stat.Variance(diffs, nil)
	if math.IsNaN(noise) || noise < minNoiseVariance {
		noise = minNoiseVariance
	}

	// (XᵀX + Λ) β = Xᵀy
	var gram mat.SymDense
	gram.SymOuterK(1, X.T())
	for j, lambda := range m.penalties(noise) {
		gram.SetSym(j, j, gram.At(j, j)+lambda)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return fmt.Errorf("%w: normal equations are not positive definite", contracts.ErrIllConditioned)
	}
	if cond := chol.Cond(); math.IsNaN(cond) || cond > maxCondition {
		return fmt.Errorf("%w: cond=%.3g", contracts.ErrIllConditioned, cond)
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return fmt.Errorf("solve normal equations: %w", err)
	}

	// residual variance
	var fittedY mat.VecDense
	fittedY.MulVec(X, &beta)
	rss := 0.0
	for i := 0; i < n; i++ {
		r := ys[i] - fittedY.AtVec(i)
		rss += r * r
	}
	dof := n - m.numFeatures()
	if dof < 1 {
		dof = 1
	}

	m.beta = &beta
	m.chol = &chol
	m.sigma2 = rss / float64(dof)
	m.deltaScale = m.meanAbsDelta()
	m.fitted = true

	return nil
}

// Predict forecasts the given number of calendar days after the last observation
func (m *AdditiveModel) Predict(periods int) ([]ForecastPoint, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if periods <= 0 {
		return nil, fmt.Errorf("periods must be positive: %d", periods)
	}

	z := distuv.UnitNormal.Quantile(0.5 + m.config.IntervalWidth/2)
	rate := float64(len(m.changepoints)) // 변곡점 빈도 (scaled t 단위당)

	out := make([]ForecastPoint, 0, periods)
	for h := 1; h <= periods; h++ {
		date := m.last.AddDate(0, 0, h)
		t := m.scaleTime(date)
		x := mat.NewVecDense(m.numFeatures(), m.features(date, t))

		yhat := mat.Dot(x, m.beta)

		// 관측 잡음 + 계수 불확실성 (leverage)
		var cx mat.VecDense
		if err := m.chol.SolveVecTo(&cx, x); err != nil {
			return nil, fmt.Errorf("leverage at %s: %w", date.Format("2006-01-02"), err)
		}
		leverage := mat.Dot(x, &cx)
		variance := m.sigma2 * (1 + leverage)

		// 미래 변곡점: Poisson(rate) 발생, 크기 Laplace(0, deltaScale)
		dt := t - 1
		variance += rate * 2 * m.deltaScale * m.deltaScale * dt * dt * dt / 3

		width := z * math.Sqrt(variance)
		out = append(out, ForecastPoint{
			Date:  date,
			Yhat:  yhat * m.yScale,
			Lower: (yhat - width) * m.yScale,
			Upper: (yhat + width) * m.yScale,
		})
	}

	return out, nil
}

func (m *AdditiveModel) scaleTime(date time.Time) float64 {
	return date.Sub(m.start).Seconds() / secondsPerDay / m.spanDays
}

func (m *AdditiveModel) numFeatures() int {
	p := 2 + len(m.changepoints) + 2*m.yearlyOrder
	if m.useWeekly {
		p += 2 * m.config.WeeklyOrder
	}
	if m.useDaily {
		p += 2 * m.config.DailyOrder
	}
	return p
}

// features builds one design row: [1, t, hinges..., yearly..., weekly..., daily...]
func (m *AdditiveModel) features(date time.Time, t float64) []float64 {
	row := make([]float64, 0, m.numFeatures())
	row = append(row, 1, t)
	for _, s := range m.changepoints {
		row = append(row, math.Max(0, t-s))
	}

	days := float64(date.Unix()) / secondsPerDay
	row = appendFourier(row, days, daysPerYear, m.yearlyOrder)
	if m.useWeekly {
		row = appendFourier(row, days, 7, m.config.WeeklyOrder)
	}
	if m.useDaily {
		row = appendFourier(row, days, 1, m.config.DailyOrder)
	}
	return row
}

// penalties returns the ridge diagonal Λ matching each feature's prior scale
func (m *AdditiveModel) penalties(noise float64) []float64 {
	p := m.numFeatures()
	lambdas := make([]float64, p)

	lambdas[0] = noise / 25 // intercept ~ N(0, 5)
	lambdas[1] = noise / 25 // slope ~ N(0, 5)

	cpScale := m.config.ChangepointPriorScale
	for j := 0; j < len(m.changepoints); j++ {
		lambdas[2+j] = noise / (cpScale * cpScale)
	}

	seasonScale := m.config.SeasonalityPriorScale
	for j := 2 + len(m.changepoints); j < p; j++ {
		lambdas[j] = noise / (seasonScale * seasonScale)
	}
	return lambdas
}

func (m *AdditiveModel) meanAbsDelta() float64 {
	if len(m.changepoints) == 0 {
		return 0
	}
	sum := 0.0
	for j := range m.changepoints {
		sum += math.Abs(m.beta.AtVec(2 + j))
	}
	return sum / float64(len(m.changepoints))
}

// yearlyOrderFor caps the yearly Fourier order by history length:
// off under one year, full order from two years
func yearlyOrderFor(order int, spanDays float64) int {
	if order <= 0 || spanDays < daysPerYear {
		return 0
	}
	capped := int(float64(order) * spanDays / (2 * daysPerYear))
	if capped < 1 {
		capped = 1
	}
	if capped > order {
		capped = order
	}
	return capped
}

// placeChangepoints spreads count changepoints over the first rangeFrac of rows
func placeChangepoints(ts []float64, count int, rangeFrac float64) []float64 {
	hist := int(math.Floor(float64(len(ts)) * rangeFrac))
	if count > hist-1 {
		count = hist - 1
	}
	if count <= 0 {
		return nil
	}

	cps := make([]float64, 0, count)
	for i := 1; i <= count; i++ {
		idx := int(math.Round(float64(i) * float64(hist-1) / float64(count)))
		cps = append(cps, ts[idx])
	}
	return cps
}

func appendFourier(row []float64, days, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		arg := 2 * math.Pi * float64(k) * days / period
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	return row
}

func hasIntraday(points []Point) bool {
	for _, p := range points {
		h, mi, s := p.Date.Clock()
		if h != 0 || mi != 0 || s != 0 {
			return true
		}
	}
	return false
}
