package dataset

import (
	"math"
	"sort"
)

// annualization factor for daily series
var sqrtTradingDays = math.Sqrt(252)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// std is the sample standard deviation, matching pandas' default ddof=1.
func std(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// quantile uses linear interpolation between order statistics, matching
// pandas' default.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// pearson drops pairs where either side is NaN.
func pearson(xs, ys []float64) float64 {
	var fx, fy []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		fx = append(fx, xs[i])
		fy = append(fy, ys[i])
	}
	if len(fx) < 2 {
		return math.NaN()
	}

	mx, my := mean(fx), mean(fy)
	var cov, vx, vy float64
	for i := range fx {
		dx, dy := fx[i]-mx, fy[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

// computeDerived fills returns, log returns, rolling volatility and moving
// averages in place. prices must already be sorted by date.
func computeDerived(points []PricePoint) {
	returns := make([]float64, len(points))
	for i := range points {
		if i == 0 || points[i-1].Price == 0 {
			returns[i] = math.NaN()
			points[i].Returns = math.NaN()
			points[i].LogReturns = math.NaN()
			continue
		}
		points[i].Returns = (points[i].Price/points[i-1].Price - 1) * 100
		points[i].LogReturns = math.Log(points[i].Price) - math.Log(points[i-1].Price)
		returns[i] = points[i].Returns
	}

	for i := range points {
		points[i].Vol7 = rollingVol(returns, i, 7)
		points[i].Vol30 = rollingVol(returns, i, 30)
		points[i].Vol90 = rollingVol(returns, i, 90)
		points[i].MA7 = rollingMean(points, i, 7)
		points[i].MA30 = rollingMean(points, i, 30)
		points[i].MA90 = rollingMean(points, i, 90)
	}
}

// rollingVol is the annualized sample std of the trailing window ending at
// i, NaN until the window is full.
func rollingVol(returns []float64, i int, window int) float64 {
	if i+1 < window {
		return math.NaN()
	}
	slice := returns[i+1-window : i+1]
	for _, r := range slice {
		if math.IsNaN(r) {
			return math.NaN()
		}
	}
	return std(slice) * sqrtTradingDays
}

func rollingMean(points []PricePoint, i int, window int) float64 {
	if i+1 < window {
		return math.NaN()
	}
	sum := 0.0
	for _, p := range points[i+1-window : i+1] {
		sum += p.Price
	}
	return sum / float64(window)
}
