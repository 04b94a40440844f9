package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/petrodata/brentdash/brent"
)

// FilterPrices returns the points inside [start, end]. Zero times leave that
// side unbounded.
func (s *Service) FilterPrices(start, end time.Time) []PricePoint {
	out := make([]PricePoint, 0, len(s.prices))
	for _, p := range s.prices {
		if !start.IsZero() && p.Date.Before(start) {
			continue
		}
		if !end.IsZero() && p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Resample aggregates daily points into weekly or monthly buckets (mean of
// price, returns and 30d volatility; bucket labeled by its last trading
// day). Any other mode returns the input unchanged.
func Resample(points []PricePoint, mode string) []PricePoint {
	var bucket func(time.Time) time.Time
	switch mode {
	case "weekly":
		bucket = func(t time.Time) time.Time {
			// Monday of the ISO week, so days either side of a year
			// boundary share a bucket
			back := (int(t.Weekday()) + 6) % 7
			y, m, d := t.AddDate(0, 0, -back).Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
	case "monthly":
		bucket = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	default:
		return points
	}

	type agg struct {
		last                 PricePoint
		prices, returns, vol []float64
	}
	order := []time.Time{}
	buckets := map[time.Time]*agg{}
	for _, p := range points {
		b := bucket(p.Date)
		a, ok := buckets[b]
		if !ok {
			a = &agg{}
			buckets[b] = a
			order = append(order, b)
		}
		a.last = p
		a.prices = append(a.prices, p.Price)
		if !isNaN(p.Returns) {
			a.returns = append(a.returns, p.Returns)
		}
		if !isNaN(p.Vol30) {
			a.vol = append(a.vol, p.Vol30)
		}
	}

	out := make([]PricePoint, 0, len(order))
	for _, b := range order {
		a := buckets[b]
		p := PricePoint{
			Date:    a.last.Date,
			Price:   mean(a.prices),
			Returns: mean(a.returns),
			Vol30:   mean(a.vol),
			MA7:     math.NaN(),
			MA30:    math.NaN(),
			MA90:    math.NaN(),
			Vol7:    math.NaN(),
			Vol90:   math.NaN(),
		}
		out = append(out, p)
	}
	return out
}

// WirePoints converts points to the API shape: NaN returns and volatility
// become 0, NaN moving averages become null.
func WirePoints(points []PricePoint) []brent.PricePoint {
	out := make([]brent.PricePoint, 0, len(points))
	for _, p := range points {
		wire := brent.PricePoint{
			Date:       p.Date.Format(dateLayout),
			Price:      p.Price,
			Returns:    nanToZero(p.Returns),
			Volatility: nanToZero(p.Vol30),
		}
		wire.MA7 = maybeFloat(p.MA7)
		wire.MA30 = maybeFloat(p.MA30)
		wire.MA90 = maybeFloat(p.MA90)
		out = append(out, wire)
	}
	return out
}

func maybeFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	v := f
	return &v
}

// SeriesMetrics summarizes a price window the way /prices reports it.
func SeriesMetrics(points []PricePoint) brent.SeriesMetrics {
	if len(points) == 0 {
		return brent.SeriesMetrics{}
	}

	prices := make([]float64, 0, len(points))
	returns := make([]float64, 0, len(points))
	bull, bear := 0, 0
	for _, p := range points {
		prices = append(prices, p.Price)
		if isNaN(p.Returns) {
			continue
		}
		returns = append(returns, p.Returns)
		if p.Returns > 0 {
			bull++
		} else if p.Returns < 0 {
			bear++
		}
	}

	lo, hi := minMax(prices)
	m := brent.SeriesMetrics{
		Price: brent.PriceStats{
			Current: points[len(points)-1].Price,
			Average: nanToZero(mean(prices)),
			Max:     hi,
			Min:     lo,
			Std:     nanToZero(std(prices)),
			Q1:      nanToZero(quantile(prices, 0.25)),
			Median:  nanToZero(quantile(prices, 0.5)),
			Q3:      nanToZero(quantile(prices, 0.75)),
		},
		Periods: brent.PeriodStats{BullMarket: bull, BearMarket: bear},
	}

	m.Returns.AverageDaily = nanToZero(mean(returns))
	m.Returns.Volatility30d = nanToZero(points[len(points)-1].Vol30)
	if sd := std(returns); !isNaN(sd) && sd > 0 {
		m.Returns.SharpeRatio = mean(returns) / sd * sqrtTradingDays
	}

	return m
}

// Metrics builds the comprehensive dashboard metrics over the whole history.
func (s *Service) Metrics() brent.Metrics {
	var out brent.Metrics
	if len(s.prices) == 0 {
		return out
	}

	first, last := s.DateRange()
	series := SeriesMetrics(s.prices)

	returns := []float64{}
	positive, negative := 0, 0
	for _, p := range s.prices {
		if isNaN(p.Returns) {
			continue
		}
		returns = append(returns, p.Returns)
		if p.Returns > 0 {
			positive++
		} else if p.Returns < 0 {
			negative++
		}
	}
	maxLoss, maxGain := minMax(returns)

	out.Basic = brent.BasicMetrics{
		DataRange: brent.DataRange{
			Start:      first.Format(dateLayout),
			End:        last.Format(dateLayout),
			TotalDays:  len(s.prices),
			TotalYears: math.Round(float64(len(s.prices))/365*10) / 10,
		},
		PriceStatistics: series.Price,
		ReturnsStatistics: brent.ReturnsStatistics{
			AvgDailyReturn:     nanToZero(mean(returns)),
			AvgDailyVolatility: nanToZero(std(returns)),
			SharpeRatio:        series.Returns.SharpeRatio,
			PositiveDays:       positive,
			NegativeDays:       negative,
			MaxGain:            nanToZero(maxGain),
			MaxLoss:            nanToZero(maxLoss),
		},
	}

	out.Events = brent.EventMetrics{
		TotalEvents:      len(s.events),
		EventsByCategory: map[string]int{},
		EventsByImpact:   map[string]int{},
	}
	for _, e := range s.events {
		out.Events.EventsByCategory[e.Category]++
		out.Events.EventsByImpact[e.ImpactMagnitude]++
	}

	// regime split by return quartiles
	q1 := quantile(returns, 0.25)
	q3 := quantile(returns, 0.75)
	out.Regimes = map[string]int{"Bullish": 0, "Bearish": 0, "Neutral": 0}
	for _, r := range returns {
		switch {
		case r > q3:
			out.Regimes["Bullish"]++
		case r < q1:
			out.Regimes["Bearish"]++
		default:
			out.Regimes["Neutral"]++
		}
	}

	prices := make([]float64, len(s.prices))
	vols := make([]float64, len(s.prices))
	for i, p := range s.prices {
		prices[i] = p.Price
		vols[i] = p.Vol30
	}
	out.Correlations = map[string]float64{
		"price_volatility_corr": nanToZero(pearson(prices, vols)),
	}
	out.LastUpdated = time.Now().Format(time.RFC3339)

	return out
}

// Seasonality aggregates by calendar month and year over the whole history.
func (s *Service) Seasonality() brent.Seasonality {
	type monthAgg struct{ prices, returns, vols []float64 }
	months := map[int]*monthAgg{}
	type yearAgg struct {
		first, last PricePoint
		prices      []float64
	}
	years := map[int]*yearAgg{}
	yearOrder := []int{}

	for _, p := range s.prices {
		m := int(p.Date.Month())
		ma, ok := months[m]
		if !ok {
			ma = &monthAgg{}
			months[m] = ma
		}
		ma.prices = append(ma.prices, p.Price)
		if !isNaN(p.Returns) {
			ma.returns = append(ma.returns, p.Returns)
		}
		if !isNaN(p.Vol30) {
			ma.vols = append(ma.vols, p.Vol30)
		}

		y := p.Date.Year()
		ya, ok := years[y]
		if !ok {
			ya = &yearAgg{first: p}
			years[y] = ya
			yearOrder = append(yearOrder, y)
		}
		ya.last = p
		ya.prices = append(ya.prices, p.Price)
	}

	var out brent.Seasonality
	bestMonth, worstMonth := 0, 0
	bestPrice, worstPrice := math.Inf(-1), math.Inf(1)
	for m := 1; m <= 12; m++ {
		ma, ok := months[m]
		if !ok {
			continue
		}
		avgPrice := mean(ma.prices)
		out.MonthlyAverages = append(out.MonthlyAverages, brent.MonthlyAverage{
			Month:      m,
			Price:      nanToZero(avgPrice),
			Returns:    nanToZero(mean(ma.returns)),
			Volatility: nanToZero(mean(ma.vols)),
		})
		if avgPrice > bestPrice {
			bestPrice, bestMonth = avgPrice, m
		}
		if avgPrice < worstPrice {
			worstPrice, worstMonth = avgPrice, m
		}
	}

	sort.Ints(yearOrder)
	yearlyReturns := []float64{}
	for _, y := range yearOrder {
		ya := years[y]
		lo, hi := minMax(ya.prices)
		yearly := brent.YearlyPerformance{
			Year:       y,
			PriceStart: ya.first.Price,
			PriceEnd:   ya.last.Price,
			PriceMax:   hi,
			PriceMin:   lo,
		}
		if ya.first.Price > 0 {
			yearly.YearlyReturn = (ya.last.Price - ya.first.Price) / ya.first.Price * 100
		}
		yearlyReturns = append(yearlyReturns, yearly.YearlyReturn)
		out.YearlyPerformance = append(out.YearlyPerformance, yearly)
	}

	out.SeasonalPatterns = brent.SeasonalPatterns{
		BestMonth:       bestMonth,
		WorstMonth:      worstMonth,
		AvgYearlyReturn: nanToZero(mean(yearlyReturns)),
	}

	return out
}

// EventsFiltered applies the category/impact/date filters and enriches each
// event with the price behaviour in a ±30 day window, newest first.
func (s *Service) EventsFiltered(category, minImpact string, start, end time.Time) brent.EventList {
	minLevel, ok := impactOrder[minImpact]
	if !ok {
		minLevel = 1
	}

	categories := map[string]bool{}
	events := []brent.Event{}
	for i, e := range s.events {
		if category != "" && category != "All" && e.Category != category {
			continue
		}
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if !end.IsZero() && e.Date.After(end) {
			continue
		}
		if impactOrder[e.ImpactMagnitude] < minLevel {
			continue
		}
		categories[e.Category] = true

		before, after, vol := s.windowAverages(e.Date, 30)
		change := 0.0
		if before > 0 {
			change = (after - before) / before * 100
		}

		events = append(events, brent.Event{
			ID:              eventID(i),
			Name:            e.Name,
			Date:            e.Date.Format(dateLayout),
			Category:        e.Category,
			ImpactMagnitude: e.ImpactMagnitude,
			Description:     e.Description,
			DurationDays:    e.DurationDays,
			PriceBefore:     round2(before),
			PriceAfter:      round2(after),
			PriceChangePct:  round1(change),
			Volatility:      round2(vol),
			Severity:        impactOrder[e.ImpactMagnitude],
		})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Date > events[j].Date })

	return brent.EventList{
		Data:         events,
		Count:        len(events),
		Categories:   sortedKeys(categories),
		ImpactLevels: ImpactLevels,
	}
}

// EventImpactByName analyzes one event in a ±60 day window. Matching is
// case-insensitive on substring, like the original endpoint.
func (s *Service) EventImpactByName(name string) (brent.EventImpact, bool) {
	var event *Event
	needle := strings.ToLower(name)
	for i := range s.events {
		if strings.Contains(strings.ToLower(s.events[i].Name), needle) {
			event = &s.events[i]
			break
		}
	}
	if event == nil {
		return brent.EventImpact{}, false
	}

	const windowDays = 60
	winStart := event.Date.AddDate(0, 0, -windowDays)
	winEnd := event.Date.AddDate(0, 0, windowDays)

	var pre, post []PricePoint
	for _, p := range s.prices {
		switch {
		case p.Date.Before(winStart) || p.Date.After(winEnd):
		case p.Date.Before(event.Date):
			pre = append(pre, p)
		case p.Date.After(event.Date):
			post = append(post, p)
		}
	}

	preAvg := meanPrices(pre)
	postAvg := meanPrices(post)
	change := 0.0
	if preAvg > 0 {
		change = (postAvg - preAvg) / preAvg * 100
	}
	preVol := meanVols(pre)
	postVol := meanVols(post)

	impact := brent.EventImpact{
		EventInfo: brent.EventInfo{
			Name:            event.Name,
			Date:            event.Date.Format(dateLayout),
			Category:        event.Category,
			ImpactMagnitude: event.ImpactMagnitude,
			Description:     event.Description,
		},
		ImpactAnalysis: brent.ImpactAnalysis{
			PriceBefore:      round2(preAvg),
			PriceAfter:       round2(postAvg),
			PriceChangePct:   round1(change),
			VolatilityBefore: round4(preVol),
			VolatilityAfter:  round4(postVol),
			VolatilityChange: round4(postVol - preVol),
		},
		WindowDays: windowDays,
	}

	if len(pre) > 0 && len(post) > 0 {
		preHi := -math.MaxFloat64
		for _, p := range pre {
			preHi = math.Max(preHi, p.Price)
		}
		postLo := math.MaxFloat64
		for _, p := range post {
			postLo = math.Min(postLo, p.Price)
		}
		impact.ImpactAnalysis.MaxDrawdown = round2(math.Min(postLo-preHi, 0))
	}

	for _, p := range pre {
		impact.TimelineData = append(impact.TimelineData, brent.TimelinePoint{
			Date: p.Date.Format(dateLayout), Price: p.Price, Period: "pre",
		})
	}
	for _, p := range post {
		impact.TimelineData = append(impact.TimelineData, brent.TimelinePoint{
			Date: p.Date.Format(dateLayout), Price: p.Price, Period: "post",
		})
	}

	return impact, true
}

// ChangePointList serves the precomputed artifact when present, otherwise
// falls back to flagging daily moves above 15% as price shocks.
func (s *Service) ChangePointList() brent.ChangePointList {
	points := []brent.ChangePoint{}

	if len(s.changePoints) > 0 {
		for _, cp := range s.changePoints {
			points = append(points, brent.ChangePoint{
				Date:       cp.Date.Format(dateLayout),
				Type:       cp.Type,
				Confidence: cp.Confidence,
			})
		}
	} else {
		for _, p := range s.prices {
			if isNaN(p.Returns) {
				continue
			}
			shock := math.Abs(p.Returns) / 100
			if shock <= 0.15 {
				continue
			}
			confidence := "medium"
			if shock > 0.25 {
				confidence = "high"
			}
			points = append(points, brent.ChangePoint{
				Date:           p.Date.Format(dateLayout),
				Price:          p.Price,
				PriceChangePct: shock * 100,
				Type:           "price_shock",
				Confidence:     confidence,
			})
		}
	}

	yearCount := map[string]int{}
	for _, cp := range points {
		yearCount[cp.Date[:4]]++
	}
	mostCommon := ""
	for year, n := range yearCount {
		if n > yearCount[mostCommon] || (n == yearCount[mostCommon] && year > mostCommon) {
			mostCommon = year
		}
	}

	return brent.ChangePointList{
		Data:  points,
		Count: len(points),
		Analysis: brent.ChangePointAnalysis{
			TotalPoints:    len(points),
			MostCommonYear: mostCommon,
		},
	}
}

func (s *Service) windowAverages(date time.Time, days int) (before, after, vol float64) {
	var pre, post, vols []float64
	winStart := date.AddDate(0, 0, -days)
	winEnd := date.AddDate(0, 0, days)
	for _, p := range s.prices {
		if p.Date.Before(winStart) || p.Date.After(winEnd) {
			continue
		}
		if !isNaN(p.Vol30) {
			vols = append(vols, p.Vol30)
		}
		if p.Date.Before(date) {
			pre = append(pre, p.Price)
		} else if p.Date.After(date) {
			post = append(post, p.Price)
		}
	}
	return nanToZero(mean(pre)), nanToZero(mean(post)), nanToZero(mean(vols))
}

func meanPrices(points []PricePoint) float64 {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return nanToZero(mean(prices))
}

func meanVols(points []PricePoint) float64 {
	vols := []float64{}
	for _, p := range points {
		if !isNaN(p.Vol30) {
			vols = append(vols, p.Vol30)
		}
	}
	return nanToZero(mean(vols))
}

func eventID(i int) string {
	return "event_" + strconv.Itoa(i)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
