package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func testEvents() []Event {
	gulf, _ := time.Parse("2006-01-02", "2020-01-05")
	opec, _ := time.Parse("2006-01-02", "2020-01-08")
	return []Event{
		{
			Name: "Gulf Crisis", Date: gulf, Category: "Geopolitical",
			ImpactMagnitude: "Very High", DurationDays: 30,
		},
		{
			Name: "OPEC Meeting", Date: opec, Category: "OPEC Decision",
			ImpactMagnitude: "Low", DurationDays: 10,
		},
	}
}

func TestFilterPrices(t *testing.T) {
	is := is.New(t)
	svc := NewService(seriesOf(100, 101, 102, 103, 104), nil, nil)

	all := svc.FilterPrices(time.Time{}, time.Time{})
	is.Equal(len(all), 5)

	from := svc.FilterPrices(day(2), time.Time{})
	is.Equal(len(from), 3)
	is.Equal(from[0].Price, 102.0)

	window := svc.FilterPrices(day(1), day(3))
	is.Equal(len(window), 3)
}

func TestSeriesMetrics(t *testing.T) {
	is := is.New(t)
	points := seriesOf(100, 110, 99)

	m := SeriesMetrics(points)
	is.Equal(m.Price.Current, 99.0)
	is.Equal(m.Price.Max, 110.0)
	is.Equal(m.Price.Min, 99.0)
	is.True(almostEqual(m.Price.Median, 100))
	is.Equal(m.Periods.BullMarket, 1)
	is.Equal(m.Periods.BearMarket, 1)
	is.True(almostEqual(m.Returns.AverageDaily, 0))
}

func TestEventsFiltered(t *testing.T) {
	svc := NewService(seriesOf(100, 102, 104, 106, 108, 110, 112, 114, 116, 118), testEvents(), nil)

	t.Run("min impact filter drops low events", func(t *testing.T) {
		is := is.New(t)
		list := svc.EventsFiltered("", "High", time.Time{}, time.Time{})
		is.Equal(list.Count, 1)
		is.Equal(list.Data[0].Name, "Gulf Crisis")
		is.Equal(list.Data[0].Severity, 4)
	})

	t.Run("category filter", func(t *testing.T) {
		is := is.New(t)
		list := svc.EventsFiltered("OPEC Decision", "", time.Time{}, time.Time{})
		is.Equal(list.Count, 1)
		is.Equal(list.Data[0].Name, "OPEC Meeting")
	})

	t.Run("All category matches everything", func(t *testing.T) {
		is := is.New(t)
		list := svc.EventsFiltered("All", "Low", time.Time{}, time.Time{})
		is.Equal(list.Count, 2)
		// newest first
		is.Equal(list.Data[0].Name, "OPEC Meeting")
	})

	t.Run("events are enriched with window prices", func(t *testing.T) {
		is := is.New(t)
		list := svc.EventsFiltered("Geopolitical", "", time.Time{}, time.Time{})
		is.Equal(list.Count, 1)
		e := list.Data[0]
		// rising series: mean after the event is above mean before it
		is.True(e.PriceAfter > e.PriceBefore)
		is.True(e.PriceChangePct > 0)
	})
}

func TestEventImpactByName(t *testing.T) {
	is := is.New(t)
	svc := NewService(seriesOf(100, 102, 104, 106, 108, 110, 112, 114, 116, 118), testEvents(), nil)

	impact, ok := svc.EventImpactByName("gulf")
	is.True(ok) // substring, case-insensitive
	is.Equal(impact.EventInfo.Name, "Gulf Crisis")
	is.Equal(impact.WindowDays, 60)
	is.True(impact.ImpactAnalysis.PriceAfter > impact.ImpactAnalysis.PriceBefore)
	is.True(len(impact.TimelineData) > 0)

	pre, post := 0, 0
	for _, p := range impact.TimelineData {
		switch p.Period {
		case "pre":
			pre++
		case "post":
			post++
		}
	}
	is.Equal(pre, 4)  // days 0..3, event day itself excluded
	is.Equal(post, 5) // days 5..9

	_, ok = svc.EventImpactByName("no such event")
	is.True(!ok)
}

func TestChangePointFallback(t *testing.T) {
	is := is.New(t)
	// one +20% shock and one -30% shock
	svc := NewService(seriesOf(100, 120, 121, 84.7), nil, nil)

	list := svc.ChangePointList()
	is.Equal(list.Count, 2)
	is.Equal(list.Data[0].Type, "price_shock")
	is.Equal(list.Data[0].Confidence, "medium") // 20% move
	is.Equal(list.Data[1].Confidence, "high")   // 30% move
	is.Equal(list.Analysis.TotalPoints, 2)
	is.Equal(list.Analysis.MostCommonYear, "2020")
}

func TestChangePointsPreferLoadedArtifact(t *testing.T) {
	is := is.New(t)
	cps := []ChangePoint{{Date: day(1), Type: "detected", Confidence: "high"}}
	svc := NewService(seriesOf(100, 120, 121), nil, cps)

	list := svc.ChangePointList()
	is.Equal(list.Count, 1)
	is.Equal(list.Data[0].Type, "detected")
}

func TestSeasonality(t *testing.T) {
	is := is.New(t)

	// January flat at 100, February flat at 200
	points := []PricePoint{}
	for i := 0; i < 40; i++ {
		d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		price := 100.0
		if d.Month() == time.February {
			price = 200.0
		}
		points = append(points, PricePoint{Date: d, Price: price})
	}
	computeDerived(points)
	svc := NewService(points, nil, nil)

	seasonality := svc.Seasonality()
	is.Equal(seasonality.SeasonalPatterns.BestMonth, 2)
	is.Equal(seasonality.SeasonalPatterns.WorstMonth, 1)
	is.Equal(len(seasonality.YearlyPerformance), 1)
	is.Equal(seasonality.YearlyPerformance[0].Year, 2020)
	is.True(seasonality.YearlyPerformance[0].YearlyReturn > 0)
}

func TestResampleMonthly(t *testing.T) {
	is := is.New(t)

	points := []PricePoint{}
	for i := 0; i < 62; i++ {
		d := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		points = append(points, PricePoint{Date: d, Price: 100, Returns: math.NaN(), Vol30: math.NaN(), MA7: math.NaN(), MA30: math.NaN(), MA90: math.NaN(), Vol7: math.NaN(), Vol90: math.NaN()})
	}

	monthly := Resample(points, "monthly")
	is.Equal(len(monthly), 3) // Jan, Feb, Mar
	is.Equal(monthly[0].Price, 100.0)
}

func TestResampleWeeklyAcrossYearBoundary(t *testing.T) {
	is := is.New(t)

	// Thu 2020-12-31 and Fri 2021-01-01 share ISO week 53 of 2020;
	// Mon 2021-01-04 opens the next week.
	points := []PricePoint{}
	for _, d := range []time.Time{
		time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
	} {
		points = append(points, PricePoint{Date: d, Price: 100, Returns: math.NaN(), Vol30: math.NaN(), MA7: math.NaN(), MA30: math.NaN(), MA90: math.NaN(), Vol7: math.NaN(), Vol90: math.NaN()})
	}

	weekly := Resample(points, "weekly")
	is.Equal(len(weekly), 2)
	is.Equal(weekly[0].Date, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) // bucket keeps its last trading day
	is.Equal(weekly[1].Date, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC))
}

func TestMetrics(t *testing.T) {
	is := is.New(t)
	svc := NewService(seriesOf(100, 110, 99, 105), testEvents(), nil)

	m := svc.Metrics()
	is.Equal(m.Basic.DataRange.TotalDays, 4)
	is.Equal(m.Basic.ReturnsStatistics.PositiveDays, 2)
	is.Equal(m.Basic.ReturnsStatistics.NegativeDays, 1)
	is.Equal(m.Events.TotalEvents, 2)
	is.Equal(m.Events.EventsByCategory["Geopolitical"], 1)

	total := 0
	for _, n := range m.Regimes {
		total += n
	}
	is.Equal(total, 3) // one regime bucket per non-NaN return
}

func TestExport(t *testing.T) {
	is := is.New(t)
	svc := NewService(seriesOf(100, 110), testEvents(), nil)

	csv, contentType, err := svc.Export("prices", "csv")
	is.NoErr(err)
	is.Equal(contentType, "text/csv")
	is.True(strings.HasPrefix(string(csv), "Date,Price,Returns,Volatility_30d\n"))
	is.True(strings.Contains(string(csv), "2020-01-01,100"))

	blob, contentType, err := svc.Export("events", "json")
	is.NoErr(err)
	is.Equal(contentType, "application/json")
	is.True(strings.Contains(string(blob), `"Gulf Crisis"`))

	_, _, err = svc.Export("volumes", "csv")
	is.True(err != nil)

	_, _, err = svc.Export("prices", "xml")
	is.True(err != nil)
}
