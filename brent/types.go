package brent

// Wire types for the dashboard API payloads. The api package marshals the
// same shapes on the server side, so the two cannot drift apart.

type Health struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Service      string `json:"service"`
	Version      string `json:"version"`
	DataLoaded   bool   `json:"data_loaded"`
	RecordsCount int    `json:"records_count"`
	EventsCount  int    `json:"events_count"`
	Uptime       string `json:"uptime"`
}

type PricePoint struct {
	Date       string   `json:"date"`
	Price      float64  `json:"price"`
	Returns    float64  `json:"returns"`
	Volatility float64  `json:"volatility"`
	MA7        *float64 `json:"ma_7"`
	MA30       *float64 `json:"ma_30"`
	MA90       *float64 `json:"ma_90"`
}

type PriceMetadata struct {
	Count     int    `json:"count"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Resample  string `json:"resample"`
	Limit     int    `json:"limit"`
}

type PriceStats struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Std     float64 `json:"std"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
}

type ReturnStats struct {
	AverageDaily  float64 `json:"average_daily"`
	Volatility30d float64 `json:"volatility_30d"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
}

type PeriodStats struct {
	BullMarket int `json:"bull_market"`
	BearMarket int `json:"bear_market"`
}

type SeriesMetrics struct {
	Price   PriceStats  `json:"price"`
	Returns ReturnStats `json:"returns"`
	Periods PeriodStats `json:"periods"`
}

type PriceSeries struct {
	Data     []PricePoint  `json:"data"`
	Metadata PriceMetadata `json:"metadata"`
	Metrics  SeriesMetrics `json:"metrics"`
}

type Event struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Date            string  `json:"date"`
	Category        string  `json:"category"`
	ImpactMagnitude string  `json:"impact_magnitude"`
	Description     string  `json:"description"`
	DurationDays    int     `json:"duration_days"`
	PriceBefore     float64 `json:"price_before"`
	PriceAfter      float64 `json:"price_after"`
	PriceChangePct  float64 `json:"price_change_pct"`
	Volatility      float64 `json:"volatility"`
	Severity        int     `json:"severity"`
}

type EventList struct {
	Data         []Event  `json:"data"`
	Count        int      `json:"count"`
	Categories   []string `json:"categories"`
	ImpactLevels []string `json:"impact_levels"`
}

type ChangePoint struct {
	Date           string  `json:"date"`
	Price          float64 `json:"price,omitempty"`
	PriceChangePct float64 `json:"price_change_pct,omitempty"`
	Type           string  `json:"type"`
	Confidence     string  `json:"confidence"`
}

type ChangePointAnalysis struct {
	TotalPoints    int    `json:"total_points"`
	MostCommonYear string `json:"most_common_year"`
}

type ChangePointList struct {
	Data     []ChangePoint       `json:"data"`
	Count    int                 `json:"count"`
	Analysis ChangePointAnalysis `json:"analysis"`
}

type DataRange struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	TotalDays  int     `json:"total_days"`
	TotalYears float64 `json:"total_years"`
}

type ReturnsStatistics struct {
	AvgDailyReturn     float64 `json:"avg_daily_return"`
	AvgDailyVolatility float64 `json:"avg_daily_volatility"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	PositiveDays       int     `json:"positive_days"`
	NegativeDays       int     `json:"negative_days"`
	MaxGain            float64 `json:"max_gain"`
	MaxLoss            float64 `json:"max_loss"`
}

type BasicMetrics struct {
	DataRange         DataRange         `json:"data_range"`
	PriceStatistics   PriceStats        `json:"price_statistics"`
	ReturnsStatistics ReturnsStatistics `json:"returns_statistics"`
}

type EventMetrics struct {
	TotalEvents      int            `json:"total_events"`
	EventsByCategory map[string]int `json:"events_by_category"`
	EventsByImpact   map[string]int `json:"events_by_impact"`
}

type Metrics struct {
	Basic        BasicMetrics       `json:"basic"`
	Events       EventMetrics       `json:"events"`
	Regimes      map[string]int     `json:"regimes"`
	Correlations map[string]float64 `json:"correlations"`
	LastUpdated  string             `json:"last_updated"`
}

type MonthlyAverage struct {
	Month      int     `json:"month"`
	Price      float64 `json:"price"`
	Returns    float64 `json:"returns"`
	Volatility float64 `json:"volatility"`
}

type YearlyPerformance struct {
	Year         int     `json:"year"`
	PriceStart   float64 `json:"price_start"`
	PriceEnd     float64 `json:"price_end"`
	PriceMax     float64 `json:"price_max"`
	PriceMin     float64 `json:"price_min"`
	YearlyReturn float64 `json:"yearly_return"`
}

type SeasonalPatterns struct {
	BestMonth       int     `json:"best_month"`
	WorstMonth      int     `json:"worst_month"`
	AvgYearlyReturn float64 `json:"avg_yearly_return"`
}

type Seasonality struct {
	MonthlyAverages   []MonthlyAverage    `json:"monthly_averages"`
	YearlyPerformance []YearlyPerformance `json:"yearly_performance"`
	SeasonalPatterns  SeasonalPatterns    `json:"seasonal_patterns"`
}

type EventInfo struct {
	Name            string `json:"name"`
	Date            string `json:"date"`
	Category        string `json:"category"`
	ImpactMagnitude string `json:"impact_magnitude"`
	Description     string `json:"description"`
}

type ImpactAnalysis struct {
	PriceBefore      float64 `json:"price_before"`
	PriceAfter       float64 `json:"price_after"`
	PriceChangePct   float64 `json:"price_change_pct"`
	VolatilityBefore float64 `json:"volatility_before"`
	VolatilityAfter  float64 `json:"volatility_after"`
	VolatilityChange float64 `json:"volatility_change"`
	MaxDrawdown      float64 `json:"max_drawdown"`
}

type TimelinePoint struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Period string  `json:"period"`
}

type EventImpact struct {
	EventInfo      EventInfo       `json:"event_info"`
	ImpactAnalysis ImpactAnalysis  `json:"impact_analysis"`
	TimelineData   []TimelinePoint `json:"timeline_data"`
	WindowDays     int             `json:"window_days"`
}

type TimeRange struct {
	Min          string `json:"min"`
	Max          string `json:"max"`
	DefaultStart string `json:"default_start"`
	DefaultEnd   string `json:"default_end"`
}

type DashboardInfo struct {
	Title       string    `json:"title"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	TimeRange   TimeRange `json:"time_range"`
}

type DashboardConfig struct {
	Dashboard DashboardInfo   `json:"dashboard"`
	Features  map[string]bool `json:"features"`
	Charts    ChartConfig     `json:"charts"`
}

type ChartConfig struct {
	DefaultChartType string   `json:"default_chart_type"`
	AvailableTypes   []string `json:"available_types"`
	ColorSchemes     []string `json:"color_schemes"`
	AnimationEnabled bool     `json:"animation_enabled"`
}
