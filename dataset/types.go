// Package dataset loads the Brent price history, the geopolitical event
// table and the precomputed change-point artifacts, and derives the
// statistics the API serves. The Bayesian change-point detection itself is
// produced by an external toolchain; this package only serves its output,
// with a simple price-shock fallback when no artifact exists.
package dataset

import (
	"math"
	"time"
)

// PricePoint is one trading day with its derived series. Derived fields are
// NaN until their window has enough history.
type PricePoint struct {
	Date       time.Time
	Price      float64
	Returns    float64 // day-over-day change, percent
	LogReturns float64
	Vol7       float64 // annualized rolling volatility of Returns
	Vol30      float64
	Vol90      float64
	MA7        float64
	MA30       float64
	MA90       float64
}

type Event struct {
	Name            string
	Date            time.Time
	EndDate         time.Time
	Category        string
	ImpactMagnitude string
	Description     string
	DurationDays    int
}

type ChangePoint struct {
	Date           time.Time
	Price          float64
	PriceChangePct float64
	Type           string
	Confidence     string
}

// impactOrder ranks event impact magnitudes for min_impact filtering.
var impactOrder = map[string]int{
	"Low":       1,
	"Medium":    2,
	"High":      3,
	"Very High": 4,
}

// ImpactLevels lists the known magnitudes in ascending order.
var ImpactLevels = []string{"Low", "Medium", "High", "Very High"}

const dateLayout = "2006-01-02"

func isNaN(f float64) bool { return math.IsNaN(f) }

func nanToZero(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
