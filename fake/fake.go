// Package fake generates plausible market fixtures for tests.
package fake

import (
	"github.com/brianvoe/gofakeit/v7"
)

var categories = []string{"Geopolitical", "Economic", "OPEC Decision", "Natural Disaster"}

var magnitudes = []string{"Low", "Medium", "High", "Very High"}

func Price() float64 {
	return gofakeit.Float64Range(20, 120)
}

// RandomWalk produces n positive prices starting at start, with daily moves
// up to ±3%.
func RandomWalk(n int, start float64) []float64 {
	prices := make([]float64, n)
	price := start
	for i := 0; i < n; i++ {
		price *= 1 + gofakeit.Float64Range(-0.03, 0.03)
		if price < 1 {
			price = 1
		}
		prices[i] = price
	}
	return prices
}

func EventName() string {
	return gofakeit.Country() + " " + gofakeit.Word() + " crisis"
}

func Category() string {
	return gofakeit.RandomString(categories)
}

func ImpactMagnitude() string {
	return gofakeit.RandomString(magnitudes)
}

func Description() string {
	return gofakeit.Sentence(8)
}
