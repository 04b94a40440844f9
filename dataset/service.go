package dataset

import (
	"path/filepath"
	"time"

	"github.com/petrodata/brentdash/errors"
)

// Service holds the loaded series in memory and answers every analytical
// query the API exposes.
type Service struct {
	prices       []PricePoint
	events       []Event
	changePoints []ChangePoint
	loadedAt     time.Time
}

// Load reads the raw and processed artifacts from the data directory laid
// out like the original project: raw/BrentOilPrices.csv,
// raw/events_1987_2022.csv, processed/change_points.csv.
func Load(dataDir string) (*Service, error) {
	prices, err := LoadPrices(filepath.Join(dataDir, "raw", "BrentOilPrices.csv"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load price data")
	}

	events, err := LoadEvents(filepath.Join(dataDir, "raw", "events_1987_2022.csv"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load events data")
	}

	changePoints, err := LoadChangePoints(filepath.Join(dataDir, "processed", "change_points.csv"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load change points")
	}

	return NewService(prices, events, changePoints), nil
}

// NewService wraps already-loaded series. prices must be sorted by date with
// derived fields computed (LoadPrices does both).
func NewService(prices []PricePoint, events []Event, changePoints []ChangePoint) *Service {
	return &Service{
		prices:       prices,
		events:       events,
		changePoints: changePoints,
		loadedAt:     time.Now(),
	}
}

func (s *Service) PriceCount() int { return len(s.prices) }
func (s *Service) EventCount() int { return len(s.events) }

func (s *Service) Prices() []PricePoint { return s.prices }
func (s *Service) EventTable() []Event  { return s.events }

func (s *Service) LoadedAt() time.Time { return s.loadedAt }

// DateRange returns the first and last trading day.
func (s *Service) DateRange() (time.Time, time.Time) {
	if len(s.prices) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.prices[0].Date, s.prices[len(s.prices)-1].Date
}
