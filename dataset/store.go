package dataset

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petrodata/brentdash/errors"
)

// Store persists the loaded series in a relational database so the server
// does not have to re-parse the CSVs on every boot.
type Store struct {
	db *gorm.DB
}

type priceRecord struct {
	ID    uint      `gorm:"primaryKey"`
	Date  time.Time `gorm:"uniqueIndex"`
	Price float64
}

func (priceRecord) TableName() string { return "prices" }

type eventRecord struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"uniqueIndex"`
	Date            time.Time
	Category        string `gorm:"index"`
	ImpactMagnitude string
	Description     string
	DurationDays    int
}

func (eventRecord) TableName() string { return "events" }

func NewSQLiteStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot open sqlite store")
	}

	if err := db.AutoMigrate(&priceRecord{}, &eventRecord{}); err != nil {
		return nil, errors.Wrap(err, "cannot migrate dataset store")
	}

	return &Store{db: db}, nil
}

// Replace swaps the stored series for the given ones in one transaction.
func (st *Store) Replace(prices []PricePoint, events []Event) error {
	return st.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&priceRecord{}).Error; err != nil {
			return errors.Wrap(err, "cannot clear prices")
		}
		if err := tx.Where("1 = 1").Delete(&eventRecord{}).Error; err != nil {
			return errors.Wrap(err, "cannot clear events")
		}

		records := make([]priceRecord, 0, len(prices))
		for _, p := range prices {
			records = append(records, priceRecord{Date: p.Date, Price: p.Price})
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 500).Error; err != nil {
				return errors.Wrap(err, "cannot insert prices")
			}
		}

		eventRecords := make([]eventRecord, 0, len(events))
		for _, e := range events {
			eventRecords = append(eventRecords, eventRecord{
				Name:            e.Name,
				Date:            e.Date,
				Category:        e.Category,
				ImpactMagnitude: e.ImpactMagnitude,
				Description:     e.Description,
				DurationDays:    e.DurationDays,
			})
		}
		if len(eventRecords) > 0 {
			if err := tx.CreateInBatches(eventRecords, 500).Error; err != nil {
				return errors.Wrap(err, "cannot insert events")
			}
		}

		return nil
	})
}

// LoadService rebuilds an in-memory Service from the stored series, with
// derived fields recomputed.
func (st *Store) LoadService() (*Service, error) {
	var priceRecords []priceRecord
	if err := st.db.Order("date asc").Find(&priceRecords).Error; err != nil {
		return nil, errors.Wrap(err, "cannot read prices")
	}

	prices := make([]PricePoint, 0, len(priceRecords))
	for _, r := range priceRecords {
		prices = append(prices, PricePoint{Date: r.Date, Price: r.Price})
	}
	computeDerived(prices)

	var eventRecords []eventRecord
	if err := st.db.Order("date asc").Find(&eventRecords).Error; err != nil {
		return nil, errors.Wrap(err, "cannot read events")
	}

	events := make([]Event, 0, len(eventRecords))
	for _, r := range eventRecords {
		events = append(events, Event{
			Name:            r.Name,
			Date:            r.Date,
			EndDate:         r.Date.AddDate(0, 0, r.DurationDays),
			Category:        r.Category,
			ImpactMagnitude: r.ImpactMagnitude,
			Description:     r.Description,
			DurationDays:    r.DurationDays,
		})
	}

	return NewService(prices, events, nil), nil
}

// PricesBetween reads a date-bounded window straight from the database.
func (st *Store) PricesBetween(start, end time.Time) ([]PricePoint, error) {
	q := st.db.Order("date asc")
	if !start.IsZero() {
		q = q.Where("date >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where("date <= ?", end)
	}

	var records []priceRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "cannot query prices")
	}

	points := make([]PricePoint, 0, len(records))
	for _, r := range records {
		points = append(points, PricePoint{Date: r.Date, Price: r.Price})
	}
	return points, nil
}
