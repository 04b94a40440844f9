package dataset

import (
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/petrodata/brentdash/errors"
)

// The raw files carry dates in several layouts; we try them in order, like
// the original loader did.
var dateLayouts = []string{"02-Jan-06", "2006-01-02", "01/02/2006"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized date: %q", s)
}

// LoadPrices reads a Date,Price CSV, sorts it by date and computes the
// derived series.
func LoadPrices(path string) ([]PricePoint, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.Newf("price file %s has no data rows", path)
	}

	cols := headerIndex(records[0])
	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.Newf("price file %s has no Date column", path)
	}
	priceCol, ok := cols["price"]
	if !ok {
		return nil, errors.Newf("price file %s has no Price column", path)
	}

	points := make([]PricePoint, 0, len(records)-1)
	for _, row := range records[1:] {
		date, err := parseDate(row[dateCol])
		if err != nil {
			return nil, errors.Wrap(err, "bad date in %s", path)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)
		if err != nil {
			return nil, errors.Wrap(err, "bad price in %s", path)
		}
		points = append(points, PricePoint{Date: date, Price: price})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	computeDerived(points)

	slog.Info("price data loaded", "path", path, "records", len(points))
	return points, nil
}

// LoadEvents reads the event table. A missing file is not an error; the
// built-in table covering the major 1987-2022 shocks is used instead.
func LoadEvents(path string) ([]Event, error) {
	records, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("events file missing, using built-in table", "path", path)
			return DefaultEvents(), nil
		}
		return nil, err
	}
	if len(records) < 2 {
		return DefaultEvents(), nil
	}

	cols := headerIndex(records[0])
	get := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	events := make([]Event, 0, len(records)-1)
	for _, row := range records[1:] {
		date, err := parseDate(get(row, "start_date"))
		if err != nil {
			return nil, errors.Wrap(err, "bad event date in %s", path)
		}
		duration := 30
		if d := get(row, "duration_days"); d != "" {
			if n, err := strconv.Atoi(d); err == nil {
				duration = n
			}
		}
		events = append(events, Event{
			Name:            get(row, "event_name"),
			Date:            date,
			EndDate:         date.AddDate(0, 0, duration),
			Category:        get(row, "category"),
			ImpactMagnitude: get(row, "impact_magnitude"),
			Description:     get(row, "description"),
			DurationDays:    duration,
		})
	}

	slog.Info("events data loaded", "path", path, "events", len(events))
	return events, nil
}

// LoadChangePoints reads the processed change-point artifact. A missing file
// yields an empty slice; the analyzer fallback kicks in at query time.
func LoadChangePoints(path string) ([]ChangePoint, error) {
	records, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	cols := headerIndex(records[0])
	get := func(row []string, name, def string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			return def
		}
		return strings.TrimSpace(row[idx])
	}

	points := make([]ChangePoint, 0, len(records)-1)
	for _, row := range records[1:] {
		date, err := parseDate(get(row, "date", ""))
		if err != nil {
			return nil, errors.Wrap(err, "bad change point date in %s", path)
		}
		points = append(points, ChangePoint{
			Date:       date,
			Type:       get(row, "type", "detected"),
			Confidence: get(row, "confidence", "medium"),
		})
	}

	return points, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse %s", path)
	}
	return records, nil
}

func headerIndex(header []string) map[string]int {
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// DefaultEvents is the fallback table used when no events file is shipped,
// matching the original backend's sample set.
func DefaultEvents() []Event {
	mk := func(name, date, category, impact, description string, duration int) Event {
		d, _ := time.Parse(dateLayout, date)
		return Event{
			Name:            name,
			Date:            d,
			EndDate:         d.AddDate(0, 0, duration),
			Category:        category,
			ImpactMagnitude: impact,
			Description:     description,
			DurationDays:    duration,
		}
	}

	return []Event{
		mk("Gulf War", "1990-08-02", "Geopolitical", "Very High",
			"Iraq invades Kuwait, leading to Gulf War and oil supply disruptions", 210),
		mk("2008 Financial Crisis", "2008-09-15", "Economic", "Very High",
			"Global financial crisis causing massive demand destruction", 180),
		mk("OPEC Price War 2014", "2014-11-27", "OPEC Decision", "High",
			"OPEC maintains production despite oversupply, triggering price collapse", 365),
		mk("COVID-19 Pandemic", "2020-03-11", "Economic", "Very High",
			"Global pandemic causing unprecedented demand drop", 180),
		mk("Russia-Ukraine War", "2022-02-24", "Geopolitical", "Very High",
			"Russian invasion of Ukraine triggering sanctions and supply concerns", 90),
	}
}
