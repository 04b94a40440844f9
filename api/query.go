package api

import (
	"net/url"
	"strconv"
	"time"

	"github.com/petrodata/brentdash/errors"
)

const dateLayout = "2006-01-02"

// priceQuery binds /api/prices query parameters.
type priceQuery struct {
	Start    time.Time
	End      time.Time
	Limit    int
	Resample string
}

func (q *priceQuery) BindQuery(values url.Values) error {
	var err error
	if q.Start, err = parseDate(values.Get("start_date")); err != nil {
		return err
	}
	if q.End, err = parseDate(values.Get("end_date")); err != nil {
		return err
	}

	if raw := values.Get("limit"); raw != "" {
		q.Limit, err = strconv.Atoi(raw)
		if err != nil || q.Limit < 0 {
			return errors.Newf("invalid limit %q", raw)
		}
	}

	switch q.Resample = values.Get("resample"); q.Resample {
	case "", "daily", "weekly", "monthly":
	default:
		return errors.Newf("invalid resample %q", q.Resample)
	}
	return nil
}

// eventQuery binds /api/events query parameters.
type eventQuery struct {
	Category  string
	MinImpact string
	Start     time.Time
	End       time.Time
}

func (q *eventQuery) BindQuery(values url.Values) error {
	q.Category = values.Get("category")
	q.MinImpact = values.Get("min_impact")
	if q.MinImpact == "" {
		q.MinImpact = "Medium"
	}

	var err error
	if q.Start, err = parseDate(values.Get("start_date")); err != nil {
		return err
	}
	if q.End, err = parseDate(values.Get("end_date")); err != nil {
		return err
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.Newf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}
