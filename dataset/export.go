package dataset

import (
	"bytes"
	"encoding/csv"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/petrodata/brentdash/errors"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Export renders a dataset ("prices" or "events") as "csv" or "json" for the
// export endpoint. The result is an opaque blob to everything above this.
func (s *Service) Export(dataset, format string) ([]byte, string, error) {
	switch dataset {
	case "prices":
		switch format {
		case "csv":
			return s.pricesCSV(), "text/csv", nil
		case "json":
			return s.pricesJSON()
		}
	case "events":
		switch format {
		case "csv":
			return s.eventsCSV(), "text/csv", nil
		case "json":
			return s.eventsJSON()
		}
	default:
		return nil, "", errors.Newf("invalid dataset %q", dataset)
	}
	return nil, "", errors.Newf("unsupported format %q", format)
}

func (s *Service) pricesCSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Date", "Price", "Returns", "Volatility_30d"})
	for _, p := range s.prices {
		w.Write([]string{
			p.Date.Format(dateLayout),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			floatField(p.Returns),
			floatField(p.Vol30),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func (s *Service) eventsCSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Event_Name", "Start_Date", "Category", "Impact_Magnitude", "Description", "Duration_Days"})
	for _, e := range s.events {
		w.Write([]string{
			e.Name,
			e.Date.Format(dateLayout),
			e.Category,
			e.ImpactMagnitude,
			e.Description,
			strconv.Itoa(e.DurationDays),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func (s *Service) pricesJSON() ([]byte, string, error) {
	bs, err := jsonCodec.Marshal(WirePoints(s.prices))
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot marshal prices export")
	}
	return bs, "application/json", nil
}

func (s *Service) eventsJSON() ([]byte, string, error) {
	type record struct {
		Name            string `json:"name"`
		Date            string `json:"date"`
		Category        string `json:"category"`
		ImpactMagnitude string `json:"impact_magnitude"`
		Description     string `json:"description"`
		DurationDays    int    `json:"duration_days"`
	}
	records := make([]record, 0, len(s.events))
	for _, e := range s.events {
		records = append(records, record{
			Name:            e.Name,
			Date:            e.Date.Format(dateLayout),
			Category:        e.Category,
			ImpactMagnitude: e.ImpactMagnitude,
			Description:     e.Description,
			DurationDays:    e.DurationDays,
		})
	}
	bs, err := jsonCodec.Marshal(records)
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot marshal events export")
	}
	return bs, "application/json", nil
}

func floatField(f float64) string {
	if isNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
