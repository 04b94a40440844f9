package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/petrodata/brentdash/brent"
	"github.com/petrodata/brentdash/dataset"
	"github.com/petrodata/brentdash/errors"
	"github.com/petrodata/brentdash/httpserver"
	"github.com/petrodata/brentdash/lock"
)

func (s *Server) health(r *http.Request) httpserver.Response {
	svc := s.service()
	return ok(brent.Health{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Service:      "brentdash-api",
		Version:      Version,
		DataLoaded:   svc.PriceCount() > 0,
		RecordsCount: svc.PriceCount(),
		EventsCount:  svc.EventCount(),
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
	}, "")
}

func (s *Server) prices(req httpserver.Request[priceQuery]) httpserver.Response {
	q := req.Binding
	svc := s.service()

	points := svc.FilterPrices(q.Start, q.End)
	if q.Resample == "weekly" || q.Resample == "monthly" {
		points = dataset.Resample(points, q.Resample)
	}
	if q.Limit > 0 && len(points) > q.Limit {
		points = points[len(points)-q.Limit:]
	}

	series := brent.PriceSeries{
		Data:    dataset.WirePoints(points),
		Metrics: dataset.SeriesMetrics(points),
		Metadata: brent.PriceMetadata{
			Count:    len(points),
			Resample: q.Resample,
			Limit:    q.Limit,
		},
	}
	if len(points) > 0 {
		series.Metadata.StartDate = series.Data[0].Date
		series.Metadata.EndDate = series.Data[len(series.Data)-1].Date
	}

	return ok(series, fmt.Sprintf("%d price records", len(points)))
}

func (s *Server) events(req httpserver.Request[eventQuery]) httpserver.Response {
	q := req.Binding
	list := s.service().EventsFiltered(q.Category, q.MinImpact, q.Start, q.End)
	return ok(list, fmt.Sprintf("%d events", list.Count))
}

func (s *Server) changePoints(r *http.Request) httpserver.Response {
	return ok(s.service().ChangePointList(), "")
}

func (s *Server) metrics(r *http.Request) httpserver.Response {
	return ok(s.service().Metrics(), "")
}

func (s *Server) seasonality(r *http.Request) httpserver.Response {
	return ok(s.service().Seasonality(), "")
}

func (s *Server) eventImpact(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	impact, found := s.service().EventImpactByName(name)
	if !found {
		writeResponse(w, fail(http.StatusNotFound, fmt.Sprintf("no event matching %q", name)))
		return
	}
	writeResponse(w, ok(impact, ""))
}

func (s *Server) dashboardConfig(r *http.Request) httpserver.Response {
	svc := s.service()
	first, last := svc.DateRange()

	cfg := brent.DashboardConfig{
		Dashboard: brent.DashboardInfo{
			Title:       "Brent Oil Price Analysis Dashboard",
			Version:     Version,
			Description: "Interactive dashboard for Brent crude price history and event impact analysis",
			TimeRange: brent.TimeRange{
				Min:          first.Format(dateLayout),
				Max:          last.Format(dateLayout),
				DefaultStart: last.AddDate(-2, 0, 0).Format(dateLayout),
				DefaultEnd:   last.Format(dateLayout),
			},
		},
		Features: map[string]bool{
			"price_charts":  true,
			"event_overlay": true,
			"change_points": true,
			"seasonality":   true,
			"event_impact":  true,
			"data_export":   true,
		},
		Charts: brent.ChartConfig{
			DefaultChartType: "line",
			AvailableTypes:   []string{"line", "candlestick", "area"},
			ColorSchemes:     []string{"default", "dark", "colorblind"},
			AnimationEnabled: true,
		},
	}
	return ok(cfg, "")
}

// export streams the raw blob, outside the response envelope, so the file a
// browser saves is exactly the dataset.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("dataset")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	blob, contentType, err := s.service().Export(name, format)
	if err != nil {
		writeResponse(w, fail(http.StatusBadRequest, err.Error()))
		return
	}

	filename := fmt.Sprintf("brent_%s_%s.%s", name, time.Now().UTC().Format(dateLayout), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(blob)
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	svc, err := s.Reload(r.Context(), "api request")
	if errors.Is(err, lock.ErrHeld) {
		writeResponse(w, fail(http.StatusConflict, "a reload is already running"))
		return
	}
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		writeResponse(w, fail(http.StatusInternalServerError, "cannot reload dataset"))
		return
	}

	writeResponse(w, ok(map[string]any{
		"price_records": svc.PriceCount(),
		"event_records": svc.EventCount(),
		"loaded_at":     svc.LoadedAt().UTC().Format(time.RFC3339),
	}, "dataset reloaded"))
}
