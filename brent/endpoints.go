package brent

import (
	"context"
	"encoding/json"
	"strconv"
)

// PriceFilter narrows the /prices query. Zero values are omitted.
type PriceFilter struct {
	StartDate string
	EndDate   string
	Limit     int
	Resample  string // daily, weekly, monthly
}

func (f PriceFilter) params() map[string]string {
	p := map[string]string{}
	if f.StartDate != "" {
		p["start_date"] = f.StartDate
	}
	if f.EndDate != "" {
		p["end_date"] = f.EndDate
	}
	if f.Limit > 0 {
		p["limit"] = strconv.Itoa(f.Limit)
	}
	if f.Resample != "" {
		p["resample"] = f.Resample
	}
	return p
}

// EventFilter narrows the /events query.
type EventFilter struct {
	Category  string
	MinImpact string // Low, Medium, High, Very High
	StartDate string
	EndDate   string
}

func (f EventFilter) params() map[string]string {
	p := map[string]string{}
	if f.Category != "" {
		p["category"] = f.Category
	}
	if f.MinImpact != "" {
		p["min_impact"] = f.MinImpact
	}
	if f.StartDate != "" {
		p["start_date"] = f.StartDate
	}
	if f.EndDate != "" {
		p["end_date"] = f.EndDate
	}
	return p
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	return getAs[Health](ctx, c, "/health", nil)
}

func (c *Client) Prices(ctx context.Context, filter PriceFilter) (*PriceSeries, error) {
	return getAs[PriceSeries](ctx, c, "/prices", filter.params())
}

func (c *Client) Events(ctx context.Context, filter EventFilter) (*EventList, error) {
	return getAs[EventList](ctx, c, "/events", filter.params())
}

func (c *Client) ChangePoints(ctx context.Context) (*ChangePointList, error) {
	return getAs[ChangePointList](ctx, c, "/change-points", nil)
}

func (c *Client) Metrics(ctx context.Context) (*Metrics, error) {
	return getAs[Metrics](ctx, c, "/metrics", nil)
}

func (c *Client) Seasonality(ctx context.Context) (*Seasonality, error) {
	return getAs[Seasonality](ctx, c, "/analysis/seasonality", nil)
}

func (c *Client) EventImpact(ctx context.Context, name string) (*EventImpact, error) {
	if name == "" {
		return nil, &Error{Kind: KindUnknown, Message: "event name must not be empty"}
	}
	return getAs[EventImpact](ctx, c, "/analysis/event-impact/"+name, nil)
}

func (c *Client) DashboardConfig(ctx context.Context) (*DashboardConfig, error) {
	return getAs[DashboardConfig](ctx, c, "/config", nil)
}

func getAs[T any](ctx context.Context, c *Client, endpoint string, params map[string]string) (*T, error) {
	payload, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeAs[T](endpoint, payload)
}

func decodeAs[T any](endpoint string, payload json.RawMessage) (*T, error) {
	var v T
	if err := jsonCodec.Unmarshal(payload, &v); err != nil {
		return nil, &Error{
			Kind:    KindUnknown,
			Message: "cannot decode " + endpoint + " payload: " + err.Error(),
			Raw:     payload,
		}
	}
	return &v, nil
}
