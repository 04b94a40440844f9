package brent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/petrodata/brentdash/objectstore"
)

// ExportBlob downloads a dataset export ("prices" or "events") in the given
// format ("csv" or "json"). Exports are not idempotent-cacheable artifacts,
// so this always bypasses the cache and returns the opaque body.
func (c *Client) ExportBlob(ctx context.Context, dataset string, format string) ([]byte, error) {
	if dataset == "" {
		return nil, &Error{Kind: KindUnknown, Message: "dataset must not be empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := "/export/" + dataset
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(endpoint, map[string]string{"format": format}), nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: err.Error()}
	}

	for _, intercept := range c.interceptors {
		if err := intercept(req); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: "request interceptor failed: " + err.Error()}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := transportError(err)
		c.fail(endpoint, apiErr)
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(err)
		c.fail(endpoint, apiErr)
		return nil, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, serverMessage(body), body)
		c.fail(endpoint, apiErr)
		return nil, apiErr
	}

	return body, nil
}

// ArchiveExport downloads an export and stores it in the object store under
// a unique name, returning that name. Archived exports expire after ttl.
func (c *Client) ArchiveExport(ctx context.Context, store objectstore.Store, dataset string, format string, ttl time.Duration) (string, error) {
	blob, err := c.ExportBlob(ctx, dataset, format)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s.%s", dataset, time.Now().UTC().Format("20060102"), uuid.NewString(), format)
	if err := store.Store(ctx, name, blob, time.Now().Add(ttl)); err != nil {
		return "", err
	}

	c.logger.Info("export archived", "dataset", dataset, "format", format, "object", name, "size", len(blob))
	return name, nil
}
