package retry

import (
	"fmt"
	"time"
)

// Do runs f, retrying up to retries times with a fixed backoff between
// attempts.
func Do(f func() error, retries int, backoff time.Duration) error {
	err := f()
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(backoff)
		err = f()
	}

	if err != nil {
		return fmt.Errorf("retried for %d times: %w", retries, err)
	}
	return nil
}
