package cache

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMemoryCacher(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns what remember stored", func(t *testing.T) {
		is := is.New(t)
		c := NewMemoryCacher()

		is.NoErr(c.Remember(ctx, "k", []byte(`{"a":1}`), time.Minute))

		v, err := c.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, []byte(`{"a":1}`))
	})

	t.Run("missing key is ErrNoEntry", func(t *testing.T) {
		is := is.New(t)
		c := NewMemoryCacher()

		_, err := c.Get(ctx, "absent")
		is.True(err == ErrNoEntry)
	})

	t.Run("entry older than ttl is ErrEntryExpired and deleted", func(t *testing.T) {
		is := is.New(t)
		c := NewMemoryCacher()

		is.NoErr(c.Remember(ctx, "k", "v", time.Nanosecond))
		time.Sleep(time.Millisecond)

		_, err := c.Get(ctx, "k")
		is.True(err == ErrEntryExpired)

		// entry was physically removed, a second read sees no entry at all
		_, err = c.Get(ctx, "k")
		is.True(err == ErrNoEntry)
	})

	t.Run("clear removes every entry", func(t *testing.T) {
		is := is.New(t)
		c := NewMemoryCacher()

		is.NoErr(c.Remember(ctx, "a", 1, time.Minute))
		is.NoErr(c.Remember(ctx, "b", 2, time.Minute))
		is.NoErr(c.Clear(ctx))

		_, err := c.Get(ctx, "a")
		is.True(err == ErrNoEntry)
		_, err = c.Get(ctx, "b")
		is.True(err == ErrNoEntry)
	})
}
