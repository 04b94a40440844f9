package cache

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	_ "github.com/mattn/go-sqlite3"
)

func newTestSqlCacher(t *testing.T, namespace string) Cacher {
	t.Helper()
	is := is.New(t)

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "cache.db"))
	is.NoErr(err)
	t.Cleanup(func() { db.Close() })

	c, err := NewSqlCacher(context.Background(), db, "sqlite3", namespace)
	is.NoErr(err)
	return c
}

func TestSqlCacher(t *testing.T) {
	ctx := context.Background()

	t.Run("byte payloads round-trip untouched", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		body := []byte(`{"success":true,"data":{"n":1}}`)
		is.NoErr(c.Remember(ctx, "k", body, time.Minute))

		v, err := c.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, body)
	})

	t.Run("string payloads round-trip untouched", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		is.NoErr(c.Remember(ctx, "k", `{"a":1}`, time.Minute))

		v, err := c.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, `{"a":1}`)
	})

	t.Run("other values come back json-decoded", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		is.NoErr(c.Remember(ctx, "k", map[string]any{"n": 1}, time.Minute))

		v, err := c.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, map[string]any{"n": float64(1)})
	})

	t.Run("missing key is ErrNoEntry", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		_, err := c.Get(ctx, "absent")
		is.True(err == ErrNoEntry)
	})

	t.Run("entry older than ttl is ErrEntryExpired and deleted", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		is.NoErr(c.Remember(ctx, "k", []byte("v"), time.Nanosecond))
		time.Sleep(time.Millisecond)

		_, err := c.Get(ctx, "k")
		is.True(err == ErrEntryExpired)

		// the row was deleted, a second read sees no entry at all
		_, err = c.Get(ctx, "k")
		is.True(err == ErrNoEntry)
	})

	t.Run("remember replaces an existing entry", func(t *testing.T) {
		is := is.New(t)
		c := newTestSqlCacher(t, "responses")

		is.NoErr(c.Remember(ctx, "k", []byte("old"), time.Minute))
		is.NoErr(c.Remember(ctx, "k", []byte("new"), time.Minute))

		v, err := c.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, []byte("new"))
	})

	t.Run("clear only touches its own namespace", func(t *testing.T) {
		is := is.New(t)

		db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "cache.db"))
		is.NoErr(err)
		t.Cleanup(func() { db.Close() })

		responses, err := NewSqlCacher(ctx, db, "sqlite3", "responses")
		is.NoErr(err)
		sessions, err := NewSqlCacher(ctx, db, "sqlite3", "sessions")
		is.NoErr(err)

		is.NoErr(responses.Remember(ctx, "k", []byte("r"), time.Minute))
		is.NoErr(sessions.Remember(ctx, "k", []byte("s"), time.Minute))

		is.NoErr(responses.Clear(ctx))

		_, err = responses.Get(ctx, "k")
		is.True(err == ErrNoEntry)

		v, err := sessions.Get(ctx, "k")
		is.NoErr(err)
		is.Equal(v, []byte("s"))
	})
}
