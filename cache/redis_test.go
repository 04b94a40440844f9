package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/matryer/is"
)

func TestRedisCacher(t *testing.T) {
	ctx := context.Background()

	t.Run("remember and get use namespaced keys", func(t *testing.T) {
		is := is.New(t)
		db, mock := redismock.NewClientMock()
		c := NewRedisCacher(db, "brent")

		mock.ExpectSet("brent:prices", []byte(`[]`), 5*time.Minute).SetVal("OK")
		is.NoErr(c.Remember(ctx, "prices", []byte(`[]`), 5*time.Minute))

		mock.ExpectGet("brent:prices").SetVal(`[]`)
		v, err := c.Get(ctx, "prices")
		is.NoErr(err)
		is.Equal(v, []byte(`[]`))

		is.NoErr(mock.ExpectationsWereMet())
	})

	t.Run("missing key is ErrNoEntry", func(t *testing.T) {
		is := is.New(t)
		db, mock := redismock.NewClientMock()
		c := NewRedisCacher(db, "brent")

		mock.ExpectGet("brent:absent").RedisNil()
		_, err := c.Get(ctx, "absent")
		is.True(err == ErrNoEntry)
	})

	t.Run("clear deletes only namespace keys", func(t *testing.T) {
		is := is.New(t)
		db, mock := redismock.NewClientMock()
		c := NewRedisCacher(db, "brent")

		mock.ExpectKeys("brent:*").SetVal([]string{"brent:a", "brent:b"})
		mock.ExpectDel("brent:a", "brent:b").SetVal(2)

		is.NoErr(c.Clear(ctx))
		is.NoErr(mock.ExpectationsWereMet())
	})
}
