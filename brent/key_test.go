package brent

import (
	"testing"

	"github.com/matryer/is"
)

func TestCacheKey(t *testing.T) {
	is := is.New(t)

	t.Run("order independent", func(t *testing.T) {
		is := is.New(t)
		a := CacheKey("/events", map[string]string{"a": "1", "b": "2"})
		b := CacheKey("/events", map[string]string{"b": "2", "a": "1"})
		is.Equal(a, b)
	})

	t.Run("different params differ", func(t *testing.T) {
		is := is.New(t)
		a := CacheKey("/events", map[string]string{"category": "Geopolitical"})
		b := CacheKey("/events", map[string]string{"category": "Economic"})
		is.True(a != b)
	})

	t.Run("different endpoints differ", func(t *testing.T) {
		is := is.New(t)
		is.True(CacheKey("/events", nil) != CacheKey("/prices", nil))
	})

	is.Equal(CacheKey("/health", nil), "/health")
	is.Equal(CacheKey("/health", map[string]string{}), "/health")
}
