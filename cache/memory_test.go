package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()

	m.Set("foo", []byte("bar"), time.Hour)

	val, found := m.Get("foo")
	assert.True(t, found)
	assert.Equal(t, []byte("bar"), val)

	_, found = m.Get("missing")
	assert.False(t, found)
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()

	m.Set("foo", []byte("one"), time.Hour)
	m.Set("foo", []byte("two"), time.Hour)

	val, found := m.Get("foo")
	assert.True(t, found)
	assert.Equal(t, []byte("two"), val)
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	m.Set("foo", []byte("bar"), time.Minute)

	_, found := m.Get("foo")
	assert.True(t, found, "entry should live until its TTL")

	now = now.Add(61 * time.Second)
	_, found = m.Get("foo")
	assert.False(t, found, "entry should expire after its TTL")
}

func TestEvictIfExpiredKeepsFreshEntries(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	// a writer refreshed the key after a reader saw it expired;
	// eviction must notice and leave the fresh entry alone
	m.Set("foo", []byte("fresh"), time.Hour)
	m.evictIfExpired("foo")

	val, found := m.Get("foo")
	assert.True(t, found)
	assert.Equal(t, []byte("fresh"), val)

	now = now.Add(2 * time.Hour)
	m.evictIfExpired("foo")
	_, found = m.Get("foo")
	assert.False(t, found)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()

	m.Set("a", []byte("1"), time.Hour)
	m.Set("b", []byte("2"), time.Hour)

	m.Delete("a", "b")

	_, found := m.Get("a")
	assert.False(t, found)
	_, found = m.Get("b")
	assert.False(t, found)
}

func TestMemoryDeletePattern(t *testing.T) {
	m := NewMemory()

	m.Set("product_list_", []byte("all"), time.Hour)
	m.Set("product_list_category=1", []byte("filtered"), time.Hour)
	m.Set("product_42", []byte("detail"), time.Hour)
	m.Set("category_list", []byte("categories"), time.Hour)

	m.DeletePattern("product_list_")

	_, found := m.Get("product_list_")
	assert.False(t, found)
	_, found = m.Get("product_list_category=1")
	assert.False(t, found)

	_, found = m.Get("product_42")
	assert.True(t, found, "detail entries must survive list invalidation")
	_, found = m.Get("category_list")
	assert.True(t, found)
}
