package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductListKey(t *testing.T) {
	assert.Equal(t, "product_list_", ProductListKey(""))
	assert.Equal(t, "product_list_category=1&price=500000", ProductListKey("category=1&price=500000"))

	// distinct filter combinations must not collide
	assert.NotEqual(t, ProductListKey("category=1"), ProductListKey("category=2"))
}

func TestProductKeyDoesNotMatchListPrefix(t *testing.T) {
	// list invalidation deletes by prefix; detail keys must not be swept up
	assert.False(t, strings.HasPrefix(ProductKey("42"), ProductListPrefix()))
}

func TestProductListKeysShareThePrefix(t *testing.T) {
	for _, q := range []string{"", "category=1", "price=10&category=2", "unknown=x"} {
		assert.True(t, strings.HasPrefix(ProductListKey(q), ProductListPrefix()))
	}
}
