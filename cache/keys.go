package cache

import "time"

// DefaultTTL applies to every list/detail response entry.
const DefaultTTL = 3600 * time.Second

// Cache keys live in one place so they don't drift across handlers.
const (
	CategoryListKey   = "category_list"
	productListPrefix = "product_list_"
	productPrefix     = "product_"
)

// ProductListKey builds the key for a filtered product list. The raw
// query string is part of the key so distinct filter combinations get
// distinct entries.
func ProductListKey(rawQuery string) string { return productListPrefix + rawQuery }

// ProductListPrefix is the pattern shared by all product list entries.
func ProductListPrefix() string { return productListPrefix }

// ProductKey builds the key for a single product response.
func ProductKey(id string) string { return productPrefix + id }
