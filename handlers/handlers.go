package handlers

import (
	"time"

	"texnomart-server/cache"
	"texnomart-server/database"
)

var (
	DB    *database.DB
	Cache cache.Store

	// Now is the clock used for weekday gating, comment windows and
	// created_at stamps. Tests swap it for a fixed time.
	Now func() time.Time = time.Now

	jwtSecret = []byte("your-secret-key-change-in-production")
)

// InitializeHandlers wires the shared database, cache and signing key
// used by all handlers.
func InitializeHandlers(db *database.DB, store cache.Store, secret string) {
	DB = db
	Cache = store
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}
