package models

import (
	"time"

	"github.com/google/uuid"
)

// Blacklist for JWT refresh tokens, keyed by the token's jti claim.
type RevokedToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TokenID   string    `json:"token_id" db:"token_id"`
	RevokedAt time.Time `json:"revoked_at" db:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

func (RevokedToken) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS revoked_tokens (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		token_id TEXT UNIQUE NOT NULL,
		revoked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_revoked_tokens_token ON revoked_tokens(token_id);`
}
