package models

import (
	"time"

	"github.com/google/uuid"
)

// One durable opaque token per user; login returns the existing row
// when one is already present.
type UserToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}

func (UserToken) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS user_tokens (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT UNIQUE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_user_tokens_token ON user_tokens(token);`
}
