package models

import (
	"time"

	"github.com/google/uuid"
)

// UserID is nil for anonymous comments. CreatedAt is stamped once at
// insert time and never updated.
type Comment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Body        string     `json:"body" db:"body"`
	Rating      int        `json:"rating" db:"rating"`
	UserID      *uuid.UUID `json:"user_id" db:"user_id"`
	ProductID   uuid.UUID  `json:"product_id" db:"product_id"`
	GoodComment *string    `json:"good_comment" db:"good_comment"`
	BadComment  *string    `json:"bad_comment" db:"bad_comment"`
	FileURL     *string    `json:"file_url" db:"file_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (Comment) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		body TEXT NOT NULL,
		rating SMALLINT NOT NULL CHECK (rating >= 1 AND rating <= 5),
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		good_comment TEXT,
		bad_comment TEXT,
		file_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_comments_product ON comments(product_id);
	CREATE INDEX IF NOT EXISTS idx_comments_created ON comments(created_at);`
}
