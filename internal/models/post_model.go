package models

import "time"

type Post struct {
	ID        int64     `db:"id" json:"id"`
	AuthorID  int64     `db:"author_id" json:"author_id"`
	MediaURL  string    `db:"media_url" json:"media_url"`
	MediaKey  string    `db:"media_key" json:"-"`
	Caption   string    `db:"caption" json:"caption"`
	Likes     []int64   `db:"-" json:"likes"`
	Comments  []int64   `db:"-" json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EnrichedPost is a read-only feed view of a post.
type EnrichedPost struct {
	ID        int64              `json:"id"`
	Author    AccountSummary     `json:"author"`
	MediaURL  string             `json:"media_url"`
	Caption   string             `json:"caption"`
	Likes     []int64            `json:"likes"`
	Comments  []*EnrichedComment `json:"comments"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
