package models

import "time"

type UnsplashInteraction struct {
	ID         int64           `db:"id" json:"id"`
	AccountID  int64           `db:"account_id" json:"account_id"`
	User       *AccountSummary `db:"-" json:"user,omitempty"`
	UnsplashID string          `db:"unsplash_id" json:"unsplash_id"`
	Comment    string          `db:"comment" json:"comment"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
