package models

import "time"

type Role string

const (
	RolePublicUser  Role = "PUBLIC_USER"
	RolePrivateUser Role = "PRIVATE_USER"
	RoleAdmin       Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RolePublicUser, RolePrivateUser, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID                    int64      `db:"id" json:"id"`
	Username              string     `db:"username" json:"username"`
	Email                 string     `db:"email" json:"email"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	Firstname             string     `db:"firstname" json:"firstname"`
	Lastname              string     `db:"lastname" json:"lastname"`
	Bio                   string     `db:"bio" json:"bio"`
	ProfilePicture        string     `db:"profile_picture" json:"profile_picture"`
	ProfilePictureKey     string     `db:"profile_picture_key" json:"-"`
	Role                  Role       `db:"role" json:"role"`
	RefreshToken          *string    `db:"refresh_token" json:"-"`
	RefreshTokenExpiresAt *time.Time `db:"refresh_token_expires_at" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// AccountSummary is the lightweight author/edge view of an account.
type AccountSummary struct {
	ID             int64  `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	ProfilePicture string `db:"profile_picture" json:"profile_picture"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Username: a.Username, ProfilePicture: a.ProfilePicture}
}
