package transfer

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/social-api/internal/models"
)

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens; the subject is the account id.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}
