package utils

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/transfer"
)

const tokenIssuer = "social-api"

var ErrInvalidToken = errors.New("invalid token")

func registeredClaims(subject string, now time.Time, tokenDuration time.Duration) (jwt.RegisteredClaims, error) {
	// jti keeps two tokens minted in the same second distinct.
	jti, err := GenerateRandomKey(16)
	if err != nil {
		return jwt.RegisteredClaims{}, err
	}
	return jwt.RegisteredClaims{
		ID:        jti,
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
	}, nil
}

func sign(secretKey string, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return signedToken, nil
}

func GenerateAccessToken(secretKey string, identity models.Identity, tokenDuration time.Duration) (string, error) {
	rc, err := registeredClaims(strconv.FormatInt(identity.AccountID, 10), time.Now(), tokenDuration)
	if err != nil {
		return "", err
	}

	return sign(secretKey, transfer.AccessClaims{
		UserID:           identity.AccountID,
		Username:         identity.Username,
		Role:             identity.Role,
		RegisteredClaims: rc,
	})
}

// GenerateRefreshToken returns the signed token together with its expiry.
func GenerateRefreshToken(secretKey string, userID int64, tokenDuration time.Duration) (string, time.Time, error) {
	rc, err := registeredClaims(strconv.FormatInt(userID, 10), time.Now(), tokenDuration)
	if err != nil {
		return "", time.Time{}, err
	}

	signed, err := sign(secretKey, transfer.RefreshClaims{UserID: userID, RegisteredClaims: rc})
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, rc.ExpiresAt.Time, nil
}

func parse(secretKey, tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

func ValidateAccessToken(secretKey, tokenString string) (*transfer.AccessClaims, error) {
	claims := &transfer.AccessClaims{}
	if err := parse(secretKey, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ValidateRefreshToken(secretKey, tokenString string) (*transfer.RefreshClaims, error) {
	claims := &transfer.RefreshClaims{}
	if err := parse(secretKey, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
