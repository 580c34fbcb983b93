package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	config "github.com/maheshrc27/social-api/configs"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
	"github.com/maheshrc27/social-api/internal/transfer"
	"github.com/maheshrc27/social-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, reg *transfer.Registration, avatar *multipart.FileHeader) (*models.Account, error)
	Login(ctx context.Context, username, password string) (*transfer.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*transfer.TokenPair, error)
	Logout(ctx context.Context, identity models.Identity) error
	ResolveIdentity(accessToken string) (models.Identity, error)
}

type authService struct {
	cfg      config.Config
	u        repository.AccountRepository
	store    ObjectStore
	cleaner  MediaCleaner
	validate *validator.Validate
}

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// reservedUsernames are fixed path segments under /user and /post that
// would shadow a /:username route.
var reservedUsernames = map[string]struct{}{
	"current":   {},
	"update":    {},
	"follow":    {},
	"unfollow":  {},
	"followers": {},
	"following": {},
	"public":    {},
	"feed":      {},
}

func validUsername(username string) bool {
	if _, reserved := reservedUsernames[username]; reserved {
		return false
	}
	return usernamePattern.MatchString(username)
}

func NewAuthService(cfg config.Config, u repository.AccountRepository, store ObjectStore, cleaner MediaCleaner) AuthService {
	validate := validator.New()
	validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return validUsername(fl.Field().String())
	})

	return &authService{
		cfg:      cfg,
		u:        u,
		store:    store,
		cleaner:  cleaner,
		validate: validate,
	}
}

type registrationInput struct {
	Username  string      `validate:"required,min=3,max=30,username"`
	Email     string      `validate:"required,email"`
	Password  string      `validate:"required,min=8,max=72"`
	Firstname string      `validate:"required,max=50"`
	Lastname  string      `validate:"max=50"`
	Bio       string      `validate:"max=300"`
	Role      models.Role `validate:"oneof=PUBLIC_USER PRIVATE_USER ADMIN"`
}

func (s *authService) normalizeRegistration(reg *transfer.Registration) (*registrationInput, error) {
	if reg == nil {
		return nil, apperr.Validation("Registration data is required")
	}

	in := &registrationInput{
		Username:  normalizeUsername(reg.Username),
		Email:     strings.ToLower(strings.TrimSpace(reg.Email)),
		Password:  reg.Password,
		Firstname: strings.TrimSpace(reg.Firstname),
		Lastname:  strings.TrimSpace(reg.Lastname),
		Bio:       strings.TrimSpace(reg.Bio),
		Role:      models.Role(strings.ToUpper(strings.TrimSpace(reg.Role))),
	}
	if in.Role == "" {
		in.Role = models.RolePublicUser
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, apperr.Validation("Invalid " + strings.ToLower(verrs[0].Field()))
		}
		return nil, apperr.Validation("Invalid registration data")
	}

	if s.cfg.IsAdminUsername(in.Username) {
		in.Role = models.RoleAdmin
	} else if in.Role == models.RoleAdmin {
		return nil, apperr.Validation("Invalid role")
	}
	return in, nil
}

func (s *authService) Register(ctx context.Context, reg *transfer.Registration, avatar *multipart.FileHeader) (*models.Account, error) {
	in, err := s.normalizeRegistration(reg)
	if err != nil {
		return nil, err
	}
	if avatar == nil {
		return nil, apperr.Validation("Profile picture is required")
	}

	_, exists, err := s.u.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, storageError(err, "")
	}
	if exists {
		return nil, apperr.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		slog.Error(err.Error())
		return nil, apperr.Internal("Unable to secure password", err)
	}

	url, key, err := uploadImage(ctx, s.store, "avatars", avatar)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      string(hash),
		Firstname:         in.Firstname,
		Lastname:          in.Lastname,
		Bio:               in.Bio,
		ProfilePicture:    url,
		ProfilePictureKey: key,
		Role:              in.Role,
	}

	if _, err := s.u.Create(ctx, account); err != nil {
		s.cleaner.Cleanup(ctx, key)

		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if strings.Contains(dup.Constraint, "email") {
				return nil, apperr.Conflict("Email already registered")
			}
			return nil, apperr.Conflict("Username already taken")
		}
		return nil, storageError(err, "")
	}

	slog.Info("account registered", "account_id", account.ID, "role", account.Role)
	return account, nil
}

// issueTokens mints a fresh pair and returns the refresh token's expiry.
func (s *authService) issueTokens(account *models.Account) (*transfer.TokenPair, time.Time, error) {
	identity := models.Identity{AccountID: account.ID, Username: account.Username, Role: account.Role}

	accessToken, err := utils.GenerateAccessToken(s.cfg.AccessTokenSecret, identity, s.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, time.Time{}, apperr.Internal("Unable to issue token", err)
	}

	refreshToken, expiresAt, err := utils.GenerateRefreshToken(s.cfg.RefreshTokenSecret, account.ID, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, time.Time{}, apperr.Internal("Unable to issue token", err)
	}

	return &transfer.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, expiresAt, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*transfer.LoginResponse, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	account, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	pair, expiresAt, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}

	// One live session per account: the new refresh token replaces any previous one.
	if err := s.u.SetRefreshToken(ctx, account.ID, pair.RefreshToken, expiresAt); err != nil {
		return nil, storageError(err, "User not found")
	}

	return &transfer.LoginResponse{Account: account, TokenPair: *pair}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*transfer.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Refresh token is required")
	}

	claims, err := utils.ValidateRefreshToken(s.cfg.RefreshTokenSecret, refreshToken)
	if err != nil {
		return nil, apperr.Forbidden("Expired or invalid refresh token")
	}

	account, exists, err := s.u.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists || account.RefreshToken == nil || *account.RefreshToken != refreshToken {
		return nil, apperr.Forbidden("Invalid refresh token")
	}

	pair, expiresAt, err := s.issueTokens(account)
	if err != nil {
		return nil, err
	}

	swapped, err := s.u.RotateRefreshToken(ctx, account.ID, refreshToken, pair.RefreshToken, expiresAt)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !swapped {
		// rotated or revoked by a concurrent request since we read it
		return nil, apperr.Forbidden("Invalid refresh token")
	}

	return pair, nil
}

func (s *authService) Logout(ctx context.Context, identity models.Identity) error {
	if identity.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}
	return storageError(s.u.ClearRefreshToken(ctx, identity.AccountID), "User not found")
}

func (s *authService) ResolveIdentity(accessToken string) (models.Identity, error) {
	if accessToken == "" {
		return models.Identity{}, apperr.Unauthorized("Access denied. No token provided.")
	}

	claims, err := utils.ValidateAccessToken(s.cfg.AccessTokenSecret, accessToken)
	if err != nil {
		return models.Identity{}, apperr.Forbidden("Invalid or expired token.")
	}

	return models.Identity{AccountID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}
