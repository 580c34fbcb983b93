package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/social-api/internal/models"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Account, bool, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, bool, error)
	Create(ctx context.Context, account *models.Account) (int64, error)
	UpdateProfile(ctx context.Context, account *models.Account) error
	SetRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, id int64, oldToken, newToken string, expiresAt time.Time) (bool, error)
	ClearRefreshToken(ctx context.Context, id int64) error
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context) ([]*models.Account, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]models.AccountSummary, error)
	Remove(ctx context.Context, id int64) ([]string, error)
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, firstname, lastname, bio,
	profile_picture, profile_picture_key, role, refresh_token, refresh_token_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var token sql.NullString
	var expiresAt sql.NullTime
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Firstname, &a.Lastname, &a.Bio,
		&a.ProfilePicture, &a.ProfilePictureKey, &a.Role, &token, &expiresAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if token.Valid {
		a.RefreshToken = &token.String
	}
	if expiresAt.Valid {
		a.RefreshTokenExpiresAt = &expiresAt.Time
	}
	return &a, nil
}

func (r *accountRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, bool, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return account, true, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*models.Account, bool, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, bool, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE username = $1", username)
}

func (r *accountRepository) Create(ctx context.Context, a *models.Account) (int64, error) {
	query := `
		INSERT INTO accounts (username, email, password_hash, firstname, lastname, bio, profile_picture, profile_picture_key, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.Username,
		a.Email,
		a.PasswordHash,
		a.Firstname,
		a.Lastname,
		a.Bio,
		a.ProfilePicture,
		a.ProfilePictureKey,
		a.Role,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, classify(err)
	}
	return a.ID, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, a *models.Account) error {
	query := `
		UPDATE accounts
		SET firstname = $1,
			lastname = $2,
			bio = $3,
			profile_picture = $4,
			profile_picture_key = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, a.Firstname, a.Lastname, a.Bio, a.ProfilePicture, a.ProfilePictureKey, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetRefreshToken overwrites whatever session the account held.
func (r *accountRepository) SetRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	query := `UPDATE accounts SET refresh_token = $1, refresh_token_expires_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, token, expiresAt, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken swaps oldToken for newToken only if oldToken is still the stored one.
func (r *accountRepository) RotateRefreshToken(ctx context.Context, id int64, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET refresh_token = $1,
			refresh_token_expires_at = $2
		WHERE id = $3 AND refresh_token = $4
	`
	res, err := r.db.ExecContext(ctx, query, newToken, expiresAt, id, oldToken)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n == 1, nil
}

func (r *accountRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	query := `UPDATE accounts SET refresh_token = NULL, refresh_token_expires_at = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *accountRepository) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token IS NOT NULL AND refresh_token_expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountRepository) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) Summaries(ctx context.Context, ids []int64) (map[int64]models.AccountSummary, error) {
	summaries := make(map[int64]models.AccountSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	query := `SELECT id, username, profile_picture FROM accounts WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.AccountSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		summaries[s.ID] = s
	}
	return summaries, rows.Err()
}

// Remove deletes the account and everything it owns in one transaction and
// returns the object-store keys that are no longer referenced.
func (r *accountRepository) Remove(ctx context.Context, id int64) ([]string, error) {
	var keys []string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var avatarKey string
		err := tx.QueryRowContext(ctx, `SELECT profile_picture_key FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&avatarKey)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			slog.Info(err.Error())
			return err
		}
		if avatarKey != "" {
			keys = append(keys, avatarKey)
		}

		rows, err := tx.QueryContext(ctx, `SELECT media_key FROM posts WHERE author_id = $1 AND media_key <> ''`, id)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				rows.Close()
				return err
			}
			keys = append(keys, key)
		}
		rows.Close()

		// follows, posts, likes, comments and interactions go with the account via ON DELETE CASCADE.
		_, err = tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			slog.Info(err.Error())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
