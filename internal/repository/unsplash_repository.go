package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/social-api/internal/models"
)

type UnsplashRepository interface {
	Create(ctx context.Context, interaction *models.UnsplashInteraction) (int64, error)
	ListByAccountAndUnsplashID(ctx context.Context, accountID int64, unsplashID string) ([]*models.UnsplashInteraction, error)
	ListByUnsplashID(ctx context.Context, unsplashID string) ([]*models.UnsplashInteraction, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*models.UnsplashInteraction, error)
}

type unsplashRepository struct {
	db *sql.DB
}

func NewUnsplashRepository(db *sql.DB) UnsplashRepository {
	return &unsplashRepository{db: db}
}

func (r *unsplashRepository) Create(ctx context.Context, i *models.UnsplashInteraction) (int64, error) {
	query := `
		INSERT INTO unsplash_interactions (account_id, unsplash_id, comment)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, i.AccountID, i.UnsplashID, i.Comment).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, classify(err)
	}
	return i.ID, nil
}

func (r *unsplashRepository) list(ctx context.Context, query string, args ...any) ([]*models.UnsplashInteraction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	interactions := []*models.UnsplashInteraction{}
	for rows.Next() {
		var i models.UnsplashInteraction
		if err := rows.Scan(&i.ID, &i.AccountID, &i.UnsplashID, &i.Comment, &i.CreatedAt, &i.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		interactions = append(interactions, &i)
	}
	return interactions, rows.Err()
}

const interactionColumns = `id, account_id, unsplash_id, comment, created_at, updated_at`

func (r *unsplashRepository) ListByAccountAndUnsplashID(ctx context.Context, accountID int64, unsplashID string) ([]*models.UnsplashInteraction, error) {
	query := "SELECT " + interactionColumns + " FROM unsplash_interactions WHERE account_id = $1 AND unsplash_id = $2 ORDER BY id"
	return r.list(ctx, query, accountID, unsplashID)
}

func (r *unsplashRepository) ListByUnsplashID(ctx context.Context, unsplashID string) ([]*models.UnsplashInteraction, error) {
	query := "SELECT " + interactionColumns + " FROM unsplash_interactions WHERE unsplash_id = $1 ORDER BY id"
	return r.list(ctx, query, unsplashID)
}

func (r *unsplashRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.UnsplashInteraction, error) {
	query := "SELECT " + interactionColumns + " FROM unsplash_interactions WHERE account_id = $1 ORDER BY id"
	return r.list(ctx, query, accountID)
}
