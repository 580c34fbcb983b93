package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/social-api/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, bool, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []int64) ([]*models.Comment, error)
	UpdateText(ctx context.Context, comment *models.Comment) error
	Remove(ctx context.Context, id int64) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = `id, post_id, author_id, text, created_at, updated_at`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts the comment and bumps its post in one transaction.
func (r *commentRepository) Create(ctx context.Context, c *models.Comment) (int64, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPost(ctx, tx, c.PostID); err != nil {
			return err
		}

		query := `
			INSERT INTO comments (post_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowContext(ctx, query, c.PostID, c.AuthorID, c.Text).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return classify(err)
		}
		return touchPost(ctx, tx, c.PostID)
	})
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, bool, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = $1", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return c, true, nil
}

func (r *commentRepository) list(ctx context.Context, query string, arg any) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListByPostID returns the newest comments first.
func (r *commentRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return r.list(ctx, "SELECT "+commentColumns+" FROM comments WHERE post_id = $1 ORDER BY created_at DESC, id DESC", postID)
}

// ListByPostIDs returns comments in thread order.
func (r *commentRepository) ListByPostIDs(ctx context.Context, postIDs []int64) ([]*models.Comment, error) {
	if len(postIDs) == 0 {
		return []*models.Comment{}, nil
	}
	return r.list(ctx, "SELECT "+commentColumns+" FROM comments WHERE post_id = ANY($1) ORDER BY id", pq.Array(postIDs))
}

func (r *commentRepository) UpdateText(ctx context.Context, c *models.Comment) error {
	query := `
		UPDATE comments
		SET text = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.Text, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Remove deletes the comment, which detaches it from its post, and bumps the
// post in the same transaction.
func (r *commentRepository) Remove(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var postID int64
		err := tx.QueryRowContext(ctx, `DELETE FROM comments WHERE id = $1 RETURNING post_id`, id).Scan(&postID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			slog.Info(err.Error())
			return err
		}
		return touchPost(ctx, tx, postID)
	})
}
