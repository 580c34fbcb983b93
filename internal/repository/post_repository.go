package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/social-api/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, bool, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []int64) ([]*models.Post, error)
	ListByAuthorRole(ctx context.Context, role models.Role) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	UpdateCaption(ctx context.Context, id int64, caption string) error
	Like(ctx context.Context, postID, accountID int64) error
	Unlike(ctx context.Context, postID, accountID int64) error
	Remove(ctx context.Context, id int64) (string, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `p.id, p.author_id, p.media_url, p.media_key, p.caption, p.created_at, p.updated_at`

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.AuthorID, &post.MediaURL, &post.MediaKey, &post.Caption, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.Likes = []int64{}
	post.Comments = []int64{}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (author_id, media_url, media_key, caption)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.MediaURL, post.MediaKey, post.Caption).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return 0, classify(err)
	}
	post.Likes = []int64{}
	post.Comments = []int64{}
	return post.ID, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, bool, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.id = $1", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	if err := r.attachRelations(ctx, []*models.Post{post}); err != nil {
		return nil, false, err
	}
	return post, true, nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts p WHERE p.author_id = $1 ORDER BY p.updated_at DESC, p.id DESC"
	return r.list(ctx, query, authorID)
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []int64) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	query := "SELECT " + postColumns + " FROM posts p WHERE p.author_id = ANY($1) ORDER BY p.updated_at DESC, p.id DESC"
	return r.list(ctx, query, pq.Array(authorIDs))
}

func (r *postRepository) ListByAuthorRole(ctx context.Context, role models.Role) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts p
		JOIN accounts a ON a.id = p.author_id
		WHERE a.role = $1
		ORDER BY p.updated_at DESC, p.id DESC`
	return r.list(ctx, query, role)
}

// attachRelations loads like and comment ids for posts in two batched queries.
func (r *postRepository) attachRelations(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	likes, err := r.db.QueryContext(ctx, `SELECT post_id, account_id FROM post_likes WHERE post_id = ANY($1) ORDER BY created_at, account_id`, pq.Array(ids))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer likes.Close()
	for likes.Next() {
		var postID, accountID int64
		if err := likes.Scan(&postID, &accountID); err != nil {
			return err
		}
		byID[postID].Likes = append(byID[postID].Likes, accountID)
	}
	if err := likes.Err(); err != nil {
		return err
	}

	comments, err := r.db.QueryContext(ctx, `SELECT post_id, id FROM comments WHERE post_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer comments.Close()
	for comments.Next() {
		var postID, commentID int64
		if err := comments.Scan(&postID, &commentID); err != nil {
			return err
		}
		byID[postID].Comments = append(byID[postID].Comments, commentID)
	}
	return comments.Err()
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *postRepository) UpdateCaption(ctx context.Context, id int64, caption string) error {
	query := `
		UPDATE posts
		SET caption = $1,
			updated_at = NOW()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, caption, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func lockPost(ctx context.Context, tx *sql.Tx, postID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Like(ctx context.Context, postID, accountID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		query := `
			INSERT INTO post_likes (post_id, account_id)
			VALUES ($1, $2)
			ON CONFLICT (post_id, account_id) DO NOTHING
		`
		res, err := tx.ExecContext(ctx, query, postID, accountID)
		if err != nil {
			slog.Info(err.Error())
			return classify(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrDuplicate
		}
		return touchPost(ctx, tx, postID)
	})
}

// Unlike is a no-op when the like is absent.
func (r *postRepository) Unlike(ctx context.Context, postID, accountID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND account_id = $2`, postID, accountID)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return nil
		}
		return touchPost(ctx, tx, postID)
	})
}

// Remove deletes the post with its comments and likes and returns its media key.
func (r *postRepository) Remove(ctx context.Context, id int64) (string, error) {
	var mediaKey string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT media_key FROM posts WHERE id = $1 FOR UPDATE`, id).Scan(&mediaKey)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			slog.Info(err.Error())
			return err
		}

		for _, query := range []string{
			`DELETE FROM comments WHERE post_id = $1`,
			`DELETE FROM post_likes WHERE post_id = $1`,
			`DELETE FROM posts WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				slog.Info(err.Error())
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return mediaKey, nil
}
