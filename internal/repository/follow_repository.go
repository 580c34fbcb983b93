package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/lib/pq"
	"github.com/maheshrc27/social-api/internal/models"
)

// FollowRepository stores follow edges. One row is one edge, so an account's
// following set and the target's followers set can never disagree.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID int64) error
	Unfollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	ListFollowers(ctx context.Context, accountID int64) ([]models.AccountSummary, error)
	ListFollowing(ctx context.Context, accountID int64) ([]models.AccountSummary, error)
	FollowingIDs(ctx context.Context, accountID int64) ([]int64, error)
	Counts(ctx context.Context, accountID int64) (followers int, following int, err error)
}

type followRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) FollowRepository {
	return &followRepository{db: db}
}

// lockPair row-locks both accounts in id order so that concurrent edge
// mutations touching the same pair run one after the other.
func lockPair(ctx context.Context, tx *sql.Tx, a, b int64) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array([]int64{a, b}))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		locked++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != 2 {
		return ErrNotFound
	}
	return nil
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPair(ctx, tx, followerID, followingID); err != nil {
			return err
		}

		query := `
			INSERT INTO follows (follower_id, following_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, following_id) DO NOTHING
		`
		res, err := tx.ExecContext(ctx, query, followerID, followingID)
		if err != nil {
			slog.Info(err.Error())
			return classify(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDuplicate
		}
		return nil
	})
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPair(ctx, tx, followerID, followingID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEdgeMissing
		}
		return nil
	})
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	query := "SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, followerID, followingID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *followRepository) listSummaries(ctx context.Context, query string, accountID int64) ([]models.AccountSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	summaries := []models.AccountSummary{}
	for rows.Next() {
		var s models.AccountSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *followRepository) ListFollowers(ctx context.Context, accountID int64) ([]models.AccountSummary, error) {
	query := `
		SELECT a.id, a.username, a.profile_picture
		FROM follows f
		JOIN accounts a ON a.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.id
	`
	return r.listSummaries(ctx, query, accountID)
}

func (r *followRepository) ListFollowing(ctx context.Context, accountID int64) ([]models.AccountSummary, error) {
	query := `
		SELECT a.id, a.username, a.profile_picture
		FROM follows f
		JOIN accounts a ON a.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.id
	`
	return r.listSummaries(ctx, query, accountID)
}

func (r *followRepository) FollowingIDs(ctx context.Context, accountID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT following_id FROM follows WHERE follower_id = $1 ORDER BY id`, accountID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *followRepository) Counts(ctx context.Context, accountID int64) (int, int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`
	var followers, following int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&followers, &following); err != nil {
		slog.Info(err.Error())
		return 0, 0, err
	}
	return followers, following, nil
}
