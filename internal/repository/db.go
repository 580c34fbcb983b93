package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrEdgeMissing = errors.New("relationship does not exist")
)

// DuplicateError reports which unique constraint rejected a write.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate value violates " + e.Constraint
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// classify turns driver errors into repository errors where one applies.
// A foreign key violation means a referenced row is gone.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case uniqueViolation:
		return &DuplicateError{Constraint: pqErr.Constraint}
	case foreignKeyViolation:
		return ErrNotFound
	}
	return err
}

// ApplySchema creates missing tables and indexes.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Error(err.Error())
		return err
	}
	return nil
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// touchPost bumps the post's activity timestamp inside tx.
func touchPost(ctx context.Context, tx *sql.Tx, postID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE posts SET updated_at = NOW() WHERE id = $1`, postID)
	if err != nil {
		slog.Info(err.Error())
	}
	return err
}
