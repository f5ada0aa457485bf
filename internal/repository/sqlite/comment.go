package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

var _ repository.CommentRepository = (*DB)(nil)

const commentSelect = `SELECT c.id, c.pin_id, c.author_id, u.username, c.content, c.created_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, pin_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PinID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment on pin %s: %w", comment.PinID, err)
	}

	return db.conn.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ?`, comment.AuthorID,
	).Scan(&comment.AuthorUsername)
}

func (db *DB) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(db.conn.QueryRowContext(ctx, commentSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}
	return c, nil
}

func (db *DB) ListComments(ctx context.Context, pinID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		commentSelect+` WHERE c.pin_id = ? ORDER BY c.created_at, c.id`, pinID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of pin %s: %w", pinID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}
	return comments, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(
		&c.ID,
		&c.PinID,
		&c.AuthorID,
		&c.AuthorUsername,
		&c.Content,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
