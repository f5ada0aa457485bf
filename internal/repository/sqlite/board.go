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

var _ repository.BoardRepository = (*DB)(nil)

// boardSelect reads a board together with its derived follower count.
// The count is over distinct stream owners, so one user following a board
// through several streams counts once.
const boardSelect = `SELECT b.id, b.name, b.descriptor, b.owner_id, b.allow_friends_comment, b.created_at,
	(SELECT COUNT(DISTINCT fs.owner_id)
	   FROM stream_boards sb JOIN follow_streams fs ON fs.id = sb.stream_id
	  WHERE sb.board_id = b.id) AS follower_count
	FROM boards b`

func (db *DB) CreateBoard(ctx context.Context, board *model.Board) error {
	board.ID = xid.New().String()
	board.CreatedAt = time.Now().UTC()
	board.FollowerCount = 0

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO boards (id, owner_id, name, descriptor, allow_friends_comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		board.ID,
		board.OwnerID,
		board.Name,
		board.Descriptor,
		board.AllowFriendsComment,
		board.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating board: %w", err)
	}
	return nil
}

func (db *DB) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	return getBoard(ctx, db.conn, id)
}

func getBoard(ctx context.Context, q queryer, id string) (*model.Board, error) {
	b, err := scanBoard(q.QueryRowContext(ctx, boardSelect+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("board", id)
		}
		return nil, fmt.Errorf("sqlite: getting board %s: %w", id, err)
	}
	return b, nil
}

func (db *DB) ListBoardsByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Board, error) {
	limit, offset := limitOffset(opts)
	rows, err := db.conn.QueryContext(ctx,
		boardSelect+` WHERE b.owner_id = ? ORDER BY b.created_at DESC, b.id LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing boards of %s: %w", ownerID, err)
	}
	return collectBoards(rows)
}

func (db *DB) UpdateBoard(ctx context.Context, board *model.Board) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE boards SET name = ?, descriptor = ?, allow_friends_comment = ? WHERE id = ?`,
		board.Name,
		board.Descriptor,
		board.AllowFriendsComment,
		board.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating board %s: %w", board.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("board", board.ID)
	}
	return nil
}

// DeleteBoard relies on ON DELETE CASCADE for pins and stream membership.
// Repin chains rooted on the board move their root to a pin elsewhere first.
func (db *DB) DeleteBoard(ctx context.Context, id string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM pins WHERE board_id = ? AND root_pin_id = id`, id)
		if err != nil {
			return fmt.Errorf("sqlite: listing root pins of board %s: %w", id, err)
		}
		var roots []string
		for rows.Next() {
			var rootID string
			if err := rows.Scan(&rootID); err != nil {
				rows.Close()
				return fmt.Errorf("sqlite: scanning root pin: %w", err)
			}
			roots = append(roots, rootID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("sqlite: iterating root pins: %w", err)
		}

		for _, rootID := range roots {
			if err := promoteRoot(ctx, tx, rootID, `board_id != ?`, id); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting board %s: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("board", id)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(row rowScanner) (*model.Board, error) {
	var b model.Board
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Descriptor,
		&b.OwnerID,
		&b.AllowFriendsComment,
		&b.CreatedAt,
		&b.FollowerCount,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// collectBoards drains and closes rows. It never returns a nil slice, so
// empty lists encode as [] rather than null.
func collectBoards(rows *sql.Rows) ([]model.Board, error) {
	defer rows.Close()

	boards := []model.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning board row: %w", err)
		}
		boards = append(boards, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating board rows: %w", err)
	}
	return boards, nil
}
