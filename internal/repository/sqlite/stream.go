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

var _ repository.StreamRepository = (*DB)(nil)

// MEMBERSHIP MODEL:
// stream_boards has PRIMARY KEY (stream_id, board_id), so a stream can list
// a board at most once. Inserts use INSERT OR IGNORE, which turns a repeated
// add into a no-op. position keeps boards in the order they were added.
//
// Follower counts are not stored anywhere; see boardSelect.

func (db *DB) CreateStream(ctx context.Context, stream *model.FollowStream) error {
	return createStream(ctx, db.conn, stream)
}

func createStream(ctx context.Context, q queryer, stream *model.FollowStream) error {
	stream.ID = xid.New().String()
	stream.CreatedAt = time.Now().UTC()

	_, err := q.ExecContext(ctx,
		`INSERT INTO follow_streams (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)`,
		stream.ID,
		stream.OwnerID,
		stream.Name,
		stream.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating stream: %w", err)
	}
	return nil
}

func (db *DB) GetStream(ctx context.Context, ownerID, streamID string) (*model.FollowStream, error) {
	return getOwnedStream(ctx, db.conn, ownerID, streamID)
}

// getOwnedStream treats a stream owned by someone else exactly like a
// missing one.
func getOwnedStream(ctx context.Context, q queryer, ownerID, streamID string) (*model.FollowStream, error) {
	var s model.FollowStream
	err := q.QueryRowContext(ctx,
		`SELECT id, owner_id, name, created_at FROM follow_streams WHERE id = ? AND owner_id = ?`,
		streamID, ownerID,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("stream", streamID)
		}
		return nil, fmt.Errorf("sqlite: getting stream %s: %w", streamID, err)
	}
	return &s, nil
}

func (db *DB) ListStreams(ctx context.Context, ownerID string) ([]model.FollowStream, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, owner_id, name, created_at FROM follow_streams
		 WHERE owner_id = ? ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing streams of %s: %w", ownerID, err)
	}
	defer rows.Close()

	streams := []model.FollowStream{}
	for rows.Next() {
		var s model.FollowStream
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning stream row: %w", err)
		}
		streams = append(streams, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stream rows: %w", err)
	}
	return streams, nil
}

func (db *DB) RenameStream(ctx context.Context, ownerID, streamID, name string) (*model.FollowStream, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE follow_streams SET name = ? WHERE id = ? AND owner_id = ?`,
		name, streamID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: renaming stream %s: %w", streamID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("stream", streamID)
	}
	return db.GetStream(ctx, ownerID, streamID)
}

// DeleteStream removes the stream and, through ON DELETE CASCADE, all of
// its membership edges.
func (db *DB) DeleteStream(ctx context.Context, ownerID, streamID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM follow_streams WHERE id = ? AND owner_id = ?`, streamID, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting stream %s: %w", streamID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("stream", streamID)
	}
	return nil
}

func (db *DB) ListStreamBoards(ctx context.Context, ownerID, streamID string) ([]model.Board, error) {
	if _, err := getOwnedStream(ctx, db.conn, ownerID, streamID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		boardSelect+` JOIN stream_boards m ON m.board_id = b.id
		 WHERE m.stream_id = ? ORDER BY m.position`,
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing boards of stream %s: %w", streamID, err)
	}
	return collectBoards(rows)
}

func (db *DB) AddBoardToStream(ctx context.Context, ownerID, streamID, boardID string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getOwnedStream(ctx, tx, ownerID, streamID); err != nil {
			return err
		}
		return addMember(ctx, tx, streamID, boardID)
	})
}

// addMember inserts the edge unless it already exists. The board must exist.
func addMember(ctx context.Context, tx *sql.Tx, streamID, boardID string) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE id = ?`, boardID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking board %s: %w", boardID, err)
	}
	if exists == 0 {
		return apperror.NotFound("board", boardID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO stream_boards (stream_id, board_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM stream_boards WHERE stream_id = ?))`,
		streamID, boardID, streamID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding board %s to stream %s: %w", boardID, streamID, err)
	}
	return nil
}

func (db *DB) RemoveBoardFromStream(ctx context.Context, ownerID, streamID, boardID string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getOwnedStream(ctx, tx, ownerID, streamID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM stream_boards WHERE stream_id = ? AND board_id = ?`, streamID, boardID)
		if err != nil {
			return fmt.Errorf("sqlite: removing board %s from stream %s: %w", boardID, streamID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("stream board", boardID)
		}
		return nil
	})
}

func (db *DB) ListStreamPins(ctx context.Context, ownerID, streamID string, opts repository.ListOptions) ([]model.Pin, error) {
	if _, err := getOwnedStream(ctx, db.conn, ownerID, streamID); err != nil {
		return nil, err
	}

	limit, offset := limitOffset(opts)
	rows, err := db.conn.QueryContext(ctx,
		pinSelect+` JOIN stream_boards m ON m.board_id = p.board_id
		 WHERE m.stream_id = ? ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		streamID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pins of stream %s: %w", streamID, err)
	}
	return collectPins(rows)
}

func (db *DB) FollowBoard(ctx context.Context, ownerID, boardID string, stream *model.FollowStream) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if stream.ID == "" {
			stream.OwnerID = ownerID
			if err := createStream(ctx, tx, stream); err != nil {
				return err
			}
		} else {
			existing, err := getOwnedStream(ctx, tx, ownerID, stream.ID)
			if err != nil {
				return err
			}
			*stream = *existing
		}
		return addMember(ctx, tx, stream.ID, boardID)
	})
}

func (db *DB) UnfollowBoard(ctx context.Context, ownerID, boardID string) (int, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM stream_boards
		 WHERE board_id = ?
		   AND stream_id IN (SELECT id FROM follow_streams WHERE owner_id = ?)`,
		boardID, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: unfollowing board %s: %w", boardID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// FollowStatus reports whether any of userID's streams contains boardID.
func (db *DB) FollowStatus(ctx context.Context, userID, boardID string) (*model.FollowStatus, error) {
	board, err := db.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	var memberships int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stream_boards sb
		 JOIN follow_streams fs ON fs.id = sb.stream_id
		 WHERE sb.board_id = ? AND fs.owner_id = ?`,
		boardID, userID,
	).Scan(&memberships)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading follow status of %s: %w", boardID, err)
	}

	return &model.FollowStatus{
		BoardID:       boardID,
		Following:     memberships > 0,
		FollowerCount: board.FollowerCount,
	}, nil
}
