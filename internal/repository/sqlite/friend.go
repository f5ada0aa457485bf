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

var _ repository.FriendRepository = (*DB)(nil)

// FRIENDSHIP MODEL:
// friendships stores each pair once with the smaller user id in user1_id,
// enforced by a CHECK constraint. orderedPair must be used for every
// lookup. Requests keep their history: an answered request stays in
// friend_requests with its final status.

const friendRequestSelect = `SELECT r.id, r.sender_id, s.username, r.receiver_id, u.username,
	r.status, r.created_at, r.responded_at
	FROM friend_requests r
	JOIN users s ON s.id = r.sender_id
	JOIN users u ON u.id = r.receiver_id`

func orderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (db *DB) CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		friends, err := areFriends(ctx, tx, req.SenderID, req.ReceiverID)
		if err != nil {
			return err
		}
		if friends {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "you are already friends"}
		}

		var pending int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM friend_requests
			 WHERE status = 'pending'
			   AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))`,
			req.SenderID, req.ReceiverID, req.ReceiverID, req.SenderID,
		).Scan(&pending)
		if err != nil {
			return fmt.Errorf("sqlite: checking pending friend requests: %w", err)
		}
		if pending > 0 {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "a friend request between you is already pending"}
		}

		req.ID = xid.New().String()
		req.Status = model.FriendRequestPending
		req.CreatedAt = time.Now().UTC()
		req.RespondedAt = nil
		_, err = tx.ExecContext(ctx,
			`INSERT INTO friend_requests (id, sender_id, receiver_id, status, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			req.ID,
			req.SenderID,
			req.ReceiverID,
			string(req.Status),
			req.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: creating friend request: %w", err)
		}

		stored, err := getFriendRequest(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		*req = *stored
		return nil
	})
}

func (db *DB) GetFriendRequest(ctx context.Context, id string) (*model.FriendRequest, error) {
	return getFriendRequest(ctx, db.conn, id)
}

func getFriendRequest(ctx context.Context, q queryer, id string) (*model.FriendRequest, error) {
	r, err := scanFriendRequest(q.QueryRowContext(ctx, friendRequestSelect+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("friend request", id)
		}
		return nil, fmt.Errorf("sqlite: getting friend request %s: %w", id, err)
	}
	return r, nil
}

func (db *DB) ListFriendRequests(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	rows, err := db.conn.QueryContext(ctx,
		friendRequestSelect+` WHERE r.sender_id = ? OR r.receiver_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friend requests of %s: %w", userID, err)
	}
	defer rows.Close()

	requests := []model.FriendRequest{}
	for rows.Next() {
		r, err := scanFriendRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning friend request row: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating friend request rows: %w", err)
	}
	return requests, nil
}

// RespondFriendRequest only moves a request out of pending. Answering it a
// second time is apperror.ErrConflict.
func (db *DB) RespondFriendRequest(ctx context.Context, id string, status model.FriendRequestStatus) (*model.FriendRequest, error) {
	var answered *model.FriendRequest
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		result, err := tx.ExecContext(ctx,
			`UPDATE friend_requests SET status = ?, responded_at = ? WHERE id = ? AND status = 'pending'`,
			string(status), now, id,
		)
		if err != nil {
			return fmt.Errorf("sqlite: answering friend request %s: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}

		req, err := getFriendRequest(ctx, tx, id)
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: fmt.Sprintf("friend request was already %s", req.Status),
			}
		}

		if status == model.FriendRequestAccepted {
			user1, user2 := orderedPair(req.SenderID, req.ReceiverID)
			_, err = tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO friendships (user1_id, user2_id, created_at) VALUES (?, ?, ?)`,
				user1, user2, now,
			)
			if err != nil {
				return fmt.Errorf("sqlite: creating friendship: %w", err)
			}
		}
		answered = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answered, nil
}

func (db *DB) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.profile_info, COALESCE(u.github_id, 0), u.avatar_url,
		        u.password_hash, u.created_at, u.updated_at
		 FROM users u
		 JOIN friendships f
		   ON (f.user1_id = ? AND f.user2_id = u.id) OR (f.user2_id = ? AND f.user1_id = u.id)
		 ORDER BY u.username`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friends of %s: %w", userID, err)
	}
	defer rows.Close()

	friends := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning friend row: %w", err)
		}
		friends = append(friends, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating friend rows: %w", err)
	}
	return friends, nil
}

func (db *DB) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	return areFriends(ctx, db.conn, userID, otherID)
}

func areFriends(ctx context.Context, q queryer, userID, otherID string) (bool, error) {
	user1, user2 := orderedPair(userID, otherID)
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM friendships WHERE user1_id = ? AND user2_id = ?`, user1, user2,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking friendship: %w", err)
	}
	return n > 0, nil
}

func (db *DB) DeleteFriendship(ctx context.Context, userID, otherID string) error {
	user1, user2 := orderedPair(userID, otherID)
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM friendships WHERE user1_id = ? AND user2_id = ?`, user1, user2)
	if err != nil {
		return fmt.Errorf("sqlite: deleting friendship: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("friend", otherID)
	}
	return nil
}

func scanFriendRequest(row rowScanner) (*model.FriendRequest, error) {
	var (
		r         model.FriendRequest
		status    string
		responded sql.NullTime
	)
	err := row.Scan(
		&r.ID,
		&r.SenderID,
		&r.SenderUsername,
		&r.ReceiverID,
		&r.ReceiverUsername,
		&status,
		&r.CreatedAt,
		&responded,
	)
	if err != nil {
		return nil, err
	}
	r.Status = model.FriendRequestStatus(status)
	if responded.Valid {
		t := responded.Time
		r.RespondedAt = &t
	}
	return &r, nil
}
