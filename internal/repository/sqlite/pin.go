package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

var _ repository.PinRepository = (*DB)(nil)

// pinSelect reads a pin; likes_count counts likes on the root original.
const pinSelect = `SELECT p.id, p.board_id, p.picture_id, p.image_url, p.title, p.description, p.tags,
	COALESCE(p.origin_pin_id, ''), p.created_at,
	(SELECT COUNT(*) FROM likes l WHERE l.pin_id = p.root_pin_id) AS likes_count
	FROM pins p`

// CreatePin stores a new pin. For a repin (OriginPinID set) the picture and
// root are inherited from the origin; otherwise a new picture ID is minted.
func (db *DB) CreatePin(ctx context.Context, pin *model.Pin) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		pin.ID = xid.New().String()
		pin.CreatedAt = time.Now().UTC()
		rootID := pin.ID

		if pin.OriginPinID != "" {
			var pictureID, imageURL string
			err := tx.QueryRowContext(ctx,
				`SELECT picture_id, image_url, root_pin_id FROM pins WHERE id = ?`, pin.OriginPinID,
			).Scan(&pictureID, &imageURL, &rootID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return apperror.NotFound("pin", pin.OriginPinID)
				}
				return fmt.Errorf("sqlite: reading origin pin %s: %w", pin.OriginPinID, err)
			}
			pin.PictureID = pictureID
			pin.ImageURL = imageURL
		} else if pin.PictureID == "" {
			pin.PictureID = xid.New().String()
		}

		if pin.Tags == nil {
			pin.Tags = []string{}
		}
		tags, err := json.Marshal(pin.Tags)
		if err != nil {
			return fmt.Errorf("sqlite: encoding tags: %w", err)
		}

		var origin any
		if pin.OriginPinID != "" {
			origin = pin.OriginPinID
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO pins (id, board_id, picture_id, image_url, title, description, tags,
			                   origin_pin_id, root_pin_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pin.ID,
			pin.BoardID,
			pin.PictureID,
			pin.ImageURL,
			pin.Title,
			pin.Description,
			string(tags),
			origin,
			rootID,
			pin.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: creating pin: %w", err)
		}

		return tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM likes WHERE pin_id = ?`, rootID,
		).Scan(&pin.LikesCount)
	})
}

func (db *DB) GetPin(ctx context.Context, id string) (*model.Pin, error) {
	p, err := scanPin(db.conn.QueryRowContext(ctx, pinSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("pin", id)
		}
		return nil, fmt.Errorf("sqlite: getting pin %s: %w", id, err)
	}
	return p, nil
}

// ListPinsByBoard returns a board's pins oldest first, the order they were
// pinned in.
func (db *DB) ListPinsByBoard(ctx context.Context, boardID string, opts repository.ListOptions) ([]model.Pin, error) {
	limit, offset := limitOffset(opts)
	rows, err := db.conn.QueryContext(ctx,
		pinSelect+` WHERE p.board_id = ? ORDER BY p.created_at, p.id LIMIT ? OFFSET ?`,
		boardID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pins of board %s: %w", boardID, err)
	}
	return collectPins(rows)
}

func (db *DB) ListAllPins(ctx context.Context) ([]model.Pin, error) {
	rows, err := db.conn.QueryContext(ctx, pinSelect+` ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pins: %w", err)
	}
	return collectPins(rows)
}

// DeletePin removes a pin. When the pin is the root of a repin chain, the
// oldest surviving repin becomes the root and inherits the likes.
func (db *DB) DeletePin(ctx context.Context, id string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		rootID, err := rootPinID(ctx, tx, id)
		if err != nil {
			return err
		}
		if rootID == id {
			if err := promoteRoot(ctx, tx, id, `id != ?`, id); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM pins WHERE id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting pin %s: %w", id, err)
		}
		return nil
	})
}

// promoteRoot hands the root of rootID's chain to the oldest pin in it that
// matches keep, moving the likes along. A chain with no survivor is left as
// is and its likes go with the root.
func promoteRoot(ctx context.Context, q queryer, rootID, keep string, args ...any) error {
	var newRootID string
	err := q.QueryRowContext(ctx,
		`SELECT id FROM pins WHERE root_pin_id = ? AND `+keep+` ORDER BY created_at, id LIMIT 1`,
		append([]any{rootID}, args...)...,
	).Scan(&newRootID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite: finding successor of root pin %s: %w", rootID, err)
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE pins SET root_pin_id = ? WHERE root_pin_id = ?`, newRootID, rootID,
	); err != nil {
		return fmt.Errorf("sqlite: re-rooting pins of %s: %w", rootID, err)
	}
	if _, err := q.ExecContext(ctx,
		`UPDATE likes SET pin_id = ? WHERE pin_id = ?`, newRootID, rootID,
	); err != nil {
		return fmt.Errorf("sqlite: moving likes of %s: %w", rootID, err)
	}
	return nil
}

func (db *DB) LikePin(ctx context.Context, userID, pinID string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		rootID, err := rootPinID(ctx, tx, pinID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO likes (user_id, pin_id, created_at) VALUES (?, ?, ?)`,
			userID, rootID, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: liking pin %s: %w", rootID, err)
		}
		return nil
	})
}

func (db *DB) UnlikePin(ctx context.Context, userID, pinID string) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		rootID, err := rootPinID(ctx, tx, pinID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = ? AND pin_id = ?`, userID, rootID)
		if err != nil {
			return fmt.Errorf("sqlite: unliking pin %s: %w", rootID, err)
		}
		return nil
	})
}

func rootPinID(ctx context.Context, q queryer, pinID string) (string, error) {
	var rootID string
	err := q.QueryRowContext(ctx, `SELECT root_pin_id FROM pins WHERE id = ?`, pinID).Scan(&rootID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.NotFound("pin", pinID)
		}
		return "", fmt.Errorf("sqlite: resolving root of pin %s: %w", pinID, err)
	}
	return rootID, nil
}

func scanPin(row rowScanner) (*model.Pin, error) {
	var (
		p    model.Pin
		tags string
	)
	err := row.Scan(
		&p.ID,
		&p.BoardID,
		&p.PictureID,
		&p.ImageURL,
		&p.Title,
		&p.Description,
		&tags,
		&p.OriginPinID,
		&p.CreatedAt,
		&p.LikesCount,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of pin %s: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func collectPins(rows *sql.Rows) ([]model.Pin, error) {
	defer rows.Close()

	pins := []model.Pin{}
	for rows.Next() {
		p, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning pin row: %w", err)
		}
		pins = append(pins, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating pin rows: %w", err)
	}
	return pins, nil
}
