package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxTags              = 20
	MaxTagLength         = 50
)

// PinIndexer is the part of the search index the pin service keeps current.
// *search.PinIndex satisfies it.
type PinIndexer interface {
	Index(pin model.Pin) error
	Delete(pinID string) error
	Search(ctx context.Context, text string, limit int) ([]string, error)
}

// PinService creates, repins, likes and searches pins.
//
// The search index is derived data. Index failures are logged and never
// fail the request; the next restart rebuilds the index from the database.
type PinService struct {
	pins   repository.PinRepository
	boards repository.BoardRepository
	index  PinIndexer
	logger *slog.Logger
}

func NewPinService(pins repository.PinRepository, boards repository.BoardRepository, index PinIndexer, logger *slog.Logger) *PinService {
	return &PinService{
		pins:   pins,
		boards: boards,
		index:  index,
		logger: logger,
	}
}

// PinInput carries the fields of a new pin.
type PinInput struct {
	BoardID     string
	ImageURL    string
	Title       string
	Description string
	Tags        []string
}

// Create pins an image to one of the caller's boards.
func (s *PinService) Create(ctx context.Context, callerID string, in PinInput) (*model.Pin, error) {
	if strings.TrimSpace(in.ImageURL) == "" {
		return nil, apperror.ValidationFailed("image_url", "image URL is required")
	}
	title, desc, tags, err := cleanPinText(in.Title, in.Description, in.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkBoardOwner(ctx, callerID, in.BoardID); err != nil {
		return nil, err
	}

	pin := &model.Pin{
		BoardID:     in.BoardID,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Title:       title,
		Description: desc,
		Tags:        tags,
	}
	if err := s.pins.CreatePin(ctx, pin); err != nil {
		return nil, fmt.Errorf("creating pin: %w", err)
	}

	s.indexPin(*pin)
	s.logger.Info("pin created",
		slog.String("id", pin.ID),
		slog.String("board", pin.BoardID),
	)
	return pin, nil
}

// RepinInput describes copying an existing pin into one of the caller's
// boards. Empty text fields inherit from the origin.
type RepinInput struct {
	OriginPinID string
	BoardID     string
	Title       string
	Description string
	Tags        []string
}

// Repin copies a pin into the caller's board. The new pin shares the
// origin's picture and, through the root, its like count.
func (s *PinService) Repin(ctx context.Context, callerID string, in RepinInput) (*model.Pin, error) {
	origin, err := s.Get(ctx, in.OriginPinID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBoardOwner(ctx, callerID, in.BoardID); err != nil {
		return nil, err
	}

	title, desc, tags := in.Title, in.Description, in.Tags
	if strings.TrimSpace(title) == "" {
		title = origin.Title
	}
	if strings.TrimSpace(desc) == "" {
		desc = origin.Description
	}
	if tags == nil {
		tags = origin.Tags
	}
	title, desc, tags, err = cleanPinText(title, desc, tags)
	if err != nil {
		return nil, err
	}

	pin := &model.Pin{
		BoardID:     in.BoardID,
		Title:       title,
		Description: desc,
		Tags:        tags,
		OriginPinID: origin.ID,
	}
	if err := s.pins.CreatePin(ctx, pin); err != nil {
		return nil, fmt.Errorf("repinning %s: %w", origin.ID, err)
	}

	s.indexPin(*pin)
	s.logger.Info("pin repinned",
		slog.String("id", pin.ID),
		slog.String("origin", origin.ID),
		slog.String("board", pin.BoardID),
	)
	return pin, nil
}

func (s *PinService) Get(ctx context.Context, id string) (*model.Pin, error) {
	if id = strings.TrimSpace(id); id == "" {
		return nil, apperror.ValidationFailed("pin_id", "pin ID is required")
	}
	return s.pins.GetPin(ctx, id)
}

// Delete removes a pin. Only the owner of the pin's board may delete it.
// Repins of the pin keep their picture.
func (s *PinService) Delete(ctx context.Context, callerID, id string) error {
	pin, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkBoardOwner(ctx, callerID, pin.BoardID); err != nil {
		return err
	}
	if err := s.pins.DeletePin(ctx, id); err != nil {
		return err
	}

	if err := s.index.Delete(id); err != nil {
		s.logger.Warn("failed to remove pin from search index",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	s.logger.Info("pin deleted", slog.String("id", id))
	return nil
}

// Like records the caller's like on the pin's root original and returns
// the refreshed pin. Liking twice is a no-op.
func (s *PinService) Like(ctx context.Context, userID, pinID string) (*model.Pin, error) {
	if _, err := s.Get(ctx, pinID); err != nil {
		return nil, err
	}
	if err := s.pins.LikePin(ctx, userID, pinID); err != nil {
		return nil, fmt.Errorf("liking pin %s: %w", pinID, err)
	}
	return s.pins.GetPin(ctx, pinID)
}

// Unlike is the inverse of Like and is idempotent too.
func (s *PinService) Unlike(ctx context.Context, userID, pinID string) (*model.Pin, error) {
	if _, err := s.Get(ctx, pinID); err != nil {
		return nil, err
	}
	if err := s.pins.UnlikePin(ctx, userID, pinID); err != nil {
		return nil, fmt.Errorf("unliking pin %s: %w", pinID, err)
	}
	return s.pins.GetPin(ctx, pinID)
}

// Search runs a full-text query and loads the matching pins in rank order.
// Hits whose pin disappeared since indexing are skipped.
func (s *PinService) Search(ctx context.Context, text string, limit int) ([]model.Pin, error) {
	ids, err := s.index.Search(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("searching pins: %w", err)
	}

	pins := make([]model.Pin, 0, len(ids))
	for _, id := range ids {
		pin, err := s.pins.GetPin(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, err
		}
		pins = append(pins, *pin)
	}
	return pins, nil
}

func (s *PinService) checkBoardOwner(ctx context.Context, callerID, boardID string) error {
	if boardID = strings.TrimSpace(boardID); boardID == "" {
		return apperror.ValidationFailed("board_id", "board ID is required")
	}
	board, err := s.boards.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if board.OwnerID != callerID {
		return apperror.Forbidden("only the board owner can change its pins")
	}
	return nil
}

func (s *PinService) indexPin(pin model.Pin) {
	if err := s.index.Index(pin); err != nil {
		s.logger.Warn("failed to index pin",
			slog.String("id", pin.ID),
			slog.String("error", err.Error()),
		)
	}
}

func cleanPinText(title, desc string, tags []string) (string, string, []string, error) {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)

	if len(title) > MaxTitleLength {
		return "", "", nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(desc) > MaxDescriptionLength {
		return "", "", nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	if len(tags) > MaxTags {
		return "", "", nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}

	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		if len(tag) > MaxTagLength {
			return "", "", nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagLength))
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	return title, desc, cleaned, nil
}
