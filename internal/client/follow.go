package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

type FollowState int

const (
	Unfollowed FollowState = iota
	ModalOpen
	Following
)

func (s FollowState) String() string {
	switch s {
	case Unfollowed:
		return "unfollowed"
	case ModalOpen:
		return "modal_open"
	case Following:
		return "following"
	default:
		return fmt.Sprintf("FollowState(%d)", int(s))
	}
}

// Tab is the page of the follow modal: pick an existing stream or name a
// new one.
type Tab int

const (
	TabExisting Tab = iota
	TabNew
)

// Labels shown while a request is in flight.
const (
	PendingLoading     = "Loading..."
	PendingAdding      = "Adding..."
	PendingCreating    = "Creating..."
	PendingUnfollowing = "Unfollowing..."
)

var (
	// ErrBusy is returned when an action starts while another is pending.
	ErrBusy = errors.New("another action is in progress")
	// ErrInvalidTransition is returned when an action does not apply to the
	// current state, such as Unfollow on a board that is not followed.
	ErrInvalidTransition = errors.New("invalid follow transition")
)

// FollowAPI is the remote surface a FollowFlow needs. *Streams implements it.
type FollowAPI interface {
	FollowStatus(ctx context.Context, boardID string) (*model.FollowStatus, error)
	ListStreams(ctx context.Context) ([]model.FollowStream, error)
	CreateStream(ctx context.Context, name string) (*model.FollowStream, error)
	AddBoardToStream(ctx context.Context, streamID, boardID string) error
	DeleteStream(ctx context.Context, streamID string) error
	UnfollowBoard(ctx context.Context, boardID string) (*model.FollowStatus, error)
}

// FollowSnapshot is what a view renders.
type FollowSnapshot struct {
	BoardID       string
	State         FollowState
	Tab           Tab
	FollowerCount int
	Streams       []model.FollowStream
	Pending       string
	Error         string
}

// FollowFlow drives following and unfollowing one board. State only changes
// after the server confirms a call; a failed call leaves it as it was and
// sets Error.
type FollowFlow struct {
	api     FollowAPI
	boardID string
	logger  *slog.Logger

	mu      sync.Mutex
	state   FollowState
	tab     Tab
	count   int
	streams []model.FollowStream
	pending string
	errMsg  string

	unsubscribe func()
}

// NewFollowFlow creates a flow for boardID. When store is not nil the flow
// follows changes made by other flows and repositories sharing it.
func NewFollowFlow(api FollowAPI, store *Store, boardID string, logger *slog.Logger) *FollowFlow {
	f := &FollowFlow{
		api:     api,
		boardID: boardID,
		logger:  logger.With(slog.String("board_id", boardID)),
	}
	if store != nil {
		f.unsubscribe = store.Subscribe(f.observe)
	}
	return f
}

// Close detaches the flow from its store.
func (f *FollowFlow) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

func (f *FollowFlow) Snapshot() FollowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FollowSnapshot{
		BoardID:       f.boardID,
		State:         f.state,
		Tab:           f.tab,
		FollowerCount: f.count,
		Streams:       slices.Clone(f.streams),
		Pending:       f.pending,
		Error:         f.errMsg,
	}
}

// Load reads the board's follow status from the server.
func (f *FollowFlow) Load(ctx context.Context) error {
	if err := f.begin(PendingLoading, Unfollowed, Following); err != nil {
		return err
	}
	status, err := f.api.FollowStatus(ctx, f.boardID)
	f.finish(func() {
		if err != nil {
			f.errMsg = Message(err)
			return
		}
		f.count = status.FollowerCount
		if status.Following {
			f.state = Following
		} else {
			f.state = Unfollowed
		}
	})
	return err
}

// Open shows the follow modal. With no streams the New tab is selected,
// since the Existing tab would be empty.
func (f *FollowFlow) Open(ctx context.Context) error {
	if err := f.begin(PendingLoading, Unfollowed); err != nil {
		return err
	}
	streams, err := f.api.ListStreams(ctx)
	f.finish(func() {
		if err != nil {
			f.errMsg = "Failed to load your follow streams. Please try again."
			return
		}
		f.state = ModalOpen
		f.streams = streams
		f.tab = TabExisting
		if len(streams) == 0 {
			f.tab = TabNew
		}
	})
	return err
}

func (f *FollowFlow) SelectTab(tab Tab) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != ModalOpen {
		return f.invalid("select tab")
	}
	f.tab = tab
	f.errMsg = ""
	return nil
}

// ConfirmExisting adds the board to a stream the caller already owns.
func (f *FollowFlow) ConfirmExisting(ctx context.Context, streamID string) error {
	if strings.TrimSpace(streamID) == "" {
		return f.reject(apperror.ValidationFailed("stream_id", "Please select a stream"))
	}
	if err := f.begin(PendingAdding, ModalOpen); err != nil {
		return err
	}
	err := f.api.AddBoardToStream(ctx, streamID, f.boardID)
	f.finish(func() {
		if err != nil {
			f.errMsg = failureMessage(err, "Failed to add board to stream. Please try again.")
			return
		}
		f.followed()
	})
	return err
}

// ConfirmNew creates a stream named name and adds the board to it. If the
// add fails the new stream is deleted again.
func (f *FollowFlow) ConfirmNew(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return f.reject(apperror.ValidationFailed("stream_name", "Please enter a stream name"))
	}
	if err := f.begin(PendingCreating, ModalOpen); err != nil {
		return err
	}

	stream, err := f.api.CreateStream(ctx, name)
	if err != nil {
		f.finish(func() {
			f.errMsg = failureMessage(err, "Failed to create follow stream. Please try again.")
		})
		return err
	}

	if err = f.api.AddBoardToStream(ctx, stream.ID, f.boardID); err != nil {
		if delErr := f.api.DeleteStream(context.WithoutCancel(ctx), stream.ID); delErr != nil {
			f.logger.Error("failed to remove stream after add failed",
				slog.String("stream_id", stream.ID),
				slog.String("error", delErr.Error()))
		}
		f.finish(func() {
			f.errMsg = failureMessage(err, "Failed to add board to stream. Please try again.")
		})
		return err
	}

	f.finish(f.followed)
	return nil
}

// Cancel closes the modal without following.
func (f *FollowFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != "" {
		return ErrBusy
	}
	if f.state != ModalOpen {
		return f.invalid("cancel")
	}
	f.state = Unfollowed
	f.streams = nil
	f.errMsg = ""
	return nil
}

// Unfollow removes the board from every stream of the caller.
func (f *FollowFlow) Unfollow(ctx context.Context) error {
	if err := f.begin(PendingUnfollowing, Following); err != nil {
		return err
	}
	_, err := f.api.UnfollowBoard(ctx, f.boardID)
	f.finish(func() {
		if err != nil {
			f.errMsg = Message(err)
			return
		}
		f.unfollowed()
	})
	return err
}

// observe applies changes made elsewhere. Events caused by this flow's own
// pending call are ignored; finish applies those.
func (f *FollowFlow) observe(ev Event) {
	if ev.BoardID != f.boardID {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != "" {
		return
	}
	switch ev.Kind {
	case BoardAdded:
		if f.state != Following {
			f.followed()
		}
	case BoardUnfollowed:
		if f.state == Following {
			f.unfollowed()
		}
		if ev.Status != nil {
			f.count = ev.Status.FollowerCount
		}
	case StatusLoaded:
		if ev.Status == nil {
			return
		}
		f.count = ev.Status.FollowerCount
		switch {
		case ev.Status.Following && f.state != Following:
			f.state = Following
			f.streams = nil
		case !ev.Status.Following && f.state == Following:
			f.state = Unfollowed
		}
	}
}

// begin marks an action as pending if the flow is in one of states.
func (f *FollowFlow) begin(label string, states ...FollowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != "" {
		return ErrBusy
	}
	if !slices.Contains(states, f.state) {
		return f.invalid(label)
	}
	f.pending = label
	f.errMsg = ""
	return nil
}

func (f *FollowFlow) finish(apply func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = ""
	apply()
}

func (f *FollowFlow) reject(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != "" {
		return ErrBusy
	}
	f.errMsg = Message(err)
	return err
}

// Callers hold f.mu.
func (f *FollowFlow) followed() {
	f.state = Following
	f.count++
	f.streams = nil
}

// Callers hold f.mu.
func (f *FollowFlow) unfollowed() {
	f.state = Unfollowed
	f.count = max(0, f.count-1)
}

func (f *FollowFlow) invalid(action string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, strings.TrimSuffix(strings.ToLower(action), "..."), f.state)
}

// failureMessage keeps the server's own text for validation errors and uses
// fallback for everything else.
func failureMessage(err error, fallback string) string {
	if errors.Is(err, apperror.ErrValidation) {
		return Message(err)
	}
	return fallback
}
