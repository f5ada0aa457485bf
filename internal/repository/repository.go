// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage is the only implementation; services are
// unit tested against it with ":memory:" databases or against hand-written
// fakes.
package repository

import (
	"context"

	"github.com/sakif/pinboard/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser inserts a password account. Duplicate usernames return
	// apperror.ErrConflict.
	CreateUser(ctx context.Context, user *model.User) error
	// Upsert inserts or refreshes a GitHub account keyed by GitHubID.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateProfile stores the user's email and profile text.
	UpdateProfile(ctx context.Context, user *model.User) error
}

type BoardRepository interface {
	CreateBoard(ctx context.Context, board *model.Board) error
	GetBoard(ctx context.Context, id string) (*model.Board, error)
	ListBoardsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Board, error)
	UpdateBoard(ctx context.Context, board *model.Board) error
	// DeleteBoard removes the board, its pins and every membership edge.
	DeleteBoard(ctx context.Context, id string) error
}

type PinRepository interface {
	CreatePin(ctx context.Context, pin *model.Pin) error
	GetPin(ctx context.Context, id string) (*model.Pin, error)
	ListPinsByBoard(ctx context.Context, boardID string, opts ListOptions) ([]model.Pin, error)
	// ListAllPins is used to seed the search index.
	ListAllPins(ctx context.Context) ([]model.Pin, error)
	DeletePin(ctx context.Context, id string) error
	// LikePin and UnlikePin act on the root original of pinID and are
	// idempotent.
	LikePin(ctx context.Context, userID, pinID string) error
	UnlikePin(ctx context.Context, userID, pinID string) error
}

// StreamRepository stores follow-streams and their board memberships.
//
// Every method takes the caller's user ID. A stream that exists but belongs
// to someone else is reported as apperror.ErrNotFound, never as forbidden,
// so streams stay private.
type StreamRepository interface {
	CreateStream(ctx context.Context, stream *model.FollowStream) error
	GetStream(ctx context.Context, ownerID, streamID string) (*model.FollowStream, error)
	ListStreams(ctx context.Context, ownerID string) ([]model.FollowStream, error)
	RenameStream(ctx context.Context, ownerID, streamID, name string) (*model.FollowStream, error)
	DeleteStream(ctx context.Context, ownerID, streamID string) error

	ListStreamBoards(ctx context.Context, ownerID, streamID string) ([]model.Board, error)
	// AddBoardToStream is idempotent: adding an existing member is a no-op.
	AddBoardToStream(ctx context.Context, ownerID, streamID, boardID string) error
	// RemoveBoardFromStream returns apperror.ErrNotFound when the edge is absent.
	RemoveBoardFromStream(ctx context.Context, ownerID, streamID, boardID string) error
	// ListStreamPins returns pins of every member board, newest first.
	ListStreamPins(ctx context.Context, ownerID, streamID string, opts ListOptions) ([]model.Pin, error)

	// FollowBoard adds boardID to stream in one transaction. When stream.ID is
	// empty the stream is created first and stream is filled in.
	FollowBoard(ctx context.Context, ownerID, boardID string, stream *model.FollowStream) error
	// UnfollowBoard removes boardID from every stream owned by ownerID and
	// reports how many edges were removed.
	UnfollowBoard(ctx context.Context, ownerID, boardID string) (int, error)
	FollowStatus(ctx context.Context, userID, boardID string) (*model.FollowStatus, error)
}

// FriendRepository stores friend requests and the friendships accepting
// them creates. Friendship is symmetric: AreFriends(a, b) equals
// AreFriends(b, a).
type FriendRepository interface {
	// CreateFriendRequest returns apperror.ErrConflict when the two users
	// are already friends or a request between them is pending in either
	// direction.
	CreateFriendRequest(ctx context.Context, req *model.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*model.FriendRequest, error)
	// ListFriendRequests returns requests sent or received by userID,
	// newest first.
	ListFriendRequests(ctx context.Context, userID string) ([]model.FriendRequest, error)
	// RespondFriendRequest moves a pending request to status. Accepting
	// also creates the friendship, in the same transaction.
	RespondFriendRequest(ctx context.Context, id string, status model.FriendRequestStatus) (*model.FriendRequest, error)

	ListFriends(ctx context.Context, userID string) ([]model.User, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	// DeleteFriendship returns apperror.ErrNotFound when they are not friends.
	DeleteFriendship(ctx context.Context, userID, otherID string) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments returns a pin's comments oldest first.
	ListComments(ctx context.Context, pinID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
