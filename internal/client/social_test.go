package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/model"
)

// makeFriends sends a request from a to username and accepts it as b.
func makeFriends(t *testing.T, a, b *client.Client, username string) {
	t.Helper()
	ctx := context.Background()
	sent, err := a.SendFriendRequest(ctx, username)
	require.NoError(t, err)
	_, err = b.AcceptFriendRequest(ctx, sent.ID)
	require.NoError(t, err)
}

func TestFriends_RequestAcceptUnfriend(t *testing.T) {
	ts := newTestServer(t)
	alice := register(t, ts, "alice")
	bob := register(t, ts, "bob")
	ctx := context.Background()

	_, err := alice.SendFriendRequest(ctx, " ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	sent, err := alice.SendFriendRequest(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestPending, sent.Status)

	_, err = bob.SendFriendRequest(ctx, "alice")
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "a friend request between you is already pending", client.Message(err))

	requests, err := bob.FriendRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "alice", requests[0].SenderUsername)

	_, err = alice.AcceptFriendRequest(ctx, sent.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	accepted, err := bob.AcceptFriendRequest(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendRequestAccepted, accepted.Status)

	_, err = bob.RejectFriendRequest(ctx, sent.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	friends, err := alice.Friends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	require.NoError(t, bob.Unfriend(ctx, alice.Session().User().ID))
	friends, err = alice.Friends(ctx)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestComments_FriendsOfOwnerOnBoardsThatAllowIt(t *testing.T) {
	ts := newTestServer(t)
	owner := register(t, ts, "owner")
	friend := register(t, ts, "friend")
	stranger := register(t, ts, "stranger")
	ctx := context.Background()
	makeFriends(t, friend, owner, "owner")

	board := createBoard(t, owner, "Lakes")
	pin := createPin(t, owner, board.ID, "tahoe")

	_, err := friend.AddComment(ctx, pin.ID, "so blue")
	assert.ErrorIs(t, err, apperror.ErrForbidden, "board does not allow friends' comments yet")

	_, err = owner.UpdateBoard(ctx, board.ID, client.BoardRequest{Name: board.Name, AllowFriendsComment: true})
	require.NoError(t, err)

	_, err = friend.AddComment(ctx, pin.ID, "  ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	byFriend, err := friend.AddComment(ctx, pin.ID, "so blue")
	require.NoError(t, err)
	assert.Equal(t, "friend", byFriend.AuthorUsername)

	_, err = stranger.AddComment(ctx, pin.ID, "me too")
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = owner.AddComment(ctx, pin.ID, "thanks")
	require.NoError(t, err)

	comments, err := newClient(ts).Comments(ctx, pin.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "so blue", comments[0].Content)
	assert.Equal(t, "thanks", comments[1].Content)

	assert.ErrorIs(t, stranger.DeleteComment(ctx, byFriend.ID), apperror.ErrForbidden)
	require.NoError(t, owner.DeleteComment(ctx, byFriend.ID))

	comments, err = owner.Comments(ctx, pin.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
