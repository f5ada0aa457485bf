package model

import "time"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest asks ReceiverID to become friends with SenderID. Only the
// receiver answers it, and only while it is pending.
type FriendRequest struct {
	ID               string              `json:"request_id"`
	SenderID         string              `json:"sender_id"`
	SenderUsername   string              `json:"sender_username"`
	ReceiverID       string              `json:"receiver_id"`
	ReceiverUsername string              `json:"receiver_username"`
	Status           FriendRequestStatus `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	RespondedAt      *time.Time          `json:"responded_at,omitempty"`
}

// Comment is a note left on a pin. Who may comment depends on the board:
// its owner always may, and friends of the owner may when the board allows
// friends' comments.
type Comment struct {
	ID             string    `json:"comment_id"`
	PinID          string    `json:"pin_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
