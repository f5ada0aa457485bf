package model

import "time"

// Pin places a picture on a board.
//
// A repin shares PictureID and ImageURL with the pin it was copied from and
// records that pin in OriginPinID. LikesCount always reports the likes of
// the root original, so every repin of a picture shows the same count.
type Pin struct {
	ID          string    `json:"pin_id"`
	BoardID     string    `json:"board_id"`
	PictureID   string    `json:"picture_id"`
	ImageURL    string    `json:"image_url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	LikesCount  int       `json:"likes_count"`
	OriginPinID string    `json:"origin_pin_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsRepin reports whether the pin was copied from another pin.
func (p Pin) IsRepin() bool {
	return p.OriginPinID != ""
}
