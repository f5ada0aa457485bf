package client

import (
	"context"
	"fmt"

	"github.com/sakif/pinboard/internal/model"
)

// ViewState tells a stream page which empty state, if any, to show.
type ViewState int

const (
	StateReady ViewState = iota
	// StateNoBoards: "No boards in this stream yet."
	StateNoBoards
	// StateNoPins: "No pins in this stream"
	StateNoPins
)

func (s ViewState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateNoBoards:
		return "no_boards"
	case StateNoPins:
		return "no_pins"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

// StreamView is the pins-in-stream page.
type StreamView struct {
	StreamID string
	Boards   []model.Board
	Pins     []model.Pin
	State    ViewState
}

type StreamBoardLister interface {
	ListStreamBoards(ctx context.Context, streamID string) ([]model.Board, error)
}

type BoardPinLister interface {
	BoardPins(ctx context.Context, boardID string) ([]model.Pin, error)
}

// Aggregator flattens a stream into the pins of its boards.
type Aggregator struct {
	boards StreamBoardLister
	pins   BoardPinLister
}

func NewAggregator(boards StreamBoardLister, pins BoardPinLister) *Aggregator {
	return &Aggregator{boards: boards, pins: pins}
}

// StreamPins lists the stream's boards and concatenates their pins in board
// order. Boards are fetched one after another; the first failure aborts.
func (a *Aggregator) StreamPins(ctx context.Context, streamID string) (*StreamView, error) {
	boards, err := a.boards.ListStreamBoards(ctx, streamID)
	if err != nil {
		return nil, err
	}

	view := &StreamView{StreamID: streamID, Boards: boards, Pins: []model.Pin{}}
	if len(boards) == 0 {
		view.State = StateNoBoards
		return view, nil
	}

	for _, b := range boards {
		pins, err := a.pins.BoardPins(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("pins of board %s: %w", b.ID, err)
		}
		view.Pins = append(view.Pins, pins...)
	}
	if len(view.Pins) == 0 {
		view.State = StateNoPins
	}
	return view, nil
}
