package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/model"
)

type fakeLister struct {
	boards map[string][]model.Board
	pins   map[string][]model.Pin
	fail   error
}

func (f fakeLister) ListStreamBoards(ctx context.Context, streamID string) ([]model.Board, error) {
	return f.boards[streamID], nil
}

func (f fakeLister) BoardPins(ctx context.Context, boardID string) ([]model.Pin, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.pins[boardID], nil
}

func TestAggregator_StreamPins(t *testing.T) {
	lister := fakeLister{
		boards: map[string][]model.Board{
			"full":  {{ID: "b1"}, {ID: "b2"}, {ID: "b3"}},
			"empty": {{ID: "b3"}},
		},
		pins: map[string][]model.Pin{
			"b1": {{ID: "p1"}, {ID: "p2"}},
			"b2": {{ID: "p3"}},
		},
	}
	agg := client.NewAggregator(lister, lister)

	tests := []struct {
		name      string
		streamID  string
		wantState client.ViewState
		wantPins  []string
	}{
		{name: "pins in board order", streamID: "full", wantState: client.StateReady, wantPins: []string{"p1", "p2", "p3"}},
		{name: "boards without pins", streamID: "empty", wantState: client.StateNoPins},
		{name: "no boards", streamID: "none", wantState: client.StateNoBoards},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := agg.StreamPins(context.Background(), tt.streamID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, view.State)

			var ids []string
			for _, p := range view.Pins {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantPins, ids)
		})
	}
}

func TestAggregator_BoardFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	lister := fakeLister{
		boards: map[string][]model.Board{"s": {{ID: "b1"}}},
		fail:   boom,
	}
	_, err := client.NewAggregator(lister, lister).StreamPins(context.Background(), "s")
	assert.ErrorIs(t, err, boom)
}

func TestAggregator_AgainstServer(t *testing.T) {
	ts := newTestServer(t)
	owner := register(t, ts, "owner")
	first := createBoard(t, owner, "First")
	second := createBoard(t, owner, "Second")
	createPin(t, owner, first.ID, "alpha")
	createPin(t, owner, second.ID, "beta")
	createPin(t, owner, second.ID, "gamma")

	reader := register(t, ts, "reader")
	streams := client.NewStreams(reader, nil)
	ctx := context.Background()

	stream, err := streams.CreateStream(ctx, "Mix")
	require.NoError(t, err)

	agg := client.NewAggregator(streams, reader)
	view, err := agg.StreamPins(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, client.StateNoBoards, view.State)

	require.NoError(t, streams.AddBoardToStream(ctx, stream.ID, first.ID))
	require.NoError(t, streams.AddBoardToStream(ctx, stream.ID, second.ID))

	view, err = agg.StreamPins(ctx, stream.ID)
	require.NoError(t, err)
	assert.Equal(t, client.StateReady, view.State)
	assert.Len(t, view.Pins, 3)
	assert.Equal(t, first.ID, view.Pins[0].BoardID)

	serverSide, err := streams.StreamPins(ctx, stream.ID)
	require.NoError(t, err)
	assert.Len(t, serverSide, 3)
}
