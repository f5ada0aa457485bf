package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/model"
)

var (
	// Stream flags
	mergedPins bool
)

// streamsCmd lists the caller's follow streams
var streamsCmd = &cobra.Command{
	Use:     "streams",
	Aliases: []string{"stream"},
	Short:   "Manage your follow streams",
	Long: `Follow streams are private, named groups of the boards you follow.

Examples:
  pinctl streams                         # list streams
  pinctl streams create "Dinner ideas"
  pinctl streams add STREAM_ID BOARD_ID
  pinctl streams pins STREAM_ID          # pins of every board in the stream`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		streams, err := a.streams.ListStreams(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(streams); ok {
			return err
		}
		if len(streams) == 0 {
			output.Muted("You have no follow streams yet.")
			return nil
		}
		output.Streams(streams)
		return nil
	},
}

var streamCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an empty stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		stream, err := a.streams.CreateStream(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("Created stream %s (%s)", stream.Name, stream.ID)
		return nil
	},
}

var streamRenameCmd = &cobra.Command{
	Use:   "rename STREAM_ID NAME",
	Short: "Rename a stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		stream, err := a.streams.RenameStream(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		output.Success("Renamed stream to %s", stream.Name)
		return nil
	},
}

var streamDeleteCmd = &cobra.Command{
	Use:   "delete STREAM_ID",
	Short: "Delete a stream",
	Long: `Delete a stream.

Boards that are in no other stream of yours become unfollowed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		if err := a.streams.DeleteStream(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted stream %s", args[0])
		return nil
	},
}

var streamBoardsCmd = &cobra.Command{
	Use:   "boards STREAM_ID",
	Short: "List the boards in a stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		n := 0
		for board, err := range a.streams.StreamBoards(cmd.Context(), args[0]) {
			if err != nil {
				return err
			}
			output.Boards([]model.Board{board})
			n++
		}
		if n == 0 {
			output.Muted("No boards in this stream yet.")
		}
		return nil
	},
}

var streamAddCmd = &cobra.Command{
	Use:   "add STREAM_ID BOARD_ID",
	Short: "Add a board to a stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		if err := a.streams.AddBoardToStream(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		output.Success("Added board %s", args[1])
		return nil
	},
}

var streamRemoveCmd = &cobra.Command{
	Use:   "remove STREAM_ID BOARD_ID",
	Short: "Remove a board from a stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		if err := a.streams.RemoveBoardFromStream(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		output.Success("Removed board %s", args[1])
		return nil
	},
}

var streamPinsCmd = &cobra.Command{
	Use:   "pins STREAM_ID",
	Short: "List the pins of every board in a stream",
	Long: `List the pins of every board in a stream, board by board.

With --merged the server returns all pins newest first in one request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}

		if mergedPins {
			pins, err := a.streams.StreamPins(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ok, err := printJSON(pins); ok {
				return err
			}
			if len(pins) == 0 {
				output.Muted("No pins in this stream")
				return nil
			}
			output.Pins(pins)
			return nil
		}

		view, err := client.NewAggregator(a.streams, a.client).StreamPins(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(view); ok {
			return err
		}
		switch view.State {
		case client.StateNoBoards:
			output.Muted("No boards in this stream yet.")
		case client.StateNoPins:
			output.Muted("No pins in this stream")
		default:
			output.Section(fmt.Sprintf("%d pins from %d boards", len(view.Pins), len(view.Boards)))
			output.Pins(view.Pins)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streamsCmd)
	streamsCmd.AddCommand(streamCreateCmd, streamRenameCmd, streamDeleteCmd,
		streamBoardsCmd, streamAddCmd, streamRemoveCmd, streamPinsCmd)

	streamPinsCmd.Flags().BoolVar(&mergedPins, "merged", false, "Let the server merge pins newest first")
}

func loggedInApp() (*app, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	return a, nil
}
