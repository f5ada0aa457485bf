package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
	"github.com/sakif/pinboard/internal/client"
)

var (
	// Follow flags
	followStream string
	followNew    string
)

var followCmd = &cobra.Command{
	Use:   "follow BOARD_ID",
	Short: "Follow a board by adding it to a stream",
	Long: `Follow a board by adding it to one of your streams or to a new one.

Without --stream or --new the command lists your streams to choose from.

Examples:
  pinctl follow BOARD_ID --stream STREAM_ID
  pinctl follow BOARD_ID --new "Recipes"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollow(cmd.Context(), args[0])
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow BOARD_ID",
	Short: "Unfollow a board, removing it from all your streams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUnfollow(cmd.Context(), args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status BOARD_ID",
	Short: "Show whether you follow a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		st, err := a.streams.FollowStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(st); ok {
			return err
		}
		output.FollowStatus(*st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(followCmd, unfollowCmd, statusCmd)

	followCmd.Flags().StringVarP(&followStream, "stream", "s", "", "Existing stream to add the board to")
	followCmd.Flags().StringVarP(&followNew, "new", "n", "", "Name of a new stream to create for the board")
	followCmd.MarkFlagsMutuallyExclusive("stream", "new")
}

func runFollow(ctx context.Context, boardID string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}
	flow := client.NewFollowFlow(a.streams, a.streams.Store(), boardID, a.logger)
	defer flow.Close()

	if err := flow.Load(ctx); err != nil {
		return err
	}
	if flow.Snapshot().State == client.Following {
		output.Info("Already following this board")
		return nil
	}
	if err := flow.Open(ctx); err != nil {
		return flowError(flow, err)
	}

	snap := flow.Snapshot()
	switch {
	case followStream != "":
		err = flow.ConfirmExisting(ctx, followStream)
	case followNew != "":
		err = flow.ConfirmNew(ctx, followNew)
	case snap.Tab == client.TabNew:
		output.Info("You have no follow streams yet. Create one with --new NAME")
		return nil
	default:
		output.Section("Pick a stream with --stream, or create one with --new NAME")
		output.Streams(snap.Streams)
		return nil
	}
	if err != nil {
		return flowError(flow, err)
	}

	snap = flow.Snapshot()
	output.Success("Following (%d followers)", snap.FollowerCount)
	return nil
}

func runUnfollow(ctx context.Context, boardID string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}
	flow := client.NewFollowFlow(a.streams, a.streams.Store(), boardID, a.logger)
	defer flow.Close()

	if err := flow.Load(ctx); err != nil {
		return err
	}
	if flow.Snapshot().State != client.Following {
		output.Info("You are not following this board")
		return nil
	}
	if err := flow.Unfollow(ctx); err != nil {
		return flowError(flow, err)
	}
	output.Success("Unfollowed (%d followers)", flow.Snapshot().FollowerCount)
	return nil
}

// flowError reports the flow's inline message, which is what a user of the
// web modal would have seen.
func flowError(flow *client.FollowFlow, err error) error {
	if msg := flow.Snapshot().Error; msg != "" {
		return errors.New(msg)
	}
	return err
}
