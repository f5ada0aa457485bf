package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
	"github.com/sakif/pinboard/internal/client"
)

var (
	// Board and pin flags
	boardDescriptor string
	boardName       string
	friendsComment  bool
	pinBoard        string
	pinImage        string
	pinTitle        string
	pinDescription  string
	pinTags         []string
	searchLimit     int
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List your boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		boards, err := a.client.MyBoards(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(boards); ok {
			return err
		}
		if len(boards) == 0 {
			output.Muted("You have no boards yet.")
			return nil
		}
		output.Boards(boards)
		return nil
	},
}

var boardCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		board, err := a.client.CreateBoard(cmd.Context(), client.BoardRequest{
			Name:                args[0],
			Descriptor:          boardDescriptor,
			AllowFriendsComment: friendsComment,
		})
		if err != nil {
			return err
		}
		output.Success("Created board %s (%s)", board.Name, board.ID)
		return nil
	},
}

var boardEditCmd = &cobra.Command{
	Use:   "edit BOARD_ID",
	Short: "Rename a board or change its settings",
	Long: `Rename a board or change its settings. Only the flags you pass are changed.

Examples:
  pinctl boards edit BOARD_ID --name "Alpine lakes"
  pinctl boards edit BOARD_ID --friends-comment`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		board, err := a.client.GetBoard(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		req := client.BoardRequest{
			Name:                board.Name,
			Descriptor:          board.Descriptor,
			AllowFriendsComment: board.AllowFriendsComment,
		}
		if cmd.Flags().Changed("name") {
			req.Name = boardName
		}
		if cmd.Flags().Changed("descriptor") {
			req.Descriptor = boardDescriptor
		}
		if cmd.Flags().Changed("friends-comment") {
			req.AllowFriendsComment = friendsComment
		}

		board, err = a.client.UpdateBoard(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		output.Success("Updated board %s (%s)", board.Name, board.ID)
		return nil
	},
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete BOARD_ID",
	Short: "Delete a board and its pins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.client.DeleteBoard(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted board %s", args[0])
		return nil
	},
}

var boardPinsCmd = &cobra.Command{
	Use:   "pins BOARD_ID",
	Short: "List the pins of a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		pins, err := a.client.BoardPins(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(pins); ok {
			return err
		}
		if len(pins) == 0 {
			output.Muted("No pins on this board yet.")
			return nil
		}
		output.Pins(pins)
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Post a picture to one of your boards",
	Long: `Post a picture to one of your boards.

Examples:
  pinctl pin --board d1k2... --image https://example.com/tahoe.jpg --title "Lake Tahoe" --tag lakes --tag travel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		pin, err := a.client.CreatePin(cmd.Context(), client.PinRequest{
			BoardID:     pinBoard,
			ImageURL:    pinImage,
			Title:       pinTitle,
			Description: pinDescription,
			Tags:        pinTags,
		})
		if err != nil {
			return err
		}
		output.Success("Pinned %s", pin.ID)
		return nil
	},
}

var repinCmd = &cobra.Command{
	Use:   "repin PIN_ID",
	Short: "Copy a pin to one of your boards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		pin, err := a.client.Repin(cmd.Context(), args[0], pinBoard)
		if err != nil {
			return err
		}
		output.Success("Repinned as %s", pin.ID)
		return nil
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin PIN_ID",
	Short: "Delete one of your pins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireLogin(); err != nil {
			return err
		}
		if err := a.client.DeletePin(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted pin %s", args[0])
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like PIN_ID",
	Short: "Like a pin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		pin, err := a.client.Like(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("Liked (%d likes)", pin.LikesCount)
		return nil
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike PIN_ID",
	Short: "Remove your like from a pin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		pin, err := a.client.Unlike(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("Unliked (%d likes)", pin.LikesCount)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Search pins by title, description and tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		pins, err := a.client.SearchPins(cmd.Context(), query, searchLimit)
		if err != nil {
			return err
		}
		if ok, err := printJSON(pins); ok {
			return err
		}
		output.Section(fmt.Sprintf("%d pins for %q", len(pins), query))
		output.Pins(pins)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boardsCmd, pinCmd, unpinCmd, repinCmd, likeCmd, unlikeCmd, searchCmd)
	boardsCmd.AddCommand(boardCreateCmd, boardEditCmd, boardDeleteCmd, boardPinsCmd)

	boardCreateCmd.Flags().StringVarP(&boardDescriptor, "descriptor", "d", "", "Board description")
	boardCreateCmd.Flags().BoolVar(&friendsComment, "friends-comment", false, "Let your friends comment on its pins")

	boardEditCmd.Flags().StringVar(&boardName, "name", "", "New board name")
	boardEditCmd.Flags().StringVarP(&boardDescriptor, "descriptor", "d", "", "New board description")
	boardEditCmd.Flags().BoolVar(&friendsComment, "friends-comment", false, "Let your friends comment on its pins")

	pinCmd.Flags().StringVarP(&pinBoard, "board", "b", "", "Board to pin to (required)")
	pinCmd.Flags().StringVar(&pinImage, "image", "", "Image URL (required)")
	pinCmd.Flags().StringVarP(&pinTitle, "title", "t", "", "Title")
	pinCmd.Flags().StringVar(&pinDescription, "description", "", "Description")
	pinCmd.Flags().StringArrayVar(&pinTags, "tag", nil, "Tag (repeatable)")
	_ = pinCmd.MarkFlagRequired("board")
	_ = pinCmd.MarkFlagRequired("image")

	repinCmd.Flags().StringVarP(&pinBoard, "board", "b", "", "Board to repin into (required)")
	_ = repinCmd.MarkFlagRequired("board")

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum results (server default when 0)")
}
