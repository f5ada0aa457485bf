package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/pinboard/cmd/pinctl/output"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List your friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		friends, err := a.client.Friends(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(friends); ok {
			return err
		}
		if len(friends) == 0 {
			output.Muted("No friends yet. Send a request with pinctl friends add USERNAME")
			return nil
		}
		output.Users(friends)
		return nil
	},
}

var friendAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Send a friend request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		req, err := a.client.SendFriendRequest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("Sent a friend request to %s (%s)", req.ReceiverUsername, req.ID)
		return nil
	},
}

var friendRemoveCmd = &cobra.Command{
	Use:   "remove USER_ID",
	Short: "Stop being friends with someone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		if err := a.client.Unfriend(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Removed friend %s", args[0])
		return nil
	},
}

var friendRequestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List friend requests you sent or received",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		requests, err := a.client.FriendRequests(cmd.Context())
		if err != nil {
			return err
		}
		if ok, err := printJSON(requests); ok {
			return err
		}
		if len(requests) == 0 {
			output.Muted("No friend requests.")
			return nil
		}
		var selfID string
		if me := a.client.Session().User(); me != nil {
			selfID = me.ID
		}
		output.FriendRequests(requests, selfID)
		return nil
	},
}

var friendAcceptCmd = &cobra.Command{
	Use:   "accept REQUEST_ID",
	Short: "Accept a friend request sent to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		req, err := a.client.AcceptFriendRequest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("You are now friends with %s", req.SenderUsername)
		return nil
	},
}

var friendRejectCmd = &cobra.Command{
	Use:   "reject REQUEST_ID",
	Short: "Reject a friend request sent to you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		req, err := a.client.RejectFriendRequest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.Success("Rejected the request from %s", req.SenderUsername)
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments PIN_ID",
	Short: "List the comments on a pin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		comments, err := a.client.Comments(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(comments); ok {
			return err
		}
		if len(comments) == 0 {
			output.Muted("No comments yet.")
			return nil
		}
		output.Comments(comments)
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment PIN_ID TEXT...",
	Short: "Comment on a pin",
	Long: `Comment on a pin.

You can always comment on pins of your own boards. Other boards accept
comments from the owner's friends when the owner allows it.

Examples:
  pinctl comment PIN_ID "What a view"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		comment, err := a.client.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		output.Success("Commented (%s)", comment.ID)
		return nil
	},
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment COMMENT_ID",
	Short: "Delete a comment you wrote or one on your board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loggedInApp()
		if err != nil {
			return err
		}
		if err := a.client.DeleteComment(cmd.Context(), args[0]); err != nil {
			return err
		}
		output.Success("Deleted comment %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(friendsCmd, commentsCmd, commentCmd, uncommentCmd)
	friendsCmd.AddCommand(friendAddCmd, friendRemoveCmd, friendRequestsCmd, friendAcceptCmd, friendRejectCmd)
}
