package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/pinboard/internal/model"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#E60023")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	idStyle      = lipgloss.NewStyle().Foreground(colorMuted).Width(22)
)

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Print(successStyle.Render("✓ "))
	fmt.Printf(format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Print(warningStyle.Render("⚠ "))
	fmt.Printf(format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Print(errorStyle.Render("✗ "))
	fmt.Printf(format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Print(infoStyle.Render("ℹ "))
	fmt.Printf(format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Println()
	fmt.Println(primaryStyle.Render(title))
	fmt.Println(mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Streams prints one line per stream.
func Streams(streams []model.FollowStream) {
	for _, s := range streams {
		fmt.Printf("%s %s\n", idStyle.Render(s.ID), s.Name)
	}
}

// Boards prints one line per board with its follower count.
func Boards(boards []model.Board) {
	for _, b := range boards {
		fmt.Printf("%s %s %s\n", idStyle.Render(b.ID), b.Name,
			mutedStyle.Render(fmt.Sprintf("(%d followers)", b.FollowerCount)))
	}
}

// Pins prints one line per pin. Repins are marked.
func Pins(pins []model.Pin) {
	for _, p := range pins {
		title := p.Title
		if title == "" {
			title = p.ImageURL
		}
		line := fmt.Sprintf("%s %s %s", idStyle.Render(p.ID), title,
			mutedStyle.Render(fmt.Sprintf("♥ %d", p.LikesCount)))
		if p.IsRepin() {
			line += mutedStyle.Render(" repin of " + p.OriginPinID)
		}
		fmt.Println(line)
	}
}

// FollowStatus prints the caller-relative follow state of a board.
func FollowStatus(st model.FollowStatus) {
	state := mutedStyle.Render("not following")
	if st.Following {
		state = successStyle.Render("following")
	}
	fmt.Printf("%s %s %s\n", idStyle.Render(st.BoardID), state,
		mutedStyle.Render(fmt.Sprintf("(%d followers)", st.FollowerCount)))
}

// Users prints one line per user.
func Users(users []model.User) {
	for _, u := range users {
		fmt.Printf("%s %s\n", idStyle.Render(u.ID), u.Username)
	}
}

// FriendRequests prints requests from selfID's point of view: incoming
// ones name the sender, outgoing ones the receiver.
func FriendRequests(requests []model.FriendRequest, selfID string) {
	for _, r := range requests {
		who := "from " + r.SenderUsername
		if r.SenderID == selfID {
			who = "to " + r.ReceiverUsername
		}
		state := mutedStyle.Render(string(r.Status))
		if r.Status == model.FriendRequestPending {
			state = warningStyle.Render(string(r.Status))
		}
		fmt.Printf("%s %s %s\n", idStyle.Render(r.ID), who, state)
	}
}

// Comments prints one line per comment, oldest first.
func Comments(comments []model.Comment) {
	for _, c := range comments {
		fmt.Printf("%s %s %s\n", idStyle.Render(c.ID), primaryStyle.Render(c.AuthorUsername), c.Content)
	}
}
