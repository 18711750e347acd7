package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func renderUsers(w io.Writer, users []models.User) {
	table := newTable(w, "ID", "Username", "Name", "Email", "Joined")
	for _, u := range users {
		table.Append([]string{formatID(u.ID), u.Username, u.Name, u.Email, formatTime(u.CreatedAt)})
	}
	table.Render()
}

// renderUserList prints the public projection used for search results.
func renderUserList(w io.Writer, users []models.UserCompact, total int64) {
	table := newTable(w, "ID", "Username", "Name")
	for _, u := range users {
		table.Append([]string{formatID(u.ID), u.Username, u.Name})
	}
	table.Render()
	fmt.Fprintf(w, "%d matching users\n", total)
}

func renderProfile(w io.Writer, user *models.User, counts models.FollowCounts) {
	table := newTable(w, "ID", "Username", "Name", "Followers", "Following")
	table.Append([]string{
		formatID(user.ID),
		user.Username,
		user.Name,
		strconv.FormatInt(counts.Followers, 10),
		strconv.FormatInt(counts.Following, 10),
	})
	table.Render()
}

func renderIDs(w io.Writer, label string, ids []uint) {
	table := newTable(w, "#", label+" ID")
	for i, id := range ids {
		table.Append([]string{strconv.Itoa(i + 1), formatID(id)})
	}
	table.Render()
	fmt.Fprintf(w, "%d total\n", len(ids))
}

func renderPosts(w io.Writer, posts []models.Micropost) {
	table := newTable(w, "ID", "Author", "Posted", "Content")
	for _, p := range posts {
		table.Append([]string{formatID(p.ID), formatID(p.AuthorID), formatTime(p.CreatedAt), p.Content})
	}
	table.Render()
}

func renderFeed(w io.Writer, feed *models.FeedPage) {
	if len(feed.Items) == 0 {
		fmt.Fprintln(w, "Feed is empty")
		return
	}
	renderPosts(w, feed.Items)
	fmt.Fprintf(w, "Page %d of %d (%d items)\n", feed.Page, feed.TotalPages, feed.TotalItems)
}

func renderMessages(w io.Writer, msgs []models.Message, total int64) {
	table := newTable(w, "ID", "From", "To", "Sent", "Content")
	for _, m := range msgs {
		table.Append([]string{formatID(m.ID), formatID(m.FromUserID), formatID(m.ToUserID), formatTime(m.CreatedAt), m.Content})
	}
	table.Render()
	fmt.Fprintf(w, "%d messages\n", total)
}
