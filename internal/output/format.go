// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// ListHeader precedes a non-empty listing.
	ListHeader = "Tasks:"

	// NoTasks is printed instead of a listing when there are no tasks.
	NoTasks = "No tasks available."
)

// FormatEntry formats one task line.
// Format: "{N}. {TITLE} [{STATUS}] - {DESCRIPTION} (Created: {CREATED_AT})\n"
// Title and description are printed as stored, embedded newlines included.
func FormatEntry(w io.Writer, e service.Entry) {
	fmt.Fprintf(w, "%d. %s [%s] - %s (Created: %s)\n",
		e.Position,
		e.Task.Title,
		e.Status(),
		e.Task.Description,
		e.Task.CreatedAt,
	)
}

// FormatListing prints the header and every entry, or NoTasks if the listing is empty.
func FormatListing(w io.Writer, l service.Listing) {
	if l.Empty() {
		fmt.Fprintln(w, NoTasks)
		return
	}
	fmt.Fprintln(w, ListHeader)
	for e := range l.All() {
		FormatEntry(w, e)
	}
}

// FormatRemoteList prints one remote list name, marking the default list
// and the list push targets.
func FormatRemoteList(w io.Writer, list service.RemoteList, pushTarget bool) {
	title := normalizeTitle(list.Title)
	if list.IsDefault {
		title += " [default]"
	}
	if pushTarget {
		title += " [push]"
	}
	fmt.Fprintln(w, title)
}

// normalizeTitle normalizes a remote list name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
