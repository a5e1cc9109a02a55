package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/younsl/spotstack/internal/models"
)

// PrintStackEvents prints recent stack status events, newest first. Used
// as the diagnostic dump when a deployment fails.
func PrintStackEvents(w io.Writer, events []models.StackEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No stack events available.")
		return
	}

	fmt.Fprintln(w, "\nRecent stack events:")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "AGE\tRESOURCE\tTYPE\tSTATUS\tREASON")

	for _, ev := range events {
		reason := ev.Reason
		if reason == "" {
			reason = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(ev.Timestamp),
			ev.LogicalID,
			ev.ResourceType,
			ev.Status,
			reason,
		)
	}

	tw.Flush()
}
