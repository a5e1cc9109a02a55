package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/younsl/spotstack/internal/models"
)

// PrintBidsTable prints a formatted table of computed bid prices
func PrintBidsTable(w io.Writer, bids map[string]models.Bid) {
	if len(bids) == 0 {
		fmt.Fprintln(w, "No bid prices computed.")
		return
	}

	// Sort families alphabetically for stable output
	var families []string
	for family := range bids {
		families = append(families, family)
	}
	sort.Strings(families)

	// Set up tabwriter with kubectl style spacing
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	// Print header
	fmt.Fprintln(tw, "FAMILY\tINSTANCE TYPE\tSAMPLES\tAVG PRICE\tBID PRICE\tON-DEMAND\tSOURCE")

	for _, family := range families {
		bid := bids[family]

		avg := "-"
		if bid.SampleCount > 0 {
			avg = fmt.Sprintf("$%.4f", bid.AveragePrice)
		}
		onDemand := "-"
		if bid.OnDemand > 0 {
			onDemand = fmt.Sprintf("$%.3f", bid.OnDemand)
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t$%.4f\t%s\t%s\n",
			bid.Family,
			bid.InstanceType,
			bid.SampleCount,
			avg,
			bid.BidPrice,
			onDemand,
			bid.Source,
		)
	}

	tw.Flush()
}
