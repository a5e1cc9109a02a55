package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/younsl/spotstack/internal/models"
)

// PrintReleasedAddresses prints a formatted table of released Elastic IPs
func PrintReleasedAddresses(w io.Writer, addresses []models.AddressInfo) {
	if len(addresses) == 0 {
		fmt.Fprintln(w, "No orphaned Elastic IPs released.")
		return
	}

	// Sort by public IP for stable output
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i].PublicIP < addresses[j].PublicIP
	})

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "ALLOCATION ID\tPUBLIC IP\tREGION\tPREVIOUS OWNER")

	for _, addr := range addresses {
		owner := addr.OwnerStack
		if owner == "" {
			owner = "(untagged)"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			addr.AllocationID,
			addr.PublicIP,
			addr.Region,
			owner,
		)
	}

	fmt.Fprintf(tw, "Total:\t\t\t%d released\n", len(addresses))

	tw.Flush()
}
