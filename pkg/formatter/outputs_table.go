package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/younsl/spotstack/internal/models"
)

// outputOrder fixes the display order of the well-known outputs; anything
// else the template exports is appended alphabetically.
var outputOrder = []string{
	models.OutputPublicIP,
	models.OutputEndpointURL,
	models.OutputSSHCommand,
	models.OutputFleetRequestID,
	models.OutputInstanceFamilies,
	models.OutputAvailabilityZones,
}

// PrintStackOutputs prints the completed stack's outputs
func PrintStackOutputs(w io.Writer, outputs models.StackOutputs) {
	if len(outputs) == 0 {
		fmt.Fprintln(w, "Stack produced no outputs.")
		return
	}

	fmt.Fprintln(w, "\n## Deployment outputs")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "OUTPUT\tVALUE")

	printed := make(map[string]bool)
	for _, key := range outputOrder {
		if value, ok := outputs[key]; ok {
			fmt.Fprintf(tw, "%s\t%s\n", key, value)
			printed[key] = true
		}
	}

	var extras []string
	for key := range outputs {
		if !printed[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		fmt.Fprintf(tw, "%s\t%s\n", key, outputs[key])
	}

	tw.Flush()
}
