package formatter

import (
	"fmt"
	"io"
	"time"
)

// PrintPhaseDone prints a completion line for a named phase with its
// elapsed time.
func PrintPhaseDone(w io.Writer, phase string, start time.Time) {
	fmt.Fprintf(w, "✓ %s - Completed in %.2f seconds\n", phase, time.Since(start).Seconds())
}
