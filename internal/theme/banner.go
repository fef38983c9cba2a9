package theme

import (
	"fmt"
	"io"
	"os"
)

// Banner returns the CLI banner with the active work window.
func Banner(window string) string {
	const cyan = "\033[36m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	return "" +
		cyan + "  ┌─────────────────────────────┐\n" + reset +
		cyan + "  │  " + reset + yellow + "DUEDATE" + reset + "  working-hour clock " + cyan + "│\n" + reset +
		cyan + "  └─────────────────────────────┘\n" + reset +
		fmt.Sprintf("   Mon-Fri %s\n", window)
}

// PrintBanner writes the banner to w, or stdout when w is nil.
func PrintBanner(w io.Writer, window string) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprint(w, Banner(window))
}
