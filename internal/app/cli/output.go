package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"
)

// printer reports controller messages on the command's streams and stands
// in for navigation, which has no meaning on a terminal beyond a notice.
type printer struct {
	out io.Writer
	err io.Writer
}

func (p printer) Success(msg string) { fmt.Fprintln(p.out, msg) }

func (p printer) Error(msg string) { fmt.Fprintln(p.err, "error:", msg) }

func (p printer) ToEmployeeList() { fmt.Fprintln(p.out, "Back to employee list.") }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeFieldErrors(w io.Writer, fields map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}
