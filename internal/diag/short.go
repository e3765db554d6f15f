package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line as
// "<severity> <ID> <subject> <message>", notes indented under their parent.
// Messages are folded onto a single line. Order is preserved.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	var sb strings.Builder
	for i, d := range diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s %s %s", strings.ToLower(d.Severity.String()), d.Code.ID(), d.Primary, fold(d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "\n  note %s %s", n.Subject, fold(n.Msg))
		}
	}
	return sb.String()
}

func fold(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
