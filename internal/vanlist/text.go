package vanlist

import (
	"fmt"
	"strings"

	"github.com/me/covweb/pkg/model"
)

// TextRenderer renders the listing as plain text for terminals.
type TextRenderer struct{}

func (TextRenderer) Records(records []model.InspectionRecord) string {
	if len(records) == 0 {
		return NoRecords + "\n"
	}
	var b strings.Builder
	for i, c := range cards(records, "") {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "COV %s\n", c.Van)
		fmt.Fprintf(&b, "  Date:      %s %s\n", c.Date, c.Time)
		fmt.Fprintf(&b, "  Inspector: %s\n", c.Inspector)
		fmt.Fprintf(&b, "  Event:     %s\n", c.Event)
		fmt.Fprintf(&b, "  Odometer:  %s\n", c.Odometer)
		if c.HasVideo {
			fmt.Fprintf(&b, "  Video:     %s (%s)\n", mediaLabel(c.Video), c.VideoURL)
		} else {
			fmt.Fprintf(&b, "  Video:     %s\n", NoVideo)
		}
	}
	return b.String()
}

// Pagination renders "(Previous) [1] 2 3 Next": the current page is
// bracketed and a disabled control is parenthesized.
func (TextRenderer) Pagination(current, total int) string {
	p, ok := newPager(current, total)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(p.Pages)+2)
	parts = append(parts, control("Previous", p.First))
	for _, n := range p.Pages {
		if n == p.Current {
			parts = append(parts, fmt.Sprintf("[%d]", n))
		} else {
			parts = append(parts, fmt.Sprint(n))
		}
	}
	parts = append(parts, control("Next", p.Last))
	return strings.Join(parts, " ") + "\n"
}

func (TextRenderer) Error(message string) string {
	return message + "\n"
}

func control(label string, disabled bool) string {
	if disabled {
		return "(" + label + ")"
	}
	return label
}
