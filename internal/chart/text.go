package chart

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const textBarWidth = 20

// TextChart renders the first dataset as a monospace bar list. It is the
// last resort when no image renderer is usable, so it never fails.
func TextChart(spec *Spec) string {
	title := spec.Options.Title
	if title == "" {
		title = "Data Chart"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **%s** (%s)\n\n", title, spec.Type)

	if len(spec.Labels) > 0 && len(spec.Datasets) > 0 {
		values := spec.Datasets[0].Data
		maxValue := 0.0
		for _, v := range values {
			if v > maxValue {
				maxValue = v
			}
		}

		b.WriteString("```\n")
		n := len(spec.Labels)
		if len(values) < n {
			n = len(values)
		}
		for i := 0; i < n; i++ {
			percentage := 0.0
			if maxValue > 0 {
				percentage = values[i] / maxValue
			}
			barLength := int(percentage*textBarWidth + 0.5)
			bar := strings.Repeat("█", barLength) + strings.Repeat("░", textBarWidth-barLength)
			fmt.Fprintf(&b, "%s │%s│ %s\n", padRight(spec.Labels[i], 15), bar, formatThousands(int64(values[i]+0.5)))
		}
		b.WriteString("```\n")
	}

	if len(spec.Datasets) > 1 {
		b.WriteString("\n**Datasets:**\n")
		for _, ds := range spec.Datasets {
			fmt.Fprintf(&b, "• %s: %d data points\n", ds.Label, len(ds.Data))
		}
	}

	return b.String()
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
