package slack

import (
	"fmt"
	"strings"
)

// FormatStandup renders the three item lists as a single markdown message.
// Section order is fixed (yesterday, today, blockers) and empty sections are
// omitted.
func FormatStandup(authorName string, yesterdayWork, todayPlan, blockers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Daily Standup from %s*\n\n", authorName)

	writeSection(&b, "✅ Yesterday", yesterdayWork)
	writeSection(&b, "📋 Today", todayPlan)
	writeSection(&b, "🚧 Blockers", blockers)

	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "*%s:*\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "• %s\n", item)
	}
	b.WriteString("\n")
}
