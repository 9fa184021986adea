package slack

import "strings"

// CommandPayload is the subset of a Slack slash-command form body the
// handlers consume.
type CommandPayload struct {
	TeamID      string
	UserID      string
	UserName    string
	UserEmail   string
	ChannelID   string
	Text        string
	ResponseURL string
}

// ParsedStandup holds the item lists recovered from a slash-command text. A
// nil list means the segment was absent from the command and the stored value
// must be left untouched; an empty list means the segment was present but
// listed no items.
type ParsedStandup struct {
	YesterdayWork []string
	TodayPlan     []string
	Blockers      []string
}

// ParseStandupText parses the pipe-delimited command grammar:
//
//	yesterday: item1, item2 | today: item1 | blockers: item1
//
// Labels are case-insensitive and each segment is optional. Items are
// comma-separated, trimmed, with empties dropped.
func ParseStandupText(text string) ParsedStandup {
	var parsed ParsedStandup

	for _, part := range strings.Split(text, "|") {
		part = strings.TrimSpace(part)
		lower := strings.ToLower(part)

		switch {
		case strings.HasPrefix(lower, "yesterday:"):
			parsed.YesterdayWork = splitItems(part[len("yesterday:"):])
		case strings.HasPrefix(lower, "today:"):
			parsed.TodayPlan = splitItems(part[len("today:"):])
		case strings.HasPrefix(lower, "blockers:"):
			parsed.Blockers = splitItems(part[len("blockers:"):])
		}
	}

	return parsed
}

func splitItems(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
