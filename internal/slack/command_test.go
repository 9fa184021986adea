package slack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standupsync/standupsync/internal/slack"
)

func TestParseStandupText_AllSegments(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("yesterday: fixed login bug, reviewed PRs | today: deploy v2 | blockers: waiting on infra")

	assert.Equal(t, []string{"fixed login bug", "reviewed PRs"}, parsed.YesterdayWork)
	assert.Equal(t, []string{"deploy v2"}, parsed.TodayPlan)
	assert.Equal(t, []string{"waiting on infra"}, parsed.Blockers)
}

func TestParseStandupText_EmptyBlockersSegmentYieldsEmptyList(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("yesterday: a, b | today: c | blockers:")

	assert.Equal(t, []string{"a", "b"}, parsed.YesterdayWork)
	assert.Equal(t, []string{"c"}, parsed.TodayPlan)
	// Present but itemless: an empty, non-nil list.
	assert.NotNil(t, parsed.Blockers)
	assert.Empty(t, parsed.Blockers)
}

func TestParseStandupText_AbsentSegmentsStayNil(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("today: ship it")

	assert.Nil(t, parsed.YesterdayWork)
	assert.Equal(t, []string{"ship it"}, parsed.TodayPlan)
	assert.Nil(t, parsed.Blockers)
}

func TestParseStandupText_CaseInsensitiveLabels(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("Yesterday: a | TODAY: b | Blockers: c")

	assert.Equal(t, []string{"a"}, parsed.YesterdayWork)
	assert.Equal(t, []string{"b"}, parsed.TodayPlan)
	assert.Equal(t, []string{"c"}, parsed.Blockers)
}

func TestParseStandupText_TrimsAndDropsEmptyItems(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("yesterday:  a ,, b ,  ")

	assert.Equal(t, []string{"a", "b"}, parsed.YesterdayWork)
}

func TestParseStandupText_UnlabeledTextIgnored(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("just some free text without labels")

	assert.Nil(t, parsed.YesterdayWork)
	assert.Nil(t, parsed.TodayPlan)
	assert.Nil(t, parsed.Blockers)
}

func TestParseStandupText_EmptyInput(t *testing.T) {
	t.Parallel()

	parsed := slack.ParseStandupText("")

	assert.Nil(t, parsed.YesterdayWork)
	assert.Nil(t, parsed.TodayPlan)
	assert.Nil(t, parsed.Blockers)
}
