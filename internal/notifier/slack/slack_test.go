package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI captures PostMessageContext calls.
type mockSlackAPI struct {
	calls []mockPostCall
	err   error
}

type mockPostCall struct {
	channelID string
	options   []slack.MsgOption
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.calls = append(m.calls, mockPostCall{channelID: channelID, options: options})
	if m.err != nil {
		return "", "", m.err
	}
	return channelID, "123.456", nil
}

func testBoard() []stats.PlayerSummary {
	return []stats.PlayerSummary{
		{Name: "Anna", Rating: 1240, Games: 3, Wins: 3, Losses: 0, Points: 9, WinRate: 100, AvgPointDiff: 4.3},
		{Name: "Bo", Rating: 1200, Games: 3, Wins: 1, Losses: 2, Points: 5, WinRate: 33.3, AvgPointDiff: -0.7},
	}
}

func TestSendRecomputeFailed(t *testing.T) {
	api := &mockSlackAPI{}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	err := n.SendRecomputeFailed("match m2: tied score", false)
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "C123", api.calls[0].channelID)
	assert.Equal(t, 1, m.SlackNotifSent())
	assert.Equal(t, 0, m.SlackNotifFailed())
}

func TestSendRecomputeFailedDryRun(t *testing.T) {
	api := &mockSlackAPI{}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	err := n.SendRecomputeFailed("match m2: tied score", true)
	require.NoError(t, err)
	assert.Empty(t, api.calls, "Dry run should not hit the Slack API")
	assert.Equal(t, 0, m.SlackNotifSent())
}

func TestSendFailureCountsAsFailed(t *testing.T) {
	api := &mockSlackAPI{err: errors.New("channel_not_found")}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	err := n.SendRecomputeFailed("match m2: tied score", false)
	require.Error(t, err)
	assert.Equal(t, 0, m.SlackNotifSent())
	assert.Equal(t, 1, m.SlackNotifFailed())
}

func TestFormatLeaderboardResponse(t *testing.T) {
	n := NewNotifierWithAPI(&mockSlackAPI{}, "C123", metrics.NewMock())

	resp, err := n.FormatLeaderboardResponse(testBoard())
	require.NoError(t, err)
	msg, ok := resp.(slack.Message)
	require.True(t, ok)
	// Header plus one section per player.
	assert.Len(t, msg.Blocks.BlockSet, 3)
}

func TestFormatLeaderboardResponseEmpty(t *testing.T) {
	n := NewNotifierWithAPI(&mockSlackAPI{}, "C123", metrics.NewMock())

	resp, err := n.FormatLeaderboardResponse(nil)
	require.NoError(t, err)
	msg := resp.(slack.Message)
	require.Len(t, msg.Blocks.BlockSet, 2)
	section, ok := msg.Blocks.BlockSet[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "No standings available")
}

func TestFormatPlayerStatsResponse(t *testing.T) {
	n := NewNotifierWithAPI(&mockSlackAPI{}, "C123", metrics.NewMock())

	detail := &standings.PlayerDetail{
		Rank:    1,
		Overall: testBoard()[0],
		Partners: []stats.PairStat{
			{Player: "Anna", Other: "Bo", Games: 3, Wins: 3},
		},
		Opponents: []stats.PairStat{
			{Player: "Anna", Other: "Carl", Games: 2, Wins: 2},
		},
	}

	resp, err := n.FormatPlayerStatsResponse(detail, "anna")
	require.NoError(t, err)
	msg := resp.(slack.Message)
	// Header, overall section, partner context, opponent context.
	require.Len(t, msg.Blocks.BlockSet, 4)
	header, ok := msg.Blocks.BlockSet[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "Anna")
}

func TestFormatPlayerNotFoundResponse(t *testing.T) {
	n := NewNotifierWithAPI(&mockSlackAPI{}, "C123", metrics.NewMock())

	resp, err := n.FormatPlayerNotFoundResponse("ghost")
	require.NoError(t, err)
	msg := resp.(slack.Message)
	require.Len(t, msg.Blocks.BlockSet, 1)
	section := msg.Blocks.BlockSet[0].(*slack.SectionBlock)
	assert.Contains(t, section.Text.Text, "ghost")
}

func TestSendSessionSettled(t *testing.T) {
	api := &mockSlackAPI{}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	session := &league.Session{
		ID:         "s1",
		Date:       "2025-06-01",
		Name:       "6/1/2025",
		MatchCount: 4,
	}
	err := n.SendSessionSettled(session, testBoard(), false)
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.Equal(t, 1, m.SlackNotifSent())
}
