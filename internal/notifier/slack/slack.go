package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rvilhelmsen/beachrank/internal/league"
	"github.com/rvilhelmsen/beachrank/internal/metrics"
	"github.com/rvilhelmsen/beachrank/internal/notifier"
	"github.com/rvilhelmsen/beachrank/internal/standings"
	"github.com/rvilhelmsen/beachrank/internal/stats"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendSessionSettled(session *league.Session, board []stats.PlayerSummary, dryRun bool) error {
	msg := s.formatSessionSettled(session, board)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendRecomputeFailed(reason string, dryRun bool) error {
	msg := s.formatRecomputeFailed(reason)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(board []stats.PlayerSummary) (any, error) {
	return s.formatLeaderboard(board), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(detail *standings.PlayerDetail, query string) (any, error) {
	return s.formatPlayerStats(detail, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func medalFor(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

// formatSessionSettled creates the Slack message announcing a locked-in session
// and the leaderboard it produced.
func (s *Notifier) formatSessionSettled(session *league.Session, board []stats.PlayerSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏐 Session locked in! 🏐", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Session: %s\nMatches settled: %d", session.Name, session.MatchCount)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Top of the table after the recompute.
	top := board
	if len(top) > 3 {
		top = top[:3]
	}
	for i, p := range top {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> *Points*: %d | *Rating*: %.0f",
			rank,
			medalFor(rank),
			p.Name,
			p.Points,
			p.Rating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the league leaderboard.
func (s *Notifier) formatLeaderboard(board []stats.PlayerSummary) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 League Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(board) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No standings available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, p := range board {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Points: %d | W-L: %d-%d (%.0f%%) | Avg Diff: %+.1f | Rating: %.0f",
			rank,
			medalFor(rank),
			p.Name,
			p.Points,
			p.Wins,
			p.Losses,
			p.WinRate,
			p.AvgPointDiff,
			p.Rating,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's standings.
func (s *Notifier) formatPlayerStats(detail *standings.PlayerDetail, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	p := detail.Overall
	headerText := fmt.Sprintf("🏐 Stats for %s 🏐", p.Name)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Rank*: #%d\n> *Points*: %d\n> *W-L*: %d-%d (%.0f%%)\n> *Avg Point Diff*: %+.1f\n> *Rating*: %.0f",
		detail.Rank,
		p.Points,
		p.Wins,
		p.Losses,
		p.WinRate,
		p.AvgPointDiff,
		p.Rating,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	// Pair rows arrive ranked, so the first one is the headline.
	if len(detail.Partners) > 0 {
		best := detail.Partners[0]
		partnerText := fmt.Sprintf("🤝 Best partner: %s (%d-%d together)", best.Other, best.Wins, best.Games-best.Wins)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", partnerText, true, false)))
	}
	if len(detail.Opponents) > 0 {
		top := detail.Opponents[0]
		opponentText := fmt.Sprintf("⚔️ Most beaten opponent: %s (%d-%d against)", top.Other, top.Wins, top.Games-top.Wins)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", opponentText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// formatRecomputeFailed creates a Slack message for a failed recompute pass.
func (s *Notifier) formatRecomputeFailed(reason string) slack.Message {
	text := fmt.Sprintf("⚠️ Rating recompute failed: %s\nStandings still show the previous pass.", reason)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil),
	)
}
