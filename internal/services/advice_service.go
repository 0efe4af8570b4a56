package services

import (
	"context"
	"fmt"
	"strings"

	"matchup-chat/internal/config"
	matchup_errors "matchup-chat/pkg/errors"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// PlayerActivity is the aggregated booking/activity snapshot the advice
// generator consumes. It carries no messaging data.
type PlayerActivity struct {
	PlayerName     string   `json:"player_name"`
	SkillLevel     string   `json:"skill_level"`
	PlayingStyle   string   `json:"playing_style,omitempty"`
	Location       string   `json:"location,omitempty"`
	RecentBookings int      `json:"recent_bookings"`
	PreferredDay   string   `json:"preferred_day,omitempty"`
	PreferredTime  string   `json:"preferred_time,omitempty"`
	FavoriteCourts []string `json:"favorite_courts,omitempty"`
}

// AdviceService turns a player's activity snapshot into free-text
// coaching recommendations via a chat-completion API. It is a pure
// input-to-text collaborator; nothing in the messaging core depends on
// its output.
type AdviceService struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewAdviceService(cfg config.OpenAIConfig, logger *zap.Logger) *AdviceService {
	if cfg.APIKey == "" {
		return &AdviceService{logger: logger}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &AdviceService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger,
	}
}

// Enabled reports whether an API key was configured.
func (s *AdviceService) Enabled() bool {
	return s.client != nil
}

// Recommend generates personalized coaching advice for a player.
func (s *AdviceService) Recommend(ctx context.Context, activity PlayerActivity) (string, error) {
	if s.client == nil {
		return "", matchup_errors.ErrInvalidState
	}
	if strings.TrimSpace(activity.PlayerName) == "" || strings.TrimSpace(activity.SkillLevel) == "" {
		return "", matchup_errors.ErrInvalidInput
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are TennisCoach AI, an expert tennis advisor. Be encouraging and constructive.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildRecommendationPrompt(activity),
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("advice generation failed", zap.Error(err))
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("advice: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildRecommendationPrompt renders the personalized recommendation
// prompt from a player's profile and recent activity.
func BuildRecommendationPrompt(activity PlayerActivity) string {
	style := activity.PlayingStyle
	if style == "" {
		style = "all-court"
	}
	location := activity.Location
	if location == "" {
		location = "Not specified"
	}

	var b strings.Builder
	b.WriteString("PLAYER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", activity.PlayerName)
	fmt.Fprintf(&b, "- Skill Level: %s\n", activity.SkillLevel)
	fmt.Fprintf(&b, "- Playing Style: %s\n", style)
	fmt.Fprintf(&b, "- Preferred Location: %s\n", location)
	fmt.Fprintf(&b, "- Recent Activity: %d bookings in last 30 days\n", activity.RecentBookings)
	if activity.PreferredDay != "" {
		fmt.Fprintf(&b, "- Preferred Day: %s\n", activity.PreferredDay)
	}
	if activity.PreferredTime != "" {
		fmt.Fprintf(&b, "- Preferred Time: %s\n", activity.PreferredTime)
	}
	if len(activity.FavoriteCourts) > 0 {
		fmt.Fprintf(&b, "- Favorite Courts: %s\n", strings.Join(activity.FavoriteCourts, ", "))
	}

	b.WriteString("\nTASK: Based on this player profile, provide 4 specific, actionable recommendations:\n")
	b.WriteString("1. Playing technique improvement based on their skill level\n")
	b.WriteString("2. Strategic booking advice for better court access\n")
	b.WriteString("3. Training routine optimization\n")
	b.WriteString("4. Partner matching strategy\n")
	b.WriteString("\nMake each recommendation specific, practical, and tailored to their profile and activity level.")

	return b.String()
}
