package services

import (
	"context"
	"testing"

	"matchup-chat/internal/config"
	matchup_errors "matchup-chat/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestAdviceServiceDisabledWithoutAPIKey(t *testing.T) {
	svc := NewAdviceService(config.OpenAIConfig{}, nil)
	assert.False(t, svc.Enabled())

	_, err := svc.Recommend(context.Background(), PlayerActivity{
		PlayerName: "Alice",
		SkillLevel: "intermediate",
	})
	assert.ErrorIs(t, err, matchup_errors.ErrInvalidState)
}

func TestBuildRecommendationPrompt(t *testing.T) {
	prompt := BuildRecommendationPrompt(PlayerActivity{
		PlayerName:     "Alice",
		SkillLevel:     "intermediate",
		RecentBookings: 7,
		PreferredDay:   "Saturday",
		FavoriteCourts: []string{"Center Court", "Court 2"},
	})

	assert.Contains(t, prompt, "PLAYER PROFILE:")
	assert.Contains(t, prompt, "- Name: Alice")
	assert.Contains(t, prompt, "- Skill Level: intermediate")
	assert.Contains(t, prompt, "- Playing Style: all-court")
	assert.Contains(t, prompt, "- Preferred Location: Not specified")
	assert.Contains(t, prompt, "- Recent Activity: 7 bookings in last 30 days")
	assert.Contains(t, prompt, "- Preferred Day: Saturday")
	assert.Contains(t, prompt, "- Favorite Courts: Center Court, Court 2")
	assert.Contains(t, prompt, "4 specific, actionable recommendations")
	assert.NotContains(t, prompt, "- Preferred Time:")
}
