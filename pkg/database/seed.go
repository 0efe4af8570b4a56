package database

import (
	"database/sql"
	"fmt"
	"time"

	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	AdminUser     *user.User
	DemoUsers     []*user.User
	Conversations []*conversation.Conversation
	Messages      []*message.Message
}

// SeedProduction ensures the platform admin account exists.
func SeedProduction(adminEmail, adminPassword string) (*user.User, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var existing user.User
	err := DB.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := user.User{
		Email:        adminEmail,
		FullName:     "Platform Admin",
		UserType:     user.TypeAdmin,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// SeedDevelopment creates demo players, a demo owner, a direct conversation
// between the two players and a short message history, so a fresh instance
// has something to click through.
func SeedDevelopment() (*SeedResult, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}

	admin, err := SeedProduction("admin@tennismatchup.app", "Admin@123!")
	if err != nil {
		return nil, err
	}
	result := &SeedResult{AdminUser: admin}

	demo := []struct {
		email, name, userType string
	}{
		{"rafa@tennismatchup.app", "Rafael Morales", user.TypePlayer},
		{"serena.k@tennismatchup.app", "Serena Kovac", user.TypePlayer},
		{"courts@bakerpark.example", "Baker Park Courts", user.TypeOwner},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Demo@123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for _, d := range demo {
		u := user.User{
			Email:        d.email,
			FullName:     d.name,
			UserType:     d.userType,
			PasswordHash: string(hash),
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
		err := DB.Where("email = ?", d.email).FirstOrCreate(&u, user.User{Email: d.email}).Error
		if err != nil {
			return nil, err
		}
		result.DemoUsers = append(result.DemoUsers, &u)
	}

	if len(result.DemoUsers) < 2 {
		return result, nil
	}
	playerA, playerB := result.DemoUsers[0], result.DemoUsers[1]

	var count int64
	DB.Model(&conversation.Conversation{}).Count(&count)
	if count > 0 {
		return result, nil
	}

	conv := conversation.Conversation{
		ConversationType: conversation.TypeDirect,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := DB.Create(&conv).Error; err != nil {
		return nil, err
	}
	for _, uid := range []int64{playerA.ID, playerB.ID} {
		p := conversation.Participant{
			ConversationID: conv.ID,
			UserID:         uid,
			Role:           conversation.RoleParticipant,
			JoinedAt:       time.Now(),
			IsActive:       true,
		}
		if err := DB.Create(&p).Error; err != nil {
			return nil, err
		}
	}
	result.Conversations = append(result.Conversations, &conv)

	lines := []struct {
		sender  int64
		content string
	}{
		{playerA.ID, "Hey! Up for a match at Baker Park on Saturday?"},
		{playerB.ID, "Saturday works. Morning slot before it gets hot?"},
		{playerA.ID, "Booked court 3 for 9am. See you there."},
	}
	for _, l := range lines {
		m := message.Message{
			ConversationID: sql.NullInt64{Int64: conv.ID, Valid: true},
			SenderID:       l.sender,
			Content:        l.content,
			CreatedAt:      time.Now(),
		}
		if err := DB.Create(&m).Error; err != nil {
			return nil, err
		}
		result.Messages = append(result.Messages, &m)
	}

	return result, nil
}
