package repository

import (
	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"

	"gorm.io/gorm"
)

// InitSchema migrates all tables and adds the foreign keys AutoMigrate
// cannot express (ON DELETE behavior).
func InitSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&user.User{},
		&conversation.Conversation{},
		&conversation.Participant{},
		&message.Message{},
		&message.ReadStatus{},
		&message.Reaction{},
	)
	if err != nil {
		return err
	}

	constraints := []string{
		`DO $$ BEGIN
			ALTER TABLE conversation_participants
				ADD CONSTRAINT fk_participants_conversation
				FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE conversation_participants
				ADD CONSTRAINT fk_participants_user
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE messages
				ADD CONSTRAINT fk_messages_conversation
				FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE messages
				ADD CONSTRAINT fk_messages_sender
				FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE messages
				ADD CONSTRAINT fk_messages_reply_to
				FOREIGN KEY (reply_to_message_id) REFERENCES messages(id) ON DELETE SET NULL;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE message_read_status
				ADD CONSTRAINT fk_read_status_message
				FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE message_read_status
				ADD CONSTRAINT fk_read_status_user
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE message_reactions
				ADD CONSTRAINT fk_reactions_message
				FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
		`DO $$ BEGIN
			ALTER TABLE message_reactions
				ADD CONSTRAINT fk_reactions_user
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN null; END $$;`,
	}

	for _, c := range constraints {
		if err := db.Exec(c).Error; err != nil {
			return err
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
			ON messages (conversation_id, created_at DESC, id ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user_active
			ON conversation_participants (user_id) WHERE is_active = true;`,
	}
	for _, i := range indexes {
		if err := db.Exec(i).Error; err != nil {
			return err
		}
	}

	return nil
}
