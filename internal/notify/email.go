package notify

import (
	"context"
	"fmt"

	"matchup-chat/internal/config"
	"matchup-chat/internal/domain/conversation"
	"matchup-chat/internal/domain/message"
	"matchup-chat/internal/domain/user"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Notifier is the outbound notification hook fired after a message commits.
type Notifier interface {
	NewMessage(ctx context.Context, recipients []user.User, sender user.User, conv conversation.Conversation, msg message.Message) error
}

type EmailNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: logger}
}

func (n *EmailNotifier) NewMessage(ctx context.Context, recipients []user.User, sender user.User, conv conversation.Conversation, msg message.Message) error {
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New message from %s", sender.FullName)
	if conv.ConversationType == conversation.TypeGroup && conv.Title.Valid {
		subject = fmt.Sprintf("New message in %s", conv.Title.String)
	}
	body := fmt.Sprintf("<p><strong>%s</strong></p><p>%s</p>", sender.FullName, msg.Preview(200))

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)

	for _, recipient := range recipients {
		m := gomail.NewMessage()
		m.SetHeader("From", n.cfg.From)
		m.SetHeader("To", recipient.Email)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", body)

		if err := d.DialAndSend(m); err != nil {
			if n.logger != nil {
				n.logger.Warn("email notification failed",
					zap.String("to", recipient.Email),
					zap.Int64("message_id", msg.ID),
					zap.Error(err))
			}
			return err
		}
	}
	return nil
}

// SendTest delivers a single plain message, used by the email diagnostic.
func (n *EmailNotifier) SendTest(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	return d.DialAndSend(m)
}
