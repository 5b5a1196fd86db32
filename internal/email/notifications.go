package email

import (
	"fmt"

	"barterly/internal/models"
)

var subjects = map[models.NotificationType]func(sender string) string{
	models.NotificationBarterRequest: func(s string) string {
		return fmt.Sprintf("New Barter Request from %s", s)
	},
	models.NotificationBarterAccepted: func(s string) string {
		return fmt.Sprintf("%s accepted your barter request!", s)
	},
	models.NotificationBarterDeclined: func(string) string {
		return "Barter request update"
	},
	models.NotificationNewMessage: func(s string) string {
		return fmt.Sprintf("New message from %s", s)
	},
}

// Subject returns the fixed subject line of a notification kind.
func Subject(kind models.NotificationType, senderName string) (string, error) {
	fn, ok := subjects[kind]
	if !ok {
		return "", fmt.Errorf("no email template for notification type %q", kind)
	}
	return fn(senderName), nil
}

// BuildNotification renders the email for one notification kind.
func BuildNotification(r TemplateRenderer, kind models.NotificationType, to, senderName, appURL string) (*Email, error) {
	subject, err := Subject(kind, senderName)
	if err != nil {
		return nil, err
	}
	html, err := r.Render(string(kind), TemplateData{
		"SenderName": senderName,
		"AppURL":     appURL,
	})
	if err != nil {
		return nil, err
	}
	return &Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	}, nil
}
