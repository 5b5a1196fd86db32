package email

import "time"

// SMTPConfig holds SMTP server settings
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:      "localhost",
		Port:      587,
		FromEmail: "onboarding@barterly.app",
		FromName:  "Barterly",
		Timeout:   30 * time.Second,
	}
}
