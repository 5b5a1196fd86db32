package email

import "context"

// Provider delivers rendered emails.
type Provider interface {
	// Send delivers the email and returns the provider's message id.
	Send(ctx context.Context, email *Email) (string, error)

	Validate() error

	Close() error
}

// TemplateRenderer renders a named HTML template.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
}
