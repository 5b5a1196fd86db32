package email

import (
	"context"
	"sync"

	"barterly/internal/logger"

	"github.com/google/uuid"
)

// LogProvider records emails instead of sending them. It is used when no
// SMTP host is configured and in tests.
type LogProvider struct {
	mu   sync.Mutex
	sent []Email
}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Send(ctx context.Context, email *Email) (string, error) {
	id := uuid.NewString()
	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()

	logger.CtxInfo(ctx, "email captured", "id", id, "to", email.To, "subject", email.Subject)
	return id, nil
}

// Sent returns a copy of the captured emails.
func (p *LogProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *LogProvider) Validate() error { return nil }

func (p *LogProvider) Close() error { return nil }
