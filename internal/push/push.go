// Package push delivers web push notifications with VAPID.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrSubscriptionGone means the push service no longer accepts the
// subscription and it should be deleted.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Subscription is a browser push endpoint with its keys.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Payload is the JSON body the service worker receives.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type sendFunc func(ctx context.Context, msg []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// Sender signs and sends push messages.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	send       sendFunc
}

// NewSender returns nil when keys are not configured; a nil *Sender is
// a valid disabled sender.
func NewSender(publicKey, privateKey, subscriber string) *Sender {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	if subscriber != "" && !strings.HasPrefix(subscriber, "mailto:") && !strings.HasPrefix(subscriber, "https:") {
		subscriber = "mailto:" + subscriber
	}
	return &Sender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        60,
		send:       webpush.SendNotificationWithContext,
	}
}

func (s *Sender) Enabled() bool {
	return s != nil
}

func (s *Sender) PublicKey() string {
	if s == nil {
		return ""
	}
	return s.publicKey
}

// Send delivers one payload. A 404 or 410 from the push service returns
// ErrSubscriptionGone.
func (s *Sender) Send(ctx context.Context, sub Subscription, payload Payload) error {
	if s == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	resp, err := s.send(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}

// GenerateKeys returns a new VAPID key pair (private, public).
func GenerateKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
