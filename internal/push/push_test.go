package push

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubSender(status int, captured *[]byte) *Sender {
	s := NewSender("pub", "priv", "admin@barterly.app")
	s.send = func(_ context.Context, msg []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
		*captured = msg
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
	}
	return s
}

func TestSenderStatusHandling(t *testing.T) {
	var body []byte
	sub := Subscription{Endpoint: "https://push.example/1", P256dh: "k", Auth: "a"}

	require.NoError(t, stubSender(http.StatusCreated, &body).Send(context.Background(), sub, Payload{Title: "Hi"}))
	assert.Contains(t, string(body), `"title":"Hi"`)

	err := stubSender(http.StatusGone, &body).Send(context.Background(), sub, Payload{})
	assert.ErrorIs(t, err, ErrSubscriptionGone)

	err = stubSender(http.StatusNotFound, &body).Send(context.Background(), sub, Payload{})
	assert.ErrorIs(t, err, ErrSubscriptionGone)

	err = stubSender(http.StatusInternalServerError, &body).Send(context.Background(), sub, Payload{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubscriptionGone)
}

func TestDisabledSender(t *testing.T) {
	s := NewSender("", "", "")
	assert.False(t, s.Enabled())
	assert.Empty(t, s.PublicKey())
	assert.NoError(t, s.Send(context.Background(), Subscription{}, Payload{}))
}

func TestSubscriberGetsMailtoPrefix(t *testing.T) {
	assert.Equal(t, "mailto:ops@barterly.app", NewSender("p", "k", "ops@barterly.app").subscriber)
	assert.Equal(t, "https://barterly.app", NewSender("p", "k", "https://barterly.app").subscriber)
}
