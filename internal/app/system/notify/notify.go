// Package notify is the push message dispatch capability. Delivery itself is
// external; the app only needs a Sender.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrInvalidToken reports that the device token is no longer registered.
// Callers should forget the token.
var ErrInvalidToken = errors.New("notify: device token is invalid")

// Message is one push notification.
type Message struct {
	Token string
	Title string
	Body  string
	// Data is delivered to the app alongside the visible notification.
	Data map[string]string
}

// Sender delivers messages to device tokens.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is the
// sender used when no push provider is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	if msg.Token == "" {
		return ErrInvalidToken
	}
	s.Log.Info("push notification",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data))
	return nil
}
