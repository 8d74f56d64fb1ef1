// Package notify delivers one-time codes announced on the user event stream.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/services/shared/events"
	"github.com/storefront/services/shared/logging"
)

// Sender hands a message to an email or SMS gateway.
type Sender interface {
	Send(ctx context.Context, channel, destination, message string) error
}

// LogSender writes messages to the log instead of a gateway. It is the
// sender used until a real provider is configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, channel, destination, message string) error {
	s.log.Debug(ctx, "notification", "channel", channel, "destination", destination, "message", message)
	return nil
}

// OTPDispatcher consumes user events and sends issued codes.
type OTPDispatcher struct {
	sender Sender
	log    logging.Logger
}

func NewOTPDispatcher(sender Sender, log logging.Logger) *OTPDispatcher {
	return &OTPDispatcher{sender: sender, log: log}
}

// HandleUserEvent is the Redis stream subscriber handler. Events other than
// otp.issued are acknowledged and ignored.
func (d *OTPDispatcher) HandleUserEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.OTPIssued {
		return nil
	}

	var data events.OTPIssuedEvent
	if err := events.Decode(event, &data); err != nil {
		return err
	}
	if !data.ExpiresAt.IsZero() && time.Now().After(data.ExpiresAt) {
		d.log.Info(ctx, "skipping expired otp", "channel", data.Channel)
		return nil
	}

	msg := fmt.Sprintf("Your verification code is %s.", data.Code)
	if err := d.sender.Send(ctx, data.Channel, data.Destination, msg); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	d.log.Info(ctx, "otp sent", "channel", data.Channel)
	return nil
}
