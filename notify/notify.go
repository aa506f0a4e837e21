package notify

import (
	"context"
	"errors"
	"log"
)

// ErrSendFailed is an exported constant or variable used by the authentication engine.
var ErrSendFailed = errors.New("notification send failed")

// Channel identifies a delivery channel for one-time codes.
type Channel string

const (
	// ChannelEmail is an exported constant or variable used by the authentication engine.
	ChannelEmail Channel = "email"
	// ChannelSMS is an exported constant or variable used by the authentication engine.
	ChannelSMS Channel = "sms"
	// ChannelWhatsApp is an exported constant or variable used by the authentication engine.
	ChannelWhatsApp Channel = "whatsapp"
)

// Sender delivers one-time codes to users. Implementations wrap whatever
// provider the application uses (SMTP relay, SMS gateway, WhatsApp API).
type Sender interface {
	Send(ctx context.Context, channel Channel, target, message string) error
}

// LogSender writes notifications to the process log instead of delivering
// them. Development use only: codes end up in plaintext logs.
type LogSender struct{}

// Send describes the send operation and its observable behavior.
//
// Send does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (LogSender) Send(_ context.Context, channel Channel, target, message string) error {
	log.Printf("goAuthKit: notify %s -> %s: %s", channel, target, message)
	return nil
}
