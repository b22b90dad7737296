package whatsapp

import "context"

// SendResult holds the outcome of a successful send attempt. The provider's
// response payload is not interpreted beyond extracting the message ID.
type SendResult struct {
	MessageID string // ID assigned by the provider, empty if unparsable
}

// Sender defines the interface for delivering a text message to a phone
// number through a messaging provider.
type Sender interface {
	SendText(ctx context.Context, to, body string) (*SendResult, error)
	GetName() string
}
