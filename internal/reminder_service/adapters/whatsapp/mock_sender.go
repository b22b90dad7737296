package whatsapp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

// MockSender is a test implementation of Sender. It is also usable as a
// dry-run sender when no WhatsApp credentials are configured.
type MockSender struct {
	logger         *slog.Logger
	FailSend       bool          // simulate a provider rejection
	SimulatedDelay time.Duration // simulate network latency
}

func NewMockSender(logger *slog.Logger, failSend bool, delay time.Duration) *MockSender {
	return &MockSender{
		logger:         logger.With("provider", "mock"),
		FailSend:       failSend,
		SimulatedDelay: delay,
	}
}

func (m *MockSender) SendText(ctx context.Context, to, body string) (*SendResult, error) {
	if err := domain.ValidatePhoneNumber(to); err != nil {
		return nil, err
	}

	if m.SimulatedDelay > 0 {
		select {
		case <-time.After(m.SimulatedDelay):
		case <-ctx.Done():
			return nil, &domain.TransportError{Err: ctx.Err()}
		}
	}

	if m.FailSend {
		m.logger.WarnContext(ctx, "MockSender: simulated send failure", "recipient", to)
		return nil, &domain.ProviderError{StatusCode: 400, Message: "mock provider simulated send failure"}
	}

	messageID := "mock-" + uuid.NewString()
	m.logger.InfoContext(ctx, "MockSender: message sent (simulated)", "recipient", to, "provider_message_id", messageID)
	return &SendResult{MessageID: messageID}, nil
}

func (m *MockSender) GetName() string {
	return "mock"
}
