package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPhoneNumber indicates a phone number that is not in
	// international format.
	ErrInvalidPhoneNumber = errors.New("invalid phone number: use international format, e.g. +15551234567")
	// ErrReminderNotFound indicates that a requested reminder was not found.
	ErrReminderNotFound = errors.New("reminder not found")
)

// ProviderError indicates the messaging provider rejected a send request.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("whatsapp api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("whatsapp api error (status %d)", e.StatusCode)
}

// TransportError indicates a network-level failure talking to the provider.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("whatsapp api request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
