package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

func TestClient_GetName(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, "url", "token", "phone-id", nil)
	assert.Equal(t, "whatsapp", client.GetName())
}

func TestClient_SendText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/test-phone-id/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		bodyBytes, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var reqBody sendMessageRequest
		require.NoError(t, json.Unmarshal(bodyBytes, &reqBody))
		assert.Equal(t, "whatsapp", reqBody.MessagingProduct)
		assert.Equal(t, "+15551234567", reqBody.To)
		assert.Equal(t, "text", reqBody.Type)
		assert.Equal(t, "Hello from test", reqBody.Text.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"messaging_product":"whatsapp","messages":[{"id":"wamid.abc123"}]}`)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", server.Client())

	result, err := client.SendText(context.Background(), "+15551234567", "Hello from test")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "wamid.abc123", result.MessageID)
}

func TestClient_SendText_InvalidNumberNoNetworkCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", server.Client())

	result, err := client.SendText(context.Background(), "5511999999999", "no plus sign")
	assert.ErrorIs(t, err, domain.ErrInvalidPhoneNumber)
	assert.Nil(t, result)
	assert.False(t, called, "provider must not be called for an invalid number")
}

func TestClient_SendText_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid recipient","type":"OAuthException","code":131026}}`)
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", server.Client())

	result, err := client.SendText(context.Background(), "+15551234567", "Hi")
	require.Error(t, err)
	assert.Nil(t, result)

	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "invalid recipient")
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestClient_SendText_NonJSONErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "upstream exploded")
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", server.Client())

	_, err := client.SendText(context.Background(), "+15551234567", "Hi")
	var provErr *domain.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "upstream exploded")
}

func TestClient_SendText_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // close immediately to force a connection error

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", nil)

	result, err := client.SendText(context.Background(), "+15551234567", "Hi")
	require.Error(t, err)
	assert.Nil(t, result)

	var transportErr *domain.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestClient_SendText_UnparsableSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(logger, server.URL, "test-token", "test-phone-id", server.Client())

	result, err := client.SendText(context.Background(), "+15551234567", "Hi")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.MessageID)
}
