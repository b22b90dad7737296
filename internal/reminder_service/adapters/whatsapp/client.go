package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shoplist-app/reminder-service/internal/reminder_service/domain"
)

// Client sends text messages through the WhatsApp Cloud API
// (graph.facebook.com). Credentials are injected at construction.
type Client struct {
	logger        *slog.Logger
	httpClient    *http.Client
	apiBaseURL    string
	accessToken   string
	phoneNumberID string
}

func NewClient(logger *slog.Logger, apiBaseURL, accessToken, phoneNumberID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		logger:        logger.With("provider", "whatsapp"),
		httpClient:    httpClient,
		apiBaseURL:    apiBaseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
	}
}

// sendMessageRequest is the Cloud API body for a text message.
type sendMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textPayload `json:"text"`
}

type textPayload struct {
	Body string `json:"body"`
}

// sendMessageResponse covers the fields we care about from a 2xx response.
type sendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// apiErrorResponse is the Graph API error envelope.
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers one text message. The destination is validated before
// any network call; exactly one attempt is made, retries are the caller's
// responsibility.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResult, error) {
	if err := domain.ValidatePhoneNumber(to); err != nil {
		c.logger.WarnContext(ctx, "Refusing to send to invalid phone number", "recipient", to)
		return nil, err
	}

	reqBody := sendMessageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textPayload{Body: body},
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal whatsapp request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiBaseURL, c.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create whatsapp request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	c.logger.DebugContext(ctx, "Sending message via WhatsApp Cloud API", "recipient", to, "body_length", len(body))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "WhatsApp request failed", "recipient", to, "error", err)
		return nil, &domain.TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to read WhatsApp response body", "status_code", httpResp.StatusCode, "error", err)
		return nil, &domain.TransportError{Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		provErr := &domain.ProviderError{StatusCode: httpResp.StatusCode}
		var apiErr apiErrorResponse
		if err := json.Unmarshal(respBytes, &apiErr); err == nil && apiErr.Error.Message != "" {
			provErr.Message = apiErr.Error.Message
		} else if len(respBytes) > 0 && len(respBytes) < 200 {
			provErr.Message = string(respBytes)
		}
		c.logger.WarnContext(ctx, "WhatsApp send rejected by provider", "recipient", to, "status_code", httpResp.StatusCode, "provider_message", provErr.Message)
		return nil, provErr
	}

	var resp sendMessageResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		// 2xx with an unexpected body still counts as a successful submission.
		c.logger.WarnContext(ctx, "Sent via WhatsApp but could not parse response body", "status_code", httpResp.StatusCode, "error", err)
		return &SendResult{}, nil
	}

	result := &SendResult{}
	if len(resp.Messages) > 0 {
		result.MessageID = resp.Messages[0].ID
	}
	c.logger.InfoContext(ctx, "Message sent via WhatsApp", "recipient", to, "provider_message_id", result.MessageID)
	return result, nil
}

func (c *Client) GetName() string {
	return "whatsapp"
}
