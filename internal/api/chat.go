package api

import (
	"context"
	"net/url"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/models"
)

// CreateSession asks the server for a chat session id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, models.EndpointSession, nil, nil)
	if err != nil {
		return "", err
	}

	var out models.SessionResponse
	if err := decode(models.EndpointSession, raw, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", apierrors.NewParseError(models.EndpointSession, "missing session_id", nil)
	}
	return out.SessionID, nil
}

// ModelConfig returns the configured default model, or nil when the server
// has none.
func (c *Client) ModelConfig(ctx context.Context) (*models.ModelInfo, error) {
	raw, err := c.do(ctx, http.MethodGet, models.EndpointModelConfig, nil, nil)
	if err != nil {
		return nil, err
	}

	info, err := models.ParseModelConfig(raw)
	if err != nil {
		return nil, apierrors.NewParseError(models.EndpointModelConfig, "invalid model config", err)
	}
	return info, nil
}

// History returns the stored transcript of a session.
func (c *Client) History(ctx context.Context, sessionID string) (*models.HistoryResult, error) {
	if sessionID == "" {
		return nil, apierrors.ErrNoSession
	}

	query := url.Values{"session_id": {sessionID}}
	raw, err := c.do(ctx, http.MethodGet, models.EndpointHistory, query, nil)
	if err != nil {
		return nil, err
	}

	var out models.HistoryResult
	if err := decode(models.EndpointHistory, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage posts a user message and returns the server's verdict. A
// reply with Success false is not an error: callers read Error from it.
func (c *Client) SendMessage(ctx context.Context, text, sessionID string) (*models.SendResult, error) {
	payload := models.SendRequest{Message: text, SessionID: sessionID}
	raw, err := c.do(ctx, http.MethodPost, models.EndpointMessage, nil, payload)
	if err != nil {
		return nil, err
	}

	var out models.SendResult
	if err := decode(models.EndpointMessage, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
