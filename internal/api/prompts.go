package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/dagchat/internal/models"
)

// ListPrompts returns every saved prompt.
func (c *Client) ListPrompts(ctx context.Context) (*models.PromptsResult, error) {
	raw, err := c.do(ctx, http.MethodGet, models.EndpointPrompts, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.PromptsResult
	if err := decode(models.EndpointPrompts, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePrompt saves a new prompt.
func (c *Client) CreatePrompt(ctx context.Context, in models.PromptInput) (*models.CreatePromptResult, error) {
	raw, err := c.do(ctx, http.MethodPost, models.EndpointPrompts, nil, in)
	if err != nil {
		return nil, err
	}

	var out models.CreatePromptResult
	if err := decode(models.EndpointPrompts, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateDAG asks the server to produce a DAG from a saved prompt. This
// call blocks for as long as the model takes.
func (c *Client) GenerateDAG(ctx context.Context, id int64) (*models.GenerateResult, error) {
	path := models.GeneratePath(id)
	raw, err := c.do(ctx, http.MethodPost, path, nil, struct{}{})
	if err != nil {
		return nil, err
	}

	var out models.GenerateResult
	if err := decode(path, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePrompt removes a saved prompt.
func (c *Client) DeletePrompt(ctx context.Context, id int64) (*models.StatusResult, error) {
	path := models.PromptPath(id)
	raw, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out models.StatusResult
	if err := decode(path, raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
