package safecomms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// textModerationRequest is the wire shape of a text moderation request.
// Optional fields are omitted entirely when unset so that server-side
// defaults apply.
type textModerationRequest struct {
	Content             string   `json:"content"`
	Language            string   `json:"language,omitempty"`
	Replace             *bool    `json:"replace,omitempty"`
	PII                 *bool    `json:"pii,omitempty"`
	ReplaceSeverity     Severity `json:"replaceSeverity,omitempty"`
	ModerationProfileID string   `json:"moderationProfileId,omitempty"`
}

// ModerateText analyzes text for harmful content. opts may be nil, in which
// case the server defaults apply for every optional parameter.
func (c *Client) ModerateText(
	ctx context.Context,
	text string,
	opts *ModerationOptions,
) (*ModerationResult, error) {
	if text == "" {
		return nil, &ValidationError{Field: "text", Reason: "must not be empty"}
	}

	request := textModerationRequest{Content: text}
	if opts != nil {
		request.Language = opts.Language
		request.Replace = opts.Replace
		request.PII = opts.PII
		request.ReplaceSeverity = opts.ReplaceSeverity
		request.ModerationProfileID = opts.ModerationProfileID
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var response moderationResponse
	err = c.send(
		ctx,
		"moderate_text",
		http.MethodPost,
		moderationTextPath,
		"application/json",
		bytes.NewReader(body),
		&response,
	)
	if err != nil {
		return nil, err
	}
	return response.toResult()
}
