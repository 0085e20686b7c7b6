package safecomms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// imageModerationRequest is the wire shape of an image moderation request.
// The image is base64 encoded.
type imageModerationRequest struct {
	Image               string `json:"image"`
	Language            string `json:"language,omitempty"`
	ModerationProfileID string `json:"moderationProfileId,omitempty"`
	EnableOCR           *bool  `json:"enableOcr,omitempty"`
	EnhancedOCR         *bool  `json:"enhancedOcr,omitempty"`
	ExtractMetadata     *bool  `json:"extractMetadata,omitempty"`
}

// ModerateImage analyzes a base64-encoded image. opts may be nil.
func (c *Client) ModerateImage(
	ctx context.Context,
	image string,
	opts *ImageModerationOptions,
) (*ModerationResult, error) {
	if image == "" {
		return nil, &ValidationError{Field: "image", Reason: "must not be empty"}
	}

	request := imageModerationRequest{Image: image}
	if opts != nil {
		request.Language = opts.Language
		request.ModerationProfileID = opts.ModerationProfileID
		request.EnableOCR = opts.EnableOCR
		request.EnhancedOCR = opts.EnhancedOCR
		request.ExtractMetadata = opts.ExtractMetadata
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var response moderationResponse
	err = c.send(
		ctx,
		"moderate_image",
		http.MethodPost,
		moderationImagePath,
		"application/json",
		bytes.NewReader(body),
		&response,
	)
	if err != nil {
		return nil, err
	}
	return response.toResult()
}

// ModerateImageFile reads an image from disk and uploads it as multipart form
// data. Optional parameters are sent as form values only when set.
func (c *Client) ModerateImageFile(
	ctx context.Context,
	path string,
	opts *ImageModerationOptions,
) (*ModerationResult, error) {
	if path == "" {
		return nil, &ValidationError{Field: "path", Reason: "must not be empty"}
	}

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Field: "path", Reason: "failed to read file: " + err.Error()}
	}

	fileName := filepath.Base(path)
	if fileName == "." || fileName == string(filepath.Separator) {
		fileName = "image.jpg"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("image", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	if opts != nil {
		fields := map[string]string{}
		if opts.Language != "" {
			fields["language"] = opts.Language
		}
		if opts.ModerationProfileID != "" {
			fields["moderationProfileId"] = opts.ModerationProfileID
		}
		if opts.EnableOCR != nil {
			fields["enableOcr"] = strconv.FormatBool(*opts.EnableOCR)
		}
		if opts.EnhancedOCR != nil {
			fields["enhancedOcr"] = strconv.FormatBool(*opts.EnhancedOCR)
		}
		if opts.ExtractMetadata != nil {
			fields["extractMetadata"] = strconv.FormatBool(*opts.ExtractMetadata)
		}
		for name, value := range fields {
			if err := form.WriteField(name, value); err != nil {
				return nil, fmt.Errorf("failed to build form: %w", err)
			}
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	var response moderationResponse
	err = c.send(
		ctx,
		"moderate_image_upload",
		http.MethodPost,
		moderationImageUploadPath,
		form.FormDataContentType(),
		&buf,
		&response,
	)
	if err != nil {
		return nil, err
	}
	return response.toResult()
}
