package safecomms

// ModerationOptions carries the optional parameters of a text moderation
// call. The zero value sends none of them, leaving every default to the
// server.
type ModerationOptions struct {
	// Language is an ISO language code. When empty the server picks one.
	Language string `json:"language,omitempty" mapstructure:"language"`

	// Replace asks the server to return the text with flagged spans redacted.
	Replace *bool `json:"replace,omitempty" mapstructure:"replace"`

	// PII enables scanning for personally identifiable information.
	PII *bool `json:"pii,omitempty" mapstructure:"pii"`

	// ReplaceSeverity is the minimum severity that gets redacted.
	ReplaceSeverity Severity `json:"replaceSeverity,omitempty" mapstructure:"replace_severity"`

	// ModerationProfileID selects a server-side rule profile.
	ModerationProfileID string `json:"moderationProfileId,omitempty" mapstructure:"moderation_profile_id"`
}

// ImageModerationOptions carries the optional parameters of an image
// moderation call.
type ImageModerationOptions struct {
	Language            string `json:"language,omitempty" mapstructure:"language"`
	ModerationProfileID string `json:"moderationProfileId,omitempty" mapstructure:"moderation_profile_id"`
	EnableOCR           *bool  `json:"enableOcr,omitempty" mapstructure:"enable_ocr"`
	EnhancedOCR         *bool  `json:"enhancedOcr,omitempty" mapstructure:"enhanced_ocr"`
	ExtractMetadata     *bool  `json:"extractMetadata,omitempty" mapstructure:"extract_metadata"`
}

// Bool returns a pointer to v, for setting optional boolean fields.
func Bool(v bool) *bool {
	return &v
}
