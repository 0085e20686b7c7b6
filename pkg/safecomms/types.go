package safecomms

import "errors"

// Severity is a moderation severity level, used both in results and as the
// replaceSeverity redaction threshold.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ModerationResult is the outcome of a text or image moderation call.
type ModerationResult struct {
	IsClean         bool              `json:"isClean"`
	Severity        Severity          `json:"severity,omitempty"`
	CategoryScores  map[string]string `json:"categoryScores,omitempty"`
	Issues          []Issue           `json:"issues,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	IsBypassAttempt bool              `json:"isBypassAttempt"`
	SafeContent     string            `json:"safeContent,omitempty"`
	Addons          *AddonUsage       `json:"addons,omitempty"`
}

// Issue is a single flagged finding within the submitted content.
type Issue struct {
	Term    string `json:"term,omitempty"`
	Context string `json:"context,omitempty"`
}

// AddonUsage reports which redaction add-ons ran for the request.
type AddonUsage struct {
	ReplacedUnsafe bool `json:"replacedUnsafe"`
	ReplacedPII    bool `json:"replacedPii"`
}

// UsageReport is a point-in-time snapshot of the account's metering counters.
type UsageReport struct {
	Tier            string `json:"tier"`
	RateLimit       int    `json:"rateLimit"`
	TokenLimit      *int   `json:"tokenLimit,omitempty"`
	TokensUsed      int    `json:"tokensUsed"`
	RemainingTokens int    `json:"remainingTokens"`
}

// moderationResponse is the wire shape of a moderation response. IsClean is a
// pointer so that a body missing the field is rejected instead of silently
// decoding to false.
type moderationResponse struct {
	IsClean         *bool             `json:"isClean"`
	Severity        Severity          `json:"severity"`
	CategoryScores  map[string]string `json:"categoryScores"`
	Issues          []Issue           `json:"issues"`
	Reason          string            `json:"reason"`
	IsBypassAttempt bool              `json:"isBypassAttempt"`
	SafeContent     string            `json:"safeContent"`
	Addons          *AddonUsage       `json:"addons"`
}

func (r *moderationResponse) toResult() (*ModerationResult, error) {
	if r.IsClean == nil {
		return nil, &DecodeError{Err: errors.New("response is missing isClean")}
	}
	return &ModerationResult{
		IsClean:         *r.IsClean,
		Severity:        r.Severity,
		CategoryScores:  r.CategoryScores,
		Issues:          r.Issues,
		Reason:          r.Reason,
		IsBypassAttempt: r.IsBypassAttempt,
		SafeContent:     r.SafeContent,
		Addons:          r.Addons,
	}, nil
}

// usageResponse is the wire shape of a usage response, with the same missing
// field guard on tokensUsed.
type usageResponse struct {
	Tier            string `json:"tier"`
	RateLimit       int    `json:"rateLimit"`
	TokenLimit      *int   `json:"tokenLimit"`
	TokensUsed      *int   `json:"tokensUsed"`
	RemainingTokens int    `json:"remainingTokens"`
}

func (r *usageResponse) toReport() (*UsageReport, error) {
	if r.TokensUsed == nil {
		return nil, &DecodeError{Err: errors.New("response is missing tokensUsed")}
	}
	return &UsageReport{
		Tier:            r.Tier,
		RateLimit:       r.RateLimit,
		TokenLimit:      r.TokenLimit,
		TokensUsed:      *r.TokensUsed,
		RemainingTokens: r.RemainingTokens,
	}, nil
}
