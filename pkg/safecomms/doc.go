// Package safecomms is a Go client for the SafeComms content-moderation API:
// text and image analysis for harmful content, PII detection, and usage
// metering.
//
// A Client is immutable after construction and safe for concurrent use. Every
// operation is a single request/response round trip; there are no retries and
// no caching. Failures surface as typed errors (ValidationError,
// NetworkError, AuthenticationError, RateLimitError, ServerError,
// DecodeError) that callers can branch on with errors.As.
//
// Basic usage:
//
//	client, err := safecomms.NewClient(os.Getenv("SAFECOMMS_API_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := client.ModerateText(ctx, "some user content", &safecomms.ModerationOptions{
//		PII:     safecomms.Bool(true),
//		Replace: safecomms.Bool(true),
//	})
package safecomms
