package safecomms

import (
	"context"
	"net/http"
)

// GetUsage fetches the account's metering counters. The report is a snapshot
// taken by the server at call time.
func (c *Client) GetUsage(ctx context.Context) (*UsageReport, error) {
	var response usageResponse
	err := c.send(ctx, "usage", http.MethodGet, usagePath, "", nil, &response)
	if err != nil {
		return nil, err
	}
	return response.toReport()
}
