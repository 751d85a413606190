// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/meetingharvest/transcript-service/internal/domain"
)

// onlineMeetingList is the filtered onlineMeetings collection response.
type onlineMeetingList struct {
	Value []struct {
		ID         string `json:"id"`
		JoinWebURL string `json:"joinWebUrl"`
	} `json:"value"`
}

// ResolveMeetingID resolves a join URL to the platform's canonical online
// meeting identifier. A join URL is not globally unique across tenants and
// time, so this resolution is mandatory before deduplication.
func (c *Client) ResolveMeetingID(ctx context.Context, userID, joinURL string) (string, error) {
	if userID == "" || joinURL == "" {
		return "", domain.NewValidationError("userID and joinURL are required")
	}

	// The filter expression is encoded exactly once for transport; the
	// server-side decode must yield the raw join URL or the equality
	// comparison can never match.
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("joinWebUrl eq '%s'", joinURL))
	path := fmt.Sprintf("/users/%s/onlineMeetings?%s", userID, query.Encode())

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", domain.NewUpstreamError("failed to resolve online meeting", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domain.NewUpstreamError("failed to resolve online meeting", parseErrorResponse(body))
	}

	var meetings onlineMeetingList
	if err := json.NewDecoder(resp.Body).Decode(&meetings); err != nil {
		return "", domain.NewUpstreamError("failed to decode online meetings response", err)
	}

	if len(meetings.Value) == 0 {
		return "", domain.NewNotFoundError("no online meeting matches join URL")
	}

	return meetings.Value[0].ID, nil
}
