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

// DirectoryUser is a user entry from the organization directory.
type DirectoryUser struct {
	ID                string `json:"id"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// EmailAddress returns the best address for the user: the mail attribute
// when set, the principal name otherwise.
func (u *DirectoryUser) EmailAddress() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

// teamsServicePlans are the service plan names that indicate a user is
// licensed to host online meetings, covering the standalone Teams plan and
// the bundles that include it.
var teamsServicePlans = map[string]struct{}{
	"MCOSTANDARD":         {},
	"MCOEV":               {},
	"TEAMS1":              {},
	"ENTERPRISEPACK":      {},
	"ENTERPRISEPREMIUM":   {},
	"ENTERPRISEWITHSCAL":  {},
	"STANDARDPACK":        {},
	"STANDARDWOFFPACK":    {},
	"BUSINESS_PREMIUM":    {},
	"M365_BUSINESS_BASIC": {},
	"M365_BUSINESS_STD":   {},
	"M365_E3":             {},
	"M365_E5":             {},
	"SPE_E3":              {},
	"SPE_E5":              {},
	"DEVELOPERPACK":       {},
}

// GetUserObjectID resolves a user's directory object ID from their email
// address.
func (c *Client) GetUserObjectID(ctx context.Context, email string) (string, error) {
	path := fmt.Sprintf("/users/%s", url.PathEscape(email))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", domain.NewUpstreamError("failed to look up user", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.NewNotFoundError(fmt.Sprintf("user not found: %s", email))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", domain.NewUpstreamError("failed to look up user", parseErrorResponse(body))
	}

	var user DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", domain.NewUpstreamError("failed to decode user response", err)
	}
	if user.ID == "" {
		return "", domain.NewNotFoundError(fmt.Sprintf("user has no object ID: %s", email))
	}

	return user.ID, nil
}

// ListUsers walks the full organization directory, following pagination
// links until the directory is exhausted.
func (c *Client) ListUsers(ctx context.Context) ([]DirectoryUser, error) {
	var users []DirectoryUser

	path := "/users?$top=999&$select=id,mail,userPrincipalName"
	for path != "" {
		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, domain.NewUpstreamError("failed to list users", err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			return nil, domain.NewUpstreamError("failed to list users", parseErrorResponse(body))
		}

		var page struct {
			Value    []DirectoryUser `json:"value"`
			NextLink string          `json:"@odata.nextLink"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			_ = resp.Body.Close()
			return nil, domain.NewUpstreamError("failed to decode user page", err)
		}
		_ = resp.Body.Close()

		users = append(users, page.Value...)
		path = page.NextLink
	}

	return users, nil
}

// UserCanHostMeetings reports whether the user holds a provisioned Teams
// service plan. Users without one never produce transcripts, so they are
// excluded from subscription management.
func (c *Client) UserCanHostMeetings(ctx context.Context, userID string) (bool, error) {
	path := fmt.Sprintf("/users/%s/licenseDetails", userID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, domain.NewUpstreamError("failed to fetch license details", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, domain.NewUpstreamError("failed to fetch license details", parseErrorResponse(body))
	}

	var details struct {
		Value []struct {
			ServicePlans []struct {
				ServicePlanName    string `json:"servicePlanName"`
				ProvisioningStatus string `json:"provisioningStatus"`
			} `json:"servicePlans"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return false, domain.NewUpstreamError("failed to decode license details", err)
	}

	for _, license := range details.Value {
		for _, plan := range license.ServicePlans {
			if _, ok := teamsServicePlans[plan.ServicePlanName]; ok && plan.ProvisioningStatus == "Success" {
				return true, nil
			}
		}
	}

	return false, nil
}
