// ABOUTME: Authentication and account endpoints
// ABOUTME: JWT token obtain/refresh, current user, registration, organization onboarding and profile
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/salescrm/models"
)

// TokenPair is the JWT pair issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// ObtainToken exchanges credentials for a token pair. The username is the account email.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "password": password}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/token/", nil, body, &pair); err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}
	return &pair, nil
}

// RefreshToken trades a refresh token for a new access token. When the backend
// rotates refresh tokens the new one is returned too; otherwise Refresh echoes the input.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	body := map[string]string{"refresh": refresh}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/token/refresh/", nil, body, &pair); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}
	return &pair, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/v1/me/", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}

// Registration is the sign-up payload. Creating an organization makes the new user its admin.
type Registration struct {
	Email                   string `json:"email"`
	Password                string `json:"password"`
	ConfirmPassword         string `json:"confirm_password"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name"`
	CreateOrganization      bool   `json:"create_organization"`
	OrganizationName        string `json:"organization_name,omitempty"`
	OrganizationDescription string `json:"organization_description,omitempty"`
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, reg Registration) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/register/", nil, reg, &user); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &user, nil
}

// CreateOrganization creates an organization for a user that has none and joins it.
func (c *Client) CreateOrganization(ctx context.Context, name, description string) (*models.Organization, error) {
	body := map[string]string{"name": name, "description": description}

	var org models.Organization
	if err := c.do(ctx, http.MethodPost, "/api/v1/create-organization/", nil, body, &org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return &org, nil
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateProfile patches the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPatch, "/api/v1/profile/update/", nil, p, &user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// ChangePassword sets a new password for the current user.
func (c *Client) ChangePassword(ctx context.Context, current, next, confirm string) error {
	body := map[string]string{
		"current_password": current,
		"new_password":     next,
		"confirm_password": confirm,
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/change-password/", nil, body, nil); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}
