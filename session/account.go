// ABOUTME: Registration and settings operations with the checks the forms apply before submitting
// ABOUTME: Sign-up, profile name changes and password changes
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/models"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// InputError is a form rejected before any request is made.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func inputErr(msg string) error { return &InputError{Message: msg} }

// Register creates an account. It does not log in; the user logs in afterwards.
func (s *Session) Register(ctx context.Context, reg api.Registration) (*models.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.OrganizationName = strings.TrimSpace(reg.OrganizationName)

	switch {
	case reg.Email == "":
		return nil, inputErr("Email is required")
	case reg.Password != reg.ConfirmPassword:
		return nil, inputErr("Passwords do not match")
	case len(reg.Password) < MinPasswordLength:
		return nil, inputErr(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	case reg.FirstName == "" || reg.LastName == "":
		return nil, inputErr("First name and last name are required")
	case reg.CreateOrganization && reg.OrganizationName == "":
		return nil, inputErr("Organization name is required when creating an organization")
	}
	if !reg.CreateOrganization {
		reg.OrganizationName = ""
		reg.OrganizationDescription = ""
	}

	user, err := s.base.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("registered", "email", reg.Email, "organization", reg.CreateOrganization)
	return user, nil
}

// UpdateProfile changes the user's name and refreshes the session user.
func (s *Session) UpdateProfile(ctx context.Context, first, last string) (*models.User, error) {
	if !s.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	if first == "" || last == "" {
		return nil, inputErr("First name and last name are required")
	}

	user, err := s.Client().UpdateProfile(ctx, api.ProfileUpdate{FirstName: first, LastName: last})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// ChangePassword validates locally, then asks the backend to change the password.
func (s *Session) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if !s.IsLoggedIn() {
		return ErrNotLoggedIn
	}
	switch {
	case current == "" || next == "" || confirm == "":
		return inputErr("All password fields are required")
	case next != confirm:
		return inputErr("New passwords do not match")
	case len(next) < MinPasswordLength:
		return inputErr(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	return s.Client().ChangePassword(ctx, current, next, confirm)
}
