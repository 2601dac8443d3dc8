// ABOUTME: Account CLI commands
// ABOUTME: Login, logout, sign-up, organization onboarding, profile and password changes
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/session"
)

// LoginCommand obtains tokens and stores them for later commands.
func LoginCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	username := fs.String("username", "", "Email address")
	password := fs.String("password", "", "Password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = env.prompt("Email: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = env.promptSecret("Password: "); err != nil {
			return err
		}
	}

	user, err := env.Session.Login(context.Background(), *username, *password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	_, _ = fmt.Fprintf(env.Out, "✓ Logged in as %s\n", user.FullName())
	if !user.HasOrganization() {
		_, _ = fmt.Fprintln(env.Out, "  You are not part of an organization yet. Run 'salescrm org create --name <name>'.")
	}
	return nil
}

// LogoutCommand forgets the stored tokens.
func LogoutCommand(env *Env, _ []string) error {
	if err := env.Session.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	_, _ = fmt.Fprintln(env.Out, "✓ Logged out")
	return nil
}

// WhoamiCommand prints the session user.
func WhoamiCommand(env *Env, _ []string) error {
	user, ok := env.Session.User()
	if !ok {
		return fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}

	_, _ = fmt.Fprintf(env.Out, "Name:         %s\n", user.FullName())
	_, _ = fmt.Fprintf(env.Out, "Email:        %s\n", user.Email)
	_, _ = fmt.Fprintf(env.Out, "Role:         %s\n", dashIfEmpty(user.Role))
	_, _ = fmt.Fprintf(env.Out, "Organization: %s\n", dashIfEmpty(user.OrganizationName))
	_, _ = fmt.Fprintf(env.Out, "Server:       %s\n", env.Session.Client().BaseURL())
	return nil
}

// RegisterCommand creates an account. The user logs in afterwards.
func RegisterCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	email := fs.String("email", "", "Email address (required)")
	first := fs.String("first-name", "", "First name (required)")
	last := fs.String("last-name", "", "Last name (required)")
	password := fs.String("password", "", "Password (prompted when omitted)")
	org := fs.String("org", "", "Create an organization with this name")
	orgDesc := fs.String("org-description", "", "Description of the new organization")
	if err := fs.Parse(args); err != nil {
		return err
	}

	confirm := *password
	if *password == "" {
		var err error
		if *password, err = env.promptSecret("Password: "); err != nil {
			return err
		}
		if confirm, err = env.promptSecret("Confirm password: "); err != nil {
			return err
		}
	}

	_, err := env.Session.Register(context.Background(), api.Registration{
		Email:                   *email,
		Password:                *password,
		ConfirmPassword:         confirm,
		FirstName:               *first,
		LastName:                *last,
		CreateOrganization:      *org != "",
		OrganizationName:        *org,
		OrganizationDescription: *orgDesc,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	_, _ = fmt.Fprintln(env.Out, "✓ Registration successful. Please sign in.")
	_, _ = fmt.Fprintf(env.Out, "  salescrm login --username %s\n", *email)
	return nil
}

// OrgCommand handles "org create".
func OrgCommand(env *Env, args []string) error {
	if len(args) == 0 || args[0] != "create" {
		return fmt.Errorf("usage: org create --name <name> [--description <text>]")
	}
	fs := flag.NewFlagSet("org create", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	name := fs.String("name", "", "Organization name (required)")
	desc := fs.String("description", "", "Description")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	org, err := env.Session.CreateOrganization(context.Background(), *name, *desc)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	_, _ = fmt.Fprintf(env.Out, "✓ Organization created: %s (ID: %d)\n", org.Name, org.ID)
	return nil
}

// ProfileCommand changes the user's name.
func ProfileCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(env.Out)
	first := fs.String("first-name", "", "First name")
	last := fs.String("last-name", "", "Last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Unset flags keep the current value.
	if user, ok := env.Session.User(); ok {
		if *first == "" {
			*first = user.FirstName
		}
		if *last == "" {
			*last = user.LastName
		}
	}

	user, err := env.Session.UpdateProfile(context.Background(), *first, *last)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(env.Out, "✓ Profile updated successfully (%s)\n", user.FullName())
	return nil
}

// PasswordCommand prompts for the current and new password.
func PasswordCommand(env *Env, _ []string) error {
	if !env.Session.IsLoggedIn() {
		return fmt.Errorf("%w. Run 'salescrm login' first", session.ErrNotLoggedIn)
	}
	current, err := env.promptSecret("Current password: ")
	if err != nil {
		return err
	}
	next, err := env.promptSecret("New password: ")
	if err != nil {
		return err
	}
	confirm, err := env.promptSecret("Confirm new password: ")
	if err != nil {
		return err
	}

	if err := env.Session.ChangePassword(context.Background(), current, next, confirm); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(env.Out, "✓ Password changed successfully")
	return nil
}
