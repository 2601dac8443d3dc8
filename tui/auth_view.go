// ABOUTME: Login, registration, organization onboarding and settings screens
// ABOUTME: Each screen is a form whose submit runs a session operation in a command
package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/session"
)

func loginForm(username string) form {
	f := newForm("SIGN IN",
		formField{key: "username", label: "Email", value: username},
		formField{key: "password", label: "Password", secret: true},
	)
	if username != "" {
		f.setFocus(1)
	}
	return f
}

func registerForm() form {
	return newForm("CREATE ACCOUNT",
		formField{key: "email", label: "Email"},
		formField{key: "password", label: "Password", secret: true},
		formField{key: "confirm_password", label: "Confirm Password", secret: true},
		formField{key: "first_name", label: "First Name"},
		formField{key: "last_name", label: "Last Name"},
		formField{key: "create_organization", label: "Create Organization", placeholder: "y/n", limit: 3},
		formField{key: "organization_name", label: "Organization Name"},
		formField{key: "organization_description", label: "Description"},
	)
}

func onboardingForm() form {
	return newForm("CREATE YOUR ORGANIZATION",
		formField{key: "name", label: "Organization Name"},
		formField{key: "description", label: "Description"},
	)
}

func settingsForm(first, last string) form {
	return newForm("SETTINGS",
		formField{key: "first_name", label: "First Name", value: first},
		formField{key: "last_name", label: "Last Name", value: last},
		formField{key: "current_password", label: "Current Password", secret: true},
		formField{key: "new_password", label: "New Password", secret: true},
		formField{key: "confirm_password", label: "Confirm Password", secret: true},
	)
}

func (m Model) renderAuthView() string {
	var s strings.Builder

	if m.viewMode == ViewSettings {
		s.WriteString(m.renderHeader())
		s.WriteString("\n\n")
	}
	s.WriteString(titleStyle.Render(m.form.title))
	s.WriteString("\n\n")

	switch m.viewMode {
	case ViewOnboarding:
		s.WriteString("You are not part of an organization yet. Create one to get started.\n\n")
	case ViewSettings:
		if user, ok := m.session.User(); ok {
			s.WriteString(m.renderField("Email", user.Email))
			s.WriteString(m.renderField("Role", user.Role))
			s.WriteString(m.renderField("Organization", user.OrganizationName))
			s.WriteString("\n")
		}
	}

	s.WriteString(m.form.view())
	if m.saving {
		s.WriteString("\n" + m.spinner.View() + " Working...\n")
	}

	s.WriteString(m.renderAuthHelp())
	return s.String()
}

func (m Model) renderAuthHelp() string {
	help := []string{"Tab: Next field", "Enter: Submit"}
	switch m.viewMode {
	case ViewLogin:
		help = append(help, "Ctrl+R: Create account", "Ctrl+C: Quit")
	case ViewRegister:
		help = append(help, "Esc: Back to sign in")
	case ViewOnboarding:
		help = append(help, "Esc: Log out")
	case ViewSettings:
		help = append(help, "Esc: Back")
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		if m.viewMode == ViewLogin {
			m.viewMode = ViewRegister
			m.form = registerForm()
			return m, m.form.focusCmd()
		}
	case "esc":
		switch m.viewMode {
		case ViewRegister:
			m.viewMode = ViewLogin
			m.form = loginForm("")
			return m, nil
		case ViewOnboarding:
			return m.logout()
		case ViewSettings:
			m.route()
			return m, nil
		}
		return m, nil
	}

	submit, cmd := m.form.update(msg)
	if !submit {
		return m, cmd
	}

	m.form.err = ""
	m.saving = true
	v := m.form.values()
	switch m.viewMode {
	case ViewLogin:
		return m, loginCmd(m.ctx, m.session, v["username"], v["password"])
	case ViewRegister:
		reg := api.Registration{
			Email:                   v["email"],
			Password:                v["password"],
			ConfirmPassword:         v["confirm_password"],
			FirstName:               v["first_name"],
			LastName:                v["last_name"],
			CreateOrganization:      yes(v["create_organization"]),
			OrganizationName:        v["organization_name"],
			OrganizationDescription: v["organization_description"],
		}
		return m, registerCmd(m.ctx, m.session, reg)
	case ViewOnboarding:
		return m, organizationCmd(m.ctx, m.session, v["name"], v["description"])
	case ViewSettings:
		return m, settingsCmd(m.ctx, m.session, m.toasts, v)
	}
	m.saving = false
	return m, nil
}

func yes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func (m Model) openSettings() (Model, tea.Cmd) {
	user, _ := m.session.User()
	m.viewMode = ViewSettings
	m.form = settingsForm(user.FirstName, user.LastName)
	return m, m.form.focusCmd()
}

func (m Model) logout() (Model, tea.Cmd) {
	if err := m.session.Logout(); err != nil {
		m.toasts.Error("Failed to log out: " + err.Error())
	}
	m.route()
	return m, nil
}

func (m Model) handleAuth(msg authMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		m.form.err = errorMessage(msg.err)
		return m, nil
	}

	switch msg.op {
	case "register":
		m.toasts.Success("Registration successful. Please sign in.")
		m.viewMode = ViewLogin
		m.form = loginForm(msg.user)
		return m, m.form.focusCmd()
	case "settings":
		user, _ := m.session.User()
		m.form = settingsForm(user.FirstName, user.LastName)
		return m, nil
	}

	// login and onboarding land on the dashboard once the user has an organization
	m.route()
	return m, tea.Batch(m.startCmds()...)
}

// errorMessage is the text a form shows for a failed submit.
func errorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	var inErr *session.InputError
	if errors.As(err, &inErr) {
		return inErr.Message
	}
	return err.Error()
}

func loginCmd(ctx context.Context, s *session.Session, username, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Login(ctx, username, password)
		return authMsg{op: "login", user: username, err: err}
	}
}

func registerCmd(ctx context.Context, s *session.Session, reg api.Registration) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Register(ctx, reg)
		return authMsg{op: "register", user: strings.TrimSpace(reg.Email), err: err}
	}
}

func organizationCmd(ctx context.Context, s *session.Session, name, description string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.CreateOrganization(ctx, name, description)
		return authMsg{op: "organization", err: err}
	}
}

// settingsCmd saves a changed name, then a password change when any password
// field was filled in.
func settingsCmd(ctx context.Context, s *session.Session, n notify.Notifier, v map[string]string) tea.Cmd {
	return func() tea.Msg {
		user, _ := s.User()
		first, last := strings.TrimSpace(v["first_name"]), strings.TrimSpace(v["last_name"])
		if first != user.FirstName || last != user.LastName {
			if _, err := s.UpdateProfile(ctx, first, last); err != nil {
				return authMsg{op: "settings", err: err}
			}
			n.Success("Profile updated successfully")
		}

		if v["current_password"] != "" || v["new_password"] != "" || v["confirm_password"] != "" {
			if err := s.ChangePassword(ctx, v["current_password"], v["new_password"], v["confirm_password"]); err != nil {
				return authMsg{op: "settings", err: err}
			}
			n.Success("Password changed successfully")
		}
		return authMsg{op: "settings"}
	}
}
