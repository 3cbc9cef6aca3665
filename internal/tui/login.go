package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/pkg/client"
	"github.com/naveenspark/consultly/pkg/domain"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) (*domain.Session, error)
}

type loginResultMsg struct {
	sess *domain.Session
	err  error
}

type loginField int

const (
	fieldEmail loginField = iota
	fieldPassword
)

// loginModel is the sign-in overlay.
type loginModel struct {
	auth       Authenticator
	email      string
	password   string
	focus      loginField
	submitting bool
	errMsg     string
	closed     bool // esc pressed; the app drops the pending action
}

func newLoginModel(auth Authenticator) loginModel {
	return loginModel{auth: auth}
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	creds := booking.Credentials{Email: strings.TrimSpace(m.email), Password: m.password}
	if err := booking.Validate(creds); err != nil {
		m.errMsg = client.Message(err, "Check your email and password.")
		return m, nil
	}
	m.errMsg = ""
	m.submitting = true
	auth := m.auth
	return m, func() tea.Msg {
		sess, err := auth.Login(context.Background(), client.LoginRequest{Email: creds.Email, Password: creds.Password})
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = client.Message(msg.err, "Sign in failed. Please try again.")
			m.password = ""
			m.focus = fieldPassword
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.closed = true
			return m, nil
		case "tab", "shift+tab", "up", "down":
			if m.focus == fieldEmail {
				m.focus = fieldPassword
			} else {
				m.focus = fieldEmail
			}
			return m, nil
		case "enter":
			if m.focus == fieldEmail && m.password == "" {
				m.focus = fieldPassword
				return m, nil
			}
			return m.submit()
		default:
			if m.focus == fieldEmail {
				m.email = editRune(m.email, msg.String())
			} else {
				m.password = editRune(m.password, msg.String())
			}
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render("Sign in") + "\n")
	b.WriteString(dimStyle.Render("to continue with your booking") + "\n\n")

	field := func(label, value, placeholder string, focused bool) {
		prompt := metaStyle.Render(label)
		if focused {
			prompt = inputPromptStyle.Render(label)
			value += "█"
		}
		if value == "" {
			value = inputPlaceholderStyle.Render(placeholder)
		}
		b.WriteString(prompt + " " + value + "\n")
	}
	field("email    ", m.email, "you@example.com", m.focus == fieldEmail)
	field("password ", strings.Repeat("•", len([]rune(m.password))), "••••••", m.focus == fieldPassword)

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(dimStyle.Render("Signing in...") + "\n")
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}
