package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/pkg/domain"
)

type authMode int

const (
	authModeLogin authMode = iota
	authModeRegister
	authModeForgot
)

// authDoneMsg carries the result of a login or register attempt.
type authDoneMsg struct {
	sess *domain.Session
	err  error
}

// forgotDoneMsg carries the result of a password-reset request.
type forgotDoneMsg struct {
	err error
}

type loginModel struct {
	sessions Sessions
	remote   AuthRemote

	mode     authMode
	focus    int
	email    string
	password string
	username string
	remember bool
	busy     bool
	err      string
	notice   string
	width    int
	height   int
}

func newLoginModel(sessions Sessions, remote AuthRemote) loginModel {
	return loginModel{sessions: sessions, remote: remote}
}

// fieldCount returns how many focusable rows the current mode has, the
// submit row included.
func (m loginModel) fieldCount() int {
	switch m.mode {
	case authModeRegister:
		return 4 // username, email, password, submit
	case authModeForgot:
		return 2 // email, submit
	default:
		return 4 // email, password, remember, submit
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.password = ""
		return m, nil

	case forgotDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.notice = "Reset instructions sent. Check your inbox."
		m.mode = authModeLogin
		m.focus = 0
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		key := msg.String()
		switch key {
		case "tab", "down":
			m.focus = (m.focus + 1) % m.fieldCount()
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + m.fieldCount()) % m.fieldCount()
			return m, nil
		case "ctrl+r":
			m.toggleMode(authModeRegister)
			return m, nil
		case "ctrl+f":
			m.toggleMode(authModeForgot)
			return m, nil
		case "enter":
			return m.submit()
		case " ":
			if m.mode == authModeLogin && m.focus == 2 {
				m.remember = !m.remember
				return m, nil
			}
		}
		m.edit(key)
		return m, nil
	}
	return m, nil
}

func (m *loginModel) toggleMode(target authMode) {
	if m.mode == target {
		m.mode = authModeLogin
	} else {
		m.mode = target
	}
	m.focus = 0
	m.err = ""
	m.notice = ""
}

// edit routes a keystroke to the focused text field.
func (m *loginModel) edit(key string) {
	switch m.mode {
	case authModeRegister:
		switch m.focus {
		case 0:
			m.username = editRune(m.username, key)
		case 1:
			m.email = editRune(m.email, key)
		case 2:
			m.password = editRune(m.password, key)
		}
	case authModeForgot:
		if m.focus == 0 {
			m.email = editRune(m.email, key)
		}
	default:
		switch m.focus {
		case 0:
			m.email = editRune(m.email, key)
		case 1:
			m.password = editRune(m.password, key)
		}
	}
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	m.busy = true
	m.err = ""
	m.notice = ""

	switch m.mode {
	case authModeRegister:
		sessions, username, email, password := m.sessions, m.username, m.email, m.password
		return m, func() tea.Msg {
			sess, err := sessions.Register(context.Background(), domain.NewUser{
				Username:             username,
				Email:                email,
				Password:             password,
				FavoriteDrivers:      []string{},
				FavoriteConstructors: []string{},
			})
			return authDoneMsg{sess: sess, err: err}
		}
	case authModeForgot:
		remote, email := m.remote, m.email
		return m, func() tea.Msg {
			return forgotDoneMsg{err: remote.ForgotPassword(context.Background(), email)}
		}
	default:
		sessions, email, password, remember := m.sessions, m.email, m.password, m.remember
		return m, func() tea.Msg {
			sess, err := sessions.Login(context.Background(), email, password, remember)
			return authDoneMsg{sess: sess, err: err}
		}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	switch m.mode {
	case authModeRegister:
		b.WriteString(" " + titleStyle.Render("Create account") + "\n\n")
		fmt.Fprintf(&b, " %s\n", renderInput("Username:", m.username, "collector", m.focus == 0))
		fmt.Fprintf(&b, " %s\n", renderInput("Email:   ", m.email, "you@example.com", m.focus == 1))
		fmt.Fprintf(&b, " %s\n", renderInput("Password:", maskValue(m.password), "", m.focus == 2))
		b.WriteString("\n " + submitRow("Register", m.focus == 3, m.busy) + "\n")
		b.WriteString("\n " + metaStyle.Render("New accounts start with a 1-day session.") + "\n")
	case authModeForgot:
		b.WriteString(" " + titleStyle.Render("Reset password") + "\n\n")
		fmt.Fprintf(&b, " %s\n", renderInput("Email:", m.email, "you@example.com", m.focus == 0))
		b.WriteString("\n " + submitRow("Send reset email", m.focus == 1, m.busy) + "\n")
	default:
		b.WriteString(" " + titleStyle.Render("Sign in") + "\n\n")
		fmt.Fprintf(&b, " %s\n", renderInput("Email:   ", m.email, "you@example.com", m.focus == 0))
		fmt.Fprintf(&b, " %s\n", renderInput("Password:", maskValue(m.password), "", m.focus == 1))
		remember := checkbox("Remember me (60 days)", m.remember)
		if m.focus == 2 {
			remember = "> " + remember
		} else {
			remember = "  " + remember
		}
		b.WriteString(" " + remember + "\n")
		b.WriteString("\n " + submitRow("Sign in", m.focus == 3, m.busy) + "\n")
	}

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + foundStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n " + strings.Join([]string{
		helpEntry("tab", "next field"),
		helpEntry("enter", "submit"),
		helpEntry("ctrl+r", "register"),
		helpEntry("ctrl+f", "forgot password"),
	}, "  ") + "\n")
	return b.String()
}

func submitRow(label string, focused, busy bool) string {
	if busy {
		return dimStyle.Render("working...")
	}
	if focused {
		return accentStyle.Render("> " + label)
	}
	return metaStyle.Render("  " + label)
}
