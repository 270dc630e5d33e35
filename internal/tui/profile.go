package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/pkg/client"
	"github.com/formulacardz/cardz/pkg/domain"
)

// profileSavedMsg carries the refreshed session after a profile update.
type profileSavedMsg struct {
	sess *domain.Session
	err  error
}

// profileModel shows the signed-in account and lets the user edit their
// username and favorite drivers/constructors. Saves go through the remote
// first; the session only refreshes with what the server confirmed.
type profileModel struct {
	sessions Sessions
	remote   AuthRemote

	editing bool
	form    profileForm
	busy    bool
	err     string
	notice  string
	width   int
	height  int
}

// profileForm holds the editable fields as text; favorites are
// comma-separated.
type profileForm struct {
	username     string
	drivers      string
	constructors string
	focus        int
}

const profileFieldCount = 3

func newProfileModel(sessions Sessions, remote AuthRemote) profileModel {
	return profileModel{sessions: sessions, remote: remote}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.editing = false
		m.notice = "profile saved"
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m profileModel) handleKey(key string) (profileModel, tea.Cmd) {
	m.notice = ""

	if !m.editing {
		if key == "e" {
			if sess := m.sessions.Current(); sess != nil {
				m.editing = true
				m.err = ""
				m.form = profileForm{
					username:     sess.Profile.Username,
					drivers:      strings.Join(sess.Profile.FavoriteDrivers, ", "),
					constructors: strings.Join(sess.Profile.FavoriteConstructors, ", "),
				}
			}
		}
		return m, nil
	}

	switch key {
	case "esc":
		m.editing = false
		return m, nil
	case "tab", "down":
		m.form.focus = (m.form.focus + 1) % profileFieldCount
		return m, nil
	case "shift+tab", "up":
		m.form.focus = (m.form.focus - 1 + profileFieldCount) % profileFieldCount
		return m, nil
	case "enter":
		return m.save()
	}

	switch m.form.focus {
	case 0:
		m.form.username = editRune(m.form.username, key)
	case 1:
		m.form.drivers = editRune(m.form.drivers, key)
	case 2:
		m.form.constructors = editRune(m.form.constructors, key)
	}
	return m, nil
}

func (m profileModel) save() (profileModel, tea.Cmd) {
	sess := m.sessions.Current()
	if sess == nil {
		return m, nil
	}
	m.busy = true
	m.err = ""

	sessions, remote := m.sessions, m.remote
	userID := sess.Profile.ID
	req := client.UpdateUserRequest{
		Username:             strings.TrimSpace(m.form.username),
		FavoriteDrivers:      splitList(m.form.drivers),
		FavoriteConstructors: splitList(m.form.constructors),
	}
	return m, func() tea.Msg {
		updated, err := remote.UpdateUser(context.Background(), userID, req)
		if err != nil {
			return profileSavedMsg{err: err}
		}
		refreshed, err := sessions.Refresh(*updated)
		return profileSavedMsg{sess: refreshed, err: err}
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (m profileModel) View() string {
	sess := m.sessions.Current()
	if sess == nil {
		return " " + dimStyle.Render("Not signed in.")
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Profile") + "\n\n")

	if m.editing {
		fmt.Fprintf(&b, " %s\n", renderInput("Username:    ", m.form.username, "", m.form.focus == 0))
		fmt.Fprintf(&b, " %s\n", renderInput("Drivers:     ", m.form.drivers, "comma-separated", m.form.focus == 1))
		fmt.Fprintf(&b, " %s\n", renderInput("Constructors:", m.form.constructors, "comma-separated", m.form.focus == 2))
		if m.busy {
			b.WriteString("\n " + dimStyle.Render("saving...") + "\n")
		}
		if m.err != "" {
			b.WriteString("\n " + errStyle.Render(m.err) + "\n")
		}
		b.WriteString("\n " + strings.Join([]string{
			helpEntry("tab", "next field"),
			helpEntry("enter", "save"),
			helpEntry("esc", "cancel"),
		}, "  ") + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, " %s %s\n", inputPromptStyle.Render("Username:"), normalStyle.Render(sess.Profile.Username))
	fmt.Fprintf(&b, " %s %s\n", inputPromptStyle.Render("Email:   "), normalStyle.Render(sess.Profile.Email))
	if sess.Profile.HasPremium {
		b.WriteString(" " + rookieStyle.Render("Premium member") + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, " %s %s\n", inputPromptStyle.Render("Favorite drivers:     "), favoritesLine(sess.Profile.FavoriteDrivers))
	fmt.Fprintf(&b, " %s %s\n", inputPromptStyle.Render("Favorite constructors:"), favoritesLine(sess.Profile.FavoriteConstructors))

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + foundStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n " + helpEntry("e", "edit profile") + "\n")
	return b.String()
}

func favoritesLine(names []string) string {
	if len(names) == 0 {
		return dimStyle.Render("none yet")
	}
	return normalStyle.Render(strings.Join(names, ", "))
}
