// Package tui is the terminal front end for the Formula Cardz client.
// A root App model gates everything behind sign-in and then hands the
// window to one of three tab screens.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/internal/collection"
	"github.com/formulacardz/cardz/pkg/client"
	"github.com/formulacardz/cardz/pkg/domain"
)

// Sessions is the slice of the session manager the screens need.
type Sessions interface {
	Current() *domain.Session
	Login(ctx context.Context, email, password string, rememberMe bool) (*domain.Session, error)
	Register(ctx context.Context, nu domain.NewUser) (*domain.Session, error)
	Refresh(updated domain.UpdatedUser) (*domain.Session, error)
	Logout()
}

// AuthRemote covers the account endpoints outside the ownership surface.
type AuthRemote interface {
	ForgotPassword(ctx context.Context, email string) error
	UpdateUser(ctx context.Context, userID string, req client.UpdateUserRequest) (*domain.UpdatedUser, error)
}

// Catalog serves read-only reference data: sets, checklists and drops.
type Catalog interface {
	Sets(ctx context.Context) ([]domain.Dropdown, error)
	CardsBySet(ctx context.Context, setName string) ([]domain.CatalogCard, error)
	OneOfOnes(ctx context.Context, setName string) ([]domain.CatalogCard, error)
	Drops(ctx context.Context) ([]domain.Drop, error)
}

// Collection is the owned-card store the collection screen mutates.
type Collection interface {
	Load(ctx context.Context) error
	Snapshot() []domain.OwnershipRecord
	Add(ctx context.Context, in collection.AddInput) error
	Update(ctx context.Context, in collection.UpdateInput) error
	Remove(ctx context.Context, cardID, parallel, condition string, quantity int) error
}

type tab int

const (
	tabCollection tab = iota
	tabTracker
	tabDrops
	tabProfile
)

var tabNames = []string{"Collection", "1/1 Tracker", "Drops", "Profile"}

// App is the root model. When nobody is signed in it shows the login
// screen; afterwards it multiplexes between the tab screens.
type App struct {
	sessions Sessions
	remote   AuthRemote
	catalog  Catalog

	active     tab
	login      loginModel
	coll       collectionModel
	tracker    trackerModel
	drops      dropsModel
	profile    profileModel
	dropsShown bool
	width      int
	height     int
}

// NewApp wires the screens together. The collection store must already
// be constructed against the same session manager.
func NewApp(sessions Sessions, remote AuthRemote, catalog Catalog, coll Collection) App {
	return App{
		sessions: sessions,
		remote:   remote,
		catalog:  catalog,
		login:    newLoginModel(sessions, remote),
		coll:     newCollectionModel(coll, catalog),
		tracker:  newTrackerModel(catalog),
		drops:    newDropsModel(),
		profile:  newProfileModel(sessions, remote),
	}
}

func (a App) Init() tea.Cmd {
	if a.sessions.Current() == nil {
		return nil
	}
	return tea.Batch(a.coll.Init(), a.tracker.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		cmds = append(cmds, cmd)
		a.coll, cmd = a.coll.Update(msg)
		cmds = append(cmds, cmd)
		a.tracker, cmd = a.tracker.Update(msg)
		cmds = append(cmds, cmd)
		a.drops, cmd = a.drops.Update(msg)
		cmds = append(cmds, cmd)
		a.profile, cmd = a.profile.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case authDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err == nil && msg.sess != nil {
			a.active = tabCollection
			return a, tea.Batch(cmd, a.coll.Init(), a.tracker.Init())
		}
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		}
		if a.sessions.Current() == nil {
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}
		if handled, model, cmd := a.handleGlobalKey(msg.String()); handled {
			return model, cmd
		}
	}

	if a.sessions.Current() == nil {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Async results go to the screen that asked for them, whichever tab
	// is showing; keys go to the active screen.
	var cmd tea.Cmd
	switch msg.(type) {
	case collectionLoadedMsg, setsLoadedMsg, setCardsLoadedMsg, mutationDoneMsg, copiedMsg:
		a.coll, cmd = a.coll.Update(msg)
	case trackerSetsMsg, oneOfOnesMsg:
		a.tracker, cmd = a.tracker.Update(msg)
	case dropsLoadedMsg:
		a.drops, cmd = a.drops.Update(msg)
	case profileSavedMsg:
		a.profile, cmd = a.profile.Update(msg)
	default:
		switch a.active {
		case tabTracker:
			a.tracker, cmd = a.tracker.Update(msg)
		case tabDrops:
			a.drops, cmd = a.drops.Update(msg)
		case tabProfile:
			a.profile, cmd = a.profile.Update(msg)
		default:
			a.coll, cmd = a.coll.Update(msg)
		}
	}
	return a, cmd
}

// handleGlobalKey processes keys that work on every signed-in screen.
// Text-entry fields keep their keystrokes to themselves, so tab
// switching sits on keys no field wants.
func (a App) handleGlobalKey(key string) (bool, tea.Model, tea.Cmd) {
	if a.typing() {
		return false, a, nil
	}
	switch key {
	case "q":
		return true, a, tea.Quit
	case "1":
		a.active = tabCollection
		return true, a, nil
	case "2":
		a.active = tabTracker
		return true, a, nil
	case "3":
		a.active = tabDrops
		if !a.dropsShown {
			a.dropsShown = true
			return true, a, a.drops.load(a.catalog)
		}
		return true, a, nil
	case "4":
		a.active = tabProfile
		return true, a, nil
	case "L":
		a.sessions.Logout()
		a.login = newLoginModel(a.sessions, a.remote)
		a.active = tabCollection
		a.dropsShown = false
		a.coll = newCollectionModel(a.coll.coll, a.catalog)
		a.tracker = newTrackerModel(a.catalog)
		a.drops = newDropsModel()
		a.profile = newProfileModel(a.sessions, a.remote)
		return true, a, nil
	}
	return false, a, nil
}

// typing reports whether the active screen currently owns plain
// keystrokes for a text field or form.
func (a App) typing() bool {
	switch a.active {
	case tabTracker:
		return a.tracker.focus != trackerFocusList
	case tabDrops:
		return false
	case tabProfile:
		return a.profile.editing
	default:
		return a.coll.searching || a.coll.mode != collModeList
	}
}

func (a App) View() string {
	if a.sessions.Current() == nil {
		return "\n" + a.login.View()
	}

	var b strings.Builder
	b.WriteString(" " + a.tabBar() + "\n\n")
	switch a.active {
	case tabTracker:
		b.WriteString(a.tracker.View())
	case tabDrops:
		b.WriteString(a.drops.View())
	case tabProfile:
		b.WriteString(a.profile.View())
	default:
		b.WriteString(a.coll.View())
	}
	if !a.typing() {
		b.WriteString("\n " + strings.Join([]string{
			helpEntry("1-4", "tabs"),
			helpEntry("L", "log out"),
			helpEntry("q", "quit"),
		}, "  ") + "\n")
	}
	return b.String()
}

func (a App) tabBar() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == a.active {
			parts[i] = tabActiveStyle.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return strings.Join(parts, " ")
}
