package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/internal/tracker"
	"github.com/formulacardz/cardz/pkg/domain"
)

type trackerSetsMsg struct {
	sets []domain.Dropdown
	err  error
}

type oneOfOnesMsg struct {
	set   string
	cards []domain.CatalogCard
	err   error
}

type trackerFocus int

const (
	trackerFocusList trackerFocus = iota
	trackerFocusDriver
	trackerFocusConstructor
)

// trackerModel hunts one-of-ones: pick a set, then walk the checklist of
// serial-numbered 1/1 parallels and see which have surfaced.
type trackerModel struct {
	catalog Catalog

	picking   bool
	sets      []domain.Dropdown
	setCursor int
	setName   string

	cards   []domain.CatalogCard
	spec    tracker.Spec
	focus   trackerFocus
	cursor  int
	loading bool
	err     string
	width   int
	height  int
}

func newTrackerModel(catalog Catalog) trackerModel {
	return trackerModel{
		catalog: catalog,
		picking: true,
		loading: true,
		spec:    tracker.Spec{ShowFound: true, ShowMissing: true},
	}
}

func (m trackerModel) Init() tea.Cmd {
	return m.loadSets()
}

func (m trackerModel) loadSets() tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		sets, err := catalog.Sets(context.Background())
		return trackerSetsMsg{sets: sets, err: err}
	}
}

func (m trackerModel) loadOneOfOnes(setName string) tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		cards, err := catalog.OneOfOnes(context.Background(), setName)
		return oneOfOnesMsg{set: setName, cards: cards, err: err}
	}
}

// trackerSets drops the Dynasty product line from the picker, matched
// case-insensitively on the label.
func trackerSets(sets []domain.Dropdown) []domain.Dropdown {
	var out []domain.Dropdown
	for _, s := range sets {
		if !strings.Contains(strings.ToLower(s.Label), "dynasty") {
			out = append(out, s)
		}
	}
	return out
}

func (m trackerModel) Update(msg tea.Msg) (trackerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case trackerSetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.sets = trackerSets(msg.sets)
		m.setCursor = 0
		return m, nil

	case oneOfOnesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			m.picking = true
			return m, nil
		}
		m.err = ""
		m.picking = false
		m.setName = msg.set
		m.cards = msg.cards
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m trackerModel) handleKey(key string) (trackerModel, tea.Cmd) {
	if m.picking {
		switch key {
		case "j", "down":
			if m.setCursor < len(m.sets)-1 {
				m.setCursor++
			}
		case "k", "up":
			if m.setCursor > 0 {
				m.setCursor--
			}
		case "enter":
			if m.setCursor < len(m.sets) {
				m.picking = false
				m.loading = true
				m.cards = nil
				return m, m.loadOneOfOnes(m.sets[m.setCursor].Value)
			}
		}
		return m, nil
	}

	if m.focus != trackerFocusList {
		switch key {
		case "enter", "esc":
			m.focus = trackerFocusList
		default:
			if m.focus == trackerFocusDriver {
				m.spec.DriverSearch = editRune(m.spec.DriverSearch, key)
			} else {
				m.spec.ConstructorSearch = editRune(m.spec.ConstructorSearch, key)
			}
			m.clampCursor()
		}
		return m, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.aggregate().Cards)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "f":
		m.spec.ShowFound = !m.spec.ShowFound
		m.clampCursor()
	case "m":
		m.spec.ShowMissing = !m.spec.ShowMissing
		m.clampCursor()
	case "p":
		m.spec.IncludePrintingPlates = !m.spec.IncludePrintingPlates
		m.clampCursor()
	case "/":
		m.focus = trackerFocusDriver
	case "c":
		m.focus = trackerFocusConstructor
	case "x":
		found, missing, plates := m.spec.ShowFound, m.spec.ShowMissing, m.spec.IncludePrintingPlates
		m.spec = tracker.Spec{ShowFound: found, ShowMissing: missing, IncludePrintingPlates: plates}
		m.clampCursor()
	case "esc":
		m.picking = true
	case "ctrl+r":
		m.loading = true
		return m, m.loadOneOfOnes(m.setName)
	}
	return m, nil
}

func (m trackerModel) aggregate() tracker.Summary {
	return tracker.Aggregate(m.cards, m.spec)
}

func (m *trackerModel) clampCursor() {
	n := len(m.aggregate().Cards)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m trackerModel) View() string {
	if m.picking {
		return m.viewPicker()
	}

	summary := m.aggregate()

	var b strings.Builder
	fmt.Fprintf(&b, " %s  %s\n",
		titleStyle.Render("1/1 Tracker — "+m.setName),
		foundStyle.Render(fmt.Sprintf("%d found", summary.Found))+
			metaStyle.Render(" / ")+
			dimStyle.Render(fmt.Sprintf("%d total", summary.Total)),
	)

	b.WriteString(" " + strings.Join([]string{
		checkbox("found", m.spec.ShowFound),
		checkbox("missing", m.spec.ShowMissing),
		checkbox("plates", m.spec.IncludePrintingPlates),
	}, "  ") + "\n")

	if m.focus == trackerFocusDriver || m.spec.DriverSearch != "" {
		b.WriteString(" " + renderInput("driver:", m.spec.DriverSearch, "", m.focus == trackerFocusDriver) + "\n")
	}
	if m.focus == trackerFocusConstructor || m.spec.ConstructorSearch != "" {
		b.WriteString(" " + renderInput("team:  ", m.spec.ConstructorSearch, "", m.focus == trackerFocusConstructor) + "\n")
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading one-of-ones...") + "\n")
	} else if len(summary.Cards) == 0 {
		b.WriteString(" " + dimStyle.Render("Nothing matches the current view.") + "\n")
	}

	for i, card := range summary.Cards {
		line := oneOfOneRow(card)
		if i == m.cursor {
			b.WriteString(accentStyle.Render(" > ") + line + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}

	b.WriteString("\n " + strings.Join([]string{
		helpEntry("f", "found"),
		helpEntry("m", "missing"),
		helpEntry("p", "plates"),
		helpEntry("/", "driver"),
		helpEntry("c", "team"),
		helpEntry("esc", "sets"),
	}, "  ") + "\n")
	return b.String()
}

func (m trackerModel) viewPicker() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("1/1 Tracker — pick a set") + "\n\n")
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading sets...") + "\n")
	} else if len(m.sets) == 0 {
		b.WriteString(" " + dimStyle.Render("No sets available.") + "\n")
	}
	for i, set := range m.sets {
		if i == m.setCursor {
			b.WriteString(accentStyle.Render(" > ") + selectedStyle.Render(set.Label) + "\n")
		} else {
			b.WriteString("   " + normalStyle.Render(set.Label) + "\n")
		}
	}
	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n " + helpEntry("enter", "select") + "\n")
	return b.String()
}

// oneOfOneRow shows the card with each of its surviving 1/1 parallels
// colored by whether the serial copy has surfaced.
func oneOfOneRow(card domain.CatalogCard) string {
	var parallels []string
	for _, p := range card.Parallels {
		if p.IsOneOfOneFound {
			parallels = append(parallels, foundStyle.Render("● "+p.Name))
		} else {
			parallels = append(parallels, missingStyle.Render("○ "+p.Name))
		}
	}
	row := fmt.Sprintf("#%-5s %-24s %-16s", card.CardNumber, card.DriverName, card.ConstructorName)
	return normalStyle.Render(row) + " " + strings.Join(parallels, "  ")
}
