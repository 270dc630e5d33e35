package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/internal/browser"
	"github.com/formulacardz/cardz/pkg/domain"
)

type dropsLoadedMsg struct {
	drops []domain.Drop
	err   error
}

// dropsModel lists upcoming product releases grouped by how soon they land.
type dropsModel struct {
	drops   []domain.Drop
	cursor  int
	loading bool
	err     string
	notice  string
	width   int
	height  int
	now     func() time.Time
}

func newDropsModel() dropsModel {
	return dropsModel{loading: true, now: time.Now}
}

func (m dropsModel) load(catalog Catalog) tea.Cmd {
	return func() tea.Msg {
		drops, err := catalog.Drops(context.Background())
		return dropsLoadedMsg{drops: drops, err: err}
	}
}

func (m dropsModel) Update(msg tea.Msg) (dropsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dropsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.drops = sortDrops(msg.drops)
		if m.cursor >= len(m.drops) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.drops)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter", "o":
			if m.cursor < len(m.drops) {
				url := m.drops[m.cursor].PreorderURL
				if url == "" {
					m.notice = "no preorder link yet"
					return m, nil
				}
				if err := browser.Open(url); err != nil {
					m.err = err.Error()
				}
			}
		}
	}
	return m, nil
}

// sortDrops orders releases soonest first.
func sortDrops(drops []domain.Drop) []domain.Drop {
	out := make([]domain.Drop, len(drops))
	copy(out, drops)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleaseDate.Before(out[j].ReleaseDate)
	})
	return out
}

// dropBucket names the section a release belongs to relative to now.
func dropBucket(days int) string {
	switch {
	case days <= 0:
		return "Released"
	case days <= 7:
		return "This Week"
	case days <= 30:
		return "This Month"
	default:
		return "Later"
	}
}

func (m dropsModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Upcoming Drops") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading releases...") + "\n")
	} else if len(m.drops) == 0 {
		b.WriteString(" " + dimStyle.Render("No releases on the calendar.") + "\n")
	}

	now := m.now()
	lastBucket := ""
	for i, drop := range m.drops {
		days := drop.DaysUntil(now)
		if bucket := dropBucket(days); bucket != lastBucket {
			b.WriteString(" " + metaStyle.Render(bucket) + "\n")
			lastBucket = bucket
		}
		line := dropRow(drop, days)
		if i == m.cursor {
			b.WriteString(accentStyle.Render(" > ") + line + "\n")
		} else {
			b.WriteString("   " + line + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + dimStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n " + strings.Join([]string{
		helpEntry("enter", "preorder"),
		helpEntry("j/k", "move"),
	}, "  ") + "\n")
	return b.String()
}

func dropRow(drop domain.Drop, days int) string {
	var badge string
	switch {
	case days < 0:
		badge = dimStyle.Render("out")
	case days == 0:
		badge = foundStyle.Render("today")
	case days == 1:
		badge = rookieStyle.Render("tomorrow")
	default:
		badge = valueStyle.Render(fmt.Sprintf("in %d days", days))
	}
	row := fmt.Sprintf("%-36s %-12s %s", drop.ProductName, drop.Manufacturer, drop.ReleaseDate.Format("Jan 2, 2006"))
	return normalStyle.Render(row) + " " + badge
}
