package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/internal/collection"
	"github.com/formulacardz/cardz/internal/filter"
	"github.com/formulacardz/cardz/pkg/domain"
)

type collectionMode int

const (
	collModeList collectionMode = iota
	collModeAddSet
	collModeAddCard
	collModeAddForm
	collModeEdit
	collModeRemove
)

type collectionLoadedMsg struct {
	err error
}

type setsLoadedMsg struct {
	sets []domain.Dropdown
	err  error
}

type setCardsLoadedMsg struct {
	cards []domain.CatalogCard
	err   error
}

type mutationDoneMsg struct {
	err error
}

type copiedMsg struct{}

type collectionModel struct {
	coll    Collection
	catalog Catalog

	mode    collectionMode
	records []domain.OwnershipRecord
	cursor  int
	loading bool
	err     string
	notice  string
	width   int
	height  int

	searching bool
	spec      filter.Spec

	// Add flow.
	sets       []domain.Dropdown
	setCursor  int
	cards      []domain.CatalogCard
	cardCursor int
	pickedCard domain.CatalogCard

	// Shared form for the add and edit flows.
	form      recordForm
	editing   domain.RecordKey
	removeQty string
}

// recordForm holds the editable ownership fields as text for both the
// add and edit flows.
type recordForm struct {
	parallel  string
	condition string
	quantity  string
	price     string
	focus     int
}

const formFieldCount = 4

func newCollectionModel(coll Collection, catalog Catalog) collectionModel {
	return collectionModel{coll: coll, catalog: catalog, loading: true}
}

func (m collectionModel) Init() tea.Cmd {
	return m.load()
}

func (m collectionModel) load() tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		return collectionLoadedMsg{err: coll.Load(context.Background())}
	}
}

func (m collectionModel) loadSets() tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		sets, err := catalog.Sets(context.Background())
		return setsLoadedMsg{sets: sets, err: err}
	}
}

func (m collectionModel) loadSetCards(setName string) tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		cards, err := catalog.CardsBySet(context.Background(), setName)
		return setCardsLoadedMsg{cards: cards, err: err}
	}
}

// visible applies the current filter spec to the snapshot.
func (m collectionModel) visible() []domain.OwnershipRecord {
	return filter.Apply(m.records, m.spec)
}

func (m collectionModel) Update(msg tea.Msg) (collectionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case collectionLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.records = m.coll.Snapshot()
		m.clampCursor()
		return m, nil

	case setsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.mode = collModeList
			return m, nil
		}
		m.sets = msg.sets
		m.setCursor = 0
		return m, nil

	case setCardsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.mode = collModeList
			return m, nil
		}
		m.cards = msg.cards
		m.cardCursor = 0
		return m, nil

	case mutationDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.err = ""
		m.mode = collModeList
		m.records = m.coll.Snapshot()
		m.clampCursor()
		return m, nil

	case copiedMsg:
		m.notice = "copied"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m collectionModel) handleKey(key string) (collectionModel, tea.Cmd) {
	m.notice = ""

	switch m.mode {
	case collModeAddSet:
		return m.handleAddSetKey(key)
	case collModeAddCard:
		return m.handleAddCardKey(key)
	case collModeAddForm, collModeEdit:
		return m.handleFormKey(key)
	case collModeRemove:
		return m.handleRemoveKey(key)
	}

	if m.searching {
		switch key {
		case "enter", "esc":
			m.searching = false
		default:
			m.spec.SearchText = editRune(m.spec.SearchText, key)
			m.clampCursor()
		}
		return m, nil
	}

	switch key {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "s":
		m.spec.SetName = cycleFacet(filter.DistinctValues(m.records, filter.FieldSetName), m.spec.SetName)
		m.clampCursor()
	case "c":
		m.spec.ConstructorName = cycleFacet(filter.DistinctValues(m.records, filter.FieldConstructorName), m.spec.ConstructorName)
		m.clampCursor()
	case "d":
		m.spec.DriverName = cycleFacet(filter.DistinctValues(m.records, filter.FieldDriverName), m.spec.DriverName)
		m.clampCursor()
	case "x":
		m.spec = filter.Spec{}
		m.clampCursor()
	case "a":
		m.mode = collModeAddSet
		m.sets = nil
		return m, m.loadSets()
	case "e":
		if rec, ok := m.selected(); ok {
			m.mode = collModeEdit
			m.editing = rec.Key()
			m.form = formFromRecord(rec)
		}
	case "r":
		if rec, ok := m.selected(); ok {
			m.mode = collModeRemove
			m.editing = rec.Key()
			m.removeQty = strconv.Itoa(rec.Quantity)
		}
	case "y":
		if rec, ok := m.selected(); ok {
			line := recordLine(rec)
			return m, func() tea.Msg {
				clipboard.WriteAll(line) //nolint:errcheck // best-effort copy
				return copiedMsg{}
			}
		}
	case "ctrl+r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m collectionModel) handleAddSetKey(key string) (collectionModel, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = collModeList
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
			m.mode = collModeAddCard
			m.cards = nil
			return m, m.loadSetCards(m.sets[m.setCursor].Value)
		}
	}
	return m, nil
}

func (m collectionModel) handleAddCardKey(key string) (collectionModel, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = collModeAddSet
	case "j", "down":
		if m.cardCursor < len(m.cards)-1 {
			m.cardCursor++
		}
	case "k", "up":
		if m.cardCursor > 0 {
			m.cardCursor--
		}
	case "enter":
		if m.cardCursor < len(m.cards) {
			m.pickedCard = m.cards[m.cardCursor]
			m.mode = collModeAddForm
			m.form = recordForm{condition: "Raw", quantity: "1"}
		}
	}
	return m, nil
}

func (m collectionModel) handleFormKey(key string) (collectionModel, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = collModeList
		return m, nil
	case "tab", "down":
		m.form.focus = (m.form.focus + 1) % formFieldCount
		return m, nil
	case "shift+tab", "up":
		m.form.focus = (m.form.focus - 1 + formFieldCount) % formFieldCount
		return m, nil
	case "enter":
		return m.submitForm()
	}

	switch m.form.focus {
	case 0:
		m.form.parallel = editRune(m.form.parallel, key)
	case 1:
		m.form.condition = editRune(m.form.condition, key)
	case 2:
		m.form.quantity = editDigits(m.form.quantity, key)
	case 3:
		m.form.price = editPrice(m.form.price, key)
	}
	return m, nil
}

func (m collectionModel) submitForm() (collectionModel, tea.Cmd) {
	m.loading = true
	coll := m.coll
	form := m.form

	if m.mode == collModeAddForm {
		card := m.pickedCard
		return m, func() tea.Msg {
			return mutationDoneMsg{err: coll.Add(context.Background(), collection.AddInput{
				Card:          card,
				Parallel:      form.parallel,
				Condition:     form.condition,
				Quantity:      parseQuantity(form.quantity),
				PurchasePrice: parsePrice(form.price),
				PurchaseDate:  ptrTime(time.Now()),
			})}
		}
	}

	editing := m.editing
	return m, func() tea.Msg {
		qty := parseQuantity(form.quantity)
		return mutationDoneMsg{err: coll.Update(context.Background(), collection.UpdateInput{
			CardID:        editing.CardID,
			OldParallel:   editing.Parallel,
			OldCondition:  editing.Condition,
			Quantity:      &qty,
			NewParallel:   &form.parallel,
			NewCondition:  &form.condition,
			PurchasePrice: parsePrice(form.price),
		})}
	}
}

func (m collectionModel) handleRemoveKey(key string) (collectionModel, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = collModeList
		return m, nil
	case "enter":
		m.loading = true
		coll := m.coll
		editing := m.editing
		qty := parseQuantity(m.removeQty)
		return m, func() tea.Msg {
			return mutationDoneMsg{err: coll.Remove(context.Background(), editing.CardID, editing.Parallel, editing.Condition, qty)}
		}
	}
	m.removeQty = editDigits(m.removeQty, key)
	return m, nil
}

func (m *collectionModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m collectionModel) selected() (domain.OwnershipRecord, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.OwnershipRecord{}, false
	}
	return visible[m.cursor], true
}

// cycleFacet advances through no-filter plus each value in order.
func cycleFacet(values []string, current string) string {
	if current == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == current {
			if i+1 < len(values) {
				return values[i+1]
			}
			return ""
		}
	}
	return ""
}

func formFromRecord(rec domain.OwnershipRecord) recordForm {
	form := recordForm{
		parallel:  rec.Parallel,
		condition: rec.Condition,
		quantity:  strconv.Itoa(rec.Quantity),
	}
	if rec.PurchasePrice != nil {
		form.price = strconv.FormatFloat(*rec.PurchasePrice, 'f', -1, 64)
	}
	return form
}

// recordLine formats a record as a single shareable line.
func recordLine(rec domain.OwnershipRecord) string {
	parallel := rec.Parallel
	if parallel == "" {
		parallel = "Base"
	}
	return fmt.Sprintf("%d %s #%s %s (%s, %s) x%d", rec.Year, rec.SetName, rec.CardNumber, rec.DriverName, parallel, rec.Condition, rec.Quantity)
}

func editPrice(text, key string) string {
	if key != "backspace" && key != "." && (key < "0" || key > "9") {
		return text
	}
	if key == "." && strings.Contains(text, ".") {
		return text
	}
	return editRune(text, key)
}

func parsePrice(text string) *float64 {
	if text == "" {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &v
}

func ptrTime(t time.Time) *time.Time { return &t }

func (m collectionModel) View() string {
	switch m.mode {
	case collModeAddSet:
		return m.viewPicker("Add card — pick a set", setLabels(m.sets), m.setCursor)
	case collModeAddCard:
		return m.viewPicker("Add card — pick a card", cardLabels(m.cards), m.cardCursor)
	case collModeAddForm:
		return m.viewForm("Add " + m.pickedCard.DriverName + " #" + m.pickedCard.CardNumber)
	case collModeEdit:
		return m.viewForm("Edit record")
	case collModeRemove:
		return m.viewRemove()
	}
	return m.viewList()
}

func (m collectionModel) viewList() string {
	if m.loading && len(m.records) == 0 {
		return " " + dimStyle.Render("loading your collection...")
	}

	var b strings.Builder
	visible := m.visible()

	// Header totals cover the whole collection, not the filtered view.
	fmt.Fprintf(&b, " %s  %s\n",
		titleStyle.Render("My Collection"),
		dimStyle.Render(fmt.Sprintf("%d cards", len(m.records)))+
			metaStyle.Render(" · ")+
			valueStyle.Render(fmt.Sprintf("$%.2f", filter.TotalValue(m.records))),
	)

	if filters := m.activeFilters(); filters != "" {
		b.WriteString(" " + metaStyle.Render(filters) + "\n")
	}
	if m.searching || m.spec.SearchText != "" {
		b.WriteString(" " + renderInput("search:", m.spec.SearchText, "driver, team, set, number", m.searching) + "\n")
	}
	b.WriteString("\n")

	if len(visible) == 0 {
		if len(m.records) == 0 {
			b.WriteString(" " + dimStyle.Render("No cards yet. Press a to add your first card.") + "\n")
		} else {
			b.WriteString(" " + dimStyle.Render("No cards match the current filters.") + "\n")
		}
	}

	for i, rec := range visible {
		line := recordRow(rec)
		if i == m.cursor {
			b.WriteString(accentStyle.Render(" > ") + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString("   " + normalStyle.Render(line) + "\n")
		}
	}

	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + foundStyle.Render(m.notice) + "\n")
	}

	b.WriteString("\n " + strings.Join([]string{
		helpEntry("/", "search"),
		helpEntry("s/c/d", "facets"),
		helpEntry("x", "clear"),
		helpEntry("a", "add"),
		helpEntry("e", "edit"),
		helpEntry("r", "remove"),
		helpEntry("y", "copy"),
	}, "  ") + "\n")
	return b.String()
}

func (m collectionModel) activeFilters() string {
	var parts []string
	if m.spec.SetName != "" {
		parts = append(parts, "set="+m.spec.SetName)
	}
	if m.spec.ConstructorName != "" {
		parts = append(parts, "team="+m.spec.ConstructorName)
	}
	if m.spec.DriverName != "" {
		parts = append(parts, "driver="+m.spec.DriverName)
	}
	return strings.Join(parts, " · ")
}

func recordRow(rec domain.OwnershipRecord) string {
	parallel := rec.Parallel
	if parallel == "" {
		parallel = "Base"
	}
	row := fmt.Sprintf("%-24s %-18s #%-5s %-16s %-8s x%d", rec.DriverName, rec.SetName, rec.CardNumber, parallel, rec.Condition, rec.Quantity)
	if rec.RookieCard {
		row += " " + rookieStyle.Render("RC")
	}
	if rec.PurchasePrice != nil {
		row += " " + valueStyle.Render(fmt.Sprintf("$%.2f", *rec.PurchasePrice))
	}
	return row
}

func (m collectionModel) viewPicker(title string, labels []string, cursor int) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")
	if len(labels) == 0 {
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	}
	for i, label := range labels {
		if i == cursor {
			b.WriteString(accentStyle.Render(" > ") + selectedStyle.Render(label) + "\n")
		} else {
			b.WriteString("   " + normalStyle.Render(label) + "\n")
		}
	}
	b.WriteString("\n " + strings.Join([]string{helpEntry("enter", "select"), helpEntry("esc", "back")}, "  ") + "\n")
	return b.String()
}

func (m collectionModel) viewForm(title string) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")
	fmt.Fprintf(&b, " %s\n", renderInput("Parallel: ", m.form.parallel, "Base", m.form.focus == 0))
	fmt.Fprintf(&b, " %s\n", renderInput("Condition:", m.form.condition, "Raw", m.form.focus == 1))
	fmt.Fprintf(&b, " %s\n", renderInput("Quantity: ", m.form.quantity, "1", m.form.focus == 2))
	fmt.Fprintf(&b, " %s\n", renderInput("Price $:  ", m.form.price, "optional", m.form.focus == 3))
	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n " + strings.Join([]string{helpEntry("enter", "save"), helpEntry("esc", "cancel")}, "  ") + "\n")
	return b.String()
}

func (m collectionModel) viewRemove() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Remove cards") + "\n\n")
	fmt.Fprintf(&b, " %s\n", renderInput("Quantity to remove:", m.removeQty, "", true))
	if m.err != "" {
		b.WriteString("\n " + errStyle.Render(m.err) + "\n")
	}
	b.WriteString("\n " + strings.Join([]string{helpEntry("enter", "remove"), helpEntry("esc", "cancel")}, "  ") + "\n")
	return b.String()
}

func setLabels(sets []domain.Dropdown) []string {
	labels := make([]string, len(sets))
	for i, s := range sets {
		labels[i] = s.Label
	}
	return labels
}

func cardLabels(cards []domain.CatalogCard) []string {
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = fmt.Sprintf("#%-5s %-24s %s", c.CardNumber, c.DriverName, c.ConstructorName)
	}
	return labels
}
