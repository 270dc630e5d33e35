package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/formulacardz/cardz/internal/collection"
	"github.com/formulacardz/cardz/pkg/domain"
)

type fakeCollection struct {
	records []domain.OwnershipRecord
	loadErr error
	adds    []collection.AddInput
	updates []collection.UpdateInput
	removes []int
}

func (f *fakeCollection) Load(ctx context.Context) error { return f.loadErr }

func (f *fakeCollection) Snapshot() []domain.OwnershipRecord {
	out := make([]domain.OwnershipRecord, len(f.records))
	copy(out, f.records)
	return out
}

func (f *fakeCollection) Add(ctx context.Context, in collection.AddInput) error {
	f.adds = append(f.adds, in)
	return nil
}

func (f *fakeCollection) Update(ctx context.Context, in collection.UpdateInput) error {
	f.updates = append(f.updates, in)
	return nil
}

func (f *fakeCollection) Remove(ctx context.Context, cardID, parallel, condition string, quantity int) error {
	f.removes = append(f.removes, quantity)
	return nil
}

type fakeCatalog struct {
	sets  []domain.Dropdown
	cards []domain.CatalogCard
	ones  []domain.CatalogCard
	drops []domain.Drop
	err   error
}

func (f *fakeCatalog) Sets(ctx context.Context) ([]domain.Dropdown, error) {
	return f.sets, f.err
}

func (f *fakeCatalog) CardsBySet(ctx context.Context, setName string) ([]domain.CatalogCard, error) {
	return f.cards, f.err
}

func (f *fakeCatalog) OneOfOnes(ctx context.Context, setName string) ([]domain.CatalogCard, error) {
	return f.ones, f.err
}

func (f *fakeCatalog) Drops(ctx context.Context) ([]domain.Drop, error) {
	return f.drops, f.err
}

func makeRecord(cardID, driver, team, set, parallel string, qty int) domain.OwnershipRecord {
	return domain.OwnershipRecord{
		CardID:          cardID,
		Year:            2023,
		SetName:         set,
		CardNumber:      "44",
		DriverName:      driver,
		ConstructorName: team,
		Parallel:        parallel,
		Condition:       "Raw",
		Quantity:        qty,
	}
}

func newTestCollectionModel(records ...domain.OwnershipRecord) (collectionModel, *fakeCollection) {
	coll := &fakeCollection{records: records}
	m := newCollectionModel(coll, &fakeCatalog{})
	m.width = 100
	m.height = 40
	m, _ = m.Update(collectionLoadedMsg{})
	return m, coll
}

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCollectionRendersRecords(t *testing.T) {
	m, _ := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2),
		makeRecord("c2", "Max Verstappen", "Red Bull Racing", "2023 Topps Chrome", "Gold", 1),
	)
	view := m.View()
	if !strings.Contains(view, "Lewis Hamilton") || !strings.Contains(view, "Max Verstappen") {
		t.Errorf("expected both drivers in view, got:\n%s", view)
	}
	if !strings.Contains(view, "2 cards") {
		t.Errorf("expected card count in header, got:\n%s", view)
	}
}

func TestCollectionSearchNarrowsList(t *testing.T) {
	m, _ := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2),
		makeRecord("c2", "Max Verstappen", "Red Bull Racing", "2023 Topps Chrome", "Gold", 1),
	)
	m, _ = m.Update(keyMsg("/"))
	for _, r := range "ham" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	view := m.View()
	if !strings.Contains(view, "Lewis Hamilton") {
		t.Errorf("expected Hamilton to survive search, got:\n%s", view)
	}
	if strings.Contains(view, "Max Verstappen") {
		t.Errorf("expected Verstappen filtered out, got:\n%s", view)
	}
}

func TestCollectionHeaderCoversWholeCollection(t *testing.T) {
	r1 := makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 1)
	v1 := 100.0
	r1.PurchasePrice = &v1
	r2 := makeRecord("c2", "Max Verstappen", "Red Bull Racing", "2023 Topps Chrome", "Gold", 1)
	v2 := 50.0
	r2.PurchasePrice = &v2

	m, _ := newTestCollectionModel(r1, r2)
	m, _ = m.Update(keyMsg("/"))
	for _, r := range "ham" {
		m, _ = m.Update(keyMsg(string(r)))
	}

	// The list narrows but the header still totals everything owned.
	view := m.View()
	if strings.Contains(view, "Max Verstappen") {
		t.Fatalf("expected Verstappen filtered from the list, got:\n%s", view)
	}
	if !strings.Contains(view, "2 cards") {
		t.Errorf("expected full-collection count in header, got:\n%s", view)
	}
	if !strings.Contains(view, "$150.00") {
		t.Errorf("expected full-collection value in header, got:\n%s", view)
	}
}

func TestCollectionFacetCycling(t *testing.T) {
	m, _ := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2),
		makeRecord("c2", "Max Verstappen", "Red Bull Racing", "2024 Topps Dynasty", "Gold", 1),
	)

	// First press picks the first distinct constructor alphabetically.
	m, _ = m.Update(keyMsg("c"))
	if m.spec.ConstructorName != "Mercedes" {
		t.Fatalf("expected Mercedes facet, got %q", m.spec.ConstructorName)
	}
	m, _ = m.Update(keyMsg("c"))
	if m.spec.ConstructorName != "Red Bull Racing" {
		t.Fatalf("expected Red Bull Racing facet, got %q", m.spec.ConstructorName)
	}
	// Cycling past the last value clears the facet.
	m, _ = m.Update(keyMsg("c"))
	if m.spec.ConstructorName != "" {
		t.Fatalf("expected cleared facet, got %q", m.spec.ConstructorName)
	}
}

func TestCollectionClearFilters(t *testing.T) {
	m, _ := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2),
	)
	m, _ = m.Update(keyMsg("s"))
	m, _ = m.Update(keyMsg("d"))
	m, _ = m.Update(keyMsg("x"))
	if m.spec.SetName != "" || m.spec.DriverName != "" {
		t.Errorf("expected empty spec after clear, got %+v", m.spec)
	}
}

func TestCollectionRemoveFlowDefaultsToFullQuantity(t *testing.T) {
	m, coll := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 5),
	)
	m, _ = m.Update(keyMsg("r"))
	if m.mode != collModeRemove {
		t.Fatalf("expected remove mode, got %d", m.mode)
	}
	if m.removeQty != "5" {
		t.Fatalf("expected prompt prefilled with 5, got %q", m.removeQty)
	}
	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a remove command")
	}
	if msg := cmd(); msg == nil {
		t.Fatal("expected mutation message")
	}
	if len(coll.removes) != 1 || coll.removes[0] != 5 {
		t.Errorf("expected remove of 5, got %v", coll.removes)
	}
}

func TestCollectionEditSubmitsUpdate(t *testing.T) {
	m, coll := newTestCollectionModel(
		makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2),
	)
	m, _ = m.Update(keyMsg("e"))
	if m.mode != collModeEdit {
		t.Fatalf("expected edit mode, got %d", m.mode)
	}
	if m.form.quantity != "2" {
		t.Fatalf("expected form prefilled with quantity 2, got %q", m.form.quantity)
	}

	// Bump quantity to 23.
	m.form.focus = 2
	m, _ = m.Update(keyMsg("3"))
	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected update command")
	}
	cmd()

	if len(coll.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(coll.updates))
	}
	up := coll.updates[0]
	if up.CardID != "c1" || up.Quantity == nil || *up.Quantity != 23 {
		t.Errorf("unexpected update input: %+v", up)
	}
}

func TestCollectionAddFlow(t *testing.T) {
	catalog := &fakeCatalog{
		sets: []domain.Dropdown{{Value: "2023 Topps Chrome", Label: "2023 Topps Chrome"}},
		cards: []domain.CatalogCard{{
			ID: "c9", DriverName: "Oscar Piastri", ConstructorName: "McLaren", CardNumber: "81",
		}},
	}
	coll := &fakeCollection{}
	m := newCollectionModel(coll, catalog)

	m, cmd := m.Update(keyMsg("a"))
	if m.mode != collModeAddSet {
		t.Fatalf("expected set picker, got mode %d", m.mode)
	}
	m, _ = m.Update(cmd().(setsLoadedMsg))

	m, cmd = m.Update(keyMsg("enter"))
	if m.mode != collModeAddCard {
		t.Fatalf("expected card picker, got mode %d", m.mode)
	}
	m, _ = m.Update(cmd().(setCardsLoadedMsg))

	m, _ = m.Update(keyMsg("enter"))
	if m.mode != collModeAddForm {
		t.Fatalf("expected add form, got mode %d", m.mode)
	}
	if m.form.condition != "Raw" || m.form.quantity != "1" {
		t.Fatalf("expected defaults Raw/1, got %q/%q", m.form.condition, m.form.quantity)
	}

	_, cmd = m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected add command")
	}
	cmd()

	if len(coll.adds) != 1 {
		t.Fatalf("expected one add, got %d", len(coll.adds))
	}
	if coll.adds[0].Card.ID != "c9" || coll.adds[0].Quantity != 1 {
		t.Errorf("unexpected add input: %+v", coll.adds[0])
	}
}

func TestCollectionLoadErrorShown(t *testing.T) {
	coll := &fakeCollection{}
	m := newCollectionModel(coll, &fakeCatalog{})
	m, _ = m.Update(collectionLoadedMsg{err: errors.New("catalog down")})
	if !strings.Contains(m.View(), "catalog down") {
		t.Errorf("expected load error in view, got:\n%s", m.View())
	}
}

func TestRecordLineForClipboard(t *testing.T) {
	rec := makeRecord("c1", "Lewis Hamilton", "Mercedes", "2023 Topps Chrome", "", 2)
	got := recordLine(rec)
	want := "2023 2023 Topps Chrome #44 Lewis Hamilton (Base, Raw) x2"
	if got != want {
		t.Errorf("recordLine = %q, want %q", got, want)
	}
}
