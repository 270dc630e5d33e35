package filter

import (
	"testing"

	"github.com/formulacardz/cardz/pkg/domain"
)

func testRecords() []domain.OwnershipRecord {
	price := func(v float64) *float64 { return &v }
	return []domain.OwnershipRecord{
		{CardID: "c1", DriverName: "Lewis Hamilton", ConstructorName: "Mercedes", CardNumber: "44", SetName: "2023 Topps Chrome", Quantity: 2, PurchasePrice: price(100)},
		{CardID: "c2", DriverName: "Max Verstappen", ConstructorName: "Red Bull Racing", CardNumber: "1", SetName: "2023 Topps Chrome", Quantity: 1, PurchasePrice: price(250)},
		{CardID: "c3", DriverName: "Charles Leclerc", ConstructorName: "Ferrari", CardNumber: "16", SetName: "2022 Topps Flagship", Quantity: 3},
	}
}

func TestApplySearchText(t *testing.T) {
	got := Apply(testRecords(), Spec{SearchText: "ham"})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].DriverName != "Lewis Hamilton" {
		t.Errorf("DriverName = %q, want Lewis Hamilton", got[0].DriverName)
	}
}

func TestApplySearchMatchesAnyField(t *testing.T) {
	cases := []struct {
		search string
		wantID string
	}{
		{"mercedes", "c1"}, // constructor
		{"16", "c3"},       // card number
		{"flagship", "c3"}, // set name
	}
	for _, tc := range cases {
		got := Apply(testRecords(), Spec{SearchText: tc.search})
		if len(got) != 1 || got[0].CardID != tc.wantID {
			t.Errorf("search %q: got %+v, want single record %s", tc.search, got, tc.wantID)
		}
	}
}

func TestApplyFacets(t *testing.T) {
	got := Apply(testRecords(), Spec{SetName: "2023 Topps Chrome", ConstructorName: "Red Bull Racing"})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].CardID != "c2" {
		t.Errorf("CardID = %q, want c2", got[0].CardID)
	}
}

func TestApplyStagesAreConjunctive(t *testing.T) {
	// "topps" matches all three, the driver facet narrows to one.
	got := Apply(testRecords(), Spec{SearchText: "topps", DriverName: "Charles Leclerc"})
	if len(got) != 1 || got[0].CardID != "c3" {
		t.Errorf("got %+v, want single record c3", got)
	}
}

func TestApplyEmptySpecIsNoOp(t *testing.T) {
	got := Apply(testRecords(), Spec{})
	if len(got) != 3 {
		t.Errorf("got %d records, want all 3", len(got))
	}
}

func TestTotalValue(t *testing.T) {
	// 2×100 + 1×250 + 3×(no price) = 450
	if got := TotalValue(testRecords()); got != 450 {
		t.Errorf("TotalValue = %v, want 450", got)
	}
}

func TestDistinctValues(t *testing.T) {
	got := DistinctValues(testRecords(), FieldSetName)
	want := []string{"2022 Topps Flagship", "2023 Topps Chrome"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDistinctValuesFromUnfilteredBase(t *testing.T) {
	records := testRecords()
	filtered := Apply(records, Spec{ConstructorName: "Ferrari"})

	// Facet options must come from the base collection, not the filtered view.
	base := DistinctValues(records, FieldConstructorName)
	if len(base) != 3 {
		t.Errorf("base facet options = %v, want 3 constructors", base)
	}
	narrowed := DistinctValues(filtered, FieldConstructorName)
	if len(narrowed) != 1 {
		t.Errorf("sanity: filtered view has %d constructors", len(narrowed))
	}
}
