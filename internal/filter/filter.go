// Package filter is a pure query layer over ownership records: free-text
// search, facet filters, and the summary figures shown above the list.
package filter

import (
	"sort"
	"strings"

	"github.com/formulacardz/cardz/pkg/domain"
)

// Spec is a transient, UI-driven filter. Empty fields are no-ops.
type Spec struct {
	SearchText      string
	SetName         string
	ConstructorName string
	DriverName      string
}

// Field names a record attribute facet choices can be built from.
type Field int

const (
	FieldSetName Field = iota
	FieldConstructorName
	FieldDriverName
)

// Apply returns the records matching every stage of the spec. The search
// text matches case-insensitively against driver, constructor, card number,
// and set name; the facet fields require exact equality.
func Apply(records []domain.OwnershipRecord, spec Spec) []domain.OwnershipRecord {
	search := strings.ToLower(strings.TrimSpace(spec.SearchText))

	out := make([]domain.OwnershipRecord, 0, len(records))
	for _, r := range records {
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		if spec.SetName != "" && r.SetName != spec.SetName {
			continue
		}
		if spec.ConstructorName != "" && r.ConstructorName != spec.ConstructorName {
			continue
		}
		if spec.DriverName != "" && r.DriverName != spec.DriverName {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r domain.OwnershipRecord, search string) bool {
	for _, field := range []string{r.DriverName, r.ConstructorName, r.CardNumber, r.SetName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// TotalValue sums purchase price times quantity across the records. Records
// without a price count as zero.
func TotalValue(records []domain.OwnershipRecord) float64 {
	var total float64
	for _, r := range records {
		if r.PurchasePrice != nil {
			total += *r.PurchasePrice * float64(r.Quantity)
		}
	}
	return total
}

// DistinctValues returns the sorted unique values of a field, for populating
// facet choices. Callers must pass the unfiltered base collection so options
// don't shrink as other facets are applied.
func DistinctValues(records []domain.OwnershipRecord, field Field) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		var v string
		switch field {
		case FieldSetName:
			v = r.SetName
		case FieldConstructorName:
			v = r.ConstructorName
		case FieldDriverName:
			v = r.DriverName
		}
		if v != "" {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
