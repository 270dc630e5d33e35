// Package tracker derives the one-of-one hunt view: which cards still have
// undiscovered one-of-one parallels, and the found/total tally.
package tracker

import (
	"strings"

	"github.com/formulacardz/cardz/pkg/domain"
)

// Spec controls visibility of tracked cards.
type Spec struct {
	ShowFound             bool
	ShowMissing           bool
	DriverSearch          string
	ConstructorSearch     string
	IncludePrintingPlates bool
}

// Summary is the filtered card list plus counters computed over it.
type Summary struct {
	Cards []domain.CatalogCard
	Found int
	Total int
}

// Aggregate filters the catalog down to cards with visible one-of-one
// parallels and tallies found/total over the result. Each returned card
// carries only its surviving one-of-one parallels.
func Aggregate(cards []domain.CatalogCard, spec Spec) Summary {
	driverSearch := strings.ToLower(strings.TrimSpace(spec.DriverSearch))
	constructorSearch := strings.ToLower(strings.TrimSpace(spec.ConstructorSearch))

	var out Summary
	for _, card := range cards {
		parallels := oneOfOnes(card.Parallels, spec.IncludePrintingPlates)
		if len(parallels) == 0 {
			continue
		}
		if !passesFoundGate(parallels, spec) {
			continue
		}
		if driverSearch != "" && !strings.Contains(strings.ToLower(card.DriverName), driverSearch) {
			continue
		}
		if constructorSearch != "" && !strings.Contains(strings.ToLower(card.ConstructorName), constructorSearch) {
			continue
		}

		shown := card
		shown.Parallels = parallels
		out.Cards = append(out.Cards, shown)

		for _, p := range parallels {
			out.Total++
			if p.IsOneOfOneFound {
				out.Found++
			}
		}
	}
	return out
}

// oneOfOnes selects the card's one-of-one parallels, dropping printing
// plates unless they are included.
func oneOfOnes(parallels []domain.Parallel, includePlates bool) []domain.Parallel {
	var out []domain.Parallel
	for _, p := range parallels {
		if !p.IsOneOfOne {
			continue
		}
		if !includePlates && p.IsPrintingPlate() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func passesFoundGate(parallels []domain.Parallel, spec Spec) bool {
	if spec.ShowFound && spec.ShowMissing {
		return true
	}
	if !spec.ShowFound && !spec.ShowMissing {
		return false
	}
	for _, p := range parallels {
		if p.IsOneOfOneFound == spec.ShowFound {
			return true
		}
	}
	return false
}
