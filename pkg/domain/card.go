package domain

import (
	"strings"
	"time"
)

// Parallel is a named print variant of a catalog card. One-of-one parallels
// carry a found flag maintained by the community.
type Parallel struct {
	Name            string `json:"name"`
	ImageURL        string `json:"imageUrl,omitempty"`
	IsOneOfOne      bool   `json:"isOneOfOne,omitempty"`
	IsOneOfOneFound bool   `json:"isOneOfOneFound,omitempty"`
}

// CatalogCard is read-only reference data owned by the catalog service.
type CatalogCard struct {
	ID              string     `json:"id"`
	Year            int        `json:"year"`
	SetName         string     `json:"setName"`
	CardNumber      string     `json:"cardNumber"`
	DriverName      string     `json:"driverName"`
	ConstructorName string     `json:"constructorName"`
	RookieCard      bool       `json:"rookieCard"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Parallels       []Parallel `json:"parallels,omitempty"`
}

// Dropdown is a value/label pair for set pickers.
type Dropdown struct {
	Value string `json:"value"`
	Label string `json:"label"`
	ID    string `json:"id,omitempty"`
}

// Drop is an upcoming product release.
type Drop struct {
	ProductName  string    `json:"productName"`
	ReleaseDate  time.Time `json:"releaseDate"`
	Description  string    `json:"description"`
	Manufacturer string    `json:"manufacturer"`
	ImageURL     string    `json:"imageUrl"`
	PreorderURL  string    `json:"preorderUrl,omitempty"`
}

// DaysUntil returns the number of whole days from now until the release,
// rounded up. Past releases return a negative count.
func (d Drop) DaysUntil(now time.Time) int {
	diff := d.ReleaseDate.Sub(now)
	days := int(diff.Hours() / 24)
	if diff > 0 && diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// IsPrintingPlate reports whether a parallel name marks a printing plate
// variant, matched case-insensitively.
func (p Parallel) IsPrintingPlate() bool {
	return strings.Contains(strings.ToLower(p.Name), "printing plate")
}
