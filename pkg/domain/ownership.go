package domain

import "time"

// OwnershipRecord is the quantity of a specific card variant a user owns.
// The API flattens catalog card fields into the same object, so a record is
// self-describing for display and filtering.
type OwnershipRecord struct {
	CardID          string `json:"id"`
	Year            int    `json:"year"`
	SetName         string `json:"setName"`
	CardNumber      string `json:"cardNumber"`
	DriverName      string `json:"driverName"`
	ConstructorName string `json:"constructorName"`
	RookieCard      bool   `json:"rookieCard"`
	ImageURL        string `json:"imageUrl,omitempty"`

	Parallel      string     `json:"parallel,omitempty"`
	Condition     string     `json:"condition"`
	Quantity      int        `json:"quantity"`
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	PurchaseDate  *time.Time `json:"purchaseDate,omitempty"`
}

// RecordKey identifies one ownership record within a collection. There is
// never more than one record per key.
type RecordKey struct {
	CardID    string
	Parallel  string
	Condition string
}

// Key returns the record's identity key.
func (r OwnershipRecord) Key() RecordKey {
	return RecordKey{CardID: r.CardID, Parallel: r.Parallel, Condition: r.Condition}
}
