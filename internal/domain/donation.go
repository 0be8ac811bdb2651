package domain

import "time"

// DonationStatus is the review state of a donation record.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationConfirmed DonationStatus = "confirmed"
)

// Donation represents a captured donation form and its (possibly edited) fields.
// Amount stays as free text; only the aggregation layer interprets it.
type Donation struct {
	ID         int64
	Name       string
	Amount     string
	Image      []byte
	Status     DonationStatus
	CreatedAt  time.Time
	RequeuedAt *time.Time
}

// IsConfirmed reports whether the record reached its terminal state.
func (d Donation) IsConfirmed() bool {
	return d.Status == DonationConfirmed
}

// ConfirmedOrder selects how confirmed donations are sorted.
type ConfirmedOrder int

const (
	// NewestFirst feeds the live donor wall.
	NewestFirst ConfirmedOrder = iota
	// OldestFirst feeds exports.
	OldestFirst
)
