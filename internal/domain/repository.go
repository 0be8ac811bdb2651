package domain

import "context"

// DonationRepository persists donation records. Only GetDonation loads the
// image; list and queue reads leave Donation.Image nil.
type DonationRepository interface {
	InsertPending(ctx context.Context, name, amount string, image []byte) (int64, error)
	GetDonation(ctx context.Context, id int64) (*Donation, error)
	ListPending(ctx context.Context) ([]Donation, error)
	CountPending(ctx context.Context) (int, error)
	NextPending(ctx context.Context) (*Donation, error)
	Requeue(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64, name, amount string) error
	ListConfirmed(ctx context.Context, order ConfirmedOrder) ([]Donation, error)
	ClearAll(ctx context.Context) error
}

// RoleRepository persists the single role assignment row.
type RoleRepository interface {
	GetRoles(ctx context.Context) (RoleAssignment, error)
	// ClaimRole sets the slot only when it is still empty. Editor claims
	// additionally require the admin slot to be held. It reports whether the
	// caller won the slot.
	ClaimRole(ctx context.Context, role Role, sessionID string) (bool, error)
	ClearRoles(ctx context.Context) error
}

// Store is the complete record store.
type Store interface {
	DonationRepository
	RoleRepository
	// ResetEvent clears donations and roles atomically.
	ResetEvent(ctx context.Context) error
	Close() error
}
