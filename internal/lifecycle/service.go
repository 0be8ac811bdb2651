// Package lifecycle moves donations from upload through review to confirmation.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/events"
)

// SkipPolicy decides what skipping a pending donation does.
type SkipPolicy string

const (
	// SkipLeavePending keeps the record pending and sends it to the back of
	// the review queue.
	SkipLeavePending SkipPolicy = "leave_pending"
	// SkipConfirmAsIs confirms the record with its extracted values.
	SkipConfirmAsIs SkipPolicy = "confirm_as_is"
)

// ParseSkipPolicy maps a config value to a policy, defaulting to SkipLeavePending.
func ParseSkipPolicy(s string) SkipPolicy {
	if SkipPolicy(s) == SkipConfirmAsIs {
		return SkipConfirmAsIs
	}
	return SkipLeavePending
}

// SessionCache is forgotten whenever the event starts over.
type SessionCache interface {
	Forget()
}

// Service coordinates the record store and lifecycle notifications.
type Service struct {
	store     domain.Store
	sessions  SessionCache
	publisher events.Publisher
	skip      SkipPolicy
	logger    zerolog.Logger
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher attaches a notification publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithSkipPolicy overrides the default skip behaviour.
func WithSkipPolicy(p SkipPolicy) Option {
	return func(s *Service) { s.skip = p }
}

// WithSessionCache registers the cache dropped by NewEvent.
func WithSessionCache(c SessionCache) Option {
	return func(s *Service) { s.sessions = c }
}

// NewService builds the lifecycle service.
func NewService(store domain.Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.Nop{},
		skip:      SkipLeavePending,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SkipPolicy reports the configured skip behaviour.
func (s *Service) SkipPolicy() SkipPolicy {
	return s.skip
}

// Submit stores a new pending donation. Name and amount are stored exactly as
// extracted, empty or not.
func (s *Service) Submit(ctx context.Context, image []byte, name, amount string) (int64, error) {
	id, err := s.store.InsertPending(ctx, name, amount, image)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("donation_id", id).Int("image_bytes", len(image)).Msg("donation submitted")
	s.publish(ctx, events.DonationSubmitted, id)
	return id, nil
}

// ReviewNext returns the head of the review queue, or nil when it is empty.
func (s *Service) ReviewNext(ctx context.Context) (*domain.Donation, error) {
	return s.store.NextPending(ctx)
}

// Queue returns the review head together with the number of pending records
// behind it.
func (s *Service) Queue(ctx context.Context) (*domain.Donation, int, error) {
	head, err := s.store.NextPending(ctx)
	if err != nil || head == nil {
		return nil, 0, err
	}
	pending, err := s.store.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}
	remaining := pending - 1
	if remaining < 0 {
		remaining = 0
	}
	return head, remaining, nil
}

// Pending lists every pending donation in arrival order.
func (s *Service) Pending(ctx context.Context) ([]domain.Donation, error) {
	return s.store.ListPending(ctx)
}

// Get returns one donation in any state.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Donation, error) {
	return s.store.GetDonation(ctx, id)
}

// Confirmed lists confirmed donations in the requested order.
func (s *Service) Confirmed(ctx context.Context, order domain.ConfirmedOrder) ([]domain.Donation, error) {
	return s.store.ListConfirmed(ctx, order)
}

// Confirm writes the reviewed values and marks the donation confirmed. The
// amount is not validated; confirming twice keeps the last values.
func (s *Service) Confirm(ctx context.Context, id int64, name, amount string) error {
	if err := s.store.Confirm(ctx, id, name, amount); err != nil {
		return err
	}
	s.logger.Info().Int64("donation_id", id).Msg("donation confirmed")
	s.publish(ctx, events.DonationConfirmed, id)
	return nil
}

// Skip applies the configured skip policy to a donation.
func (s *Service) Skip(ctx context.Context, id int64) error {
	switch s.skip {
	case SkipConfirmAsIs:
		d, err := s.store.GetDonation(ctx, id)
		if err != nil {
			return err
		}
		if err := s.store.Confirm(ctx, id, d.Name, d.Amount); err != nil {
			return err
		}
		s.logger.Info().Int64("donation_id", id).Msg("donation confirmed as extracted")
		s.publish(ctx, events.DonationConfirmed, id)
		return nil
	case SkipLeavePending:
		if err := s.store.Requeue(ctx, id); err != nil {
			return err
		}
		s.logger.Info().Int64("donation_id", id).Msg("donation skipped")
		s.publish(ctx, events.DonationSkipped, id)
		return nil
	default:
		return fmt.Errorf("unknown skip policy %q", s.skip)
	}
}

// NewEvent deletes every donation, clears both role slots and forgets cached
// session roles.
func (s *Service) NewEvent(ctx context.Context) error {
	if err := s.store.ResetEvent(ctx); err != nil {
		return err
	}
	if s.sessions != nil {
		s.sessions.Forget()
	}
	s.logger.Warn().Msg("event reset")
	s.publish(ctx, events.EventReset, 0)
	return nil
}

// Publish failures never fail the operation; screens still poll.
func (s *Service) publish(ctx context.Context, kind events.Kind, id int64) {
	e := events.Event{Kind: kind, DonationID: id, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("publish event failed")
	}
}
