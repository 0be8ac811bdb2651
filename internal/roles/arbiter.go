// Package roles decides which role a visiting session plays for the event.
//
// At most one session is ever admin and at most one is editor; everyone else
// uploads. Slots are claimed through the store's compare-and-set so two
// sessions racing for the same slot cannot both win.
package roles

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
)

// Policy controls how empty slots get filled.
type Policy interface {
	// AutoClaim reports whether Resolve may claim empty slots on its own.
	AutoClaim() bool
	// Authorize checks the secret presented for an explicit claim.
	Authorize(role domain.Role, secret string) error
}

// FirstComeFirstServed hands admin to the first visitor and editor to the second.
type FirstComeFirstServed struct{}

func (FirstComeFirstServed) AutoClaim() bool { return true }

func (FirstComeFirstServed) Authorize(domain.Role, string) error { return nil }

// PasswordGated only assigns a slot to a session presenting the matching secret.
type PasswordGated struct {
	AdminSecret  string
	EditorSecret string
}

func (PasswordGated) AutoClaim() bool { return false }

func (p PasswordGated) Authorize(role domain.Role, secret string) error {
	var want string
	switch role {
	case domain.RoleAdmin:
		want = p.AdminSecret
	case domain.RoleEditor:
		want = p.EditorSecret
	default:
		return domain.ErrUnauthorized
	}
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(secret)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// Arbiter classifies sessions and caches each decision for the session's lifetime.
type Arbiter struct {
	store  domain.RoleRepository
	policy Policy
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]domain.Role
}

// NewArbiter builds an arbiter over the role repository.
func NewArbiter(store domain.RoleRepository, policy Policy, logger zerolog.Logger) *Arbiter {
	if policy == nil {
		policy = FirstComeFirstServed{}
	}
	return &Arbiter{
		store:  store,
		policy: policy,
		logger: logger,
		cache:  make(map[string]domain.Role),
	}
}

// Policy returns the configured claim policy.
func (a *Arbiter) Policy() Policy {
	return a.policy
}

// Resolve returns the role of sessionID, claiming an empty slot when the
// policy allows it.
func (a *Arbiter) Resolve(ctx context.Context, sessionID string) (domain.Role, error) {
	cachedRole, isCached := a.cached(sessionID)
	if isCached && cachedRole == domain.RoleUploader {
		return cachedRole, nil
	}

	ra, err := a.store.GetRoles(ctx)
	if err != nil {
		return "", err
	}
	if role, ok := held(ra, sessionID); ok {
		return a.remember(sessionID, role), nil
	}
	if isCached {
		// The slot was cleared behind our back (reset from another process).
		a.drop(sessionID)
	}
	if !a.policy.AutoClaim() {
		// Password mode: unassigned sessions upload until they log in, so the
		// answer is not cached.
		return domain.RoleUploader, nil
	}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEditor} {
		if _, taken := ra.Holder(role); taken {
			continue
		}
		won, err := a.store.ClaimRole(ctx, role, sessionID)
		if err != nil {
			return "", err
		}
		if won {
			a.logger.Info().Str("session", sessionID).Str("role", string(role)).Msg("role claimed")
			return a.remember(sessionID, role), nil
		}
		// Lost the race; re-read so the editor attempt sees the winner.
		ra, err = a.store.GetRoles(ctx)
		if err != nil {
			return "", err
		}
		if r, ok := held(ra, sessionID); ok {
			return a.remember(sessionID, r), nil
		}
	}
	return a.remember(sessionID, domain.RoleUploader), nil
}

// Claim explicitly claims a slot, checking the secret against the policy.
// It fails with ErrUnauthorized on a bad secret and ErrRoleTaken when another
// session already holds the slot.
func (a *Arbiter) Claim(ctx context.Context, sessionID string, role domain.Role, secret string) (domain.Role, error) {
	if err := a.policy.Authorize(role, secret); err != nil {
		a.logger.Warn().Str("session", sessionID).Str("role", string(role)).Msg("role claim rejected")
		return "", err
	}

	ra, err := a.store.GetRoles(ctx)
	if err != nil {
		return "", err
	}
	if current, ok := held(ra, sessionID); ok {
		if current == role {
			return a.remember(sessionID, role), nil
		}
		return "", fmt.Errorf("session already holds %s: %w", current, domain.ErrRoleTaken)
	}
	if role == domain.RoleEditor {
		if _, ok := ra.Holder(domain.RoleAdmin); !ok {
			return "", fmt.Errorf("editor needs an admin first: %w", domain.ErrRoleTaken)
		}
	}

	won, err := a.store.ClaimRole(ctx, role, sessionID)
	if err != nil {
		return "", err
	}
	if !won {
		return "", domain.ErrRoleTaken
	}
	a.logger.Info().Str("session", sessionID).Str("role", string(role)).Msg("role claimed")
	return a.remember(sessionID, role), nil
}

// Assignment returns the persisted role row.
func (a *Arbiter) Assignment(ctx context.Context) (domain.RoleAssignment, error) {
	return a.store.GetRoles(ctx)
}

// Reset clears both slots and forgets cached sessions.
func (a *Arbiter) Reset(ctx context.Context) error {
	if err := a.store.ClearRoles(ctx); err != nil {
		return err
	}
	a.Forget()
	return nil
}

// Forget drops cached decisions without touching the store. Use it after the
// store was reset by other means.
func (a *Arbiter) Forget() {
	a.mu.Lock()
	a.cache = make(map[string]domain.Role)
	a.mu.Unlock()
}

func (a *Arbiter) cached(sessionID string) (domain.Role, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	role, ok := a.cache[sessionID]
	return role, ok
}

func (a *Arbiter) remember(sessionID string, role domain.Role) domain.Role {
	a.mu.Lock()
	a.cache[sessionID] = role
	a.mu.Unlock()
	return role
}

func (a *Arbiter) drop(sessionID string) {
	a.mu.Lock()
	delete(a.cache, sessionID)
	a.mu.Unlock()
}

func held(ra domain.RoleAssignment, sessionID string) (domain.Role, bool) {
	if id, ok := ra.Holder(domain.RoleAdmin); ok && id == sessionID {
		return domain.RoleAdmin, true
	}
	if id, ok := ra.Holder(domain.RoleEditor); ok && id == sessionID {
		return domain.RoleEditor, true
	}
	return "", false
}

// PolicyFor picks the claim policy named in the event config.
func PolicyFor(ev infra.EventConfig) Policy {
	if ev.RolePolicy == infra.RolePolicyPassword {
		return PasswordGated{AdminSecret: ev.AdminSecret, EditorSecret: ev.EditorSecret}
	}
	return FirstComeFirstServed{}
}
