// Copyright (c) 2026 Mavun. All rights reserved.

/*
Package permission resolves edit rights over catalogue targets and manages
their delegated editor sets.

Authorization follows a fixed rule chain:

 1. The owner of the target always has edit rights.
 2. For units, the owner of the parent series inherits edit rights.
 3. Members of the target's delegated editor set have edit rights.
 4. Everyone else is denied.

Denial is an answer, not an error: IsAuthorized returns false for an unknown
or unrelated user and reserves errors for lookup failures.

Grant and Revoke are idempotent and serialized per target URN, so concurrent
delegation changes against the same series or unit never lose updates.
*/
package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/mavun/mavun/internal/platform/apperr"
	"github.com/mavun/mavun/pkg/keylock"
	"github.com/mavun/mavun/pkg/slice"
	"github.com/mavun/mavun/pkg/urn"
)

// # Target Access

// Target is the permission-relevant projection of a series or unit.
type Target struct {
	// URN is the target identity.
	URN urn.URN

	// Owner is the creating user.
	Owner urn.URN

	// ParentOwner is the owning user of the parent series for unit targets;
	// zero for series targets.
	ParentOwner urn.URN

	// Editors is the delegated editor set.
	Editors []urn.URN
}

// TargetStore loads and persists the permission-relevant slice of catalogue
// entities. Implemented over the catalogue repositories.
type TargetStore interface {

	/*
		Load resolves a series or unit target, including the parent owner for
		units.

		Parameters:
		  - context: context.Context
		  - target: urn.URN ("urn:mvn:series:..." or "urn:mvn:unit:...")

		Returns:
		  - *Target: Permission projection
		  - error: apperr.NotFound if the target does not exist
	*/
	Load(context context.Context, target urn.URN) (*Target, error)

	/*
		SaveEditors replaces the delegated editor set of a target.

		Parameters:
		  - context: context.Context
		  - target: urn.URN
		  - editors: []urn.URN

		Returns:
		  - error: apperr.NotFound if the target does not exist
	*/
	SaveEditors(context context.Context, target urn.URN, editors []urn.URN) error
}

// # Resolver

// Resolver answers authorization questions and manages editor delegation.
type Resolver struct {
	store  TargetStore
	locks  *keylock.KeyedMutex
	logger *slog.Logger
}

// NewResolver constructs a [Resolver] over a target store.
func NewResolver(store TargetStore, locks *keylock.KeyedMutex, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		locks:  locks,
		logger: logger,
	}
}

/*
IsAuthorized reports whether user may edit target.

Description: Applies the owner, parent-owner cascade, and delegated editor
rules in order. A user without rights yields (false, nil); errors are
reserved for malformed input and storage failures.

Parameters:
  - context: context.Context
  - target: urn.URN (series or unit)
  - user: urn.URN ("urn:mvn:user:...")

Returns:
  - bool: Whether edit rights exist
  - error: Malformed target/user or lookup failure
*/
func (resolver *Resolver) IsAuthorized(context context.Context, target, user urn.URN) (bool, error) {

	if err := checkSubjects(target, user); err != nil {
		return false, err
	}

	loaded, err := resolver.store.Load(context, target)
	if err != nil {
		return false, err
	}

	return decide(loaded, user), nil
}

/*
Grant adds user to the delegated editor set of target.

Description: Runs the read-modify-write under the per-target lock. Granting
an existing editor is a no-op that returns the current set unchanged. The
caller is responsible for verifying that grantedBy may delegate; the
resolver records it for the audit log only.

Parameters:
  - context: context.Context
  - target: urn.URN (series or unit)
  - user: urn.URN (editor to add)
  - grantedBy: urn.URN (delegating user, for the audit trail)

Returns:
  - []urn.URN: The editor set after the grant
  - error: Malformed input, missing target, or persistence failure
*/
func (resolver *Resolver) Grant(context context.Context, target, user, grantedBy urn.URN) ([]urn.URN, error) {

	if err := checkSubjects(target, user); err != nil {
		return nil, err
	}

	unlock := resolver.locks.Lock(target.String())
	defer unlock()

	loaded, err := resolver.store.Load(context, target)
	if err != nil {
		return nil, err
	}

	for _, editor := range loaded.Editors {
		if editor == user {
			return loaded.Editors, nil
		}
	}

	editors := append(loaded.Editors, user)
	if err := resolver.store.SaveEditors(context, target, editors); err != nil {
		return nil, err
	}

	resolver.logger.Info("edit permission granted",
		slog.String("target_urn", target.String()),
		slog.String("user_urn", user.String()),
		slog.String("granted_by", grantedBy.String()),
		slog.Time("granted_at", time.Now().UTC()),
	)

	return editors, nil
}

/*
Revoke removes user from the delegated editor set of target.

Description: Runs under the per-target lock. Revoking a user who is not in
the set is a no-op. Revocation never touches ownership: an owner keeps edit
rights regardless of the editor set.

Parameters:
  - context: context.Context
  - target: urn.URN (series or unit)
  - user: urn.URN (editor to remove)

Returns:
  - []urn.URN: The editor set after the revocation
  - error: Malformed input, missing target, or persistence failure
*/
func (resolver *Resolver) Revoke(context context.Context, target, user urn.URN) ([]urn.URN, error) {

	if err := checkSubjects(target, user); err != nil {
		return nil, err
	}

	unlock := resolver.locks.Lock(target.String())
	defer unlock()

	loaded, err := resolver.store.Load(context, target)
	if err != nil {
		return nil, err
	}

	editors := slice.Filter(loaded.Editors, func(editor urn.URN) bool {
		return editor != user
	})
	if len(editors) == len(loaded.Editors) {
		return loaded.Editors, nil
	}

	if err := resolver.store.SaveEditors(context, target, editors); err != nil {
		return nil, err
	}

	resolver.logger.Info("edit permission revoked",
		slog.String("target_urn", target.String()),
		slog.String("user_urn", user.String()),
	)

	return editors, nil
}

/*
List returns the delegated editor set of target. Ownership-derived rights are
implicit and do not appear in the list.

Parameters:
  - context: context.Context
  - target: urn.URN

Returns:
  - []urn.URN: Current editor set
  - error: Malformed target or lookup failure
*/
func (resolver *Resolver) List(context context.Context, target urn.URN) ([]urn.URN, error) {

	if err := checkTarget(target); err != nil {
		return nil, err
	}

	loaded, err := resolver.store.Load(context, target)
	if err != nil {
		return nil, err
	}

	return loaded.Editors, nil
}

// # Rule Chain

// decide applies the authorization rules to a loaded target.
func decide(target *Target, user urn.URN) bool {
	if target.Owner == user {
		return true
	}
	if !target.ParentOwner.IsZero() && target.ParentOwner == user {
		return true
	}
	for _, editor := range target.Editors {
		if editor == user {
			return true
		}
	}
	return false
}

// checkTarget validates that target addresses a permission-capable resource.
func checkTarget(target urn.URN) error {
	if !target.IsType(urn.TypeSeries) && !target.IsType(urn.TypeUnit) {
		return apperr.Unprocessable("Target must be a series or unit URN")
	}
	return nil
}

// checkSubjects validates the target/user pair of an authorization call.
func checkSubjects(target, user urn.URN) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	if !user.IsType(urn.TypeUser) {
		return apperr.Unprocessable("Subject must be a user URN")
	}
	return nil
}
