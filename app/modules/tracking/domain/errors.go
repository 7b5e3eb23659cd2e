package trackingdomain

import (
	"errors"
	"fmt"
)

// Error classes shared by the resolver, the store and the reconciler.
// Callers classify with errors.Is; concrete errors wrap one of these.
var (
	// ErrNotFound is an expected absence, handled as a normal branch.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates a credential was rejected by an upstream system.
	ErrAuth = errors.New("credential rejected")

	// ErrUpstream indicates a transient ranking API failure (transport, 5xx, rate limit, timeout).
	ErrUpstream = errors.New("ranking api unavailable")

	// ErrStore indicates a persistence backend failure.
	ErrStore = errors.New("tracked player store unavailable")

	// ErrRoleMutation indicates the chat platform refused or failed a role change.
	ErrRoleMutation = errors.New("role mutation failed")

	// ErrInvalidHandle indicates a track command without a usable handle.
	ErrInvalidHandle = errors.New("player handle cannot be empty")
)

var (
	// ErrPlayerNotFound indicates the ranking platform has no player for a handle.
	ErrPlayerNotFound = fmt.Errorf("player %w", ErrNotFound)

	// ErrNotTracked indicates no tracked player exists for a guild member.
	ErrNotTracked = fmt.Errorf("tracked player %w", ErrNotFound)
)
