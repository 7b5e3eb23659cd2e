package trackingdb

import "errors"

// ErrNotFound indicates no tracked player exists for the (guild, member) key.
// Callers decide whether absence is an error; the presence flow treats it as
// "not tracked" and does nothing.
var ErrNotFound = errors.New("tracked player not found")
