package repositories

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Clock returns the current time. Repositories that reason about
// calendar periods take one so tests can pin "now".
type Clock func() time.Time
