package binding

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxSessionKeyLen is the maximum stored length of a session key in
// characters. Longer keys are silently truncated.
const MaxSessionKeyLen = 40

// Binding associates an opaque session key with at most one authenticated
// user. UserID is uuid.Nil for anonymous sessions.
type Binding struct {
	ID         int64
	SessionKey string
	UserID     uuid.UUID
	CreatedAt  time.Time
}

// IsAnonymous reports whether no user has been bound to the session yet.
func (b Binding) IsAnonymous() bool {
	return b.UserID == uuid.Nil
}

// DisplayValue returns a short representation of the session key suitable
// for list views.
func (b Binding) DisplayValue() string {
	if utf8.RuneCountInString(b.SessionKey) <= 8 {
		return b.SessionKey
	}
	return string([]rune(b.SessionKey)[:8])
}
