package cart

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owner identifies whose cart an operation targets. Exactly one of the two
// identities is set; handlers construct it from the authenticated user or the
// guest session header and thread it through explicitly.
type Owner struct {
	userID    *uuid.UUID
	sessionID *string
}

// UserOwner scopes cart operations to a registered user.
func UserOwner(userID uuid.UUID) Owner {
	return Owner{userID: &userID}
}

// GuestOwner scopes cart operations to an anonymous session.
func GuestOwner(sessionID string) Owner {
	trimmed := strings.TrimSpace(sessionID)
	return Owner{sessionID: &trimmed}
}

// IsValid reports whether exactly one identity is set and non-empty.
func (o Owner) IsValid() bool {
	if o.userID != nil && o.sessionID == nil {
		return *o.userID != uuid.Nil
	}
	if o.userID == nil && o.sessionID != nil {
		return *o.sessionID != ""
	}
	return false
}

// IsGuest reports whether the owner is an anonymous session.
func (o Owner) IsGuest() bool {
	return o.sessionID != nil
}

// UserID returns the user identity when present.
func (o Owner) UserID() (uuid.UUID, bool) {
	if o.userID == nil {
		return uuid.Nil, false
	}
	return *o.userID, true
}

// SessionID returns the guest identity when present.
func (o Owner) SessionID() (string, bool) {
	if o.sessionID == nil {
		return "", false
	}
	return *o.sessionID, true
}

// scope narrows a cart_lines query to the owner's rows.
func (o Owner) scope(query *gorm.DB) *gorm.DB {
	if o.userID != nil {
		return query.Where("user_id = ?", *o.userID)
	}
	return query.Where("session_id = ?", *o.sessionID)
}
