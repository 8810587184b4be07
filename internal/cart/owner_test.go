package cart

import (
	"testing"

	"github.com/google/uuid"
)

func TestOwnerValidity(t *testing.T) {
	t.Parallel()

	if !UserOwner(uuid.New()).IsValid() {
		t.Fatal("user owner should be valid")
	}
	if UserOwner(uuid.Nil).IsValid() {
		t.Fatal("nil user id should be invalid")
	}
	if !GuestOwner("abc").IsValid() {
		t.Fatal("guest owner should be valid")
	}
	if GuestOwner("   ").IsValid() {
		t.Fatal("blank session should be invalid")
	}
	if (Owner{}).IsValid() {
		t.Fatal("zero owner should be invalid")
	}
}

func TestOwnerAccessors(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	owner := UserOwner(userID)
	got, ok := owner.UserID()
	if !ok || got != userID {
		t.Fatalf("expected user id %s, got %s (ok=%v)", userID, got, ok)
	}
	if _, ok := owner.SessionID(); ok {
		t.Fatal("user owner should not expose a session id")
	}
	if owner.IsGuest() {
		t.Fatal("user owner reported as guest")
	}

	guest := GuestOwner("sess")
	session, ok := guest.SessionID()
	if !ok || session != "sess" {
		t.Fatalf("expected session sess, got %q", session)
	}
	if !guest.IsGuest() {
		t.Fatal("guest owner not reported as guest")
	}
}
