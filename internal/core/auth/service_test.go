package auth

import (
	"errors"
	"reflect"
	"testing"
)

func TestService_SeededAdminLogin(t *testing.T) {
	t.Parallel()

	svc := NewService()

	if !svc.Login("admin", "121314") {
		t.Fatal("expected seeded admin to log in")
	}
	current, ok := svc.CurrentUser()
	if !ok || current.Username != "admin" {
		t.Fatalf("expected admin to be current user, got %+v", current)
	}

	if svc.Login("admin", "wrong") {
		t.Fatal("expected wrong password to fail")
	}

	svc.Logout()
	if _, ok := svc.CurrentUser(); ok {
		t.Fatal("expected no current user after logout")
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc := NewService()

	if svc.Register("admin", "x") {
		t.Fatal("expected duplicate username to be rejected")
	}
	if svc.Register("  ", "x") || svc.Register("maria", "   ") {
		t.Fatal("expected blank fields to be rejected")
	}
	if !svc.Register("maria", "segredo") {
		t.Fatal("expected registration to succeed")
	}
	if !svc.Login("maria", "segredo") {
		t.Fatal("expected registered credentials to log in")
	}

	if got := svc.Users(); !reflect.DeepEqual(got, []string{"admin", "maria"}) {
		t.Fatalf("unexpected users %v", got)
	}
}

func TestService_EditUser(t *testing.T) {
	t.Parallel()

	svc := NewService()
	svc.Login("admin", "121314")

	if err := svc.EditUser("admin", "novasenha"); err != nil {
		t.Fatalf("EditUser returned error: %v", err)
	}
	if current, _ := svc.CurrentUser(); current.Password != "novasenha" {
		t.Fatalf("expected current user to track password change, got %q", current.Password)
	}
	if svc.Login("admin", "121314") {
		t.Fatal("expected old password to be rejected")
	}

	if err := svc.EditUser("ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.EditUser("admin", "  "); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestService_DeleteUser(t *testing.T) {
	t.Parallel()

	svc := NewService()
	svc.Register("joao", "1")
	svc.Login("joao", "1")

	if err := svc.DeleteUser("joao"); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Fatal("expected deleting the current user to log out")
	}
	if svc.Login("joao", "1") {
		t.Fatal("expected deleted user to be unable to log in")
	}
	if err := svc.DeleteUser("joao"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_CredentialsAreStoredVerbatim(t *testing.T) {
	t.Parallel()

	svc := NewService()

	if !svc.Register("bob ", " pw") {
		t.Fatal("expected registration to succeed")
	}
	if !svc.Login("bob ", " pw") {
		t.Fatal("expected the exact registered credentials to log in")
	}
	if svc.Login("bob", "pw") {
		t.Fatal("expected credentials to be compared without trimming")
	}

	if err := svc.EditUser("bob ", " novo "); err != nil {
		t.Fatalf("EditUser returned error: %v", err)
	}
	if !svc.Login("bob ", " novo ") {
		t.Fatal("expected the edited password to be stored as given")
	}

	if err := svc.DeleteUser("bob "); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if got := svc.Users(); !reflect.DeepEqual(got, []string{"admin"}) {
		t.Fatalf("unexpected users %v", got)
	}
}
