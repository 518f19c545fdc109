package services

import (
	"errors"
	"testing"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	users := NewUserService(newTestDB(t))

	created, err := users.CreateUser("Alice", "Alice@Example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.PasswordHash != "" {
		t.Error("CreateUser must not return the password hash")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}

	// Login with the original casing succeeds against the stored account.
	user, err := users.AuthenticateUser("ALICE@example.COM", "secret1")
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("authenticated as %q, want %q", user.ID, created.ID)
	}
	if user.PasswordHash != "" {
		t.Error("AuthenticateUser must not return the password hash")
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	users := NewUserService(newTestDB(t))
	newTestUser(t, users, "Alice", "a@x.com")

	// Unknown email and wrong password must be indistinguishable.
	_, errUnknown := users.AuthenticateUser("nobody@x.com", "secret1")
	_, errWrongPw := users.AuthenticateUser("a@x.com", "wrong-password")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", errWrongPw)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := NewUserService(newTestDB(t))
	newTestUser(t, users, "Alice", "a@x.com")

	_, err := users.CreateUser("Impostor", "A@X.com", "secret2")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestDuplicateEmailConstraintIsRecognized(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	newTestUser(t, users, "Alice", "a@x.com")

	// A concurrent write can slip past the existence pre-check and hit the
	// unique index instead. That driver error must be recognized so the
	// service can surface it as ErrDuplicateEmail.
	_, err := db.Exec(
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		"racer-id", "Racer", "a@x.com", "hash",
	)
	if err == nil {
		t.Fatal("expected a unique constraint violation")
	}
	if !isUniqueViolation(err) {
		t.Errorf("constraint violation not recognized: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	users := NewUserService(newTestDB(t))
	aliceID := newTestUser(t, users, "Alice", "a@x.com")
	newTestUser(t, users, "Bob", "b@x.com")

	t.Run("partial name update", func(t *testing.T) {
		name := "Alice Smith"
		user, err := users.UpdateProfile(aliceID, &name, nil)
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if user.Name != "Alice Smith" {
			t.Errorf("name = %q", user.Name)
		}
		if user.Email != "a@x.com" {
			t.Errorf("email changed unexpectedly: %q", user.Email)
		}
	})

	t.Run("email collision with other user", func(t *testing.T) {
		email := "B@X.com"
		_, err := users.UpdateProfile(aliceID, nil, &email)
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("got %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("own email is not a collision", func(t *testing.T) {
		email := "A@x.com"
		user, err := users.UpdateProfile(aliceID, nil, &email)
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if user.Email != "a@x.com" {
			t.Errorf("email = %q", user.Email)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "Ghost"
		_, err := users.UpdateProfile("no-such-id", &name, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}
