package accounts_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/PochariChun/OSCEVP/internal/accounts"
	"github.com/PochariChun/OSCEVP/internal/db"
)

func openTestStore(t *testing.T) *accounts.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return accounts.NewSQLStore(dbh)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	u, err := st.Create(ctx, "nurse01", "s3cret", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != "trainee" {
		t.Fatalf("role = %q, want trainee", u.Role)
	}

	got, err := st.Authenticate(ctx, "nurse01", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatal("authenticated wrong user")
	}

	if _, err := st.Authenticate(ctx, "nurse01", "wrong"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("bad password: err = %v", err)
	}
	if _, err := st.Authenticate(ctx, "ghost", "s3cret"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("unknown user: err = %v", err)
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if _, err := st.Create(ctx, "nurse01", "pw1", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Create(ctx, "nurse01", "pw2", ""); !errors.Is(err, accounts.ErrUsernameTaken) {
		t.Fatalf("duplicate: err = %v", err)
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	u, err := st.Create(ctx, "nurse01", "pw", "instructor")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := st.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "nurse01" || got.Role != "instructor" {
		t.Fatalf("got %+v", got)
	}
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, accounts.ErrUserNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
}
