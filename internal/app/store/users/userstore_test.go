package userstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/app/system/indexes"
	"github.com/dalemusser/donorhub/internal/app/system/paging"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/donorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Username: " Zara ", Role: "Admin"}, "correct horse")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Username != "Zara" || created.UsernameCI != "zara" {
		t.Errorf("username = %q / %q", created.Username, created.UsernameCI)
	}
	if created.Role != "admin" {
		t.Errorf("role = %q, want admin", created.Role)
	}
	if created.PasswordHash == "" || created.PasswordHash == "correct horse" {
		t.Error("expected a bcrypt hash")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name     string
		user     models.User
		password string
	}{
		{"blank username", models.User{Username: "  "}, "longenough"},
		{"bad role", models.User{Username: "x", Role: "superadmin"}, "longenough"},
		{"short password", models.User{Username: "x"}, "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.user, tt.password); !errors.Is(err, userstore.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{Username: "volunteer"}, "password1"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Username: "VOLUNTEER"}, "password2")
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Username: "Omar"}, "s3cret-pass"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u, err := store.Authenticate(ctx, "omar", "s3cret-pass"); err != nil || u.Username != "Omar" {
		t.Errorf("Authenticate = %+v, %v", u, err)
	}
	if _, err := store.Authenticate(ctx, "omar", "wrong"); !errors.Is(err, userstore.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody", "s3cret-pass"); !errors.Is(err, userstore.ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestStore_ListDeleteCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin, err := store.Create(ctx, models.User{Username: "boss", Role: "admin"}, "password1")
	if err != nil {
		t.Fatalf("Create admin failed: %v", err)
	}
	if _, err := store.Create(ctx, models.User{Username: "alice"}, "password2"); err != nil {
		t.Fatalf("Create user failed: %v", err)
	}

	page, err := store.ListPage(ctx, "", "")
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(page.Users) != 2 || page.Users[0].Username != "alice" || page.Users[0].PasswordHash != "" {
		t.Errorf("ListPage = %+v", page.Users)
	}

	if n, err := store.CountAdmins(ctx); err != nil || n != 1 {
		t.Errorf("CountAdmins = %d, %v", n, err)
	}

	if err := store.Delete(ctx, admin.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, admin.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Username: "fatima", Role: "user"}, "password1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f := userstore.NewFetcher(store)

	su := f.FetchUser(context.Background(), u.ID.Hex())
	if su == nil || su.Username != "fatima" || su.Role != "user" {
		t.Errorf("FetchUser = %+v", su)
	}
	if f.FetchUser(context.Background(), primitive.NewObjectID().Hex()) != nil {
		t.Error("missing user should yield nil")
	}
	if f.FetchUser(context.Background(), "bogus") != nil {
		t.Error("malformed ID should yield nil")
	}
}

func TestStore_ListPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	total := paging.PageSize + 3
	docs := make([]any, 0, total)
	for i := 0; i < total; i++ {
		name := fmt.Sprintf("volunteer%03d", i)
		docs = append(docs, models.User{
			ID:           primitive.NewObjectID(),
			Username:     name,
			UsernameCI:   name,
			PasswordHash: "x",
			Role:         "user",
		})
	}
	if _, err := db.Collection("users").InsertMany(ctx, docs); err != nil {
		t.Fatalf("seed users: %v", err)
	}

	first, err := store.ListPage(ctx, "", "")
	if err != nil {
		t.Fatalf("ListPage first: %v", err)
	}
	if len(first.Users) != paging.PageSize || first.HasPrev || !first.HasNext {
		t.Fatalf("first page: len %d prev %v next %v", len(first.Users), first.HasPrev, first.HasNext)
	}
	if first.Users[0].Username != "volunteer000" {
		t.Errorf("first user = %q", first.Users[0].Username)
	}
	if first.Users[0].PasswordHash != "" {
		t.Error("password hash should be projected out")
	}

	second, err := store.ListPage(ctx, "", first.NextCursor)
	if err != nil {
		t.Fatalf("ListPage second: %v", err)
	}
	if len(second.Users) != 3 || !second.HasPrev || second.HasNext {
		t.Fatalf("second page: len %d prev %v next %v", len(second.Users), second.HasPrev, second.HasNext)
	}
	if second.Users[0].Username != fmt.Sprintf("volunteer%03d", paging.PageSize) {
		t.Errorf("second page starts at %q", second.Users[0].Username)
	}

	back, err := store.ListPage(ctx, second.PrevCursor, "")
	if err != nil {
		t.Fatalf("ListPage back: %v", err)
	}
	if len(back.Users) != paging.PageSize {
		t.Fatalf("back page len = %d", len(back.Users))
	}
	if back.Users[0].Username != "volunteer000" || back.Users[paging.PageSize-1].Username != fmt.Sprintf("volunteer%03d", paging.PageSize-1) {
		t.Errorf("back page spans %q..%q", back.Users[0].Username, back.Users[len(back.Users)-1].Username)
	}
}
