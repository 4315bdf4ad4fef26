package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// Date returns midnight UTC on the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date returned by pointer, for optional donor dates.
func DatePtr(y int, m time.Month, d int) *time.Time {
	t := Date(y, m, d)
	return &t
}

// CreateDonor inserts d as-is after filling the ID, folded fields and
// timestamps when they are blank. Returns the stored record.
func (f *Fixtures) CreateDonor(ctx context.Context, d models.Donor) models.Donor {
	f.t.Helper()

	now := time.Now().UTC()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	d.NameCI = text.Fold(d.Name)
	d.CityCI = text.Fold(d.City)
	d.UniversityCI = text.Fold(d.University)
	if d.DateAdded.IsZero() {
		d.DateAdded = Date(now.Year(), now.Month(), now.Day())
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	if _, err := f.db.Collection("donors").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test donor: %v", err)
	}
	return d
}

// CreateSimpleDonor creates a donor with only a name, blood group and
// optional last donation date.
func (f *Fixtures) CreateSimpleDonor(ctx context.Context, name, group string, last *time.Time) models.Donor {
	f.t.Helper()
	return f.CreateDonor(ctx, models.Donor{
		Name:             name,
		Contact:          "01700000000",
		City:             "Dhaka",
		BloodGroup:       group,
		Gender:           "Male",
		LastDonationDate: last,
	})
}

// CreateUser creates a user with the given role and password.
// A low bcrypt cost keeps the tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, username, password, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, password, "admin")
}

// CreateUniversity creates a stored university name.
func (f *Fixtures) CreateUniversity(ctx context.Context, name string) models.University {
	f.t.Helper()

	u := models.University{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("universities").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test university: %v", err)
	}
	return u
}
