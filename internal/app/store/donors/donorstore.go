// internal/app/store/donors/donorstore.go
package donorstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no donor has the requested ID.
var ErrNotFound = errors.New("donor not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("donors")}
}

// prepare fills the folded search fields and timestamps.
func prepare(d *models.Donor, now time.Time) {
	d.NameCI = text.Fold(d.Name)
	d.CityCI = text.Fold(d.City)
	d.UniversityCI = text.Fold(d.University)
	if d.DateAdded.IsZero() {
		y, m, day := now.Date()
		d.DateAdded = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

func (s *Store) Create(ctx context.Context, d models.Donor) (models.Donor, error) {
	d.ID = primitive.NewObjectID()
	prepare(&d, time.Now().UTC())
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Donor{}, err
	}
	return d, nil
}

// InsertMany stores donors from one mass-entry or import run. Every record is
// stamped with the same import batch ID, which is returned. IDs are minted in
// input order, so List returns the batch in the order it was submitted.
func (s *Store) InsertMany(ctx context.Context, donors []models.Donor) ([]models.Donor, string, error) {
	if len(donors) == 0 {
		return []models.Donor{}, "", nil
	}
	batch := uuid.NewString()
	now := time.Now().UTC()

	out := make([]models.Donor, len(donors))
	docs := make([]any, len(donors))
	for i, d := range donors {
		d.ID = primitive.NewObjectID()
		d.ImportBatch = batch
		d.CreatedAt = now
		prepare(&d, now)
		out[i] = d
		docs[i] = d
	}
	if _, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, "", err
	}
	return out, batch, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Donor, error) {
	var d models.Donor
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Donor{}, ErrNotFound
	}
	if err != nil {
		return models.Donor{}, err
	}
	return d, nil
}

// Update replaces every mutable field of the donor with d's values and
// returns the stored record.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, d models.Donor) (models.Donor, error) {
	now := time.Now().UTC()
	set := bson.M{
		"name":               d.Name,
		"name_ci":            text.Fold(d.Name),
		"contact":            d.Contact,
		"city":               d.City,
		"city_ci":            text.Fold(d.City),
		"university":         d.University,
		"university_ci":      text.Fold(d.University),
		"department":         d.Department,
		"semester":           d.Semester,
		"gender":             d.Gender,
		"blood_group":        d.BloodGroup,
		"is_hostel_resident": d.IsHostelResident,
		"updated_at":         now,
	}
	unset := bson.M{}
	if d.LastDonationDate != nil {
		set["last_donation_date"] = *d.LastDonationDate
	} else {
		unset["last_donation_date"] = ""
	}
	if d.SemesterEndDate != nil {
		set["semester_end_date"] = *d.SemesterEndDate
	} else {
		unset["semester_end_date"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var out models.Donor
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Donor{}, ErrNotFound
	}
	if err != nil {
		return models.Donor{}, err
	}
	return out, nil
}

// Delete removes a donor by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the full donor snapshot in registration order. The query
// layer ranks with a stable sort, so this order decides ties.
func (s *Store) List(ctx context.Context) ([]models.Donor, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	donors := make([]models.Donor, 0)
	if err := cur.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

// Count returns the number of stored donors.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
