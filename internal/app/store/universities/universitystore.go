// internal/app/store/universities/universitystore.go
package universitystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateUniversity = errors.New("a university with this name already exists")
	ErrEmptyName           = errors.New("university name is required")
	ErrNotFound            = errors.New("university not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("universities")}
}

func (s *Store) Create(ctx context.Context, name string) (models.University, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.University{}, ErrEmptyName
	}
	u := models.University{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.University{}, ErrDuplicateUniversity
		}
		return models.University{}, err
	}
	return u, nil
}

// List returns every university ordered by folded name.
func (s *Store) List(ctx context.Context) ([]models.University, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.University, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a university by ID. Donors registered under it keep the name.
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

// ExistsByNameCI checks if a university with the given folded name exists.
func (s *Store) ExistsByNameCI(ctx context.Context, nameCI string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"name_ci": nameCI}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
