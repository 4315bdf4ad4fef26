// internal/domain/models/university.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// University is an affiliation donors can be registered under.
type University struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // ← always stored, unique
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
