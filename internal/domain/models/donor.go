// internal/domain/models/donor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donor is a registered blood donor.
//
// Only BloodGroup, LastDonationDate and SemesterEndDate carry meaning for
// eligibility; the remaining fields are descriptive and only take part in
// text filters. Derived values (availability, next eligible date) are never
// stored.
type Donor struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	Name             string             `bson:"name" json:"name"`
	NameCI           string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Contact          string             `bson:"contact" json:"contact"`
	City             string             `bson:"city" json:"city"`
	CityCI           string             `bson:"city_ci" json:"-"`
	University       string             `bson:"university" json:"university"`
	UniversityCI     string             `bson:"university_ci" json:"-"`
	Department       string             `bson:"department" json:"department"`
	Semester         string             `bson:"semester" json:"semester"`
	Gender           string             `bson:"gender" json:"gender"` // Male | Female
	BloodGroup       string             `bson:"blood_group" json:"blood_group"`
	LastDonationDate *time.Time         `bson:"last_donation_date,omitempty" json:"last_donation_date,omitempty"`
	IsHostelResident bool               `bson:"is_hostel_resident" json:"is_hostel_resident"`
	SemesterEndDate  *time.Time         `bson:"semester_end_date,omitempty" json:"semester_end_date,omitempty"`
	DateAdded        time.Time          `bson:"date_added" json:"date_added"`
	ImportBatch      string             `bson:"import_batch,omitempty" json:"import_batch,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
