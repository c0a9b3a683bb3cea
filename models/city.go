package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// City is a cached lookup entity for location autocomplete. Seed data is
// marked verified; entries written back from the geocoder fallback are not.
type City struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Country     string             `bson:"country" json:"country"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Population  int64              `bson:"population" json:"population"`
	Latitude    float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Verified    bool               `bson:"verified" json:"verified"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
