package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingRegistration holds a registration that has not confirmed its
// email code yet. The user document is only created once the code is
// verified. Expired entries are reaped by a TTL index on expiresAt.
type PendingRegistration struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	DateOfBirth      time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	Gender           string             `bson:"gender" json:"gender"`
	ProfilePicture   string             `bson:"profilePicture" json:"-"`
	VerificationCode string             `bson:"verificationCode" json:"-"`
	ExpiresAt        time.Time          `bson:"expiresAt" json:"-"`
	CreatedAt        time.Time          `bson:"createdAt" json:"-"`
}

// Expired reports whether the verification code is past its window.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
